package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
)

var errNoKeyName = errors.New("missing key name")

func (a *app) keysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage stored API keys",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Save a key under a name, e.g. 'keys set cohere'",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "value",
						Usage: "key value (default: prompt, or read from stdin)",
					},
				},
				Action: a.keysSetAction,
			},
			{
				Name:      "get",
				Usage:     "Print a stored key",
				ArgsUsage: "NAME",
				Action:    a.keysGetAction,
			},
			{
				Name:   "list",
				Usage:  "List the names of stored keys",
				Action: a.keysListAction,
			},
			{
				Name:   "path",
				Usage:  "Print the path of the key store",
				Action: a.keysPathAction,
			},
		},
	}
}

func (a *app) keysSetAction(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errNoKeyName
	}

	value := cmd.String("value")
	if !cmd.IsSet("value") {
		var err error
		if value, err = a.readSecret(); err != nil {
			return err
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value for key %q", name)
	}

	return a.keys.Set(name, value)
}

// readSecret prompts for a key with masked input on a terminal and reads
// stdin otherwise.
func (a *app) readSecret() (string, error) {
	if !a.stdinIsTerminal() {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	var value string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Enter key").
			EchoMode(huh.EchoModePassword).
			Value(&value),
	)).Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

func (a *app) keysGetAction(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errNoKeyName
	}

	v, ok, err := a.keys.Get(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no key found with name %q", name)
	}

	_, err = fmt.Fprintln(a.stdout, v)
	return err
}

func (a *app) keysListAction(_ context.Context, _ *cli.Command) error {
	names, err := a.keys.Names()
	if err != nil {
		return err
	}

	for _, n := range names {
		if _, err := fmt.Fprintln(a.stdout, n); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) keysPathAction(_ context.Context, _ *cli.Command) error {
	_, err := fmt.Fprintln(a.stdout, a.keys.Path())
	return err
}
