package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/accudio/llm-cohere/cmd/llm-cohere/internal/format"
	"github.com/accudio/llm-cohere/pkg/engine"
	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
)

var errNoPrompt = errors.New("no prompt given: pass it as an argument or pipe it to stdin")

func (a *app) promptCommand() *cli.Command {
	return &cli.Command{
		Name:                      "prompt",
		Usage:                     "Execute a prompt",
		ArgsUsage:                 "[PROMPT]",
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "model to use (default: default_model from the config, else cohere-generate)",
				Sources: cli.EnvVars(envModel),
			},
			&cli.StringFlag{
				Name:    "system",
				Aliases: []string{"s"},
				Usage:   "system prompt",
			},
			&cli.StringSliceFlag{
				Name:    "option",
				Aliases: []string{"o"},
				Usage:   "model option as name=value, repeatable",
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "API key, or the name of a stored key",
			},
			&cli.BoolFlag{
				Name:  "render",
				Usage: "render the response as markdown",
			},
			&cli.BoolFlag{
				Name:  "show-request",
				Usage: "print the request sent to the API to stderr",
			},
			&cli.BoolFlag{
				Name:    "usage",
				Aliases: []string{"u"},
				Usage:   "print token usage to stderr",
			},
		},
		Action: a.promptAction,
	}
}

func (a *app) promptAction(ctx context.Context, cmd *cli.Command) error {
	text, err := a.readPrompt(cmd.Args().First())
	if err != nil {
		return err
	}

	raw, err := options.ParsePairs(cmd.StringSlice("option"))
	if err != nil {
		return err
	}

	eng, err := a.engine()
	if err != nil {
		return err
	}

	model := cmd.String("model")
	if model == "" {
		model = eng.DefaultModel()
	}

	req := engine.PromptRequest{
		Prompt:       text,
		System:       cmd.String("system"),
		Model:        model,
		Options:      raw,
		Key:          cmd.String("key"),
		Conversation: modeladapter.NewConversation(model),
	}

	render := cmd.Bool("render")

	var out io.Writer = a.stdout
	var buf strings.Builder
	if render {
		out = &buf
	}

	r, err := eng.Prompt(ctx, req, out)
	if r != nil && cmd.Bool("show-request") {
		a.printRequest(r)
	}
	if err != nil {
		return err
	}

	if render {
		rendered, err := format.RenderMarkdown(buf.String(), a.outputWidth(), lipgloss.HasDarkBackground())
		if err != nil {
			return err
		}
		_, _ = io.WriteString(a.stdout, rendered)
	} else if !strings.HasSuffix(r.Text(), "\n") {
		_, _ = io.WriteString(a.stdout, "\n")
	}

	if cmd.Bool("usage") {
		_, _ = fmt.Fprintln(a.stderr, format.DimStyle.Render(format.Usage(r.Usage, r.Duration())))
	}

	return nil
}

// readPrompt combines piped stdin with the prompt argument. When both are
// present the stdin text comes first, followed by a blank line.
func (a *app) readPrompt(arg string) (string, error) {
	var piped string
	if !a.stdinIsTerminal() && a.stdin != nil {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		piped = strings.TrimRight(string(data), "\n")
	}

	var text string
	switch {
	case piped != "" && arg != "":
		text = piped + "\n\n" + arg
	case piped != "":
		text = piped
	default:
		text = arg
	}

	if strings.TrimSpace(text) == "" {
		return "", errNoPrompt
	}

	return text, nil
}

// printRequest writes the recorded request body, indented, to stderr.
func (a *app) printRequest(r *modeladapter.Response) {
	if len(r.RequestJSON) == 0 {
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, r.RequestJSON, "", "  "); err != nil {
		buf.Reset()
		buf.Write(r.RequestJSON)
	}
	buf.WriteString("\n")

	_, _ = a.stderr.Write(buf.Bytes())
}
