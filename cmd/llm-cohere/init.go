package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/accudio/llm-cohere/pkg/engine"
	"github.com/accudio/llm-cohere/pkg/llmdir"
	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/providers/cohere"
)

func (a *app) initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default config file to the user directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing config",
			},
		},
		Action: a.initAction,
	}
}

func (a *app) initAction(_ context.Context, cmd *cli.Command) error {
	data, err := defaultConfigYAML()
	if err != nil {
		return err
	}

	created := !a.dir.Exists()
	if err := llmdir.WriteConfig(a.dir, data, cmd.Bool("force")); err != nil {
		return err
	}
	if created {
		if _, err := fmt.Fprintf(a.stdout, "Created %s\n", a.dir.Root()); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(a.stdout, "Wrote %s\n", a.dir.ConfigPath())
	return err
}

// defaultConfigYAML renders DefaultConfig with every provider setting
// spelled out so the file documents itself.
func defaultConfigYAML() ([]byte, error) {
	cfg := engine.DefaultConfig()
	cfg.DefaultModel = engine.FallbackModel
	for i := range cfg.Providers {
		cfg.Providers[i].BaseURL = cohere.DefaultBaseURL
		cfg.Providers[i].Timeout = modeladapter.DefaultTimeout.String()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}
