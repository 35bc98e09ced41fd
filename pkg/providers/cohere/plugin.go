package cohere

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
)

// Plugin bundles the models and commands contributed to the host.
type Plugin struct {
	Generate  *Generate
	Summarize *Summarize
}

// New creates both models with the same settings.
func New(opts ...Option) *Plugin {
	s := newSettings(opts)
	return &Plugin{
		Generate:  &Generate{model: newModel(GenerateModelID, s)},
		Summarize: &Summarize{model: newModel(SummarizeModelID, s)},
	}
}

// Models returns the plugin's models in registration order.
func (p *Plugin) Models() []modeladapter.Model {
	return []modeladapter.Model{p.Generate, p.Summarize}
}

// RegisterModels hands each model to register, stopping at the first error.
func (p *Plugin) RegisterModels(register func(modeladapter.Model) error) error {
	for _, m := range p.Models() {
		if err := register(m); err != nil {
			return fmt.Errorf("cohere: register %s: %w", m.ID(), err)
		}
	}
	return nil
}

// Commands returns the plugin's command group. It has no subcommands yet and
// prints its help when invoked.
func (p *Plugin) Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "cohere",
			Usage: "Commands for working directly with Cohere",
			Action: func(_ context.Context, cmd *cli.Command) error {
				return cli.ShowSubcommandHelp(cmd)
			},
		},
	}
}
