package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"

	"github.com/accudio/llm-cohere/cmd/llm-cohere/internal/format"
	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
)

func (a *app) modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List the available models",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "options",
				Usage: "show the options each model accepts",
			},
		},
		Action: a.modelsAction,
	}
}

func (a *app) modelsAction(_ context.Context, cmd *cli.Command) error {
	eng, err := a.engine()
	if err != nil {
		return err
	}

	models := eng.Models()
	def := eng.DefaultModel()

	if !cmd.Bool("options") {
		rows := make([][]string, 0, len(models))
		for _, m := range models {
			marker := ""
			if m.ID() == def {
				marker = "(default)"
			}
			rows = append(rows, []string{modelLabel(m), "key: " + m.KeyName(), marker})
		}
		_, err := io.WriteString(a.stdout, format.Columns(rows, 2))
		return err
	}

	var sb strings.Builder
	for _, m := range models {
		sb.WriteString(format.ModelStyle.Render(modelLabel(m)))
		sb.WriteString("\n")
		writeOptions(&sb, m.OptionFields(), a.outputWidth())
	}
	_, err = io.WriteString(a.stdout, sb.String())
	return err
}

func modelLabel(m modeladapter.Model) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return m.ID()
}

// writeOptions lists fields with their type and default, each followed by
// its wrapped description.
func writeOptions(sb *strings.Builder, fields []options.Field, width int) {
	if len(fields) == 0 {
		return
	}

	nameWidth := 0
	for _, f := range fields {
		nameWidth = max(nameWidth, runewidth.StringWidth(f.Name))
	}

	sb.WriteString("  Options:\n")
	for _, f := range fields {
		sb.WriteString("    ")
		sb.WriteString(format.OptionStyle.Render(runewidth.FillRight(f.Name, nameWidth)))
		sb.WriteString("  ")
		sb.WriteString(string(f.Type))
		if f.Default != "" {
			sb.WriteString(format.DimStyle.Render(" (default " + f.Default + ")"))
		}
		sb.WriteString("\n")
		if len(f.Choices) > 0 {
			sb.WriteString(format.Wrap("One of: "+strings.Join(f.Choices, ", "), width, "      "))
			sb.WriteString("\n")
		}
		sb.WriteString(format.Wrap(f.Description, width, "      "))
		sb.WriteString("\n")
	}
}
