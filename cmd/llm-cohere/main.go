// Command llm-cohere runs prompts against Cohere's Generate and Summarize
// models and manages the API keys and config they use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/accudio/llm-cohere/cmd/llm-cohere/internal/format"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)

	root, err := a.command()
	if err == nil {
		err = root.Run(ctx, os.Args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, format.ErrorStyle.Render("Error:"), err)
		stop()
		os.Exit(1)
	}
}
