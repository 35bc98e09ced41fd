package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/accudio/llm-cohere/cmd/llm-cohere/internal/format"
	"github.com/accudio/llm-cohere/cmd/llm-cohere/internal/logger"
	"github.com/accudio/llm-cohere/pkg/engine"
	"github.com/accudio/llm-cohere/pkg/llmdir"
)

// Environment variables read by the CLI besides the key variable.
const (
	envConfig = "LLM_COHERE_CONFIG"
	envModel  = "LLM_COHERE_MODEL"
)

// app holds the I/O streams and the state built from global flags.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	dir        llmdir.Dir
	configPath string
	verbose    bool
	logFormat  string
	keys       *engine.KeyStore
	eng        *engine.Engine
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr}
}

// command builds the root command.
func (a *app) command() (*cli.Command, error) {
	plugins, err := engine.PluginCommands(engine.DefaultConfig())
	if err != nil {
		return nil, err
	}

	cmds := []*cli.Command{
		a.promptCommand(),
		a.modelsCommand(),
		a.keysCommand(),
		a.initCommand(),
	}

	return &cli.Command{
		Name:                      "llm-cohere",
		Usage:                     "Run prompts against Cohere models",
		Reader:                    a.stdin,
		Writer:                    a.stdout,
		ErrWriter:                 a.stderr,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to .env file, ignored if missing (default: <user-dir>/.env)",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config file (default: <user-dir>/cohere.yaml)",
				Sources: cli.EnvVars(envConfig),
			},
			&cli.StringFlag{
				Name:    "user-dir",
				Usage:   "directory holding keys.json and the config",
				Sources: cli.EnvVars(llmdir.EnvVar),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format, text or json (overrides the config)",
			},
		},
		Before:   a.before,
		Commands: append(cmds, plugins...),
	}, nil
}

// before resolves the user directory, loads the .env file, and records the
// global flags for the subcommands.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	dir, err := userDir(cmd.String("user-dir"))
	if err != nil {
		return ctx, err
	}
	a.dir = dir

	envPath := cmd.String("env")
	if envPath == "" {
		envPath = dir.EnvPath()
	}
	if err := loadDotEnv(envPath); err != nil {
		return ctx, err
	}

	a.configPath = cmd.String("config")
	if a.configPath == "" {
		a.configPath = dir.ConfigPath()
	}
	a.verbose = cmd.Bool("verbose")
	a.logFormat = cmd.String("log-format")
	a.keys = engine.NewKeyStore(dir.KeysPath())

	return ctx, nil
}

// engine loads the config and builds the engine on first use.
func (a *app) engine() (*engine.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}

	cfg, err := engine.LoadConfigOrDefault(a.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(a.stderr, cfg.Log, a.verbose, a.logFormat)
	if err != nil {
		return nil, err
	}

	a.keys.SetLogger(log)

	eng, err := engine.New(cfg, engine.WithLogger(log), engine.WithKeys(a.keys))
	if err != nil {
		return nil, err
	}
	a.eng = eng

	return eng, nil
}

func userDir(flagValue string) (llmdir.Dir, error) {
	if flagValue != "" {
		return llmdir.New(flagValue), nil
	}
	return llmdir.Default()
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// stdinIsTerminal reports whether stdin is an interactive terminal. Readers
// that are not files count as piped input.
func (a *app) stdinIsTerminal() bool {
	f, ok := a.stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// outputWidth is the terminal width of stdout, or format.DefaultWidth.
func (a *app) outputWidth() int {
	f, ok := a.stdout.(*os.File)
	if !ok {
		return format.DefaultWidth
	}

	w, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // fd fits in int
	if err != nil || w <= 0 {
		return format.DefaultWidth
	}

	return w
}
