package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
	"github.com/accudio/llm-cohere/pkg/providers/cohere"
)

// Engine is the composition root: it builds plugins from configuration,
// registers their models, and runs prompts.
type Engine struct {
	cfg      Config
	registry *Registry
	keys     KeyResolver
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithKeys sets how API keys are resolved, usually a *KeyStore. The default
// only consults explicit keys and the environment.
func WithKeys(k KeyResolver) Option {
	return func(e *Engine) { e.keys = k }
}

// New creates an Engine from the given configuration. It validates the
// config, builds one plugin per provider (the default cohere plugin when
// none is configured), and registers their models.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		registry: NewRegistry(),
		keys:     cohere.EnvKeys,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, pc := range cfg.providers() {
		p, err := buildPlugin(pc, e.keys)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}
		if err := p.RegisterModels(e.registry.Register); err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}
	}

	if cfg.DefaultModel != "" {
		if _, err := e.registry.Get(cfg.DefaultModel); err != nil {
			return nil, fmt.Errorf("engine: config: default_model: %w", err)
		}
	}

	return e, nil
}

// Models returns the registered models in registration order.
func (e *Engine) Models() []modeladapter.Model { return e.registry.Models() }

// ModelOptions describes the options the model registered under id accepts.
func (e *Engine) ModelOptions(id string) ([]options.Field, error) {
	m, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return m.OptionFields(), nil
}

// DefaultModel returns the model id used when a request names none.
func (e *Engine) DefaultModel() string {
	if e.cfg.DefaultModel != "" {
		return e.cfg.DefaultModel
	}
	return FallbackModel
}

// PromptRequest is a single prompt as the frontend collected it.
type PromptRequest struct {
	Prompt       string
	System       string
	Model        string      // Empty means DefaultModel.
	Options      options.Raw // Unparsed name=value options.
	Key          string      // Explicit key or stored-key alias.
	Conversation *modeladapter.Conversation
}

// Prompt runs req and writes each output chunk to w as it arrives. Option
// validation happens before the model is executed, so invalid options never
// reach the API. Errors from the model are returned unmodified. The returned
// Response is non-nil whenever the model ran, even on error.
func (e *Engine) Prompt(ctx context.Context, req PromptRequest, w io.Writer) (*modeladapter.Response, error) {
	id := req.Model
	if id == "" {
		id = e.DefaultModel()
	}

	m, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}

	opts, err := m.NewOptions(req.Options)
	if err != nil {
		return nil, fmt.Errorf("engine: %s: %w", id, err)
	}

	p := &modeladapter.Prompt{
		Text:         req.Prompt,
		System:       req.System,
		Options:      opts,
		Key:          req.Key,
		Conversation: req.Conversation,
	}
	r := modeladapter.NewResponse(id, p)

	e.log.InfoContext(ctx, "prompt started", "model", id, "response", r.ID)

	err = e.run(ctx, m, p, r, w)

	if err != nil {
		e.log.ErrorContext(ctx, "prompt finished with error",
			"model", id,
			"duration", r.Duration(),
			"error", err,
		)
	} else {
		e.log.InfoContext(ctx, "prompt finished",
			"model", id,
			"duration", r.Duration(),
			"input_tokens", r.Usage.InputTokens,
			"output_tokens", r.Usage.OutputTokens,
		)
	}

	return r, err
}

func (e *Engine) run(ctx context.Context, m modeladapter.Model, p *modeladapter.Prompt, r *modeladapter.Response, w io.Writer) error {
	defer func() { r.End = time.Now() }()

	for chunk, err := range m.Execute(ctx, p, r) {
		if err != nil {
			return err
		}

		r.Append(chunk)

		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return fmt.Errorf("engine: write output: %w", err)
		}
	}

	return nil
}
