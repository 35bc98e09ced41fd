package engine

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/providers/cohere"
)

// Plugin contributes models and commands to the host.
type Plugin interface {
	RegisterModels(register func(modeladapter.Model) error) error
	Commands() []*cli.Command
}

// KeyResolver resolves the API key for a call. *KeyStore implements it.
type KeyResolver interface {
	ResolveKey(explicit, keyName, envVar string) (string, error)
}

// PluginFactory creates a Plugin from a ProviderConfig.
type PluginFactory func(cfg ProviderConfig, keys KeyResolver) (Plugin, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]PluginFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[DefaultKind] = newCohere
	})
}

// RegisterPlugin registers a plugin factory under the given kind. It can be
// called before New to extend the host with additional plugins.
func RegisterPlugin(kind string, factory PluginFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (PluginFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newCohere(cfg ProviderConfig, keys KeyResolver) (Plugin, error) {
	opts := []cohere.Option{
		cohere.WithKeyResolver(keys),
		cohere.WithHeaders(cfg.Headers),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, cohere.WithBaseURL(cfg.BaseURL))
	}

	timeout, err := cfg.timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, cohere.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	return cohere.New(opts...), nil
}

// buildPlugin creates a Plugin from a ProviderConfig using the registered
// factory for its Kind.
func buildPlugin(cfg ProviderConfig, keys KeyResolver) (Plugin, error) {
	factory, ok := getFactory(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("engine: unknown plugin kind %q", cfg.Kind)
	}

	return factory(cfg, keys)
}

// PluginCommands builds the plugins configured in cfg and returns their
// command groups. No models are registered, so it can run before the CLI has
// parsed its flags.
func PluginCommands(cfg Config) ([]*cli.Command, error) {
	var cmds []*cli.Command
	for _, pc := range cfg.providers() {
		p, err := buildPlugin(pc, cohere.EnvKeys)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}
		cmds = append(cmds, p.Commands()...)
	}
	return cmds, nil
}
