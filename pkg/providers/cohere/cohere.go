// Package cohere provides the Cohere Generate and Summarize models as a
// plugin. Each model implements modeladapter.Model on top of Cohere's v1 REST
// API: options are validated before any I/O, exactly one request is sent per
// Execute, and the request body is recorded on the Response.
package cohere

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"os"
	"strings"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/usage"
)

const (
	// DefaultBaseURL is the base URL for Cohere's v1 API.
	DefaultBaseURL = "https://api.cohere.ai/v1"

	// KeyName is the stored-key name both models authenticate with.
	KeyName = "cohere"

	// KeyEnvVar is the environment variable consulted when no key is stored.
	KeyEnvVar = "COHERE_API_KEY"

	// ClientName is sent as X-Client-Name on every request.
	ClientName = "llm-cohere"
)

// KeyResolver resolves the API key for a call from an explicit value, a
// stored-key name, and an environment variable.
type KeyResolver interface {
	ResolveKey(explicit, keyName, envVar string) (string, error)
}

// KeyResolverFunc adapts a function to KeyResolver.
type KeyResolverFunc func(explicit, keyName, envVar string) (string, error)

// ResolveKey calls f.
func (f KeyResolverFunc) ResolveKey(explicit, keyName, envVar string) (string, error) {
	return f(explicit, keyName, envVar)
}

// EnvKeys resolves keys without a key store: the explicit value wins, then
// the environment variable.
var EnvKeys = KeyResolverFunc(func(explicit, keyName, envVar string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", &modeladapter.MissingCredentialError{KeyName: keyName, EnvVar: envVar}
})

// Option configures the models created by New.
type Option func(*settings)

type settings struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	keys    KeyResolver
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithHeaders adds extra headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(s *settings) { maps.Copy(s.headers, h) }
}

// WithKeyResolver sets how API keys are resolved. The default is EnvKeys.
func WithKeyResolver(k KeyResolver) Option {
	return func(s *settings) { s.keys = k }
}

func newSettings(opts []Option) settings {
	s := settings{
		baseURL: DefaultBaseURL,
		headers: map[string]string{"X-Client-Name": ClientName},
		keys:    EnvKeys,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// model carries what Generate and Summarize share. It is immutable after
// construction.
type model struct {
	modeladapter.ModelAdapter

	id   string
	keys KeyResolver
}

func newModel(id string, s settings) model {
	a := modeladapter.New(s.baseURL, modeladapter.Auth{}, s.client)
	a.Headers = maps.Clone(s.headers)

	return model{ModelAdapter: a, id: id, keys: s.keys}
}

// ID returns the registered model id.
func (m *model) ID() string { return m.id }

// KeyName returns the stored-key name, "cohere".
func (m *model) KeyName() string { return KeyName }

// KeyEnvVar returns "COHERE_API_KEY".
func (m *model) KeyEnvVar() string { return KeyEnvVar }

// String implements fmt.Stringer.
func (m *model) String() string { return fmt.Sprintf("Cohere: %s", m.id) }

// post resolves the key, records the request body on r, and sends it.
func (m *model) post(ctx context.Context, p *modeladapter.Prompt, r *modeladapter.Response, path string, req, dest any) error {
	key, err := m.keys.ResolveKey(p.Key, KeyName, KeyEnvVar)
	if err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("cohere: marshal request: %w", err)
	}
	r.RecordRequest(body)

	return m.WithKey(key).PostJSON(ctx, path, json.RawMessage(body), dest)
}

// single yields exactly one chunk produced by fn, or its error.
func single(fn func() (string, error)) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		text, err := fn()
		if err != nil {
			yield("", err)
			return
		}
		yield(text, nil)
	}
}

// API types shared by both endpoints.

type apiMeta struct {
	BilledUnits struct {
		InputTokens  float64 `json:"input_tokens"`
		OutputTokens float64 `json:"output_tokens"`
	} `json:"billed_units"`
}

func (m apiMeta) usage() usage.TokenCount {
	return usage.TokenCount{
		InputTokens:  int(m.BilledUnits.InputTokens),
		OutputTokens: int(m.BilledUnits.OutputTokens),
	}
}
