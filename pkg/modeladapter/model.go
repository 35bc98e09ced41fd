package modeladapter

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
	"github.com/accudio/llm-cohere/pkg/modeladapter/usage"
)

// Options is a model's validated option set. Concrete types are defined by
// each model and built with Model.NewOptions.
type Options interface {
	Validate() error
}

// Model is a named capability the host can prompt. Implementations must be
// safe for concurrent use: all per-call state lives in the Prompt and
// Response passed to Execute.
type Model interface {
	// ID is the name the model is registered and selected under.
	ID() string
	// KeyName is the stored-key name holding the model's API key.
	KeyName() string
	// KeyEnvVar is the environment variable consulted when no key is stored.
	KeyEnvVar() string
	// OptionFields describes the options accepted by NewOptions.
	OptionFields() []options.Field
	// NewOptions parses and validates caller input into the model's options.
	NewOptions(raw options.Raw) (Options, error)
	// Execute lazily runs the prompt. The API is contacted when the sequence
	// is ranged over; an error is yielded as the final pair.
	Execute(ctx context.Context, p *Prompt, r *Response) iter.Seq2[string, error]
}

// Prompt is a single request to a model.
type Prompt struct {
	Text         string
	System       string
	Options      Options       // nil means all defaults.
	Key          string        // Explicit key or stored-key alias; may be empty.
	Conversation *Conversation // Not used to build requests.
}

// Conversation groups the responses produced in one host session.
type Conversation struct {
	ID        string
	Model     string
	Responses []*Response
}

// NewConversation returns an empty conversation for the given model id.
func NewConversation(model string) *Conversation {
	return &Conversation{ID: uuid.NewString(), Model: model}
}

// Response records the outcome of executing a Prompt.
type Response struct {
	ID     string
	Model  string
	Prompt *Prompt

	// RequestJSON is the exact request body sent to the API. It is kept for
	// inspection and never re-parsed.
	RequestJSON json.RawMessage
	Usage       usage.TokenCount
	Start       time.Time
	End         time.Time

	chunks []string
}

// NewResponse returns a Response for p and attaches it to p's conversation
// when there is one.
func NewResponse(model string, p *Prompt) *Response {
	r := &Response{
		ID:     uuid.NewString(),
		Model:  model,
		Prompt: p,
		Start:  time.Now(),
	}
	if p != nil && p.Conversation != nil {
		p.Conversation.Responses = append(p.Conversation.Responses, r)
	}
	return r
}

// Append adds a chunk of output text.
func (r *Response) Append(chunk string) { r.chunks = append(r.chunks, chunk) }

// Chunks returns the output chunks in order.
func (r *Response) Chunks() []string { return r.chunks }

// Text returns the full output text.
func (r *Response) Text() string { return strings.Join(r.chunks, "") }

// Duration is the time between Start and End, zero while running.
func (r *Response) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// RecordRequest stores the request body sent to the API.
func (r *Response) RecordRequest(body []byte) {
	r.RequestJSON = json.RawMessage(body)
}

// Collect ranges over seq, appending each chunk to r, and returns the first
// error. It marks the response finished.
func Collect(seq iter.Seq2[string, error], r *Response) error {
	defer func() { r.End = time.Now() }()

	for chunk, err := range seq {
		if err != nil {
			return err
		}
		r.Append(chunk)
	}
	return nil
}
