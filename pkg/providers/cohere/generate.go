package cohere

import (
	"context"
	"fmt"
	"iter"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
)

// GenerateModelID is the id the Generate model is registered under.
const GenerateModelID = "cohere-generate"

// Call-time defaults for options the caller did not supply.
const (
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.75
)

const (
	generateAPIModel = "command"

	minMaxTokens    = 2
	maxMaxTokens    = 4000
	maxGenerateTemp = 2.0
)

var generateFields = []options.Field{
	{
		Name:        "max_tokens",
		Description: "Number of tokens to generate",
		Type:        options.Int,
		Default:     "200",
	},
	{
		Name:        "temperature",
		Description: "The randomness aspect of which tokens the model picks for output",
		Type:        options.Float,
		Default:     "0.75",
	},
}

// GenerateOptions are the options of the Generate model. Nil fields take
// their defaults when the request is built; an explicit zero temperature is
// sent as zero.
type GenerateOptions struct {
	MaxTokens   *int
	Temperature *float64
}

// Validate checks MaxTokens in [2, 4000] and Temperature in [0, 2].
func (o GenerateOptions) Validate() error {
	if err := options.IntBetween("max_tokens", o.MaxTokens, minMaxTokens, maxMaxTokens); err != nil {
		return err
	}
	return options.FloatBetween("temperature", o.Temperature, 0, maxGenerateTemp)
}

// ParseGenerateOptions builds validated GenerateOptions from caller input.
func ParseGenerateOptions(raw options.Raw) (GenerateOptions, error) {
	if err := options.Check(generateFields, raw); err != nil {
		return GenerateOptions{}, err
	}

	var (
		o   GenerateOptions
		err error
	)
	if o.MaxTokens, err = raw.Int("max_tokens"); err != nil {
		return GenerateOptions{}, err
	}
	if o.Temperature, err = raw.Float("temperature"); err != nil {
		return GenerateOptions{}, err
	}
	if err := o.Validate(); err != nil {
		return GenerateOptions{}, err
	}
	return o, nil
}

// generateRequest is the body of POST /generate.
type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	ID          string `json:"id"`
	Generations []struct {
		ID           string `json:"id"`
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"generations"`
	Meta apiMeta `json:"meta"`
}

// buildGenerateRequest merges o with the defaults. A system preamble is
// prepended to the prompt as "{system}: {prompt}".
func buildGenerateRequest(p *modeladapter.Prompt, o GenerateOptions) generateRequest {
	req := generateRequest{
		Model:       generateAPIModel,
		Prompt:      p.Text,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
	if o.MaxTokens != nil {
		req.MaxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if p.System != "" {
		req.Prompt = p.System + ": " + p.Text
	}
	return req
}

// Generate is the "cohere-generate" model: a single text completion.
type Generate struct {
	model
}

// NewGenerate creates the Generate model.
func NewGenerate(opts ...Option) *Generate {
	return &Generate{model: newModel(GenerateModelID, newSettings(opts))}
}

// OptionFields describes max_tokens and temperature.
func (g *Generate) OptionFields() []options.Field { return generateFields }

// NewOptions implements modeladapter.Model.
func (g *Generate) NewOptions(raw options.Raw) (modeladapter.Options, error) {
	return ParseGenerateOptions(raw)
}

// Execute sends one generate request when the sequence is ranged over and
// yields the first generation's text, or "" when there is none.
func (g *Generate) Execute(ctx context.Context, p *modeladapter.Prompt, r *modeladapter.Response) iter.Seq2[string, error] {
	return single(func() (string, error) {
		o, err := generateOptionsOf(p.Options)
		if err != nil {
			return "", err
		}

		var resp generateResponse
		if err := g.post(ctx, p, r, "/generate", buildGenerateRequest(p, o), &resp); err != nil {
			return "", err
		}

		r.Usage = resp.Meta.usage()
		if len(resp.Generations) == 0 {
			return "", nil
		}
		return resp.Generations[0].Text, nil
	})
}

func generateOptionsOf(opts modeladapter.Options) (GenerateOptions, error) {
	var o GenerateOptions
	switch v := opts.(type) {
	case nil:
	case GenerateOptions:
		o = v
	case *GenerateOptions:
		if v != nil {
			o = *v
		}
	default:
		return o, fmt.Errorf("cohere: %w: %T", modeladapter.ErrOptionsType, opts)
	}
	return o, o.Validate()
}

// Compile-time check that Generate implements Model.
var _ modeladapter.Model = (*Generate)(nil)
