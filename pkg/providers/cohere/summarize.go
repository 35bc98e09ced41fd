package cohere

import (
	"context"
	"fmt"
	"iter"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
)

// SummarizeModelID is the id the Summarize model is registered under.
const SummarizeModelID = "cohere-summarize"

// Auto lets the API pick length, format, or extractiveness from the input.
const Auto = "auto"

// Summarize option domains.
var (
	Lengths          = []string{"short", "medium", "long", Auto}
	Formats          = []string{"paragraph", "bullets", Auto}
	SummarizeModels  = []string{"summarize-medium", "summarize-xlarge"}
	Extractivenesses = []string{"low", "medium", "high", Auto}
)

// DefaultSummarizeModel is used when the model option is not supplied.
const DefaultSummarizeModel = "summarize-xlarge"

const maxSummarizeTemp = 5.0

var summarizeFields = []options.Field{
	{
		Name: "length",
		Description: "Indicates the approximate length of the summary. One of `short`, `medium`, `long`, or `auto` (default). " +
			"If `auto` is selected, the best option will be picked based on the input text.",
		Type:    options.String,
		Default: Auto,
		Choices: Lengths,
	},
	{
		Name: "format",
		Description: "Indicates the style in which the summary will be delivered - in a free form paragraph or in bullet points. " +
			"One of `paragraph`, `bullets`, or `auto` (default). If `auto` is selected, the best option will be picked based on the input text.",
		Type:    options.String,
		Default: Auto,
		Choices: Formats,
	},
	{
		Name: "model",
		Description: "The ID of the model to generate the summary with. Currently available models are `summarize-medium` and " +
			"`summarize-xlarge` (default). Smaller models are faster, while larger models will perform better",
		Type:    options.String,
		Default: DefaultSummarizeModel,
		Choices: SummarizeModels,
	},
	{
		Name: "extractiveness",
		Description: "Controls how close to the original text the summary is. One of `low`, `medium`, `high`, or `auto` (default). " +
			"High extractiveness summaries will lean towards reusing sentences verbatim, while low extractiveness summaries will " +
			"tend to paraphrase more. If `auto` is selected, the best option will be picked based on the input text.",
		Type:    options.String,
		Default: Auto,
		Choices: Extractivenesses,
	},
	{
		Name: "temperature",
		Description: "Controls the randomness of the output. Ranges from 0 to 5, defaults to 0.75. Lower values tend to generate " +
			"more 'predictable' output, while higher values tend to generate more 'creative' output. The sweet spot is typically between 0 and 1.",
		Type:    options.Float,
		Default: "0.75",
	},
	{
		Name: "additional_command",
		Description: "A free-form instruction for modifying how the summaries get generated. Should complete the sentence " +
			"'Generate a summary _'. Eg. 'focusing on the next steps' or 'written by Yoda'",
		Type: options.String,
	},
}

// SummarizeOptions are the options of the Summarize model. Empty enum fields
// and a nil Temperature take their defaults when the request is built.
type SummarizeOptions struct {
	Length            string
	Format            string
	Model             string
	Extractiveness    string
	Temperature       *float64
	AdditionalCommand string
}

// Validate checks each enumerated field against its domain and Temperature
// in [0, 5]. AdditionalCommand is free-form.
func (o SummarizeOptions) Validate() error {
	checks := []error{
		options.OneOf("length", o.Length, Lengths...),
		options.OneOf("format", o.Format, Formats...),
		options.OneOf("model", o.Model, SummarizeModels...),
		options.OneOf("extractiveness", o.Extractiveness, Extractivenesses...),
		options.FloatBetween("temperature", o.Temperature, 0, maxSummarizeTemp),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseSummarizeOptions builds validated SummarizeOptions from caller input.
func ParseSummarizeOptions(raw options.Raw) (SummarizeOptions, error) {
	if err := options.Check(summarizeFields, raw); err != nil {
		return SummarizeOptions{}, err
	}

	var (
		o   SummarizeOptions
		err error
	)
	if o.Length, err = raw.Choice("length", Lengths...); err != nil {
		return SummarizeOptions{}, err
	}
	if o.Format, err = raw.Choice("format", Formats...); err != nil {
		return SummarizeOptions{}, err
	}
	if o.Model, err = raw.Choice("model", SummarizeModels...); err != nil {
		return SummarizeOptions{}, err
	}
	if o.Extractiveness, err = raw.Choice("extractiveness", Extractivenesses...); err != nil {
		return SummarizeOptions{}, err
	}
	if o.Temperature, err = raw.Float("temperature"); err != nil {
		return SummarizeOptions{}, err
	}
	o.AdditionalCommand, _ = raw.String("additional_command")

	if err := o.Validate(); err != nil {
		return SummarizeOptions{}, err
	}
	return o, nil
}

// summarizeRequest is the body of POST /summarize. The model option is
// validated but not part of the request.
type summarizeRequest struct {
	Text              string  `json:"text"`
	Length            string  `json:"length"`
	Format            string  `json:"format"`
	Extractiveness    string  `json:"extractiveness"`
	Temperature       float64 `json:"temperature"`
	AdditionalCommand string  `json:"additional_command,omitempty"`
}

type summarizeResponse struct {
	ID      string  `json:"id"`
	Summary string  `json:"summary"`
	Meta    apiMeta `json:"meta"`
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// buildSummarizeRequest merges o with the defaults.
func buildSummarizeRequest(p *modeladapter.Prompt, o SummarizeOptions) summarizeRequest {
	req := summarizeRequest{
		Text:              p.Text,
		Length:            orDefault(o.Length, Auto),
		Format:            orDefault(o.Format, Auto),
		Extractiveness:    orDefault(o.Extractiveness, Auto),
		Temperature:       DefaultTemperature,
		AdditionalCommand: o.AdditionalCommand,
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	return req
}

// Summarize is the "cohere-summarize" model: a summary of the prompt text.
type Summarize struct {
	model
}

// NewSummarize creates the Summarize model.
func NewSummarize(opts ...Option) *Summarize {
	return &Summarize{model: newModel(SummarizeModelID, newSettings(opts))}
}

// OptionFields describes the summarize options.
func (s *Summarize) OptionFields() []options.Field { return summarizeFields }

// NewOptions implements modeladapter.Model.
func (s *Summarize) NewOptions(raw options.Raw) (modeladapter.Options, error) {
	return ParseSummarizeOptions(raw)
}

// Execute sends one summarize request when the sequence is ranged over and
// yields the summary, or "" when the API returns none. The system prompt is
// not used.
func (s *Summarize) Execute(ctx context.Context, p *modeladapter.Prompt, r *modeladapter.Response) iter.Seq2[string, error] {
	return single(func() (string, error) {
		o, err := summarizeOptionsOf(p.Options)
		if err != nil {
			return "", err
		}

		var resp summarizeResponse
		if err := s.post(ctx, p, r, "/summarize", buildSummarizeRequest(p, o), &resp); err != nil {
			return "", err
		}

		r.Usage = resp.Meta.usage()
		return resp.Summary, nil
	})
}

func summarizeOptionsOf(opts modeladapter.Options) (SummarizeOptions, error) {
	var o SummarizeOptions
	switch v := opts.(type) {
	case nil:
	case SummarizeOptions:
		o = v
	case *SummarizeOptions:
		if v != nil {
			o = *v
		}
	default:
		return o, fmt.Errorf("cohere: %w: %T", modeladapter.ErrOptionsType, opts)
	}
	return o, o.Validate()
}

// Compile-time check that Summarize implements Model.
var _ modeladapter.Model = (*Summarize)(nil)
