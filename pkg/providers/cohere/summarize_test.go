package cohere_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/accudio/llm-cohere/pkg/modeladapter/options"
	"github.com/accudio/llm-cohere/pkg/providers/cohere"
)

func summary(text any) map[string]any {
	return map[string]any{
		"id":      "sum-1",
		"summary": text,
		"meta": map[string]any{
			"billed_units": map[string]any{"input_tokens": 120, "output_tokens": 30},
		},
	}
}

func TestSummarize_DefaultRequest(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("A short summary."))
	s := api.plugin().Summarize

	r, err := run(t, s, &modeladapter.Prompt{Text: "long article text", Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, "/summarize", api.path.Load())
	assert.Equal(t, map[string]any{
		"text":           "long article text",
		"length":         "auto",
		"format":         "auto",
		"extractiveness": "auto",
		"temperature":    0.75,
	}, api.sent())
	assert.NotContains(t, string(r.RequestJSON), "additional_command")
	assert.NotContains(t, string(r.RequestJSON), `"model"`)

	assert.Equal(t, "A short summary.", r.Text())
	assert.Equal(t, 150, r.Usage.Total())
}

func TestSummarize_AllOptions(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("- one\n- two"))
	s := api.plugin().Summarize

	opts, err := s.NewOptions(options.Raw{
		"length":             "short",
		"format":             "bullets",
		"model":              "summarize-medium",
		"extractiveness":     "high",
		"temperature":        "4.5",
		"additional_command": "focusing on the next steps",
	})
	require.NoError(t, err)

	_, err = run(t, s, &modeladapter.Prompt{Text: "notes", Options: opts, Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"text":               "notes",
		"length":             "short",
		"format":             "bullets",
		"extractiveness":     "high",
		"temperature":        4.5,
		"additional_command": "focusing on the next steps",
	}, api.sent())
}

func TestSummarize_EmptyAdditionalCommandOmitted(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("ok"))
	s := api.plugin().Summarize

	opts, err := s.NewOptions(options.Raw{"additional_command": ""})
	require.NoError(t, err)

	_, err = run(t, s, &modeladapter.Prompt{Text: "notes", Options: opts, Key: "k"})
	require.NoError(t, err)

	assert.NotContains(t, api.sent(), "additional_command")
}

func TestSummarize_ZeroTemperatureSent(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("ok"))
	s := api.plugin().Summarize

	_, err := run(t, s, &modeladapter.Prompt{
		Text:    "notes",
		Options: &cohere.SummarizeOptions{Temperature: ptr(0.0)},
		Key:     "k",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0, api.sent()["temperature"], 0)
}

func TestSummarize_SystemIgnored(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("ok"))
	s := api.plugin().Summarize

	_, err := run(t, s, &modeladapter.Prompt{Text: "notes", System: "be brief", Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, "notes", api.sent()["text"])
}

func TestSummarize_NullSummary(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary(nil))
	s := api.plugin().Summarize

	r, err := run(t, s, &modeladapter.Prompt{Text: "notes", Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, []string{""}, r.Chunks())
}

func TestSummarize_Validation(t *testing.T) {
	tests := []struct {
		name  string
		raw   options.Raw
		field string
	}{
		{name: "unknown model", raw: options.Raw{"model": "gpt-huge"}, field: "model"},
		{name: "bad length", raw: options.Raw{"length": "tiny"}, field: "length"},
		{name: "bad format", raw: options.Raw{"format": "table"}, field: "format"},
		{name: "bad extractiveness", raw: options.Raw{"extractiveness": "extreme"}, field: "extractiveness"},
		{name: "empty enum", raw: options.Raw{"length": ""}, field: "length"},
		{name: "case sensitive", raw: options.Raw{"format": "Bullets"}, field: "format"},
		{name: "temperature above range", raw: options.Raw{"temperature": "5.5"}, field: "temperature"},
		{name: "temperature negative", raw: options.Raw{"temperature": "-1"}, field: "temperature"},
		{name: "unknown option", raw: options.Raw{"max_tokens": "10"}, field: "max_tokens"},
	}

	s := cohere.NewSummarize()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.NewOptions(tt.raw)

			var ve *options.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSummarize_ExecuteRejectsInvalidStruct(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, summary("ok"))
	s := api.plugin().Summarize

	_, err := run(t, s, &modeladapter.Prompt{
		Text:    "notes",
		Options: cohere.SummarizeOptions{Model: "gpt-huge"},
		Key:     "k",
	})

	var ve *options.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "model", ve.Field)
	assert.Zero(t, api.calls.Load())
}

func TestSummarize_EnumDomains(t *testing.T) {
	s := cohere.NewSummarize()

	for _, l := range cohere.Lengths {
		for _, f := range cohere.Formats {
			for _, e := range cohere.Extractivenesses {
				_, err := s.NewOptions(options.Raw{"length": l, "format": f, "extractiveness": e})
				assert.NoError(t, err)
			}
		}
	}
	for _, m := range cohere.SummarizeModels {
		_, err := s.NewOptions(options.Raw{"model": m})
		assert.NoError(t, err)
	}
	for _, temp := range []string{"0", "5", "0.75"} {
		_, err := s.NewOptions(options.Raw{"temperature": temp})
		assert.NoError(t, err)
	}
}

func TestSummarize_OptionsIdempotent(t *testing.T) {
	raw := options.Raw{"length": "long", "temperature": "1", "additional_command": "written by Yoda"}

	a, err := cohere.ParseSummarizeOptions(raw)
	require.NoError(t, err)
	b, err := cohere.ParseSummarizeOptions(raw)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSummarize_OptionFieldDefaults(t *testing.T) {
	defaults := map[string]string{}
	for _, f := range cohere.NewSummarize().OptionFields() {
		defaults[f.Name] = f.Default
	}

	assert.Equal(t, map[string]string{
		"length":             "auto",
		"format":             "auto",
		"model":              "summarize-xlarge",
		"extractiveness":     "auto",
		"temperature":        "0.75",
		"additional_command": "",
	}, defaults)
}
