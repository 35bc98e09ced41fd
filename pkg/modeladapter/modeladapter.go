package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single API call when no client is supplied.
const DefaultTimeout = 10 * time.Minute

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
		return 0
	}
	return 0
}

// Auth holds authentication settings for an LLM provider API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// ModelAdapter holds the transport settings shared by provider models. Embed
// it in concrete model structs to get HTTP helpers, auth, and custom headers.
// All fields are set at construction and treated as read-only afterwards, so
// a ModelAdapter is safe for concurrent use. Per-call credentials are applied
// to a copy with WithKey.
type ModelAdapter struct {
	Auth    Auth              // Authentication settings.
	BaseURL string            // API base URL (no trailing slash).
	Client  *http.Client      // HTTP client; nil means a client with DefaultTimeout.
	Headers map[string]string // Extra headers applied to every request.
}

// New creates a ModelAdapter with the given settings. A nil client is
// replaced with one using DefaultTimeout.
func New(baseURL string, auth Auth, client *http.Client) ModelAdapter {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return ModelAdapter{
		Auth:    auth,
		BaseURL: baseURL,
		Client:  client,
	}
}

// WithKey returns a copy of the adapter authenticated with key.
func (a ModelAdapter) WithKey(key string) ModelAdapter {
	a.Auth.Key = key
	return a
}

// httpClient returns the configured client or http.DefaultClient.
func (a ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	return http.DefaultClient
}

// authHeader returns the header name and value carrying the API key.
func (a ModelAdapter) authHeader() (string, string) {
	header := a.Auth.Header
	if header == "" {
		header = "Authorization"
	}

	value := a.Auth.Key
	if header == "Authorization" {
		scheme := a.Auth.Scheme
		if scheme == "" {
			scheme = "Bearer"
		}

		value = scheme + " " + value
	} else if a.Auth.Scheme != "" {
		value = a.Auth.Scheme + " " + value
	}

	return header, value
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if a.Auth.Key != "" {
		req.Header.Set(a.authHeader())
	}

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path,
// checks for a 2xx status, and unmarshals the response body into dest.
// If dest is nil the response body is discarded after the status check.
// Every failure is reported as a *ServiceError.
func (a ModelAdapter) PostJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ServiceError{Op: "marshal payload", Err: err}
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return &ServiceError{Op: "build request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return &ServiceError{Op: "do request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return statusError(resp, respBody)
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &ServiceError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}

// statusError builds a ServiceError for a non-2xx response. The API message
// is taken from a JSON body of the form {"message": "..."} when present.
func statusError(resp *http.Response, body []byte) *ServiceError {
	e := &ServiceError{
		Op:         "status",
		StatusCode: resp.StatusCode,
		Message:    string(bytes.TrimSpace(body)),
	}

	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		e.Message = apiErr.Message
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		e.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"))
	}

	return e
}
