package modeladapter_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingCredentialError(t *testing.T) {
	err := fmt.Errorf("engine: prompt: %w", &modeladapter.MissingCredentialError{
		KeyName: "cohere",
		EnvVar:  "COHERE_API_KEY",
	})

	assert.ErrorIs(t, err, modeladapter.ErrMissingKey)

	var mce *modeladapter.MissingCredentialError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "cohere", mce.KeyName)
	assert.Contains(t, err.Error(), "COHERE_API_KEY")
}

func TestMissingCredentialError_NoEnvVar(t *testing.T) {
	err := &modeladapter.MissingCredentialError{KeyName: "cohere"}
	assert.EqualError(t, err, "no key found: set it with 'keys set cohere'")
}

func TestServiceError_Messages(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *modeladapter.ServiceError
		want string
	}{
		{
			name: "transport",
			err:  &modeladapter.ServiceError{Op: "do request", Err: cause},
			want: "do request: connection refused",
		},
		{
			name: "status",
			err:  &modeladapter.ServiceError{Op: "status", StatusCode: 401, Message: "invalid api token"},
			want: "unexpected status 401: invalid api token",
		},
		{
			name: "rate limited",
			err: &modeladapter.ServiceError{
				Op: "status", StatusCode: 429, Message: "slow down", RetryAfter: 2 * time.Second,
			},
			want: "unexpected status 429 (retry after 2s): slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &modeladapter.ServiceError{Op: "do request", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.False(t, err.RateLimited())
}
