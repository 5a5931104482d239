package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "transient wrapper",
			err:  NewTransientError(errors.New("rate limited")),
			want: true,
		},
		{
			name: "wrapped transient",
			err:  fmt.Errorf("fetch balances: %w", NewTransientError(errors.New("status 503"))),
			want: true,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "auth error",
			err:  NewAuthError(VenueBinance, errors.New("status 403")),
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("invalid payload"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("call: %w", &TransientError{Err: errors.New("throttled"), RetryAfter: 3 * time.Second})
	assert.Equal(t, 3*time.Second, RetryAfter(err))
	assert.Equal(t, time.Duration(0), RetryAfter(errors.New("other")))
}

func TestHTTPStatusClassification(t *testing.T) {
	assert.True(t, TransientHTTPStatus(429))
	assert.True(t, TransientHTTPStatus(503))
	assert.False(t, TransientHTTPStatus(400))
	assert.False(t, TransientHTTPStatus(403))

	assert.True(t, AuthHTTPStatus(401))
	assert.True(t, AuthHTTPStatus(403))
	assert.False(t, AuthHTTPStatus(500))
}
