package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	transient := []int{408, 409, 425, 429, 500, 502, 503, 504, 599}
	for _, code := range transient {
		assert.Equal(t, Transient, ClassifyStatus(code), "status %d", code)
	}

	permanent := []int{200, 400, 401, 403, 404, 413, 422, 600}
	for _, code := range permanent {
		assert.Equal(t, Permanent, ClassifyStatus(code), "status %d", code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"canceled", context.Canceled, Permanent},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), Transient},
		{"unexpected eof", io.ErrUnexpectedEOF, Transient},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), Transient},
		{"connection refused", syscall.ECONNREFUSED, Transient},
		{"net op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route")}, Transient},
		{"status 429 in message", errors.New("API returned unexpected status code: 429"), Transient},
		{"status 400 in message", errors.New("status 400: invalid input"), Permanent},
		{"status beats marker", errors.New("status code: 401 after timeout"), Permanent},
		{"rate limit text", errors.New("Rate limit reached for model"), Transient},
		{"unknown", errors.New("model not found"), Permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err)

			var embErr *EmbeddingError
			if assert.True(t, errors.As(err, &embErr)) {
				assert.Equal(t, tt.want, embErr.Kind)
			}
			assert.ErrorIs(t, err, tt.err, "cause must stay reachable")
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Classify(nil))
	})

	t.Run("existing classification kept", func(t *testing.T) {
		orig := NewPermanentError(context.DeadlineExceeded)
		assert.Same(t, orig, Classify(orig))
	})
}

func TestEmbeddingErrorMessage(t *testing.T) {
	err := NewTransientError(errors.New("busy"))
	assert.Equal(t, "embedding failed (transient): busy", err.Error())
	assert.Equal(t, "permanent", Permanent.String())
}
