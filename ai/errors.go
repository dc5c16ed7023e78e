// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired is returned when a nil embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyEmbedding is returned when the backend answers with no vector.
	ErrEmptyEmbedding = errors.New("backend returned an empty embedding")
)

// ErrorKind tells whether an embedding failure is worth retrying.
type ErrorKind int

const (
	// Permanent failures (invalid input, authentication) are never retried.
	Permanent ErrorKind = iota
	// Transient failures (rate limiting, timeouts, network errors) may be retried.
	Transient
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	if k == Transient {
		return "transient"
	}
	return "permanent"
}

// EmbeddingError reports a failed embedding backend call.
type EmbeddingError struct {
	Kind  ErrorKind
	Cause error
}

// NewTransientError wraps cause as a retryable embedding failure.
func NewTransientError(cause error) *EmbeddingError {
	return &EmbeddingError{Kind: Transient, Cause: cause}
}

// NewPermanentError wraps cause as a non-retryable embedding failure.
func NewPermanentError(cause error) *EmbeddingError {
	return &EmbeddingError{Kind: Permanent, Cause: cause}
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Kind, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err is, or wraps, a transient EmbeddingError.
func IsTransient(err error) bool {
	var embErr *EmbeddingError
	return errors.As(err, &embErr) && embErr.Kind == Transient
}

// IsPermanent reports whether err is, or wraps, a permanent EmbeddingError.
func IsPermanent(err error) bool {
	var embErr *EmbeddingError
	return errors.As(err, &embErr) && embErr.Kind == Permanent
}
