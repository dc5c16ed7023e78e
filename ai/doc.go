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



// Package ai provides abstractions for the embedding service used by Taxonomist.
//
// This package defines the Embedder interface and the error and retry model
// around it. Business logic depends on these abstractions rather than on a
// concrete client library.
//
// # Failure Model
//
// Embedding backends fail in two ways. Transient failures (rate limiting,
// timeouts, network errors, 5xx responses) may succeed on a later attempt;
// permanent failures (invalid input, authentication, 4xx responses) never will.
// Both are reported as *EmbeddingError with the corresponding Kind:
//
//	var embErr *ai.EmbeddingError
//	if errors.As(err, &embErr) && embErr.Kind == ai.Transient {
//	    // back off
//	}
//
// EmbedWithRetry and RetryingEmbedder retry only transient failures, up to
// RetryPolicy.MaxAttempts, with exponential or caller-supplied backoff and an
// optional per-attempt timeout.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/goopenai: OpenAI-compatible APIs through go-openai, with typed status codes
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	retrying, err := ai.NewRetryingEmbedder(embedder, cfg.RetryPolicy())
//	vector, err := retrying.EmbedText(ctx, "Smartphones")
package ai
