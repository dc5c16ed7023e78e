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



// Package goopenai provides an ai.Embedder built on the go-openai client.
//
// Unlike the langchaingo backend, go-openai reports HTTP failures as typed
// *openai.APIError and *openai.RequestError values. Their status codes are
// mapped to transient or permanent failures with ai.ClassifyStatus, so rate
// limiting and server errors are retried while authentication and validation
// errors fail fast. Requested vector dimensions are forwarded to the API.
package goopenai
