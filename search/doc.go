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



// Package search provides two-stage hierarchical search over a taxonomy.
//
// The Searcher embeds a free-text query once and walks the taxonomy top-down:
//
//  1. Category lookup: nearest entries filtered to kind=category. No result
//     ends the search with core.OutcomeNoMatch.
//  2. Subcategory lookup: nearest entries filtered to kind=subcategory and
//     parent_category equal to the best category. No result ends the search
//     with core.OutcomeCategoryOnly.
//
// Otherwise the outcome is core.OutcomeMatch with both labels set. Embedding
// failures are retried according to the searcher's ai.RetryPolicy; store
// failures and exhausted retries abort the search without a partial result.
//
// A SearchMonitor can observe each stage, e.g. for tracing or debugging.
package search
