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



// Package storage provides the storage abstraction layer for taxonomist.
//
// This package defines the TaxonomyStore and Collection interfaces that
// decouple vector-search engines from the hierarchical search logic, plus the
// helpers every engine shares: entry preparation (validation, embedding of
// missing vectors, normalization, dimensionality checks), deterministic match
// ranking, and binary serialization of entries.
//
// # Engines
//
//   - storage/chromem: chromem-go, persistent directory or in-memory (default)
//   - storage/badger: BadgerDB key-value store with brute-force cosine search
//   - storage/qdrant: remote Qdrant server over gRPC
//
// All engines agree with core.Filter.Matches on which entries a filter selects
// and order results by similarity descending, breaking ties by id.
//
// # Usage
//
//	store, err := chromem.Open(path, chromem.WithEmbedder(embedder))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	coll, err := store.EnsureCollection(ctx, "categories_collection")
//	err = coll.Insert(ctx, core.NewCategoryEntry("Books"))
//	matches, err := coll.QueryNearest(ctx, vector, 5, core.ByKind(core.KindCategory))
//
// # Errors
//
// Engine failures are returned as *StoreError carrying the operation and
// collection name; check the cause with errors.Is against the sentinels in
// this package. The store layer never retries.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent reads and
// upserts from multiple goroutines.
package storage
