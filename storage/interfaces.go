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



package storage

import (
	"context"

	"github.com/poiesic/taxonomist/core"
)

// TaxonomyStore manages named collections of taxonomy entries.
// Implementations must be thread-safe and support concurrent access.
type TaxonomyStore interface {
	// EnsureCollection returns the named collection, creating it if needed.
	// Existing data is never dropped.
	EnsureCollection(ctx context.Context, name string) (Collection, error)

	// DeleteCollection irreversibly removes the named collection and its entries.
	// Returns ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases the underlying engine. Collections obtained from the
	// store must not be used afterwards.
	Close() error
}

// Collection is one named set of category and subcategory entries.
// Implementations must be thread-safe; concurrent upserts of the same id are
// last-writer-wins.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Insert upserts entries by id. Entries without a vector are embedded with
	// the store's embedder. Vectors are normalized to unit length and must
	// match the collection's dimensionality. Entries are upserted one at a
	// time; a failure leaves earlier entries in place.
	Insert(ctx context.Context, entries ...*core.Entry) error

	// QueryNearest returns up to topK entries matching filter, ordered by
	// similarity descending and then id ascending. Returns an empty slice
	// when nothing matches.
	QueryNearest(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error)

	// Get returns the entry with the given id.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id string) (*core.Entry, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)
}
