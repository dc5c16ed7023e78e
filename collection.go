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



package taxonomist

import (
	"context"

	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
)

// liveCollection looks up the index's current collection on every call, so
// searchers and seeders keep working across Reset.
type liveCollection struct {
	idx *Index
}

var _ storage.Collection = liveCollection{}

func (c liveCollection) Name() string {
	return c.idx.collectionName
}

func (c liveCollection) Insert(ctx context.Context, entries ...*core.Entry) error {
	coll, err := c.idx.current()
	if err != nil {
		return err
	}
	return coll.Insert(ctx, entries...)
}

func (c liveCollection) QueryNearest(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	coll, err := c.idx.current()
	if err != nil {
		return nil, err
	}
	return coll.QueryNearest(ctx, vector, topK, filter)
}

func (c liveCollection) Get(ctx context.Context, id string) (*core.Entry, error) {
	coll, err := c.idx.current()
	if err != nil {
		return nil, err
	}
	return coll.Get(ctx, id)
}

func (c liveCollection) Count(ctx context.Context) (int, error) {
	coll, err := c.idx.current()
	if err != nil {
		return 0, err
	}
	return coll.Count(ctx)
}
