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



// Package taxonomist classifies free text into a two-level taxonomy of
// categories and subcategories using embedding similarity.
//
// Open wires a storage engine, an embedder and a named collection together:
//
//	idx, err := taxonomist.Open("./taxonomy_db",
//		taxonomist.WithAIConfig(ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))),
//	)
//	if err != nil {
//		return err
//	}
//	defer idx.Close()
//
//	if err := idx.Seed(ctx, source.Default()); err != nil {
//		return err
//	}
//	searcher, err := idx.NewSearcher()
//	result, err := searcher.Search(ctx, "star wars")
//
// The lower-level packages can be used directly: storage engines live under
// storage/, the two-stage query in search, and bulk seeding in ingestion.
package taxonomist
