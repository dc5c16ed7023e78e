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



// Package ingestion seeds taxonomy entries into a storage.Collection.
//
// The Seeder expands a core.Taxonomy into category and subcategory entries and
// upserts them concurrently through an ants worker pool. Each entry is its own
// upsert: a failed run leaves the successful upserts in place and can be
// repeated safely, since entry ids are deterministic.
//
// Progress can be reported to any io.Writer, typically os.Stderr.
package ingestion
