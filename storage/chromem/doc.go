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



// Package chromem implements storage.TaxonomyStore on chromem-go, an embedded
// vector database with optional gzip-compressed persistence.
//
// Metadata filters are pushed down to chromem's where clause. chromem refuses
// to return more results than a collection holds, so queries ask for every
// filtered candidate and rank them with storage.RankMatches, which also makes
// tie-breaking deterministic.
package chromem
