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



// Package qdrant implements storage.TaxonomyStore on a Qdrant server over gRPC.
//
// Each taxonomy collection is a Qdrant collection created with cosine distance
// and the configured vector size. Entries become points whose UUID is derived
// from the entry id, so re-inserting an entry overwrites its point. Filters are
// translated to keyword match conditions on the kind and parent_category
// payload fields, which are indexed on creation.
//
// Qdrant does not need the stored vectors to answer queries, so entries
// returned by this engine carry no Vector.
package qdrant
