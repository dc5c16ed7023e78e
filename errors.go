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

import "errors"

var (
	// ErrUnknownEngine is returned for an engine name Open does not know.
	ErrUnknownEngine = errors.New("unknown storage engine")

	// ErrPathRequired is returned when an embedded engine has no directory
	// and in-memory mode is off.
	ErrPathRequired = errors.New("database path required")

	// ErrIndexClosed is returned when an Index is used after Close.
	ErrIndexClosed = errors.New("index closed")
)
