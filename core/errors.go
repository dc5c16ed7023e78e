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



package core

import "errors"

// Input validation errors
var (
	// ErrInvalidInput is the umbrella for caller mistakes such as an empty query.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates the query text is empty or blank.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidTopK indicates topK is not a positive integer.
	ErrInvalidTopK = errors.New("topK must be a positive integer")

	// ErrEmptyText indicates there is no text to embed.
	ErrEmptyText = errors.New("text cannot be empty")
)

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrEmptyID indicates the entry ID is empty.
	ErrEmptyID = errors.New("entry id cannot be empty")

	// ErrInvalidKind indicates an unknown Kind value.
	ErrInvalidKind = errors.New("invalid entry kind")

	// ErrMissingParent indicates a subcategory without a parent category.
	ErrMissingParent = errors.New("subcategory requires a parent category")

	// ErrUnexpectedParent indicates a category carrying a parent category.
	ErrUnexpectedParent = errors.New("category cannot have a parent category")

	// ErrIDMismatch indicates the entry ID does not follow the composition rule.
	ErrIDMismatch = errors.New("entry id does not match its text and parent")

	// ErrSeparatorInName indicates a category label containing the id separator.
	ErrSeparatorInName = errors.New("category name cannot contain the id separator")

	// ErrInvalidTaxonomy indicates taxonomy source data failed validation.
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")

	// ErrDuplicateCategory indicates a category label appears twice.
	ErrDuplicateCategory = errors.New("duplicate category")

	// ErrDuplicateSubcategory indicates a subcategory label appears twice under one category.
	ErrDuplicateSubcategory = errors.New("duplicate subcategory")
)
