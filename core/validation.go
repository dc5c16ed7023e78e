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

import (
	"fmt"
	"strings"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - ID and Text must not be empty
//   - Kind must be valid (Category or Subcategory)
//   - Subcategories must name a parent; categories must not
//   - ID must follow the composition rule for its kind
//
// NOT validated:
//   - Vector (can be empty until embedded at insertion time)
//   - Existence of the parent category (caller's responsibility)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyID)
	}

	if entry.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyText)
	}

	if err := ValidateKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	switch entry.Kind {
	case KindCategory:
		if entry.ParentCategory != "" {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrUnexpectedParent)
		}
		if strings.Contains(entry.Text, IDSeparator) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrSeparatorInName, entry.Text)
		}
		if entry.ID != CategoryID(entry.Text) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrIDMismatch, entry.ID)
		}
	case KindSubcategory:
		if entry.ParentCategory == "" {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingParent)
		}
		if entry.ID != SubcategoryID(entry.ParentCategory, entry.Text) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrIDMismatch, entry.ID)
		}
	}

	return nil
}

// ValidateKind validates that a Kind has a valid value.
func ValidateKind(kind Kind) error {
	if kind != KindCategory && kind != KindSubcategory {
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
	return nil
}

// ValidateQuery validates the caller-supplied search parameters.
func ValidateQuery(query string, topK int) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQuery)
	}
	return ValidateTopK(topK)
}

// ValidateTopK validates that topK is a positive integer.
func ValidateTopK(topK int) error {
	if topK < 1 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidInput, ErrInvalidTopK, topK)
	}
	return nil
}

// ValidateTaxonomy validates taxonomy source data before seeding.
//
// Validation rules:
//   - Category and subcategory labels must not be blank
//   - Category labels must not contain the id separator
//   - Category labels must be unique
//   - Subcategory labels must be unique within their category
func ValidateTaxonomy(t Taxonomy) error {
	seen := make(map[string]bool, len(t))
	for _, spec := range t {
		if strings.TrimSpace(spec.Category) == "" {
			return fmt.Errorf("%w: %w", ErrInvalidTaxonomy, ErrEmptyText)
		}
		if strings.Contains(spec.Category, IDSeparator) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidTaxonomy, ErrSeparatorInName, spec.Category)
		}
		if seen[spec.Category] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidTaxonomy, ErrDuplicateCategory, spec.Category)
		}
		seen[spec.Category] = true

		subs := make(map[string]bool, len(spec.Subcategories))
		for _, sub := range spec.Subcategories {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("%w: %w: blank subcategory under %q", ErrInvalidTaxonomy, ErrEmptyText, spec.Category)
			}
			if subs[sub] {
				return fmt.Errorf("%w: %w: %q under %q", ErrInvalidTaxonomy, ErrDuplicateSubcategory, sub, spec.Category)
			}
			subs[sub] = true
		}
	}
	return nil
}
