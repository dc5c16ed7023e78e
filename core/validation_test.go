package core

import (
	"errors"
	"testing"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *Entry
		wantErr error
	}{
		{
			name:    "valid category",
			entry:   NewCategoryEntry("Books"),
			wantErr: nil,
		},
		{
			name:    "valid subcategory",
			entry:   NewSubcategoryEntry("Books", "Fiction"),
			wantErr: nil,
		},
		{
			name: "valid entry with vector",
			entry: &Entry{
				ID:     "Books",
				Text:   "Books",
				Kind:   KindCategory,
				Vector: []float32{0.1, 0.2},
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "empty id",
			entry:   &Entry{Text: "Books", Kind: KindCategory},
			wantErr: ErrEmptyID,
		},
		{
			name:    "empty text",
			entry:   &Entry{ID: "Books", Kind: KindCategory},
			wantErr: ErrEmptyText,
		},
		{
			name:    "invalid kind",
			entry:   &Entry{ID: "Books", Text: "Books", Kind: Kind(42)},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "subcategory without parent",
			entry:   &Entry{ID: "Fiction", Text: "Fiction", Kind: KindSubcategory},
			wantErr: ErrMissingParent,
		},
		{
			name:    "category with parent",
			entry:   &Entry{ID: "Books", Text: "Books", Kind: KindCategory, ParentCategory: "Media"},
			wantErr: ErrUnexpectedParent,
		},
		{
			name:    "category id differs from text",
			entry:   &Entry{ID: "books", Text: "Books", Kind: KindCategory},
			wantErr: ErrIDMismatch,
		},
		{
			name:    "subcategory id not composed",
			entry:   &Entry{ID: "Fiction", Text: "Fiction", Kind: KindSubcategory, ParentCategory: "Books"},
			wantErr: ErrIDMismatch,
		},
		{
			name:    "category containing separator",
			entry:   &Entry{ID: "A::B", Text: "A::B", Kind: KindCategory},
			wantErr: ErrSeparatorInName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateEntry() expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error should wrap ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		topK    int
		wantErr error
	}{
		{"valid", "star wars", 5, nil},
		{"topK of one", "star wars", 1, nil},
		{"empty query", "", 5, ErrEmptyQuery},
		{"blank query", "   \t", 5, ErrEmptyQuery},
		{"zero topK", "star wars", 0, ErrInvalidTopK},
		{"negative topK", "star wars", -3, ErrInvalidTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query, tt.topK)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ValidateQuery() error should wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidateTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		tax     Taxonomy
		wantErr error
	}{
		{
			name: "valid",
			tax: Taxonomy{
				{Category: "Books", Subcategories: []string{"Fiction", "Non-Fiction"}},
				{Category: "Electronics"},
			},
		},
		{
			name: "empty taxonomy is valid",
			tax:  Taxonomy{},
		},
		{
			name:    "blank category",
			tax:     Taxonomy{{Category: " "}},
			wantErr: ErrEmptyText,
		},
		{
			name:    "blank subcategory",
			tax:     Taxonomy{{Category: "Books", Subcategories: []string{""}}},
			wantErr: ErrEmptyText,
		},
		{
			name:    "duplicate category",
			tax:     Taxonomy{{Category: "Books"}, {Category: "Books"}},
			wantErr: ErrDuplicateCategory,
		},
		{
			name:    "duplicate subcategory",
			tax:     Taxonomy{{Category: "Books", Subcategories: []string{"Fiction", "Fiction"}}},
			wantErr: ErrDuplicateSubcategory,
		},
		{
			name:    "same subcategory under different categories is fine",
			tax:     Taxonomy{{Category: "Books", Subcategories: []string{"Kids"}}, {Category: "Toys", Subcategories: []string{"Kids"}}},
			wantErr: nil,
		},
		{
			name:    "separator in category",
			tax:     Taxonomy{{Category: "Books::Old"}},
			wantErr: ErrSeparatorInName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaxonomy(tt.tax)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTaxonomy() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTaxonomy() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidTaxonomy) {
				t.Errorf("ValidateTaxonomy() error should wrap ErrInvalidTaxonomy, got %v", err)
			}
		})
	}
}
