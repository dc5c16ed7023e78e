package core

import "fmt"

// IDSeparator joins a category and subcategory name into a subcategory entry ID.
const IDSeparator = "::"

// Kind identifies which level of the taxonomy an entry belongs to.
type Kind int

const (
	// KindCategory is a top-level taxonomy entry.
	KindCategory Kind = iota + 1
	// KindSubcategory is an entry owned by a category.
	KindSubcategory
)

// Metadata keys attached to stored entries.
const (
	MetadataKind           = "kind"
	MetadataParentCategory = "parent_category"
)

// String returns the metadata representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindSubcategory:
		return "subcategory"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a metadata value back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "category":
		return KindCategory, nil
	case "subcategory":
		return KindSubcategory, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Entry is one indexed unit of the taxonomy collection.
type Entry struct {
	ID             string
	Text           string    // Label that gets embedded
	Vector         []float32 // Embedding of Text, populated at insertion time
	Kind           Kind
	ParentCategory string // Owning category ID, subcategories only
}

// CategoryID returns the entry ID for a category label.
func CategoryID(category string) string {
	return category
}

// SubcategoryID returns the entry ID for a subcategory under the given category.
func SubcategoryID(category, subcategory string) string {
	return category + IDSeparator + subcategory
}

// NewCategoryEntry creates an unembedded category entry.
func NewCategoryEntry(category string) *Entry {
	return &Entry{
		ID:   CategoryID(category),
		Text: category,
		Kind: KindCategory,
	}
}

// NewSubcategoryEntry creates an unembedded subcategory entry owned by category.
func NewSubcategoryEntry(category, subcategory string) *Entry {
	return &Entry{
		ID:             SubcategoryID(category, subcategory),
		Text:           subcategory,
		Kind:           KindSubcategory,
		ParentCategory: CategoryID(category),
	}
}

// Metadata returns the equality-filterable metadata for the entry.
func (e *Entry) Metadata() map[string]string {
	md := map[string]string{MetadataKind: e.Kind.String()}
	if e.Kind == KindSubcategory {
		md[MetadataParentCategory] = e.ParentCategory
	}
	return md
}

// EntryFromMetadata rebuilds an entry from stored fields and metadata.
func EntryFromMetadata(id, text string, vector []float32, md map[string]string) (*Entry, error) {
	kind, err := ParseKind(md[MetadataKind])
	if err != nil {
		return nil, err
	}
	return &Entry{
		ID:             id,
		Text:           text,
		Vector:         vector,
		Kind:           kind,
		ParentCategory: md[MetadataParentCategory],
	}, nil
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Vector != nil {
		c.Vector = make([]float32, len(e.Vector))
		copy(c.Vector, e.Vector)
	}
	return &c
}

// Match is a single nearest-neighbor hit.
type Match struct {
	Entry      *Entry
	Similarity float32 // Cosine similarity, higher is closer
}

// CategorySpec is one category of a taxonomy with its ordered subcategories.
type CategorySpec struct {
	Category      string
	Subcategories []string
}

// Taxonomy is the source data for seeding: categories in declaration order.
type Taxonomy []CategorySpec

// Entries expands the taxonomy into entries. Each category precedes its
// subcategories, which keep their source order.
func (t Taxonomy) Entries() []*Entry {
	entries := make([]*Entry, 0, t.Size())
	for _, spec := range t {
		entries = append(entries, NewCategoryEntry(spec.Category))
		for _, sub := range spec.Subcategories {
			entries = append(entries, NewSubcategoryEntry(spec.Category, sub))
		}
	}
	return entries
}

// Size returns the number of entries the taxonomy expands to.
func (t Taxonomy) Size() int {
	n := 0
	for _, spec := range t {
		n += 1 + len(spec.Subcategories)
	}
	return n
}

// Categories returns the category labels in declaration order.
func (t Taxonomy) Categories() []string {
	out := make([]string, len(t))
	for i, spec := range t {
		out[i] = spec.Category
	}
	return out
}
