package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	books := NewCategoryEntry("Books")
	fiction := NewSubcategoryEntry("Books", "Fiction")
	laptops := NewSubcategoryEntry("Electronics", "Laptops")

	t.Run("category filter excludes subcategories", func(t *testing.T) {
		f := ByKind(KindCategory)
		assert.True(t, f.Matches(books))
		assert.False(t, f.Matches(fiction))
		assert.False(t, f.Matches(laptops))
	})

	t.Run("subcategory filter excludes categories", func(t *testing.T) {
		f := ByKind(KindSubcategory)
		assert.False(t, f.Matches(books))
		assert.True(t, f.Matches(fiction))
		assert.True(t, f.Matches(laptops))
	})

	t.Run("parent filter excludes other parents", func(t *testing.T) {
		f := ByKindAndParent(KindSubcategory, "Books")
		assert.True(t, f.Matches(fiction))
		assert.False(t, f.Matches(laptops))
		assert.False(t, f.Matches(books))
	})

	t.Run("nil entry never matches", func(t *testing.T) {
		assert.False(t, ByKind(KindCategory).Matches(nil))
	})
}

func TestFilterWhere(t *testing.T) {
	assert.Equal(t,
		map[string]string{MetadataKind: "category"},
		ByKind(KindCategory).Where())

	assert.Equal(t,
		map[string]string{MetadataKind: "subcategory", MetadataParentCategory: "Books"},
		ByKindAndParent(KindSubcategory, "Books").Where())
}

func TestFilterAccessors(t *testing.T) {
	f := ByKindAndParent(KindSubcategory, "Books")
	assert.Equal(t, KindSubcategory, f.Kind())
	parent, ok := f.Parent()
	assert.True(t, ok)
	assert.Equal(t, "Books", parent)
	assert.Equal(t, "kind=subcategory AND parent_category=Books", f.String())

	_, ok = ByKind(KindCategory).Parent()
	assert.False(t, ok)

	assert.NoError(t, f.Validate())
	assert.ErrorIs(t, Filter{}.Validate(), ErrInvalidKind)
}
