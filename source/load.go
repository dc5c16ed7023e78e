package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/taxonomist/core"
	"gopkg.in/yaml.v3"
)

// Load reads a taxonomy from r and validates it.
func Load(r io.Reader) (core.Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmptySource
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of categories", ErrMalformedSource, root.Line)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptySource
	}

	// Mapping content alternates key and value nodes
	taxonomy := make(core.Taxonomy, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: category must be a string", ErrMalformedSource, key.Line)
		}

		subs, err := subcategories(value)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", key.Value, err)
		}
		taxonomy = append(taxonomy, core.CategorySpec{Category: key.Value, Subcategories: subs})
	}

	if err := core.ValidateTaxonomy(taxonomy); err != nil {
		return nil, err
	}
	return taxonomy, nil
}

func subcategories(node *yaml.Node) ([]string, error) {
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil, nil
	case node.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("%w: line %d: subcategories must be a list", ErrMalformedSource, node.Line)
	}

	subs := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
			return nil, fmt.Errorf("%w: line %d: subcategory must be a string", ErrMalformedSource, item.Line)
		}
		subs = append(subs, item.Value)
	}
	return subs, nil
}

// LoadFile reads a taxonomy from the file at path.
func LoadFile(path string) (core.Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	taxonomy, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return taxonomy, nil
}

// Default returns the built-in sample taxonomy.
func Default() core.Taxonomy {
	return core.Taxonomy{
		{Category: "Electronics", Subcategories: []string{"Smartphones", "Laptops", "Tablets"}},
		{Category: "Home Appliances", Subcategories: []string{"Refrigerators", "Microwaves", "Washing Machines"}},
		{Category: "Books", Subcategories: []string{"Fiction", "Non-Fiction", "Children's Books"}},
	}
}
