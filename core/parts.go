package core

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
)

// PartPair is one named part with its source and target elements side by side.
// A nil element means the part is absent on that side.
type PartPair struct {
	Name   string
	Source *etree.Element
	Target *etree.Element
}

// GetParts splits a normalized item into named parts in document order.
func GetParts(item schema.ConfigurationItem, normalized *etree.Document) ([]schema.ConfigurationItemPart, error) {
	if normalized == nil || normalized.Root() == nil {
		return nil, fmt.Errorf("parts of %s: %w", item.DisplayName(), schema.ErrMissingNode)
	}

	switch item.Type() {
	case schema.WorkItemType:
		wit := schema.FindWorkItemTypeElement(normalized)
		if wit == nil {
			return nil, fmt.Errorf("parts of %s: WORKITEMTYPE: %w", item.DisplayName(), schema.ErrMissingNode)
		}
		return childParts(wit), nil
	case schema.CommonConfiguration, schema.AgileConfiguration, schema.ProcessConfiguration:
		return childParts(normalized.Root()), nil
	case schema.Categories:
		root := normalized.Root()
		return []schema.ConfigurationItemPart{{Name: root.Tag, Element: root}}, nil
	default:
		return nil, fmt.Errorf("parts of %s: %w", item.DisplayName(), schema.ErrNoDecomposition)
	}
}

func childParts(parent *etree.Element) []schema.ConfigurationItemPart {
	children := parent.ChildElements()
	parts := make([]schema.ConfigurationItemPart, len(children))
	for i, c := range children {
		parts[i] = schema.ConfigurationItemPart{Name: c.Tag, Element: c}
	}
	return parts
}

// AlignParts pairs source and target parts by name. Target names come first in
// target order, followed by names only the source has. Part names must be
// unique on each side.
func AlignParts(source, target []schema.ConfigurationItemPart) ([]PartPair, error) {
	sourceByName, err := indexParts(source, "source")
	if err != nil {
		return nil, err
	}
	if _, err := indexParts(target, "target"); err != nil {
		return nil, err
	}

	pairs := make([]PartPair, 0, len(target)+len(source))
	seen := make(map[string]bool, len(target))
	for _, t := range target {
		seen[t.Name] = true
		pairs = append(pairs, PartPair{Name: t.Name, Source: sourceByName[t.Name], Target: t.Element})
	}
	for _, s := range source {
		if !seen[s.Name] {
			pairs = append(pairs, PartPair{Name: s.Name, Source: s.Element})
		}
	}
	return pairs, nil
}

func indexParts(parts []schema.ConfigurationItemPart, side string) (map[string]*etree.Element, error) {
	byName := make(map[string]*etree.Element, len(parts))
	for _, p := range parts {
		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate %s part %q: %w", side, p.Name, schema.ErrPartMismatch)
		}
		byName[p.Name] = p.Element
	}
	return byName, nil
}
