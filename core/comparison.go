package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/core/normalize"
	"github.com/huangsam/witdiff/schema"
)

// NormalizeFunc produces the canonical document for an item.
type NormalizeFunc func(item schema.ConfigurationItem, version schema.TfsMajorVersion) (*etree.Document, error)

// Comparer computes item-by-item comparisons between two configurations.
// It holds no mutable state and is safe for concurrent use.
type Comparer struct {
	normalize NormalizeFunc
}

// ComparerOption configures a Comparer.
type ComparerOption func(*Comparer)

// WithNormalizeFunc replaces the normalization step, e.g. with a cached one.
func WithNormalizeFunc(fn NormalizeFunc) ComparerOption {
	return func(c *Comparer) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// NewComparer creates a Comparer that normalizes with n.
func NewComparer(n *normalize.Normalizer, opts ...ComparerOption) *Comparer {
	if n == nil {
		n = normalize.New()
	}
	c := &Comparer{normalize: n.Normalize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// filteredTypes are dropped from the target when the source has none of them.
var filteredTypes = []schema.ConfigurationItemType{
	schema.Categories,
	schema.AgileConfiguration,
	schema.CommonConfiguration,
	schema.ProcessConfiguration,
}

// Compare matches source items to target items by type and name and compares
// each matched pair part by part. Results list source-only items first, then
// target-only items, then matched items in target order.
func (c *Comparer) Compare(version schema.TfsMajorVersion, source, target schema.WorkItemConfiguration) (schema.ConfigurationComparisonResult, error) {
	sourceItems, targetItems := filterItems(source.Items, target.Items)

	sourceByKey := indexItems(sourceItems)
	targetByKey := indexItems(targetItems)

	var results []schema.ItemComparisonResult

	// --- 1. Items only in source ---
	for _, s := range sourceItems {
		if _, ok := targetByKey[s.Key()]; ok {
			continue
		}
		xml, err := c.normalizedXML(s, version)
		if err != nil {
			return schema.ConfigurationComparisonResult{}, err
		}
		results = append(results, schema.NewItemOnlyInSource(s.Type(), s.Name, xml))
	}

	// --- 2. Items only in target ---
	for _, t := range targetItems {
		if _, ok := sourceByKey[t.Key()]; ok {
			continue
		}
		xml, err := c.normalizedXML(t, version)
		if err != nil {
			return schema.ConfigurationComparisonResult{}, err
		}
		results = append(results, schema.NewItemOnlyInTarget(t.Type(), t.Name, xml))
	}

	// --- 3. Matched items ---
	for _, t := range targetItems {
		s, ok := sourceByKey[t.Key()]
		if !ok {
			continue
		}
		result, err := c.compareItem(version, s, t)
		if err != nil {
			return schema.ConfigurationComparisonResult{}, err
		}
		results = append(results, result)
	}

	return schema.NewConfigurationComparison(source.Summary(), target.Summary(), results), nil
}

// filterItems returns working copies of both lists with the configuration
// aspects removed that must not take part in the comparison.
func filterItems(source, target []schema.ConfigurationItem) ([]schema.ConfigurationItem, []schema.ConfigurationItem) {
	src := slices.Clone(source)
	tgt := slices.Clone(target)

	// Process configuration supersedes the split common and agile documents
	if schema.HasItemType(src, schema.ProcessConfiguration) && schema.HasItemType(tgt, schema.ProcessConfiguration) {
		superseded := func(it schema.ConfigurationItem) bool {
			return it.Type() == schema.CommonConfiguration || it.Type() == schema.AgileConfiguration
		}
		src = slices.DeleteFunc(src, superseded)
		tgt = slices.DeleteFunc(tgt, superseded)
	}

	for _, itemType := range filteredTypes {
		if schema.HasItemType(src, itemType) {
			continue
		}
		tgt = slices.DeleteFunc(tgt, func(it schema.ConfigurationItem) bool {
			return it.Type() == itemType
		})
	}
	return src, tgt
}

// indexItems maps item keys to items. The first item wins for duplicate keys.
func indexItems(items []schema.ConfigurationItem) map[string]schema.ConfigurationItem {
	byKey := make(map[string]schema.ConfigurationItem, len(items))
	for _, it := range items {
		if _, ok := byKey[it.Key()]; !ok {
			byKey[it.Key()] = it
		}
	}
	return byKey
}

func (c *Comparer) normalizedXML(item schema.ConfigurationItem, version schema.TfsMajorVersion) (string, error) {
	doc, err := c.normalize(item, version)
	if err != nil {
		return "", fmt.Errorf("failed to normalize %s: %w", item.DisplayName(), err)
	}
	xml, err := normalize.Serialize(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s: %w", item.DisplayName(), err)
	}
	return xml, nil
}

// compareItem normalizes both sides, splits them into parts and compares the
// serialized parts ordinally. Part weights come from the source side.
func (c *Comparer) compareItem(version schema.TfsMajorVersion, source, target schema.ConfigurationItem) (schema.ItemComparisonResult, error) {
	sourceDoc, err := c.normalize(source, version)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("failed to normalize source %s: %w", source.DisplayName(), err)
	}
	targetDoc, err := c.normalize(target, version)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("failed to normalize target %s: %w", target.DisplayName(), err)
	}

	sourceXML, err := normalize.Serialize(sourceDoc)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("failed to serialize source %s: %w", source.DisplayName(), err)
	}
	targetXML, err := normalize.Serialize(targetDoc)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("failed to serialize target %s: %w", target.DisplayName(), err)
	}

	sourceParts, err := GetParts(source, sourceDoc)
	if err != nil {
		return schema.ItemComparisonResult{}, err
	}
	targetParts, err := GetParts(target, targetDoc)
	if err != nil {
		return schema.ItemComparisonResult{}, err
	}
	pairs, err := AlignParts(sourceParts, targetParts)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("%s: %w", target.DisplayName(), err)
	}

	parts, err := comparePartPairs(pairs)
	if err != nil {
		return schema.ItemComparisonResult{}, fmt.Errorf("%s: %w", target.DisplayName(), err)
	}
	return schema.NewItemComparison(target.Type(), target.Name, sourceXML, targetXML, parts), nil
}

// comparePartPairs compares aligned parts. A part missing on either side is
// different, and a part missing from the source weighs nothing.
func comparePartPairs(pairs []PartPair) ([]schema.PartComparisonResult, error) {
	sourceXML := make([]string, len(pairs))
	targetXML := make([]string, len(pairs))
	total := 0
	for i, p := range pairs {
		var err error
		if sourceXML[i], err = normalize.SerializeElement(p.Source); err != nil {
			return nil, err
		}
		if targetXML[i], err = normalize.SerializeElement(p.Target); err != nil {
			return nil, err
		}
		total += len(sourceXML[i])
	}

	results := make([]schema.PartComparisonResult, len(pairs))
	for i, p := range pairs {
		status := schema.AreDifferent
		if p.Source != nil && p.Target != nil && strings.Compare(sourceXML[i], targetXML[i]) == 0 {
			status = schema.AreEqual
		}
		size := 0.0
		if total > 0 {
			size = float64(len(sourceXML[i])) / float64(total)
		}
		results[i] = schema.PartComparisonResult{
			PartName:     p.Name,
			Status:       status,
			RelativeSize: size,
		}
	}
	return results, nil
}
