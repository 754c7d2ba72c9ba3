package schema

import (
	"fmt"
	"math"
	"strings"
)

// PartComparisonResult is the verdict for one named part of a matched item.
type PartComparisonResult struct {
	PartName     string           `json:"part_name"`
	Status       ComparisonStatus `json:"status"`
	RelativeSize float64          `json:"relative_size"` // Share of the source item's serialized size
}

// ItemComparisonResult is the verdict for one configuration item.
type ItemComparisonResult struct {
	ItemType            ConfigurationItemType  `json:"item_type"`
	ItemName            string                 `json:"item_name"`
	Status              ComparisonStatus       `json:"status"`
	NormalizedSourceXML string                 `json:"normalized_source_xml,omitempty"`
	NormalizedTargetXML string                 `json:"normalized_target_xml,omitempty"`
	Parts               []PartComparisonResult `json:"parts,omitempty"`
	PercentMatch        float64                `json:"percent_match"`
}

// NewItemOnlyInSource builds the result for an item missing from the target.
func NewItemOnlyInSource(itemType ConfigurationItemType, name, sourceXML string) ItemComparisonResult {
	return ItemComparisonResult{
		ItemType:            itemType,
		ItemName:            name,
		Status:              ExistsOnlyInSource,
		NormalizedSourceXML: sourceXML,
	}
}

// NewItemOnlyInTarget builds the result for an item missing from the source.
func NewItemOnlyInTarget(itemType ConfigurationItemType, name, targetXML string) ItemComparisonResult {
	return ItemComparisonResult{
		ItemType:            itemType,
		ItemName:            name,
		Status:              ExistsOnlyInTarget,
		NormalizedTargetXML: targetXML,
	}
}

// NewItemComparison builds the result for an item present on both sides.
// The item is equal only when every part is equal; an equal item scores exactly 1
// regardless of how its part sizes add up.
func NewItemComparison(itemType ConfigurationItemType, name, sourceXML, targetXML string, parts []PartComparisonResult) ItemComparisonResult {
	status := AreEqual
	percent := 0.0
	for _, p := range parts {
		if p.Status == AreEqual {
			percent += p.RelativeSize
		} else {
			status = AreDifferent
		}
	}
	if status == AreEqual {
		percent = 1
	}
	copied := make([]PartComparisonResult, len(parts))
	copy(copied, parts)
	return ItemComparisonResult{
		ItemType:            itemType,
		ItemName:            name,
		Status:              status,
		NormalizedSourceXML: sourceXML,
		NormalizedTargetXML: targetXML,
		Parts:               copied,
		PercentMatch:        clampPercent(percent),
	}
}

// DisplayName returns "Type: Name".
func (r ItemComparisonResult) DisplayName() string {
	return string(r.ItemType) + ": " + r.ItemName
}

// DifferentParts returns the names of parts that did not match.
func (r ItemComparisonResult) DifferentParts() []string {
	var names []string
	for _, p := range r.Parts {
		if p.Status != AreEqual {
			names = append(names, p.PartName)
		}
	}
	return names
}

// ConfigurationSummary is the metadata of one side of a comparison.
type ConfigurationSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"item_count"`
}

// ConfigurationComparisonResult holds all item results between a source and a target.
type ConfigurationComparisonResult struct {
	Source       ConfigurationSummary   `json:"source"`
	Target       ConfigurationSummary   `json:"target"`
	Items        []ItemComparisonResult `json:"items"`
	PercentMatch float64                `json:"percent_match"` // Mean of item percent matches
}

// NewConfigurationComparison aggregates item results. An empty list is a full match.
func NewConfigurationComparison(source, target ConfigurationSummary, items []ItemComparisonResult) ConfigurationComparisonResult {
	percent := 1.0
	if len(items) > 0 {
		total := 0.0
		for _, it := range items {
			total += it.PercentMatch
		}
		percent = total / float64(len(items))
	}
	copied := make([]ItemComparisonResult, len(items))
	copy(copied, items)
	return ConfigurationComparisonResult{
		Source:       source,
		Target:       target,
		Items:        copied,
		PercentMatch: clampPercent(percent),
	}
}

// WithoutXML returns a copy whose items carry no normalized XML.
func (r ConfigurationComparisonResult) WithoutXML() ConfigurationComparisonResult {
	items := make([]ItemComparisonResult, len(r.Items))
	for i, it := range r.Items {
		it.NormalizedSourceXML = ""
		it.NormalizedTargetXML = ""
		items[i] = it
	}
	r.Items = items
	return r
}

// StatusCounts has the number of items per comparison status.
type StatusCounts struct {
	Equal        int `json:"equal"`
	Different    int `json:"different"`
	OnlyInSource int `json:"only_in_source"`
	OnlyInTarget int `json:"only_in_target"`
}

// Counts returns the number of items per status.
func (r ConfigurationComparisonResult) Counts() StatusCounts {
	var c StatusCounts
	for _, it := range r.Items {
		switch it.Status {
		case AreEqual:
			c.Equal++
		case AreDifferent:
			c.Different++
		case ExistsOnlyInSource:
			c.OnlyInSource++
		case ExistsOnlyInTarget:
			c.OnlyInTarget++
		}
	}
	return c
}

// FindItem returns the item result for a type and name (case-insensitive).
func (r ConfigurationComparisonResult) FindItem(itemType ConfigurationItemType, name string) (ItemComparisonResult, bool) {
	for _, it := range r.Items {
		if it.ItemType == itemType && strings.EqualFold(it.ItemName, name) {
			return it, true
		}
	}
	return ItemComparisonResult{}, false
}

// TeamProjectComparisonResult holds the results of comparing one team project
// against every candidate source.
type TeamProjectComparisonResult struct {
	TeamProject string                          `json:"team_project"`
	Results     []ConfigurationComparisonResult `json:"results,omitempty"`
	BestMatch   *ConfigurationComparisonResult  `json:"best_match,omitempty"`
	Summary     string                          `json:"summary"`
	Warning     string                          `json:"warning,omitempty"`
}

// NewTeamProjectComparison builds a roll-up. The best match is the first
// result with the highest percent match.
func NewTeamProjectComparison(teamProject string, results []ConfigurationComparisonResult) TeamProjectComparisonResult {
	copied := make([]ConfigurationComparisonResult, len(results))
	copy(copied, results)

	var best *ConfigurationComparisonResult
	pairs := make([]string, 0, len(copied))
	for i := range copied {
		if best == nil || copied[i].PercentMatch > best.PercentMatch {
			best = &copied[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s (%s%%)", copied[i].Source.Name, FormatPercent(copied[i].PercentMatch)))
	}
	return TeamProjectComparisonResult{
		TeamProject: teamProject,
		Results:     copied,
		BestMatch:   best,
		Summary:     strings.Join(pairs, "; "),
	}
}

// NewTeamProjectWarning builds the roll-up for a project that could not be compared.
func NewTeamProjectWarning(teamProject string, err error) TeamProjectComparisonResult {
	return TeamProjectComparisonResult{
		TeamProject: teamProject,
		Warning:     err.Error(),
	}
}

// HasWarning reports whether the project failed to compare.
func (r TeamProjectComparisonResult) HasWarning() bool {
	return r.Warning != ""
}

// FormatPercent renders a 0..1 fraction as a whole percentage without the sign.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f", fraction*100)
}

// clampPercent keeps floating point sums inside [0, 1].
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
