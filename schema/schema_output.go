package schema

// Match label constants.
const (
	IdenticalValue = "Identical"
	CloseValue     = "Close"
	PartialValue   = "Partial"
	DivergentValue = "Divergent"
)

// GetPlainLabel returns a plain text label for a 0..1 percent match.
func GetPlainLabel(percentMatch float64) string {
	switch {
	case percentMatch >= 1:
		return IdenticalValue
	case percentMatch >= 0.9:
		return CloseValue
	case percentMatch >= 0.5:
		return PartialValue
	default:
		return DivergentValue
	}
}

// StatusSymbol returns a compact marker for a comparison status.
func StatusSymbol(status ComparisonStatus) string {
	switch status {
	case AreEqual:
		return "="
	case AreDifferent:
		return "~"
	case ExistsOnlyInSource:
		return "<"
	case ExistsOnlyInTarget:
		return ">"
	default:
		return "?"
	}
}

// ProjectRow is a flattened view of a team project roll-up for tables and CSV.
type ProjectRow struct {
	TeamProject  string  `json:"team_project"`
	BestSource   string  `json:"best_source"`
	PercentMatch float64 `json:"percent_match"`
	Label        string  `json:"label"`
	Summary      string  `json:"summary"`
	Warning      string  `json:"warning,omitempty"`
}

// FlattenProjects turns roll-ups into rows. Projects with a warning have no best source.
func FlattenProjects(results []TeamProjectComparisonResult) []ProjectRow {
	rows := make([]ProjectRow, len(results))
	for i, r := range results {
		row := ProjectRow{
			TeamProject: r.TeamProject,
			Summary:     r.Summary,
			Warning:     r.Warning,
		}
		if r.BestMatch != nil {
			row.BestSource = r.BestMatch.Source.Name
			row.PercentMatch = r.BestMatch.PercentMatch
			row.Label = GetPlainLabel(r.BestMatch.PercentMatch)
		}
		rows[i] = row
	}
	return rows
}

// NormalizedPart is one serialized part of a normalized item.
type NormalizedPart struct {
	Name         string  `json:"name"`
	XML          string  `json:"xml"`
	RelativeSize float64 `json:"relative_size"`
}

// NormalizedItem is the canonical form of a single configuration item.
type NormalizedItem struct {
	ItemType   ConfigurationItemType `json:"item_type"`
	ItemName   string                `json:"item_name"`
	TfsVersion string                `json:"tfs_version"`
	XML        string                `json:"xml"`
	Parts      []NormalizedPart      `json:"parts,omitempty"`
}
