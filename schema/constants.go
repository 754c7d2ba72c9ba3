package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Custom string types for type safety.
type (
	// ConfigurationItemType represents the kind of a TFS configuration item.
	ConfigurationItemType string

	// ComparisonStatus represents the outcome of comparing an item or a part.
	ComparisonStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All configuration item types supported.
const (
	WorkItemType         ConfigurationItemType = "WorkItemType"
	Categories           ConfigurationItemType = "Categories"
	CommonConfiguration  ConfigurationItemType = "CommonConfiguration"
	AgileConfiguration   ConfigurationItemType = "AgileConfiguration"
	ProcessConfiguration ConfigurationItemType = "ProcessConfiguration"
)

// All comparison statuses supported.
const (
	AreEqual           ComparisonStatus = "AreEqual"
	AreDifferent       ComparisonStatus = "AreDifferent"
	ExistsOnlyInSource ComparisonStatus = "ExistsOnlyInSource"
	ExistsOnlyInTarget ComparisonStatus = "ExistsOnlyInTarget"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllItemTypes lists every configuration item type in display order.
var AllItemTypes = []ConfigurationItemType{
	WorkItemType,
	Categories,
	CommonConfiguration,
	AgileConfiguration,
	ProcessConfiguration,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// TfsMajorVersion is the major version of the TFS server that produced or will
// receive a configuration. Values are ordered so they can be compared directly.
type TfsMajorVersion int

// Known TFS major versions.
const (
	TfsUnknown TfsMajorVersion = 0
	Tfs2005    TfsMajorVersion = 8
	Tfs2008    TfsMajorVersion = 9
	Tfs2010    TfsMajorVersion = 10
	Tfs2012    TfsMajorVersion = 11
	Tfs2013    TfsMajorVersion = 12
	Tfs2015    TfsMajorVersion = 14
	Tfs2017    TfsMajorVersion = 15
)

// LatestTfsVersion is used wherever an unknown version has to pick a table.
const LatestTfsVersion = Tfs2017

var tfsReleaseNames = map[TfsMajorVersion]string{
	Tfs2005: "2005",
	Tfs2008: "2008",
	Tfs2010: "2010",
	Tfs2012: "2012",
	Tfs2013: "2013",
	Tfs2015: "2015",
	Tfs2017: "2017",
}

// String returns the marketing name of the version (e.g. "TFS 2013").
func (v TfsMajorVersion) String() string {
	if name, ok := tfsReleaseNames[v]; ok {
		return "TFS " + name
	}
	return "TFS (unknown)"
}

// Effective returns the version to use for table lookups.
func (v TfsMajorVersion) Effective() TfsMajorVersion {
	if v == TfsUnknown {
		return LatestTfsVersion
	}
	return v
}

// ParseTfsMajorVersion parses "2013", "12", "v12" or "tfs2013" (case-insensitive).
// An empty string yields TfsUnknown.
func ParseTfsMajorVersion(s string) (TfsMajorVersion, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return TfsUnknown, nil
	}
	raw = strings.TrimPrefix(raw, "tfs")
	raw = strings.TrimPrefix(raw, "v")
	raw = strings.TrimSpace(raw)

	for v, name := range tfsReleaseNames {
		if raw == name {
			return v, nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return TfsUnknown, fmt.Errorf("invalid TFS version '%s'", s)
	}
	v := TfsMajorVersion(n)
	if _, ok := tfsReleaseNames[v]; !ok {
		return TfsUnknown, fmt.Errorf("unsupported TFS major version %d", n)
	}
	return v, nil
}
