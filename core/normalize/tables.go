package normalize

import (
	"maps"
	"slices"

	"github.com/huangsam/witdiff/schema"
)

// tablesRevision identifies the shipped rule tables. It is part of cache keys,
// so bump it whenever a table below changes.
const tablesRevision = "2"

// FieldAttr is one attribute of a canonical field definition.
type FieldAttr struct {
	Name  string
	Value string
}

// SystemField is a field TFS creates on every work item type. Exports from some
// servers omit them, so they are injected when missing.
type SystemField struct {
	RefName    string
	MinVersion schema.TfsMajorVersion
	Attrs      []FieldAttr
}

// Tables holds the rule data that drives normalization. A Normalizer keeps its
// own copy, so callers may not mutate a Tables after passing it to New.
type Tables struct {
	Revision string

	SystemFields []SystemField

	// HTMLDescriptionSince is the first version whose System.Description is HTML.
	HTMLDescriptionSince schema.TfsMajorVersion

	ReportableDimension []string
	ReportableDetail    []string
	SyncNameChanges     []string
	FormulaSum          []string
	NoSpaceNames        []string
	NameAliases         map[string]string

	ValueRewrites map[string]string

	PathTokenFrom string
	PathTokenTo   string

	DefaultLayoutMode         string
	ExcludedGlobalListPrefix  string
	DefaultWorkItemCountLimit string
	DefaultRequirementParent  string
}

// Clone returns a deep copy.
func (t Tables) Clone() Tables {
	c := t
	c.SystemFields = make([]SystemField, len(t.SystemFields))
	for i, f := range t.SystemFields {
		f.Attrs = slices.Clone(f.Attrs)
		c.SystemFields[i] = f
	}
	c.ReportableDimension = slices.Clone(t.ReportableDimension)
	c.ReportableDetail = slices.Clone(t.ReportableDetail)
	c.SyncNameChanges = slices.Clone(t.SyncNameChanges)
	c.FormulaSum = slices.Clone(t.FormulaSum)
	c.NoSpaceNames = slices.Clone(t.NoSpaceNames)
	c.NameAliases = maps.Clone(t.NameAliases)
	c.ValueRewrites = maps.Clone(t.ValueRewrites)
	return c
}

// SystemFieldsFor returns the system fields that exist on a given server version.
func (t Tables) SystemFieldsFor(version schema.TfsMajorVersion) []SystemField {
	v := version.Effective()
	var out []SystemField
	for _, f := range t.SystemFields {
		if f.MinVersion > v {
			continue
		}
		if f.RefName == "System.Description" {
			f = describeField(t, v)
		}
		out = append(out, f)
	}
	return out
}

func describeField(t Tables, v schema.TfsMajorVersion) SystemField {
	fieldType := "PlainText"
	if v >= t.HTMLDescriptionSince {
		fieldType = "HTML"
	}
	return SystemField{
		RefName:    "System.Description",
		MinVersion: schema.Tfs2005,
		Attrs:      []FieldAttr{{"name", "Description"}, {"type", fieldType}},
	}
}

func field(refName string, since schema.TfsMajorVersion, attrs ...FieldAttr) SystemField {
	return SystemField{RefName: refName, MinVersion: since, Attrs: attrs}
}

// DefaultTables returns the rule tables shipped with witdiff.
func DefaultTables() Tables {
	name := func(v string) FieldAttr { return FieldAttr{"name", v} }
	typ := func(v string) FieldAttr { return FieldAttr{"type", v} }
	dim := FieldAttr{"reportable", "dimension"}
	detail := FieldAttr{"reportable", "detail"}
	sync := FieldAttr{"syncnamechanges", "true"}

	return Tables{
		Revision: tablesRevision,
		SystemFields: []SystemField{
			field("System.Id", schema.Tfs2005, name("ID"), typ("Integer"), dim),
			field("System.Title", schema.Tfs2005, name("Title"), typ("String"), dim),
			field("System.State", schema.Tfs2005, name("State"), typ("String"), dim),
			field("System.Reason", schema.Tfs2005, name("Reason"), typ("String"), dim),
			field("System.AssignedTo", schema.Tfs2005, name("Assigned To"), typ("String"), sync, dim),
			field("System.CreatedBy", schema.Tfs2005, name("Created By"), typ("String"), sync, dim),
			field("System.CreatedDate", schema.Tfs2005, name("Created Date"), typ("DateTime"), dim),
			field("System.ChangedBy", schema.Tfs2005, name("Changed By"), typ("String"), sync, dim),
			field("System.ChangedDate", schema.Tfs2005, name("Changed Date"), typ("DateTime"), dim),
			field("System.AuthorizedAs", schema.Tfs2005, name("Authorized As"), typ("String"), sync),
			field("System.AreaPath", schema.Tfs2005, name("Area Path"), typ("TreePath"), dim),
			field("System.IterationPath", schema.Tfs2005, name("Iteration Path"), typ("TreePath"), dim),
			field("System.AreaId", schema.Tfs2005, name("AreaID"), typ("Integer")),
			field("System.IterationId", schema.Tfs2005, name("IterationID"), typ("Integer")),
			field("System.TeamProject", schema.Tfs2005, name("Team Project"), typ("String"), dim),
			field("System.WorkItemType", schema.Tfs2005, name("Work Item Type"), typ("String"), dim),
			field("System.Rev", schema.Tfs2005, name("Rev"), typ("Integer"), dim),
			field("System.RevisedDate", schema.Tfs2005, name("Revised Date"), typ("DateTime"), detail),
			field("System.Watermark", schema.Tfs2005, name("Watermark"), typ("Integer")),
			field("System.History", schema.Tfs2005, name("History"), typ("History")),
			field("System.Description", schema.Tfs2005),
			field("System.NodeName", schema.Tfs2005, name("Node Name"), typ("String")),
			field("System.AttachedFileCount", schema.Tfs2005, name("AttachedFileCount"), typ("Integer")),
			field("System.HyperLinkCount", schema.Tfs2005, name("HyperLinkCount"), typ("Integer")),
			field("System.ExternalLinkCount", schema.Tfs2005, name("ExternalLinkCount"), typ("Integer")),
			field("System.RelatedLinkCount", schema.Tfs2010, name("RelatedLinkCount"), typ("Integer")),
			field("System.AuthorizedDate", schema.Tfs2010, name("Authorized Date"), typ("DateTime")),
			field("System.Tags", schema.Tfs2012, name("Tags"), typ("PlainText")),
			field("System.BoardColumn", schema.Tfs2013, name("Board Column"), typ("String"), dim),
			field("System.BoardColumnDone", schema.Tfs2013, name("Board Column Done"), typ("Boolean"), dim),
			field("System.BoardLane", schema.Tfs2015, name("Board Lane"), typ("String"), dim),
			field("System.CommentCount", schema.Tfs2017, name("Comment Count"), typ("Integer")),
			field("System.RemoteLinkCount", schema.Tfs2017, name("Remote Link Count"), typ("Integer")),
		},
		HTMLDescriptionSince: schema.Tfs2012,

		ReportableDimension: []string{
			"System.AreaPath",
			"System.AssignedTo",
			"System.BoardColumn",
			"System.BoardColumnDone",
			"System.BoardLane",
			"System.ChangedBy",
			"System.ChangedDate",
			"System.CreatedBy",
			"System.CreatedDate",
			"System.Id",
			"System.IterationPath",
			"System.Reason",
			"System.Rev",
			"System.State",
			"System.TeamProject",
			"System.Title",
			"System.WorkItemType",
		},
		ReportableDetail: []string{
			"System.RevisedDate",
		},
		SyncNameChanges: []string{
			"System.AssignedTo",
			"System.AuthorizedAs",
			"System.ChangedBy",
			"System.CreatedBy",
		},
		FormulaSum: []string{
			"Microsoft.VSTS.Scheduling.BaselineWork",
			"Microsoft.VSTS.Scheduling.CompletedWork",
			"Microsoft.VSTS.Scheduling.OriginalEstimate",
			"Microsoft.VSTS.Scheduling.RemainingWork",
		},
		NoSpaceNames: []string{
			"System.AreaId",
			"System.AttachedFileCount",
			"System.ExternalLinkCount",
			"System.HyperLinkCount",
			"System.IterationId",
			"System.RelatedLinkCount",
		},
		NameAliases: map[string]string{
			"System.HyperLinkCount": "HyperLinkCount",
			"System.IterationId":    "IterationID",
		},

		ValueRewrites: map[string]string{
			"Closed in error":       "Closed in Error",
			"Moved to the backlog":  "Moved to the Backlog",
			"Work finished":         "Work Finished",
			"Acceptance tests pass": "Acceptance Tests Pass",
			"Reintroduced in scope": "Reintroduced in Scope",
		},

		PathTokenFrom: "@ReportServiceSiteURL",
		PathTokenTo:   "@ReportServiceSiteUrl",

		DefaultLayoutMode:         "FirstColumnWide",
		ExcludedGlobalListPrefix:  "Builds - ",
		DefaultWorkItemCountLimit: "500",
		DefaultRequirementParent:  "Microsoft.RequirementCategory",
	}
}
