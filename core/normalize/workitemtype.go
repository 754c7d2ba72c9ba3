package normalize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
)

// Rule elements that do not count when deciding whether a rule list needs an
// explicit ALLOWEXISTINGVALUE.
var passiveRules = []string{"DEFAULT", "COPY", "ALLOWEXISTINGVALUE"}

// Conditional wrappers hold their own rule lists.
var conditionalTags = []string{"WHEN", "WHENNOT", "WHENCHANGED", "WHENNOTCHANGED"}

// Containers whose children are matched by tag plus identifying attribute.
var ruleListTags = []string{
	"ALLOWEDVALUES", "SUGGESTEDVALUES", "PROHIBITEDVALUES",
	"REASONS", "ACTIONS",
	"LinksControlOptions", "WorkItemLinkFilters", "WorkItemTypeFilters", "ExternalLinkFilters",
}

func (n *Normalizer) normalizeWorkItemType(doc *etree.Document, version schema.TfsMajorVersion) error {
	wit := schema.FindWorkItemTypeElement(doc)
	if wit == nil {
		return fmt.Errorf("WORKITEMTYPE: %w", schema.ErrMissingNode)
	}

	n.fixPathToken(wit)
	wit.RemoveAttr("refname")
	n.defaultPageLayout(wit)
	walk(wit, func(el *etree.Element) {
		if a := el.SelectAttr("expanditems"); a != nil && strings.EqualFold(a.Value, "true") {
			el.RemoveAttr("expanditems")
		}
	})
	if prefix := n.tables.ExcludedGlobalListPrefix; prefix != "" {
		prune(wit, func(el *etree.Element) bool {
			return el.Tag == "GLOBALLIST" && strings.HasPrefix(el.SelectAttrValue("name", ""), prefix)
		})
	}
	// Runs after the removals above, which can leave options empty.
	prune(wit, func(el *etree.Element) bool {
		return el.Tag == "CustomControlOptions" && isEmpty(el)
	})
	n.rewriteValues(wit)

	fields := firstChild(wit, "FIELDS")
	if fields == nil {
		fields = wit.CreateElement("FIELDS")
	}
	n.injectSystemFields(fields, version)
	n.applyKnownFieldLists(fields)
	expandAllowExistingValue(wit, fields)

	sortWorkItemType(wit)
	return nil
}

// fixPathToken rewrites the report server token to its canonical casing.
func (n *Normalizer) fixPathToken(wit *etree.Element) {
	from, to := n.tables.PathTokenFrom, n.tables.PathTokenTo
	if from == "" {
		return
	}
	rewriteStrings(wit, func(s string) string {
		return strings.ReplaceAll(s, from, to)
	})
}

func (n *Normalizer) defaultPageLayout(wit *etree.Element) {
	if n.tables.DefaultLayoutMode == "" {
		return
	}
	for _, page := range path(wit, "FORM", "WebLayout", "Page") {
		setDefaultAttr(page, "LayoutMode", n.tables.DefaultLayoutMode)
	}
}

func (n *Normalizer) rewriteValues(wit *etree.Element) {
	walk(wit, func(el *etree.Element) {
		a := el.SelectAttr("value")
		if a == nil {
			return
		}
		if canonical, ok := n.tables.ValueRewrites[a.Value]; ok {
			a.Value = canonical
		}
	})
}

// injectSystemFields adds the system fields the server version defines but
// the export left out.
func (n *Normalizer) injectSystemFields(fields *etree.Element, version schema.TfsMajorVersion) {
	present := make(map[string]bool)
	for _, f := range childrenByTag(fields, "FIELD") {
		present[f.SelectAttrValue("refname", "")] = true
	}
	for _, sf := range n.tables.SystemFieldsFor(version) {
		if present[sf.RefName] {
			continue
		}
		el := fields.CreateElement("FIELD")
		el.CreateAttr("refname", sf.RefName)
		for _, a := range sf.Attrs {
			el.CreateAttr(a.Name, a.Value)
		}
	}
}

// applyKnownFieldLists forces attribute values that TFS reports inconsistently
// across versions. Only top-level field definitions are touched.
func (n *Normalizer) applyKnownFieldLists(fields *etree.Element) {
	t := n.tables
	for _, f := range childrenByTag(fields, "FIELD") {
		ref := f.SelectAttrValue("refname", "")
		switch {
		case slices.Contains(t.ReportableDimension, ref):
			f.CreateAttr("reportable", "dimension")
		case slices.Contains(t.ReportableDetail, ref):
			f.CreateAttr("reportable", "detail")
		}
		if slices.Contains(t.SyncNameChanges, ref) {
			f.CreateAttr("syncnamechanges", "true")
		}
		if slices.Contains(t.FormulaSum, ref) {
			f.CreateAttr("formula", "sum")
		}
		if slices.Contains(t.NoSpaceNames, ref) {
			if a := f.SelectAttr("name"); a != nil {
				a.Value = strings.ReplaceAll(a.Value, " ", "")
			}
		}
		if alias, ok := t.NameAliases[ref]; ok {
			f.CreateAttr("name", alias)
		}
		if ref == "System.Id" {
			f.CreateAttr("name", "ID")
		}
	}
}

// expandAllowExistingValue spells out the field-level ALLOWEXISTINGVALUE
// shortcut in every rule list of that field.
func expandAllowExistingValue(wit, fields *etree.Element) {
	targets := make(map[string]bool)
	for _, f := range childrenByTag(fields, "FIELD") {
		if firstChild(f, "ALLOWEXISTINGVALUE") != nil {
			targets[f.SelectAttrValue("refname", "")] = true
		}
	}
	if len(targets) == 0 {
		return
	}

	var ruleLists []*etree.Element
	collect := func(f *etree.Element) {
		if !targets[f.SelectAttrValue("refname", "")] {
			return
		}
		ruleLists = append(ruleLists, f)
		for _, c := range f.ChildElements() {
			if hasTag(c.Tag, conditionalTags...) {
				ruleLists = append(ruleLists, c)
			}
		}
	}
	for _, f := range childrenByTag(fields, "FIELD") {
		collect(f)
	}
	for _, f := range path(wit, "WORKFLOW", "STATES", "STATE", "FIELDS", "FIELD") {
		collect(f)
	}
	for _, f := range path(wit, "WORKFLOW", "TRANSITIONS", "TRANSITION", "FIELDS", "FIELD") {
		collect(f)
	}

	for _, list := range ruleLists {
		if needsAllowExisting(list) {
			list.CreateElement("ALLOWEXISTINGVALUE")
		}
	}
}

// needsAllowExisting holds when the list has an active rule and no explicit
// ALLOWEXISTINGVALUE. Conditional wrappers are not rules of the list itself.
func needsAllowExisting(list *etree.Element) bool {
	active := false
	for _, c := range list.ChildElements() {
		switch {
		case c.Tag == "ALLOWEXISTINGVALUE":
			return false
		case hasTag(c.Tag, passiveRules...), hasTag(c.Tag, conditionalTags...):
		default:
			active = true
		}
	}
	return active
}

// sortWorkItemType orders every unordered collection, children first so
// parent sort keys see canonical children.
func sortWorkItemType(wit *etree.Element) {
	walkPostOrder(wit, func(el *etree.Element) {
		parent := el.Parent()
		switch {
		case el.Tag == "FIELDS":
			sortChildren(el, byAttr("refname"))
		case el.Tag == "STATES":
			sortChildren(el, byAttr("value"))
		case el.Tag == "TRANSITIONS":
			sortChildren(el, byTransition)
		case el.Tag == "FIELD" && parent != nil && parent.Tag == "FIELDS":
			sortChildren(el, byRuleKey)
		case hasTag(el.Tag, conditionalTags...), hasTag(el.Tag, ruleListTags...):
			sortChildren(el, byRuleKey)
		}
	})
}

func byTransition(el *etree.Element) string {
	return el.SelectAttrValue("from", "") + " -> " + el.SelectAttrValue("to", "")
}
