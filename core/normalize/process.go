package normalize

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
)

// Backlog elements whose children are ordered by tag.
var backlogTags = []string{"IterationBacklog", "ProductBacklog", "RequirementBacklog", "TaskBacklog", "PortfolioBacklog"}

// normalizeProjectConfiguration handles the common, agile and process
// configuration documents, which share one layout vocabulary.
func (n *Normalizer) normalizeProjectConfiguration(doc *etree.Document, itemType schema.ConfigurationItemType) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("%s root: %w", itemType, schema.ErrMissingNode)
	}

	if itemType == schema.ProcessConfiguration {
		n.defaultBacklogAttrs(root)
	}

	walkPostOrder(root, func(el *etree.Element) {
		parent := el.Parent()
		switch {
		case el == root:
			sortChildren(el, byTag)
		case hasTag(el.Tag, backlogTags...):
			sortChildren(el, byTag)
		case el.Tag == "TypeFields":
			sortChildren(el, byAttr("type"))
		case el.Tag == "TypeFieldValues" && parent != nil && parent.Tag == "TypeField":
			sortChildren(el, byAttr("type"))
		case el.Tag == "Weekends":
			sortChildren(el, byText)
		case el.Tag == "PortfolioBacklogs":
			sortChildren(el, byAttr("category"))
		case el.Tag == "WorkItemColors":
			sortChildren(el, byAttr("name"))
		case el.Tag == "Properties":
			sortChildren(el, byAttr("name"))
		}
	})
	return nil
}

// defaultBacklogAttrs fills in the parent links and item limits that the
// server assumes when they are left out.
func (n *Normalizer) defaultBacklogAttrs(root *etree.Element) {
	portfolios := path(root, "PortfolioBacklogs", "PortfolioBacklog")
	requirements := childrenByTag(root, "RequirementBacklog")
	tasks := childrenByTag(root, "TaskBacklog")

	taskParent := n.tables.DefaultRequirementParent
	if category := smallestAttr(requirements, "category"); category != "" {
		taskParent = category
	}
	if taskParent != "" {
		for _, task := range tasks {
			setDefaultAttr(task, "parent", taskParent)
		}
	}

	if lowest := lowestPortfolio(portfolios); lowest != "" {
		for _, requirement := range requirements {
			setDefaultAttr(requirement, "parent", lowest)
		}
	}

	limit := n.tables.DefaultWorkItemCountLimit
	if limit == "" {
		return
	}
	for _, group := range [][]*etree.Element{portfolios, requirements, tasks} {
		for _, b := range group {
			setDefaultAttr(b, "workItemCountLimit", limit)
		}
	}
}

// smallestAttr returns the lowest non-empty value of an attribute, so the
// choice does not depend on document order.
func smallestAttr(els []*etree.Element, name string) string {
	best := ""
	for _, el := range els {
		if v := el.SelectAttrValue(name, ""); v != "" && (best == "" || v < best) {
			best = v
		}
	}
	return best
}

// lowestPortfolio returns the category no other portfolio backlog names as its
// parent, or "" unless there is exactly one.
func lowestPortfolio(portfolios []*etree.Element) string {
	parents := make(map[string]bool)
	for _, b := range portfolios {
		if p := b.SelectAttrValue("parent", ""); p != "" {
			parents[p] = true
		}
	}
	var leaves []string
	for _, b := range portfolios {
		category := b.SelectAttrValue("category", "")
		if category != "" && !parents[category] {
			leaves = append(leaves, category)
		}
	}
	if len(leaves) != 1 {
		return ""
	}
	return leaves[0]
}

func normalizeCategories(doc *etree.Document) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("CATEGORIES: %w", schema.ErrMissingNode)
	}
	for _, category := range root.ChildElements() {
		sortChildren(category, byTagThenAttr("name"))
	}
	sortChildren(root, byAttr("refname"))
	return nil
}
