package schema

import (
	"strings"

	"github.com/beevik/etree"
)

// Default names for configuration items that are singletons per team project.
const (
	DefaultCategoriesName           = "Categories"
	DefaultCommonConfigurationName  = "Common Configuration"
	DefaultAgileConfigurationName   = "Agile Configuration"
	DefaultProcessConfigurationName = "Process Configuration"
)

// ConfigurationItem is a single unit of TFS configuration: a work item type
// definition, the category list, or one of the process configuration documents.
// The type is fixed at construction and decides how the item is normalized and
// decomposed into parts.
type ConfigurationItem struct {
	itemType      ConfigurationItemType
	Name          string
	XMLDefinition *etree.Document
}

// NewConfigurationItem creates an item. An empty name is replaced by the
// default name for the type.
func NewConfigurationItem(itemType ConfigurationItemType, name string, doc *etree.Document) ConfigurationItem {
	if strings.TrimSpace(name) == "" {
		name = DefaultItemName(itemType, doc)
	}
	return ConfigurationItem{itemType: itemType, Name: name, XMLDefinition: doc}
}

// Type returns the configuration item type.
func (c ConfigurationItem) Type() ConfigurationItemType {
	return c.itemType
}

// Key returns the identity used for matching: type plus lower-cased name.
func (c ConfigurationItem) Key() string {
	return string(c.itemType) + "|" + strings.ToLower(c.Name)
}

// DisplayName returns "Type: Name".
func (c ConfigurationItem) DisplayName() string {
	return string(c.itemType) + ": " + c.Name
}

// Clone returns a deep copy of the item.
func (c ConfigurationItem) Clone() ConfigurationItem {
	clone := c
	if c.XMLDefinition != nil {
		clone.XMLDefinition = c.XMLDefinition.Copy()
	}
	return clone
}

// WithXMLDefinition returns a copy of the item carrying a different definition.
func (c ConfigurationItem) WithXMLDefinition(doc *etree.Document) ConfigurationItem {
	clone := c
	clone.XMLDefinition = doc
	return clone
}

// DefaultItemName returns the name an item gets when none is given.
func DefaultItemName(itemType ConfigurationItemType, doc *etree.Document) string {
	switch itemType {
	case WorkItemType:
		if doc != nil {
			if wit := FindWorkItemTypeElement(doc); wit != nil {
				return wit.SelectAttrValue("name", "")
			}
		}
		return ""
	case Categories:
		return DefaultCategoriesName
	case CommonConfiguration:
		return DefaultCommonConfigurationName
	case AgileConfiguration:
		return DefaultAgileConfigurationName
	case ProcessConfiguration:
		return DefaultProcessConfigurationName
	default:
		return string(itemType)
	}
}

// FindWorkItemTypeElement returns the WORKITEMTYPE element, which is either the
// document root or a child of the witd:WITD wrapper.
func FindWorkItemTypeElement(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}
	if root.Tag == "WORKITEMTYPE" {
		return root
	}
	for _, child := range root.ChildElements() {
		if child.Tag == "WORKITEMTYPE" {
			return child
		}
	}
	return nil
}

// WorkItemConfiguration is a named, ordered list of configuration items
// representing one source: a team project snapshot, a process template, or a
// curated list.
type WorkItemConfiguration struct {
	Name        string
	Description string
	Items       []ConfigurationItem
}

// IsValid reports whether the configuration has a name and at least one item.
func (w WorkItemConfiguration) IsValid() bool {
	return strings.TrimSpace(w.Name) != "" && len(w.Items) > 0
}

// Summary returns the metadata carried on comparison results.
func (w WorkItemConfiguration) Summary() ConfigurationSummary {
	return ConfigurationSummary{
		Name:        w.Name,
		Description: w.Description,
		ItemCount:   len(w.Items),
	}
}

// ConfigurationItemPart is a named sub-tree of a normalized item. Element is nil
// when the part does not exist on that side of a comparison.
type ConfigurationItemPart struct {
	Name    string
	Element *etree.Element
}
