// Package loader reads exported TFS configuration XML and workspace manifests.
package loader

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
)

// ErrUnknownItemType is returned when a document root is not a known configuration item.
var ErrUnknownItemType = errors.New("unknown configuration item type")

// rootTypes maps a document root element (without namespace prefix) to its item type.
var rootTypes = map[string]schema.ConfigurationItemType{
	"WITD":                        schema.WorkItemType,
	"WORKITEMTYPE":                schema.WorkItemType,
	"CATEGORIES":                  schema.Categories,
	"CommonProjectConfiguration":  schema.CommonConfiguration,
	"AgileProjectConfiguration":   schema.AgileConfiguration,
	"ProjectProcessConfiguration": schema.ProcessConfiguration,
}

// DetectItemType returns the item type of a document from its root element.
func DetectItemType(doc *etree.Document) (schema.ConfigurationItemType, error) {
	if doc == nil || doc.Root() == nil {
		return "", fmt.Errorf("document has no root element: %w", ErrUnknownItemType)
	}
	root := doc.Root()
	if itemType, ok := rootTypes[root.Tag]; ok {
		return itemType, nil
	}
	return "", fmt.Errorf("root element <%s>: %w", root.FullTag(), ErrUnknownItemType)
}
