// Package normalize canonicalizes TFS configuration XML so that exports which
// differ only in ordering, implicit defaults or version quirks serialize to the
// same bytes.
//
// A Normalizer is read-only after New and safe for concurrent use. Normalize
// never mutates its input; it works on a deep copy of the item's document.
package normalize

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
)

// Normalizer turns configuration items into their canonical XML form.
type Normalizer struct {
	tables Tables
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTables replaces the shipped rule tables.
func WithTables(t Tables) Option {
	return func(n *Normalizer) {
		n.tables = t.Clone()
	}
}

// New creates a Normalizer using DefaultTables unless overridden.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{tables: DefaultTables()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TablesRevision identifies the rule tables in use.
func (n *Normalizer) TablesRevision() string {
	return n.tables.Revision
}

// Normalize returns the canonical document for an item as received by (or
// exported from) the given server version.
func (n *Normalizer) Normalize(item schema.ConfigurationItem, version schema.TfsMajorVersion) (*etree.Document, error) {
	if item.XMLDefinition == nil || item.XMLDefinition.Root() == nil {
		return nil, fmt.Errorf("%s has no XML definition: %w", item.DisplayName(), schema.ErrMissingNode)
	}

	doc := item.XMLDefinition.Copy()
	preNormalize(&doc.Element)

	var err error
	switch item.Type() {
	case schema.WorkItemType:
		err = n.normalizeWorkItemType(doc, version)
	case schema.AgileConfiguration, schema.CommonConfiguration, schema.ProcessConfiguration:
		err = n.normalizeProjectConfiguration(doc, item.Type())
	case schema.Categories:
		err = normalizeCategories(doc)
	}
	if err != nil {
		return nil, err
	}

	postNormalize(doc.Root())
	return doc, nil
}

// NormalizeString returns the serialized canonical form of an item.
func (n *Normalizer) NormalizeString(item schema.ConfigurationItem, version schema.TfsMajorVersion) (string, error) {
	doc, err := n.Normalize(item, version)
	if err != nil {
		return "", err
	}
	return Serialize(doc)
}

// preNormalize drops declarations, comments and whitespace-only text, and
// merges adjacent text tokens.
func preNormalize(el *etree.Element) {
	var kept []etree.Token
	var text strings.Builder
	pending := false

	flush := func() {
		if pending {
			if s := text.String(); strings.TrimSpace(s) != "" {
				kept = append(kept, etree.NewText(s))
			}
			text.Reset()
			pending = false
		}
	}

	for _, t := range el.Child {
		switch tok := t.(type) {
		case *etree.Comment:
			continue
		case *etree.ProcInst:
			if tok.Target == "xml" {
				continue
			}
			flush()
			kept = append(kept, tok)
		case *etree.CharData:
			text.WriteString(tok.Data)
			pending = true
		case *etree.Element:
			flush()
			preNormalize(tok)
			kept = append(kept, tok)
		default:
			flush()
			kept = append(kept, t)
		}
	}
	flush()
	replaceChildren(el, kept)
}

func postNormalize(root *etree.Element) {
	if root == nil {
		return
	}
	sortAttrsDeep(root)
}

// Parse reads a document from a string.
func Parse(s string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return doc, nil
}

// Serialize writes a document without indentation. Empty elements self-close.
func Serialize(doc *etree.Document) (string, error) {
	doc.WriteSettings.CanonicalEndTags = false
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc.WriteToString()
}

// SerializeElement writes a single element as a standalone fragment.
func SerializeElement(el *etree.Element) (string, error) {
	if el == nil {
		return "", nil
	}
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return Serialize(doc)
}
