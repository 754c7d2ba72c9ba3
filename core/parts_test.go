package core

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/core/normalize"
	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partNames(parts []schema.ConfigurationItemPart) []string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return names
}

func TestGetParts(t *testing.T) {
	n := normalize.New()
	tests := []struct {
		name     string
		itemType schema.ConfigurationItemType
		xml      string
		expected []string
	}{
		{"work item type in WITD wrapper", schema.WorkItemType, bugXML, []string{"FIELDS", "WORKFLOW", "FORM"}},
		{"bare work item type", schema.WorkItemType, bugNoFormXML, []string{"FIELDS", "WORKFLOW"}},
		{"categories", schema.Categories, categoriesXML, []string{"CATEGORIES"}},
		{"process configuration", schema.ProcessConfiguration, processXML, []string{"RequirementBacklog", "TaskBacklog", "TypeFields", "Weekends"}},
		{"common configuration", schema.CommonConfiguration, commonXML, []string{"TypeFields"}},
		{"agile configuration", schema.AgileConfiguration, agileXML, []string{"ProductBacklog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newItem(t, tt.itemType, "", tt.xml)
			doc, err := n.Normalize(item, schema.Tfs2013)
			require.NoError(t, err)

			parts, err := GetParts(item, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, partNames(parts))
			for _, p := range parts {
				assert.NotNil(t, p.Element)
			}
		})
	}
}

func TestGetPartsCategoriesWrapsRoot(t *testing.T) {
	item := newItem(t, schema.Categories, "", categoriesXML)
	doc, err := normalize.New().Normalize(item, schema.Tfs2013)
	require.NoError(t, err)

	parts, err := GetParts(item, doc)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Same(t, doc.Root(), parts[0].Element)
}

func TestGetPartsErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		item := newItem(t, schema.ConfigurationItemType("GlobalLists"), "Lists", `<GLOBALLISTS/>`)
		_, err := GetParts(item, item.XMLDefinition)
		assert.ErrorIs(t, err, schema.ErrNoDecomposition)
	})

	t.Run("nil document", func(t *testing.T) {
		item := newItem(t, schema.WorkItemType, "", bugXML)
		_, err := GetParts(item, nil)
		assert.ErrorIs(t, err, schema.ErrMissingNode)
	})

	t.Run("empty document", func(t *testing.T) {
		item := newItem(t, schema.Categories, "", categoriesXML)
		_, err := GetParts(item, etree.NewDocument())
		assert.ErrorIs(t, err, schema.ErrMissingNode)
	})

	t.Run("missing work item type", func(t *testing.T) {
		doc, err := normalize.Parse(`<WITD><GLOBALLISTS/></WITD>`)
		require.NoError(t, err)
		item := schema.NewConfigurationItem(schema.WorkItemType, "Bug", doc)
		_, err = GetParts(item, doc)
		assert.ErrorIs(t, err, schema.ErrMissingNode)
	})
}

func TestAlignParts(t *testing.T) {
	el := func(tag string) *etree.Element { return etree.NewElement(tag) }
	part := func(name string) schema.ConfigurationItemPart {
		return schema.ConfigurationItemPart{Name: name, Element: el(name)}
	}

	source := []schema.ConfigurationItemPart{part("FIELDS"), part("WORKFLOW"), part("DESCRIPTION")}
	target := []schema.ConfigurationItemPart{part("FORM"), part("FIELDS"), part("WORKFLOW")}

	pairs, err := AlignParts(source, target)
	require.NoError(t, err)
	require.Len(t, pairs, 4)

	var names []string
	for _, p := range pairs {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"FORM", "FIELDS", "WORKFLOW", "DESCRIPTION"}, names)

	assert.Nil(t, pairs[0].Source)
	assert.Same(t, target[0].Element, pairs[0].Target)
	assert.Same(t, source[0].Element, pairs[1].Source)
	assert.Same(t, target[1].Element, pairs[1].Target)
	assert.Same(t, source[2].Element, pairs[3].Source)
	assert.Nil(t, pairs[3].Target)
}

func TestAlignPartsDuplicates(t *testing.T) {
	dup := []schema.ConfigurationItemPart{{Name: "FIELDS"}, {Name: "FIELDS"}}
	one := []schema.ConfigurationItemPart{{Name: "FIELDS"}}

	_, err := AlignParts(dup, one)
	assert.ErrorIs(t, err, schema.ErrPartMismatch)

	_, err = AlignParts(one, dup)
	assert.ErrorIs(t, err, schema.ErrPartMismatch)
}

func TestAlignPartsEmpty(t *testing.T) {
	pairs, err := AlignParts(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
