package core

import (
	"testing"

	"github.com/huangsam/witdiff/core/normalize"
	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/require"
)

const bugXML = `<?xml version="1.0" encoding="utf-8"?>
<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <WORKITEMTYPE name="Bug" refname="Microsoft.VSTS.WorkItemTypes.Bug">
    <FIELDS>
      <FIELD name="Severity" refname="Microsoft.VSTS.Common.Severity" type="String" reportable="dimension">
        <ALLOWEDVALUES>
          <LISTITEM value="2 - High" />
          <LISTITEM value="1 - Critical" />
        </ALLOWEDVALUES>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Resolved" />
        <STATE value="Active" />
      </STATES>
      <TRANSITIONS>
        <TRANSITION from="Active" to="Resolved">
          <REASONS><REASON value="Fixed" /></REASONS>
        </TRANSITION>
      </TRANSITIONS>
    </WORKFLOW>
    <FORM>
      <Layout>
        <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
      </Layout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

// bugReorderedXML is bugXML with its unordered collections permuted.
const bugReorderedXML = `<witd:WITD xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef" version="1.0" application="Work item type editor">
  <WORKITEMTYPE refname="Microsoft.VSTS.WorkItemTypes.Bug" name="Bug">
    <FIELDS>
      <FIELD type="String" refname="Microsoft.VSTS.Common.Severity" name="Severity" reportable="dimension">
        <ALLOWEDVALUES>
          <LISTITEM value="1 - Critical" />
          <LISTITEM value="2 - High" />
        </ALLOWEDVALUES>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Active" />
        <STATE value="Resolved" />
      </STATES>
      <TRANSITIONS>
        <TRANSITION to="Resolved" from="Active">
          <REASONS><REASON value="Fixed" /></REASONS>
        </TRANSITION>
      </TRANSITIONS>
    </WORKFLOW>
    <FORM>
      <Layout>
        <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
      </Layout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

// bugNewFormXML differs from bugXML only in its FORM.
const bugNewFormXML = `<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <WORKITEMTYPE name="Bug" refname="Microsoft.VSTS.WorkItemTypes.Bug">
    <FIELDS>
      <FIELD name="Severity" refname="Microsoft.VSTS.Common.Severity" type="String" reportable="dimension">
        <ALLOWEDVALUES>
          <LISTITEM value="1 - Critical" />
          <LISTITEM value="2 - High" />
        </ALLOWEDVALUES>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Active" />
        <STATE value="Resolved" />
      </STATES>
      <TRANSITIONS>
        <TRANSITION from="Active" to="Resolved">
          <REASONS><REASON value="Fixed" /></REASONS>
        </TRANSITION>
      </TRANSITIONS>
    </WORKFLOW>
    <FORM>
      <WebLayout>
        <Page Label="Details">
          <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
        </Page>
      </WebLayout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

// bugNoFormXML is bugXML without a FORM.
const bugNoFormXML = `<WORKITEMTYPE name="Bug">
  <FIELDS>
    <FIELD name="Severity" refname="Microsoft.VSTS.Common.Severity" type="String" reportable="dimension">
      <ALLOWEDVALUES>
        <LISTITEM value="1 - Critical" />
        <LISTITEM value="2 - High" />
      </ALLOWEDVALUES>
    </FIELD>
  </FIELDS>
  <WORKFLOW>
    <STATES>
      <STATE value="Active" />
      <STATE value="Resolved" />
    </STATES>
    <TRANSITIONS>
      <TRANSITION from="Active" to="Resolved">
        <REASONS><REASON value="Fixed" /></REASONS>
      </TRANSITION>
    </TRANSITIONS>
  </WORKFLOW>
</WORKITEMTYPE>`

const taskXML = `<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <WORKITEMTYPE name="Task">
    <FIELDS>
      <FIELD name="Activity" refname="Microsoft.VSTS.Common.Activity" type="String" reportable="dimension" />
    </FIELDS>
    <WORKFLOW>
      <STATES><STATE value="To Do" /></STATES>
    </WORKFLOW>
    <FORM><Layout /></FORM>
  </WORKITEMTYPE>
</witd:WITD>`

const categoriesXML = `<cat:CATEGORIES xmlns:cat="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/categories">
  <CATEGORY refname="Microsoft.RequirementCategory" name="Requirement Category">
    <DEFAULTWORKITEMTYPE name="User Story" />
  </CATEGORY>
  <CATEGORY refname="Microsoft.BugCategory" name="Bug Category">
    <DEFAULTWORKITEMTYPE name="Bug" />
  </CATEGORY>
</cat:CATEGORIES>`

const processXML = `<ProjectProcessConfiguration>
  <TypeFields>
    <TypeField refname="Microsoft.VSTS.Scheduling.RemainingWork" type="RemainingWork" />
    <TypeField refname="System.AreaPath" type="Team" />
  </TypeFields>
  <RequirementBacklog category="Microsoft.RequirementCategory" pluralName="Stories" singularName="User Story" />
  <TaskBacklog category="Microsoft.TaskCategory" pluralName="Tasks" singularName="Task" />
  <Weekends><DayOfWeek>Sunday</DayOfWeek><DayOfWeek>Saturday</DayOfWeek></Weekends>
</ProjectProcessConfiguration>`

const commonXML = `<CommonProjectConfiguration>
  <TypeFields>
    <TypeField refname="System.AreaPath" type="Team" />
  </TypeFields>
</CommonProjectConfiguration>`

const agileXML = `<AgileProjectConfiguration>
  <ProductBacklog>
    <Columns><Column refname="System.Title" width="400" /></Columns>
  </ProductBacklog>
</AgileProjectConfiguration>`

// newItem parses an XML fixture into a configuration item.
func newItem(t testing.TB, itemType schema.ConfigurationItemType, name, xml string) schema.ConfigurationItem {
	t.Helper()
	doc, err := normalize.Parse(xml)
	require.NoError(t, err)
	return schema.NewConfigurationItem(itemType, name, doc)
}

// newConfig builds a named configuration from items.
func newConfig(name string, items ...schema.ConfigurationItem) schema.WorkItemConfiguration {
	return schema.WorkItemConfiguration{Name: name, Items: items}
}

// serializeItem returns the raw serialized definition of an item.
func serializeItem(t testing.TB, item schema.ConfigurationItem) string {
	t.Helper()
	s, err := item.XMLDefinition.WriteToString()
	require.NoError(t, err)
	return s
}
