package normalize

import (
	"math/rand/v2"
	"testing"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/require"
)

const bugXML = `<?xml version="1.0" encoding="utf-8"?>
<witd:WITD application="Work item type editor" version="1.0" xmlns:witd="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/typedef">
  <!-- exported from Contoso -->
  <WORKITEMTYPE name="Bug" refname="Microsoft.VSTS.WorkItemTypes.Bug">
    <DESCRIPTION>Describes a divergence between required and actual behavior.</DESCRIPTION>
    <FIELDS>
      <FIELD name="Severity" refname="Microsoft.VSTS.Common.Severity" type="String" reportable="dimension">
        <ALLOWEDVALUES expanditems="true">
          <LISTITEM value="3 - Medium" />
          <LISTITEM value="1 - Critical" />
          <LISTITEM value="2 - High" />
        </ALLOWEDVALUES>
        <DEFAULT from="value" value="3 - Medium" />
      </FIELD>
      <FIELD name="Found In" refname="Microsoft.VSTS.Build.FoundIn" type="String">
        <SUGGESTEDVALUES expanditems="true">
          <GLOBALLIST name="Builds - Contoso" />
          <LISTITEM value="Main" />
        </SUGGESTEDVALUES>
      </FIELD>
      <FIELD name="Id" refname="System.Id" type="Integer" />
      <FIELD name="Remaining Work" refname="Microsoft.VSTS.Scheduling.RemainingWork" type="Double" reportable="measure" />
      <FIELD name="Hyperlink Count" refname="System.HyperLinkCount" type="Integer" />
      <FIELD name="Priority" refname="Microsoft.VSTS.Common.Priority" type="Integer" reportable="dimension">
        <ALLOWEXISTINGVALUE />
        <ALLOWEDVALUES>
          <LISTITEM value="2" />
          <LISTITEM value="1" />
        </ALLOWEDVALUES>
        <WHEN field="System.State" value="Active">
          <REQUIRED />
        </WHEN>
      </FIELD>
    </FIELDS>
    <WORKFLOW>
      <STATES>
        <STATE value="Resolved">
          <FIELDS>
            <FIELD refname="Microsoft.VSTS.Common.Priority"><REQUIRED /></FIELD>
            <FIELD refname="Microsoft.VSTS.Common.Severity"><READONLY /></FIELD>
          </FIELDS>
        </STATE>
        <STATE value="Active" />
        <STATE value="Closed" />
      </STATES>
      <TRANSITIONS>
        <TRANSITION from="Active" to="Resolved">
          <REASONS>
            <REASON value="Fixed" />
            <DEFAULTREASON value="As Designed" />
          </REASONS>
          <FIELDS>
            <FIELD refname="Microsoft.VSTS.Common.Priority"><COPY from="currentuser" /></FIELD>
          </FIELDS>
          <ACTIONS>
            <ACTION value="Microsoft.VSTS.Actions.Checkin" />
          </ACTIONS>
        </TRANSITION>
        <TRANSITION from="" to="Active">
          <REASONS>
            <DEFAULTREASON value="New" />
          </REASONS>
        </TRANSITION>
        <TRANSITION from="Resolved" to="Closed">
          <REASONS>
            <DEFAULTREASON value="Closed in error" />
          </REASONS>
        </TRANSITION>
      </TRANSITIONS>
    </WORKFLOW>
    <FORM>
      <Layout>
        <Group>
          <Column PercentWidth="100">
            <Control FieldName="System.Title" Type="FieldControl" Label="Title" />
            <Control Type="WebpageControl" Name="Reports">
              <WebpageControlOptions>
                <Link UrlRoot="http://@ReportServiceSiteURL/reports" />
              </WebpageControlOptions>
            </Control>
            <Control Type="LinksControl" Name="Links">
              <LinksControlOptions>
                <WorkItemLinkFilters filterType="includeAll" />
                <ExternalLinkFilters filterType="include">
                  <Filter linkType="Fixed in Changeset" />
                  <Filter linkType="Found in build" />
                </ExternalLinkFilters>
                <LinkColumns>
                  <LinkColumn RefName="System.Title" />
                  <LinkColumn RefName="System.Id" />
                </LinkColumns>
              </LinksControlOptions>
            </Control>
          </Column>
        </Group>
      </Layout>
      <WebLayout>
        <Page Label="Details">
          <Section>
            <Group Label="Details">
              <Control FieldName="Microsoft.VSTS.Common.Severity" />
              <Control FieldName="System.Description" Type="HtmlFieldControl">
                <CustomControlOptions />
              </Control>
            </Group>
          </Section>
        </Page>
        <Page Label="History" LayoutMode="Normal" />
      </WebLayout>
    </FORM>
  </WORKITEMTYPE>
</witd:WITD>`

const processXML = `<?xml version="1.0" encoding="utf-8"?>
<ProjectProcessConfiguration>
  <BugWorkItems category="Microsoft.BugCategory" pluralName="Bugs" singularName="Bug">
    <States>
      <State value="New" type="Proposed" />
      <State value="Active" type="InProgress" />
      <State value="Closed" type="Complete" />
    </States>
  </BugWorkItems>
  <PortfolioBacklogs>
    <PortfolioBacklog category="Microsoft.FeatureCategory" parent="Microsoft.EpicCategory" pluralName="Features" singularName="Feature">
      <States><State value="New" type="Proposed" /></States>
      <Columns>
        <Column refname="System.WorkItemType" width="100" />
        <Column refname="System.Title" width="400" />
      </Columns>
      <AddPanel><Fields><Field refname="System.Title" /></Fields></AddPanel>
    </PortfolioBacklog>
    <PortfolioBacklog category="Microsoft.EpicCategory" pluralName="Epics" singularName="Epic" workItemCountLimit="100">
      <States><State value="New" type="Proposed" /></States>
    </PortfolioBacklog>
  </PortfolioBacklogs>
  <RequirementBacklog category="Microsoft.RequirementCategory" pluralName="Stories" singularName="User Story">
    <States><State value="New" type="Proposed" /></States>
  </RequirementBacklog>
  <TaskBacklog category="Microsoft.TaskCategory" pluralName="Tasks" singularName="Task">
    <States><State value="To Do" type="Proposed" /></States>
  </TaskBacklog>
  <FeedbackRequestWorkItems category="Microsoft.FeedbackRequestCategory" pluralName="Feedback Requests" singularName="Feedback Request" />
  <TypeFields>
    <TypeField refname="Microsoft.VSTS.Scheduling.RemainingWork" type="RemainingWork" format="{0} h" />
    <TypeField refname="Microsoft.VSTS.Common.Activity" type="Activity" />
    <TypeField refname="Microsoft.VSTS.Feedback.ApplicationType" type="ApplicationType">
      <TypeFieldValues>
        <TypeFieldValue value="Web application" type="WebApp" />
        <TypeFieldValue value="Remote machine" type="RemoteMachine" />
        <TypeFieldValue value="Client application" type="ClientApp" />
      </TypeFieldValues>
    </TypeField>
  </TypeFields>
  <Weekends>
    <DayOfWeek>Sunday</DayOfWeek>
    <DayOfWeek>Saturday</DayOfWeek>
  </Weekends>
  <WorkItemColors>
    <WorkItemColor primary="FF009CCC" secondary="FFD6ECF2" name="User Story" />
    <WorkItemColor primary="FFCC293D" secondary="FFFAEAE5" name="Bug" />
  </WorkItemColors>
  <Properties>
    <Property name="HiddenBacklogs" value="" />
    <Property name="BugsBehavior" value="AsTasks" />
  </Properties>
</ProjectProcessConfiguration>`

const categoriesXML = `<?xml version="1.0" encoding="utf-8"?>
<cat:CATEGORIES xmlns:cat="http://schemas.microsoft.com/VisualStudio/2008/workitemtracking/categories">
  <CATEGORY refname="Microsoft.TaskCategory" name="Task Category">
    <DEFAULTWORKITEMTYPE name="Task" />
  </CATEGORY>
  <CATEGORY refname="Microsoft.BugCategory" name="Bug Category">
    <WORKITEMTYPE name="Issue" />
    <DEFAULTWORKITEMTYPE name="Bug" />
    <WORKITEMTYPE name="Defect" />
  </CATEGORY>
</cat:CATEGORIES>`

func mustItem(t testing.TB, itemType schema.ConfigurationItemType, xml string) schema.ConfigurationItem {
	t.Helper()
	doc, err := Parse(xml)
	require.NoError(t, err)
	return schema.NewConfigurationItem(itemType, "", doc)
}

func mustNormalize(t testing.TB, n *Normalizer, item schema.ConfigurationItem, version schema.TfsMajorVersion) string {
	t.Helper()
	out, err := n.NormalizeString(item, version)
	require.NoError(t, err)
	return out
}

// unorderedWIT lists the work item type containers whose child order carries no meaning.
var unorderedWIT = []string{
	"FIELDS", "STATES", "TRANSITIONS", "ALLOWEDVALUES", "SUGGESTEDVALUES",
	"PROHIBITEDVALUES", "REASONS", "ACTIONS", "LinksControlOptions", "ExternalLinkFilters",
	"WHEN", "WHENNOT", "WHENCHANGED", "WHENNOTCHANGED",
}

// unorderedProcess lists the process configuration containers whose child order carries no meaning.
var unorderedProcess = []string{
	"ProjectProcessConfiguration", "PortfolioBacklogs", "PortfolioBacklog", "RequirementBacklog",
	"TaskBacklog", "TypeFields", "TypeFieldValues", "Weekends", "WorkItemColors", "Properties",
}

// shuffled returns a copy of doc with attributes and the children of the
// given containers permuted. Rule lists under FIELDS/FIELD are included.
func shuffled(doc *etree.Document, containers []string, seed uint64) *etree.Document {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := doc.Copy()
	walk(&out.Element, func(el *etree.Element) {
		rng.Shuffle(len(el.Attr), func(i, j int) {
			el.Attr[i], el.Attr[j] = el.Attr[j], el.Attr[i]
		})
		parent := el.Parent()
		isRuleList := el.Tag == "FIELD" && parent != nil && parent.Tag == "FIELDS"
		if !hasTag(el.Tag, containers...) && !isRuleList {
			return
		}
		children := el.ChildElements()
		rng.Shuffle(len(children), func(i, j int) {
			children[i], children[j] = children[j], children[i]
		})
		tokens := make([]etree.Token, len(children))
		for i, c := range children {
			tokens[i] = c
		}
		replaceChildren(el, tokens)
	})
	return out
}
