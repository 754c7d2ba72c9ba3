package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProject(name string, cfg schema.WorkItemConfiguration) TeamProject {
	return TeamProject{
		Name: name,
		Load: func(context.Context) (schema.WorkItemConfiguration, error) { return cfg, nil },
	}
}

func TestCompareTeamProjects(t *testing.T) {
	bug := newItem(t, schema.WorkItemType, "", bugXML)
	bugNewForm := newItem(t, schema.WorkItemType, "", bugNewFormXML)
	task := newItem(t, schema.WorkItemType, "", taskXML)

	sources := []schema.WorkItemConfiguration{
		newConfig("Scrum", task),
		newConfig("Agile", bug),
		newConfig("Agile Tweaked", bugNewForm, task),
	}
	projects := []TeamProject{
		staticProject("Contoso", newConfig("Contoso", bug)),
		{
			Name: "Broken",
			Load: func(context.Context) (schema.WorkItemConfiguration, error) {
				return schema.WorkItemConfiguration{}, errors.New("export not found")
			},
		},
		staticProject("Fabrikam", newConfig("Fabrikam", bugNewForm, task)),
	}

	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			results := CompareTeamProjects(context.Background(), NewComparer(nil), schema.Tfs2013, sources, projects, workers)
			require.Len(t, results, 3)

			contoso := results[0]
			assert.Equal(t, "Contoso", contoso.TeamProject)
			assert.False(t, contoso.HasWarning())
			require.Len(t, contoso.Results, 3)
			require.NotNil(t, contoso.BestMatch)
			assert.Equal(t, "Agile", contoso.BestMatch.Source.Name)
			assert.Equal(t, 1.0, contoso.BestMatch.PercentMatch)
			assert.Contains(t, contoso.Summary, "Agile (100%)")

			broken := results[1]
			assert.Equal(t, "Broken", broken.TeamProject)
			assert.True(t, broken.HasWarning())
			assert.Contains(t, broken.Warning, "export not found")
			assert.Empty(t, broken.Results)
			assert.Nil(t, broken.BestMatch)

			fabrikam := results[2]
			assert.Equal(t, "Fabrikam", fabrikam.TeamProject)
			assert.False(t, fabrikam.HasWarning())
			require.NotNil(t, fabrikam.BestMatch)
			assert.Equal(t, "Agile Tweaked", fabrikam.BestMatch.Source.Name)
			assert.Equal(t, 1.0, fabrikam.BestMatch.PercentMatch)
		})
	}
}

func TestCompareTeamProjectsTie(t *testing.T) {
	bug := newItem(t, schema.WorkItemType, "", bugXML)
	task := newItem(t, schema.WorkItemType, "", taskXML)

	// Each source matches one of the two items, so both score 0.5
	sources := []schema.WorkItemConfiguration{
		newConfig("Scrum", task),
		newConfig("Agile", bug),
	}
	projects := []TeamProject{staticProject("Fabrikam", newConfig("Fabrikam", bug, task))}

	results := CompareTeamProjects(context.Background(), NewComparer(nil), schema.Tfs2013, sources, projects, 2)
	require.Len(t, results, 1)
	require.Len(t, results[0].Results, 2)
	assert.Equal(t, 0.5, results[0].Results[0].PercentMatch)
	assert.Equal(t, 0.5, results[0].Results[1].PercentMatch)
	require.NotNil(t, results[0].BestMatch)
	// The first source wins a tie
	assert.Equal(t, "Scrum", results[0].BestMatch.Source.Name)
}

func TestCompareTeamProjectsCompareError(t *testing.T) {
	broken := newItem(t, schema.WorkItemType, "Bug", `<WITD><GLOBALLISTS/></WITD>`)
	sources := []schema.WorkItemConfiguration{newConfig("Agile", newItem(t, schema.WorkItemType, "", bugXML))}
	projects := []TeamProject{
		staticProject("Broken", newConfig("Broken", broken)),
		staticProject("Contoso", newConfig("Contoso", newItem(t, schema.WorkItemType, "", bugXML))),
	}

	results := CompareTeamProjects(context.Background(), NewComparer(nil), schema.Tfs2013, sources, projects, 2)
	require.Len(t, results, 2)
	assert.True(t, results[0].HasWarning())
	assert.Contains(t, results[0].Warning, "comparing with Agile")
	assert.Empty(t, results[0].Results)
	assert.False(t, results[1].HasWarning())
	assert.Len(t, results[1].Results, 1)
}

func TestCompareTeamProjectsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var loaded atomic.Int32
	sources := []schema.WorkItemConfiguration{newConfig("Agile", newItem(t, schema.WorkItemType, "", bugXML))}

	projects := []TeamProject{
		{
			Name: "First",
			Load: func(context.Context) (schema.WorkItemConfiguration, error) {
				loaded.Add(1)
				cancel()
				return newConfig("First", newItem(t, schema.WorkItemType, "", bugXML)), nil
			},
		},
		{
			Name: "Second",
			Load: func(context.Context) (schema.WorkItemConfiguration, error) {
				loaded.Add(1)
				return newConfig("Second"), nil
			},
		},
	}

	results := CompareTeamProjects(ctx, NewComparer(nil), schema.Tfs2013, sources, projects, 1)
	require.Len(t, results, 2)
	// The running project finishes; the next one is skipped
	assert.False(t, results[0].HasWarning())
	assert.True(t, results[1].HasWarning())
	assert.Contains(t, results[1].Warning, "cancelled")
	assert.Equal(t, int32(1), loaded.Load())
}

func TestCompareTeamProjectsNoLoader(t *testing.T) {
	results := CompareTeamProjects(context.Background(), NewComparer(nil), schema.Tfs2013, nil, []TeamProject{{Name: "Empty"}}, 1)
	require.Len(t, results, 1)
	assert.True(t, results[0].HasWarning())
}

func TestCompareTeamProjectsNamesTarget(t *testing.T) {
	sources := []schema.WorkItemConfiguration{newConfig("Agile", newItem(t, schema.WorkItemType, "", bugXML))}
	projects := []TeamProject{staticProject("Contoso", newConfig("", newItem(t, schema.WorkItemType, "", bugXML)))}

	results := CompareTeamProjects(context.Background(), NewComparer(nil), schema.Tfs2013, sources, projects, 1)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "Contoso", results[0].Results[0].Target.Name)
}

func TestBestMatchSelection(t *testing.T) {
	results := []schema.ConfigurationComparisonResult{
		{Source: schema.ConfigurationSummary{Name: "Scrum"}, PercentMatch: 0.4},
		{Source: schema.ConfigurationSummary{Name: "Agile"}, PercentMatch: 0.9},
		{Source: schema.ConfigurationSummary{Name: "CMMI"}, PercentMatch: 0.7},
	}
	project := schema.NewTeamProjectComparison("Contoso", results)
	require.NotNil(t, project.BestMatch)
	assert.Equal(t, 0.9, project.BestMatch.PercentMatch)
	assert.Equal(t, "Agile", project.BestMatch.Source.Name)
}

func TestBestMatchSummary(t *testing.T) {
	results := []schema.TeamProjectComparisonResult{
		schema.NewTeamProjectComparison("Contoso", []schema.ConfigurationComparisonResult{
			{Source: schema.ConfigurationSummary{Name: "Scrum"}, PercentMatch: 0.4},
			{Source: schema.ConfigurationSummary{Name: "Agile"}, PercentMatch: 0.875},
		}),
		schema.NewTeamProjectWarning("Broken", errors.New("export not found")),
		schema.NewTeamProjectComparison("Empty", nil),
	}

	expected := "Contoso: Agile (88%)\nBroken: warning: export not found\nEmpty: no sources"
	assert.Equal(t, expected, BestMatchSummary(results))
	assert.Empty(t, BestMatchSummary(nil))
}
