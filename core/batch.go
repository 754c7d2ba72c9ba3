package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/witdiff/schema"
	"golang.org/x/sync/errgroup"
)

// ErrCancelled marks team projects that were skipped because the batch was cancelled.
var ErrCancelled = errors.New("cancelled")

// TeamProject is a target configuration that is loaded on demand.
type TeamProject struct {
	Name string
	Load func(ctx context.Context) (schema.WorkItemConfiguration, error)
}

// CompareTeamProjects compares every project against every source, running up to
// workers projects at a time. A project that fails to load or compare gets a
// warning and the batch carries on. Results follow the order of projects.
func CompareTeamProjects(ctx context.Context, cmp *Comparer, version schema.TfsMajorVersion, sources []schema.WorkItemConfiguration, projects []TeamProject, workers int) []schema.TeamProjectComparisonResult {
	results := make([]schema.TeamProjectComparisonResult, len(projects))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, p := range projects {
		g.Go(func() error {
			// Cancellation is only observed between projects
			if err := ctx.Err(); err != nil {
				results[i] = schema.NewTeamProjectWarning(p.Name, fmt.Errorf("%w: %w", ErrCancelled, err))
				return nil
			}
			results[i] = compareTeamProject(ctx, cmp, version, sources, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// compareTeamProject compares one project against each source in turn.
func compareTeamProject(ctx context.Context, cmp *Comparer, version schema.TfsMajorVersion, sources []schema.WorkItemConfiguration, p TeamProject) schema.TeamProjectComparisonResult {
	if p.Load == nil {
		return schema.NewTeamProjectWarning(p.Name, errors.New("no loader for team project"))
	}
	target, err := p.Load(ctx)
	if err != nil {
		return schema.NewTeamProjectWarning(p.Name, err)
	}
	if target.Name == "" {
		target.Name = p.Name
	}

	results := make([]schema.ConfigurationComparisonResult, 0, len(sources))
	for _, source := range sources {
		result, err := cmp.Compare(version, source, target)
		if err != nil {
			return schema.NewTeamProjectWarning(p.Name, fmt.Errorf("comparing with %s: %w", source.Name, err))
		}
		results = append(results, result)
	}
	return schema.NewTeamProjectComparison(p.Name, results)
}

// BestMatchSummary renders one line per project naming its closest source.
func BestMatchSummary(results []schema.TeamProjectComparisonResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.HasWarning():
			lines = append(lines, fmt.Sprintf("%s: warning: %s", r.TeamProject, r.Warning))
		case r.BestMatch == nil:
			lines = append(lines, fmt.Sprintf("%s: no sources", r.TeamProject))
		default:
			lines = append(lines, fmt.Sprintf("%s: %s (%s%%)", r.TeamProject, r.BestMatch.Source.Name, schema.FormatPercent(r.BestMatch.PercentMatch)))
		}
	}
	return strings.Join(lines, "\n")
}
