// Package core has core logic for comparing TFS work item configurations.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/witdiff/core/normalize"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/internal/loader"
	"github.com/huangsam/witdiff/internal/outwriter"
	"github.com/huangsam/witdiff/schema"
)

// ErrBelowMinMatch is returned when a comparison scores under the configured threshold.
var ErrBelowMinMatch = errors.New("match below threshold")

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteCompare compares the source paths against the target paths and prints the results.
// It serves as the main entry point for the 'compare' command.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetCompareResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.DumpDir != "" {
		n, err := outwriter.DumpNormalizedPairs(cfg.DumpDir, result)
		if err != nil {
			return fmt.Errorf("failed to dump normalized XML: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Dumped %d item(s) to %s\n", n, cfg.DumpDir)
	}
	if err := outwriter.WriteComparisonResult(result, cfg, duration); err != nil {
		return err
	}
	return checkMinMatch(cfg, result.Target.Name, result.PercentMatch)
}

// ExecuteProjects compares every team project in a manifest against every source.
// It serves as the main entry point for the 'projects' command.
func ExecuteProjects(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	results, duration, err := GetProjectResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.WriteProjectResults(results, cfg, duration); err != nil {
		return err
	}
	var errs []error
	for _, r := range results {
		if r.BestMatch != nil {
			errs = append(errs, checkMinMatch(cfg, r.TeamProject, r.BestMatch.PercentMatch))
		}
	}
	return errors.Join(errs...)
}

// ExecuteNormalize prints the normalized form of a single XML file.
// It serves as the main entry point for the 'normalize' command.
func ExecuteNormalize(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	item, err := GetNormalizedItem(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteNormalizedItem(item, cfg)
}

// GetCompareResults loads both configurations and compares them.
func GetCompareResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ConfigurationComparisonResult, time.Duration, error) {
	start := time.Now()
	if !cfg.CompareMode {
		return schema.ConfigurationComparisonResult{}, 0, errors.New("both --source and --target are required")
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogCompareHeader(cfg)
	}

	source, err := loader.LoadConfiguration(ctx, cfg.SourceName, cfg.SourcePaths, cfg.Workers)
	if err != nil {
		return schema.ConfigurationComparisonResult{}, 0, err
	}
	target, err := loader.LoadConfiguration(ctx, cfg.TargetName, cfg.TargetPaths, cfg.Workers)
	if err != nil {
		return schema.ConfigurationComparisonResult{}, 0, err
	}

	tracker := beginRun(mgr, "compare", cfg)
	result, err := newComparer(mgr).Compare(cfg.TfsVersion, source, target)
	if err != nil {
		return schema.ConfigurationComparisonResult{}, 0, err
	}
	tracker.record(target.Name, result)
	tracker.end(len(result.Items), result.PercentMatch)

	return result, time.Since(start), nil
}

// GetProjectResults runs the batch described by the manifest at cfg.InputPath.
func GetProjectResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.TeamProjectComparisonResult, time.Duration, error) {
	start := time.Now()
	if cfg.InputPath == "" {
		return nil, 0, errors.New("a manifest path is required")
	}
	manifest, err := loader.ReadManifest(cfg.InputPath)
	if err != nil {
		return nil, 0, err
	}

	version := cfg.TfsVersion
	if version == schema.TfsUnknown && manifest.TfsVersion != "" {
		if version, err = schema.ParseTfsMajorVersion(manifest.TfsVersion); err != nil {
			return nil, 0, fmt.Errorf("manifest tfs_version: %w", err)
		}
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogProjectsHeader(cfg, version, len(manifest.Sources), len(manifest.Projects))
	}

	// Sources are shared by every project, so any failure here stops the batch
	sources := make([]schema.WorkItemConfiguration, 0, len(manifest.Sources))
	for _, s := range manifest.Sources {
		source, err := loader.LoadConfiguration(ctx, s.Name, s.Paths, cfg.Workers)
		if err != nil {
			return nil, 0, err
		}
		source.Description = s.Description
		sources = append(sources, source)
	}

	projects := make([]TeamProject, len(manifest.Projects))
	for i, p := range manifest.Projects {
		projects[i] = TeamProject{
			Name: p.Name,
			Load: func(ctx context.Context) (schema.WorkItemConfiguration, error) {
				return loader.LoadConfiguration(ctx, p.Name, p.Paths, 1)
			},
		}
	}

	tracker := beginRun(mgr, "projects", cfg)
	results := CompareTeamProjects(ctx, newComparer(mgr), version, sources, projects, cfg.Workers)

	totalItems, matched, bestTotal := 0, 0, 0.0
	for _, r := range results {
		for _, res := range r.Results {
			tracker.record(r.TeamProject, res)
			totalItems += len(res.Items)
		}
		if r.BestMatch != nil {
			matched++
			bestTotal += r.BestMatch.PercentMatch
		}
	}
	percent := 0.0
	if matched > 0 {
		percent = bestTotal / float64(matched)
	}
	tracker.end(totalItems, percent)

	return results, time.Since(start), nil
}

// GetNormalizedItem loads the XML file at cfg.InputPath and normalizes it.
func GetNormalizedItem(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.NormalizedItem, error) {
	if cfg.InputPath == "" {
		return schema.NormalizedItem{}, errors.New("an XML file path is required")
	}
	item, err := loader.LoadItem(cfg.InputPath)
	if err != nil {
		return schema.NormalizedItem{}, err
	}

	doc, err := normalizeFunc(mgr)(item, cfg.TfsVersion)
	if err != nil {
		return schema.NormalizedItem{}, err
	}
	xml, err := normalize.Serialize(doc)
	if err != nil {
		return schema.NormalizedItem{}, err
	}

	result := schema.NormalizedItem{
		ItemType:   item.Type(),
		ItemName:   item.Name,
		TfsVersion: cfg.TfsVersion.Effective().String(),
		XML:        xml,
	}
	if !cfg.ShowParts {
		return result, nil
	}

	parts, err := GetParts(item, doc)
	if err != nil {
		return schema.NormalizedItem{}, err
	}
	result.Parts = make([]schema.NormalizedPart, len(parts))
	total := 0
	for i, p := range parts {
		partXML, err := normalize.SerializeElement(p.Element)
		if err != nil {
			return schema.NormalizedItem{}, err
		}
		result.Parts[i] = schema.NormalizedPart{Name: p.Name, XML: partXML}
		total += len(partXML)
	}
	for i := range result.Parts {
		if total > 0 {
			result.Parts[i].RelativeSize = float64(len(result.Parts[i].XML)) / float64(total)
		}
	}
	return result, nil
}

// newComparer builds a comparer that uses the normalized XML cache when one is configured.
func newComparer(mgr contract.CacheManager) *Comparer {
	return NewComparer(nil, WithNormalizeFunc(normalizeFunc(mgr)))
}

func normalizeFunc(mgr contract.CacheManager) NormalizeFunc {
	n := normalize.New()
	if mgr == nil {
		return n.Normalize
	}
	store := mgr.GetNormalizedStore()
	if store == nil {
		return n.Normalize
	}
	return NewCachedNormalizer(n, store).Normalize
}

// checkMinMatch fails when a percent match is below the configured threshold.
func checkMinMatch(cfg *contract.Config, name string, percent float64) error {
	if cfg.MinMatch <= 0 || percent >= cfg.MinMatch {
		return nil
	}
	return fmt.Errorf("%s: %s%% < %s%%: %w", name, schema.FormatPercent(percent), schema.FormatPercent(cfg.MinMatch), ErrBelowMinMatch)
}
