package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteProjectResults outputs team project roll-ups, dispatching based on the output format configured.
func WriteProjectResults(results []schema.TeamProjectComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtPercent := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForProjects(w, results, cfg.Detail)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForProjects(w, results, fmtPercent)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectsTable(w, results, cfg, fmtPercent, duration)
		}, "Wrote table")
	}
	return nil
}

// writeProjectsTable writes one row per team project with its closest source.
func writeProjectsTable(writer io.Writer, results []schema.TeamProjectComparisonResult, cfg *contract.Config, fmtPercent func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"#", "Team Project", "Best Source", "Match", "Label"}
	if cfg.Detail {
		headers = append(headers, "All Sources")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	label, _ := labelFuncs(cfg)
	warn := warnFunc(cfg)
	nameWidth := GetMaxTableNameWidth(cfg)
	warnings := 0
	data := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{strconv.Itoa(i + 1), contract.TruncateName(r.TeamProject, nameWidth)}
		switch {
		case r.HasWarning():
			warnings++
			row = append(row, warn("warning"), "-", contract.TruncateName(r.Warning, nameWidth))
		case r.BestMatch == nil:
			row = append(row, "-", "-", "-")
		default:
			row = append(row,
				contract.TruncateName(r.BestMatch.Source.Name, nameWidth),
				fmtPercent(r.BestMatch.PercentMatch),
				label(r.BestMatch.PercentMatch),
			)
		}
		if cfg.Detail {
			row = append(row, r.Summary)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Compared %d team projects (%d with warnings)\n", len(results), warnings); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Comparison completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// jsonProjectResult is the compact form of a roll-up used without detail.
type jsonProjectResult struct {
	schema.ProjectRow
	Sources []jsonSourceMatch `json:"sources,omitempty"`
}

type jsonSourceMatch struct {
	Source       string              `json:"source"`
	PercentMatch float64             `json:"percent_match"`
	Counts       schema.StatusCounts `json:"counts"`
}

// writeJSONResultsForProjects writes the full roll-ups in detail mode, or one
// compact record per project otherwise.
func writeJSONResultsForProjects(w io.Writer, results []schema.TeamProjectComparisonResult, detail bool) error {
	if detail {
		return writeJSON(w, results)
	}
	rows := schema.FlattenProjects(results)
	output := make([]jsonProjectResult, len(rows))
	for i, row := range rows {
		output[i] = jsonProjectResult{ProjectRow: row}
		for _, res := range results[i].Results {
			output[i].Sources = append(output[i].Sources, jsonSourceMatch{
				Source:       res.Source.Name,
				PercentMatch: res.PercentMatch,
				Counts:       res.Counts(),
			})
		}
	}
	return writeJSON(w, output)
}

// writeCSVResultsForProjects writes one record per project and source pair.
func writeCSVResultsForProjects(w io.Writer, results []schema.TeamProjectComparisonResult, fmtPercent func(float64) string) error {
	header := []string{
		"team_project",
		"source",
		"percent_match",
		"label",
		"best_match",
		"equal",
		"different",
		"only_in_source",
		"only_in_target",
		"warning",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			if r.HasWarning() {
				if err := cw.Write([]string{r.TeamProject, "", "", "", "", "", "", "", "", r.Warning}); err != nil {
					return err
				}
				continue
			}
			for i, res := range r.Results {
				counts := res.Counts()
				best := r.BestMatch == &r.Results[i]
				rec := []string{
					r.TeamProject,
					res.Source.Name,
					fmtPercent(res.PercentMatch),
					schema.GetPlainLabel(res.PercentMatch),
					strconv.FormatBool(best),
					strconv.Itoa(counts.Equal),
					strconv.Itoa(counts.Different),
					strconv.Itoa(counts.OnlyInSource),
					strconv.Itoa(counts.OnlyInTarget),
					"",
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
