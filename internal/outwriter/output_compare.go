package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// jsonComparisonResult adds the derived label and counts to a comparison result.
type jsonComparisonResult struct {
	schema.ConfigurationComparisonResult
	Label  string              `json:"label"`
	Counts schema.StatusCounts `json:"counts"`
}

// WriteComparisonResult outputs a comparison result, dispatching based on the output format configured.
func WriteComparisonResult(result schema.ConfigurationComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtPercent := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForComparison(w, result, cfg.Detail)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForComparison(w, result, fmtPercent)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, fmtPercent, duration)
		}, "Wrote table")
	}
	return nil
}

// writeComparisonTable writes one row per item followed by the overall verdict.
func writeComparisonTable(writer io.Writer, result schema.ConfigurationComparisonResult, cfg *contract.Config, fmtPercent func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"#", "Status", "Type", "Name", "Match", "Label"}
	if cfg.Detail {
		headers = append(headers, "Differing Parts")
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	label, status := labelFuncs(cfg)
	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(result.Items))
	for i, it := range result.Items {
		row := []string{
			strconv.Itoa(i + 1),
			status(it.Status),
			string(it.ItemType),
			contract.TruncateName(it.ItemName, nameWidth),
			fmtPercent(it.PercentMatch),
			label(it.PercentMatch),
		}
		if cfg.Detail {
			row = append(row, strings.Join(it.DifferentParts(), ", "))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	counts := result.Counts()
	if _, err := fmt.Fprintf(writer, "Source: %s (%d items), Target: %s (%d items)\n",
		result.Source.Name, result.Source.ItemCount, result.Target.Name, result.Target.ItemCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Equal: %d, Different: %d, Only in source: %d, Only in target: %d\n",
		counts.Equal, counts.Different, counts.OnlyInSource, counts.OnlyInTarget); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Overall match: %s (%s)\n", fmtPercent(result.PercentMatch), label(result.PercentMatch)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Comparison completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeJSONResultsForComparison writes the result with its label and counts. The
// normalized XML of each item is only kept in detail mode.
func writeJSONResultsForComparison(w io.Writer, result schema.ConfigurationComparisonResult, detail bool) error {
	if !detail {
		result = result.WithoutXML()
	}
	return writeJSON(w, jsonComparisonResult{
		ConfigurationComparisonResult: result,
		Label:                         schema.GetPlainLabel(result.PercentMatch),
		Counts:                        result.Counts(),
	})
}

// writeCSVResultsForComparison writes one record per item.
func writeCSVResultsForComparison(w io.Writer, result schema.ConfigurationComparisonResult, fmtPercent func(float64) string) error {
	header := []string{
		"source",
		"target",
		"item_type",
		"item_name",
		"status",
		"percent_match",
		"label",
		"different_parts",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, it := range result.Items {
			rec := []string{
				result.Source.Name,
				result.Target.Name,
				string(it.ItemType),
				it.ItemName,
				string(it.Status),
				fmtPercent(it.PercentMatch),
				schema.GetPlainLabel(it.PercentMatch),
				strings.Join(it.DifferentParts(), "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
