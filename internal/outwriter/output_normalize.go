package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteNormalizedItem outputs the canonical form of one item.
func WriteNormalizedItem(item schema.NormalizedItem, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, item)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVNormalizedItem(w, item, createFormatter(cfg.Precision))
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNormalizedText(w, item, cfg)
		}, "Wrote XML")
	}
	return nil
}

// writeNormalizedText writes the indented XML, followed by a part table when parts were requested.
func writeNormalizedText(w io.Writer, item schema.NormalizedItem, cfg *contract.Config) error {
	if _, err := io.WriteString(w, indentXML(item.XML)); err != nil {
		return err
	}
	if len(item.Parts) == 0 {
		return nil
	}

	fmtPercent := createFormatter(cfg.Precision)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Part", "Bytes", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, len(item.Parts))
	for i, p := range item.Parts {
		data[i] = []string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(len(p.XML)), fmtPercent(p.RelativeSize)}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s normalized for %s\n", item.ItemType, item.ItemName, item.TfsVersion)
	return err
}

// writeCSVNormalizedItem writes one record per part, or a single record for the whole item.
func writeCSVNormalizedItem(w io.Writer, item schema.NormalizedItem, fmtPercent func(float64) string) error {
	header := []string{"item_type", "item_name", "tfs_version", "part", "relative_size", "xml"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if len(item.Parts) == 0 {
			return cw.Write([]string{string(item.ItemType), item.ItemName, item.TfsVersion, "", fmtPercent(1), item.XML})
		}
		for _, p := range item.Parts {
			if err := cw.Write([]string{string(item.ItemType), item.ItemName, item.TfsVersion, p.Name, fmtPercent(p.RelativeSize), p.XML}); err != nil {
				return err
			}
		}
		return nil
	})
}

// indentXML re-indents compact XML for reading. Input that does not parse is returned as is.
func indentXML(s string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil || doc.Root() == nil {
		return s + "\n"
	}
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return s + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}
