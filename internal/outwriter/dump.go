package outwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/witdiff/schema"
)

// DumpNormalizedPairs writes the normalized XML of every item that is not equal
// into dir, as <Type>_<Name>.source.xml and <Type>_<Name>.target.xml. Names
// that reduce to the same stem get a numeric suffix. It returns the number of
// items written.
func DumpNormalizedPairs(dir string, result schema.ConfigurationComparisonResult) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create dump directory: %w", err)
	}

	n := 0
	used := make(map[string]bool)
	for _, it := range result.Items {
		if it.Status == schema.AreEqual {
			continue
		}
		base := uniqueBase(used, DumpFileBase(it.ItemType, it.ItemName))
		if it.NormalizedSourceXML != "" {
			if err := os.WriteFile(filepath.Join(dir, base+".source.xml"), []byte(indentXML(it.NormalizedSourceXML)), 0o644); err != nil {
				return n, err
			}
		}
		if it.NormalizedTargetXML != "" {
			if err := os.WriteFile(filepath.Join(dir, base+".target.xml"), []byte(indentXML(it.NormalizedTargetXML)), 0o644); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

// DumpFileBase builds a file name stem that is safe on every platform.
func DumpFileBase(itemType schema.ConfigurationItemType, name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	return string(itemType) + "_" + safe
}

// uniqueBase returns stem, or stem_2, stem_3 and so on when stem is taken.
// Stems are compared case-insensitively for case-insensitive file systems.
func uniqueBase(used map[string]bool, stem string) string {
	base := stem
	for i := 2; used[strings.ToLower(base)]; i++ {
		base = fmt.Sprintf("%s_%d", stem, i)
	}
	used[strings.ToLower(base)] = true
	return base
}
