package schema

import (
	"strings"
)

// SplitList splits a comma-separated list, trimming blanks and dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ItemTypesOf returns the distinct item types present in a list, in display order.
func ItemTypesOf(items []ConfigurationItem) []ConfigurationItemType {
	seen := make(map[ConfigurationItemType]bool)
	for _, it := range items {
		seen[it.Type()] = true
	}
	var out []ConfigurationItemType
	for _, t := range AllItemTypes {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// HasItemType reports whether any item in the list has the given type.
func HasItemType(items []ConfigurationItem, itemType ConfigurationItemType) bool {
	for _, it := range items {
		if it.Type() == itemType {
			return true
		}
	}
	return false
}
