package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateName fuzzes TruncateName with random names and widths.
func FuzzTruncateName(f *testing.F) {
	seeds := []struct {
		name  string
		width int
	}{
		{"Bug", 10},
		{"Product Backlog Item", 10},
		{"Tâche de développement", 8},
		{"", 0},
		{"Task", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.name, seed.width)
	}

	f.Fuzz(func(t *testing.T, name string, width int) {
		got := TruncateName(name, width)
		if width > 3 && utf8.RuneCountInString(got) > width {
			t.Fatalf("TruncateName(%q, %d) = %q exceeds width", name, width, got)
		}
	})
}
