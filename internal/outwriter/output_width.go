// Package outwriter renders comparison results as tables, CSV, JSON and XML files.
package outwriter

import (
	"os"

	"github.com/huangsam/witdiff/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for item and project names in
// table output based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Status + Type + Match + Label with borders/padding
	baseWidth := 50
	if cfg.Detail {
		baseWidth += 30 // Differing parts
	}
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
