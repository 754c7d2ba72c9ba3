package cmd

import (
	"github.com/huangsam/witdiff/core"
	"github.com/spf13/cobra"
)

// normalizeCmd prints the normalized form of one configuration file.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <file.xml>",
	Short: "Print the normalized form of a configuration file.",
	Long: `Normalize a work item type, categories, or process configuration file
and print the result.

Normalization sorts unordered collections, removes rules that the server adds
by default for the selected TFS version, and canonicalizes whitespace. Two
files that normalize to the same text are considered equal.

With --parts, the document is split into the same parts the comparison uses
(for example FIELDS, WORKFLOW, and FORM of a work item type).

Examples:
  # Normalize a work item type
  witdiff normalize exports/Fabrikam/Bug.xml

  # Inspect the parts as JSON
  witdiff normalize exports/Fabrikam/Bug.xml --parts --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot normalize file", core.ExecuteNormalize)
	},
}
