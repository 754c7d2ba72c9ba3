package cmd

import (
	"github.com/huangsam/witdiff/core"
	"github.com/spf13/cobra"
)

// projectsCmd compares every team project in a manifest against every source.
var projectsCmd = &cobra.Command{
	Use:   "projects <manifest.yaml>",
	Short: "Find the closest source configuration for each team project.",
	Long: `Compare every team project listed in a manifest against every source
configuration and report the best match for each project.

The manifest is a YAML file:

  tfs_version: "2013"
  sources:
    - name: Agile
      paths: [templates/Agile]
    - name: Scrum
      paths: [templates/Scrum]
  projects:
    - name: Fabrikam
      paths: [exports/Fabrikam]

Relative paths resolve against the manifest directory. A project whose files
cannot be loaded is reported with a warning while the others complete.

Examples:
  # Summarize which template each project came from
  witdiff projects manifest.yaml

  # Keep every source comparison as JSON
  witdiff projects manifest.yaml --detail --output json --output-file projects.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot compare team projects", core.ExecuteProjects)
	},
}
