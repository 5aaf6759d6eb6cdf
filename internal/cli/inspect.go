// internal/cli/inspect.go
package evalboard

import (
	"github.com/spf13/cobra"
)

// inspectCmd implements 'inspect', which validates and renders a run report
// without contacting the backend.
var inspectCmd = &cobra.Command{
	Use:   "inspect <report.json>",
	Short: "Validate and display a run report",
	Long:  `The 'inspect' command parses a run report, validates it against the report schema and renders its tests in document order. It makes no network calls.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOutputOptions(cmd)
		if err != nil {
			return err
		}
		return runInspect(cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	addOutputFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}
