// internal/cli/rerun.go
package evalboard

import (
	"github.com/spf13/cobra"
)

// rerunCmd implements 'rerun', which re-evaluates a run report against the
// backend with an optionally edited configuration.
var rerunCmd = &cobra.Command{
	Use:   "rerun <report.json>",
	Short: "Re-run the evaluations of a run report",
	Long:  `The 'rerun' command loads a run report, applies any configuration flags to the report's service configuration and re-runs every test against the evaluation backend.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOutputOptions(cmd)
		if err != nil {
			return err
		}
		return runRerun(cmd.Context(), cmd.OutOrStdout(), getConfig(), args[0], collectOverrides(cmd), opts)
	},
}

func init() {
	addOverrideFlags(rerunCmd)
	addOutputFlags(rerunCmd)
	rootCmd.AddCommand(rerunCmd)
}
