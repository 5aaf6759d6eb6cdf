// internal/cli/tui.go
package evalboard

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/evalboard/internal/backend"
	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/tui"
)

var startTUI = tui.Run

// tuiCmd implements 'tui', the terminal dashboard.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal dashboard",
	Long:  `The 'tui' command starts the interactive terminal dashboard. With --report, the given run report is loaded first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, _ := cmd.Flags().GetString("report")
		orch := dashboard.New(backend.New(getConfig()))
		return startTUI(cmd.Context(), orch, report)
	},
}

func init() {
	tuiCmd.Flags().String("report", "", "run report (.json) to load at startup")
	rootCmd.AddCommand(tuiCmd)
}
