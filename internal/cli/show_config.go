// internal/cli/show_config.go
package evalboard

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/evalboard/internal/appconfig"
)

// showConfigCmd implements 'show config', which prints the merged
// configuration so file and flag overrides can be checked.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by flags accordingly.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		brief, _ := cmd.Flags().GetBool("brief")
		cfg := getConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, *cfg, !brief)
	},
}

func init() {
	showConfigCmd.Flags().Bool("brief", false, "print the summary only, without the full dump")
	showCmd.AddCommand(showConfigCmd)
}
