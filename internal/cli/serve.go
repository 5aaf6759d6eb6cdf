// internal/cli/serve.go
package evalboard

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd implements 'serve', which runs the browser dashboard.
var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Serve the browser dashboard",
	Long:        `The 'serve' command starts the web dashboard and forwards re-run and synthetic-generation requests to the evaluation backend.`,
	Annotations: map[string]string{consoleLogAnnotation: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), getConfig())
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on (host:port)")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
