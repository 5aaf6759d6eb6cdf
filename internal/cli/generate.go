// internal/cli/generate.go
package evalboard

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/evalboard/internal/form"
)

// generateCmd implements 'generate', which asks the backend for synthetic
// scenarios and evaluates them.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and run synthetic tests",
	Long:  `The 'generate' command asks the evaluation backend for synthetic customer scenarios for the given system prompt, turns them into tests and evaluates them. With --report, the report's evaluators and service configuration are used as the starting point.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOutputOptions(cmd)
		if err != nil {
			return err
		}
		report, _ := cmd.Flags().GetString("report")
		numTests, _ := cmd.Flags().GetInt("numTests")
		maxThreads, _ := cmd.Flags().GetInt("maxThreads")
		synthetic := form.Synthetic{NumTests: numTests, MaxThreads: maxThreads}
		return runGenerate(cmd.Context(), cmd.OutOrStdout(), getConfig(), report, collectOverrides(cmd), synthetic, opts)
	},
}

func init() {
	addOverrideFlags(generateCmd)
	addOutputFlags(generateCmd)
	generateCmd.Flags().Int("numTests", form.DefaultNumTests, "number of synthetic tests")
	generateCmd.Flags().Int("maxThreads", form.DefaultMaxThreads, "generation concurrency on the backend")
	generateCmd.Flags().String("report", "", "run report (.json) providing evaluators and configuration")
	_ = generateCmd.MarkFlagRequired("systemPrompt")
	rootCmd.AddCommand(generateCmd)
}
