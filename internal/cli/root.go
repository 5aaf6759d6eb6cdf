// internal/cli/root.go
package evalboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/logging"
)

// consoleLogAnnotation marks commands whose trace is also written to stdout.
// Every other command owns stdout for its output and logs to the file only.
const consoleLogAnnotation = "evalboard/console-log"

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:          "evalboard",
	Short:        "evalboard: review and re-run model evaluation reports",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		loaded, err := ensureConfigLoaded(cmd)
		if err != nil {
			return err
		}

		// 2) Materialize the merged configuration (flags > config > defaults).
		cfg := appconfig.Default()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		if loaded {
			cfg.ConfigPath = viper.ConfigFileUsed()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		currentConfig = &cfg

		// 3) Route the trace.
		logging.SetDebug(cfg.Debug)
		initLogging := logging.InitFileOnly
		if cmd.Annotations[consoleLogAnnotation] == "true" {
			initLogging = logging.Init
		}
		if err := initLogging(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logging.LogDebug("configuration: %+v", cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, which aborts in-flight backend calls and stops the server.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (JSON or YAML)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("backendURL", "", "base URL of the evaluation backend")
	rootCmd.PersistentFlags().Int("timeout", 0, "backend request timeout in seconds")
	rootCmd.PersistentFlags().String("logFile", "", "path of the log file")

	// Bind flags to Viper keys (flags override config)
	for _, name := range []string{"debug", "backendURL", "timeout", "logFile"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func setDefaults() {
	def := appconfig.Default()
	viper.SetDefault("backendURL", def.BackendURL)
	viper.SetDefault("listen", def.ListenAddr)
	viper.SetDefault("timeout", def.TimeoutSeconds)
	viper.SetDefault("debug", def.Debug)
	viper.SetDefault("logFile", def.LogFile)
	viper.SetDefault("allowedOrigins", def.AllowedOrigins)
	viper.SetDefault("maxUploadBytes", def.MaxUploadBytes)
}

// ensureConfigLoaded reads the config file and sets defaults. A missing file
// at the default path is not an error; a missing explicit --config is.
func ensureConfigLoaded(cmd *cobra.Command) (bool, error) {
	setDefaults()

	if cfgFile == "" {
		return false, nil
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// getConfig returns the loaded application configuration.
func getConfig() *appconfig.Config {
	if currentConfig == nil {
		cfg := appconfig.Default()
		return &cfg
	}
	return currentConfig
}
