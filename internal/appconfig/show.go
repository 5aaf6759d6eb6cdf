package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary. When verbose is set the
// full structure is dumped as well.
func ShowConfig(out io.Writer, file string, cfg Config, verbose bool) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Backend URL:     %s\n", cfg.BackendBaseURL())
	fmt.Fprintf(out, "  Listen:          %s\n", cfg.Listen())
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Fprintf(out, "  Max Upload:      %d bytes\n", cfg.UploadLimit())

	if verbose {
		fmt.Fprintln(out)
		coloring := pp.ColoringEnabled
		pp.ColoringEnabled = false
		_, _ = pp.Fprintln(out, cfg)
		pp.ColoringEnabled = coloring
	}
}
