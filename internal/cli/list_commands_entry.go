package evalboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandInfo holds the path and description of a command for display.
type commandInfo struct {
	path        string
	description string
}

// runListCommands prints the command tree in a two-column layout, skipping
// cobra's generated help and completion commands.
func runListCommands(out io.Writer, root *cobra.Command) {
	commandData := collectCommandData(root, "", "")

	width := 0
	for _, data := range commandData {
		width = max(width, len(data.path))
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, data := range commandData {
		fmt.Fprintf(out, "  %s%s%s\n", data.path, strings.Repeat(" ", width-len(data.path)+2), data.description)
	}
}

// collectCommandData walks the command tree depth first and returns a
// flattened slice of path/description pairs.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	fullPath := cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	all := []commandInfo{{path: indent + fullPath, description: cmd.Short}}
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" || sub.Name() == "help" {
			continue
		}
		all = append(all, collectCommandData(sub, fullPath, indent+"  ")...)
	}
	return all
}
