// internal/tui/run.go

package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/logging"
	"github.com/mwiater/evalboard/internal/table"
)

// LoadReport uploads a run report file into the orchestrator. A parse failure
// leaves a notice in the dashboard state and is not returned as an error.
func LoadReport(orch *dashboard.Orchestrator, path string) error {
	if err := table.CheckUploadName(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if err := orch.UploadReport(data); err != nil {
		logging.LogEvent("report %s rejected: %v", path, err)
	}
	return nil
}

// Run starts the terminal dashboard and blocks until the user quits or ctx is
// cancelled. reportPath, when set, is uploaded before the first frame.
func Run(ctx context.Context, orch *dashboard.Orchestrator, reportPath string) error {
	if reportPath != "" {
		if err := LoadReport(orch, reportPath); err != nil {
			return err
		}
	}

	m := initialModel(ctx, orch)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal dashboard: %w", err)
	}
	return nil
}
