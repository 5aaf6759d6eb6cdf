// internal/tui/view.go

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/form"
	"github.com/mwiater/evalboard/internal/table"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Bold(true).Width(18)
	focusedLabel  = labelStyle.Foreground(lipgloss.Color("205"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("28"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

const (
	idWidth     = 8
	typeWidth   = 12
	promptWidth = 28
	scoreWidth  = 16
	minTextCol  = 30
)

// View renders the dashboard.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	state := m.orch.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Evaluation Dashboard") + "\n\n")
	b.WriteString(m.formView())
	b.WriteString("\n")
	b.WriteString(m.actionsView(state))
	b.WriteString("\n")
	if line := noticeLine(state.Notice); line != "" {
		b.WriteString(line + "\n")
	}
	if m.pathInput != nil {
		b.WriteString(m.pathView() + "\n")
	}
	if m.status != "" {
		b.WriteString(helpStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.tableView(table.Build(state.TestResults, state.Generation, m.expansion)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab focus | up/down select | enter expand | ctrl+o open report | ctrl+r re-run | ctrl+g generate | ctrl+s save | esc dismiss | ctrl+c quit"))
	return b.String()
}

func (m *model) pathView() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, focusedLabel.Render("Report File"), m.pathInput.View()) + "\n" +
		helpStyle.Render("enter load | esc cancel")
}

func (m *model) label(area focusArea, field string) string {
	if m.focus == area {
		return focusedLabel.Render(form.Label(field))
	}
	return labelStyle.Render(form.Label(field))
}

func (m *model) formView() string {
	var b strings.Builder
	for _, area := range []focusArea{focusModel, focusTemperature, focusMaxTokens} {
		field := inputFields[area]
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.label(area, field), m.inputs[area].View()) + "\n")
	}
	b.WriteString(m.label(focusSystemPrompt, form.FieldSystemPrompt) + "\n")
	b.WriteString(m.prompt.View() + "\n")
	for _, area := range []focusArea{focusNumTests, focusMaxThreads} {
		field := inputFields[area]
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.label(area, field), m.inputs[area].View()) + "\n")
	}
	return b.String()
}

func (m *model) actionsView(state dashboard.State) string {
	elapsed := fmt.Sprintf("%.1fs", time.Since(m.requestStartTime).Seconds())
	rerun := "[ctrl+r] Re-run Evaluations"
	if state.IsLoading {
		rerun = fmt.Sprintf("%s Running... %s", m.spinner.View(), elapsed)
	}
	generate := "[ctrl+g] Generate & Run Synthetic Tests"
	if state.IsSyntheticLoading {
		generate = fmt.Sprintf("%s Generating... %s", m.spinner.View(), elapsed)
	}
	if state.Busy() {
		// Neither run can start until the current one finishes.
		if !state.IsLoading {
			rerun = helpStyle.Render(rerun)
		}
		if !state.IsSyntheticLoading {
			generate = helpStyle.Render(generate)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, "[ctrl+s] Save Configuration   ", rerun, "   ", generate)
}

func noticeLine(n *dashboard.Notice) string {
	if n == nil {
		return ""
	}
	if n.Level == dashboard.NoticeError {
		return errorStyle.Render(n.Message)
	}
	return infoStyle.Render(n.Message)
}

// transcriptWidth gives the transcript column whatever the fixed columns
// leave over.
func (m *model) transcriptWidth(scores int) int {
	w := m.width - idWidth - typeWidth - promptWidth - scores*scoreWidth
	if w < minTextCol {
		return minTextCol
	}
	return w
}

func (m *model) tableView(v table.View) string {
	tw := m.transcriptWidth(len(v.Evaluators))
	widths := []int{idWidth, typeWidth, promptWidth, tw}

	headers := make([]string, 0, len(v.Headers))
	for i, h := range v.Headers {
		w := scoreWidth
		if i < len(widths) {
			w = widths[i]
		}
		headers = append(headers, headerStyle.Width(w).Render(h))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...) + "\n")
	if v.Empty() {
		total := 0
		for _, w := range widths {
			total += w
		}
		b.WriteString(lipgloss.NewStyle().Width(total).Align(lipgloss.Center).Render(table.EmptyMessage) + "\n")
		return b.String()
	}

	for i, row := range v.Rows {
		transcript := row.Transcript
		if row.ShowHint {
			transcript += "\n" + helpStyle.Render("[enter] expand")
		}
		cells := []string{
			lipgloss.NewStyle().Width(idWidth).Render(fmt.Sprintf("%d", row.TestID)),
			lipgloss.NewStyle().Width(typeWidth).Render(row.Type),
			lipgloss.NewStyle().Width(promptWidth).Render(row.CustomerPrompt),
			lipgloss.NewStyle().Width(tw).Render(transcript),
		}
		for _, sc := range row.Scores {
			cells = append(cells, scoreStyle(sc).Width(scoreWidth).Render(sc.Text))
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		if m.focus == focusTable && i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func scoreStyle(sc table.Score) lipgloss.Style {
	switch {
	case !sc.Present:
		return missingStyle
	case sc.Passed:
		return passStyle
	default:
		return failStyle
	}
}
