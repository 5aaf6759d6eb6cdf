// internal/tui/model.go

// Package tui is the terminal dashboard: the configuration form, the action
// keys and the results table, all driven by a dashboard.Orchestrator.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/form"
	"github.com/mwiater/evalboard/internal/logging"
	"github.com/mwiater/evalboard/internal/table"
)

// focusArea identifies which part of the screen receives keys.
type focusArea int

const (
	focusModel focusArea = iota
	focusTemperature
	focusMaxTokens
	focusSystemPrompt
	focusNumTests
	focusMaxThreads
	focusTable
	focusCount
)

// inputFields maps single-line inputs to their form field, in focus order.
var inputFields = map[focusArea]string{
	focusModel:       form.FieldModel,
	focusTemperature: form.FieldTemperature,
	focusMaxTokens:   form.FieldMaxTokens,
	focusNumTests:    form.FieldNumTests,
	focusMaxThreads:  form.FieldMaxThreads,
}

const busyStatus = "A run is already in progress"

// runDoneMsg is sent when a background run started from a key finishes.
type runDoneMsg struct {
	name string
	err  error
}

// tickMsg refreshes the elapsed-time display while a run is in flight.
type tickMsg time.Time

// model is the Bubble Tea model of the terminal dashboard.
type model struct {
	ctx       context.Context
	orch      *dashboard.Orchestrator
	inputs    map[focusArea]*textinput.Model
	prompt    textarea.Model
	spinner   spinner.Model
	expansion *table.Expansion
	synthetic form.Synthetic
	// pathInput is non-nil while the report path prompt is open.
	pathInput *textinput.Model

	focus            focusArea
	selected         int
	status           string
	width, height    int
	requestStartTime time.Time
}

func newInput(placeholder, value string) *textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.SetValue(value)
	return &ti
}

// initialModel builds the dashboard model from the orchestrator's current
// configuration.
func initialModel(ctx context.Context, orch *dashboard.Orchestrator) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	cfg := orch.Config()
	synthetic := form.DefaultSynthetic()

	ta := textarea.New()
	ta.Placeholder = "System prompt..."
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(4)
	ta.SetWidth(60)
	ta.SetValue(cfg.SystemPrompt)

	m := &model{
		ctx:  ctx,
		orch: orch,
		inputs: map[focusArea]*textinput.Model{
			focusModel:       newInput("model name", form.Value(cfg, form.FieldModel)),
			focusTemperature: newInput("0.7", form.Value(cfg, form.FieldTemperature)),
			focusMaxTokens:   newInput("10000", form.Value(cfg, form.FieldMaxTokens)),
			focusNumTests:    newInput("5", strconv.Itoa(synthetic.NumTests)),
			focusMaxThreads:  newInput("5", strconv.Itoa(synthetic.MaxThreads)),
		},
		prompt:    ta,
		spinner:   s,
		expansion: table.NewExpansion(),
		synthetic: synthetic,
		focus:     focusModel,
	}
	m.applyFocus()
	return m
}

// Init starts the spinner.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func waitCmd(name string, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return runDoneMsg{name: name, err: <-done}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles keys, run completion and window changes.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pathInput != nil && msg.String() != "ctrl+c" {
			return m, m.updatePathInput(msg)
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		case "ctrl+s":
			m.orch.Save()
			m.status = "Configuration saved"
			return m, nil
		case "ctrl+r":
			return m, m.startRerun()
		case "ctrl+g":
			return m, m.startGenerate()
		case "ctrl+o":
			m.openPathInput()
			return m, textinput.Blink
		case "esc":
			m.orch.ClearNotice()
			m.status = ""
			return m, nil
		}
		if m.focus == focusTable {
			m.handleTableKey(msg)
			return m, nil
		}
		cmds = append(cmds, m.updateFocused(msg))

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.prompt.SetWidth(min(max(msg.Width-4, 20), 100))
		return m, nil

	case runDoneMsg:
		if msg.err != nil {
			logging.LogEvent("%s failed: %v", msg.name, msg.err)
		}
		m.status = ""
		m.clampSelection()
		return m, nil

	case tickMsg:
		if m.orch.Busy() {
			return m, tickCmd()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, tea.Batch(cmds...)
}

func (m *model) startRerun() tea.Cmd {
	done, err := m.orch.StartRerun(m.ctx)
	if err != nil {
		m.refuse(err)
		return nil
	}
	m.status = ""
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, waitCmd("rerun", done), tickCmd())
}

func (m *model) startGenerate() tea.Cmd {
	done, err := m.orch.StartGenerateSyntheticAndRun(m.ctx, m.synthetic.NumTests, m.synthetic.MaxThreads)
	if err != nil {
		m.refuse(err)
		return nil
	}
	m.status = ""
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, waitCmd("synthetic generation", done), tickCmd())
}

func (m *model) openPathInput() {
	in := newInput("path/to/report.json", "")
	in.CharLimit = 0
	in.Width = 60
	in.Focus()
	m.pathInput = in
	m.status = ""
	for _, other := range m.inputs {
		other.Blur()
	}
	m.prompt.Blur()
}

func (m *model) closePathInput() {
	m.pathInput = nil
	m.applyFocus()
}

// updatePathInput drives the report path prompt: enter loads the file, esc
// closes the prompt.
func (m *model) updatePathInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closePathInput()
		return nil
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return nil
		}
		if err := LoadReport(m.orch, path); err != nil {
			logging.LogEvent("load report: %v", err)
			m.status = err.Error()
			return nil
		}
		m.closePathInput()
		m.syncInputs()
		m.selected = 0
		return nil
	}
	var cmd tea.Cmd
	*m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

// syncInputs reloads the config fields from the orchestrator, which an upload
// may have replaced.
func (m *model) syncInputs() {
	cfg := m.orch.Config()
	for _, area := range []focusArea{focusModel, focusTemperature, focusMaxTokens} {
		m.inputs[area].SetValue(form.Value(cfg, inputFields[area]))
	}
	m.prompt.SetValue(cfg.SystemPrompt)
}

func (m *model) refuse(err error) {
	if errors.Is(err, dashboard.ErrBusy) {
		m.status = busyStatus
		return
	}
	m.status = err.Error()
}

func (m *model) cycleFocus(step int) {
	m.focus = focusArea((int(m.focus) + step + int(focusCount)) % int(focusCount))
	m.applyFocus()
}

func (m *model) applyFocus() {
	for area, in := range m.inputs {
		if area == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	if m.focus == focusSystemPrompt {
		m.prompt.Focus()
	} else {
		m.prompt.Blur()
	}
}

// updateFocused feeds a key to the focused input and pushes the edit into the
// configuration or the synthetic parameters.
func (m *model) updateFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == focusSystemPrompt {
		m.prompt, cmd = m.prompt.Update(msg)
		m.orch.SetConfig(m.orch.Config().WithSystemPrompt(m.prompt.Value()))
		return cmd
	}

	in, ok := m.inputs[m.focus]
	if !ok {
		return nil
	}
	*in, cmd = in.Update(msg)

	field := inputFields[m.focus]
	switch field {
	case form.FieldNumTests:
		m.synthetic.NumTests = form.ParseCount(in.Value(), m.synthetic.NumTests)
	case form.FieldMaxThreads:
		m.synthetic.MaxThreads = form.ParseCount(in.Value(), m.synthetic.MaxThreads)
	default:
		cfg, err := form.Apply(m.orch.Config(), field, in.Value())
		if err == nil {
			m.orch.SetConfig(cfg)
		}
	}
	return cmd
}

func (m *model) handleTableKey(msg tea.KeyMsg) {
	state := m.orch.Snapshot()
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(state.TestResults)-1 {
			m.selected++
		}
	case "enter", " ":
		if m.selected < len(state.TestResults) {
			m.expansion.Toggle(state.Generation, state.TestResults[m.selected].TestID)
		}
	}
}

func (m *model) clampSelection() {
	n := len(m.orch.Snapshot().TestResults)
	if m.selected >= n {
		m.selected = max(n-1, 0)
	}
}
