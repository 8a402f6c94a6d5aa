package live

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = dimStyle
)

// maxRows bounds the visible result list.
const maxRows = 15

type changedMsg struct{}

// Model is the bubbletea front end of an Engine. It only renders state and
// forwards keys; installation happens after the program exits.
type Model struct {
	engine    *Engine
	title     string
	input     textinput.Model
	spin      spinner.Model
	state     State
	cursor    int
	confirmed []string
	quit      bool
}

// NewModel creates the TUI. A non-empty seed is entered as the first query.
func NewModel(e *Engine, title, seed string) Model {
	in := textinput.New()
	in.Placeholder = "type to search"
	in.Prompt = "❯ "
	in.Width = 50
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = focusStyle

	m := Model{engine: e, title: title, input: in, spin: sp}
	if seed != "" {
		m.input.SetValue(seed)
		m.input.CursorEnd()
		e.SetQuery(seed)
	}
	m.state = e.Snapshot()
	return m
}

// Run shows the TUI until the user confirms or quits, and returns the
// confirmed names (nil when the user quit). Searches still running when
// the program exits are cancelled and waited for.
func Run(ctx context.Context, e *Engine, title, seed string) ([]string, error) {
	p := tea.NewProgram(NewModel(e, title, seed), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		e.Quit()
		e.Wait()
		return nil, err
	}
	m := final.(Model)
	if !m.quit && m.confirmed == nil {
		e.Quit()
	}
	e.Wait()
	return m.confirmed, nil
}

// Confirmed returns the names confirmed by the user.
func (m Model) Confirmed() []string { return m.confirmed }

func waitChange(e *Engine) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-e.Events(); !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitChange(m.engine))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case changedMsg:
		m.refresh()
		return m, waitChange(m.engine)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.engine.Quit()
		m.quit = true
		return m, tea.Quit
	case "enter":
		m.refresh()
		if len(m.state.Selected) == 0 && len(m.state.Records) == 0 {
			return m, nil
		}
		fallback := ""
		if m.cursor < len(m.state.Records) {
			fallback = m.state.Records[m.cursor].Name
		}
		m.confirmed = m.engine.Confirm(fallback)
		if m.confirmed == nil {
			m.confirmed = []string{}
		}
		return m, tea.Quit
	case "up", "ctrl+k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+j":
		if m.cursor < len(m.state.Records)-1 {
			m.cursor++
		}
		return m, nil
	case "tab", " ":
		if m.cursor < len(m.state.Records) {
			m.engine.Toggle(m.state.Records[m.cursor].Name)
			m.refresh()
			if m.cursor < len(m.state.Records)-1 {
				m.cursor++
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.engine.SetQuery(m.input.Value())
	m.refresh()
	return m, cmd
}

func (m *Model) refresh() {
	m.state = m.engine.Snapshot()
	if m.cursor >= len(m.state.Records) {
		m.cursor = max(0, len(m.state.Records)-1)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	b.WriteString("  " + m.input.View() + "\n\n")

	switch {
	case m.state.Phase == Typing || m.state.Phase == Searching:
		b.WriteString("  " + m.spin.View() + dimStyle.Render(" searching...") + "\n")
	case m.state.Err != nil:
		b.WriteString("  " + errorStyle.Render(m.state.Err.Error()) + "\n")
	case m.state.Phase == Displaying && len(m.state.Records) == 0:
		b.WriteString("  " + dimStyle.Render("no results") + "\n")
	case m.state.Phase == Idle || m.state.Phase == Cancelled:
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("type at least %d characters", m.engine.minQuery)) + "\n")
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	for i := start; i < len(m.state.Records) && i < start+maxRows; i++ {
		r := m.state.Records[i]
		cursor := "  "
		if i == m.cursor {
			cursor = focusStyle.Render("> ")
		}
		check := "[ ]"
		nameStyle := normalStyle
		if m.state.IsSelected(r.Name) {
			check = selectedStyle.Render("[✓]")
			nameStyle = selectedStyle
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, nameStyle.Render(r.Name))
		if r.Version != "" {
			line += " " + dimStyle.Render(r.Version)
		}
		if r.Description != "" {
			line += "  " + dimStyle.Render(truncate(r.Description, 60))
		}
		b.WriteString(line + "\n")
	}

	if n := len(m.state.Selected); n > 0 {
		b.WriteString("\n  " + selectedStyle.Render(fmt.Sprintf("%d selected", n)) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ move · tab/space select · enter install · esc quit") + "\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
