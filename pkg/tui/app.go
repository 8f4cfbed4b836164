// Package tui implements the interactive report browser: a file list on
// the left, the selected file's findings on the right.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/report"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	passItemStyle = lipgloss.NewStyle().Foreground(colorGreen)
	failItemStyle = lipgloss.NewStyle().Foreground(colorRed)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	FailedOnly key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous file")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next file")),
	FailedOnly: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle failed only")),
	Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the report browser state.
type Model struct {
	report     *report.Report
	visible    []*lint.Result
	selected   int
	failedOnly bool

	detail viewport.Model
	width  int
	height int
	ready  bool
}

// New builds the browser over a finished report.
func New(rep *report.Report) Model {
	m := Model{report: rep}
	m.applyFilter()
	return m
}

// Run shows the browser until the user quits.
func Run(rep *report.Report) error {
	p := tea.NewProgram(New(rep), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		detailWidth := m.width - m.listWidth() - 6
		if detailWidth < 20 {
			detailWidth = 20
		}
		if !m.ready {
			m.detail = viewport.New(detailWidth, m.height-4)
			m.ready = true
		} else {
			m.detail.Width = detailWidth
			m.detail.Height = m.height - 4
		}
		m.refreshDetail()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
				m.refreshDetail()
			}
		case key.Matches(msg, keys.Down):
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.refreshDetail()
			}
		case key.Matches(msg, keys.FailedOnly):
			m.failedOnly = !m.failedOnly
			m.applyFilter()
			m.refreshDetail()
		default:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "loading report..."
	}

	var list strings.Builder
	list.WriteString(titleStyle.Render("Contracts") + "\n\n")
	for i, res := range m.visible {
		label := filepath.Base(res.File)
		style := passItemStyle
		marker := "✓"
		if !res.Passed {
			style = failItemStyle
			marker = "✗"
		}
		line := fmt.Sprintf("%s %s", marker, label)
		if i == m.selected {
			line = selectedStyle.Render(line)
		} else {
			line = style.Render(line)
		}
		list.WriteString(line + "\n")
	}
	if len(m.visible) == 0 {
		list.WriteString(statusStyle.Render("(no files)"))
	}

	left := paneStyle.Width(m.listWidth()).Render(list.String())
	right := paneStyle.Render(m.detail.View())
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	s := m.report.Summary
	status := statusStyle.Render(fmt.Sprintf(
		" %d files · %d passed · %d failed · f failed-only · q quit",
		s.Total, s.Passed, s.Failed))
	return main + "\n" + status
}

func (m *Model) applyFilter() {
	m.visible = m.visible[:0]
	for _, res := range m.report.Results {
		if m.failedOnly && res.Passed {
			continue
		}
		m.visible = append(m.visible, res)
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	if len(m.visible) == 0 {
		m.detail.SetContent(statusStyle.Render("nothing to show"))
		return
	}
	m.detail.SetContent(renderMarkdown(detailMarkdown(m.visible[m.selected])))
	m.detail.GotoTop()
}

func (m Model) listWidth() int {
	w := 24
	for _, res := range m.report.Results {
		if lw := len(filepath.Base(res.File)) + 4; lw > w {
			w = lw
		}
	}
	return w
}

// detailMarkdown renders one result as markdown for the right pane.
func detailMarkdown(res *lint.Result) string {
	var b strings.Builder
	verdict := "PASS"
	if !res.Passed {
		verdict = "FAIL"
	}
	fmt.Fprintf(&b, "# %s\n\n**%s**, score %d, %d errors, %d warnings\n\n",
		filepath.Base(res.File), verdict, res.Score, res.Errors(), res.Warnings())

	if len(res.Findings) == 0 {
		b.WriteString("No findings.\n")
		return b.String()
	}
	for _, f := range res.Findings {
		fmt.Fprintf(&b, "- `%s` **%s** %s", f.Severity, f.Code, f.Message)
		if f.Path != "" {
			fmt.Fprintf(&b, " (`%s`)", f.Path)
		}
		b.WriteString("\n")
	}
	return b.String()
}
