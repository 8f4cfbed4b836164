package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kvarta-studio/kontra/pkg/lint"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Render writes a colored terminal view of the report: one row per file
// and a boxed rollup. Column widths account for wide runes since module
// names carry Cyrillic text.
func (r *Report) Render(w io.Writer, verbose bool) error {
	nameWidth := len("FILE")
	for _, res := range r.Results {
		if fw := runewidth.StringWidth(filepath.Base(res.File)); fw > nameWidth {
			nameWidth = fw
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad("FILE", nameWidth)+"  VERDICT  SCORE  E  W") + "\n")
	for _, res := range r.Results {
		verdict := passStyle.Render("pass")
		if !res.Passed {
			verdict = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&b, "%s  %s     %s  %d  %d\n",
			pad(filepath.Base(res.File), nameWidth), verdict,
			pad(fmt.Sprintf("%3d", res.Score), 5), res.Errors(), res.Warnings())

		if verbose || !res.Passed {
			for _, f := range res.Findings {
				b.WriteString("  " + renderFinding(f) + "\n")
			}
		}
	}

	rollup := fmt.Sprintf("%d files  %s passed  %s failed  %d errors  %d warnings",
		r.Summary.Total,
		passStyle.Render(fmt.Sprintf("%d", r.Summary.Passed)),
		failStyle.Render(fmt.Sprintf("%d", r.Summary.Failed)),
		r.Summary.Errors, r.Summary.Warnings)
	b.WriteString(summaryStyle.Render(rollup) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderFinding(f lint.Finding) string {
	code := failStyle.Render(f.Code)
	if f.Severity == lint.SeverityWarning {
		code = warnStyle.Render(f.Code)
	}
	line := code + " " + f.Message
	if f.Path != "" {
		line += " " + dimStyle.Render(f.Path)
	}
	return line
}

// pad right-pads s to width display cells.
func pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
