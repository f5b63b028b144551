package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/idilsaglam/todo/internal/model"
)

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or fallback when it has none.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// ProgressBar renders a Unicode progress bar with counts.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines with the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Checkbox renders the checkbox glyph for finished.
func Checkbox(finished bool) string {
	t := Current()
	if finished {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}

// ItemLine renders one row for non-interactive output: id, checkbox, title.
func ItemLine(it model.Item, idWidth int) string {
	t := Current()
	title := it.Title
	if it.Finished {
		title = t.Done.Render(title)
	}
	id := t.Muted.Render(fmt.Sprintf("%*d", idWidth, it.ID))
	return fmt.Sprintf("%s %s %s", id, Checkbox(it.Finished), title)
}

// ListPanel renders items as a framed list with a summary header built
// from the done and pending counts. With group set, pending rows come first
// and finished rows follow under their own heading.
func ListPanel(items []model.Item, done, pending int, group bool, width int) string {
	t := Current()

	idWidth := 1
	for _, it := range items {
		if n := len(fmt.Sprint(it.ID)); n > idWidth {
			idWidth = n
		}
	}

	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
	barWidth := width - 16
	if barWidth > 40 {
		barWidth = 40
	}
	lines := []string{header, t.Muted.Render(ProgressBar(done, done+pending, barWidth)), ""}

	if len(items) == 0 {
		lines = append(lines, t.Muted.Render("nothing to do"))
		return Panel(lines)
	}

	if !group {
		for _, it := range items {
			lines = append(lines, ItemLine(it, idWidth))
		}
		return Panel(lines)
	}

	lines = append(lines, t.Pending.Render("Pending"))
	for _, it := range items {
		if !it.Finished {
			lines = append(lines, ItemLine(it, idWidth))
		}
	}
	lines = append(lines, "", t.Success.Render("Done"))
	for _, it := range items {
		if it.Finished {
			lines = append(lines, ItemLine(it, idWidth))
		}
	}
	return Panel(lines)
}
