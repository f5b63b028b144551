package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/ui"
)

// row adapts model.Item to bubbles/list.Item.
type row struct {
	model.Item
}

func (r row) FilterValue() string { return r.Title }

func toRows(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, row{Item: it})
	}
	return out
}

// rowEventMsg is what a row sends back to the screen.
type rowEventMsg struct {
	event app.Event
	item  model.Item
}

func emit(ev app.Event, it model.Item) tea.Cmd {
	return func() tea.Msg { return rowEventMsg{event: ev, item: it} }
}

type rowKeys struct {
	toggle key.Binding
	delete key.Binding
}

func newRowKeys() rowKeys {
	return rowKeys{
		toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		delete: key.NewBinding(key.WithKeys("d", "delete", "backspace"), key.WithHelp("d", "delete")),
	}
}

// itemDelegate renders one row per item: checkbox, title, delete control.
// The row is rebuilt from the item on every Render call.
type itemDelegate struct {
	keys rowKeys
}

func (d itemDelegate) Height() int { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

// Update turns key presses on the selected row into row events.
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	km, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return nil
	}
	r, isRow := m.SelectedItem().(row)
	if !isRow {
		return nil
	}
	switch {
	case key.Matches(km, d.keys.toggle):
		it := r.Item
		it.Finished = !it.Finished
		return emit(app.EventUpdate, it)
	case key.Matches(km, d.keys.delete):
		return emit(app.EventDelete, r.Item)
	}
	return nil
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, isRow := item.(row)
	if !isRow {
		return
	}
	fmt.Fprintln(w, renderRow(r.Item, index == m.Index(), m.Width()))
}

func renderRow(it model.Item, selected bool, width int) string {
	t := ui.Current()

	prefix := "  "
	if selected {
		prefix = t.Selected.Render(">") + " "
	}
	title := it.Title
	if it.Finished {
		title = t.Done.Render(title)
	}
	left := prefix + ui.Checkbox(it.Finished) + " " + title
	del := t.Delete.Render(t.SymDel)

	gap := width - lipgloss.Width(left) - lipgloss.Width(del)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + del
}

func (d itemDelegate) ShortHelp() []key.Binding {
	return []key.Binding{d.keys.toggle, d.keys.delete}
}

func (d itemDelegate) FullHelp() [][]key.Binding {
	return [][]key.Binding{d.ShortHelp()}
}
