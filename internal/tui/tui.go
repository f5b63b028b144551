// Package tui is the interactive screen: an entry row over the todo list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/ui"
)

// Options configure the screen.
type Options struct {
	Logger  *log.Logger
	Watcher *Watcher // nil disables reloading on external writes
}

type screenKeys struct {
	add     key.Binding
	undo    key.Binding
	refresh key.Binding
	submit  key.Binding
	leave   key.Binding
}

func newScreenKeys() screenKeys {
	return screenKeys{
		add:     key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "add")),
		undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		submit:  key.NewBinding(key.WithKeys("enter")),
		leave:   key.NewBinding(key.WithKeys("esc", "tab")),
	}
}

// Model is the Bubble Tea model for the screen.
type Model struct {
	ctx   context.Context
	ctrl  *app.Controller
	log   *log.Logger
	watch *Watcher
	keys  screenKeys

	list list.Model

	// Header entry
	entry   textinput.Model
	editing bool // true while the entry has focus

	status    string
	statusErr bool

	// Undo support (single-level)
	undoItem *model.Item

	width, height int
}

// New builds the screen over a started controller.
func New(ctx context.Context, ctrl *app.Controller, opt Options) Model {
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := list.New(toRows(ctrl.Items()), itemDelegate{keys: newRowKeys()}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	l.DisableQuitKeybindings()
	l.FilterInput.Prompt = "/ "
	// "d" deletes rows, so it cannot also page.
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page"))

	t := ui.Current()
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help

	keys := newScreenKeys()
	quit := key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.add, keys.undo, quit} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{keys.add, keys.undo, keys.refresh, quit} }

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Enter a new item..."
	in.CharLimit = 200

	m := Model{
		ctx:   ctx,
		ctrl:  ctrl,
		log:   logger,
		watch: opt.Watcher,
		keys:  keys,
		list:  l,
		entry: in,
	}
	m.list.Title = m.header()
	return m
}

// Run starts the screen and blocks until the user quits.
func Run(ctx context.Context, ctrl *app.Controller, opt Options) error {
	p := tea.NewProgram(New(ctx, ctrl, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	if m.watch != nil {
		return m.watch.Wait()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case rowEventMsg:
		return m.dispatch(msg)

	case dbChangedMsg:
		m.log.Debug("database changed on disk")
		cmd := m.reload(m.ctrl.Refresh(m.ctx))
		if m.watch == nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.watch.Wait())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEntry(msg)
		}
		if m.list.FilterState() != list.Filtering {
			switch {
			case msg.String() == "q":
				return m, tea.Quit
			case key.Matches(msg, m.keys.add):
				m.editing = true
				m.entry.SetValue("")
				m.status = ""
				return m, m.entry.Focus()
			case key.Matches(msg, m.keys.undo):
				return m.undo()
			case key.Matches(msg, m.keys.refresh):
				return m, m.reload(m.ctrl.Refresh(m.ctx))
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		title := m.entry.Value()
		id, err := m.ctrl.Create(m.ctx, title)
		if errors.Is(err, app.ErrEmptyTitle) {
			m.setError(err)
			return m, nil
		}
		m.entry.SetValue("")
		m.entry.Blur()
		m.editing = false
		cmd := m.reload(err)
		if err == nil {
			m.status = "added"
			m.selectID(id)
		}
		return m, cmd
	case key.Matches(msg, m.keys.leave):
		m.editing = false
		m.entry.SetValue("")
		m.entry.Blur()
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	return m, cmd
}

func (m Model) dispatch(ev rowEventMsg) (tea.Model, tea.Cmd) {
	err := m.ctrl.Dispatch(m.ctx, ev.event, ev.item)
	cmd := m.reload(err)
	if err != nil {
		return m, cmd
	}
	if ev.event == app.EventDelete {
		it := ev.item
		m.undoItem = &it
		m.status = fmt.Sprintf("deleted %q (u to undo)", it.Title)
	}
	return m, cmd
}

func (m Model) undo() (tea.Model, tea.Cmd) {
	if m.undoItem == nil {
		return m, nil
	}
	it := *m.undoItem
	err := m.ctrl.Restore(m.ctx, it)
	cmd := m.reload(err)
	if err == nil {
		m.undoItem = nil
		m.status = "restored"
		m.selectID(it.ID)
	}
	return m, cmd
}

// reload replaces the list with the controller's rows after an operation.
// A failed operation leaves the rows as they were and shows the error.
func (m *Model) reload(opErr error) tea.Cmd {
	if opErr != nil {
		m.log.Error("operation failed", "err", opErr)
		m.setError(opErr)
		return nil
	}
	m.status, m.statusErr = "", false
	idx := m.list.Index()
	cmd := m.list.SetItems(toRows(m.ctrl.Items()))
	if n := len(m.list.Items()); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		m.list.Select(idx)
	}
	m.list.Title = m.header()
	return cmd
}

func (m *Model) selectID(id int64) {
	for i, it := range m.list.Items() {
		if r, isRow := it.(row); isRow && r.ID == id {
			m.list.Select(i)
			return
		}
	}
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) header() string {
	t := ui.Current()
	done, pending := m.ctrl.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}

// frame is the border plus horizontal padding around the whole screen.
const (
	frameW = 4
	frameH = 2
)

func (m *Model) resize() {
	// entry row and status line
	h := m.height - frameH - 2
	if h < 3 {
		h = 3
	}
	w := m.width - frameW
	if w < 10 {
		w = 10
	}
	m.list.SetSize(w, h)
	m.entry.Width = w - lipgloss.Width(addButton()) - 4
}

func addButton() string {
	return ui.Current().Accent.Render("[ Add ]")
}

func (m Model) entryRow() string {
	t := ui.Current()
	in := m.entry.View()
	if !m.editing && m.entry.Value() == "" {
		in = t.Muted.Render("> Enter a new item...  (a)")
	}
	width := m.list.Width()
	gap := width - lipgloss.Width(in) - lipgloss.Width(addButton())
	if gap < 1 {
		gap = 1
	}
	return in + strings.Repeat(" ", gap) + addButton()
}

func (m Model) statusLine() string {
	t := ui.Current()
	switch {
	case m.status == "":
		return ""
	case m.statusErr:
		return t.Error.Render(t.SymFail + " " + m.status)
	default:
		return t.Muted.Render(m.status)
	}
}

func (m Model) View() string {
	t := ui.Current()
	content := m.entryRow() + "\n" + m.list.View() + "\n" + m.statusLine()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(content)
}
