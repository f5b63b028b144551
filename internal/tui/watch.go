package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// dbChangedMsg tells the screen the database file changed on disk.
type dbChangedMsg struct{}

// Watcher reports writes to a database file, including its journal.
type Watcher struct {
	w    *fsnotify.Watcher
	base string
}

// NewWatcher watches the directory holding path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{w: w, base: filepath.Base(abs)}, nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.base)
}

// Wait blocks until the database changes, then drains whatever else is
// already queued so a burst of writes yields a single message. It returns
// nil once the watcher is closed.
func (w *Watcher) Wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.w.Events:
				if !ok {
					return nil
				}
				if !w.relevant(ev) {
					continue
				}
				w.drain()
				return dbChangedMsg{}
			case _, ok := <-w.w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (w *Watcher) drain() {
	for {
		select {
		case _, ok := <-w.w.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
