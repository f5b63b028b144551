package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func waitMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher")
		return nil
	}
}

func TestWatcher_ReportsWritesToDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path+"-journal", []byte("j"), 0o644))

	require.Equal(t, dbChangedMsg{}, waitMsg(t, w.Wait()))
}

func TestWatcher_CloseEndsWait(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")

	w, err := NewWatcher(path)
	require.NoError(t, err)

	cmd := w.Wait()
	require.NoError(t, w.Close())
	require.Nil(t, waitMsg(t, cmd))
}
