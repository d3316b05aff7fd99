package editorstub

import (
	"path/filepath"
	"testing"

	"github.com/berrym/lush/internal/history"
)

func newTestEditor(t *testing.T) (*Editor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".lush_history")
	hist := history.New(path)
	if err := hist.Load(); err != nil {
		t.Fatal(err)
	}
	return New(hist), path
}

func TestAbortRequestedClearsFlag(t *testing.T) {
	e, _ := newTestEditor(t)
	if e.AbortRequested() {
		t.Error("expected no abort requested initially")
	}
	e.RequestAbort()
	if !e.AbortRequested() {
		t.Error("expected abort requested after RequestAbort")
	}
	if e.AbortRequested() {
		t.Error("expected AbortRequested to clear the flag after reading it")
	}
}

func TestClearBufferEmptiesContent(t *testing.T) {
	e, _ := newTestEditor(t)
	e.SetBuffer("some input")
	e.ClearBuffer()
	if e.Buffer() != "" {
		t.Errorf("expected empty buffer, got %q", e.Buffer())
	}
}

func TestResetHistoryCursor(t *testing.T) {
	e, _ := newTestEditor(t)
	e.SetHistoryCursor(7)
	e.ResetHistoryCursor()
	if e.HistoryCursor() != 0 {
		t.Errorf("expected cursor reset to 0, got %d", e.HistoryCursor())
	}
}

func TestRecreatePersistsAndReloadsHistory(t *testing.T) {
	e, path := newTestEditor(t)
	if err := e.History().Append("ls -la"); err != nil {
		t.Fatal(err)
	}

	fresh, err := e.Recreate()
	if err != nil {
		t.Fatal(err)
	}

	entries := fresh.History().Entries()
	if len(entries) != 1 || entries[0] != "ls -la" {
		t.Errorf("got %v", entries)
	}

	if p, _ := fresh.History().Path(); p != path {
		t.Errorf("expected recreated editor to reuse path %q, got %q", path, p)
	}
}

func TestRecreateClearsAbortAndBuffer(t *testing.T) {
	e, _ := newTestEditor(t)
	e.RequestAbort()
	e.SetBuffer("unsaved input")

	fresh, err := e.Recreate()
	if err != nil {
		t.Fatal(err)
	}

	if fresh.AbortRequested() {
		t.Error("expected fresh editor to have no pending abort")
	}
	if fresh.Buffer() != "" {
		t.Errorf("expected fresh editor to have empty buffer, got %q", fresh.Buffer())
	}
}
