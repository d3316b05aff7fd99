// Package editorstub provides a minimal stand-in for the line editor spec.md
// names as an out-of-scope external collaborator. It is explicitly a stub,
// not a line editor: it exposes just enough surface (abort flag, edit
// buffer, history-navigation cursor) for internal/shellintegration's reset
// ladder to have something real to drive end to end, reusing
// internal/history for the persisted side of a hard reset.
package editorstub

import "github.com/berrym/lush/internal/history"

// Editor is a minimal line-editor stand-in.
type Editor struct {
	abortRequested bool
	buffer         string
	historyCursor  int

	hist *history.History
}

// New creates an Editor backed by hist (which should already be Load'd by
// the caller, mirroring the real editor's "load history from disk at
// create" contract).
func New(hist *history.History) *Editor {
	return &Editor{hist: hist}
}

// RequestAbort sets the abort flag a real editor's input loop would poll.
// This is the soft-reset primitive: spec.md is explicit that soft reset
// uses a flag checked by the line editor, not a thread cancellation.
func (e *Editor) RequestAbort() {
	e.abortRequested = true
}

// AbortRequested reports and clears the abort flag, as a real editor's
// input loop would on its next poll.
func (e *Editor) AbortRequested() bool {
	requested := e.abortRequested
	e.abortRequested = false
	return requested
}

// SetBuffer sets the current edit buffer content (test/demo helper; a real
// editor would populate this from keystrokes).
func (e *Editor) SetBuffer(s string) {
	e.buffer = s
}

// Buffer returns the current edit buffer content.
func (e *Editor) Buffer() string {
	return e.buffer
}

// ClearBuffer empties the edit buffer. Part of the soft-reset ladder step.
func (e *Editor) ClearBuffer() {
	e.buffer = ""
}

// SetHistoryCursor moves the history-navigation cursor (test/demo helper).
func (e *Editor) SetHistoryCursor(n int) {
	e.historyCursor = n
}

// HistoryCursor returns the current history-navigation cursor position.
func (e *Editor) HistoryCursor() int {
	return e.historyCursor
}

// ResetHistoryCursor resets history navigation to the most recent entry.
// Part of the soft-reset ladder step.
func (e *Editor) ResetHistoryCursor() {
	e.historyCursor = 0
}

// Recreate persists the current history to disk, then returns a fresh
// Editor backed by a freshly loaded History, mirroring the hard-reset
// contract ("destroy and recreate the editor, recreating history state
// from disk").
func (e *Editor) Recreate() (*Editor, error) {
	path := ""
	if e.hist != nil {
		if err := e.hist.Save(); err != nil {
			return nil, err
		}
		p, err := e.hist.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	fresh := history.New(path)
	if err := fresh.Load(); err != nil {
		return nil, err
	}
	return New(fresh), nil
}

// History returns the editor's backing history store.
func (e *Editor) History() *history.History {
	return e.hist
}
