// Package shellintegration is the prompt rendering core's single top-level
// owner: one Root per shell session, rooting the arena the editor and
// history are allocated from, wiring the composer to a shell event bus, and
// exposing the three-tier reset hierarchy (soft/hard/nuclear) with its two
// automatic triggers (error threshold, Ctrl-G panic window).
//
// Grounded directly on _examples/original_source/src/lle/lle_shell_integration.c
// (lle_shell_integration_init/_shutdown, lle_soft_reset/lle_hard_reset/
// lle_nuclear_reset, lle_record_error/lle_record_ctrl_g): the init-order,
// the reset semantics, and the panic-window arithmetic all follow that file.
// Go's garbage collector replaces its session_arena-owns-everything free at
// shutdown with internal/arena's finalizer-ordered Destroy.
package shellintegration

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/berrym/lush/internal/arena"
	"github.com/berrym/lush/internal/asyncworker"
	"github.com/berrym/lush/internal/composer"
	"github.com/berrym/lush/internal/config"
	"github.com/berrym/lush/internal/editorstub"
	"github.com/berrym/lush/internal/history"
	"github.com/berrym/lush/internal/promptlog"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/theme"
)

// State is a bitset recording which subsystems have come up, the Go
// analogue of the original's init_state struct of bools.
type State uint16

const (
	StateArena State = 1 << iota
	StateEventBus
	StateHistory
	StateEditor
	StatePrompt
	StateWorker
	StateAtExit
)

// Has reports whether every bit in flags is set.
func (s State) Has(flags State) bool { return s&flags == flags }

// statsLogInterval is how often New's background goroutine mirrors the
// async worker's counters into the structured logger at debug level.
const statsLogInterval = 30 * time.Second

// JobCounter is the narrow interface for the executor collaborator spec.md
// §6 names (count_jobs); nil is a legal "no executor wired yet" value.
type JobCounter interface {
	CountBackgroundJobs() int
}

// Root owns the session arena and every subsystem allocated from it: the
// event bus, symbol table, editor, composer, and async worker. Exactly one
// Root exists per shell session.
type Root struct {
	mu sync.Mutex

	arena  *arena.Arena
	bus    *EventBus
	symtab *SymbolTable
	editor *editorstub.Editor
	comp   *composer.Composer
	worker *asyncworker.Worker

	jobCounter JobCounter
	cfg        config.Settings
	logger     *promptlog.Logger
	state      State

	errorCount    int
	recoveryMode  bool
	recoveryCount int

	ctrlGCount    int
	lastCtrlGTime time.Time

	hardResetCount    int
	nuclearResetCount int
	lastResetTime     time.Time

	shutdownOnce sync.Once
}

// New creates and wires a Root: session arena, symbol table, event bus,
// history-backed editor, and composer, in that dependency order — the same
// order lle_shell_integration_init follows. The async worker is started
// last and its completion callback feeds git-status probes back into the
// composer.
func New(cfg config.Settings, segments *segment.Registry, themes *theme.Registry, logger *promptlog.Logger) (*Root, error) {
	if logger == nil {
		logger = promptlog.Discard
	}

	a := arena.New()
	r := &Root{
		arena:  a,
		cfg:    cfg,
		logger: logger,
		symtab: NewSymbolTable(),
	}
	r.state |= StateArena

	r.bus = NewEventBus()
	r.state |= StateEventBus

	hist := history.New("")
	if err := hist.Load(); err != nil {
		a.Destroy()
		return nil, fmt.Errorf("lush: load history: %w", err)
	}
	a.Calloc(func() { _ = r.Editor().History().Save() })
	r.state |= StateHistory

	r.editor = editorstub.New(hist)
	r.state |= StateEditor

	comp, err := composer.New(segments, themes, r.symtab)
	if err != nil {
		a.Destroy()
		return nil, err
	}
	r.comp = comp
	comp.RegisterShellEvents(r.bus)
	a.Calloc(func() { comp.UnregisterShellEvents() })
	r.seedPromptVars()
	r.state |= StatePrompt

	worker := asyncworker.New(r.onWorkerComplete, asyncworker.WithMaxQueueSize(cfg.AsyncQueueDepth))
	if err := worker.Start(); err != nil {
		a.Destroy()
		return nil, err
	}
	r.worker = worker
	a.Calloc(func() {
		worker.Shutdown()
		worker.Wait()
		worker.Destroy()
	})
	r.state |= StateWorker

	stopStatsLog := make(chan struct{})
	go r.logStatsLoop(statsLogInterval, stopStatsLog)
	a.Calloc(func() { close(stopStatsLog) })

	return r, nil
}

// logStatsLoop mirrors the async worker's request/completion/timeout
// counters into the structured logger at debug level every interval, until
// stop is closed. Gives internal/promptlog a concrete, exercised consumer
// beyond the error/warn call sites scattered through reset handling.
func (r *Root) logStatsLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			total, completed, timeouts := r.worker.Stats()
			r.logger.Debugf("async worker stats: requests=%d completed=%d timeouts=%d",
				total, completed, timeouts)
		}
	}
}

// seedPromptVars writes the active theme's PS1/PS2 format strings into the
// symbol table, mirroring lle_shell_integration's "Spec 28 Phase 2" startup
// step: PS1/PS2 hold format strings, never rendered output, and PROMPT
// starts mirrored to PS1.
func (r *Root) seedPromptVars() {
	th := r.comp.ActiveTheme()
	ps1 := th.Layout.PS1Format
	if ps1 == "" {
		ps1 = "$ "
	}
	ps2 := th.Layout.PS2Format
	if ps2 == "" {
		ps2 = "> "
	}
	r.symtab.SetGlobal("PS1", ps1)
	r.symtab.SetGlobal("PS2", ps2)
}

// State reports which subsystems are currently up.
func (r *Root) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Composer, Editor, EventBus, and SymbolTable expose the wired subsystems
// to callers (e.g. a hosting shell's readline loop or cmd/lushprompt).
func (r *Root) Composer() *composer.Composer { return r.comp }
func (r *Root) Editor() *editorstub.Editor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editor
}
func (r *Root) EventBus() *EventBus       { return r.bus }
func (r *Root) SymbolTable() *SymbolTable { return r.symtab }

// SetJobCounter wires the executor collaborator spec.md §6 names
// (count_jobs); RenderPrompt reads it, if set, before every render.
func (r *Root) SetJobCounter(jc JobCounter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobCounter = jc
}

// RenderPrompt refreshes the background-job count from the wired
// JobCounter (if any) and renders PS1, the Go analogue of
// lle_shell_update_prompt.
func (r *Root) RenderPrompt() string {
	r.mu.Lock()
	jc := r.jobCounter
	r.mu.Unlock()
	if jc != nil {
		r.comp.SetBackgroundJobs(jc.CountBackgroundJobs())
	}
	return r.comp.Render()
}

// RenderContinuationPrompt renders PS2.
func (r *Root) RenderContinuationPrompt() string {
	return r.comp.RenderPS2()
}

// NotifyPromptVarSet bridges shell code setting PS1/PS2/PROMPT directly
// through the symbol table: it stores the new value (the SymbolTable syncs
// PS1<->PROMPT internally) and marks the composer's cache dirty.
func (r *Root) NotifyPromptVarSet(varName, value string) {
	r.symtab.SetGlobal(varName, value)
	switch varName {
	case "PS1", "PROMPT":
		r.comp.NotifyPS1Changed()
	case "PS2":
		r.comp.NotifyPS2Changed()
	}
}

// RequestGitStatus submits an async git-status probe for cwd; the result
// reaches the composer through onWorkerComplete once dispatch finishes.
func (r *Root) RequestGitStatus(cwd string) error {
	_, err := r.worker.Submit(asyncworker.Request{
		Kind:    asyncworker.KindGitStatus,
		Cwd:     cwd,
		Timeout: r.cfg.DefaultSubprocessTimeout,
	})
	return err
}

func (r *Root) onWorkerComplete(resp asyncworker.Response) {
	if resp.Err != nil {
		r.logger.Warnf("async request %d failed: %v", resp.ID, resp.Err)
		return
	}
	if resp.GitStatus != nil {
		r.comp.UpdateGitStatus(resp.GitStatus)
	}
}

// SoftReset sets abort_requested, clears the edit buffer, and resets the
// history-navigation cursor. No subsystem is destroyed.
func (r *Root) SoftReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editor.RequestAbort()
	r.editor.ClearBuffer()
	r.editor.ResetHistoryCursor()
}

// HardReset persists history, destroys and recreates the editor (reloading
// history state from disk), zeroes the error/Ctrl-G counters, and stamps
// last_reset_time.
func (r *Root) HardReset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hardResetLocked()
}

func (r *Root) hardResetLocked() error {
	fresh, err := r.editor.Recreate()
	if err != nil {
		return err
	}
	r.editor = fresh

	r.errorCount = 0
	r.recoveryMode = false
	r.ctrlGCount = 0

	r.hardResetCount++
	r.lastResetTime = time.Now()
	return nil
}

// NuclearReset performs a hard reset, then writes the terminal RIS sequence
// (ESC c) to w (os.Stdout if nil) and sleeps 50ms to give the terminal time
// to process it.
func (r *Root) NuclearReset(w io.Writer) error {
	r.mu.Lock()
	if err := r.hardResetLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.nuclearResetCount++
	r.mu.Unlock()

	if w == nil {
		w = os.Stdout
	}
	if _, err := io.WriteString(w, "\x1bc"); err != nil {
		return fmt.Errorf("lush: write terminal reset sequence: %w", err)
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

// RecordError increments error_count and, on reaching cfg.ErrorThreshold,
// enters recovery mode and invokes a hard reset.
func (r *Root) RecordError(cause error) {
	r.mu.Lock()
	r.errorCount++
	trip := r.errorCount >= r.cfg.ErrorThreshold
	r.mu.Unlock()

	if cause != nil {
		r.logger.Errorf("recorded error: %v", cause)
	}
	if !trip {
		return
	}

	r.mu.Lock()
	r.recoveryMode = true
	r.recoveryCount++
	err := r.hardResetLocked()
	r.mu.Unlock()
	if err != nil {
		r.logger.Errorf("hard reset after error threshold failed: %v", err)
	}
}

// ResetErrorCounter clears the accumulated error count and exits recovery
// mode without performing a reset, for callers that want to acknowledge
// recovery after a run of successful operations.
func (r *Root) ResetErrorCounter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorCount = 0
	r.recoveryMode = false
}

// RecordCtrlGPress tracks a Ctrl-G keypress for panic-window detection: if
// it falls within cfg.PanicWindow of the previous press, the run continues;
// otherwise it restarts at one. Reaching cfg.PanicPressCount zeroes the
// counter and invokes a hard reset.
func (r *Root) RecordCtrlGPress() {
	now := time.Now()

	r.mu.Lock()
	if !r.lastCtrlGTime.IsZero() && now.Sub(r.lastCtrlGTime) < r.cfg.PanicWindow {
		r.ctrlGCount++
	} else {
		r.ctrlGCount = 1
	}
	r.lastCtrlGTime = now
	trip := r.ctrlGCount >= r.cfg.PanicPressCount
	if trip {
		r.ctrlGCount = 0
	}
	r.mu.Unlock()

	if !trip {
		return
	}
	if err := r.HardReset(); err != nil {
		r.logger.Errorf("hard reset after Ctrl-G panic threshold failed: %v", err)
	}
}

// Stats is a snapshot of the reset/error counters, for diagnostics.
type Stats struct {
	ErrorCount        int
	RecoveryMode      bool
	RecoveryCount     int
	CtrlGCount        int
	HardResetCount    int
	NuclearResetCount int
	LastResetTime     time.Time
}

// Stats returns a snapshot of the current counters.
func (r *Root) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		ErrorCount:        r.errorCount,
		RecoveryMode:      r.recoveryMode,
		RecoveryCount:     r.recoveryCount,
		CtrlGCount:        r.ctrlGCount,
		HardResetCount:    r.hardResetCount,
		NuclearResetCount: r.nuclearResetCount,
		LastResetTime:     r.lastResetTime,
	}
}

// RegisterAtExit marks the at-exit handler as installed, guarding against
// double registration; it reports false if already registered. Callers
// wire the returned true into whatever process-exit mechanism the host
// uses (a deferred Shutdown in main, a signal handler, ...); Go has no
// direct atexit(3) equivalent.
func (r *Root) RegisterAtExit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Has(StateAtExit) {
		return false
	}
	r.state |= StateAtExit
	return true
}

// Shutdown persists history and tears down every subsystem via the session
// arena's finalizers. Guarded by a one-shot flag; safe to call more than
// once or concurrently.
func (r *Root) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.arena.Destroy()
	})
}
