package shellintegration

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/berrym/lush/internal/config"
	"github.com/berrym/lush/internal/promptlog"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/theme"
)

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := config.Default()
	cfg.ErrorThreshold = 3
	cfg.PanicPressCount = 3
	cfg.PanicWindow = time.Second

	r, err := New(cfg, segment.NewRegistry(), theme.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Shutdown)
	return r
}

func TestNewWiresAllSubsystems(t *testing.T) {
	r := newTestRoot(t)
	want := StateArena | StateEventBus | StateHistory | StateEditor | StatePrompt | StateWorker
	if got := r.State(); !got.Has(want) {
		t.Errorf("got state %b, want at least %b", got, want)
	}
}

func TestSeedPromptVarsMirrorsPromptAndPS1(t *testing.T) {
	r := newTestRoot(t)
	ps1, ok := r.SymbolTable().GetGlobal("PS1")
	if !ok || ps1 == "" {
		t.Fatalf("expected PS1 seeded, got %q ok=%v", ps1, ok)
	}
	prompt, ok := r.SymbolTable().GetGlobal("PROMPT")
	if !ok || prompt != ps1 {
		t.Errorf("expected PROMPT to mirror PS1 %q, got %q", ps1, prompt)
	}
}

func TestRenderPromptUsesJobCounter(t *testing.T) {
	r := newTestRoot(t)
	r.SetJobCounter(fakeJobCounter{n: 2})
	_ = r.RenderPrompt()
	if r.Composer().Context().BackgroundJobs != 2 {
		t.Errorf("got BackgroundJobs=%d", r.Composer().Context().BackgroundJobs)
	}
}

type fakeJobCounter struct{ n int }

func (f fakeJobCounter) CountBackgroundJobs() int { return f.n }

func TestNotifyPromptVarSetSyncsAndDirties(t *testing.T) {
	r := newTestRoot(t)
	r.Composer().Render()

	r.NotifyPromptVarSet("PS1", "custom> ")
	if v, _ := r.SymbolTable().GetGlobal("PROMPT"); v != "custom> " {
		t.Errorf("expected PROMPT synced, got %q", v)
	}
	out := r.Composer().Render()
	if out != "custom> " {
		t.Errorf("got %q", out)
	}
}

func TestSoftResetClearsEditorState(t *testing.T) {
	r := newTestRoot(t)
	r.Editor().SetBuffer("unsaved")
	r.Editor().SetHistoryCursor(5)

	r.SoftReset()

	if r.Editor().Buffer() != "" {
		t.Errorf("expected empty buffer, got %q", r.Editor().Buffer())
	}
	if r.Editor().HistoryCursor() != 0 {
		t.Errorf("expected cursor reset, got %d", r.Editor().HistoryCursor())
	}
	if !r.Editor().AbortRequested() {
		t.Error("expected abort requested")
	}
}

func TestHardResetPersistsHistoryAndZeroesCounters(t *testing.T) {
	r := newTestRoot(t)
	if err := r.Editor().History().Append("echo hi"); err != nil {
		t.Fatal(err)
	}
	r.RecordError(nil)

	if err := r.HardReset(); err != nil {
		t.Fatal(err)
	}

	stats := r.Stats()
	if stats.ErrorCount != 0 {
		t.Errorf("expected error_count reset, got %d", stats.ErrorCount)
	}
	if stats.HardResetCount != 1 {
		t.Errorf("expected hard_reset_count=1, got %d", stats.HardResetCount)
	}
	if stats.LastResetTime.IsZero() {
		t.Error("expected last_reset_time stamped")
	}
	entries := r.Editor().History().Entries()
	if len(entries) != 1 || entries[0] != "echo hi" {
		t.Errorf("got %v", entries)
	}
}

func TestNuclearResetWritesRISAndIncrementsCount(t *testing.T) {
	r := newTestRoot(t)
	var buf bytes.Buffer

	if err := r.NuclearReset(&buf); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "\x1bc") {
		t.Errorf("expected RIS sequence, got %q", buf.String())
	}
	if r.Stats().NuclearResetCount != 1 {
		t.Errorf("got %d", r.Stats().NuclearResetCount)
	}
	if r.Stats().HardResetCount != 1 {
		t.Errorf("expected nuclear reset to also count as a hard reset, got %d", r.Stats().HardResetCount)
	}
}

func TestRecordErrorTriggersHardResetAtThreshold(t *testing.T) {
	r := newTestRoot(t)
	for i := 0; i < r.cfg.ErrorThreshold-1; i++ {
		r.RecordError(nil)
	}
	if r.Stats().HardResetCount != 0 {
		t.Fatalf("expected no reset before threshold, got %d", r.Stats().HardResetCount)
	}

	r.RecordError(nil)
	stats := r.Stats()
	if stats.HardResetCount != 1 {
		t.Errorf("expected hard reset at threshold, got %d", stats.HardResetCount)
	}
	if stats.RecoveryCount != 1 {
		t.Errorf("expected recovery_count=1, got %d", stats.RecoveryCount)
	}
	if stats.RecoveryMode {
		t.Error("expected recovery_mode cleared by the hard reset it triggered")
	}
}

func TestResetErrorCounterClearsWithoutReset(t *testing.T) {
	r := newTestRoot(t)
	r.RecordError(nil)
	r.ResetErrorCounter()

	stats := r.Stats()
	if stats.ErrorCount != 0 || stats.RecoveryMode {
		t.Errorf("got %+v", stats)
	}
	if stats.HardResetCount != 0 {
		t.Errorf("expected no reset triggered, got %d", stats.HardResetCount)
	}
}

func TestRecordCtrlGPressTriggersHardResetWithinWindow(t *testing.T) {
	r := newTestRoot(t)
	r.RecordCtrlGPress()
	r.RecordCtrlGPress()
	if r.Stats().HardResetCount != 0 {
		t.Fatal("expected no reset after two presses")
	}
	r.RecordCtrlGPress()
	if r.Stats().HardResetCount != 1 {
		t.Errorf("expected hard reset on third press within window, got %d", r.Stats().HardResetCount)
	}
}

func TestRecordCtrlGPressRestartsCountOutsideWindow(t *testing.T) {
	r := newTestRoot(t)
	r.cfg.PanicWindow = 10 * time.Millisecond
	r.RecordCtrlGPress()
	time.Sleep(20 * time.Millisecond)
	r.RecordCtrlGPress()
	if r.ctrlGCount != 1 {
		t.Errorf("expected count restarted to 1, got %d", r.ctrlGCount)
	}
}

func TestRegisterAtExitGuardsDoubleEntry(t *testing.T) {
	r := newTestRoot(t)
	if !r.RegisterAtExit() {
		t.Fatal("expected first registration to succeed")
	}
	if r.RegisterAtExit() {
		t.Fatal("expected second registration to report already-registered")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	r := newTestRoot(t)
	r.Shutdown()
	r.Shutdown() // must not panic
}

func TestLogStatsLoopEmitsPeriodicDebugLine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	cfg := config.Default()
	logger := promptlog.New(&buf, promptlog.LevelDebug)
	r, err := New(cfg, segment.NewRegistry(), theme.NewRegistry(), logger)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Shutdown()

	stop := make(chan struct{})
	go r.logStatsLoop(5*time.Millisecond, stop)
	time.Sleep(30 * time.Millisecond)
	close(stop)

	if !strings.Contains(buf.String(), "async worker stats:") {
		t.Errorf("expected periodic stats log line, got %q", buf.String())
	}
}
