// Package composer implements the prompt composer: the component that owns
// a prompt_context, a cached rendered output, and the active theme, and
// picks between the expansion engine and the powerline renderer on every
// render. Cache invalidation is modeled the way the teacher's
// internal/config.Resolve tracks "value + source" through its precedence
// chain — here the "source" is the shell-event kind that last dirtied the
// cache, kept for diagnostics via LastInvalidatedBy.
package composer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/berrym/lush/internal/expand"
	"github.com/berrym/lush/internal/expand/template"
	"github.com/berrym/lush/internal/gitstatus"
	"github.com/berrym/lush/internal/lerrors"
	"github.com/berrym/lush/internal/powerline"
	"github.com/berrym/lush/internal/promptctx"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/theme"
)

// SymbolTable is the narrow interface the composer consumes in place of a
// hard dependency on any particular shell's variable store (spec.md §6's
// get_global/set_global collaborator). PS1 and PS2 are read as formats
// through it; PROMPT-PS1 mirroring, if the host wants it, lives in the
// SymbolTable implementation, not here.
type SymbolTable interface {
	GetGlobal(name string) (string, bool)
	SetGlobal(name, value string)
}

// EventKind discriminates the shell events the composer subscribes to.
type EventKind int

const (
	EventNone EventKind = iota
	EventChpwd
	EventPrecmd
	EventPreexec
	EventPS1Changed
	EventPS2Changed
)

func (k EventKind) String() string {
	switch k {
	case EventChpwd:
		return "chpwd"
	case EventPrecmd:
		return "precmd"
	case EventPreexec:
		return "preexec"
	case EventPS1Changed:
		return "ps1_changed"
	case EventPS2Changed:
		return "ps2_changed"
	default:
		return "none"
	}
}

// EventBus is the narrow interface for the shell event bus collaborator
// (spec.md §6: subscribe(event_kind, handler), unsubscribe(handle)).
type EventBus interface {
	Subscribe(kind EventKind, handler func(payload any)) int
	Unsubscribe(handle int)
}

// PrecmdPayload carries the values a real shell's precmd hook supplies.
type PrecmdPayload struct {
	LastExitCode int
	Duration     time.Duration
}

// Composer owns the prompt context and the cached rendered output.
type Composer struct {
	mu sync.Mutex

	segments *segment.Registry
	themes   *theme.Registry
	active   theme.Theme

	symtab SymbolTable

	ctx promptctx.Context

	ps1, ps2           string
	ps1Width, ps2Width int
	dirty              bool
	lastInvalidatedBy  EventKind

	preexecStart time.Time

	bus        EventBus
	subs       []int
	runtimeCtx expand.RuntimeContext
}

// New creates a Composer seeded with segments and themes (the init(segments,
// themes) operation), starting on the registry's "default" theme. symtab may
// be nil, in which case PS1/PS2 formats always come from the active theme.
func New(segments *segment.Registry, themes *theme.Registry, symtab SymbolTable) (*Composer, error) {
	if segments == nil || themes == nil {
		return nil, lerrors.ErrNullPointer
	}
	active, ok := themes.Get("default")
	if !ok {
		active = theme.Default()
	}

	c := &Composer{
		segments: segments,
		themes:   themes,
		active:   active,
		symtab:   symtab,
		dirty:    true,
	}
	c.ctx.HistoryNumber = 0
	c.ctx.CommandNumber = 0
	c.RefreshDirectory()
	c.refreshIdentity()
	return c, nil
}

// SetTheme switches the active theme by name and marks the cache dirty.
func (c *Composer) SetTheme(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	th, ok := c.themes.Get(name)
	if !ok {
		return fmt.Errorf("lush: unknown theme %q: %w", name, lerrors.ErrInvalidParameter)
	}
	if err := th.Validate(); err != nil {
		return err
	}
	c.active = th
	c.markDirtyLocked(EventNone)
	return nil
}

// ActiveTheme returns the currently selected theme.
func (c *Composer) ActiveTheme() theme.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Context returns a copy of the current prompt context, for callers that
// need to inspect it (e.g. the demo CLI).
func (c *Composer) Context() promptctx.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// SetTerminalCapabilities records the host's detected color support
// (spec.md §6's terminal-detection collaborator: detect() -> {supports_256,
// supports_truecolor}).
func (c *Composer) SetTerminalCapabilities(has256, hasTrueColor bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.Has256Color = has256
	c.ctx.HasTrueColor = hasTrueColor
	c.runtimeCtx.ColorDepth = c.ctx.Depth()
	c.markDirtyLocked(EventNone)
}

// SetRuntimeDefaults configures the shell/version/tty fields the expansion
// engine's \s \v \V \l escapes depend on (spec.md §4.2); these come from the
// hosting shell, not from this package.
func (c *Composer) SetRuntimeDefaults(shellName string, versionMajor, versionMinor int, versionFull, ttyName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runtimeCtx.ShellName = shellName
	c.runtimeCtx.ShellVersionMajor = versionMajor
	c.runtimeCtx.ShellVersionMinor = versionMinor
	c.runtimeCtx.ShellVersionFull = versionFull
	c.runtimeCtx.TTYName = ttyName
}

// RefreshDirectory re-reads the working directory and recomputes its
// home-relative display form, the chpwd event's effect.
func (c *Composer) RefreshDirectory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshDirectoryLocked()
	c.markDirtyLocked(EventChpwd)
}

func (c *Composer) refreshDirectoryLocked() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	c.ctx.Cwd = cwd
	c.ctx.CwdDisplay = tildeDisplay(cwd)
}

func (c *Composer) refreshIdentity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if host, err := os.Hostname(); err == nil {
		if i := strings.IndexByte(host, '.'); i >= 0 {
			c.ctx.Hostname = host[:i]
		} else {
			c.ctx.Hostname = host
		}
	}
	if u := os.Getenv("USER"); u != "" {
		c.ctx.Username = u
	}
}

func tildeDisplay(cwd string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return cwd
	}
	if cwd == home {
		return "~"
	}
	if strings.HasPrefix(cwd, home+string(filepath.Separator)) {
		return "~" + cwd[len(home):]
	}
	return cwd
}

// UpdateContext records the last command's exit status and advances the
// command number, the precmd event's effect. duration is accepted but not
// stored; no segment reads a command duration.
func (c *Composer) UpdateContext(lastExit int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.LastExitCode = lastExit
	c.runtimeCtx.LastExitStatus = lastExit
	c.ctx.CommandNumber++
	c.runtimeCtx.CommandNumber = c.ctx.CommandNumber
	_ = duration
	c.markDirtyLocked(EventPrecmd)
}

// MarkPreexecStart records the instant a command began executing, the
// preexec event's effect.
func (c *Composer) MarkPreexecStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preexecStart = time.Now()
}

// SetBackgroundJobs updates the background job count the "jobs" segment
// reads, sourced from the executor collaborator's count_jobs.
func (c *Composer) SetBackgroundJobs(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.BackgroundJobs = n
	c.runtimeCtx.JobCount = n
}

// UpdateGitStatus installs the most recent completed async git-status
// probe, the async worker's completion callback feeding segments without
// global state (see the GitStatus field of promptctx.Context).
func (c *Composer) UpdateGitStatus(status *gitstatus.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.GitStatus = status
	c.markDirtyLocked(EventNone)
}

// NotifyPS1Changed marks the cache dirty when shell code sets PS1 directly
// through the symbol table.
func (c *Composer) NotifyPS1Changed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markDirtyLocked(EventPS1Changed)
}

// NotifyPS2Changed marks the cache dirty when shell code sets PS2 directly
// through the symbol table.
func (c *Composer) NotifyPS2Changed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markDirtyLocked(EventPS2Changed)
}

func (c *Composer) markDirtyLocked(kind EventKind) {
	c.dirty = true
	c.lastInvalidatedBy = kind
}

// LastInvalidatedBy reports which event kind most recently dirtied the
// cache, a composer-local diagnostic (SPEC_FULL.md §4.4 expansion) modeled
// on internal/config.Resolve's "track the source of the winning value"
// pattern.
func (c *Composer) LastInvalidatedBy() EventKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastInvalidatedBy
}

// ps1Format resolves the PS1 format string: the symbol table's PS1
// variable if the host has set one, otherwise the active theme's default.
func (c *Composer) ps1Format() string {
	if c.symtab != nil {
		if v, ok := c.symtab.GetGlobal("PS1"); ok && v != "" {
			return v
		}
	}
	return c.active.Layout.PS1Format
}

func (c *Composer) ps2Format() string {
	if c.symtab != nil {
		if v, ok := c.symtab.GetGlobal("PS2"); ok && v != "" {
			return v
		}
	}
	return c.active.Layout.PS2Format
}

// Render produces PS1, using the cache if nothing has invalidated it since
// the last call. On any render-time failure it substitutes the minimal
// fallback per spec.md §4.4/§7: "$ ", or "# " for uid 0.
func (c *Composer) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return c.ps1
	}

	out, err := c.renderLocked(c.ps1Format())
	if err != nil {
		out = fallbackPrompt()
	}
	c.ps1 = out
	c.ps1Width = visualWidth(out)
	c.dirty = false
	c.lastInvalidatedBy = EventNone
	return out
}

// RenderPS2 produces PS2; unlike PS1 it is not cached, since continuation
// prompts are rendered once per line and rarely repeat.
func (c *Composer) RenderPS2() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.renderLocked(c.ps2Format())
	if err != nil {
		out = fallbackPrompt()
	}
	c.ps2 = out
	c.ps2Width = visualWidth(out)
	return out
}

// PS1VisualWidth and PS2VisualWidth return the display width (in runes,
// ANSI sequences excluded) of the most recently rendered PS1/PS2.
func (c *Composer) PS1VisualWidth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ps1Width
}

func (c *Composer) PS2VisualWidth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ps2Width
}

func (c *Composer) renderLocked(format string) (string, error) {
	// A user-supplied PS1/PS2 is untrusted input: invalid UTF-8 must never
	// reach the terminal. Caught here, before either render path runs, so
	// Render/RenderPS2 fall back to the minimal "$ "/"# " prompt.
	if !utf8.ValidString(format) {
		return "", fmt.Errorf("%w: PS1/PS2 format is not valid UTF-8", lerrors.ErrInvalidParameter)
	}
	if c.active.Layout.Style == theme.StylePowerline {
		return powerline.Render(c.active, c.segments, &c.ctx, powerline.LeftToRight)
	}
	tmplCtx := c.createRenderCtxLocked()
	return expand.Expand(format, tmplCtx, &c.runtimeCtx)
}

func fallbackPrompt() string {
	if os.Geteuid() == 0 {
		return "# "
	}
	return "$ "
}

// CreateRenderCtx builds the Pass-1 template context for the current
// prompt context: "${segment}"/"${segment.property}" resolve against the
// segment registry, and "${?cond:then:else}" treats cond as a segment name,
// true when that segment renders non-empty.
func (c *Composer) CreateRenderCtx() *template.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx := c.createRenderCtxLocked()
	return ctx
}

func (c *Composer) createRenderCtxLocked() *template.Context {
	ctx := &c.ctx
	segments := c.segments
	th := c.active
	return &template.Context{
		Resolve: func(name, property string) (string, bool) {
			result, found := segments.RenderNamed(name, ctx, th)
			if !found {
				return "", false
			}
			if property == "is_empty" {
				if result.IsEmpty {
					return "true", true
				}
				return "", true
			}
			if result.IsEmpty {
				return "", true
			}
			return result.Content, true
		},
		Eval: func(name string) bool {
			result, found := segments.RenderNamed(name, ctx, th)
			return found && !result.IsEmpty
		},
	}
}

// RegisterShellEvents subscribes chpwd/precmd/preexec handlers on bus,
// translating real shell events into composer notifications (spec.md
// §4.4's "Event subscriptions").
func (c *Composer) RegisterShellEvents(bus EventBus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bus = bus
	c.subs = []int{
		bus.Subscribe(EventChpwd, func(any) { c.RefreshDirectory() }),
		bus.Subscribe(EventPrecmd, func(payload any) {
			if p, ok := payload.(PrecmdPayload); ok {
				c.UpdateContext(p.LastExitCode, p.Duration)
			}
		}),
		bus.Subscribe(EventPreexec, func(any) { c.MarkPreexecStart() }),
	}
}

// UnregisterShellEvents removes this composer's subscriptions from the bus
// it last registered with.
func (c *Composer) UnregisterShellEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bus == nil {
		return
	}
	for _, h := range c.subs {
		c.bus.Unsubscribe(h)
	}
	c.bus = nil
	c.subs = nil
}

// visualWidth measures s's display width: UTF-8 rune count with every CSI
// sequence (ESC '[' ... final byte) excluded. A small duplicate of
// internal/powerline's stripANSI scan, kept private here since this
// package's only use of it is display-width accounting, not segment
// assembly.
func visualWidth(s string) int {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && !(s[i] >= 0x40 && s[i] <= 0x7e) {
				i++
			}
			if i < len(s) {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return utf8.RuneCountInString(b.String())
}
