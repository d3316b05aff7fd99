// Package promptctx defines the runtime snapshot a single prompt render is
// computed against: username, cwd, last exit status, terminal capability
// flags, and the rest of the values spec.md's "Prompt context" names. It is
// owned by internal/composer and mutated between renders by shell events
// (chpwd, precmd, preexec); segments and the powerline renderer only read
// it.
package promptctx

import (
	"github.com/berrym/lush/internal/color"
	"github.com/berrym/lush/internal/gitstatus"
)

// Context is the runtime snapshot driving a single render.
type Context struct {
	Username   string
	Hostname   string
	Cwd        string
	CwdDisplay string // home-relative, "~"-substituted

	LastExitCode   int
	BackgroundJobs int
	HistoryNumber  int
	CommandNumber  int

	Has256Color  bool
	HasTrueColor bool

	// GitStatus is the most recent completed async git-status probe for
	// Cwd, or nil if none has completed yet. The composer updates this as
	// asyncworker responses arrive; segments only read it.
	GitStatus *gitstatus.Status
}

// Depth derives a color.Depth from the capability flags, the single place
// the rest of the core asks "what can this terminal show".
func (c *Context) Depth() color.Depth {
	switch {
	case c.HasTrueColor:
		return color.DepthTrueColor
	case c.Has256Color:
		return color.Depth256
	default:
		return color.DepthBasic
	}
}
