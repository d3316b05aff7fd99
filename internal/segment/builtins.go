package segment

import (
	"fmt"
	"strings"

	"github.com/berrym/lush/internal/promptctx"
	"github.com/berrym/lush/internal/theme"
)

// builtins returns the segments every registry starts seeded with.
func builtins() []Descriptor {
	return []Descriptor{
		{Name: "user", Render: renderUser},
		{Name: "hostname", Render: renderHostname},
		{Name: "directory", Render: renderDirectory},
		{Name: "git", Render: renderGit, Visible: visibleGit},
		{Name: "status", Render: renderStatus, Visible: visibleStatus},
		{Name: "jobs", Render: renderJobs, Visible: visibleJobs},
	}
}

func renderUser(ctx *promptctx.Context, th theme.Theme) Result {
	return textResult(ctx.Username)
}

func renderHostname(ctx *promptctx.Context, th theme.Theme) Result {
	return textResult(ctx.Hostname)
}

func renderDirectory(ctx *promptctx.Context, th theme.Theme) Result {
	if ctx.CwdDisplay != "" {
		return textResult(ctx.CwdDisplay)
	}
	return textResult(ctx.Cwd)
}

func visibleGit(ctx *promptctx.Context, th theme.Theme) bool {
	return ctx.GitStatus != nil && ctx.GitStatus.IsRepo
}

func renderGit(ctx *promptctx.Context, th theme.Theme) Result {
	if ctx.GitStatus == nil || !ctx.GitStatus.IsRepo {
		return emptyResult()
	}
	s := ctx.GitStatus
	branch := s.Branch
	if s.IsDetached {
		branch = s.Commit
	}
	text := branch
	if icon := th.Symbols.BranchIcon; icon != "" {
		text = icon + " " + text
	}
	if s.IsMerging {
		text += " (merging)"
	} else if s.IsRebasing {
		text += " (rebasing)"
	}
	return textResult(text)
}

func visibleStatus(ctx *promptctx.Context, th theme.Theme) bool {
	return ctx.GitStatus != nil && ctx.GitStatus.IsRepo
}

func renderStatus(ctx *promptctx.Context, th theme.Theme) Result {
	if ctx.GitStatus == nil || !ctx.GitStatus.IsRepo {
		return emptyResult()
	}
	s := ctx.GitStatus
	clean := s.Staged == 0 && s.Unstaged == 0 && s.Untracked == 0 && s.Ahead == 0 && s.Behind == 0
	if clean {
		if icon := th.Symbols.CleanIcon; icon != "" {
			return textResult(icon)
		}
		return emptyResult()
	}

	var text string
	if icon := th.Symbols.DirtyIcon; icon != "" {
		text = icon
	}
	if s.Ahead > 0 {
		text += fmt.Sprintf(" ↑%d", s.Ahead)
	}
	if s.Behind > 0 {
		text += fmt.Sprintf(" ↓%d", s.Behind)
	}
	if s.Staged > 0 {
		text += fmt.Sprintf(" +%d", s.Staged)
	}
	if s.Unstaged > 0 {
		text += fmt.Sprintf(" ~%d", s.Unstaged)
	}
	if s.Untracked > 0 {
		text += fmt.Sprintf(" ?%d", s.Untracked)
	}
	return textResult(strings.TrimSpace(text))
}

func visibleJobs(ctx *promptctx.Context, th theme.Theme) bool {
	return ctx.BackgroundJobs > 0
}

func renderJobs(ctx *promptctx.Context, th theme.Theme) Result {
	if ctx.BackgroundJobs <= 0 {
		return emptyResult()
	}
	return textResult(fmt.Sprintf("%d", ctx.BackgroundJobs))
}
