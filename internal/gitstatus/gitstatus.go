// Package gitstatus implements the git-status probe dispatched by the async
// worker: repo-ness, branch/detached-HEAD, dirty counts, ahead/behind, and
// merge/rebase-in-progress detection. It is assessment only — formatting the
// result for display belongs to internal/segment, following the
// assessment-vs-presentation split the CPI-SI statusline example repo uses
// between system/lib/git and statusline/lib/git.
//
// The probe sequence is the direct translation of
// _examples/original_source/src/lle/core/async_worker.c's git dispatch
// function, built on internal/procrun.RunInDir.
package gitstatus

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/berrym/lush/internal/procrun"
)

// DefaultTimeout is used when a caller passes a non-positive timeout, per
// spec.md §4.5 ("default 5s").
const DefaultTimeout = 5 * time.Second

// Status is the payload of a git-status async response.
type Status struct {
	IsRepo      bool
	Branch      string
	Commit      string
	IsDetached  bool
	IsMerging   bool
	IsRebasing  bool
	Ahead       int
	Behind      int
	Staged      int
	Unstaged    int
	Untracked   int
}

// Probe runs the full git-status probe against cwd, honoring ctx for
// cancellation (e.g. worker shutdown) and bounding each underlying git
// invocation by timeout.
func Probe(ctx context.Context, cwd string, timeout time.Duration) Status {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var s Status

	// 1. rev-parse --git-dir gates repo-ness.
	gitDirResult := procrun.RunInDir(ctx, cwd, "rev-parse --git-dir", timeout)
	if gitDirResult.ExitStatus != 0 {
		return Status{IsRepo: false}
	}
	s.IsRepo = true
	gitDir := gitDirResult.Output

	// 2. branch --show-current; empty means (tentatively) detached HEAD.
	branchResult := procrun.RunInDir(ctx, cwd, "branch --show-current", timeout)
	s.Branch = branchResult.Output
	if s.Branch == "" {
		s.IsDetached = true
		s.Commit = procrun.RunInDir(ctx, cwd, "rev-parse --short HEAD", timeout).Output
	}

	// 3. symbolic-ref HEAD confirms or overrides the detached-HEAD guess
	// from step 2. This ordering — and the brief inconsistency it can
	// produce mid-rebase — matches the original C reference exactly; see
	// DESIGN.md's "Open Question" resolution.
	symRefResult := procrun.RunInDir(ctx, cwd, "symbolic-ref HEAD", timeout)
	if symRefResult.ExitStatus == 0 {
		s.IsDetached = false
	} else {
		s.IsDetached = true
		if s.Commit == "" {
			s.Commit = procrun.RunInDir(ctx, cwd, "rev-parse --short HEAD", timeout).Output
		}
	}

	// 4. status --porcelain -> staged/unstaged/untracked counts.
	porcelain := procrun.RunInDir(ctx, cwd, "status --porcelain", timeout).Output
	s.Staged, s.Unstaged, s.Untracked = parsePorcelain(porcelain)

	// 5. rev-list --left-right --count HEAD...@{upstream} -> ahead/behind.
	// Tolerate failure (no upstream configured).
	revList := procrun.RunInDir(ctx, cwd, "rev-list --left-right --count HEAD...@{upstream}", timeout)
	if revList.ExitStatus == 0 {
		s.Ahead, s.Behind = parseAheadBehind(revList.Output)
	}

	// 6. MERGE_HEAD / rebase-merge / rebase-apply existence under the git
	// directory, which may be relative to cwd.
	s.IsMerging, s.IsRebasing = probeMergeRebase(cwd, gitDir)

	return s
}

func parsePorcelain(output string) (staged, unstaged, untracked int) {
	if output == "" {
		return 0, 0, 0
	}
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		if x == '?' {
			untracked++
			continue
		}
		if x != ' ' && x != '?' {
			staged++
		}
		if y != ' ' && y != '?' {
			unstaged++
		}
	}
	return staged, unstaged, untracked
}

func parseAheadBehind(output string) (ahead, behind int) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0
	}
	ahead, _ = strconv.Atoi(fields[0])
	behind, _ = strconv.Atoi(fields[1])
	return ahead, behind
}

func probeMergeRebase(cwd, gitDir string) (merging, rebasing bool) {
	if gitDir == "" {
		return false, false
	}
	base := gitDir
	if !filepath.IsAbs(base) {
		base = filepath.Join(cwd, gitDir)
	}

	_, mergeErr := os.Stat(filepath.Join(base, "MERGE_HEAD"))
	merging = mergeErr == nil

	if _, err := os.Stat(filepath.Join(base, "rebase-merge")); err == nil {
		rebasing = true
	} else if _, err := os.Stat(filepath.Join(base, "rebase-apply")); err == nil {
		rebasing = true
	}

	return merging, rebasing
}
