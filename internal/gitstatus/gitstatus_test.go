package gitstatus

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestProbeNonRepo(t *testing.T) {
	dir := t.TempDir()
	s := Probe(context.Background(), dir, time.Second)
	if s.IsRepo {
		t.Error("expected IsRepo false for a non-repository directory")
	}
}

func TestProbeCleanRepo(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "a.txt")
	runGit(t, dir, "commit", "-m", "initial")

	s := Probe(context.Background(), dir, time.Second)
	if !s.IsRepo {
		t.Fatal("expected IsRepo true")
	}
	if s.Branch != "main" {
		t.Errorf("expected branch main, got %q", s.Branch)
	}
	if s.IsDetached {
		t.Error("expected not detached")
	}
	if s.Staged != 0 || s.Unstaged != 0 || s.Untracked != 0 {
		t.Errorf("expected clean tree, got %+v", s)
	}
}

func TestProbeDirtyRepo(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "a.txt")
	runGit(t, dir, "commit", "-m", "initial")

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("untracked"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("modified"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Probe(context.Background(), dir, time.Second)
	if s.Unstaged != 1 {
		t.Errorf("expected 1 unstaged file, got %d", s.Unstaged)
	}
	if s.Untracked != 1 {
		t.Errorf("expected 1 untracked file, got %d", s.Untracked)
	}
}

func TestParsePorcelain(t *testing.T) {
	staged, unstaged, untracked := parsePorcelain("M  staged.txt\n M unstaged.txt\n?? new.txt\nMM both.txt")
	if staged != 2 {
		t.Errorf("expected 2 staged, got %d", staged)
	}
	if unstaged != 2 {
		t.Errorf("expected 2 unstaged, got %d", unstaged)
	}
	if untracked != 1 {
		t.Errorf("expected 1 untracked, got %d", untracked)
	}
}

func TestParseAheadBehind(t *testing.T) {
	ahead, behind := parseAheadBehind("3\t2")
	if ahead != 3 || behind != 2 {
		t.Errorf("got ahead=%d behind=%d", ahead, behind)
	}
}

func TestParseAheadBehindMalformed(t *testing.T) {
	ahead, behind := parseAheadBehind("not numbers")
	if ahead != 0 || behind != 0 {
		t.Errorf("expected zeros for malformed input, got ahead=%d behind=%d", ahead, behind)
	}
}
