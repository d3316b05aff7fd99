package procrun

import (
	"context"
	"testing"
	"time"
)

func TestRunSuccess(t *testing.T) {
	result := Run(context.Background(), "echo hello", time.Second)
	if result.TimedOut {
		t.Fatal("expected no timeout")
	}
	if result.ExitStatus != 0 {
		t.Fatalf("expected exit 0, got %d", result.ExitStatus)
	}
	if result.Output != "hello" {
		t.Errorf("expected %q, got %q", "hello", result.Output)
	}
}

func TestRunTrimsTrailingNewlines(t *testing.T) {
	result := Run(context.Background(), "printf 'abc\\n\\r'", time.Second)
	if result.Output != "abc" {
		t.Errorf("expected trimmed output, got %q", result.Output)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	result := Run(context.Background(), "exit 7", time.Second)
	if result.ExitStatus != 7 {
		t.Errorf("expected exit 7, got %d", result.ExitStatus)
	}
	if result.TimedOut {
		t.Error("non-zero exit should not be reported as timeout")
	}
}

func TestRunTimeout(t *testing.T) {
	result := Run(context.Background(), "sleep 5", 50*time.Millisecond)
	if !result.TimedOut {
		t.Fatal("expected timeout")
	}
	if result.ExitStatus != -1 {
		t.Errorf("expected exit status -1 on timeout, got %d", result.ExitStatus)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	result := Run(context.Background(), "", time.Second)
	if result.ExitStatus != -1 || result.TimedOut {
		t.Errorf("expected failure result for empty command, got %+v", result)
	}
}

func TestRunInDirComposesGitCommand(t *testing.T) {
	result := RunInDir(context.Background(), "/nonexistent-dir-lush-test", "rev-parse --git-dir", time.Second)
	if result.ExitStatus == 0 {
		t.Error("expected non-zero exit status for a nonexistent directory")
	}
}

func TestRunInDirEmptyArgs(t *testing.T) {
	result := RunInDir(context.Background(), "/tmp", "", time.Second)
	if result.ExitStatus != -1 {
		t.Errorf("expected failure result, got %+v", result)
	}
}
