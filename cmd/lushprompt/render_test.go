package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRunRenderPrintsPrompt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	renderTheme = "default"
	renderExitCode = 1
	renderJobs = 2
	renderGit = false
	renderPS2 = false
	defer func() {
		renderTheme, renderExitCode, renderJobs, renderGit, renderPS2 = "default", 0, 0, false, false
	}()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runRender(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		t.Error("expected non-empty rendered prompt")
	}
}

func TestRunRenderUnknownThemeFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	renderTheme = "does-not-exist"
	defer func() { renderTheme = "default" }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runRender(cmd, nil); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestRunRenderPS2(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	renderTheme = "default"
	renderPS2 = true
	defer func() { renderPS2 = false }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runRender(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(buf.String(), "\n") != "> " {
		t.Errorf("got %q", buf.String())
	}
}
