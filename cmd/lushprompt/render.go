package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/berrym/lush/internal/config"
	"github.com/berrym/lush/internal/gitstatus"
	"github.com/berrym/lush/internal/promptlog"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/shellintegration"
	"github.com/berrym/lush/internal/theme"
)

var (
	renderTheme    string
	renderExitCode int
	renderJobs     int
	renderGit      bool
	renderPS2      bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a single prompt and print it",
	Long: `render wires a full internal/shellintegration.Root (arena, event bus,
editor, composer, async worker) the way a hosting shell would at session
start, applies the requested exit code / job count / theme, and prints
the resulting PS1 (or PS2 with --ps2).`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderTheme, "theme", "default", "theme name to render with")
	renderCmd.Flags().IntVar(&renderExitCode, "exit-code", 0, "last command exit status")
	renderCmd.Flags().IntVar(&renderJobs, "jobs", 0, "background job count")
	renderCmd.Flags().BoolVar(&renderGit, "git", false, "probe the current directory's git status")
	renderCmd.Flags().BoolVar(&renderPS2, "ps2", false, "render the continuation prompt instead of PS1")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := promptlog.Discard
	if GetVerbose() {
		logger = promptlog.New(os.Stderr, promptlog.LevelDebug)
	}

	themes := theme.NewRegistry(theme.Powerline())
	root, err := shellintegration.New(cfg, segment.NewRegistry(), themes, logger)
	if err != nil {
		return fmt.Errorf("initialize shell integration: %w", err)
	}
	defer root.Shutdown()

	if renderTheme != "default" {
		if err := root.Composer().SetTheme(renderTheme); err != nil {
			return fmt.Errorf("select theme %q: %w", renderTheme, err)
		}
	}

	root.Composer().UpdateContext(renderExitCode, 0)

	if renderGit {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DefaultSubprocessTimeout)
		defer cancel()
		status := gitstatus.Probe(ctx, cwd, cfg.DefaultSubprocessTimeout)
		root.Composer().UpdateGitStatus(&status)
	}

	root.SetJobCounter(staticJobCount(renderJobs))

	out := root.RenderPrompt()
	if renderPS2 {
		out = root.RenderContinuationPrompt()
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out+"\n")
	return err
}

type staticJobCount int

func (n staticJobCount) CountBackgroundJobs() int { return int(n) }
