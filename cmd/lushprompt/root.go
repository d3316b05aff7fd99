package main

import (
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lushprompt",
	Short: "Demo harness for the lush prompt rendering core",
	Long: `lushprompt exercises the prompt rendering core outside of a real
shell: it wires the same session lifecycle a hosting shell would
(internal/shellintegration.Root) and renders a prompt, or lists the themes
currently registered.

Commands:
  render       Render PS1 once and print it
  themes list  List the registered themes`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages and above to stderr")
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}
