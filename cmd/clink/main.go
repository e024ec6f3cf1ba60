// Package main provides the clink CLI: an interactive shell host around the
// line editor, a raw terminal editing loop and a tokenizer inspector.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/A-SunsetMkt-Forks/clink/internal/config"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/version"
)

var (
	logLevel   string
	logFile    string
	configFile string
	testMode   bool
	verbose    bool

	settings config.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clink",
	Short: "clink - command line editing and completion",
	Long: `clink is a line editor for command shells. It splits each line into
commands and words, completes them from scripts, aliases and files, and
suggests whole lines from history.`,
	Run: runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell whose completion, suggestions and coloring
come from the line editor. Accepted lines are split into commands and words.`,
	Run: runShell,
}

// editCmd runs the editor directly on the terminal
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit lines in raw terminal mode",
	Long: `Read lines with the editor's own key bindings, pager and match picker,
printing each accepted line. Ctrl-D on an empty line quits.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

// tokenizeCmd prints how a line splits into commands and words
var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [line]",
	Short: "Show the commands and words of a line",
	Long: `Print every command of the given line with its words, offsets and
classes. Without arguments each line of standard input is shown.`,
	RunE: runTokenize,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of clink.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Read settings from this file instead of clink.yaml")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed build information")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"log_level": "log-level",
		"log_file":  "log-file",
		"config":    "config",
		"test_mode": "test-mode",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	// Load settings and configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	s, err := config.NewLoader(viper.GetViper(), "", "").Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	settings = s

	// Flags are bound to viper, so the settings already prefer them
	if err := logger.Configure(settings.LogLevel, settings.LogFile, settings.TestMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}
