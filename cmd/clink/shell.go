package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/shell"
	"github.com/A-SunsetMkt-Forks/clink/internal/terminal"
	"github.com/A-SunsetMkt-Forks/clink/internal/version"
)

func runShell(_ *cobra.Command, _ []string) {
	logger.Info("Starting clink shell", "version", version.GetVersion())

	ctx := context.Background()
	workDir, _ := os.Getwd()
	sess, err := newSession(ctx, settings, workDir)
	if err != nil {
		logger.Fatal("Failed to start session", "error", err)
	}
	defer sess.Close()

	host, err := newHost(ctx, sess, terminal.NewPrinter())
	if err != nil {
		logger.Fatal("Failed to create shell", "error", err)
	}
	if err := host.Run(); err != nil {
		logger.Fatal("Shell failed", "error", err)
	}
}

// newHost creates the shell host over the session's collaborators.
func newHost(ctx context.Context, sess *session, printer *terminal.Printer) (*shell.Host, error) {
	engine, err := shell.NewEngine(ctx, sess.settings.EditorConfig(), sess.collaborators(), printer)
	if err != nil {
		return nil, err
	}
	sess.applyKeymap(engine.Editor())
	return shell.NewHost(engine,
		shell.WithHistory(sess.history),
		shell.WithAliases(sess.aliases),
		shell.WithPrompt(sess.settings.Prompt),
		shell.WithPromptFilter(sess.prompts),
	), nil
}
