package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/shellintegration"
	"github.com/A-SunsetMkt-Forks/clink/internal/terminal"
	"github.com/A-SunsetMkt-Forks/clink/internal/textbuf"
	"github.com/A-SunsetMkt-Forks/clink/internal/version"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrNotTerminal is returned by edit when standard input is not a terminal.
var ErrNotTerminal = errors.New("standard input is not a terminal")

func runEdit(cmd *cobra.Command, _ []string) error {
	in, out := os.Stdin, os.Stdout
	fd := int(in.Fd())
	if !terminal.IsTerminal(fd) {
		return ErrNotTerminal
	}
	logger.Info("Starting clink editor", "version", version.GetVersion())

	ctx := cmd.Context()
	workDir, _ := os.Getwd()
	sess, err := newSession(ctx, settings, workDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	width, height := terminal.Size(int(out.Fd()))
	marker := shellintegration.NewMarker(out, sess.settings.ShellMarks)
	ed, err := newTerminalEditor(sess, terminal.NewKeys(in), out, marker, width, height)
	if err != nil {
		return err
	}

	restore, err := terminal.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() {
		if err := restore(); err != nil {
			logger.Warn("Failed to restore terminal", "error", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	ed.SetSignals(sigs)

	return editLoop(ctx, ed, sess, marker, out)
}

// markedPrompt runs the session's prompt filters, then adds the prompt marks.
type markedPrompt struct {
	filter clinktypes.PromptFilter
	marker *shellintegration.Marker
}

func (p markedPrompt) FilterPrompt(ctx context.Context, prompt string) string {
	if p.filter != nil {
		prompt = p.filter.FilterPrompt(ctx, prompt)
	}
	return p.marker.WrapPrompt(prompt)
}

// newTerminalEditor creates an editor reading keys and drawing on out. The
// prompt carries marker's prompt marks.
func newTerminalEditor(sess *session, keys clinktypes.KeySource, out io.Writer, marker *shellintegration.Marker, width, height int) (*editor.Editor, error) {
	collab := sess.collaborators()
	collab.Buffer = textbuf.New("")
	collab.Keys = keys
	collab.Output = out
	collab.Display = terminal.NewPrinter(terminal.WithWriter(out))
	collab.Idle = terminal.NewIdle(sess.settings.IdleTimeout, nil)
	collab.Prompts = markedPrompt{filter: sess.prompts, marker: marker}

	ed, err := editor.New(sess.settings.EditorConfig(), collab)
	if err != nil {
		return nil, err
	}
	ed.SetPrompt(sess.settings.Prompt)
	if err := sess.configure(ed, width, height); err != nil {
		return nil, err
	}
	return ed, nil
}

// editLoop reads lines until input ends. Accepted lines are recorded and
// echoed as the line's output; an interrupted line is dropped.
func editLoop(ctx context.Context, ed *editor.Editor, sess *session, marker *shellintegration.Marker, w io.Writer) error {
	for {
		marker.LineStarted()
		line, err := ed.ReadLine(ctx)
		fmt.Fprint(w, "\r\n")
		switch {
		case errors.Is(err, editor.ErrInterrupted):
			marker.CommandEnded(130)
			continue
		case errors.Is(err, io.EOF):
			if line != "" {
				accept(sess, marker, w, line)
			}
			return nil
		case err != nil:
			return err
		}
		accept(sess, marker, w, line)
	}
}

func accept(sess *session, marker *shellintegration.Marker, w io.Writer, line string) {
	marker.OutputStarted()
	sess.record(line)
	fmt.Fprintf(w, "%s\r\n", line)
	marker.CommandEnded(0)
}
