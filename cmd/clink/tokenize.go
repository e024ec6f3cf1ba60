package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/A-SunsetMkt-Forks/clink/internal/shell"
	"github.com/A-SunsetMkt-Forks/clink/internal/terminal"
)

const tokenizePrompt = "tokenize> "

// lineReader reads one edited line at a time.
type lineReader interface {
	Readline() (string, error)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	workDir, _ := os.Getwd()
	sess, err := newSession(cmd.Context(), settings, workDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	in := cmd.InOrStdin()
	interactive := len(args) == 0 && isTerminalInput(in)

	printer := terminal.NewPrinter(terminal.PlainText())
	if interactive {
		printer = terminal.NewPrinter()
	}
	engine, err := shell.NewEngine(cmd.Context(), sess.settings.EditorConfig(), sess.collaborators(), printer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		tokenize(engine, out, strings.Join(args, " "))
		return nil
	}
	if interactive {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:       tokenizePrompt,
			AutoComplete: engine,
			Listener:     engine,
			Painter:      engine,
			HistoryLimit: -1,
		})
		if err != nil {
			return fmt.Errorf("starting readline: %w", err)
		}
		defer rl.Close()
		return tokenizeLoop(engine, rl, rl.Stdout())
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokenize(engine, out, scanner.Text())
	}
	return scanner.Err()
}

func isTerminalInput(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && terminal.IsTerminal(int(f.Fd()))
}

// tokenizeLoop prints every line read from rl until input ends. Ctrl-C
// clears a line and quits on an empty one.
func tokenizeLoop(engine *shell.Engine, rl lineReader, w io.Writer) error {
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			engine.Accept()
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(line) == "" {
			engine.Accept()
			continue
		}
		tokenize(engine, w, line)
	}
}

// tokenize prints the commands and words of line.
func tokenize(engine *shell.Engine, w io.Writer, line string) {
	lines, classes := engine.Inspect(line)
	engine.Accept()
	fmt.Fprintln(w, shell.FormatStates(lines, classes))
}
