// Package shell hosts the line engine inside an ishell/readline session.
// Readline keeps the keyboard; completion, suggestions and coloring come from
// a headless Editor fed with each line readline reports.
package shell

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"github.com/A-SunsetMkt-Forks/clink/internal/collector"
	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/internal/terminal"
	"github.com/A-SunsetMkt-Forks/clink/internal/textbuf"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// DefaultCompleteTimeout bounds how long a completion request waits for
// cooperative generators.
const DefaultCompleteTimeout = 5 * time.Second

// noKeys is the key source of the headless editor. Readline owns input.
type noKeys struct{}

func (noKeys) Available(time.Duration) bool { return false }
func (noKeys) Peek() (byte, error)          { return 0, io.EOF }
func (noKeys) Read() (byte, error)          { return 0, io.EOF }

// Engine adapts an Editor to readline's AutoCompleter, Listener and Painter.
// Readline calls these from its own goroutine; Engine serializes them.
type Engine struct {
	mu      sync.Mutex
	editor  *editor.Editor
	buffer  *textbuf.Buffer
	printer *terminal.Printer
	ctx     context.Context
	timeout time.Duration
	logger  *log.Logger
}

var (
	_ readline.AutoCompleter = (*Engine)(nil)
	_ readline.Listener      = (*Engine)(nil)
	_ readline.Painter       = (*Engine)(nil)
)

// NewEngine creates an engine over the given collaborators. Buffer, Keys,
// Display and Output are supplied by the engine. A nil printer paints without
// colors.
func NewEngine(ctx context.Context, config editor.Config, collab editor.Collaborators, printer *terminal.Printer) (*Engine, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if printer == nil {
		printer = terminal.NewPrinter(terminal.PlainText())
	}

	buffer := textbuf.New("")
	collab.Buffer = buffer
	collab.Keys = noKeys{}
	collab.Display = nil
	collab.Output = io.Discard

	ed, err := editor.New(config, collab)
	if err != nil {
		return nil, err
	}
	return &Engine{
		editor:  ed,
		buffer:  buffer,
		printer: printer,
		ctx:     ctx,
		timeout: DefaultCompleteTimeout,
		logger:  logger.NewStyledLogger("Shell"),
	}, nil
}

// Editor returns the headless editor.
func (e *Engine) Editor() *editor.Editor {
	return e.editor
}

// SetTimeout changes how long completion waits for matches.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.timeout = d
	}
}

// sync makes the editor's line match what readline shows. pos counts runes.
func (e *Engine) sync(line []rune, pos int) string {
	pos = min(max(pos, 0), len(line))
	text := string(line)
	cursor := len(string(line[:pos]))

	if !e.editor.Flags().Has(editor.FlagEditing) {
		e.buffer.Reset("")
		if err := e.editor.BeginLine(e.ctx); err != nil {
			e.logger.Warn("Failed to begin line", "error", err)
		}
	}
	if e.buffer.Text() == text && e.buffer.Cursor() == cursor {
		return text
	}
	if e.buffer.Text() != text {
		e.buffer.ReplaceLine(text)
	}
	e.buffer.SetCursor(cursor)
	e.editor.Update()
	return text
}

// Do implements readline.AutoCompleter. Candidates are the rest of each
// match after the typed part of the end word, followed by what completing
// the match appends.
func (e *Engine) Do(line []rune, pos int) ([][]rune, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sync(line, pos)
	set, needle := e.complete()
	return candidates(set, needle), utf8.RuneCountInString(needle)
}

func (e *Engine) complete() (*matches.Set, string) {
	ctx, cancel := context.WithTimeout(e.ctx, e.timeout)
	defer cancel()
	set := e.editor.AwaitMatches(ctx)
	needle := e.editor.Needle()
	e.logger.Debug("Completed", "word", needle, "count", set.Count(), "generation", e.editor.GenerationID())
	return set, needle
}

// candidates keeps the matches that extend needle as typed. Readline only
// appends, so matches differing from the typed text in case are left out.
func candidates(set *matches.Set, needle string) [][]rune {
	var out [][]rune
	for _, m := range set.All() {
		if !strings.HasPrefix(m.Text, needle) {
			continue
		}
		out = append(out, []rune(m.Text[len(needle):]+ending(m)))
	}
	return out
}

func ending(m clinktypes.MatchDesc) string {
	if m.Type.Base() == clinktypes.MatchDir {
		if strings.HasSuffix(m.Text, "/") || strings.HasSuffix(m.Text, `\`) {
			return ""
		}
		return string(os.PathSeparator)
	}
	if m.Suffix != 0 {
		return string(m.Suffix)
	}
	return " "
}

// OnChange implements readline.Listener. It refreshes the suggestion after
// every key and accepts it on CharForward at the end of the line.
func (e *Engine) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	text := e.sync(line, pos)
	if key == readline.CharForward && e.buffer.Cursor() == len(text) && e.editor.AcceptSuggestion() {
		e.editor.Update()
		accepted := []rune(e.buffer.Text())
		return accepted, len(accepted), true
	}
	if e.editor.TrySuggest(e.ctx) {
		// Hand the line back unchanged so readline repaints the suggestion.
		return line, pos, true
	}
	return nil, 0, false
}

// Paint implements readline.Painter.
func (e *Engine) Paint(line []rune, pos int) []rune {
	e.mu.Lock()
	defer e.mu.Unlock()

	text := e.sync(line, pos)
	return []rune(e.printer.Paint(text, e.editor.Classifications(), e.editor.Suggestion()))
}

// Complete returns the matches for line with the cursor at its end and the
// text they were filtered by.
func (e *Engine) Complete(line string) ([]clinktypes.MatchDesc, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sync([]rune(line), utf8.RuneCountInString(line))
	set, needle := e.complete()
	return set.All(), needle
}

// Inspect returns every command of line with its word classes.
func (e *Engine) Inspect(line string) (clinktypes.CommandLineStates, clinktypes.Classifications) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sync([]rune(line), utf8.RuneCountInString(line))
	e.editor.Reclassify(editor.ReasonEdit)
	lines := e.editor.Collector().Collect(line, len(line), collector.WholeCommand)
	return lines, e.editor.Classifications()
}

// Suggestion returns the suggestion for line with the cursor at its end.
func (e *Engine) Suggestion(line string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sync([]rune(line), utf8.RuneCountInString(line))
	e.editor.TrySuggest(e.ctx)
	return e.editor.Suggestion()
}

// Accept ends the current line. The next call from readline starts a new one.
func (e *Engine) Accept() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.editor.Flags().Has(editor.FlagEditing) {
		return ""
	}
	line := e.editor.EndLine()
	e.buffer.Reset("")
	return line
}
