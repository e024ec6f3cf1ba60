package clinktypes

import (
	"context"
	"time"
)

// TextBuffer is the editable line owned by the host editing session. The engine
// never touches its memory directly, only this contract.
type TextBuffer interface {
	Text() string
	Cursor() int
	SetCursor(pos int)
	Mark() int
	SetMark(pos int)
	// Insert inserts s at the cursor and moves the cursor past it.
	Insert(s string)
	// Remove deletes the bytes in [from, to).
	Remove(from, to int)
	// ReplaceLine replaces the whole line and moves the cursor to its end.
	ReplaceLine(s string)
	// Undo reverts the last change and reports whether there was one.
	Undo() bool
}

// KeySource feeds raw input bytes to the bind resolver.
type KeySource interface {
	// Available waits up to timeout for input and reports whether any is ready.
	// A zero timeout polls.
	Available(timeout time.Duration) bool
	// Peek returns the next byte without consuming it.
	Peek() (byte, error)
	// Read consumes and returns the next byte. It returns io.EOF once the
	// source is exhausted.
	Read() (byte, error)
}

// InputIdle reports timeout-driven idle ticks.
type InputIdle interface {
	// Timeout is how long to wait for input before OnIdle fires; zero or less
	// disables idle ticks.
	Timeout() time.Duration
	// OnIdle is called when no input arrived within Timeout.
	OnIdle()
}

// AliasLookup resolves doskey aliases.
type AliasLookup interface {
	Lookup(word string) (expansion string, ok bool)
}

// HistoryNavigator walks the command history. Direction is -1 for older
// entries and +1 for newer ones.
type HistoryNavigator interface {
	Navigate(direction int) (line string, ok bool)
	// Reset returns the navigation position to the end of history.
	Reset()
}

// HistorySearcher performs anchored prefix searches through history.
type HistorySearcher interface {
	SearchPrefix(prefix string, direction int) (line string, ok bool)
}

// MatchGenerator produces completion candidates for a line. Returning true
// claims the request so that lower priority generators are skipped.
type MatchGenerator interface {
	Generate(ctx context.Context, lines CommandLineStates, b MatchBuilder) (bool, error)
}

// CooperativeGenerator is a MatchGenerator that may take a while. The editor
// runs it as a task and keeps dispatching input until its result arrives.
type CooperativeGenerator interface {
	MatchGenerator
	Cooperative() bool
}

// WordClassifier assigns coloring classes to words.
type WordClassifier interface {
	// ClassifyCommand classifies a command name. The editor caches results per
	// (word, quoted) so retyping a seen command skips this call.
	ClassifyCommand(word string, quoted bool) WordClass
	// Classify fills out, one entry per word of line. The entries arrive
	// pre-filled with defaults, including the command word's class.
	Classify(line LineState, out []WordClass)
}

// CommandObserver is notified when the command word of the edited command changes.
type CommandObserver interface {
	OnCommand(line LineState, word string, quoted bool)
}

// PromptFilter rewrites the prompt before a line is edited. It runs once per
// line.
type PromptFilter interface {
	FilterPrompt(ctx context.Context, prompt string) string
}

// Hinter proposes a suggestion for the current line. The suggestion is the
// full suggested line; only the part beyond the typed text is displayed.
type Hinter interface {
	Suggest(ctx context.Context, lines CommandLineStates) (string, bool)
}
