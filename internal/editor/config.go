package editor

import (
	"io"
	"time"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Config holds the editor's tunables.
type Config struct {
	// QuotePair is the open and close quote characters, e.g. `""`.
	QuotePair string
	// SequenceTimeout is how long an ambiguous key sequence waits for more keys.
	SequenceTimeout time.Duration
	// IdleTimeout is how long ReadLine waits for input before running idle work
	// (suggestions, polling cooperative generators).
	IdleTimeout time.Duration
	// SuggestEnabled turns history/hinter suggestions on.
	SuggestEnabled bool
	// AutoGenerate regenerates matches whenever the word being completed
	// changes instead of waiting for a completion key.
	AutoGenerate bool
	// MatchFilter selects how generated matches are narrowed by the typed word.
	MatchFilter matches.FilterMode
	// CommandCacheSize bounds the command-word classification cache.
	CommandCacheSize int
	// TestMode makes session ids deterministic.
	TestMode bool
}

// DefaultConfig returns the default editor configuration.
func DefaultConfig() Config {
	return Config{
		QuotePair:        clinktypes.DefaultQuotePair,
		SequenceTimeout:  bind.DefaultSequenceTimeout,
		IdleTimeout:      100 * time.Millisecond,
		SuggestEnabled:   true,
		AutoGenerate:     false,
		MatchFilter:      matches.FilterPrefix,
		CommandCacheSize: 256,
	}
}

// Collaborators are the external services the editor drives. Buffer and Keys
// are required; everything else is optional.
type Collaborators struct {
	Buffer     clinktypes.TextBuffer
	Keys       clinktypes.KeySource
	Output     io.Writer
	Display    Display
	Aliases    clinktypes.AliasLookup
	History    clinktypes.HistoryNavigator
	Searcher   clinktypes.HistorySearcher
	Generator  clinktypes.MatchGenerator
	Classifier clinktypes.WordClassifier
	Hinter     clinktypes.Hinter
	Idle       clinktypes.InputIdle
	// Prompts, when set, rewrites the prompt at the start of every line.
	Prompts clinktypes.PromptFilter
}

// View is what a Display needs to draw the line.
type View struct {
	Prompt     string
	Line       string
	Cursor     int
	Suggestion string
	Classes    clinktypes.Classifications
}

// Display draws the edited line.
type Display interface {
	Redraw(v View)
}
