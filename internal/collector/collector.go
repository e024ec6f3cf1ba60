// Package collector turns a buffer snapshot into per-command line states.
package collector

import (
	"hash/fnv"

	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/tokenizer"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Mode selects how much of the line is collected.
type Mode int

const (
	// StopAtCursor collects up to the cursor. The word under the cursor is
	// truncated there and an empty end word is added after a trailing delimiter.
	StopAtCursor Mode = iota
	// WholeCommand collects every command and every word of the line.
	WholeCommand
)

func (m Mode) String() string {
	if m == WholeCommand {
		return "whole"
	}
	return "stop_at_cursor"
}

// Fingerprint identifies a buffer snapshot by content hash, length and cursor.
type Fingerprint struct {
	Hash   uint64
	Length int
	Cursor int
}

// FingerprintOf computes the fingerprint of text with the given cursor.
func FingerprintOf(text string, cursor int) Fingerprint {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return Fingerprint{Hash: h.Sum64(), Length: len(text), Cursor: cursor}
}

type entry struct {
	valid  bool
	print  Fingerprint
	states clinktypes.CommandLineStates
}

// Collector tokenizes lines into CommandLineStates and caches the most recent
// result per mode. It is not safe for concurrent use.
type Collector struct {
	quotes   string
	commands *tokenizer.CommandTokenizer
	words    *tokenizer.WordTokenizer
	cache    map[Mode]*entry
	runs     int
	logger   *log.Logger
}

// New creates a collector for the given quote pair. aliases may be nil.
func New(quotes string, aliases clinktypes.AliasLookup) *Collector {
	if quotes == "" {
		quotes = clinktypes.DefaultQuotePair
	}
	return &Collector{
		quotes:   quotes,
		commands: tokenizer.NewCommandTokenizer(),
		words:    tokenizer.NewWordTokenizer(aliases),
		cache:    make(map[Mode]*entry),
		logger:   logger.NewStyledLogger("Collector"),
	}
}

// SetAliases replaces the alias lookup and drops cached results.
func (c *Collector) SetAliases(aliases clinktypes.AliasLookup) {
	c.words.SetAliases(aliases)
	c.Invalidate()
}

// Quotes returns the quote pair in use.
func (c *Collector) Quotes() string {
	return c.quotes
}

// Invalidate drops every cached result.
func (c *Collector) Invalidate() {
	for _, e := range c.cache {
		e.valid = false
	}
}

// TokenizeCount returns how many times a line was actually tokenized.
func (c *Collector) TokenizeCount() int {
	return c.runs
}

// Collect returns the command states for text with the given cursor. A call
// with the same text, cursor and mode as the previous one returns the cached
// result without tokenizing. The result must not be modified.
func (c *Collector) Collect(text string, cursor int, mode Mode) clinktypes.CommandLineStates {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}

	fp := FingerprintOf(text, cursor)
	e := c.cache[mode]
	if e == nil {
		e = &entry{}
		c.cache[mode] = e
	}
	if e.valid && e.print == fp {
		return e.states
	}

	e.states = c.collect(text, cursor, mode)
	e.print = fp
	e.valid = true
	c.runs++

	c.logger.Debug("Collected line", "mode", mode, "commands", e.states.Len(), "active", e.states.Active)
	return e.states
}

func (c *Collector) collect(text string, cursor int, mode Mode) clinktypes.CommandLineStates {
	var out clinktypes.CommandLineStates
	active := -1

	c.commands.Start(text, 0, len(text), c.quotes, true)
	c.words.SetParenDepth(0)

	for cmd, ok := c.commands.Next(); ok; cmd, ok = c.commands.Next() {
		begin, end := cmd.Offset, cmd.End()
		if mode == StopAtCursor && begin > cursor {
			break
		}

		hasCursor := begin <= cursor && cursor <= end
		state := clinktypes.LineState{
			Line:          text,
			Cursor:        cursor,
			CommandOffset: begin,
			Quotes:        c.quotes,
		}

		stop := mode == StopAtCursor && hasCursor
		lastRawEnd := -1
		pendingRedir := false
		c.words.Start(text, begin, end, c.quotes, true)
		for tok, ok := c.words.Next(); ok; tok, ok = c.words.Next() {
			if stop && tok.RawOffset >= cursor {
				break
			}
			lastRawEnd = tok.RawEnd
			if tok.Kind != tokenizer.TokenWord {
				last := text[tok.RawEnd-1]
				pendingRedir = last == '<' || last == '>'
				continue
			}
			pendingRedir = false

			word := clinktypes.Word{
				Offset:     tok.Offset,
				Length:     tok.Length,
				Delim:      tok.Delim,
				Quoted:     tok.Quoted,
				IsAlias:    tok.Alias,
				IsRedirArg: tok.RedirArg,
			}
			if stop && word.End() > cursor {
				word.Length = cursor - word.Offset
				if word.Length < 0 {
					word.Length = 0
				}
			}
			state.Words = append(state.Words, word)
		}

		if stop && lastRawEnd < cursor {
			state.Words = append(state.Words, clinktypes.Word{
				Offset:     cursor,
				Delim:      delimAt(text, cursor-1),
				IsRedirArg: pendingRedir,
			})
		}

		state.CommandWordIndex = commandWordIndex(state.Words)
		out.States = append(out.States, state)
		if hasCursor && active < 0 {
			active = len(out.States) - 1
		}
	}

	if active < 0 {
		active = len(out.States) - 1
	}
	out.Active = active
	return out
}

func commandWordIndex(words []clinktypes.Word) int {
	for i, w := range words {
		if !w.IsRedirArg {
			return i
		}
	}
	return len(words)
}

func delimAt(text string, i int) byte {
	if i < 0 || i >= len(text) {
		return 0
	}
	switch c := text[i]; c {
	case ' ', '\t', '=', ';', ',':
		return c
	}
	return 0
}
