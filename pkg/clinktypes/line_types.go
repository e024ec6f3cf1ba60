// Package clinktypes defines the data model and collaborator contracts shared by
// the line editing engine: words, line states, match descriptions, word
// classifications and the interfaces of every external collaborator the engine
// drives (text buffer, key source, generators, classifiers, hinters, aliases).
package clinktypes

import "strings"

// DefaultQuotePair is the opening and closing quote used when none is configured.
const DefaultQuotePair = `""`

// Word is a lexical unit of a command line as delimited by shell rules.
// Offset and Length index into the owning LineState's Line. A leading opening
// quote and a trailing closing quote are not part of the span; embedded quotes are.
type Word struct {
	// Offset is the byte offset of the word inside the full line.
	Offset int
	// Length is the byte length of the word.
	Length int
	// Delim is the delimiter character immediately preceding the word, or 0.
	Delim byte
	// Quoted reports whether the word began with an opening quote.
	Quoted bool
	// IsAlias reports whether the word is a doskey alias name.
	IsAlias bool
	// IsRedirArg reports whether the word is the operand of a redirection.
	IsRedirArg bool
}

// End returns the offset one past the last byte of the word.
func (w Word) End() int {
	return w.Offset + w.Length
}

// LineState describes one logical command inside a line that may hold several
// commands joined by shell control operators.
type LineState struct {
	// Line is the full line text, not just the command's slice of it.
	Line string
	// Cursor is the cursor position inside Line.
	Cursor int
	// CommandOffset is the offset of the first character of this command.
	CommandOffset int
	// CommandWordIndex is the index of the command name in Words. It is greater
	// than zero when redirections precede the command name.
	CommandWordIndex int
	// Words are the command's words in order.
	Words []Word
	// Quotes is the quote pair the words were tokenized with.
	Quotes string
}

// WordCount returns the number of words in the command.
func (l LineState) WordCount() int {
	return len(l.Words)
}

// RawWord returns the text spanned by word i, or "" when i is out of range.
func (l LineState) RawWord(i int) string {
	if i < 0 || i >= len(l.Words) {
		return ""
	}
	w := l.Words[i]
	if w.Offset < 0 || w.End() > len(l.Line) {
		return ""
	}
	return l.Line[w.Offset:w.End()]
}

// GetWord returns word i with every quote character removed, so a generator
// completing `"foo\"ba` sees `foo\ba`.
func (l LineState) GetWord(i int) string {
	raw := l.RawWord(i)
	quotes := l.Quotes
	if quotes == "" {
		quotes = DefaultQuotePair
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(quotes, r) {
			return -1
		}
		return r
	}, raw)
}

// GetEndWord returns the last word with quotes removed. This is the word
// matches are generated for.
func (l LineState) GetEndWord() string {
	if len(l.Words) == 0 {
		return ""
	}
	return l.GetWord(len(l.Words) - 1)
}

// EndWord returns the last word and whether there is one.
func (l LineState) EndWord() (Word, bool) {
	if len(l.Words) == 0 {
		return Word{}, false
	}
	return l.Words[len(l.Words)-1], true
}

// CommandWord returns the command name word and whether the command has one.
func (l LineState) CommandWord() (Word, bool) {
	if l.CommandWordIndex < 0 || l.CommandWordIndex >= len(l.Words) {
		return Word{}, false
	}
	return l.Words[l.CommandWordIndex], true
}

// Clone returns a deep copy so the result can be handed to a task that outlives
// the caller's next edit.
func (l LineState) Clone() LineState {
	c := l
	if l.Words != nil {
		c.Words = make([]Word, len(l.Words))
		copy(c.Words, l.Words)
	}
	return c
}

// CommandLineStates holds one LineState per logical command of a line, plus the
// index of the command containing the cursor.
type CommandLineStates struct {
	States []LineState
	Active int
}

// Len returns the number of commands.
func (c CommandLineStates) Len() int {
	return len(c.States)
}

// ActiveState returns the command containing the cursor. An empty line yields
// an empty LineState.
func (c CommandLineStates) ActiveState() LineState {
	if c.Active < 0 || c.Active >= len(c.States) {
		return LineState{}
	}
	return c.States[c.Active]
}

// Clone returns a deep copy of every LineState.
func (c CommandLineStates) Clone() CommandLineStates {
	out := CommandLineStates{Active: c.Active}
	if c.States != nil {
		out.States = make([]LineState, len(c.States))
		for i, s := range c.States {
			out.States[i] = s.Clone()
		}
	}
	return out
}
