package clinktypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineState_Words(t *testing.T) {
	// git "a b" c
	state := LineState{
		Line:  `git "a b" c`,
		Words: []Word{{Offset: 0, Length: 3}, {Offset: 5, Length: 3, Quoted: true, Delim: ' '}, {Offset: 10, Length: 1, Delim: ' '}},
	}

	tests := []struct {
		name     string
		index    int
		raw      string
		unquoted string
	}{
		{name: "command", index: 0, raw: "git", unquoted: "git"},
		{name: "quoted", index: 1, raw: "a b", unquoted: "a b"},
		{name: "last", index: 2, raw: "c", unquoted: "c"},
		{name: "negative", index: -1, raw: "", unquoted: ""},
		{name: "past end", index: 3, raw: "", unquoted: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.raw, state.RawWord(tt.index))
			assert.Equal(t, tt.unquoted, state.GetWord(tt.index))
		})
	}

	assert.Equal(t, 3, state.WordCount())
	assert.Equal(t, "c", state.GetEndWord())
	end, ok := state.EndWord()
	assert.True(t, ok)
	assert.Equal(t, 11, end.End())
	cmd, ok := state.CommandWord()
	assert.True(t, ok)
	assert.Equal(t, 0, cmd.Offset)
}

func TestLineState_GetWordStripsQuotes(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		length   int
		quotes   string
		expected string
	}{
		{name: "embedded quote", line: `foo"ba`, length: 6, expected: "fooba"},
		{name: "custom pair", line: `[a]b`, length: 4, quotes: "[]", expected: "ab"},
		{name: "bad span", line: "ab", length: 10, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := LineState{Line: tt.line, Quotes: tt.quotes, Words: []Word{{Length: tt.length}}}
			assert.Equal(t, tt.expected, state.GetWord(0))
		})
	}
}

func TestLineState_Empty(t *testing.T) {
	var state LineState
	assert.Equal(t, "", state.GetEndWord())
	_, ok := state.EndWord()
	assert.False(t, ok)
	_, ok = state.CommandWord()
	assert.False(t, ok)
}

func TestCommandLineStates_CloneIsDeep(t *testing.T) {
	lines := CommandLineStates{
		States: []LineState{{Line: "a", Words: []Word{{Offset: 0, Length: 1}}}},
		Active: 0,
	}
	clone := lines.Clone()
	clone.States[0].Words[0].Length = 9

	assert.Equal(t, 1, lines.ActiveState().Words[0].Length)
	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, LineState{}, CommandLineStates{Active: 2}.ActiveState())
}

func TestMatchType(t *testing.T) {
	tests := []struct {
		input    string
		expected MatchType
		name     string
	}{
		{input: "", expected: MatchNone, name: "none"},
		{input: "word", expected: MatchWord, name: "word"},
		{input: "DIR hidden", expected: MatchDir | MatchHidden, name: "dir hidden"},
		{input: "file readonly", expected: MatchFile | MatchReadonly, name: "file readonly"},
		{input: "bogus link", expected: MatchLink, name: "link"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseMatchType(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.name, got.String())
		})
	}

	assert.Equal(t, "unset", MatchUnset.String())
	assert.True(t, (MatchFile | MatchHidden).IsHidden())
	assert.False(t, MatchFile.IsReadonly())
	assert.Equal(t, MatchDir, (MatchDir | MatchReadonly).Base())
}

func TestWordClass(t *testing.T) {
	tests := []struct {
		class    WordClass
		expected string
	}{
		{ClassNone, "none"},
		{ClassCommand, "command"},
		{ClassDoskey, "doskey"},
		{ClassExecutable, "executable"},
		{ClassUnrecognized, "unrecognized"},
		{ClassArgument, "argument"},
		{ClassFlag, "flag"},
		{ClassRedirect, "redirect"},
		{ClassOther, "other"},
		{WordClass('z'), "z"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
		})
	}

	classes := Classifications{Line: "ls -l", Words: []WordClassification{
		{Offset: 0, Length: 2, Class: ClassExecutable},
		{Offset: 3, Length: 2, Class: ClassFlag},
	}}
	assert.Equal(t, ClassExecutable, classes.ClassAt(1))
	assert.Equal(t, ClassNone, classes.ClassAt(2))
	assert.Equal(t, ClassFlag, classes.ClassAt(4))
}
