package tokenizer

import (
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// SkipLeadingParens skips whitespace and opening parens at the start of a
// command in line[pos:end]. It returns the position of the first real content
// and the number of parens skipped.
//
// When aliases is given and the upcoming word is an alias, nothing is skipped
// and the parens counted are the leading parens of the alias expansion, since
// those are what will actually open groups once the alias expands.
func SkipLeadingParens(line string, pos, end int, aliases clinktypes.AliasLookup) (int, int) {
	if end > len(line) {
		end = len(line)
	}
	for pos < end && isSpace(line[pos]) {
		pos++
	}

	if aliases != nil && pos < end {
		wordEnd := pos
		for wordEnd < end && !isSpace(line[wordEnd]) {
			wordEnd++
		}
		if expansion, ok := aliases.Lookup(line[pos:wordEnd]); ok {
			return pos, countLeadingParens(expansion)
		}
	}

	parens := 0
	for pos < end {
		c := line[pos]
		if c == '(' {
			parens++
		} else if !isSpace(c) {
			break
		}
		pos++
	}
	return pos, parens
}

func countLeadingParens(s string) int {
	parens := 0
	for _, c := range []byte(strings.TrimLeft(s, BasicWordBreaks)) {
		if c == '(' {
			parens++
		} else if !isSpace(c) {
			break
		}
	}
	return parens
}

// TrimTrailingParens strips up to parens unquoted closing parens from the end
// of the word at line[offset:offset+length]. It returns the new length and the
// number of parens consumed so the caller can lower its nesting depth.
func TrimTrailingParens(line string, offset, length, parens int) (int, int) {
	consumed := 0
	for consumed < parens && length > 0 {
		i := offset + length - 1
		if i >= len(line) || line[i] != ')' {
			break
		}
		if i > 0 && line[i-1] == escapeChar {
			break
		}
		length--
		consumed++
	}
	return length, consumed
}
