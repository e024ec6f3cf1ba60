package editor

import (
	"os"
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// wordBreakChars force a completed word into quotes.
const wordBreakChars = " \t&|<>()^=;,"

// InsertMatch replaces the typed part of the end word with match. When final
// is set the word is finished: a closing quote, then the match's suffix or a
// space. Directories get a trailing separator instead so completion can go on.
func (e *Editor) InsertMatch(match clinktypes.MatchDesc, final bool) {
	buf := e.collab.Buffer
	state := e.lines.ActiveState()
	cursor := buf.Cursor()

	word, ok := state.EndWord()
	if !ok {
		word = clinktypes.Word{Offset: cursor}
	}
	start := word.Offset
	if e.matches != nil && !e.matches.PrefixIncluded() && word.End() <= len(state.Line) {
		start += pathPrefixLen(state.Line[word.Offset:word.End()])
	}
	if start > cursor {
		start = cursor
	}

	quotes := e.collector.Quotes()
	open, closeQuote := quotes[:1], quotes[len(quotes)-1:]
	quoted := word.Quoted
	needQuote := !quoted && strings.ContainsAny(match.Text, wordBreakChars)

	buf.Remove(start, cursor)
	buf.SetCursor(start)
	if needQuote {
		buf.SetCursor(word.Offset)
		buf.Insert(open)
		buf.SetCursor(start + len(open))
		quoted = true
	}
	buf.Insert(match.Text)

	if !final {
		return
	}

	isDir := match.Type.Base() == clinktypes.MatchDir
	if isDir {
		if !strings.HasSuffix(match.Text, "/") && !strings.HasSuffix(match.Text, `\`) {
			buf.Insert(string(os.PathSeparator))
		}
		return
	}

	if quoted {
		text, pos := buf.Text(), buf.Cursor()
		if strings.HasPrefix(text[pos:], closeQuote) {
			buf.SetCursor(pos + len(closeQuote))
		} else {
			buf.Insert(closeQuote)
		}
	}
	if match.Suffix != 0 {
		buf.Insert(string(match.Suffix))
		return
	}
	text, pos := buf.Text(), buf.Cursor()
	if pos < len(text) && text[pos] == ' ' {
		buf.SetCursor(pos + 1)
		return
	}
	buf.Insert(" ")
}

func matchText(text string) clinktypes.MatchDesc {
	return clinktypes.MatchDesc{Text: text, Type: clinktypes.MatchNone}
}
