package editor

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Actions of the default editing module.
const (
	actSelfInsert = iota
	actBackwardDeleteChar
	actDeleteChar
	actBackwardChar
	actForwardChar
	actBeginningOfLine
	actEndOfLine
	actKillLine
	actUnixLineDiscard
	actUnixWordRubout
	actUndo
	actAcceptLine
	actDeleteCharOrEOF
	actComplete
	actPreviousHistory
	actNextHistory
	actHistorySearchBackward
	actHistorySearchForward
	actInterrupt
)

var editActions = map[string]int{
	"self-insert":             actSelfInsert,
	"backward-delete-char":    actBackwardDeleteChar,
	"delete-char":             actDeleteChar,
	"backward-char":           actBackwardChar,
	"forward-char":            actForwardChar,
	"beginning-of-line":       actBeginningOfLine,
	"end-of-line":             actEndOfLine,
	"kill-line":               actKillLine,
	"unix-line-discard":       actUnixLineDiscard,
	"unix-word-rubout":        actUnixWordRubout,
	"undo":                    actUndo,
	"accept-line":             actAcceptLine,
	"delete-char-or-eof":      actDeleteCharOrEOF,
	"complete":                actComplete,
	"previous-history":        actPreviousHistory,
	"next-history":            actNextHistory,
	"history-search-backward": actHistorySearchBackward,
	"history-search-forward":  actHistorySearchForward,
	"interrupt":               actInterrupt,
}

var defaultEditBindings = []struct {
	keys   string
	action int
}{
	{"Backspace", actBackwardDeleteChar},
	{"C-h", actBackwardDeleteChar},
	{"Del", actDeleteChar},
	{"Left", actBackwardChar},
	{"C-b", actBackwardChar},
	{"Right", actForwardChar},
	{"C-f", actForwardChar},
	{"Home", actBeginningOfLine},
	{"C-a", actBeginningOfLine},
	{"End", actEndOfLine},
	{"C-e", actEndOfLine},
	{"C-k", actKillLine},
	{"C-u", actUnixLineDiscard},
	{"C-w", actUnixWordRubout},
	{"C-z", actUndo},
	{"C-_", actUndo},
	{"Enter", actAcceptLine},
	{"C-j", actAcceptLine},
	{"C-d", actDeleteCharOrEOF},
	{"Tab", actComplete},
	{"Up", actPreviousHistory},
	{"C-p", actPreviousHistory},
	{"Down", actNextHistory},
	{"C-n", actNextHistory},
	{"M-p", actHistorySearchBackward},
	{"M-n", actHistorySearchForward},
	{"C-c", actInterrupt},
}

// editModule implements the basic line editing actions.
type editModule struct {
	names map[int]string
}

func newEditModule() *editModule {
	names := make(map[int]string, len(editActions))
	for name, id := range editActions {
		names[id] = name
	}
	return &editModule{names: names}
}

func (m *editModule) Name() string {
	return "edit"
}

func (m *editModule) Actions() map[string]int {
	return editActions
}

func (m *editModule) BindInput(b *ModuleBinder) {
	group := b.DefaultGroup()
	b.SetDefault(group, actSelfInsert, m.names[actSelfInsert])
	for _, kb := range defaultEditBindings {
		b.Bind(group, kb.keys, kb.action, m.names[kb.action])
	}
}

func (m *editModule) OnBeginLine(*Context)      {}
func (m *editModule) OnEndLine()                {}
func (m *editModule) OnMatchesChanged(*Context) {}

func (m *editModule) OnInput(ctx context.Context, in Input, res *Result, ec *Context) {
	e := ec.Editor
	buf := ec.Buffer
	text, cursor := buf.Text(), buf.Cursor()

	switch in.ID {
	case actSelfInsert:
		buf.Insert(in.Keys)

	case actBackwardDeleteChar:
		if cursor > 0 {
			buf.Remove(prevRune(text, cursor), cursor)
		}

	case actDeleteChar:
		if cursor < len(text) {
			buf.Remove(cursor, nextRune(text, cursor))
		}

	case actDeleteCharOrEOF:
		if text == "" {
			res.Done(true)
			return
		}
		if cursor < len(text) {
			buf.Remove(cursor, nextRune(text, cursor))
		}

	case actBackwardChar:
		buf.SetCursor(prevRune(text, cursor))

	case actForwardChar:
		if cursor == len(text) {
			e.AcceptSuggestion()
			return
		}
		buf.SetCursor(nextRune(text, cursor))

	case actBeginningOfLine:
		buf.SetCursor(0)

	case actEndOfLine:
		if cursor == len(text) {
			e.AcceptSuggestion()
			return
		}
		buf.SetCursor(len(text))

	case actKillLine:
		buf.Remove(cursor, len(text))

	case actUnixLineDiscard:
		buf.Remove(0, cursor)
		buf.SetCursor(0)

	case actUnixWordRubout:
		start := cursor
		for start > 0 && text[start-1] == ' ' {
			start--
		}
		for start > 0 && text[start-1] != ' ' {
			start--
		}
		buf.Remove(start, cursor)
		buf.SetCursor(start)

	case actUndo:
		buf.Undo()

	case actAcceptLine:
		res.Done(false)

	case actComplete:
		m.complete(ctx, ec)

	case actPreviousHistory, actNextHistory:
		h := e.collab.History
		if h == nil {
			return
		}
		dir := -1
		if in.ID == actNextHistory {
			dir = 1
		}
		if line, ok := h.Navigate(dir); ok {
			e.OverrideLine(line, "", -1)
		}

	case actHistorySearchBackward, actHistorySearchForward:
		s := e.collab.Searcher
		if s == nil {
			return
		}
		dir := -1
		if in.ID == actHistorySearchForward {
			dir = 1
		}
		prefix := text[:cursor]
		if line, ok := s.SearchPrefix(prefix, dir); ok {
			e.OverrideLine(line, "", len(prefix))
			return
		}
		// A failed search leaves only the searched prefix.
		e.OverrideLine(prefix, "", len(prefix))

	case actInterrupt:
		e.Interrupt()
	}
}

// complete generates matches if needed and inserts the only match or the
// common prefix of all of them. Otherwise a module able to display matches
// is asked to show them.
func (m *editModule) complete(ctx context.Context, ec *Context) {
	e := ec.Editor
	e.Update()

	set := e.AwaitMatches(ctx)
	if set.IsEmpty() {
		return
	}
	if set.Count() == 1 {
		e.InsertMatch(set.At(0), true)
		return
	}

	needle := e.currentNeedle()
	if lcd := set.LowestCommonDenominator(); len(lcd) > len(needle) && strings.EqualFold(lcd[:len(needle)], needle) {
		e.InsertMatch(matchText(lcd), false)
		return
	}

	ec.Lines = e.lines
	ec.Matches = set
	for _, mod := range e.modules {
		if d, ok := mod.(MatchDisplayer); ok && d.ShowMatches(ec) {
			return
		}
	}
}

func prevRune(text string, pos int) int {
	if pos <= 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(text[:pos])
	return pos - size
}

func nextRune(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	return pos + size
}
