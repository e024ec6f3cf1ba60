package editor

import (
	"context"
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/internal/collector"
)

// Suggestion returns the current suggestion: a full line extending the typed
// one, or "" when there is none.
func (e *Editor) Suggestion() string {
	return e.suggestion
}

// TrySuggest asks the hinter for a suggestion when no key is waiting and the
// cursor is at the end of the line. The buffer is never changed. It reports
// whether the suggestion changed.
func (e *Editor) TrySuggest(ctx context.Context) bool {
	h := e.collab.Hinter
	if h == nil || !e.config.SuggestEnabled || !e.flags.Has(FlagEditing) {
		return false
	}
	if e.collab.Keys.Available(0) {
		return false
	}

	prev := e.suggestion
	text, cursor := e.collab.Buffer.Text(), e.collab.Buffer.Cursor()
	if text == "" || cursor != len(text) {
		e.suggestion = ""
		return prev != e.suggestion
	}

	fp := collector.FingerprintOf(text, cursor)
	if e.suggestValid && e.suggestPrint == fp {
		return false
	}

	lines := e.collector.Collect(text, cursor, collector.StopAtCursor)
	e.suggestion = ""
	if s, ok := h.Suggest(ctx, lines); ok && len(s) > len(text) && strings.HasPrefix(s, text) {
		e.suggestion = s
	}
	e.suggestPrint = fp
	e.suggestValid = true
	return prev != e.suggestion
}

// AcceptSuggestion appends the rest of the suggestion to the line.
func (e *Editor) AcceptSuggestion() bool {
	buf := e.collab.Buffer
	text := buf.Text()
	if e.suggestion == "" || buf.Cursor() != len(text) || !strings.HasPrefix(e.suggestion, text) {
		return false
	}
	rest := e.suggestion[len(text):]
	e.suggestion = ""
	buf.Insert(rest)
	e.logger.Debug("Accepted suggestion", "inserted", rest)
	return true
}
