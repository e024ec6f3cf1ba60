package picker

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/testutils"
	"github.com/A-SunsetMkt-Forks/clink/internal/textbuf"
)

const (
	keyHistory = "\x1b[18~"
	keySelect  = "\x00"
	keyUp      = "\x1b[A"
	keyDown    = "\x1b[B"
)

type fakeHistory []string

func (h fakeHistory) Entries() []string {
	return h
}

type fixture struct {
	editor *editor.Editor
	picker *Picker
	buf    *textbuf.Buffer
	keys   *testutils.ScriptedKeys
	out    *bytes.Buffer
}

func setupTestPicker(t *testing.T, width, height int, matches ...string) *fixture {
	t.Helper()
	return setupFixture(t, New(width, height), matches...)
}

func setupFixture(t *testing.T, p *Picker, matches ...string) *fixture {
	t.Helper()
	f := &fixture{
		buf:  textbuf.New(""),
		keys: testutils.NewScriptedKeys(),
		out:  &bytes.Buffer{},
	}

	cfg := editor.DefaultConfig()
	cfg.TestMode = true
	cfg.SequenceTimeout = time.Millisecond
	e, err := editor.New(cfg, editor.Collaborators{
		Buffer:    f.buf,
		Keys:      f.keys,
		Output:    f.out,
		Generator: testutils.NewStaticGenerator(matches...),
	})
	require.NoError(t, err)

	f.picker = p
	require.NoError(t, e.AddModule(f.picker))
	require.NoError(t, e.BeginLine(context.Background()))
	f.editor = e
	return f
}

func (f *fixture) feed(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		f.keys.Push(k)
		for f.keys.Remaining() != "" {
			require.NoError(t, f.editor.Dispatch(context.Background()))
		}
	}
}

// lastFrame returns the plain text drawn after the last clear.
func (f *fixture) lastFrame() string {
	s := f.out.String()
	if i := strings.LastIndex(s, clearBelow); i >= 0 {
		s = s[i+len(clearBelow):]
	}
	return ansi.Strip(s)
}

func selectedText(t *testing.T, p *Picker) string {
	t.Helper()
	m, ok := p.Selected()
	require.True(t, ok, "picker should be active")
	return m.Text
}

func TestPicker_Navigate(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		expected string
	}{
		{name: "initial", keys: nil, expected: "apple"},
		{name: "tab", keys: []string{"\t"}, expected: "apricot"},
		{name: "down twice", keys: []string{keyDown, keyDown}, expected: "banana"},
		{name: "wraps forward", keys: []string{"\t", "\t", "\t"}, expected: "apple"},
		{name: "wraps backward", keys: []string{keyUp}, expected: "banana"},
		{name: "ctrl keys", keys: []string{"\x0e", "\x0e", "\x10"}, expected: "apricot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestPicker(t, 80, 10, "banana", "apricot", "apple")
			f.feed(t, keySelect)
			require.True(t, f.picker.Active())
			assert.True(t, f.editor.Flags().Has(editor.FlagSelecting))

			f.feed(t, tt.keys...)
			assert.Equal(t, tt.expected, selectedText(t, f.picker))
			assert.Empty(t, f.buf.Text())
		})
	}
}

func TestPicker_Accept(t *testing.T) {
	f := setupTestPicker(t, 80, 10, "banana", "apricot", "apple")
	f.feed(t, keySelect, "\t", "\r")

	assert.Equal(t, "apricot ", f.buf.Text())
	assert.False(t, f.picker.Active())
	assert.False(t, f.editor.Flags().Has(editor.FlagSelecting))

	f.feed(t, "x")
	assert.Equal(t, "apricot x", f.buf.Text(), "default group is restored")
}

func TestPicker_AcceptReplacesTypedPrefix(t *testing.T) {
	f := setupTestPicker(t, 80, 10, "alpha", "alps")
	f.feed(t, "a", "l", keySelect, keyDown, "\r")
	assert.Equal(t, "alps ", f.buf.Text())
}

func TestPicker_Cancel(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "escape", key: "\x1b", expected: ""},
		{name: "ctrl-g", key: "\x07", expected: ""},
		{name: "ctrl-c", key: "\x03", expected: ""},
		{name: "printable key is inserted", key: "z", expected: "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestPicker(t, 80, 10, "one", "two")
			f.feed(t, keySelect, tt.key)

			assert.Equal(t, tt.expected, f.buf.Text())
			assert.False(t, f.picker.Active())
			assert.False(t, f.editor.Flags().Has(editor.FlagSelecting))
			assert.Empty(t, f.lastFrame(), "the grid is erased")
		})
	}
}

func TestPicker_SingleMatch(t *testing.T) {
	f := setupTestPicker(t, 80, 10, "only")
	f.feed(t, keySelect)

	assert.Equal(t, "only ", f.buf.Text())
	assert.False(t, f.picker.Active())
	assert.Empty(t, f.out.String())
}

func TestPicker_NoMatches(t *testing.T) {
	f := setupTestPicker(t, 80, 10)
	f.feed(t, keySelect)

	assert.Empty(t, f.buf.Text())
	assert.False(t, f.picker.Active())
}

func TestPicker_Draw(t *testing.T) {
	f := setupTestPicker(t, 80, 10, "banana", "apricot", "apple")
	f.feed(t, keySelect)
	assert.Equal(t, "apple    apricot  banana", f.lastFrame())
}

func TestPicker_Scrolls(t *testing.T) {
	f := setupTestPicker(t, 5, 1, "alpha", "bravo", "delta")

	f.feed(t, keySelect)
	assert.Equal(t, "alpha", f.lastFrame())

	f.feed(t, keyDown)
	assert.Equal(t, "bravo", f.lastFrame())

	f.feed(t, keyDown)
	assert.Equal(t, "delta", f.lastFrame())

	f.feed(t, keyDown)
	assert.Equal(t, "alpha", f.lastFrame())
}

func TestPicker_LineEndsWhileOpen(t *testing.T) {
	tests := []struct {
		name string
		end  func(t *testing.T, f *fixture)
	}{
		{name: "interrupt", end: func(t *testing.T, f *fixture) {
			f.editor.Interrupt()
			assert.ErrorIs(t, f.editor.Dispatch(context.Background()), editor.ErrInterrupted)
		}},
		{name: "end of input", end: func(t *testing.T, f *fixture) {
			assert.ErrorIs(t, f.editor.Dispatch(context.Background()), io.EOF)
		}},
		{name: "line ended", end: func(*testing.T, *fixture) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestPicker(t, 80, 10, "banana", "apricot", "apple")
			f.feed(t, "a", keySelect)
			require.True(t, f.picker.Active())

			tt.end(t, f)
			f.editor.EndLine()
			f.buf.ReplaceLine("")
			require.NoError(t, f.editor.BeginLine(context.Background()))
			assert.False(t, f.picker.Active())
			assert.False(t, f.editor.Flags().Has(editor.FlagSelecting))

			f.feed(t, keyDown, "b", "\r")
			assert.Equal(t, "b", f.buf.Text())
			assert.True(t, f.editor.Flags().Has(editor.FlagDone))
		})
	}
}

func TestPicker_KeysWithoutItems(t *testing.T) {
	f := setupTestPicker(t, 80, 10, "one", "two")
	require.NoError(t, f.editor.PushGroup(f.picker.group))

	f.feed(t, keyDown, keyUp)
	assert.False(t, f.picker.Active())

	require.NoError(t, f.editor.PushGroup(f.picker.group))
	f.feed(t, "\r")
	assert.Empty(t, f.buf.Text())
	assert.Empty(t, f.out.String())
}

func TestPicker_HistoryPopup(t *testing.T) {
	entries := fakeHistory{"ls", "git status", "ls", "", "git push"}

	tests := []struct {
		name     string
		keys     []string
		expected string
	}{
		{name: "newest selected", keys: []string{"\r"}, expected: "git push"},
		{name: "up recalls older", keys: []string{keyUp, "\r"}, expected: "ls"},
		{name: "repeats listed once", keys: []string{keyUp, keyUp, "\r"}, expected: "git status"},
		{name: "wraps to oldest", keys: []string{keyDown, "\r"}, expected: "git status"},
		{name: "escape keeps the line", keys: []string{"\x1b"}, expected: "typed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t, New(80, 10, WithHistory(entries)))
			f.feed(t, "typed", keyHistory)
			require.True(t, f.picker.Recalling())
			assert.True(t, f.editor.Flags().Has(editor.FlagSelecting))
			assert.Equal(t, 1, strings.Count(f.lastFrame(), "ls"))

			f.feed(t, tt.keys...)
			assert.Equal(t, tt.expected, f.buf.Text())
			assert.False(t, f.picker.Active())
			assert.False(t, f.editor.Flags().Has(editor.FlagSelecting))
		})
	}
}

func TestPicker_HistoryPopupEmpty(t *testing.T) {
	tests := []struct {
		name   string
		picker *Picker
	}{
		{name: "no history source", picker: New(80, 10)},
		{name: "empty history", picker: New(80, 10, WithHistory(fakeHistory{""}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t, tt.picker)
			f.feed(t, "x", keyHistory, "y")
			assert.False(t, f.picker.Active())
			assert.Equal(t, "xy", f.buf.Text())
			assert.Empty(t, f.out.String())
		})
	}
}

func TestPicker_HistoryThenComplete(t *testing.T) {
	f := setupFixture(t, New(80, 10, WithHistory(fakeHistory{"git status"})), "alpha", "alps")
	f.feed(t, keyHistory, "\r")
	assert.Equal(t, "git status", f.buf.Text())

	f.buf.ReplaceLine("")
	f.feed(t, "a", keySelect)
	require.True(t, f.picker.Active())
	assert.False(t, f.picker.Recalling())
	f.feed(t, "\r")
	assert.Equal(t, "alpha ", f.buf.Text())
}
