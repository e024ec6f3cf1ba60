package editor

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/history"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/internal/testutils"
	"github.com/A-SunsetMkt-Forks/clink/internal/textbuf"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

type testEditor struct {
	*Editor
	buf  *textbuf.Buffer
	keys *testutils.ScriptedKeys
}

func setupTestEditor(t *testing.T, configure func(*Config, *Collaborators)) *testEditor {
	t.Helper()
	buf := textbuf.New("")
	keys := testutils.NewScriptedKeys()

	cfg := DefaultConfig()
	cfg.TestMode = true
	cfg.IdleTimeout = time.Millisecond
	cfg.SequenceTimeout = time.Millisecond
	collab := Collaborators{Buffer: buf, Keys: keys}
	if configure != nil {
		configure(&cfg, &collab)
	}

	e, err := New(cfg, collab)
	require.NoError(t, err)
	return &testEditor{Editor: e, buf: buf, keys: keys}
}

// feed queues keys and dispatches until they are consumed.
func (te *testEditor) feed(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		te.keys.Push(k)
	}
	for te.keys.Remaining() != "" {
		require.NoError(t, te.Dispatch(context.Background()))
	}
}

func TestEditor_New(t *testing.T) {
	_, err := New(DefaultConfig(), Collaborators{Keys: testutils.NewScriptedKeys()})
	assert.Error(t, err)

	_, err = New(DefaultConfig(), Collaborators{Buffer: textbuf.New("")})
	assert.Error(t, err)

	e := setupTestEditor(t, nil)
	require.Len(t, e.Modules(), 1)
	assert.Equal(t, "edit", e.Modules()[0].Name())
	assert.True(t, e.Binder().IsBound(0, bind.KeyTab))
}

func TestEditor_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		keys     string
		expected string
		err      error
	}{
		{name: "plain text", keys: "dir /w\r", expected: "dir /w"},
		{name: "backspace", keys: "dirr\x7f\r", expected: "dir"},
		{name: "left and insert", keys: "ac\x1b[Db\r", expected: "abc"},
		{name: "home and delete", keys: "xabc\x1b[H\x1b[3~\r", expected: "abc"},
		{name: "ctrl-a and ctrl-e", keys: "bc\x01a\x05d\r", expected: "abcd"},
		{name: "kill line", keys: "abcdef\x1b[D\x1b[D\x0b\r", expected: "abcd"},
		{name: "line discard", keys: "abc\x15xyz\r", expected: "xyz"},
		{name: "word rubout", keys: "cd some dir\x17\r", expected: "cd some "},
		{name: "undo", keys: "abc\x1a\r", expected: "ab"},
		{name: "utf8 backspace", keys: "añ\x7f\r", expected: "a"},
		{name: "eof on empty line", keys: "\x04", expected: "", err: io.EOF},
		{name: "ctrl-d deletes", keys: "ab\x1b[D\x04\r", expected: "a"},
		{name: "input ends", keys: "abc", expected: "abc", err: io.EOF},
		{name: "interrupt", keys: "abc\x03", expected: "", err: ErrInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupTestEditor(t, nil)
			e.keys.Push(tt.keys)

			line, err := e.ReadLine(context.Background())
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, line)
			assert.True(t, e.Flags().Has(FlagDone))
			assert.False(t, e.Flags().Has(FlagEditing))
		})
	}
}

func TestEditor_ReadLineCancelledContext(t *testing.T) {
	e := setupTestEditor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEditor_DispatchRequiresLine(t *testing.T) {
	e := setupTestEditor(t, nil)
	assert.ErrorIs(t, e.Dispatch(context.Background()), ErrNotEditing)
}

func TestEditor_BeginLine(t *testing.T) {
	testutils.ResetTestCounters()
	e := setupTestEditor(t, nil)

	require.NoError(t, e.BeginLine(context.Background()))
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", e.Session())
	assert.True(t, e.Flags().Has(FlagInit|FlagEditing|FlagGenerate))
	assert.False(t, e.Flags().Has(FlagDone))

	e.EndLine()
	require.NoError(t, e.BeginLine(context.Background()))
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", e.Session())
}

func TestEditor_LineEndRestoresDefaultGroup(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
	}{
		{name: "one group", pushes: 1},
		{name: "nested groups", pushes: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupTestEditor(t, nil)
			modal := e.Binder().CreateGroup("modal")
			require.NoError(t, e.BeginLine(context.Background()))
			for i := 0; i < tt.pushes; i++ {
				require.NoError(t, e.PushGroup(modal))
			}
			e.SetSelecting(true)

			e.EndLine()
			assert.False(t, e.Flags().Has(FlagSelecting))

			e.keys.Push("ok\r")
			line, err := e.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "ok", line)
		})
	}
}

func TestEditor_CompleteSingleMatch(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		matches  []clinktypes.MatchDesc
		expected string
	}{
		{
			name:     "word gets a space",
			line:     "he",
			matches:  []clinktypes.MatchDesc{{Text: "hello"}},
			expected: "hello ",
		},
		{
			name:     "second word",
			line:     "git ch",
			matches:  []clinktypes.MatchDesc{{Text: "checkout"}},
			expected: "git checkout ",
		},
		{
			name:     "suffix replaces space",
			line:     "set PA",
			matches:  []clinktypes.MatchDesc{{Text: "PATH", Suffix: '='}},
			expected: "set PATH=",
		},
		{
			name:     "spaces are quoted",
			line:     "cd Prog",
			matches:  []clinktypes.MatchDesc{{Text: "Program Files", Type: clinktypes.MatchFile}},
			expected: `cd "Program Files" `,
		},
		{
			name:     "case of the match wins",
			line:     "ECH",
			matches:  []clinktypes.MatchDesc{{Text: "echo"}},
			expected: "echo ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &testutils.StaticGenerator{Matches: tt.matches}
			e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
			require.NoError(t, e.BeginLine(context.Background()))

			e.feed(t, tt.line, "\t")
			assert.Equal(t, tt.expected, e.buf.Text())
			assert.Equal(t, len(tt.expected), e.buf.Cursor())
			assert.Equal(t, 1, gen.Calls())
		})
	}
}

func TestEditor_CompleteDirectory(t *testing.T) {
	gen := &testutils.StaticGenerator{Matches: []clinktypes.MatchDesc{{Text: "src/", Type: clinktypes.MatchDir}}}
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "cd s\t")
	assert.Equal(t, "cd src/", e.buf.Text())
}

func TestEditor_CompleteCommonPrefix(t *testing.T) {
	gen := testutils.NewStaticGenerator("help", "hello", "world")
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "h\t")
	assert.Equal(t, "hel", e.buf.Text())
	testutils.NewAssertionHelpers(t).AssertMatchTexts(e.Matches().Texts(), "hello", "help")

	// Nothing more in common: the line stays and no new generation runs.
	e.feed(t, "\t")
	assert.Equal(t, "hel", e.buf.Text())
	assert.Equal(t, 1, gen.Calls())

	e.feed(t, "p\t")
	assert.Equal(t, "help ", e.buf.Text())
	assert.Equal(t, 1, gen.Calls())
}

func TestEditor_MatchesRefilterAndDrop(t *testing.T) {
	gen := testutils.NewStaticGenerator("alpha", "beta", "alpine")
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.ForceUpdateMatches()
	assert.Equal(t, []string{"alpha", "alpine", "beta"}, e.Matches().Texts())

	e.feed(t, "al")
	assert.Equal(t, []string{"alpha", "alpine"}, e.Matches().Texts())
	assert.Equal(t, "al", e.Needle())

	e.feed(t, "pi")
	assert.Equal(t, []string{"alpine"}, e.Matches().Texts())

	// Starting a new word makes the matches stale.
	e.feed(t, " ")
	assert.True(t, e.Matches().IsEmpty())
	assert.True(t, e.Flags().Has(FlagGenerate))
	assert.Equal(t, 1, gen.Calls())
}

func TestEditor_AutoGenerate(t *testing.T) {
	gen := testutils.NewStaticGenerator("one", "two")
	e := setupTestEditor(t, func(cfg *Config, c *Collaborators) {
		cfg.AutoGenerate = true
		c.Generator = gen
	})
	require.NoError(t, e.BeginLine(context.Background()))
	assert.Equal(t, 1, gen.Calls())

	e.feed(t, "o")
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, []string{"one"}, e.Matches().Texts())

	e.feed(t, "ne t")
	assert.Equal(t, 2, gen.Calls())
	assert.Equal(t, []string{"two"}, e.Matches().Texts())

	last := gen.LastLines().ActiveState()
	assert.Equal(t, "one ", last.Line[:last.Cursor])
	assert.Equal(t, 2, last.WordCount())
	assert.Equal(t, "", last.GetEndWord())
}

func TestEditor_StaleResultsAreDiscarded(t *testing.T) {
	gen := testutils.NewStaticGenerator("current")
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.ForceUpdateMatches()
	stale := e.GenerationID()
	e.ForceUpdateMatches()
	require.Equal(t, stale+1, e.GenerationID())

	old := matches.NewSet()
	require.NoError(t, old.Add(clinktypes.MatchDesc{Text: "old"}))
	assert.False(t, e.NotifyMatchesReady(stale, old, nil))
	assert.Equal(t, []string{"current"}, e.Matches().Texts())

	fresh := matches.NewSet()
	require.NoError(t, fresh.Add(clinktypes.MatchDesc{Text: "fresh"}))
	assert.True(t, e.NotifyMatchesReady(e.GenerationID(), fresh, nil))
	assert.Equal(t, []string{"fresh"}, e.Matches().Texts())
}

func TestEditor_GeneratorError(t *testing.T) {
	gen := testutils.NewStaticGenerator("never")
	gen.Err = errors.New("generator exploded")
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.ForceUpdateMatches()
	assert.True(t, e.Matches().IsEmpty())
	assert.False(t, e.Flags().Has(FlagGenerate))
	assert.True(t, e.Flags().Has(FlagEditing))

	e.feed(t, "n\t")
	assert.Equal(t, "n", e.buf.Text())
}

func TestEditor_AwaitMatchesGivesUp(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.UpdateMatches()
	n, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, e.AwaitMatches(ctx).IsEmpty())
	assert.True(t, e.IsRegenBlocked(), "the task keeps running")

	gen.Release(n, "late")
	require.Eventually(t, e.Poll, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"late"}, e.Matches().Texts())
	assert.False(t, e.IsRegenBlocked())
}

func TestEditor_CooperativeGeneration(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(cfg *Config, c *Collaborators) {
		cfg.AutoGenerate = true
		c.Generator = gen
	})
	require.NoError(t, e.BeginLine(context.Background()))

	first, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)
	assert.Equal(t, 0, first)
	assert.True(t, e.IsRegenBlocked())
	assert.Equal(t, uint64(1), e.GenerationID())

	// A new word while blocked defers the request.
	e.feed(t, "a ")
	assert.True(t, e.IsRegenBlocked())
	assert.Equal(t, uint64(1), e.GenerationID())

	// The in-flight result is superseded; the deferred request starts.
	gen.Release(first, "stale")
	require.Eventually(t, e.Poll, time.Second, 5*time.Millisecond)
	assert.True(t, e.Matches().IsEmpty())

	second, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, second)
	assert.Equal(t, uint64(2), e.GenerationID())

	gen.Release(second, "x2", "x1")
	require.Eventually(t, e.Poll, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"x1", "x2"}, e.Matches().Texts())
	assert.False(t, e.IsRegenBlocked())
	assert.False(t, e.Flags().Has(FlagGenerate))
}

func TestEditor_CooperativeSuperseded(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.UpdateMatches()
	first, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)

	e.ForceUpdateMatches()
	second, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)

	// The older request finishes first and is still ignored.
	gen.Release(first, "old")
	gen.Release(second, "new")
	require.Eventually(t, e.Poll, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"new"}, e.Matches().Texts())
	assert.False(t, e.IsRegenBlocked())
}

func TestEditor_CooperativeFailure(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	e.UpdateMatches()
	n, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)

	gen.Fail(n, errors.New("slow source failed"))
	require.Eventually(t, e.Poll, time.Second, 5*time.Millisecond)
	assert.True(t, e.Matches().IsEmpty())
	assert.False(t, e.Flags().Has(FlagGenerate))
}

func TestEditor_CompleteWaitsForCooperative(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))

	go func() {
		n, ok := gen.WaitStarted(time.Second)
		if ok {
			gen.Release(n, "status")
		}
	}()

	e.feed(t, "st\t")
	assert.Equal(t, "status ", e.buf.Text())
}

func TestEditor_Interrupt(t *testing.T) {
	gen := testutils.NewBlockingGenerator()
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Generator = gen })
	require.NoError(t, e.BeginLine(context.Background()))
	e.feed(t, "abc")

	e.UpdateMatches()
	_, ok := gen.WaitStarted(time.Second)
	require.True(t, ok)
	id := e.GenerationID()

	e.Interrupt()
	assert.ErrorIs(t, e.Dispatch(context.Background()), ErrInterrupted)
	assert.False(t, e.IsRegenBlocked())
	assert.Equal(t, id+1, e.GenerationID())
	assert.Equal(t, "abc", e.buf.Text())

	// Editing goes on with the next key.
	e.feed(t, "d")
	assert.Equal(t, "abcd", e.buf.Text())
}

func TestEditor_InterruptMidSequence(t *testing.T) {
	e := setupTestEditor(t, nil)
	require.NoError(t, e.BeginLine(context.Background()))

	e.keys.OnWait = func(time.Duration) { e.Interrupt() }
	e.keys.Push("\x1b[")
	assert.ErrorIs(t, e.Dispatch(context.Background()), ErrInterrupted)
	assert.Equal(t, "[", e.keys.Remaining())

	e.keys.OnWait = nil
	e.feed(t)
	assert.Equal(t, "[", e.buf.Text())
}

func TestEditor_Signals(t *testing.T) {
	e := setupTestEditor(t, nil)
	signals := make(chan os.Signal, 1)
	e.SetSignals(signals)
	require.NoError(t, e.BeginLine(context.Background()))

	signals <- os.Interrupt
	e.keys.Push("a")
	assert.ErrorIs(t, e.Dispatch(context.Background()), ErrInterrupted)
	assert.Equal(t, "a", e.keys.Remaining())
}

func TestEditor_ClassifierCache(t *testing.T) {
	classifier := testutils.NewCountingClassifier(map[string]clinktypes.WordClass{
		"git": clinktypes.ClassExecutable,
	})
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Classifier = classifier })
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "git")
	assert.Equal(t, []string{"g", "gi", "git"}, classifier.Observed())

	e.feed(t, " -v")
	assert.Equal(t, []string{"g", "gi", "git"}, classifier.Observed())

	classes := e.Classifications()
	require.Len(t, classes.Words, 2)
	assert.Equal(t, clinktypes.ClassExecutable, classes.Words[0].Class)
	assert.Equal(t, clinktypes.ClassFlag, classes.Words[1].Class)

	// Retyping the same command word is answered from the cache.
	e.feed(t, "\x15git")
	assert.Equal(t, 1, classifier.CommandCalls("git"))
	assert.Equal(t, 1, classifier.CommandCalls("g"))

	stats := e.CommandCacheStats()
	assert.Equal(t, 3, stats.Size)
	assert.Positive(t, stats.Hits)
}

func TestEditor_CommandCacheClearedPerLine(t *testing.T) {
	tests := []struct {
		name string
		word string
	}{
		{name: "internal command", word: "cd"},
		{name: "program", word: "git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := testutils.NewCountingClassifier(map[string]clinktypes.WordClass{
				tt.word: clinktypes.ClassCommand,
			})
			e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Classifier = classifier })
			require.NoError(t, e.BeginLine(context.Background()))
			e.feed(t, tt.word+" x")
			assert.Equal(t, 1, classifier.CommandCalls(tt.word))

			e.EndLine()
			classifier.Commands[tt.word] = clinktypes.ClassDoskey
			e.buf.ReplaceLine("")
			require.NoError(t, e.BeginLine(context.Background()))
			e.feed(t, tt.word+" x")

			assert.Equal(t, 2, classifier.CommandCalls(tt.word))
			classes := e.Classifications()
			require.NotEmpty(t, classes.Words)
			assert.Equal(t, clinktypes.ClassDoskey, classes.Words[0].Class)
		})
	}
}

func TestEditor_ReclassifySkipsUnchangedLine(t *testing.T) {
	classifier := testutils.NewCountingClassifier(nil)
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Classifier = classifier })
	require.NoError(t, e.BeginLine(context.Background()))
	e.feed(t, "echo hi")
	calls := classifier.ClassifyCalls()

	// Cursor movement alone does not reclassify.
	e.feed(t, "\x1b[D\x1b[D")
	assert.Equal(t, calls, classifier.ClassifyCalls())

	e.Reclassify(ReasonForce)
	assert.Equal(t, calls+1, classifier.ClassifyCalls())
}

func TestEditor_ClassifyWithoutClassifier(t *testing.T) {
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) {
		c.Aliases = testutils.FakeAliases{"ll": "dir /w"}
	})
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "dir >out x & ll & foo")
	classes := e.Classifications()

	line := classes.Line
	classOf := func(word string) clinktypes.WordClass {
		for _, w := range classes.Words {
			if line[w.Offset:w.Offset+w.Length] == word {
				return w.Class
			}
		}
		return clinktypes.ClassNone
	}
	assert.Equal(t, clinktypes.ClassCommand, classOf("dir"))
	assert.Equal(t, clinktypes.ClassRedirect, classOf("out"))
	assert.Equal(t, clinktypes.ClassArgument, classOf("x"))
	assert.Equal(t, clinktypes.ClassDoskey, classOf("ll"))
	assert.Equal(t, clinktypes.ClassOther, classOf("foo"))
}

func TestEditor_Suggestion(t *testing.T) {
	hinter := &testutils.FixedHinter{Line: "git status"}
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Hinter = hinter })
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "git")
	assert.True(t, e.TrySuggest(context.Background()))
	assert.Equal(t, "git status", e.Suggestion())
	assert.Equal(t, "git", e.buf.Text())

	// Unchanged line: the hinter is not asked again.
	calls := hinter.Calls()
	assert.False(t, e.TrySuggest(context.Background()))
	assert.Equal(t, calls, hinter.Calls())

	e.feed(t, "\x1b[C")
	assert.Equal(t, "git status", e.buf.Text())
	assert.Empty(t, e.Suggestion())
}

func TestEditor_SuggestionDropped(t *testing.T) {
	tests := []struct {
		name string
		keys string
	}{
		{name: "diverging text", keys: "x"},
		{name: "cursor moved", keys: "\x1b[D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hinter := &testutils.FixedHinter{Line: "git status"}
			e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Hinter = hinter })
			require.NoError(t, e.BeginLine(context.Background()))

			e.feed(t, "git")
			e.TrySuggest(context.Background())
			require.NotEmpty(t, e.Suggestion())

			e.feed(t, tt.keys)
			e.TrySuggest(context.Background())
			assert.Empty(t, e.Suggestion())
		})
	}
}

func TestEditor_SuggestionWaitsForIdle(t *testing.T) {
	hinter := &testutils.FixedHinter{Line: "git status"}
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Hinter = hinter })
	require.NoError(t, e.BeginLine(context.Background()))
	e.feed(t, "git")

	e.keys.Push(" ")
	assert.False(t, e.TrySuggest(context.Background()))
	assert.Zero(t, hinter.Calls())
}

func TestEditor_OverrideLine(t *testing.T) {
	e := setupTestEditor(t, nil)
	require.NoError(t, e.BeginLine(context.Background()))
	e.feed(t, "abc")
	before := e.Collector().TokenizeCount()

	e.OverrideLine("dir foo", "fo", -1)
	assert.Equal(t, "dir foo", e.buf.Text())
	assert.Equal(t, 7, e.buf.Cursor())
	assert.True(t, e.Flags().Has(FlagRestrict))
	assert.Equal(t, "fo", e.Needle())
	assert.Greater(t, e.Collector().TokenizeCount(), before)

	e.OverrideLine("dir foo", "", 3)
	assert.Equal(t, 3, e.buf.Cursor())
	assert.False(t, e.Flags().Has(FlagRestrict))

	e.OverrideLine("cd x", "x", -1)
	e.feed(t, "y")
	assert.False(t, e.Flags().Has(FlagRestrict))
	assert.Equal(t, "xy", e.Needle())
}

func TestEditor_HistoryNavigation(t *testing.T) {
	h := history.New(10)
	for _, line := range []string{"dir a", "echo", "dir b"} {
		require.NoError(t, h.Add(line))
	}

	tests := []struct {
		name     string
		keys     []string
		expected string
		cursor   int
	}{
		{name: "previous", keys: []string{bind.KeyUp}, expected: "dir b", cursor: 5},
		{name: "previous twice", keys: []string{bind.KeyUp, bind.KeyUp}, expected: "echo", cursor: 4},
		{name: "back down", keys: []string{bind.KeyUp, bind.KeyUp, bind.KeyDown}, expected: "dir b", cursor: 5},
		{name: "search backward", keys: []string{"dir", "\x1bp"}, expected: "dir b", cursor: 3},
		{name: "search twice", keys: []string{"dir", "\x1bp", "\x1bp"}, expected: "dir a", cursor: 3},
		{name: "search and return", keys: []string{"dir", "\x1bp", "\x1bp", "\x1bn"}, expected: "dir b", cursor: 3},
		{name: "failed search truncates", keys: []string{"dir", "\x1bp", "\x1bp", "\x1bp"}, expected: "dir", cursor: 3},
		{name: "failed search with no match", keys: []string{"zz", "\x1bp"}, expected: "zz", cursor: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.History = h })
			require.NoError(t, e.BeginLine(context.Background()))

			e.feed(t, tt.keys...)
			assert.Equal(t, tt.expected, e.buf.Text())
			assert.Equal(t, tt.cursor, e.buf.Cursor())
		})
	}
}

func TestEditor_ApplyKeymap(t *testing.T) {
	e := setupTestEditor(t, nil)

	err := e.ApplyKeymap(map[string]map[string]string{
		"default": {"C-t": "kill-line", "C-y": "no-such-action", "C-Q-x": "undo"},
		"custom":  {"C-r": "undo"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, bind.ErrUnknownKey)

	assert.True(t, e.Binder().IsBound(0, "\x14"))
	custom, err := e.Binder().GroupID("custom")
	require.NoError(t, err)
	assert.True(t, e.Binder().IsBound(custom, "\x12"))

	require.NoError(t, e.BeginLine(context.Background()))
	e.feed(t, "abc\x01\x14")
	assert.Equal(t, "", e.buf.Text())
}

type recordingDisplay struct {
	views []View
}

func (d *recordingDisplay) Redraw(v View) {
	d.views = append(d.views, v)
}

func TestEditor_Display(t *testing.T) {
	display := &recordingDisplay{}
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) { c.Display = display })
	e.SetPrompt("> ")
	require.NoError(t, e.BeginLine(context.Background()))

	e.feed(t, "ab")
	require.NotEmpty(t, display.views)
	last := display.views[len(display.views)-1]
	assert.Equal(t, "> ", last.Prompt)
	assert.Equal(t, "ab", last.Line)
	assert.Equal(t, 2, last.Cursor)
}

type numberedPrompts struct {
	calls int
}

func (p *numberedPrompts) FilterPrompt(_ context.Context, prompt string) string {
	p.calls++
	return strconv.Itoa(p.calls) + prompt
}

func TestEditor_PromptFilter(t *testing.T) {
	display := &recordingDisplay{}
	prompts := &numberedPrompts{}
	e := setupTestEditor(t, func(_ *Config, c *Collaborators) {
		c.Display = display
		c.Prompts = prompts
	})
	e.SetPrompt("> ")

	for line := 1; line <= 2; line++ {
		require.NoError(t, e.BeginLine(context.Background()))
		e.feed(t, "ab")
		want := strconv.Itoa(line) + "> "
		assert.Equal(t, want, e.LinePrompt())
		assert.Equal(t, want, display.views[len(display.views)-1].Prompt)
		assert.Equal(t, line, prompts.calls, "filtered once per line")

		e.EndLine()
		e.buf.ReplaceLine("")
	}

	e.SetPromptFilter(nil)
	require.NoError(t, e.BeginLine(context.Background()))
	assert.Equal(t, "> ", e.LinePrompt())
}
