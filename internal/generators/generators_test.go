package generators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-SunsetMkt-Forks/clink/internal/alias"
	"github.com/A-SunsetMkt-Forks/clink/internal/collector"
	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/internal/testutils"
	"github.com/A-SunsetMkt-Forks/clink/internal/textbuf"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

func linesOf(line string) clinktypes.CommandLineStates {
	return collector.New(clinktypes.DefaultQuotePair, nil).Collect(line, len(line), collector.StopAtCursor)
}

func generate(t *testing.T, gen clinktypes.MatchGenerator, line string) (*matches.Set, bool) {
	t.Helper()
	set := matches.NewSet()
	claimed, err := gen.Generate(context.Background(), linesOf(line), matches.NewBuilder(set))
	require.NoError(t, err)
	return set, claimed
}

type claimingGenerator struct {
	text  string
	claim bool
	err   error
	calls int
}

func (g *claimingGenerator) Generate(_ context.Context, _ clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	g.calls++
	if g.err != nil {
		return false, g.err
	}
	b.AddMatch(g.text, clinktypes.MatchWord)
	return g.claim, nil
}

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	late := &claimingGenerator{text: "late"}
	early := &claimingGenerator{text: "early", claim: true}
	require.NoError(t, r.Register("late", 20, late))
	require.NoError(t, r.Register("early", 10, early))

	assert.Equal(t, []string{"early", "late"}, r.Names())

	set, claimed := generate(t, r, "x")
	assert.True(t, claimed)
	assert.Equal(t, []string{"early"}, set.Texts())
	assert.Equal(t, 0, late.calls, "a claim stops the chain")
}

func TestRegistry_Fallthrough(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", 1, &claimingGenerator{text: "a"}))
	require.NoError(t, r.Register("b", 1, &claimingGenerator{text: "b"}))

	set, claimed := generate(t, r, "x")
	assert.False(t, claimed)
	assert.Equal(t, []string{"a", "b"}, set.Texts())
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	require.NoError(t, r.Register("bad", 1, &claimingGenerator{err: boom}))

	assert.ErrorIs(t, r.Register("bad", 2, &claimingGenerator{}), ErrDuplicate)

	_, err := r.Generate(context.Background(), linesOf("x"), matches.NewBuilder(matches.NewSet()))
	assert.ErrorIs(t, err, boom)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.ErrorIs(t, r.Unregister("missing"), ErrNotRegistered)

	require.NoError(t, r.Unregister("bad"))
	assert.Empty(t, r.Names())
}

func TestRegistry_CancelledContext(t *testing.T) {
	r := NewRegistry()
	gen := &claimingGenerator{text: "a"}
	require.NoError(t, r.Register("a", 1, gen))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Generate(ctx, linesOf("x"), matches.NewBuilder(matches.NewSet()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gen.calls)
}

func TestRegistry_Cooperative(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("static", 1, testutils.NewStaticGenerator("a")))
	assert.False(t, r.Cooperative())

	require.NoError(t, r.Register("slow", 2, testutils.NewBlockingGenerator()))
	assert.True(t, r.Cooperative())
}

func TestRegistry_CooperativeWithFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    bool
		expected bool
	}{
		{name: "commands only", files: false, expected: false},
		{name: "commands and files", files: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register("commands", 50, NewCommandGenerator(alias.New())))
			if tt.files {
				require.NoError(t, r.Register("files", 100, NewFileGenerator(t.TempDir())))
			}
			assert.Equal(t, tt.expected, r.Cooperative())
		})
	}
}

func TestFileGenerator_RunsAsEditorTask(t *testing.T) {
	dir := testutils.NewFileHelpers().CreateTempDir(t, map[string]string{
		"src/main.go": "",
		"readme.md":   "",
	})
	r := NewRegistry()
	require.NoError(t, r.Register("commands", 50, NewCommandGenerator(alias.New())))
	require.NoError(t, r.Register("files", 100, NewFileGenerator(dir)))

	buf := textbuf.New("")
	keys := testutils.NewScriptedKeys()
	cfg := editor.DefaultConfig()
	cfg.TestMode = true
	cfg.AutoGenerate = true
	cfg.SequenceTimeout = time.Millisecond
	cfg.IdleTimeout = time.Millisecond
	e, err := editor.New(cfg, editor.Collaborators{Buffer: buf, Keys: keys, Generator: r})
	require.NoError(t, err)
	require.NoError(t, e.BeginLine(context.Background()))
	assert.True(t, e.IsRegenBlocked(), "file listing runs as a task")

	keys.Push("cd s\t")
	for keys.Remaining() != "" {
		require.NoError(t, e.Dispatch(context.Background()))
	}
	assert.Equal(t, "cd src"+string(os.PathSeparator), buf.Text())
	assert.False(t, e.IsRegenBlocked())
	assert.Greater(t, e.GenerationID(), uint64(1))
}

func TestCommandGenerator(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		contains []string
		empty    bool
	}{
		{name: "empty line", line: "", contains: []string{"echo", "cd", "ll"}},
		{name: "command word", line: "ec", contains: []string{"echo", "gs"}},
		{name: "argument", line: "echo x", empty: true},
		{name: "path", line: "bin/x", empty: true},
	}

	aliases := fakeNames{"gs", "ll"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, claimed := generate(t, NewCommandGenerator(aliases, "git"), tt.line)
			assert.False(t, claimed)
			if tt.empty {
				assert.True(t, set.IsEmpty())
				return
			}
			texts := set.Texts()
			for _, want := range tt.contains {
				assert.Contains(t, texts, want)
			}
			assert.Contains(t, texts, "git")
		})
	}
}

type fakeNames []string

func (f fakeNames) Names() []string {
	return f
}

func TestFileGenerator(t *testing.T) {
	root := testutils.NewFileHelpers().CreateTempDir(t, map[string]string{
		"alpha.txt":      "a",
		"beta.go":        "b",
		".hidden":        "h",
		"src/":           "",
		"src/main.go":    "m",
		"src/.gitignore": "g",
	})

	tests := []struct {
		name     string
		word     string
		expected []string
	}{
		{name: "current directory", word: "", expected: []string{"alpha.txt", "beta.go", "src"}},
		{name: "dot shows hidden", word: ".h", expected: []string{".hidden", "alpha.txt", "beta.go", "src"}},
		{name: "subdirectory", word: "src/", expected: []string{"main.go"}},
		{name: "subdirectory leaf", word: "src/ma", expected: []string{"main.go"}},
		{name: "backslash separator", word: `src\`, expected: []string{"main.go"}},
		{name: "missing directory", word: "nope/x", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "backslash separator" && os.PathSeparator != '\\' {
				t.Skip("backslash is not a separator here")
			}
			set, claimed := generate(t, NewFileGenerator(root), "type "+tt.word)
			assert.True(t, claimed)
			assert.False(t, set.PrefixIncluded())

			texts := set.Texts()
			sort.Strings(texts)
			if tt.expected == nil {
				assert.Empty(t, texts)
				return
			}
			assert.Equal(t, tt.expected, texts)
		})
	}
}

func TestFileGenerator_Types(t *testing.T) {
	root := testutils.NewFileHelpers().CreateTempDir(t, map[string]string{
		"dir/":     "",
		"file.txt": "x",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "file.txt"), filepath.Join(root, "link")))
	require.NoError(t, os.Chmod(filepath.Join(root, "file.txt"), 0o444))

	set, _ := generate(t, NewFileGenerator(root), "type ")
	types := make(map[string]clinktypes.MatchType)
	for _, m := range set.All() {
		types[m.Text] = m.Type
	}

	assert.Equal(t, clinktypes.MatchDir, types["dir"].Base())
	assert.Equal(t, clinktypes.MatchFile, types["file.txt"].Base())
	assert.True(t, types["file.txt"].IsReadonly())
	assert.Equal(t, clinktypes.MatchLink, types["link"].Base())
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(testutils.FakeAliases{"gs": "git status"})
	c.lookPath = func(name string) (string, error) {
		if name == "git" {
			return "/usr/bin/git", nil
		}
		return "", errors.New("not found")
	}

	tests := []struct {
		name     string
		word     string
		quoted   bool
		expected clinktypes.WordClass
	}{
		{name: "internal", word: "ECHO", expected: clinktypes.ClassCommand},
		{name: "quoted internal", word: "echo", quoted: true, expected: clinktypes.ClassUnrecognized},
		{name: "alias", word: "gs", expected: clinktypes.ClassDoskey},
		{name: "executable", word: "git", expected: clinktypes.ClassExecutable},
		{name: "unknown", word: "frobnicate", expected: clinktypes.ClassUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.ClassifyCommand(tt.word, tt.quoted))
		})
	}
}

func TestClassifier_Flags(t *testing.T) {
	c := NewClassifier(nil)
	state := linesOf("git -v /w plain -").ActiveState()
	require.Equal(t, 5, state.WordCount())

	out := make([]clinktypes.WordClass, state.WordCount())
	for i := range out {
		out[i] = clinktypes.ClassArgument
	}
	out[0] = clinktypes.ClassExecutable
	c.Classify(state, out)

	assert.Equal(t, []clinktypes.WordClass{
		clinktypes.ClassExecutable,
		clinktypes.ClassFlag,
		clinktypes.ClassFlag,
		clinktypes.ClassArgument,
		clinktypes.ClassArgument,
	}, out)
}

func TestHinters(t *testing.T) {
	first := &testutils.FixedHinter{Line: "git status"}
	second := &testutils.FixedHinter{Line: "go test ./..."}
	chain := Hinters{nil, first, second}

	tests := []struct {
		name     string
		line     string
		expected string
		ok       bool
	}{
		{name: "first wins", line: "git", expected: "git status", ok: true},
		{name: "falls through", line: "go t", expected: "go test ./...", ok: true},
		{name: "none", line: "ls", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := chain.Suggest(context.Background(), linesOf(tt.line))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, s)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := first.Calls()
	_, ok := chain.Suggest(ctx, linesOf("git"))
	assert.False(t, ok)
	assert.Equal(t, calls, first.Calls())
}
