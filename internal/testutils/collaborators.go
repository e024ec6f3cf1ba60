package testutils

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// StaticGenerator adds the same matches for every request.
type StaticGenerator struct {
	mu      sync.Mutex
	Matches []clinktypes.MatchDesc
	// Err, if set, is returned instead of producing matches.
	Err   error
	calls []clinktypes.CommandLineStates
}

// NewStaticGenerator creates a generator producing texts as untyped matches.
func NewStaticGenerator(texts ...string) *StaticGenerator {
	g := &StaticGenerator{}
	for _, t := range texts {
		g.Matches = append(g.Matches, clinktypes.MatchDesc{Text: t})
	}
	return g
}

// Generate implements clinktypes.MatchGenerator.
func (g *StaticGenerator) Generate(_ context.Context, lines clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	g.mu.Lock()
	g.calls = append(g.calls, lines)
	g.mu.Unlock()

	if g.Err != nil {
		return false, g.Err
	}
	b.AddMatches(g.Matches, clinktypes.MatchNone)
	return true, nil
}

// Calls returns how many times Generate ran.
func (g *StaticGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// LastLines returns the line states of the most recent request.
func (g *StaticGenerator) LastLines() clinktypes.CommandLineStates {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		return clinktypes.CommandLineStates{}
	}
	return g.calls[len(g.calls)-1]
}

type blockingResult struct {
	matches []string
	err     error
}

// BlockingGenerator is a cooperative generator whose requests stay pending
// until the test releases them or their context is cancelled.
type BlockingGenerator struct {
	mu      sync.Mutex
	pending []chan blockingResult
	started chan int
}

// NewBlockingGenerator creates a blocking generator.
func NewBlockingGenerator() *BlockingGenerator {
	return &BlockingGenerator{started: make(chan int, 64)}
}

// Cooperative implements clinktypes.CooperativeGenerator.
func (g *BlockingGenerator) Cooperative() bool {
	return true
}

// Generate implements clinktypes.MatchGenerator.
func (g *BlockingGenerator) Generate(ctx context.Context, _ clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	release := make(chan blockingResult, 1)
	g.mu.Lock()
	g.pending = append(g.pending, release)
	n := len(g.pending) - 1
	g.mu.Unlock()
	g.started <- n

	select {
	case r := <-release:
		if r.err != nil {
			return false, r.err
		}
		for _, m := range r.matches {
			b.AddMatch(m, clinktypes.MatchNone)
		}
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// WaitStarted waits for the next request to start and returns its index.
func (g *BlockingGenerator) WaitStarted(timeout time.Duration) (int, bool) {
	select {
	case n := <-g.started:
		return n, true
	case <-time.After(timeout):
		return -1, false
	}
}

// Release completes request n with matches.
func (g *BlockingGenerator) Release(n int, matches ...string) {
	g.send(n, blockingResult{matches: matches})
}

// Fail completes request n with err.
func (g *BlockingGenerator) Fail(n int, err error) {
	g.send(n, blockingResult{err: err})
}

func (g *BlockingGenerator) send(n int, r blockingResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n >= 0 && n < len(g.pending) {
		g.pending[n] <- r
	}
}

// CountingClassifier classifies from a fixed command table and counts calls.
type CountingClassifier struct {
	mu            sync.Mutex
	Commands      map[string]clinktypes.WordClass
	commandCalls  map[string]int
	classifyCalls int
	observed      []string
}

// NewCountingClassifier creates a classifier knowing commands, keyed by lower
// case name.
func NewCountingClassifier(commands map[string]clinktypes.WordClass) *CountingClassifier {
	return &CountingClassifier{Commands: commands, commandCalls: make(map[string]int)}
}

// ClassifyCommand implements clinktypes.WordClassifier.
func (c *CountingClassifier) ClassifyCommand(word string, _ bool) clinktypes.WordClass {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commandCalls[word]++
	if class, ok := c.Commands[strings.ToLower(word)]; ok {
		return class
	}
	return clinktypes.ClassUnrecognized
}

// Classify implements clinktypes.WordClassifier. Arguments starting with '-'
// or '/' become flags.
func (c *CountingClassifier) Classify(line clinktypes.LineState, out []clinktypes.WordClass) {
	c.mu.Lock()
	c.classifyCalls++
	c.mu.Unlock()

	for i := range out {
		if i <= line.CommandWordIndex || line.Words[i].IsRedirArg {
			continue
		}
		if w := line.RawWord(i); strings.HasPrefix(w, "-") || strings.HasPrefix(w, "/") {
			out[i] = clinktypes.ClassFlag
		}
	}
}

// OnCommand implements clinktypes.CommandObserver.
func (c *CountingClassifier) OnCommand(_ clinktypes.LineState, word string, _ bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed = append(c.observed, word)
}

// CommandCalls returns how often ClassifyCommand saw word.
func (c *CountingClassifier) CommandCalls(word string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandCalls[word]
}

// ClassifyCalls returns how often Classify ran.
func (c *CountingClassifier) ClassifyCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifyCalls
}

// Observed returns the command words passed to OnCommand.
func (c *CountingClassifier) Observed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.observed...)
}

// FixedHinter suggests Line whenever the typed line is a proper prefix of it.
type FixedHinter struct {
	Line  string
	calls int
}

// Suggest implements clinktypes.Hinter.
func (h *FixedHinter) Suggest(_ context.Context, lines clinktypes.CommandLineStates) (string, bool) {
	h.calls++
	typed := lines.ActiveState().Line
	if typed != "" && len(typed) < len(h.Line) && strings.HasPrefix(h.Line, typed) {
		return h.Line, true
	}
	return "", false
}

// Calls returns how often Suggest ran.
func (h *FixedHinter) Calls() int {
	return h.calls
}

// FakeAliases is a case-insensitive alias table.
type FakeAliases map[string]string

// Lookup implements clinktypes.AliasLookup.
func (a FakeAliases) Lookup(word string) (string, bool) {
	v, ok := a[strings.ToLower(word)]
	return v, ok
}
