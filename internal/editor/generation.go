package editor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

type generationResult struct {
	id  uint64
	set *matches.Set
	err error
}

// generationTask is a cooperative generation running on its own goroutine
// against a private copy of the line states.
type generationTask struct {
	id     uint64
	cancel context.CancelFunc
	done   chan generationResult
}

// GenerationID returns the id of the most recent generation request.
func (e *Editor) GenerationID() uint64 {
	return e.generationID
}

// IsRegenBlocked reports whether a generation request is still outstanding.
func (e *Editor) IsRegenBlocked() bool {
	return e.task != nil
}

// UpdateMatches requests new matches for the current line. While another
// request is outstanding the new one is deferred until that one completes.
func (e *Editor) UpdateMatches() {
	if e.IsRegenBlocked() {
		if !e.regenPending {
			e.logger.Debug("Deferred generation", "generation", e.generationID)
		}
		e.regenPending = true
		return
	}
	e.startGeneration()
}

// ForceUpdateMatches starts a new generation immediately, superseding any
// request in flight.
func (e *Editor) ForceUpdateMatches() {
	e.regenPending = false
	e.startGeneration()
}

func (e *Editor) startGeneration() {
	e.cancelTask()
	e.generationID++
	id := e.generationID
	e.flags |= FlagGenerate

	gen := e.collab.Generator
	if gen == nil {
		e.NotifyMatchesReady(id, matches.NewSet(), nil)
		return
	}

	// The generator keeps its own copy; later edits build new states.
	lines := e.lines.Clone()
	e.logger.Debug("Generating matches", "generation", id, "word", lines.ActiveState().GetEndWord())

	if coop, ok := gen.(clinktypes.CooperativeGenerator); ok && coop.Cooperative() {
		ctx, cancel := context.WithCancel(e.lineCtx)
		task := &generationTask{id: id, cancel: cancel, done: make(chan generationResult, 1)}
		e.task = task
		go func() {
			set := matches.NewSet()
			_, err := gen.Generate(ctx, lines, matches.NewBuilder(set))
			task.done <- generationResult{id: id, set: set, err: err}
		}()
		return
	}

	set := matches.NewSet()
	_, err := gen.Generate(e.lineCtx, lines, matches.NewBuilder(set))
	e.NotifyMatchesReady(id, set, err)
}

// cancelTask abandons the in-flight task. Its result is never read.
func (e *Editor) cancelTask() {
	if e.task == nil {
		return
	}
	e.task.cancel()
	e.logger.Debug("Cancelled generation", "generation", e.task.id)
	e.task = nil
}

// Poll applies the result of a finished cooperative generation, if any. It
// never blocks and reports whether a result was consumed.
func (e *Editor) Poll() bool {
	task := e.task
	if task == nil {
		return false
	}
	select {
	case r := <-task.done:
		e.NotifyMatchesReady(r.id, r.set, r.err)
		return true
	default:
		return false
	}
}

// NotifyMatchesReady delivers the matches of generation id. Results for any
// id but the current one are discarded, as are results superseded by a
// deferred request. A generator error counts as no matches. It reports
// whether the matches were applied.
func (e *Editor) NotifyMatchesReady(id uint64, set *matches.Set, err error) bool {
	if e.task != nil && e.task.id == id {
		e.task.cancel()
		e.task = nil
	}

	if id != e.generationID {
		e.logger.Debug("Discarded stale matches", "generation", id, "current", e.generationID)
		e.startPending()
		return false
	}
	if e.regenPending {
		e.logger.Debug("Discarded superseded matches", "generation", id)
		e.startPending()
		return false
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Warn("Match generator failed", "generation", id, "error", err)
		}
		set = nil
	}
	if set == nil {
		set = matches.NewSet()
	}

	e.matches = set.Finalize()
	e.flags &^= FlagGenerate
	e.refilter()
	e.logger.Debug("Applied matches", "generation", id, "count", e.matches.Count(), "filtered", e.filtered.Count())

	ec := e.context()
	for _, m := range e.modules {
		m.OnMatchesChanged(ec)
	}
	return true
}

func (e *Editor) startPending() {
	if e.regenPending && e.task == nil {
		e.regenPending = false
		e.startGeneration()
	}
}

// AwaitMatches makes sure matches for the current line exist, waiting for a
// cooperative generation if needed. This is the one place the input loop
// blocks on a generator: completion and the picker need the matches before
// they can act. The wait ends when the result arrives, when ctx is done, or
// at the first idle tick with an interrupt pending; the last two return an
// empty set and leave the task running, so its result still applies later.
func (e *Editor) AwaitMatches(ctx context.Context) *matches.Set {
	if e.flags.Has(FlagGenerate) && e.task == nil {
		e.regenPending = false
		e.startGeneration()
	}

	tick := e.config.IdleTimeout
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	for e.task != nil {
		task := e.task
		select {
		case r := <-task.done:
			e.NotifyMatchesReady(r.id, r.set, r.err)
		case <-ctx.Done():
			return matches.NewSet()
		case <-time.After(tick):
			if e.signalPending() {
				return matches.NewSet()
			}
		}
	}
	return e.Matches()
}

func (e *Editor) dropMatches() {
	if !e.config.AutoGenerate {
		e.cancelTask()
		e.regenPending = false
	}
	e.matches = nil
	e.filtered = nil
	e.flags |= FlagGenerate
}

func (e *Editor) refilter() {
	if e.matches == nil {
		e.filtered = nil
		return
	}
	e.filtered = e.matches.Filter(e.currentNeedle(), e.config.MatchFilter)
}

// currentNeedle is the text matches are filtered by: the override needle
// while restricted, otherwise the typed part of the end word. When matches
// do not include the word's path prefix only the part after the last path
// separator counts.
func (e *Editor) currentNeedle() string {
	if e.flags.Has(FlagRestrict) {
		return e.needle
	}
	word := e.lines.ActiveState().GetEndWord()
	if e.matches != nil && !e.matches.PrefixIncluded() {
		word = word[pathPrefixLen(word):]
	}
	return word
}

// Needle returns the text matches are currently filtered by.
func (e *Editor) Needle() string {
	return e.currentNeedle()
}

// Matches returns the generated matches narrowed by the current needle. The
// set is empty while matches are stale.
func (e *Editor) Matches() *matches.Set {
	if e.filtered == nil {
		return matches.NewSet()
	}
	return e.filtered
}

// pathPrefixLen returns the length of word up to and including its last path
// separator.
func pathPrefixLen(word string) int {
	return strings.LastIndexAny(word, `/\`) + 1
}
