// Package editor drives line editing: it dispatches keys to editing modules,
// derives per-command line states after every edit, and keeps match
// generation, word classification and suggestions in step with the buffer.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/collector"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/internal/testutils"
	"github.com/A-SunsetMkt-Forks/clink/internal/tokenizer"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

var (
	// ErrInterrupted is returned when an interrupt aborts the current key or line.
	ErrInterrupted = errors.New("interrupted")
	// ErrNotEditing is returned by operations that need an active line.
	ErrNotEditing = errors.New("no line is being edited")
	// ErrUnknownAction is returned for keymap entries naming no known action.
	ErrUnknownAction = errors.New("unknown action")
)

// Editor is the editing orchestrator. It is driven from a single goroutine;
// only cooperative match generators run elsewhere and hand their results back
// through Poll.
type Editor struct {
	config Config
	collab Collaborators
	prompt string
	// linePrompt is prompt after filtering for the current line.
	linePrompt string

	binder    *bind.Binder
	resolver  *bind.Resolver
	collector *collector.Collector
	modules   []Module

	flags   Flags
	session string
	lineCtx context.Context

	lines    clinktypes.CommandLineStates
	prevKey  KeySnapshot
	prevLine string

	generationID uint64
	task         *generationTask
	regenPending bool
	matches      *matches.Set
	filtered     *matches.Set
	needle       string

	classifyLine  string
	classifyValid bool
	classes       clinktypes.Classifications
	commands      *commandCache
	prevCommand   commandKey
	prevCmdValid  bool

	suggestion   string
	suggestPrint collector.Fingerprint
	suggestValid bool

	interrupted atomic.Bool
	signals     <-chan os.Signal

	logger *log.Logger
}

// New creates an editor over the collaborators. The default editing module is
// registered first.
func New(config Config, collab Collaborators) (*Editor, error) {
	if collab.Buffer == nil {
		return nil, errors.New("editor requires a text buffer")
	}
	if collab.Keys == nil {
		return nil, errors.New("editor requires a key source")
	}
	if collab.Output == nil {
		collab.Output = io.Discard
	}
	if collab.Searcher == nil {
		if s, ok := collab.History.(clinktypes.HistorySearcher); ok {
			collab.Searcher = s
		}
	}

	binder := bind.NewBinder()
	e := &Editor{
		config:    config,
		collab:    collab,
		binder:    binder,
		resolver:  bind.NewResolver(binder, collab.Keys, config.SequenceTimeout),
		collector: collector.New(config.QuotePair, collab.Aliases),
		commands:  newCommandCache(config.CommandCacheSize, tokenizer.InternalCommands()),
		lineCtx:   context.Background(),
		logger:    logger.NewStyledLogger("Editor"),
	}
	e.resolver.SetAbortCheck(e.signalPending)

	if err := e.AddModule(newEditModule()); err != nil {
		return nil, err
	}
	return e, nil
}

// AddModule registers m and lets it bind its keys.
func (e *Editor) AddModule(m Module) error {
	b := &ModuleBinder{binder: e.binder, module: len(e.modules)}
	e.modules = append(e.modules, m)
	m.BindInput(b)
	if err := b.Err(); err != nil {
		return fmt.Errorf("module %s: %w", m.Name(), err)
	}
	e.logger.Debug("Added module", "component", m.Name())
	return nil
}

// Modules returns the registered modules in order.
func (e *Editor) Modules() []Module {
	return append([]Module(nil), e.modules...)
}

// Binder returns the key binder.
func (e *Editor) Binder() *bind.Binder {
	return e.binder
}

// Config returns the editor configuration.
func (e *Editor) Config() Config {
	return e.config
}

// SetPrompt sets the prompt handed to the display. It takes effect at the
// next BeginLine.
func (e *Editor) SetPrompt(prompt string) {
	e.prompt = prompt
}

// LinePrompt returns the prompt shown for the current line.
func (e *Editor) LinePrompt() string {
	return e.linePrompt
}

// SetPromptFilter replaces the prompt filter.
func (e *Editor) SetPromptFilter(f clinktypes.PromptFilter) {
	e.collab.Prompts = f
}

// SetGenerator replaces the match generator. Current matches become stale.
func (e *Editor) SetGenerator(g clinktypes.MatchGenerator) {
	e.collab.Generator = g
	e.dropMatches()
}

// SetClassifier replaces the word classifier and forgets cached classes.
func (e *Editor) SetClassifier(c clinktypes.WordClassifier) {
	e.collab.Classifier = c
	e.commands = newCommandCache(e.config.CommandCacheSize, tokenizer.InternalCommands())
	e.classifyValid = false
	e.prevCmdValid = false
}

// SetHinter replaces the suggestion source.
func (e *Editor) SetHinter(h clinktypes.Hinter) {
	e.collab.Hinter = h
	e.suggestValid = false
	e.suggestion = ""
}

// SetInputIdle replaces the idle collaborator.
func (e *Editor) SetInputIdle(idle clinktypes.InputIdle) {
	e.collab.Idle = idle
}

// SetAliases replaces the alias lookup used for command words.
func (e *Editor) SetAliases(a clinktypes.AliasLookup) {
	e.collab.Aliases = a
	e.collector.SetAliases(a)
	e.classifyValid = false
}

// SetSignals makes the editor treat anything received on ch as an interrupt.
func (e *Editor) SetSignals(ch <-chan os.Signal) {
	e.signals = ch
}

// Flags returns the current state flags.
func (e *Editor) Flags() Flags {
	return e.flags
}

// SetSelecting marks whether a modal module owns the input.
func (e *Editor) SetSelecting(selecting bool) {
	if selecting {
		e.flags |= FlagSelecting
	} else {
		e.flags &^= FlagSelecting
	}
}

// Session returns the id of the current edit session.
func (e *Editor) Session() string {
	return e.session
}

// Lines returns the line states derived at the last update.
func (e *Editor) Lines() clinktypes.CommandLineStates {
	return e.lines
}

// Collector returns the word collector.
func (e *Editor) Collector() *collector.Collector {
	return e.collector
}

// CommandCacheStats returns statistics of the command-word cache.
func (e *Editor) CommandCacheStats() CacheStats {
	return e.commands.stats()
}

// PushGroup activates bind group id from the next key on.
func (e *Editor) PushGroup(id int) error {
	_, err := e.resolver.PushGroup(id)
	return err
}

// PopGroup restores the previous bind group from the next key on.
func (e *Editor) PopGroup() int {
	return e.resolver.PopGroup()
}

// BeginLine starts a new edit session: per-line caches and snapshots are
// cleared and modules are told a line begins.
func (e *Editor) BeginLine(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.lineCtx = ctx
	e.flags = FlagInit | FlagEditing | FlagGenerate
	e.session = testutils.GenerateSessionID(e.config.TestMode)

	e.cancelTask()
	e.regenPending = false
	e.matches = nil
	e.filtered = nil
	e.needle = ""
	e.collector.Invalidate()
	e.classifyValid = false
	e.classes = clinktypes.Classifications{}
	e.commands.clear()
	e.prevCmdValid = false
	e.prevKey = KeySnapshot{}
	e.prevLine = ""
	e.suggestion = ""
	e.suggestValid = false
	e.interrupted.Store(false)
	e.resolver.ResetGroups()
	if e.collab.History != nil {
		e.collab.History.Reset()
	}
	e.linePrompt = e.prompt
	if e.collab.Prompts != nil {
		e.linePrompt = e.collab.Prompts.FilterPrompt(ctx, e.prompt)
	}

	e.logger.Debug("Begin line", "session", e.session)
	ec := e.context()
	for _, m := range e.modules {
		m.OnBeginLine(ec)
	}
	e.Update()
	e.redraw()
	return nil
}

// EndLine finishes the session and returns the final line.
func (e *Editor) EndLine() string {
	line := e.collab.Buffer.Text()
	e.cancelTask()
	e.regenPending = false

	for _, m := range e.modules {
		m.OnEndLine()
	}

	// Modal groups end with the line.
	e.resolver.ResetGroups()
	e.flags &^= FlagEditing | FlagGenerate | FlagSelecting | FlagRestrict
	e.flags |= FlagDone
	e.collector.Invalidate()
	e.matches = nil
	e.filtered = nil
	e.classifyValid = false
	e.prevKey = KeySnapshot{}
	e.suggestion = ""
	e.suggestValid = false

	e.logger.Debug("End line", "session", e.session, "flags", e.flags)
	return line
}

// ReadLine edits one line until it is accepted. It returns io.EOF when input
// ends, and ErrInterrupted after an interrupt.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	if err := e.BeginLine(ctx); err != nil {
		return "", err
	}

	for {
		if err := ctx.Err(); err != nil {
			e.EndLine()
			return "", err
		}

		if !e.collab.Keys.Available(e.idleTimeout()) {
			if idle := e.collab.Idle; idle != nil {
				idle.OnIdle()
			}
			changed := e.Poll()
			if e.TrySuggest(ctx) || changed {
				e.redraw()
			}
			if e.IsRegenBlocked() {
				continue
			}
		}

		err := e.Dispatch(ctx)
		switch {
		case errors.Is(err, ErrInterrupted):
			e.EndLine()
			return "", ErrInterrupted
		case errors.Is(err, io.EOF):
			e.flags |= FlagEOF
			return e.EndLine(), io.EOF
		case err != nil:
			e.EndLine()
			return "", err
		}

		if e.flags.Has(FlagDone) {
			line := e.EndLine()
			if e.flags.Has(FlagEOF) {
				return line, io.EOF
			}
			return line, nil
		}
	}
}

func (e *Editor) idleTimeout() time.Duration {
	if idle := e.collab.Idle; idle != nil {
		if t := idle.Timeout(); t > 0 {
			return t
		}
	}
	return e.config.IdleTimeout
}

// Dispatch reads one key sequence and runs the action bound to it.
func (e *Editor) Dispatch(ctx context.Context) error {
	if !e.flags.Has(FlagEditing) {
		return ErrNotEditing
	}
	if e.checkSignal() {
		return ErrInterrupted
	}

	resolved, err := e.resolver.Next()
	if errors.Is(err, bind.ErrAborted) {
		e.checkSignal()
		return ErrInterrupted
	}
	if err != nil {
		return err
	}
	if e.checkSignal() {
		return ErrInterrupted
	}

	if !resolved.Bound {
		e.logger.Debug("Unbound keys", "keys", bind.Describe(resolved.Keys), "group", e.binder.GroupName(resolved.Group))
		return nil
	}
	module := resolved.Binding.Module
	if module < 0 || module >= len(e.modules) {
		e.logger.Warn("Binding refers to no module", "keys", bind.Describe(resolved.Keys), "module", module)
		return nil
	}

	var res Result
	in := Input{Keys: resolved.Keys, ID: resolved.Binding.ID, Name: resolved.Binding.Name}
	e.modules[module].OnInput(ctx, in, &res, e.context())
	e.apply(&res)

	if e.checkSignal() {
		return ErrInterrupted
	}
	if e.flags.Has(FlagDone) {
		return nil
	}
	e.Update()
	e.redraw()
	return nil
}

func (e *Editor) apply(res *Result) {
	for _, op := range res.ops {
		var err error
		switch op.kind {
		case opSet:
			err = e.resolver.SetGroup(op.group)
		case opPush:
			_, err = e.resolver.PushGroup(op.group)
		case opPop:
			e.resolver.PopGroup()
		}
		if err != nil {
			e.logger.Warn("Bind group change failed", "group", op.group, "error", err)
		}
	}
	if res.done {
		e.flags |= FlagDone
		if res.eof {
			e.flags |= FlagEOF
		}
	}
	if res.redraw {
		e.redraw()
	}
}

func (e *Editor) context() *Context {
	return &Context{
		Editor:  e,
		Buffer:  e.collab.Buffer,
		Lines:   e.lines,
		Matches: e.Matches(),
		Output:  e.collab.Output,
		Session: e.session,
	}
}

func (e *Editor) redraw() {
	if e.collab.Display == nil || !e.flags.Has(FlagEditing) {
		return
	}
	e.collab.Display.Redraw(View{
		Prompt:     e.linePrompt,
		Line:       e.collab.Buffer.Text(),
		Cursor:     e.collab.Buffer.Cursor(),
		Suggestion: e.suggestion,
		Classes:    e.classes,
	})
}

// Update re-derives the line states after the buffer may have changed. Work
// is skipped when the edited word is unchanged; matches are refiltered when
// only the typed part of the word changed and dropped when the word itself
// moved or the text before it changed.
func (e *Editor) Update() {
	if !e.flags.Has(FlagEditing) {
		return
	}
	e.Poll()

	text, cursor := e.collab.Buffer.Text(), e.collab.Buffer.Cursor()
	e.lines = e.collector.Collect(text, cursor, collector.StopAtCursor)
	next := SnapshotOf(e.lines)

	textChanged := !e.prevKey.valid || text != e.prevLine
	if textChanged {
		if e.prevKey.valid {
			e.flags &^= FlagRestrict
		}
		e.Reclassify(ReasonEdit)
		if e.suggestion != "" && (len(e.suggestion) <= len(text) || e.suggestion[:len(text)] != text) {
			e.suggestion = ""
		}
	}

	if !IsKeySame(e.prevKey, e.prevLine, next, text, true) {
		switch {
		case !sameContext(e.prevKey, e.prevLine, next, text):
			e.dropMatches()
			if e.config.AutoGenerate {
				e.UpdateMatches()
			}
		case !e.flags.Has(FlagGenerate):
			e.refilter()
		}
	}

	e.prevKey = next
	e.prevLine = text
}

// OverrideLine replaces the line and cursor outside normal key handling, e.g.
// for history recall. A non-empty needle restricts filtering to it until the
// next edit. A negative point puts the cursor at the end. Every cache is
// invalidated.
func (e *Editor) OverrideLine(line, needle string, point int) {
	buf := e.collab.Buffer
	buf.ReplaceLine(line)
	if point < 0 || point > len(line) {
		point = len(line)
	}
	buf.SetCursor(point)

	if needle != "" {
		e.flags |= FlagRestrict
		e.needle = needle
	} else {
		e.flags &^= FlagRestrict
	}

	e.collector.Invalidate()
	e.classifyValid = false
	e.prevKey = KeySnapshot{}
	e.suggestValid = false
	e.logger.Debug("Override line", "needle", needle, "cursor", point)
	e.Update()
}

// ApplyKeymap binds actions by name: keymap maps group names to key names to
// action names. Unknown groups are created. Every failure is reported.
func (e *Editor) ApplyKeymap(keymap map[string]map[string]string) error {
	type target struct{ module, id int }
	actions := make(map[string]target)
	for i, m := range e.modules {
		namer, ok := m.(ActionNamer)
		if !ok {
			continue
		}
		for name, id := range namer.Actions() {
			if _, dup := actions[name]; !dup {
				actions[name] = target{module: i, id: id}
			}
		}
	}

	var errs *multierror.Error
	groups := make([]string, 0, len(keymap))
	for g := range keymap {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, groupName := range groups {
		group := e.binder.CreateGroup(groupName)
		bindings := keymap[groupName]
		keys := make([]string, 0, len(bindings))
		for k := range bindings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			name := bindings[k]
			t, ok := actions[name]
			if !ok {
				errs = multierror.Append(errs, fmt.Errorf("%s: %q: %w %q", groupName, k, ErrUnknownAction, name))
				continue
			}
			if err := e.binder.Bind(group, k, t.module, t.id, name); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", groupName, err))
			}
		}
	}
	return errs.ErrorOrNil()
}

// Interrupt requests that the current key sequence and any in-flight
// generation be abandoned. It may be called from any goroutine.
func (e *Editor) Interrupt() {
	e.interrupted.Store(true)
}

// signalPending reports whether an interrupt is waiting, without consuming it.
func (e *Editor) signalPending() bool {
	if e.signals != nil {
		select {
		case <-e.signals:
			e.interrupted.Store(true)
		default:
		}
	}
	return e.interrupted.Load()
}

// checkSignal consumes a pending interrupt and handles it.
func (e *Editor) checkSignal() bool {
	if !e.signalPending() {
		return false
	}
	e.interrupted.Store(false)
	e.handleInterrupt()
	return true
}

// handleInterrupt discards the partial key sequence and any generation in
// flight. Caches are left as they are.
func (e *Editor) handleInterrupt() {
	e.resolver.Reset()
	e.generationID++
	e.cancelTask()
	e.regenPending = false
	e.flags |= FlagGenerate
	e.logger.Debug("Interrupted", "generation", e.generationID)
}
