package editor

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Module is an editing module: it binds keys and handles the input bound to it.
// Modules are registered with AddModule and receive input in their own
// bind groups; a modal module pushes its group to take over the keyboard.
type Module interface {
	Name() string
	BindInput(b *ModuleBinder)
	OnBeginLine(ec *Context)
	OnEndLine()
	OnInput(ctx context.Context, in Input, res *Result, ec *Context)
	OnMatchesChanged(ec *Context)
}

// ActionNamer is implemented by modules whose actions can be bound by name
// from keymap files.
type ActionNamer interface {
	Actions() map[string]int
}

// MatchDisplayer is implemented by modules that can present an ambiguous set
// of matches. ShowMatches reports whether it took over.
type MatchDisplayer interface {
	ShowMatches(ec *Context) bool
}

// Input is one resolved key sequence.
type Input struct {
	Keys string
	ID   int
	Name string
}

// Context is what a module sees of the editor while handling input.
type Context struct {
	Editor  *Editor
	Buffer  clinktypes.TextBuffer
	Lines   clinktypes.CommandLineStates
	Matches *matches.Set
	Output  io.Writer
	Session string
}

type groupOp struct {
	kind  int
	group int
}

const (
	opSet = iota
	opPush
	opPop
)

// Result collects what a module asks the editor to do after OnInput.
type Result struct {
	done   bool
	eof    bool
	redraw bool
	ops    []groupOp
}

// Done ends the line; eof marks the end of input rather than an accepted line.
func (r *Result) Done(eof bool) {
	r.done = true
	r.eof = eof
}

// Redraw asks for the line to be redrawn.
func (r *Result) Redraw() {
	r.redraw = true
}

// SetBindGroup makes group the active bind group from the next key on.
func (r *Result) SetBindGroup(group int) {
	r.ops = append(r.ops, groupOp{kind: opSet, group: group})
}

// PushGroup activates group from the next key on, remembering the current one.
func (r *Result) PushGroup(group int) {
	r.ops = append(r.ops, groupOp{kind: opPush, group: group})
}

// PopGroup restores the group replaced by the last push.
func (r *Result) PopGroup() {
	r.ops = append(r.ops, groupOp{kind: opPop})
}

// ModuleBinder binds keys for one module. Errors are collected and reported by
// AddModule.
type ModuleBinder struct {
	binder *bind.Binder
	module int
	errs   *multierror.Error
}

// CreateGroup creates, or finds, a bind group.
func (b *ModuleBinder) CreateGroup(name string) int {
	return b.binder.CreateGroup(name)
}

// DefaultGroup returns the id of the default bind group.
func (b *ModuleBinder) DefaultGroup() int {
	id, _ := b.binder.GroupID(bind.DefaultGroup)
	return id
}

// Bind binds key names (see bind.ParseKeys) to action id in group.
func (b *ModuleBinder) Bind(group int, keys string, id int, name string) {
	if err := b.binder.Bind(group, keys, b.module, id, name); err != nil {
		b.errs = multierror.Append(b.errs, fmt.Errorf("%s: %w", name, err))
	}
}

// BindSequence binds a raw sequence to action id in group.
func (b *ModuleBinder) BindSequence(group int, seq string, id int, name string) {
	if err := b.binder.BindSequence(group, seq, b.module, id, name); err != nil {
		b.errs = multierror.Append(b.errs, fmt.Errorf("%s: %w", name, err))
	}
}

// SetDefault routes insertable input nothing else matches in group to id.
func (b *ModuleBinder) SetDefault(group int, id int, name string) {
	if err := b.binder.SetDefault(group, b.module, id, name); err != nil {
		b.errs = multierror.Append(b.errs, fmt.Errorf("%s: %w", name, err))
	}
}

// Err returns the accumulated binding errors.
func (b *ModuleBinder) Err() error {
	return b.errs.ErrorOrNil()
}
