// Package picker lets the user choose a completion match from a grid below
// the line with the arrow keys. The same list recalls history lines.
package picker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/modules/layout"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

const (
	actBegin = iota
	actNext
	actPrev
	actAccept
	actCancel
	actCancelInsert
	actHistory
)

const (
	cursorUp      = "\x1b[%dA"
	clearBelow    = "\r\x1b[J"
	defaultHeight = 10
)

// HistorySource lists history lines, oldest first.
type HistorySource interface {
	Entries() []string
}

// Option configures a Picker.
type Option func(*Picker)

// WithHistory enables history-popup, which lists the lines of h and replaces
// the edited line with the chosen one.
func WithHistory(h HistorySource) Option {
	return func(p *Picker) {
		p.history = h
	}
}

// Picker is an editor module bound to select-complete and history-popup.
type Picker struct {
	group   int
	width   int
	height  int
	history HistorySource

	items    []clinktypes.MatchDesc
	grid     layout.Grid
	selected int
	drawn    int
	active   bool
	recall   bool

	highlight lipgloss.Style
	logger    *log.Logger
}

// New creates a picker drawing into width cells. At most height rows are
// drawn; the rows scroll to keep the selection visible.
func New(width, height int, opts ...Option) *Picker {
	if width <= 0 {
		width = layout.DefaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	p := &Picker{
		width:     width,
		height:    height,
		highlight: lipgloss.NewStyle().Reverse(true),
		logger:    logger.NewStyledLogger("Picker"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements editor.Module.
func (p *Picker) Name() string {
	return "picker"
}

// Actions implements editor.ActionNamer.
func (p *Picker) Actions() map[string]int {
	return map[string]int{"select-complete": actBegin, "history-popup": actHistory}
}

// BindInput implements editor.Module.
func (p *Picker) BindInput(b *editor.ModuleBinder) {
	b.Bind(b.DefaultGroup(), "C-Space", actBegin, "select-complete")
	b.Bind(b.DefaultGroup(), "F7", actHistory, "history-popup")

	p.group = b.CreateGroup("picker")
	b.Bind(p.group, "Tab", actNext, "picker-next")
	b.Bind(p.group, "Down", actNext, "picker-next")
	b.Bind(p.group, "C-n", actNext, "picker-next")
	b.Bind(p.group, "Up", actPrev, "picker-prev")
	b.Bind(p.group, "C-p", actPrev, "picker-prev")
	b.Bind(p.group, "Enter", actAccept, "picker-accept")
	b.Bind(p.group, "Esc", actCancel, "picker-cancel")
	b.Bind(p.group, "C-c", actCancel, "picker-cancel")
	b.Bind(p.group, "C-g", actCancel, "picker-cancel")
	b.SetDefault(p.group, actCancelInsert, "picker-cancel")
}

// OnBeginLine implements editor.Module.
func (p *Picker) OnBeginLine(*editor.Context) {
	p.reset()
}

// OnEndLine implements editor.Module.
func (p *Picker) OnEndLine() {
	p.reset()
}

// OnMatchesChanged implements editor.Module.
func (p *Picker) OnMatchesChanged(*editor.Context) {}

// Recalling reports whether the open list holds history lines.
func (p *Picker) Recalling() bool {
	return p.active && p.recall
}

// Active reports whether the picker owns the input.
func (p *Picker) Active() bool {
	return p.active
}

// Selected returns the highlighted match.
func (p *Picker) Selected() (clinktypes.MatchDesc, bool) {
	if !p.active || p.selected >= len(p.items) {
		return clinktypes.MatchDesc{}, false
	}
	return p.items[p.selected], true
}

// OnInput implements editor.Module.
func (p *Picker) OnInput(ctx context.Context, in editor.Input, res *editor.Result, ec *editor.Context) {
	switch in.ID {
	case actBegin:
		p.begin(ctx, res, ec)
		return
	case actHistory:
		p.beginHistory(res, ec)
		return
	case actNext:
		p.move(ec, 1)
		return
	case actPrev:
		p.move(ec, -1)
		return
	case actAccept:
		match, ok := p.Selected()
		recall := p.recall
		p.leave(res, ec)
		if ok && recall {
			ec.Buffer.ReplaceLine(match.Text)
		} else if ok {
			ec.Editor.InsertMatch(match, true)
		}
	case actCancel:
		p.leave(res, ec)
	case actCancelInsert:
		p.leave(res, ec)
		ec.Buffer.Insert(in.Keys)
	}
	res.Redraw()
}

func (p *Picker) begin(ctx context.Context, res *editor.Result, ec *editor.Context) {
	e := ec.Editor
	e.Update()

	set := e.AwaitMatches(ctx)
	switch set.Count() {
	case 0:
		return
	case 1:
		e.InsertMatch(set.At(0), true)
		res.Redraw()
		return
	}

	p.open(res, ec, set.All(), layout.NewGrid(set.Texts(), p.width), 0)
}

// beginHistory lists each distinct history line once, at its latest
// position, with the newest selected.
func (p *Picker) beginHistory(res *editor.Result, ec *editor.Context) {
	if p.history == nil {
		return
	}
	lines := distinctLatest(p.history.Entries())
	if len(lines) == 0 {
		return
	}

	items := make([]clinktypes.MatchDesc, len(lines))
	for i, line := range lines {
		items[i] = clinktypes.MatchDesc{Text: line}
	}
	p.open(res, ec, items, layout.NewList(lines, p.width), len(items)-1)
	p.recall = true
}

func (p *Picker) open(res *editor.Result, ec *editor.Context, items []clinktypes.MatchDesc, grid layout.Grid, selected int) {
	p.items = items
	p.grid = grid
	p.selected = selected
	p.drawn = 0
	p.active = true
	ec.Editor.SetSelecting(true)
	res.PushGroup(p.group)
	p.logger.Debug("Picking", "count", len(p.items))

	fmt.Fprint(ec.Output, "\n")
	p.draw(ec)
}

func distinctLatest(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if line := entries[i]; line != "" && !seen[line] {
			seen[line] = true
			out = append(out, line)
		}
	}
	slices.Reverse(out)
	return out
}

func (p *Picker) move(ec *editor.Context, delta int) {
	n := len(p.items)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
	p.draw(ec)
}

// draw renders the rows around the selection, replacing what was drawn last.
func (p *Picker) draw(ec *editor.Context) {
	if p.drawn > 1 {
		fmt.Fprintf(ec.Output, cursorUp, p.drawn-1)
	}
	fmt.Fprint(ec.Output, clearBelow)

	rows := p.grid.Rows()
	first := 0
	if rows > p.height {
		row := p.selected % rows
		if row >= p.height {
			first = row - p.height + 1
		}
	}
	last := min(first+p.height, rows)

	lines := make([]string, 0, last-first)
	for r := first; r < last; r++ {
		lines = append(lines, p.grid.Row(r, p.decorate))
	}
	fmt.Fprint(ec.Output, strings.Join(lines, "\n"))
	p.drawn = len(lines)
}

func (p *Picker) decorate(index int, cell string) string {
	if index == p.selected {
		return p.highlight.Render(cell)
	}
	return cell
}

// leave erases the grid and returns to the line above it.
func (p *Picker) leave(res *editor.Result, ec *editor.Context) {
	if p.drawn > 0 {
		fmt.Fprintf(ec.Output, cursorUp, p.drawn)
		fmt.Fprint(ec.Output, clearBelow)
	}
	res.PopGroup()
	ec.Editor.SetSelecting(false)
	p.reset()
}

func (p *Picker) reset() {
	p.items = nil
	p.grid = layout.Grid{}
	p.selected = 0
	p.drawn = 0
	p.active = false
	p.recall = false
}
