// Package pager lists ambiguous completion matches below the line, one page
// at a time, asking first when there are many.
package pager

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/modules/layout"
)

// Config controls paging.
type Config struct {
	// Threshold is the match count above which the user is asked first.
	Threshold int
	// Height is the number of rows per page.
	Height int
	// Width is the terminal width in cells.
	Width int
}

// DefaultConfig returns the default pager configuration.
func DefaultConfig() Config {
	return Config{Threshold: 100, Height: 20, Width: layout.DefaultWidth}
}

const (
	actConfirmYes = iota
	actConfirmNo
	actNextPage
	actNextLine
	actQuit
)

const (
	morePrompt  = "--More--"
	clearLine   = "\r\x1b[K"
	confirmText = "Display all %d possibilities? (y or n)"
)

// Pager is an editor module that displays matches.
type Pager struct {
	config  Config
	confirm int
	paging  int

	grid   layout.Grid
	next   int
	active bool

	logger *log.Logger
}

// New creates a pager.
func New(config Config) *Pager {
	def := DefaultConfig()
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.Width <= 0 {
		config.Width = def.Width
	}
	return &Pager{config: config, logger: logger.NewStyledLogger("Pager")}
}

// Name implements editor.Module.
func (p *Pager) Name() string {
	return "pager"
}

// BindInput implements editor.Module.
func (p *Pager) BindInput(b *editor.ModuleBinder) {
	p.confirm = b.CreateGroup("pager-confirm")
	b.Bind(p.confirm, "y", actConfirmYes, "pager-yes")
	b.Bind(p.confirm, "Y", actConfirmYes, "pager-yes")
	b.Bind(p.confirm, "Space", actConfirmYes, "pager-yes")
	b.Bind(p.confirm, "n", actConfirmNo, "pager-no")
	b.Bind(p.confirm, "N", actConfirmNo, "pager-no")
	b.Bind(p.confirm, "C-c", actConfirmNo, "pager-no")
	b.Bind(p.confirm, "Esc", actConfirmNo, "pager-no")
	b.SetDefault(p.confirm, actConfirmNo, "pager-no")

	p.paging = b.CreateGroup("pager")
	b.Bind(p.paging, "Space", actNextPage, "pager-next-page")
	b.Bind(p.paging, "Tab", actNextPage, "pager-next-page")
	b.Bind(p.paging, "Enter", actNextLine, "pager-next-line")
	b.Bind(p.paging, "q", actQuit, "pager-quit")
	b.Bind(p.paging, "Q", actQuit, "pager-quit")
	b.Bind(p.paging, "C-c", actQuit, "pager-quit")
	b.Bind(p.paging, "Esc", actQuit, "pager-quit")
	b.SetDefault(p.paging, actQuit, "pager-quit")
}

// OnBeginLine implements editor.Module.
func (p *Pager) OnBeginLine(*editor.Context) {
	p.reset()
}

// OnEndLine implements editor.Module.
func (p *Pager) OnEndLine() {
	p.reset()
}

// OnMatchesChanged implements editor.Module.
func (p *Pager) OnMatchesChanged(*editor.Context) {}

// Active reports whether the pager owns the input.
func (p *Pager) Active() bool {
	return p.active
}

// ShowMatches implements editor.MatchDisplayer.
func (p *Pager) ShowMatches(ec *editor.Context) bool {
	count := ec.Matches.Count()
	if count < 2 {
		return false
	}

	p.grid = layout.NewGrid(ec.Matches.Texts(), p.config.Width)
	p.next = 0
	p.logger.Debug("Showing matches", "count", count, "rows", p.grid.Rows())

	if p.config.Threshold > 0 && count > p.config.Threshold {
		fmt.Fprintf(ec.Output, "\n"+confirmText, count)
		p.enter(ec, p.confirm)
		return true
	}

	fmt.Fprint(ec.Output, "\n")
	if p.page(ec.Output, p.config.Height) {
		p.enter(ec, p.paging)
	}
	return true
}

// OnInput implements editor.Module.
func (p *Pager) OnInput(_ context.Context, in editor.Input, res *editor.Result, ec *editor.Context) {
	switch in.ID {
	case actConfirmYes:
		fmt.Fprint(ec.Output, "\n")
		res.PopGroup()
		if p.page(ec.Output, p.config.Height) {
			res.PushGroup(p.paging)
			return
		}
		p.leave(ec)
	case actConfirmNo:
		fmt.Fprint(ec.Output, "\n")
		res.PopGroup()
		p.leave(ec)
	case actNextPage, actNextLine:
		fmt.Fprint(ec.Output, clearLine)
		rows := p.config.Height
		if in.ID == actNextLine {
			rows = 1
		}
		if p.page(ec.Output, rows) {
			return
		}
		res.PopGroup()
		p.leave(ec)
	case actQuit:
		fmt.Fprint(ec.Output, clearLine)
		res.PopGroup()
		p.leave(ec)
	}
	res.Redraw()
}

// page prints up to rows more rows and reports whether some remain, in which
// case the more prompt is shown.
func (p *Pager) page(w io.Writer, rows int) bool {
	end := p.next + rows
	if end > p.grid.Rows() {
		end = p.grid.Rows()
	}
	for ; p.next < end; p.next++ {
		fmt.Fprintln(w, p.grid.Row(p.next, nil))
	}
	if p.next < p.grid.Rows() {
		fmt.Fprint(w, morePrompt)
		return true
	}
	return false
}

func (p *Pager) enter(ec *editor.Context, group int) {
	if err := ec.Editor.PushGroup(group); err != nil {
		p.logger.Warn("Cannot enter pager", "error", err)
		return
	}
	p.active = true
	ec.Editor.SetSelecting(true)
}

func (p *Pager) leave(ec *editor.Context) {
	p.active = false
	ec.Editor.SetSelecting(false)
}

func (p *Pager) reset() {
	p.active = false
	p.next = 0
	p.grid = layout.Grid{}
}
