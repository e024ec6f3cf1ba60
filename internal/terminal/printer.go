package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// DefaultColors are the ANSI colors used per word class.
var DefaultColors = map[clinktypes.WordClass]string{
	clinktypes.ClassCommand:      "15",
	clinktypes.ClassDoskey:       "12",
	clinktypes.ClassExecutable:   "10",
	clinktypes.ClassUnrecognized: "9",
	clinktypes.ClassFlag:         "6",
	clinktypes.ClassRedirect:     "3",
}

const clearToEnd = "\x1b[K"

// Printer redraws the edited line on a terminal. It implements
// editor.Display.
type Printer struct {
	writer  io.Writer
	profile termenv.Profile
	colors  map[clinktypes.WordClass]string

	mu sync.Mutex
}

var _ editor.Display = (*Printer)(nil)

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter sets where the line is drawn. Default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		if w != nil {
			p.writer = w
		}
	}
}

// WithProfile sets the color profile instead of detecting it.
func WithProfile(profile termenv.Profile) Option {
	return func(p *Printer) {
		p.profile = profile
	}
}

// WithColors replaces the class colors.
func WithColors(colors map[clinktypes.WordClass]string) Option {
	return func(p *Printer) {
		p.colors = colors
	}
}

// PlainText disables colors.
func PlainText() Option {
	return func(p *Printer) {
		p.profile = termenv.Ascii
	}
}

// NewPrinter creates a printer. By default it writes to os.Stdout with the
// color profile detected from the environment.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer:  os.Stdout,
		profile: termenv.EnvColorProfile(),
		colors:  DefaultColors,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Redraw implements editor.Display.
func (p *Printer) Redraw(v editor.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.writer, p.Render(v))
}

// Render returns the escape sequence drawing v over the current line: the
// prompt, the painted line and the cursor moved back into place.
func (p *Printer) Render(v editor.View) string {
	var b strings.Builder
	b.WriteString("\r")
	b.WriteString(v.Prompt)
	b.WriteString(p.Colorize(v.Line, v.Classes))
	tail := suggestionTail(v.Line, v.Suggestion)
	if tail != "" {
		b.WriteString(p.profile.String(tail).Faint().String())
	}
	b.WriteString(clearToEnd)

	cursor := min(max(v.Cursor, 0), len(v.Line))
	if back := ansi.StringWidth(v.Line[cursor:]) + ansi.StringWidth(tail); back > 0 {
		fmt.Fprintf(&b, "\x1b[%dD", back)
	}
	return b.String()
}

// Paint colors line and appends the rest of suggestion dimmed, leaving the
// cursor at the end of line. Hosts that position the cursor themselves use it
// in place of Render.
func (p *Printer) Paint(line string, classes clinktypes.Classifications, suggestion string) string {
	painted := p.Colorize(line, classes)
	tail := suggestionTail(line, suggestion)
	if tail == "" {
		return painted
	}
	return painted + p.profile.String(tail).Faint().String() + fmt.Sprintf("\x1b[%dD", ansi.StringWidth(tail))
}

func suggestionTail(line, suggestion string) string {
	if len(suggestion) > len(line) && strings.HasPrefix(suggestion, line) {
		return suggestion[len(line):]
	}
	return ""
}

// Colorize colors each classified word of line. Classes for another line
// are ignored.
func (p *Printer) Colorize(line string, classes clinktypes.Classifications) string {
	if p.profile == termenv.Ascii || classes.Line != line || len(classes.Words) == 0 {
		return line
	}

	var b strings.Builder
	pos := 0
	for _, w := range classes.Words {
		end := w.Offset + w.Length
		if w.Offset < pos || end > len(line) {
			continue
		}
		color, ok := p.colors[w.Class]
		if !ok || w.Length == 0 {
			continue
		}
		b.WriteString(line[pos:w.Offset])
		b.WriteString(p.profile.String(line[w.Offset:end]).Foreground(p.profile.Color(color)).String())
		pos = end
	}
	b.WriteString(line[pos:])
	return b.String()
}
