// Package textbuf is an in-memory line buffer with a cursor, a mark and an
// undo list, used when the editor drives the terminal itself.
package textbuf

import "github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"

type snapshot struct {
	text   string
	cursor int
}

// Buffer implements clinktypes.TextBuffer. Positions are byte offsets.
type Buffer struct {
	text   string
	cursor int
	mark   int
	undo   []snapshot
}

var _ clinktypes.TextBuffer = (*Buffer)(nil)

// New creates a buffer holding text with the cursor at its end.
func New(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

// Text returns the line.
func (b *Buffer) Text() string {
	return b.text
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor, clamped to the line.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

// Mark returns the mark position.
func (b *Buffer) Mark() int {
	return b.mark
}

// SetMark sets the mark, clamped to the line.
func (b *Buffer) SetMark(pos int) {
	b.mark = b.clamp(pos)
}

// Insert inserts s at the cursor.
func (b *Buffer) Insert(s string) {
	if s == "" {
		return
	}
	b.save()
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

// Remove deletes [from, to). The cursor moves with the text after it.
func (b *Buffer) Remove(from, to int) {
	from, to = b.clamp(from), b.clamp(to)
	if from > to {
		from, to = to, from
	}
	if from == to {
		return
	}
	b.save()
	b.text = b.text[:from] + b.text[to:]
	switch {
	case b.cursor >= to:
		b.cursor -= to - from
	case b.cursor > from:
		b.cursor = from
	}
	b.mark = b.clamp(b.mark)
}

// ReplaceLine replaces the whole line and puts the cursor at its end.
func (b *Buffer) ReplaceLine(s string) {
	if s == b.text {
		b.cursor = len(s)
		return
	}
	b.save()
	b.text = s
	b.cursor = len(s)
	b.mark = b.clamp(b.mark)
}

// Undo restores the state before the last change.
func (b *Buffer) Undo() bool {
	n := len(b.undo)
	if n == 0 {
		return false
	}
	last := b.undo[n-1]
	b.undo = b.undo[:n-1]
	b.text = last.text
	b.cursor = last.cursor
	b.mark = b.clamp(b.mark)
	return true
}

// Reset replaces the line and clears the undo list.
func (b *Buffer) Reset(text string) {
	b.text = text
	b.cursor = len(text)
	b.mark = 0
	b.undo = b.undo[:0]
}

func (b *Buffer) save() {
	b.undo = append(b.undo, snapshot{text: b.text, cursor: b.cursor})
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}
