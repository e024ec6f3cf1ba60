package editor

import "github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"

// KeySnapshot describes the word being edited: its index and extent within
// the active command, plus the cursor.
type KeySnapshot struct {
	WordIndex  int
	WordOffset int
	WordLength int
	Cursor     int
	valid      bool
}

// Valid reports whether the snapshot was taken from a line.
func (k KeySnapshot) Valid() bool {
	return k.valid
}

// SnapshotOf takes the snapshot of the end word of the active command.
func SnapshotOf(lines clinktypes.CommandLineStates) KeySnapshot {
	state := lines.ActiveState()
	snap := KeySnapshot{WordIndex: -1, WordOffset: state.Cursor, Cursor: state.Cursor, valid: true}
	if word, ok := state.EndWord(); ok {
		snap.WordIndex = state.WordCount() - 1
		snap.WordOffset = word.Offset
		snap.WordLength = word.Length
	}
	return snap
}

// IsKeySame reports whether the edited word is unchanged between two
// snapshots: same fields, same line length and same text up to the end of
// the word. The cursor is only compared when compareCursor is set.
func IsKeySame(prev KeySnapshot, prevLine string, next KeySnapshot, nextLine string, compareCursor bool) bool {
	if !prev.valid || !next.valid {
		return false
	}
	if prev.WordIndex != next.WordIndex || prev.WordOffset != next.WordOffset || prev.WordLength != next.WordLength {
		return false
	}
	if compareCursor && prev.Cursor != next.Cursor {
		return false
	}
	if len(prevLine) != len(nextLine) {
		return false
	}
	end := next.WordOffset + next.WordLength
	if end > len(nextLine) {
		end = len(nextLine)
	}
	return prevLine[:end] == nextLine[:end]
}

// sameContext reports whether next edits the same word, at the same place and
// after the same text, as prev. Matches generated for prev still apply.
func sameContext(prev KeySnapshot, prevLine string, next KeySnapshot, nextLine string) bool {
	if !prev.valid || !next.valid {
		return false
	}
	if prev.WordIndex != next.WordIndex || prev.WordOffset != next.WordOffset {
		return false
	}
	if next.WordOffset > len(prevLine) || next.WordOffset > len(nextLine) {
		return false
	}
	return prevLine[:next.WordOffset] == nextLine[:next.WordOffset]
}
