package editor

import "strings"

// Flags is the editor's state. The bits are independent.
type Flags uint16

const (
	// FlagInit is set once BeginLine has run.
	FlagInit Flags = 1 << iota
	// FlagEditing is set while a line is being edited.
	FlagEditing
	// FlagGenerate is set while matches are stale or being generated.
	FlagGenerate
	// FlagRestrict limits filtering to the needle given to OverrideLine.
	FlagRestrict
	// FlagSelecting is set while a modal module owns the input.
	FlagSelecting
	// FlagDone is set once the line is accepted.
	FlagDone
	// FlagEOF is set when input ended instead of a line being accepted.
	FlagEOF
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagInit, "init"},
	{FlagEditing, "editing"},
	{FlagGenerate, "generate"},
	{FlagRestrict, "restrict"},
	{FlagSelecting, "selecting"},
	{FlagDone, "done"},
	{FlagEOF, "eof"},
}

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

func (fl Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if fl.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
