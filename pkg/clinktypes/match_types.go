package clinktypes

import "strings"

// MatchType is a match category plus optional attribute bits.
type MatchType uint8

const (
	// MatchUnset means no type was given; builders substitute a default.
	MatchUnset MatchType = iota
	// MatchNone is the untyped category.
	MatchNone
	// MatchWord is a plain word, displayed whole even when it contains slashes.
	MatchWord
	// MatchAlias is a doskey macro name.
	MatchAlias
	// MatchFile is a file; only the last path component is displayed.
	MatchFile
	// MatchDir is a directory; displayed with a trailing path separator.
	MatchDir
	// MatchLink is a symbolic link.
	MatchLink
)

const (
	// MatchHidden marks hidden files and directories.
	MatchHidden MatchType = 0x10
	// MatchReadonly marks read-only files.
	MatchReadonly MatchType = 0x20

	matchBaseMask MatchType = 0x0f
)

var matchTypeNames = map[string]MatchType{
	"none":  MatchNone,
	"word":  MatchWord,
	"alias": MatchAlias,
	"file":  MatchFile,
	"dir":   MatchDir,
	"link":  MatchLink,
}

// Base returns the category without attribute bits.
func (t MatchType) Base() MatchType {
	return t & matchBaseMask
}

// IsHidden reports whether the hidden attribute is set.
func (t MatchType) IsHidden() bool {
	return t&MatchHidden != 0
}

// IsReadonly reports whether the readonly attribute is set.
func (t MatchType) IsReadonly() bool {
	return t&MatchReadonly != 0
}

// String renders the type the way script authors write it, e.g. "dir hidden".
func (t MatchType) String() string {
	var parts []string
	switch t.Base() {
	case MatchUnset:
		parts = append(parts, "unset")
	case MatchNone:
		parts = append(parts, "none")
	case MatchWord:
		parts = append(parts, "word")
	case MatchAlias:
		parts = append(parts, "alias")
	case MatchFile:
		parts = append(parts, "file")
	case MatchDir:
		parts = append(parts, "dir")
	case MatchLink:
		parts = append(parts, "link")
	default:
		parts = append(parts, "unknown")
	}
	if t.IsHidden() {
		parts = append(parts, "hidden")
	}
	if t.IsReadonly() {
		parts = append(parts, "readonly")
	}
	return strings.Join(parts, " ")
}

// ParseMatchType parses a space separated type string such as "file readonly".
// Unknown words are ignored; an empty string yields MatchNone.
func ParseMatchType(s string) MatchType {
	t := MatchNone
	for _, field := range strings.Fields(strings.ToLower(s)) {
		switch field {
		case "hidden":
			t |= MatchHidden
		case "readonly":
			t |= MatchReadonly
		default:
			if base, ok := matchTypeNames[field]; ok {
				t = (t &^ matchBaseMask) | base
			}
		}
	}
	return t
}

// MatchDesc describes one completion candidate.
type MatchDesc struct {
	// Text is the match itself. A desc without text is rejected.
	Text string
	// Type is the match category; MatchUnset takes the builder's default.
	Type MatchType
	// Suffix is appended when the match is completed, e.g. '%' for env vars.
	// Zero means none.
	Suffix byte
}

// MatchBuilder accumulates matches for a generation request.
type MatchBuilder interface {
	// AddMatch adds text with the given type and reports whether it was accepted.
	AddMatch(text string, t MatchType) bool
	// AddMatchDesc adds a fully described match.
	AddMatchDesc(desc MatchDesc) bool
	// AddMatches adds each desc, substituting defaultType for unset types. It
	// returns how many were added and whether all of them were.
	AddMatches(descs []MatchDesc, defaultType MatchType) (int, bool)
	// SetPrefixIncluded marks the matches as already containing a synthetic
	// leading character produced by the generator.
	SetPrefixIncluded(included bool)
}
