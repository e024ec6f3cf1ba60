package matches

import (
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Builder is the clinktypes.MatchBuilder handed to generators. It writes into
// a Set and never fails hard: rejected matches are reported, not raised.
type Builder struct {
	set *Set
}

var _ clinktypes.MatchBuilder = (*Builder)(nil)

// NewBuilder creates a builder writing into set. The prefix-included flag of
// the set starts out true.
func NewBuilder(set *Set) *Builder {
	if set == nil {
		set = NewSet()
	}
	set.SetPrefixIncluded(true)
	return &Builder{set: set}
}

// Set returns the set being built.
func (b *Builder) Set() *Set {
	return b.set
}

// AddMatch adds text with type t.
func (b *Builder) AddMatch(text string, t clinktypes.MatchType) bool {
	return b.set.Add(clinktypes.MatchDesc{Text: text, Type: t}) == nil
}

// AddMatchDesc adds a fully described match.
func (b *Builder) AddMatchDesc(desc clinktypes.MatchDesc) bool {
	return b.set.Add(desc) == nil
}

// AddMatches adds every desc, using defaultType for descs without a type. It
// returns how many were added and whether all of them were. Failures do not
// roll back earlier additions.
func (b *Builder) AddMatches(descs []clinktypes.MatchDesc, defaultType clinktypes.MatchType) (int, bool) {
	added := 0
	for _, desc := range descs {
		if desc.Type.Base() == clinktypes.MatchUnset {
			desc.Type |= defaultType
		}
		if b.set.Add(desc) == nil {
			added++
		}
	}
	return added, added == len(descs)
}

// SetPrefixIncluded implements clinktypes.MatchBuilder.
func (b *Builder) SetPrefixIncluded(included bool) {
	b.set.SetPrefixIncluded(included)
}
