// Package matches holds completion candidates produced by generators and the
// downstream steps applied to them: sorting, de-duplication and filtering.
package matches

import (
	"errors"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrNoText is returned when a match without text is added.
var ErrNoText = errors.New("match has no text")

// FilterMode selects how Filter compares matches against a needle.
type FilterMode string

const (
	// FilterPrefix keeps matches starting with the needle, ignoring case.
	FilterPrefix FilterMode = "prefix"
	// FilterFuzzy keeps matches containing the needle's characters in order,
	// ranked best first.
	FilterFuzzy FilterMode = "fuzzy"
)

// ParseFilterMode maps a setting value to a FilterMode, defaulting to prefix.
func ParseFilterMode(s string) FilterMode {
	if strings.EqualFold(s, string(FilterFuzzy)) {
		return FilterFuzzy
	}
	return FilterPrefix
}

// Set is an append-only collection of matches. It performs no sorting or
// de-duplication until Finalize is called.
type Set struct {
	items          []clinktypes.MatchDesc
	prefixIncluded bool
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add appends desc. Matches without text are rejected with ErrNoText; an unset
// type becomes MatchNone.
func (s *Set) Add(desc clinktypes.MatchDesc) error {
	if desc.Text == "" {
		return ErrNoText
	}
	if desc.Type.Base() == clinktypes.MatchUnset {
		desc.Type |= clinktypes.MatchNone
	}
	s.items = append(s.items, desc)
	return nil
}

// Count returns the number of matches.
func (s *Set) Count() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// IsEmpty reports whether the set has no matches.
func (s *Set) IsEmpty() bool {
	return s.Count() == 0
}

// At returns the i-th match.
func (s *Set) At(i int) clinktypes.MatchDesc {
	return s.items[i]
}

// All returns a copy of the matches.
func (s *Set) All() []clinktypes.MatchDesc {
	if s == nil {
		return nil
	}
	return append([]clinktypes.MatchDesc(nil), s.items...)
}

// Texts returns the text of every match.
func (s *Set) Texts() []string {
	if s.IsEmpty() {
		return nil
	}
	out := make([]string, len(s.items))
	for i, m := range s.items {
		out[i] = m.Text
	}
	return out
}

// PrefixIncluded reports whether the matches already include the text being
// completed, e.g. a synthetic leading '%'.
func (s *Set) PrefixIncluded() bool {
	return s != nil && s.prefixIncluded
}

// SetPrefixIncluded sets the prefix-included flag.
func (s *Set) SetPrefixIncluded(included bool) {
	s.prefixIncluded = included
}

// Reset empties the set.
func (s *Set) Reset() {
	s.items = s.items[:0]
	s.prefixIncluded = false
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	if s == nil {
		return NewSet()
	}
	return &Set{items: s.All(), prefixIncluded: s.prefixIncluded}
}

// Finalize returns a new set sorted case-insensitively with duplicates
// removed. When two matches differ only in case the first one added wins.
func (s *Set) Finalize() *Set {
	out := s.Clone()
	sort.SliceStable(out.items, func(i, j int) bool {
		return strings.ToLower(out.items[i].Text) < strings.ToLower(out.items[j].Text)
	})

	deduped := out.items[:0]
	var last string
	for i, m := range out.items {
		key := strings.ToLower(m.Text)
		if i > 0 && key == last {
			continue
		}
		last = key
		deduped = append(deduped, m)
	}
	out.items = deduped
	return out
}

// Filter returns a new set with the matches that satisfy needle under mode.
// An empty needle keeps everything.
func (s *Set) Filter(needle string, mode FilterMode) *Set {
	out := &Set{prefixIncluded: s.PrefixIncluded()}
	if s == nil {
		return out
	}
	if needle == "" {
		out.items = s.All()
		return out
	}

	switch mode {
	case FilterFuzzy:
		for _, r := range fuzzy.Find(needle, s.Texts()) {
			out.items = append(out.items, s.items[r.Index])
		}
	default:
		lower := strings.ToLower(needle)
		for _, m := range s.items {
			if strings.HasPrefix(strings.ToLower(m.Text), lower) {
				out.items = append(out.items, m)
			}
		}
	}
	return out
}

// LowestCommonDenominator returns the longest prefix shared by every match,
// compared case-insensitively and spelled as in the first match.
func (s *Set) LowestCommonDenominator() string {
	if s.IsEmpty() {
		return ""
	}
	lcd := s.items[0].Text
	for _, m := range s.items[1:] {
		n := 0
		for n < len(lcd) && n < len(m.Text) && toLower(lcd[n]) == toLower(m.Text[n]) {
			n++
		}
		lcd = lcd[:n]
		if lcd == "" {
			break
		}
	}
	return lcd
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
