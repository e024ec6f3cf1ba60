package tokenizer

import "strings"

// CmdState is the transient per-command parse state. It accumulates the command
// word to apply known-command rules and is discarded once the command has been
// tokenized.
type CmdState struct {
	onlyRem bool
	word    []byte
	first   bool
	failed  bool
	matched bool
	rem     bool
	flags   StateFlag
	depth   int
}

// NewCmdState creates a state. With onlyRem set only the comment rule applies,
// which is what command splitting needs.
func NewCmdState(onlyRem bool) *CmdState {
	return &CmdState{onlyRem: onlyRem, failed: true}
}

// Clear resets the state for a new command. first reports whether the next word
// is the command's first word.
func (s *CmdState) Clear(first bool) {
	s.word = s.word[:0]
	s.first = first
	s.failed = !first
	s.matched = false
	s.rem = false
	s.flags = FlagNone
}

// NextWord marks the first word as complete.
func (s *CmdState) NextWord() {
	s.first = false
}

// IsFirst reports whether the first word is still being scanned.
func (s *CmdState) IsFirst() bool {
	return s.first
}

// Cancel suppresses alias and known-command handling for the rest of the command.
func (s *CmdState) Cancel() {
	s.failed = true
}

// Failed reports whether Cancel was called.
func (s *CmdState) Failed() bool {
	return s.failed
}

// IsRem reports whether the command word was the comment command.
func (s *CmdState) IsRem() bool {
	return s.rem
}

// Flags returns the known-command flags recorded for the command word.
func (s *CmdState) Flags() StateFlag {
	return s.flags
}

// Depth returns the paren nesting depth.
func (s *CmdState) Depth() int {
	return s.depth
}

// SetDepth sets the paren nesting depth.
func (s *CmdState) SetDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	s.depth = depth
}

// Test feeds the next character of the command word; c == 0 means end of input.
// It reports true when the word ends before c because of a known-command rule:
// the comment command followed by a delimiter, or a special-word-break command
// followed by a break character.
func (s *CmdState) Test(c byte) bool {
	if s.failed || !s.first || s.matched {
		return false
	}

	if c != 0 && !s.onlyRem && strings.IndexByte(SpecialWordBreaks, c) >= 0 {
		if flags := IsCmdCommand(string(s.word)); flags&FlagSpecialWordBreaks != 0 {
			s.matched = true
			s.flags = flags
			return true
		}
	}

	if c == 0 || strings.IndexByte(commandDelimiters, c) >= 0 {
		s.matched = true
		s.flags = IsCmdCommand(string(s.word))
		if s.flags&FlagRem != 0 {
			s.rem = true
			return true
		}
		return false
	}

	s.word = append(s.word, toLower(c))
	return false
}
