// Package shellintegration writes OSC 133 semantic prompt marks around the
// edited line so terminals can tell the prompt, the typed command and its
// output apart.
package shellintegration

import (
	"strconv"
	"strings"
)

// OSC 133 sequence constants
const (
	// ESC = ASCII 27 (0x1B)
	ESC = "\033"
	// BEL = ASCII 7 (0x07) - Bell character used as string terminator
	BEL = "\007"
	// OSC = Operating System Command prefix
	OSC = ESC + "]"
	// ST = String Terminator (alternative to BEL)
	ST = ESC + "\\"
)

// OSC 133 mark codes
const (
	MarkPromptStart = "A" // prompt begins
	MarkInputStart  = "B" // prompt ends, typed input begins
	MarkOutputStart = "C" // line accepted, output begins
	MarkCommandEnd  = "D" // command finished, optionally with exit code
)

// CommandState is where a line is in the prompt, input, output cycle.
type CommandState int

const (
	StateIdle CommandState = iota
	StatePrompt
	StateInput
	StateOutput
	StateDone
)

func (s CommandState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePrompt:
		return "Prompt"
	case StateInput:
		return "Input"
	case StateOutput:
		return "Output"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Sequence is a parsed OSC 133 mark.
type Sequence struct {
	Mark     string
	ExitCode int // only set for MarkCommandEnd with a code
	HasCode  bool
	Raw      string
}

// Format builds the OSC 133 sequence for mark with optional parameters.
func Format(mark string, params ...string) string {
	sequence := OSC + "133;" + mark
	if len(params) > 0 {
		sequence += ";" + strings.Join(params, ";")
	}
	return sequence + BEL
}

// Parse reads the OSC 133 sequence at the start of text. Both BEL and ST
// terminators are accepted.
func Parse(text string) (Sequence, bool) {
	if !strings.HasPrefix(text, OSC+"133;") {
		return Sequence{}, false
	}

	end, termLen := strings.Index(text, BEL), len(BEL)
	if st := strings.Index(text, ST); st != -1 && (end == -1 || st < end) {
		end, termLen = st, len(ST)
	}
	if end == -1 {
		return Sequence{}, false
	}

	parts := strings.Split(text[len(OSC):end], ";")
	if len(parts) < 2 || parts[1] == "" {
		return Sequence{}, false
	}
	seq := Sequence{Mark: parts[1], Raw: text[:end+termLen]}
	if seq.Mark == MarkCommandEnd && len(parts) >= 3 {
		if code, err := strconv.Atoi(parts[2]); err == nil {
			seq.ExitCode = code
			seq.HasCode = true
		}
	}
	return seq, true
}

// StateAfter returns the state a mark moves to.
func StateAfter(mark string) CommandState {
	switch mark {
	case MarkPromptStart:
		return StatePrompt
	case MarkInputStart:
		return StateInput
	case MarkOutputStart:
		return StateOutput
	case MarkCommandEnd:
		return StateDone
	default:
		return StateIdle
	}
}
