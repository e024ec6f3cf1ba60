package shellintegration

import (
	"io"
	"strconv"
	"sync"
)

// Marker emits marks for one editing session. A disabled marker writes
// nothing and leaves prompts unchanged.
type Marker struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	state   CommandState
}

// NewMarker creates a marker writing to w.
func NewMarker(w io.Writer, enabled bool) *Marker {
	return &Marker{w: w, enabled: enabled}
}

// Enabled reports whether marks are written.
func (m *Marker) Enabled() bool {
	return m.enabled
}

// State returns the state after the last mark.
func (m *Marker) State() CommandState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WrapPrompt surrounds prompt with the prompt start and input start marks.
// The editor redraws the prompt as given, so the marks repeat with it.
func (m *Marker) WrapPrompt(prompt string) string {
	if !m.enabled {
		return prompt
	}
	return Format(MarkPromptStart) + prompt + Format(MarkInputStart)
}

// LineStarted records that a prompt was shown.
func (m *Marker) LineStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateInput
}

// OutputStarted marks the start of the accepted line's output.
func (m *Marker) OutputStarted() {
	m.emit(MarkOutputStart)
}

// CommandEnded marks the end of the command with its exit code.
func (m *Marker) CommandEnded(code int) {
	m.emit(MarkCommandEnd, strconv.Itoa(code))
}

func (m *Marker) emit(mark string, params ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAfter(mark)
	if m.enabled {
		_, _ = io.WriteString(m.w, Format(mark, params...))
	}
}
