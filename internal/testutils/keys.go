package testutils

import (
	"io"
	"sync"
	"time"
)

// ScriptedKeys is a KeySource that replays queued input. Available never
// blocks: it reports whether queued bytes remain, after calling OnWait.
type ScriptedKeys struct {
	mu    sync.Mutex
	buf   []byte
	waits []time.Duration

	// OnWait, if set, runs on every Available call before the check.
	OnWait func(timeout time.Duration)
}

// NewScriptedKeys creates a source that will produce keys in order.
func NewScriptedKeys(keys ...string) *ScriptedKeys {
	s := &ScriptedKeys{}
	for _, k := range keys {
		s.Push(k)
	}
	return s
}

// Push queues more input.
func (s *ScriptedKeys) Push(keys string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, keys...)
}

// Available implements clinktypes.KeySource.
func (s *ScriptedKeys) Available(timeout time.Duration) bool {
	if s.OnWait != nil {
		s.OnWait(timeout)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, timeout)
	return len(s.buf) > 0
}

// Peek implements clinktypes.KeySource.
func (s *ScriptedKeys) Peek() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return 0, io.EOF
	}
	return s.buf[0], nil
}

// Read implements clinktypes.KeySource.
func (s *ScriptedKeys) Read() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return 0, io.EOF
	}
	c := s.buf[0]
	s.buf = s.buf[1:]
	return c, nil
}

// Remaining returns the input not read yet.
func (s *ScriptedKeys) Remaining() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.buf)
}

// Waits returns the timeouts passed to Available so far.
func (s *ScriptedKeys) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}
