// Package terminal connects the editor to a real terminal: a key source over
// a byte stream, idle ticks, raw mode and a line printer.
package terminal

import (
	"io"
	"time"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Keys is a clinktypes.KeySource reading from an io.Reader on its own
// goroutine so that Available can wait with a timeout.
type Keys struct {
	chunks  chan []byte
	pending []byte
	err     error
}

var _ clinktypes.KeySource = (*Keys)(nil)

// NewKeys starts reading r.
func NewKeys(r io.Reader) *Keys {
	k := &Keys{chunks: make(chan []byte)}
	go k.pump(r)
	return k
}

func (k *Keys) pump(r io.Reader) {
	defer close(k.chunks)
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.chunks <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			return
		}
	}
}

// receive stores a chunk, or marks the end of input when the channel closed.
func (k *Keys) receive(chunk []byte, ok bool) {
	if !ok {
		k.err = io.EOF
		return
	}
	k.pending = append(k.pending, chunk...)
}

// Available implements clinktypes.KeySource. The end of input counts as
// available so the next Read reports it.
func (k *Keys) Available(timeout time.Duration) bool {
	if len(k.pending) > 0 || k.err != nil {
		return true
	}
	if timeout <= 0 {
		select {
		case chunk, ok := <-k.chunks:
			k.receive(chunk, ok)
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case chunk, ok := <-k.chunks:
		k.receive(chunk, ok)
		return true
	case <-timer.C:
		return false
	}
}

// wait blocks until a byte is pending or the input ended.
func (k *Keys) wait() error {
	for len(k.pending) == 0 {
		if k.err != nil {
			return k.err
		}
		chunk, ok := <-k.chunks
		k.receive(chunk, ok)
	}
	return nil
}

// Peek implements clinktypes.KeySource.
func (k *Keys) Peek() (byte, error) {
	if err := k.wait(); err != nil {
		return 0, err
	}
	return k.pending[0], nil
}

// Read implements clinktypes.KeySource.
func (k *Keys) Read() (byte, error) {
	if err := k.wait(); err != nil {
		return 0, err
	}
	c := k.pending[0]
	k.pending = k.pending[1:]
	return c, nil
}

// Idle is a clinktypes.InputIdle calling a function after a quiet period.
type Idle struct {
	timeout time.Duration
	fn      func()
}

var _ clinktypes.InputIdle = (*Idle)(nil)

// NewIdle creates an idle ticker. fn may be nil.
func NewIdle(timeout time.Duration, fn func()) *Idle {
	return &Idle{timeout: timeout, fn: fn}
}

// Timeout implements clinktypes.InputIdle.
func (i *Idle) Timeout() time.Duration {
	return i.timeout
}

// OnIdle implements clinktypes.InputIdle.
func (i *Idle) OnIdle() {
	if i.fn != nil {
		i.fn()
	}
}
