package bind

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrAborted is returned by Next when the abort check fires mid-sequence.
var ErrAborted = errors.New("key sequence aborted")

// DefaultSequenceTimeout is how long an ambiguous sequence waits for more input.
const DefaultSequenceTimeout = 500 * time.Millisecond

// Resolved is the outcome of reading one key sequence.
type Resolved struct {
	Binding Binding
	// Keys holds the raw bytes that were consumed.
	Keys  string
	Bound bool
	Group int
}

// Resolver reads keys from a KeySource and resolves them against the active
// bind group. Group changes requested while a sequence is being read take
// effect when the next sequence starts.
type Resolver struct {
	binder  *Binder
	keys    clinktypes.KeySource
	timeout time.Duration
	abort   func() bool

	group   int
	pending int
	stack   []int
	seq     []byte

	logger *log.Logger
}

// NewResolver creates a resolver over binder reading from keys. A zero timeout
// uses DefaultSequenceTimeout.
func NewResolver(binder *Binder, keys clinktypes.KeySource, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultSequenceTimeout
	}
	return &Resolver{
		binder:  binder,
		keys:    keys,
		timeout: timeout,
		pending: -1,
		logger:  logger.NewStyledLogger("Resolver"),
	}
}

// SetKeySource replaces the input source.
func (r *Resolver) SetKeySource(keys clinktypes.KeySource) {
	r.keys = keys
	r.seq = r.seq[:0]
}

// SetAbortCheck installs a check polled while waiting for the rest of a
// sequence. When it returns true the partial sequence is discarded.
func (r *Resolver) SetAbortCheck(check func() bool) {
	r.abort = check
}

// Binder returns the binder the resolver reads from.
func (r *Resolver) Binder() *Binder {
	return r.binder
}

// Group returns the active group id.
func (r *Resolver) Group() int {
	return r.group
}

// effective returns the group that will be active for the next sequence.
func (r *Resolver) effective() int {
	if r.pending >= 0 {
		return r.pending
	}
	return r.group
}

// SetGroup selects group id for the next sequence and clears the group stack.
func (r *Resolver) SetGroup(id int) error {
	if r.binder.GroupName(id) == "" {
		return fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	r.stack = r.stack[:0]
	r.pending = id
	return nil
}

// PushGroup makes id the group for the next sequence and remembers the current
// one. It returns the group that was replaced.
func (r *Resolver) PushGroup(id int) (int, error) {
	if r.binder.GroupName(id) == "" {
		return -1, fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	prev := r.effective()
	r.stack = append(r.stack, prev)
	r.pending = id
	r.logger.Debug("Pushed group", "group", r.binder.GroupName(id), "previous", r.binder.GroupName(prev))
	return prev, nil
}

// PopGroup restores the group replaced by the last PushGroup and returns it.
// With an empty stack the default group is restored.
func (r *Resolver) PopGroup() int {
	id := 0
	if n := len(r.stack); n > 0 {
		id = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	r.pending = id
	r.logger.Debug("Popped group", "group", r.binder.GroupName(id))
	return id
}

// Reset discards any partially read sequence.
func (r *Resolver) Reset() {
	r.seq = r.seq[:0]
}

// ResetGroups returns to the default group at once, dropping the group stack,
// any pending group and any partially read sequence.
func (r *Resolver) ResetGroups() {
	r.group = 0
	r.pending = -1
	r.stack = r.stack[:0]
	r.seq = r.seq[:0]
}

// Pending returns the bytes read so far for the current sequence.
func (r *Resolver) Pending() string {
	return string(r.seq)
}

// Next reads one complete key sequence and resolves it. An ambiguous sequence
// (bound, and also the prefix of a longer binding) resolves to its own binding
// once no further input arrives within the sequence timeout, or once the next
// key cannot extend it; that key is left unread.
func (r *Resolver) Next() (Resolved, error) {
	if r.pending >= 0 {
		r.group = r.pending
		r.pending = -1
	}
	group := r.group
	r.seq = r.seq[:0]

	c, err := r.keys.Read()
	if err != nil {
		return Resolved{}, err
	}
	r.seq = append(r.seq, c)

	for {
		kind := r.kind(group, r.seq)
		if kind == NoMatch || kind == ExactMatch {
			break
		}
		if !r.keys.Available(r.timeout) {
			break
		}
		if r.abort != nil && r.abort() {
			r.logger.Debug("Discarded partial sequence", "keys", Describe(string(r.seq)))
			r.seq = r.seq[:0]
			return Resolved{}, ErrAborted
		}
		next, err := r.keys.Peek()
		if err != nil {
			break
		}
		candidate := append(append([]byte(nil), r.seq...), next)
		if r.kind(group, candidate) == NoMatch {
			break
		}
		if _, err := r.keys.Read(); err != nil {
			break
		}
		r.seq = append(r.seq, next)
	}

	res := r.resolve(group)
	r.logger.Debug("Resolved keys", "keys", Describe(res.Keys), "group", r.binder.GroupName(group), "action", res.Binding.Name, "bound", res.Bound)
	return res, nil
}

func (r *Resolver) kind(group int, seq []byte) MatchKind {
	s := string(seq)
	_, kind := r.binder.Lookup(group, s)
	if kind == ExactMatch || kind == AmbiguousMatch {
		return kind
	}
	if t, ok := Translate(s); ok {
		if _, tk := r.binder.Lookup(group, t); tk == ExactMatch || tk == AmbiguousMatch {
			return ExactMatch
		}
	}
	if kind == NoMatch && isTranslationPrefix(s) {
		return PrefixMatch
	}
	return kind
}

func (r *Resolver) resolve(group int) Resolved {
	seq := string(r.seq)
	if b, kind := r.binder.Lookup(group, seq); kind == ExactMatch || kind == AmbiguousMatch {
		return Resolved{Binding: b, Keys: seq, Bound: true, Group: group}
	}
	if t, ok := Translate(seq); ok {
		if b, kind := r.binder.Lookup(group, t); kind == ExactMatch || kind == AmbiguousMatch {
			return Resolved{Binding: b, Keys: seq, Bound: true, Group: group}
		}
	}

	if len(r.seq) == 1 && r.seq[0] >= 0xc0 {
		for !utf8.FullRune(r.seq) && r.keys.Available(r.timeout) {
			c, err := r.keys.Read()
			if err != nil {
				break
			}
			r.seq = append(r.seq, c)
		}
		seq = string(r.seq)
	}

	if isInsertable(seq) {
		if def, ok := r.binder.Default(group); ok {
			def.Sequence = seq
			return Resolved{Binding: def, Keys: seq, Bound: true, Group: group}
		}
	}
	return Resolved{Keys: seq, Group: group}
}

// isInsertable reports whether seq is a single printable character.
func isInsertable(seq string) bool {
	if len(seq) == 1 {
		return seq[0] >= 0x20 && seq[0] < 0x7f
	}
	r, size := utf8.DecodeRuneInString(seq)
	return r != utf8.RuneError && size == len(seq) && r >= 0x80
}
