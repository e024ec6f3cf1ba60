package bind

import (
	"fmt"
	"sync"
)

// DefaultGroup is the name of the group created with every Binder.
const DefaultGroup = "default"

// Binding ties a key sequence in a group to an action of a module.
type Binding struct {
	Group    int
	Sequence string
	// Module is the index of the owning module in the editor.
	Module int
	// ID is the module-specific action id.
	ID int
	// Name is the action name, used for logging and keymap files.
	Name string
}

// MatchKind is the result of looking a sequence up in a group.
type MatchKind int

const (
	// NoMatch means nothing is bound to the sequence or any extension of it.
	NoMatch MatchKind = iota
	// PrefixMatch means longer sequences are bound but this one is not.
	PrefixMatch
	// ExactMatch means the sequence is bound and nothing longer starts with it.
	ExactMatch
	// AmbiguousMatch means the sequence is bound and also starts longer
	// bindings, so more input may still change the result.
	AmbiguousMatch
)

func (k MatchKind) String() string {
	switch k {
	case PrefixMatch:
		return "prefix"
	case ExactMatch:
		return "exact"
	case AmbiguousMatch:
		return "ambiguous"
	default:
		return "none"
	}
}

type node struct {
	children map[byte]*node
	binding  *Binding
}

func (n *node) child(c byte) *node {
	if n.children == nil {
		return nil
	}
	return n.children[c]
}

type group struct {
	name     string
	root     *node
	fallback *Binding
}

// Binder stores bind groups, each indexed by a prefix tree over raw bytes.
type Binder struct {
	mu     sync.RWMutex
	groups []*group
	names  map[string]int
}

// NewBinder creates a binder with an empty default group.
func NewBinder() *Binder {
	b := &Binder{names: make(map[string]int)}
	b.CreateGroup(DefaultGroup)
	return b
}

// CreateGroup returns the id of the named group, creating it if needed.
func (b *Binder) CreateGroup(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.names[name]; ok {
		return id
	}
	b.groups = append(b.groups, &group{name: name, root: &node{}})
	id := len(b.groups) - 1
	b.names[name] = id
	return id
}

// GroupID returns the id of an existing group.
func (b *Binder) GroupID(name string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.names[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	return id, nil
}

// GroupName returns the name of group id, or "" if it does not exist.
func (b *Binder) GroupName(id int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if id < 0 || id >= len(b.groups) {
		return ""
	}
	return b.groups[id].name
}

// Groups returns the group names in creation order.
func (b *Binder) Groups() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.groups))
	for i, g := range b.groups {
		names[i] = g.name
	}
	return names
}

// Bind binds the key names in keys (see ParseKeys) in group id.
func (b *Binder) Bind(id int, keys string, module, action int, name string) error {
	seq, err := ParseKeys(keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", keys, err)
	}
	return b.BindSequence(id, seq, module, action, name)
}

// BindSequence binds a raw sequence in group id, replacing any existing binding.
func (b *Binder) BindSequence(id int, seq string, module, action int, name string) error {
	if seq == "" {
		return ErrEmptySequence
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	g, err := b.groupLocked(id)
	if err != nil {
		return err
	}

	n := g.root
	for i := 0; i < len(seq); i++ {
		next := n.child(seq[i])
		if next == nil {
			if n.children == nil {
				n.children = make(map[byte]*node)
			}
			next = &node{}
			n.children[seq[i]] = next
		}
		n = next
	}
	n.binding = &Binding{Group: id, Sequence: seq, Module: module, ID: action, Name: name}
	return nil
}

// SetDefault sets the binding used for input nothing in group id matches,
// e.g. self-insert for printable characters.
func (b *Binder) SetDefault(id int, module, action int, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, err := b.groupLocked(id)
	if err != nil {
		return err
	}
	g.fallback = &Binding{Group: id, Module: module, ID: action, Name: name}
	return nil
}

// Default returns the default binding of group id.
func (b *Binder) Default(id int) (Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g, err := b.groupLocked(id)
	if err != nil || g.fallback == nil {
		return Binding{}, false
	}
	return *g.fallback, true
}

// Lookup finds seq in group id.
func (b *Binder) Lookup(id int, seq string) (Binding, MatchKind) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g, err := b.groupLocked(id)
	if err != nil || seq == "" {
		return Binding{}, NoMatch
	}

	n := g.root
	for i := 0; i < len(seq) && n != nil; i++ {
		n = n.child(seq[i])
	}
	if n == nil {
		return Binding{}, NoMatch
	}

	hasChildren := len(n.children) > 0
	switch {
	case n.binding != nil && hasChildren:
		return *n.binding, AmbiguousMatch
	case n.binding != nil:
		return *n.binding, ExactMatch
	case hasChildren:
		return Binding{}, PrefixMatch
	default:
		return Binding{}, NoMatch
	}
}

// IsBound reports whether seq is bound in group id.
func (b *Binder) IsBound(id int, seq string) bool {
	_, kind := b.Lookup(id, seq)
	return kind == ExactMatch || kind == AmbiguousMatch
}

// Bindings returns every binding of group id.
func (b *Binder) Bindings(id int) []Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g, err := b.groupLocked(id)
	if err != nil {
		return nil
	}
	var out []Binding
	var walk func(n *node)
	walk = func(n *node) {
		if n.binding != nil {
			out = append(out, *n.binding)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(g.root)
	return out
}

func (b *Binder) groupLocked(id int) (*group, error) {
	if id < 0 || id >= len(b.groups) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	return b.groups[id], nil
}
