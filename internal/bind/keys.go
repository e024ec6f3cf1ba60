// Package bind maps raw key sequences to bound actions. Bindings live in named
// groups so a modal module can shadow the default ones while it is active.
package bind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownGroup is returned for a group id or name that was never created.
	ErrUnknownGroup = errors.New("unknown bind group")
	// ErrEmptySequence is returned when binding an empty key sequence.
	ErrEmptySequence = errors.New("empty key sequence")
	// ErrUnknownKey is returned when a key name cannot be parsed.
	ErrUnknownKey = errors.New("unknown key name")
)

// Canonical sequences for named keys.
const (
	KeyTab       = "\t"
	KeyEnter     = "\r"
	KeyEsc       = "\x1b"
	KeySpace     = " "
	KeyBackspace = "\x7f"
	KeyUp        = "\x1b[A"
	KeyDown      = "\x1b[B"
	KeyRight     = "\x1b[C"
	KeyLeft      = "\x1b[D"
	KeyHome      = "\x1b[H"
	KeyEnd       = "\x1b[F"
	KeyInsert    = "\x1b[2~"
	KeyDel       = "\x1b[3~"
	KeyPgUp      = "\x1b[5~"
	KeyPgDn      = "\x1b[6~"
	KeyF1        = "\x1bOP"
	KeyF2        = "\x1bOQ"
	KeyF3        = "\x1bOR"
	KeyF4        = "\x1bOS"
	KeyF5        = "\x1b[15~"
	KeyF6        = "\x1b[17~"
	KeyF7        = "\x1b[18~"
	KeyF8        = "\x1b[19~"
)

var namedKeys = map[string]string{
	"tab":       KeyTab,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"ret":       KeyEnter,
	"esc":       KeyEsc,
	"escape":    KeyEsc,
	"space":     KeySpace,
	"spc":       KeySpace,
	"backspace": KeyBackspace,
	"bs":        KeyBackspace,
	"up":        KeyUp,
	"down":      KeyDown,
	"right":     KeyRight,
	"left":      KeyLeft,
	"home":      KeyHome,
	"end":       KeyEnd,
	"ins":       KeyInsert,
	"insert":    KeyInsert,
	"del":       KeyDel,
	"delete":    KeyDel,
	"pgup":      KeyPgUp,
	"pgdn":      KeyPgDn,
	"f1":        KeyF1,
	"f2":        KeyF2,
	"f3":        KeyF3,
	"f4":        KeyF4,
	"f5":        KeyF5,
	"f6":        KeyF6,
	"f7":        KeyF7,
	"f8":        KeyF8,
}

// ParseKeys converts space separated key names such as "C-x C-s", "M-p" or
// "Esc [ A" into the raw byte sequence they produce.
func ParseKeys(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ErrEmptySequence
	}

	var b strings.Builder
	for _, field := range fields {
		seq, err := parseKey(field)
		if err != nil {
			return "", err
		}
		b.WriteString(seq)
	}
	return b.String(), nil
}

// MustParseKeys is ParseKeys for static tables; it panics on error.
func MustParseKeys(s string) string {
	seq, err := ParseKeys(s)
	if err != nil {
		panic(err)
	}
	return seq
}

func parseKey(name string) (string, error) {
	meta := false
	ctrl := false
	for len(name) > 2 && name[1] == '-' {
		switch name[0] {
		case 'M', 'm', 'A', 'a':
			meta = true
		case 'C', 'c':
			ctrl = true
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		name = name[2:]
	}

	var seq string
	if named, ok := namedKeys[strings.ToLower(name)]; ok && len(name) > 1 {
		seq = named
	} else if len(name) == 1 {
		seq = name
	} else {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}

	if ctrl {
		if len(seq) != 1 {
			return "", fmt.Errorf("%w: C-%s", ErrUnknownKey, name)
		}
		c, ok := controlOf(seq[0])
		if !ok {
			return "", fmt.Errorf("%w: C-%s", ErrUnknownKey, name)
		}
		seq = string([]byte{c})
	}
	if meta {
		seq = KeyEsc + seq
	}
	return seq, nil
}

func controlOf(c byte) (byte, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 1, true
	case c >= '@' && c <= '_':
		return c - '@', true
	case c == '?':
		return 0x7f, true
	case c == ' ':
		return 0, true
	}
	return 0, false
}

var keyNames = func() map[string]string {
	names := map[string]string{
		KeyTab: "Tab", KeyEnter: "Enter", KeyEsc: "Esc", KeySpace: "Space",
		KeyBackspace: "Backspace", KeyUp: "Up", KeyDown: "Down", KeyRight: "Right",
		KeyLeft: "Left", KeyHome: "Home", KeyEnd: "End", KeyInsert: "Ins",
		KeyDel: "Del", KeyPgUp: "PgUp", KeyPgDn: "PgDn", KeyF1: "F1",
		KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
		KeyF7: "F7", KeyF8: "F8",
	}
	return names
}()

// Describe renders a raw sequence as key names, the inverse of ParseKeys for
// the keys it knows.
func Describe(seq string) string {
	var parts []string
	for len(seq) > 0 {
		name, n := describeOne(seq)
		parts = append(parts, name)
		seq = seq[n:]
	}
	return strings.Join(parts, " ")
}

func describeOne(seq string) (string, int) {
	// Longest named key first so "\x1b[A" is Up rather than Esc [ A.
	best := ""
	for raw := range keyNames {
		if len(raw) > len(best) && strings.HasPrefix(seq, raw) {
			best = raw
		}
	}
	if len(best) > 1 {
		return keyNames[best], len(best)
	}

	c := seq[0]
	if c == 0x1b && len(seq) > 1 {
		name, n := describeOne(seq[1:])
		return "M-" + name, n + 1
	}
	if best != "" {
		return keyNames[best], 1
	}
	if c < 0x20 {
		return "C-" + string(rune(c+'a'-1)), 1
	}
	return string(c), 1
}
