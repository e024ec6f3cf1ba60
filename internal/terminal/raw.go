package terminal

import (
	"fmt"

	"golang.org/x/term"
)

// Size assumed when the terminal size cannot be read.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// IsTerminal reports whether fd is a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// MakeRaw puts fd into raw mode and returns a function restoring it.
func MakeRaw(fd int) (func() error, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return func() error {
		return term.Restore(fd, state)
	}, nil
}

// Size returns the terminal size of fd, or the defaults.
func Size(fd int) (width, height int) {
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}
