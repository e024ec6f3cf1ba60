// Package history keeps the command history: navigation, anchored prefix
// search, persistence to a file and history-based suggestions.
package history

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// DefaultMax is the number of entries kept when no limit is given.
const DefaultMax = 1000

// History is an ordered list of accepted lines, oldest first. It implements
// clinktypes.HistoryNavigator, clinktypes.HistorySearcher and clinktypes.Hinter.
type History struct {
	mu      sync.Mutex
	entries []string
	max     int
	// pos is the navigation position; len(entries) means "past the newest".
	pos    int
	path   string
	logger *log.Logger
}

var (
	_ clinktypes.HistoryNavigator = (*History)(nil)
	_ clinktypes.HistorySearcher  = (*History)(nil)
	_ clinktypes.Hinter           = (*History)(nil)
)

// New creates an empty in-memory history.
func New(max int) *History {
	if max <= 0 {
		max = DefaultMax
	}
	return &History{max: max, logger: logger.NewStyledLogger("History")}
}

// Load reads the history file at path, creating an empty history if the file
// does not exist. Later Add calls append to the file.
func Load(path string, max int) (*History, error) {
	h := New(max)
	h.path = path

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
		if err := h.rewrite(); err != nil {
			h.logger.Warn("Failed to compact history file", "path", path, "error", err)
		}
	}
	h.pos = len(h.entries)
	h.logger.Debug("Loaded history", "path", path, "entries", len(h.entries))
	return h, nil
}

// Add appends line. Empty lines, lines starting with a space and repeats of
// the newest entry are skipped. Navigation is reset either way.
func (h *History) Add(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pos = len(h.entries)
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, " ") {
		return nil
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return nil
	}

	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	h.pos = len(h.entries)

	if h.path == "" {
		return nil
	}
	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// rewrite replaces the history file with the current entries.
func (h *History) rewrite() error {
	content := strings.Join(h.entries, "\n")
	if content != "" {
		content += "\n"
	}
	return os.WriteFile(h.path, []byte(content), 0600)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Navigate moves through history; -1 is older and +1 is newer. Moving past the
// newest entry yields an empty line.
func (h *History) Navigate(direction int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.pos + direction
	if next < 0 || next > len(h.entries) {
		return "", false
	}
	h.pos = next
	if next == len(h.entries) {
		return "", true
	}
	return h.entries[next], true
}

// Reset returns navigation to the end of history.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pos = len(h.entries)
}

// SearchPrefix finds the next entry in direction that starts with prefix and
// differs from it. On failure the position does not move.
func (h *History) SearchPrefix(prefix string, direction int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if direction == 0 {
		return "", false
	}
	for i := h.pos + direction; i >= 0 && i < len(h.entries); i += direction {
		entry := h.entries[i]
		if entry != prefix && strings.HasPrefix(entry, prefix) {
			h.pos = i
			return entry, true
		}
	}
	return "", false
}

// Suggest proposes the most recent entry that extends the typed line. It only
// suggests while the cursor is at the end of a non-empty line.
func (h *History) Suggest(_ context.Context, lines clinktypes.CommandLineStates) (string, bool) {
	state := lines.ActiveState()
	typed := state.Line
	if typed == "" || state.Cursor != len(typed) {
		return "", false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		entry := h.entries[i]
		if len(entry) > len(typed) && strings.HasPrefix(entry, typed) {
			return entry, true
		}
	}
	return "", false
}
