// Package alias holds the doskey alias table consulted for the first word of
// a command, loaded from a macro file of name=expansion lines.
package alias

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrNotFound is returned by Get for a name with no alias.
var ErrNotFound = errors.New("alias not found")

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 75 * time.Millisecond

// Table maps alias names, compared case-insensitively, to expansions. It is
// safe for concurrent use; Watch reloads it from a goroutine.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
	path    string
	logger  *log.Logger
}

var _ clinktypes.AliasLookup = (*Table)(nil)

// New creates an empty table.
func New() *Table {
	return &Table{
		entries: make(map[string]string),
		logger:  logger.NewStyledLogger("Alias"),
	}
}

// Load creates a table from a macro file. A file with bad lines still loads
// the good ones; the returned error lists the rest.
func Load(path string) (*Table, error) {
	t := New()
	t.path = path
	return t, t.Reload()
}

// Path returns the macro file the table was loaded from.
func (t *Table) Path() string {
	return t.path
}

// Reload rereads the macro file, replacing every entry.
func (t *Table) Reload() error {
	if t.path == "" {
		return nil
	}
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
	t.logger.Debug("Loaded aliases", "file", t.path, "count", len(entries))
	if err != nil {
		return fmt.Errorf("loading aliases from %s: %w", t.path, err)
	}
	return nil
}

// Parse reads name=expansion lines. Blank lines and lines starting with ';'
// or '#' are skipped. Names are stored lower case.
func Parse(r io.Reader) (map[string]string, error) {
	entries := make(map[string]string)
	var errs *multierror.Error

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		name, expansion, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		switch {
		case !ok:
			errs = multierror.Append(errs, fmt.Errorf("line %d: missing '='", n))
		case name == "":
			errs = multierror.Append(errs, fmt.Errorf("line %d: empty alias name", n))
		case strings.ContainsAny(name, " \t"):
			errs = multierror.Append(errs, fmt.Errorf("line %d: alias name %q contains spaces", n, name))
		default:
			entries[strings.ToLower(name)] = strings.TrimSpace(expansion)
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return entries, errs.ErrorOrNil()
}

// Set defines or replaces an alias. An empty expansion removes it, as doskey
// does.
func (t *Table) Set(name, expansion string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if expansion == "" {
		delete(t.entries, strings.ToLower(name))
		return
	}
	t.entries[strings.ToLower(name)] = expansion
}

// Get returns the expansion of name.
func (t *Table) Get(name string) (string, error) {
	if exp, ok := t.Lookup(name); ok {
		return exp, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Lookup implements clinktypes.AliasLookup.
func (t *Table) Lookup(word string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	exp, ok := t.entries[strings.ToLower(word)]
	return exp, ok
}

// Names returns the alias names in order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Watch reloads the table whenever the macro file changes until ctx is done.
// The file's directory is watched so editors that replace the file on save
// are seen. onReload, if not nil, receives the result of each reload.
func (t *Table) Watch(ctx context.Context, debounce time.Duration, onReload func(error)) error {
	if t.path == "" {
		return errors.New("watching aliases: no file loaded")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching aliases: %w", err)
	}
	target := filepath.Clean(t.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return fmt.Errorf("watching aliases: %w", err)
	}

	go func() {
		defer w.Close()
		timer := time.NewTimer(debounce)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op == fsnotify.Chmod {
					continue
				}
				timer.Reset(debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				t.logger.Warn("Watch error", "file", target, "error", err)
			case <-timer.C:
				err := t.Reload()
				if err != nil {
					t.logger.Warn("Reload failed", "file", target, "error", err)
				}
				if onReload != nil {
					onReload(err)
				}
			}
		}
	}()
	return nil
}
