package generators

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// FileGenerator completes the end word against the file system. Matches are
// leaf names; the directory part typed so far stays on the line.
type FileGenerator struct {
	// Root resolves relative paths; empty means the working directory.
	Root string
	// ShowHidden includes dot files even when the typed name does not start
	// with a dot.
	ShowHidden bool
}

var _ clinktypes.CooperativeGenerator = (*FileGenerator)(nil)

// NewFileGenerator creates a file generator rooted at root.
func NewFileGenerator(root string) *FileGenerator {
	return &FileGenerator{Root: root}
}

// Cooperative implements clinktypes.CooperativeGenerator. Listing a slow or
// remote directory must not hold up key handling.
func (g *FileGenerator) Cooperative() bool {
	return true
}

// Generate implements clinktypes.MatchGenerator. It claims every request.
func (g *FileGenerator) Generate(ctx context.Context, lines clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	word := lines.ActiveState().GetEndWord()
	dir, leaf := splitPath(word)

	path := dir
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) && g.Root != "" {
		path = filepath.Join(g.Root, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			b.SetPrefixIncluded(false)
			return true, nil
		}
		return true, fmt.Errorf("reading %s: %w", path, err)
	}

	b.SetPrefixIncluded(false)
	showHidden := g.ShowHidden || strings.HasPrefix(leaf, ".")
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		name := entry.Name()
		hidden := strings.HasPrefix(name, ".")
		if hidden && !showHidden {
			continue
		}
		b.AddMatch(name, fileType(entry, hidden))
	}
	return true, nil
}

func fileType(entry fs.DirEntry, hidden bool) clinktypes.MatchType {
	var t clinktypes.MatchType
	switch {
	case entry.IsDir():
		t = clinktypes.MatchDir
	case entry.Type()&fs.ModeSymlink != 0:
		t = clinktypes.MatchLink
	default:
		t = clinktypes.MatchFile
	}
	if hidden {
		t |= clinktypes.MatchHidden
	}
	if info, err := entry.Info(); err == nil && info.Mode().Perm()&0o200 == 0 {
		t |= clinktypes.MatchReadonly
	}
	return t
}

// splitPath splits word after its last path separator.
func splitPath(word string) (dir, leaf string) {
	i := strings.LastIndexAny(word, `/\`)
	if i < 0 {
		return "", word
	}
	return word[:i+1], word[i+1:]
}
