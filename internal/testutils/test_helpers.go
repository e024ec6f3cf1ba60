package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// AssertionHelpers provides common assertion patterns
type AssertionHelpers struct {
	t *testing.T
}

// NewAssertionHelpers creates assertion helpers for a test
func NewAssertionHelpers(t *testing.T) *AssertionHelpers {
	return &AssertionHelpers{t: t}
}

// AssertWords checks the words of a line state, quotes stripped.
func (h *AssertionHelpers) AssertWords(state clinktypes.LineState, expected ...string) {
	actual := make([]string, 0, state.WordCount())
	for i := range state.Words {
		actual = append(actual, state.GetWord(i))
	}
	if len(expected) == 0 {
		expected = []string{}
	}
	assert.Equal(h.t, expected, actual, "Words of %q should match", state.Line)
}

// AssertMatchTexts checks that texts are exactly the given matches, in order.
func (h *AssertionHelpers) AssertMatchTexts(texts []string, expected ...string) {
	if len(expected) == 0 {
		assert.Empty(h.t, texts, "Should have no matches")
		return
	}
	assert.Equal(h.t, expected, texts, "Matches should be %s", strings.Join(expected, ", "))
}

// FileHelpers provides utilities for working with test files
type FileHelpers struct{}

// NewFileHelpers creates a new file helpers instance
func NewFileHelpers() *FileHelpers {
	return &FileHelpers{}
}

// CreateTempFile creates a temporary file with given content
func (f *FileHelpers) CreateTempFile(t *testing.T, filename, content string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	err := os.WriteFile(filePath, []byte(content), 0644)
	require.NoError(t, err, "Should create temp file successfully")

	return filePath
}

// CreateTempDir creates a temporary directory structure. Names ending in a
// slash become empty directories.
func (f *FileHelpers) CreateTempDir(t *testing.T, files map[string]string) string {
	tmpDir := t.TempDir()

	for filename, content := range files {
		filePath := filepath.Join(tmpDir, filename)

		if strings.HasSuffix(filename, "/") {
			require.NoError(t, os.MkdirAll(filePath, 0755), "Should create directory %s", filename)
			continue
		}

		// Create directory if needed
		dir := filepath.Dir(filePath)
		if dir != tmpDir {
			err := os.MkdirAll(dir, 0755)
			require.NoError(t, err, "Should create directory %s", dir)
		}

		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err, "Should create file %s", filename)
	}

	return tmpDir
}
