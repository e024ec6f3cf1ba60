package generators

import (
	"os/exec"
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/internal/tokenizer"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Classifier colors command words by what they resolve to and arguments by
// their shape.
type Classifier struct {
	aliases  clinktypes.AliasLookup
	lookPath func(string) (string, error)
}

var _ clinktypes.WordClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier. aliases may be nil.
func NewClassifier(aliases clinktypes.AliasLookup) *Classifier {
	return &Classifier{aliases: aliases, lookPath: exec.LookPath}
}

// ClassifyCommand implements clinktypes.WordClassifier.
func (c *Classifier) ClassifyCommand(word string, quoted bool) clinktypes.WordClass {
	if !quoted && tokenizer.IsCmdCommand(word) != 0 {
		return clinktypes.ClassCommand
	}
	if c.aliases != nil && !quoted {
		if _, ok := c.aliases.Lookup(word); ok {
			return clinktypes.ClassDoskey
		}
	}
	if _, err := c.lookPath(word); err == nil {
		return clinktypes.ClassExecutable
	}
	return clinktypes.ClassUnrecognized
}

// Classify implements clinktypes.WordClassifier. Arguments starting with a
// dash, or a slash followed by a letter, are flags.
func (c *Classifier) Classify(line clinktypes.LineState, out []clinktypes.WordClass) {
	for i := range line.Words {
		if i == line.CommandWordIndex || out[i] != clinktypes.ClassArgument {
			continue
		}
		if isFlag(line.RawWord(i)) {
			out[i] = clinktypes.ClassFlag
		}
	}
}

func isFlag(word string) bool {
	if strings.HasPrefix(word, "-") && len(word) > 1 {
		return true
	}
	return len(word) == 2 && word[0] == '/' && isLetter(word[1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '?'
}
