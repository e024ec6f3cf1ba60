package clinktypes

// WordClass is the coloring category assigned to a word by a classifier.
type WordClass byte

const (
	// ClassNone leaves the word uncolored.
	ClassNone WordClass = 0
	// ClassCommand is a shell-internal command name.
	ClassCommand WordClass = 'c'
	// ClassDoskey is a doskey alias name.
	ClassDoskey WordClass = 'd'
	// ClassExecutable is a command name resolved to a program.
	ClassExecutable WordClass = 'x'
	// ClassUnrecognized is a command name that could not be resolved.
	ClassUnrecognized WordClass = 'u'
	// ClassArgument is an ordinary argument.
	ClassArgument WordClass = 'a'
	// ClassFlag is a flag argument such as -x or /x.
	ClassFlag WordClass = 'f'
	// ClassRedirect is the operand of a redirection.
	ClassRedirect WordClass = 'n'
	// ClassOther is anything else.
	ClassOther WordClass = 'o'
)

// WordClassification colors a span of the line.
type WordClassification struct {
	Offset int
	Length int
	Class  WordClass
}

// Classifications is the coloring metadata for a whole line.
type Classifications struct {
	Line  string
	Words []WordClassification
}

// ClassAt returns the class covering offset, or ClassNone.
func (c Classifications) ClassAt(offset int) WordClass {
	for _, w := range c.Words {
		if offset >= w.Offset && offset < w.Offset+w.Length {
			return w.Class
		}
	}
	return ClassNone
}

var classNames = map[WordClass]string{
	ClassNone:         "none",
	ClassCommand:      "command",
	ClassDoskey:       "doskey",
	ClassExecutable:   "executable",
	ClassUnrecognized: "unrecognized",
	ClassArgument:     "argument",
	ClassFlag:         "flag",
	ClassRedirect:     "redirect",
	ClassOther:        "other",
}

func (c WordClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return string(rune(c))
}
