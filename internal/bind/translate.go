package bind

import "strings"

// translations maps alternate terminal encodings to the canonical sequences
// bindings are registered under.
var translations = map[string]string{
	"\x1bOA":   KeyUp,
	"\x1bOB":   KeyDown,
	"\x1bOC":   KeyRight,
	"\x1bOD":   KeyLeft,
	"\x1bOH":   KeyHome,
	"\x1bOF":   KeyEnd,
	"\x1b[1~":  KeyHome,
	"\x1b[7~":  KeyHome,
	"\x1b[4~":  KeyEnd,
	"\x1b[8~":  KeyEnd,
	"\x1b[11~": KeyF1,
	"\x1b[12~": KeyF2,
	"\x1b[13~": KeyF3,
	"\x1b[14~": KeyF4,
	"\x08":     KeyBackspace,
	"\n":       KeyEnter,
}

// Translate returns the canonical form of seq if it is a known alternate
// encoding. It does not depend on what is bound.
func Translate(seq string) (string, bool) {
	t, ok := translations[seq]
	return t, ok
}

// isTranslationPrefix reports whether seq is a proper prefix of some alternate
// encoding, so more input may still complete it.
func isTranslationPrefix(seq string) bool {
	for raw := range translations {
		if len(raw) > len(seq) && strings.HasPrefix(raw, seq) {
			return true
		}
	}
	return false
}
