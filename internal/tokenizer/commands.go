// Package tokenizer splits a shell command line into commands and words under
// cmd-style quoting, escaping, redirection, paren grouping and alias rules.
//
// The tokenizers never fail. Input they cannot classify confidently degrades to
// a single catch-all word.
package tokenizer

import "strings"

// StateFlag describes what the known-commands table says about a command word.
type StateFlag uint8

const (
	// FlagNone means the word is not a known shell-internal command.
	FlagNone StateFlag = 0
	// FlagInternal marks a shell-internal command.
	FlagInternal StateFlag = 0x01
	// FlagSpecialWordBreaks marks commands whose name ends at punctuation such
	// as the dot in "echo.".
	FlagSpecialWordBreaks StateFlag = 0x02
	// FlagRem marks the comment command; the rest of the command is opaque.
	FlagRem StateFlag = 0x04
)

// Has reports whether every bit of f is set.
func (s StateFlag) Has(f StateFlag) bool {
	return s&f == f && f != FlagNone
}

const (
	// BasicWordBreaks end a command name.
	BasicWordBreaks = " \t"
	// ShellWordBreaks end an argument word.
	ShellWordBreaks = " \t=;,"
	// SpecialWordBreaks end the name of a FlagSpecialWordBreaks command and
	// start the following word.
	SpecialWordBreaks = "./\\:+[]("

	// commandDelimiters end the first word for known-command tests.
	commandDelimiters = " \t&|<>()"
	escapeChar        = '^'
)

// CommandsBasicWordBreaks lists internal commands whose names only end at whitespace.
var CommandsBasicWordBreaks = []string{
	"assoc", "break", "bcdedit", "chcp", "date", "endlocal", "exit", "for",
	"ftype", "goto", "if", "mklink", "pause", "rem", "setlocal", "shift",
	"start", "time", "verify",
}

// CommandsShellWordBreaks lists internal commands whose names also end at the
// special word break characters.
var CommandsShellWordBreaks = []string{
	"call", "cd", "chdir", "cls", "color", "copy", "del", "dir", "dpath",
	"echo", "erase", "md", "mkdir", "move", "path", "popd", "prompt",
	"pushd", "rd", "ren", "rename", "rmdir", "set", "title", "type", "ver",
	"vol",
}

var knownCommands = buildKnownCommands()

func buildKnownCommands() map[string]StateFlag {
	table := make(map[string]StateFlag, len(CommandsBasicWordBreaks)+len(CommandsShellWordBreaks))
	for _, name := range CommandsBasicWordBreaks {
		table[name] = FlagInternal
	}
	for _, name := range CommandsShellWordBreaks {
		table[name] = FlagInternal | FlagSpecialWordBreaks
	}
	table["rem"] |= FlagRem
	return table
}

// IsCmdCommand tests word against the known-commands table, ignoring case.
func IsCmdCommand(word string) StateFlag {
	return knownCommands[strings.ToLower(word)]
}

// InternalCommands returns the names of all known internal commands.
func InternalCommands() []string {
	names := make([]string, 0, len(knownCommands))
	for name := range knownCommands {
		names = append(names, name)
	}
	return names
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// quotePair splits a quote pair string into its opening and closing characters.
// A single character is used for both; an empty string means '"'.
func quotePair(quotes string) (open, close byte) {
	switch len(quotes) {
	case 0:
		return '"', '"'
	case 1:
		return quotes[0], quotes[0]
	default:
		return quotes[0], quotes[1]
	}
}
