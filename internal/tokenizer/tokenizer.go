package tokenizer

import (
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// TokenKind identifies what a Token spans.
type TokenKind int

const (
	// TokenCommand is one command of a line, produced by CommandTokenizer.
	TokenCommand TokenKind = iota
	// TokenWord is one word of a command, produced by WordTokenizer.
	TokenWord
	// TokenRedir is a redirection operator such as ">" or "2>&1".
	TokenRedir
)

func (k TokenKind) String() string {
	switch k {
	case TokenCommand:
		return "command"
	case TokenWord:
		return "word"
	case TokenRedir:
		return "redir"
	default:
		return "unknown"
	}
}

// Token is a span of the line. For words Offset/Length exclude the outer quote
// characters while RawOffset/RawEnd include them.
type Token struct {
	Kind      TokenKind
	Offset    int
	Length    int
	RawOffset int
	RawEnd    int
	Delim     byte
	Quoted    bool
	RedirArg  bool
	Alias     bool
	Command   bool
}

// End returns the offset just past the token text.
func (t Token) End() int {
	return t.Offset + t.Length
}

// Tokenizer is the common contract of the command and word tokenizers.
type Tokenizer interface {
	// Start prepares the tokenizer to scan line[begin:end]. Offsets of the
	// returned tokens are relative to the full line.
	Start(line string, begin, end int, quotes string, atBeginning bool)
	// Next returns the next token, or false at the end of the input.
	Next() (Token, bool)
}

// CommandTokenizer splits a line into commands at unquoted, unescaped "&",
// "&&", "|" and "||". A separator at the end of the input is followed by one
// empty command.
type CommandTokenizer struct {
	line   string
	pos    int
	end    int
	open   byte
	close  byte
	state  *CmdState
	done   bool
	called int
}

// NewCommandTokenizer creates a command tokenizer.
func NewCommandTokenizer() *CommandTokenizer {
	return &CommandTokenizer{state: NewCmdState(true)}
}

// Start implements Tokenizer.
func (t *CommandTokenizer) Start(line string, begin, end int, quotes string, _ bool) {
	if end > len(line) || end < 0 {
		end = len(line)
	}
	if begin > end {
		begin = end
	}
	t.line = line
	t.pos = begin
	t.end = end
	t.open, t.close = quotePair(quotes)
	t.done = false
	t.called++
}

// Starts returns how many times Start was called.
func (t *CommandTokenizer) Starts() int {
	return t.called
}

// Next implements Tokenizer.
func (t *CommandTokenizer) Next() (Token, bool) {
	if t.done {
		return Token{}, false
	}

	start := t.pos
	if t.isRemCommand(start) {
		t.pos = t.end
		t.done = true
		return t.command(start, t.end), true
	}

	inQuote := false
	for i := start; i < t.end; i++ {
		c := t.line[i]
		if inQuote {
			if c == t.close {
				inQuote = false
			}
			continue
		}
		switch {
		case c == t.open:
			inQuote = true
		case c == escapeChar:
			i++
		case c == '&' || c == '|':
			// ">&1" and "<&0" duplicate handles rather than separate commands.
			if c == '&' && i > start && (t.line[i-1] == '>' || t.line[i-1] == '<') {
				continue
			}
			sep := 1
			if i+1 < t.end && t.line[i+1] == c {
				sep = 2
			}
			t.pos = i + sep
			return t.command(start, i), true
		}
	}

	t.pos = t.end
	t.done = true
	return t.command(start, t.end), true
}

func (t *CommandTokenizer) command(begin, end int) Token {
	return Token{Kind: TokenCommand, Offset: begin, Length: end - begin, RawOffset: begin, RawEnd: end}
}

// isRemCommand checks whether the command starting at pos is the comment
// command, in which case it runs to the end of the input.
func (t *CommandTokenizer) isRemCommand(pos int) bool {
	pos, _ = SkipLeadingParens(t.line, pos, t.end, nil)
	if pos < t.end && t.line[pos] == t.open {
		return false
	}
	t.state.Clear(true)
	for ; pos < t.end; pos++ {
		if t.state.Test(t.line[pos]) {
			return t.state.IsRem()
		}
		if strings.IndexByte(commandDelimiters, t.line[pos]) >= 0 {
			return false
		}
	}
	t.state.Test(0)
	return t.state.IsRem()
}

// WordTokenizer splits one command into words and redirections.
type WordTokenizer struct {
	line    string
	begin   int
	pos     int
	end     int
	open    byte
	close   byte
	state   *CmdState
	aliases clinktypes.AliasLookup
	// commandWord is set while the command word has not been seen yet.
	commandWord  bool
	remainder    bool
	nextRedirArg bool
	called       int
}

// NewWordTokenizer creates a word tokenizer. aliases may be nil.
func NewWordTokenizer(aliases clinktypes.AliasLookup) *WordTokenizer {
	return &WordTokenizer{state: NewCmdState(false), aliases: aliases}
}

// SetAliases replaces the alias lookup.
func (t *WordTokenizer) SetAliases(aliases clinktypes.AliasLookup) {
	t.aliases = aliases
}

// Start implements Tokenizer. The paren depth carries over from the previous
// command so a group opened there can be closed here.
func (t *WordTokenizer) Start(line string, begin, end int, quotes string, atBeginning bool) {
	if end > len(line) || end < 0 {
		end = len(line)
	}
	if begin > end {
		begin = end
	}
	t.line = line
	t.begin = begin
	t.pos = begin
	t.end = end
	t.open, t.close = quotePair(quotes)
	t.remainder = false
	t.nextRedirArg = false
	t.commandWord = atBeginning
	t.state.Clear(atBeginning)
	t.called++

	if !atBeginning {
		return
	}

	pos, parens := SkipLeadingParens(line, begin, end, t.admittedAliases(begin, end))
	t.pos = pos
	t.state.SetDepth(t.state.Depth() + parens)
}

// Starts returns how many times Start was called.
func (t *WordTokenizer) Starts() int {
	return t.called
}

// ParenDepth returns the current paren nesting depth.
func (t *WordTokenizer) ParenDepth() int {
	return t.state.Depth()
}

// SetParenDepth sets the paren nesting depth, e.g. to reset it for a new line.
func (t *WordTokenizer) SetParenDepth(depth int) {
	t.state.SetDepth(depth)
}

// admittedAliases returns the alias lookup if alias expansion is allowed for the
// command word at begin. A line that starts with whitespace bypasses aliases.
func (t *WordTokenizer) admittedAliases(begin, end int) clinktypes.AliasLookup {
	if t.aliases == nil {
		return nil
	}
	if begin == 0 && end > 0 && isSpace(t.line[0]) {
		return nil
	}
	pos := begin
	for pos < end && isSpace(t.line[pos]) {
		pos++
	}
	if pos < end && t.line[pos] == t.open {
		return nil
	}
	return t.aliases
}

func (t *WordTokenizer) isBreak(c byte) bool {
	breaks := ShellWordBreaks
	if t.commandWord && !t.nextRedirArg {
		breaks = BasicWordBreaks
	}
	return strings.IndexByte(breaks, c) >= 0 || c == '&' || c == '|'
}

// Next implements Tokenizer.
func (t *WordTokenizer) Next() (Token, bool) {
	for {
		tok, ok, skip := t.next()
		if !skip {
			return tok, ok
		}
	}
}

func (t *WordTokenizer) next() (Token, bool, bool) {
	for t.pos < t.end && t.isBreak(t.line[t.pos]) {
		t.pos++
	}
	if t.pos >= t.end {
		return Token{}, false, false
	}

	delim := t.delimBefore(t.pos)

	if t.remainder {
		start := t.pos
		t.pos = t.end
		return Token{
			Kind: TokenWord, Offset: start, Length: t.end - start,
			RawOffset: start, RawEnd: t.end, Delim: delim,
		}, true, false
	}

	if tok, ok := t.redirection(); ok {
		return tok, true, false
	}

	isCommand := t.commandWord && !t.nextRedirArg
	start := t.pos
	quoted := t.line[start] == t.open
	if isCommand && quoted {
		t.state.Cancel()
	}

	inQuote := false
	for t.pos < t.end {
		c := t.line[t.pos]
		if inQuote {
			if c == t.close {
				inQuote = false
			}
			t.pos++
			continue
		}
		if isCommand && t.state.Test(c) {
			break
		}
		if c == t.open {
			inQuote = true
			quoted = true
			t.pos++
			continue
		}
		if c == escapeChar {
			t.pos += 2
			if t.pos > t.end {
				t.pos = t.end
			}
			continue
		}
		if t.isBreak(c) || c == '<' || c == '>' {
			break
		}
		t.pos++
	}
	if isCommand && t.pos >= t.end {
		t.state.Test(0)
	}
	if inQuote && isCommand {
		t.state.Cancel()
	}

	rawEnd := t.pos
	length := rawEnd - start
	if depth := t.state.Depth(); depth > 0 {
		var consumed int
		length, consumed = TrimTrailingParens(t.line, start, length, depth)
		t.state.SetDepth(depth - consumed)
		rawEnd = start + length
	}
	if length == 0 {
		return Token{}, false, true
	}

	offset := start
	if t.line[offset] == t.open {
		offset++
		length--
		if length > 0 && t.line[offset+length-1] == t.close {
			length--
		}
	}

	tok := Token{
		Kind: TokenWord, Offset: offset, Length: length,
		RawOffset: start, RawEnd: rawEnd, Delim: delim,
		Quoted: quoted, RedirArg: t.nextRedirArg,
	}
	t.nextRedirArg = false

	if isCommand {
		tok.Command = true
		t.commandWord = false
		if !quoted && !t.state.Failed() && !t.state.IsRem() {
			if aliases := t.admittedAliases(t.begin, t.end); aliases != nil {
				_, tok.Alias = aliases.Lookup(t.line[start:rawEnd])
			}
		}
		t.remainder = t.state.IsRem()
		t.state.NextWord()
	}
	return tok, true, false
}

// redirection consumes a redirection operator at the current position:
// an optional handle digit, then "<", ">" or ">>", then an optional "&N".
func (t *WordTokenizer) redirection() (Token, bool) {
	pos := t.pos
	if isDigit(t.line[pos]) && pos+1 < t.end && (t.line[pos+1] == '<' || t.line[pos+1] == '>') {
		pos++
	}
	c := t.line[pos]
	if c != '<' && c != '>' {
		return Token{}, false
	}
	pos++
	if c == '>' && pos < t.end && t.line[pos] == '>' {
		pos++
	}

	dup := false
	if pos+1 < t.end && t.line[pos] == '&' && isDigit(t.line[pos+1]) {
		pos += 2
		dup = true
	}

	start := t.pos
	t.pos = pos
	t.nextRedirArg = !dup
	return Token{Kind: TokenRedir, Offset: start, Length: pos - start, RawOffset: start, RawEnd: pos}, true
}

// delimBefore returns the delimiter character preceding pos, or 0.
func (t *WordTokenizer) delimBefore(pos int) byte {
	if pos <= t.begin {
		return 0
	}
	c := t.line[pos-1]
	if strings.IndexByte(ShellWordBreaks, c) >= 0 {
		return c
	}
	return 0
}
