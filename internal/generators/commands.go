package generators

import (
	"context"
	"strings"

	"github.com/A-SunsetMkt-Forks/clink/internal/tokenizer"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// AliasNames lists alias names, e.g. an alias.Table.
type AliasNames interface {
	Names() []string
}

// CommandGenerator offers shell internal commands and doskey aliases for the
// command word. It never claims the request so files still follow.
type CommandGenerator struct {
	aliases AliasNames
	extra   []string
}

// NewCommandGenerator creates a command generator. aliases may be nil; extra
// names are offered as plain commands.
func NewCommandGenerator(aliases AliasNames, extra ...string) *CommandGenerator {
	return &CommandGenerator{aliases: aliases, extra: extra}
}

// Generate implements clinktypes.MatchGenerator.
func (g *CommandGenerator) Generate(_ context.Context, lines clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	state := lines.ActiveState()
	end := state.WordCount() - 1
	if end < 0 || end != state.CommandWordIndex {
		return false, nil
	}
	if strings.ContainsAny(state.GetEndWord(), `/\`) {
		return false, nil
	}

	for _, name := range tokenizer.InternalCommands() {
		b.AddMatch(name, clinktypes.MatchWord)
	}
	for _, name := range g.extra {
		b.AddMatch(name, clinktypes.MatchWord)
	}
	if g.aliases != nil {
		for _, name := range g.aliases.Names() {
			b.AddMatch(name, clinktypes.MatchAlias)
		}
	}
	return false, nil
}
