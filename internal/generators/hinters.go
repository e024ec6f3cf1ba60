package generators

import (
	"context"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Hinters asks each hinter in turn and returns the first suggestion.
type Hinters []clinktypes.Hinter

var _ clinktypes.Hinter = Hinters(nil)

// Suggest implements clinktypes.Hinter.
func (hs Hinters) Suggest(ctx context.Context, lines clinktypes.CommandLineStates) (string, bool) {
	for _, h := range hs {
		if ctx.Err() != nil {
			return "", false
		}
		if h == nil {
			continue
		}
		if s, ok := h.Suggest(ctx, lines); ok {
			return s, true
		}
	}
	return "", false
}
