package luagen

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

var (
	_ clinktypes.MatchGenerator = (*Host)(nil)
	_ clinktypes.Hinter         = (*Host)(nil)
	_ clinktypes.PromptFilter   = (*Host)(nil)
)

// Generate implements clinktypes.MatchGenerator by calling each script
// generator's generate method in priority order until one returns true.
func (h *Host) Generate(ctx context.Context, lines clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false, ErrClosed
	}

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	ls := newObject(h.L, lineStateType, lines.ActiveState())
	builder := newObject(h.L, builderType, b)
	for _, r := range h.registrations(kindGenerator) {
		ret, err := h.call(r.self, "generate", ls, builder)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, fmt.Errorf("lua generator %d: %w", r.priority, err)
		}
		if lua.LVAsBool(ret) {
			return true, nil
		}
	}
	return false, nil
}

// Suggest implements clinktypes.Hinter. The first hinter returning a string
// wins.
func (h *Host) Suggest(ctx context.Context, lines clinktypes.CommandLineStates) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", false
	}

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	ls := newObject(h.L, lineStateType, lines.ActiveState())
	for _, r := range h.registrations(kindHinter) {
		ret, err := h.call(r.self, "suggest", ls)
		if err != nil {
			h.logger.Warn("Hinter failed", "priority", r.priority, "error", err)
			continue
		}
		if s, ok := ret.(lua.LString); ok && s != "" {
			return string(s), true
		}
	}
	return "", false
}

// FilterPrompt implements clinktypes.PromptFilter. Each prompt filter's
// filter method gets the prompt so far and may return a replacement; a second
// result of false stops the filters after it. A failing filter is skipped.
func (h *Host) FilterPrompt(ctx context.Context, prompt string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return prompt
	}

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	for _, r := range h.registrations(kindPromptFilter) {
		rets, err := h.callN(r.self, "filter", 2, lua.LString(prompt))
		if err != nil {
			h.logger.Warn("Prompt filter failed", "priority", r.priority, "error", err)
			continue
		}
		if s, ok := rets[0].(lua.LString); ok {
			prompt = string(s)
		}
		if rets[1] == lua.LFalse {
			break
		}
	}
	return prompt
}

// Classifier combines a base classifier with the script classifiers, which
// run after it and may override any word's class.
type Classifier struct {
	host *Host
	base clinktypes.WordClassifier
}

var (
	_ clinktypes.WordClassifier  = (*Classifier)(nil)
	_ clinktypes.CommandObserver = (*Classifier)(nil)
)

// Classifier returns a classifier running base first. base may be nil.
func (h *Host) Classifier(base clinktypes.WordClassifier) *Classifier {
	return &Classifier{host: h, base: base}
}

// ClassifyCommand implements clinktypes.WordClassifier.
func (c *Classifier) ClassifyCommand(word string, quoted bool) clinktypes.WordClass {
	if c.base != nil {
		return c.base.ClassifyCommand(word, quoted)
	}
	return clinktypes.ClassOther
}

// Classify implements clinktypes.WordClassifier.
func (c *Classifier) Classify(line clinktypes.LineState, out []clinktypes.WordClass) {
	if c.base != nil {
		c.base.Classify(line, out)
	}

	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	ls := newObject(h.L, lineStateType, line)
	cl := newObject(h.L, classificationsType, &classifications{out: out})
	for _, r := range h.registrations(kindClassifier) {
		if _, err := h.call(r.self, "classify", ls, cl); err != nil {
			h.logger.Warn("Classifier failed", "priority", r.priority, "error", err)
		}
	}
}

// OnCommand implements clinktypes.CommandObserver, forwarding to the base
// classifier and to script classifiers with an oncommand method.
func (c *Classifier) OnCommand(line clinktypes.LineState, word string, quoted bool) {
	if obs, ok := c.base.(clinktypes.CommandObserver); ok {
		obs.OnCommand(line, word, quoted)
	}

	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	ls := newObject(h.L, lineStateType, line)
	for _, r := range h.registrations(kindClassifier) {
		if _, err := h.call(r.self, "oncommand", ls, lua.LString(word), lua.LBool(quoted)); err != nil {
			h.logger.Warn("Command hook failed", "priority", r.priority, "error", err)
		}
	}
}
