package editor

import (
	"github.com/A-SunsetMkt-Forks/clink/internal/collector"
	"github.com/A-SunsetMkt-Forks/clink/internal/tokenizer"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ClassifyReason says why a reclassification was requested.
type ClassifyReason int

const (
	// ReasonEdit reclassifies only if the text changed.
	ReasonEdit ClassifyReason = iota
	// ReasonForce always reclassifies.
	ReasonForce
)

// Classifications returns the word classes from the last classification.
func (e *Editor) Classifications() clinktypes.Classifications {
	return e.classes
}

// Reclassify recomputes the class of every word on the line. It is skipped
// when the text has not changed since the last run, unless forced. Command
// words are looked up in a cache first so the classifier is only asked about
// words it has not seen.
func (e *Editor) Reclassify(reason ClassifyReason) {
	text := e.collab.Buffer.Text()
	if reason != ReasonForce && e.classifyValid && text == e.classifyLine {
		e.logger.Debug("Skipped classification, line unchanged")
		return
	}

	lines := e.collector.Collect(text, e.collab.Buffer.Cursor(), collector.WholeCommand)
	out := clinktypes.Classifications{Line: text}

	for idx, state := range lines.States {
		classes := make([]clinktypes.WordClass, state.WordCount())
		for i, w := range state.Words {
			if w.IsRedirArg {
				classes[i] = clinktypes.ClassRedirect
			} else {
				classes[i] = clinktypes.ClassArgument
			}
		}

		if cw, ok := state.CommandWord(); ok {
			word := state.GetWord(state.CommandWordIndex)
			if cw.IsAlias {
				classes[state.CommandWordIndex] = clinktypes.ClassDoskey
			} else {
				classes[state.CommandWordIndex] = e.commandClass(word, cw.Quoted)
			}
			if idx == lines.Active {
				e.observeCommand(state, word, cw.Quoted)
			}
		}

		if c := e.collab.Classifier; c != nil {
			c.Classify(state, classes)
		}
		for i, w := range state.Words {
			out.Words = append(out.Words, clinktypes.WordClassification{Offset: w.Offset, Length: w.Length, Class: classes[i]})
		}
	}

	e.classes = out
	e.classifyLine = text
	e.classifyValid = true
}

// commandClass classifies a command word, consulting the cache first.
func (e *Editor) commandClass(word string, quoted bool) clinktypes.WordClass {
	if word == "" {
		return clinktypes.ClassNone
	}
	if class, ok := e.commands.get(word, quoted); ok {
		return class
	}

	var class clinktypes.WordClass
	switch {
	case e.collab.Classifier != nil:
		class = e.collab.Classifier.ClassifyCommand(word, quoted)
	case !quoted && tokenizer.IsCmdCommand(word) != 0:
		class = clinktypes.ClassCommand
	default:
		class = clinktypes.ClassOther
	}
	e.commands.set(word, quoted, class)
	e.logger.Debug("Classified command word", "word", word, "class", class.String())
	return class
}

// observeCommand tells the classifier about the active command word when it
// differs from the last one reported.
func (e *Editor) observeCommand(state clinktypes.LineState, word string, quoted bool) {
	key := commandKey{word: word, quoted: quoted}
	if e.prevCmdValid && e.prevCommand == key {
		return
	}
	e.prevCommand = key
	e.prevCmdValid = true
	if obs, ok := e.collab.Classifier.(clinktypes.CommandObserver); ok {
		obs.OnCommand(state, word, quoted)
	}
}
