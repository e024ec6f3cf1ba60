package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"

	"github.com/A-SunsetMkt-Forks/clink/internal/alias"
	"github.com/A-SunsetMkt-Forks/clink/internal/config"
	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/generators"
	"github.com/A-SunsetMkt-Forks/clink/internal/history"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/luagen"
	"github.com/A-SunsetMkt-Forks/clink/internal/modules/pager"
	"github.com/A-SunsetMkt-Forks/clink/internal/modules/picker"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// Generator priorities. Scripts run first so they can claim a command's
// arguments before files are listed.
const (
	priorityScripts  = 10
	priorityCommands = 50
	priorityFiles    = 100
)

// session holds the collaborators shared by the shell and edit commands.
type session struct {
	settings   config.Settings
	history    *history.History
	aliases    *alias.Table
	registry   *generators.Registry
	scripts    *luagen.Host
	classifier clinktypes.WordClassifier
	hinters    generators.Hinters
	prompts    clinktypes.PromptFilter

	cancel context.CancelFunc
	logger *log.Logger
}

// newSession builds the collaborators described by settings. Files that fail
// to load are logged and skipped so a broken alias file or script never
// keeps the editor from starting.
func newSession(ctx context.Context, settings config.Settings, workDir string) (*session, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		settings: settings,
		registry: generators.NewRegistry(),
		cancel:   cancel,
		logger:   logger.NewStyledLogger("Session"),
	}

	if err := s.loadHistory(); err != nil {
		cancel()
		return nil, err
	}
	s.loadAliases(ctx)
	s.loadScripts()

	if err := s.registerGenerators(workDir); err != nil {
		s.Close()
		return nil, err
	}

	base := generators.NewClassifier(s.aliases)
	s.classifier = base
	if s.scripts != nil {
		s.classifier = s.scripts.Classifier(base)
		s.hinters = append(s.hinters, s.scripts)
		s.prompts = s.scripts
	}
	s.hinters = append(s.hinters, s.history)
	return s, nil
}

func (s *session) loadHistory() error {
	if s.settings.HistoryFile == "" {
		s.history = history.New(s.settings.HistoryMax)
		return nil
	}
	h, err := history.Load(s.settings.HistoryFile, s.settings.HistoryMax)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	s.history = h
	return nil
}

func (s *session) loadAliases(ctx context.Context) {
	if s.settings.AliasFile == "" {
		s.aliases = alias.New()
		return
	}
	t, err := alias.Load(s.settings.AliasFile)
	if err != nil {
		s.logger.Warn("Failed to load aliases", "file", s.settings.AliasFile, "error", err)
	}
	s.aliases = t
	if !s.settings.WatchAliases {
		return
	}
	err = t.Watch(ctx, 0, func(err error) {
		if err != nil {
			s.logger.Warn("Failed to reload aliases", "error", err)
			return
		}
		s.logger.Debug("Reloaded aliases", "count", t.Len())
	})
	if err != nil {
		s.logger.Warn("Failed to watch aliases", "error", err)
	}
}

func (s *session) loadScripts() {
	if s.settings.ScriptsDir == "" {
		return
	}
	if _, err := os.Stat(s.settings.ScriptsDir); err != nil {
		s.logger.Warn("Scripts directory unavailable", "dir", s.settings.ScriptsDir, "error", err)
		return
	}
	s.scripts = luagen.New()
	if err := s.scripts.LoadDir(s.settings.ScriptsDir); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				s.logger.Warn("Script failed to load", "error", e)
			}
		} else {
			s.logger.Warn("Scripts failed to load", "error", err)
		}
	}
	gens, classifiers, hinters, promptFilters := s.scripts.Count()
	s.logger.Debug("Loaded scripts", "generators", gens, "classifiers", classifiers, "hinters", hinters, "prompt_filters", promptFilters)
}

func (s *session) registerGenerators(workDir string) error {
	if s.scripts != nil {
		if err := s.registry.Register("scripts", priorityScripts, s.scripts); err != nil {
			return err
		}
	}
	if err := s.registry.Register("commands", priorityCommands, generators.NewCommandGenerator(s.aliases)); err != nil {
		return err
	}
	return s.registry.Register("files", priorityFiles, generators.NewFileGenerator(workDir))
}

// collaborators returns the shared collaborators. The caller supplies the
// buffer, keys and display.
func (s *session) collaborators() editor.Collaborators {
	return editor.Collaborators{
		Aliases:    s.aliases,
		History:    s.history,
		Searcher:   s.history,
		Generator:  s.registry,
		Classifier: s.classifier,
		Hinter:     s.hinters,
	}
}

// configure adds the pager and picker modules to ed and applies the keymap
// file. width and height are the terminal size. The picker also pops up the
// session history.
func (s *session) configure(ed *editor.Editor, width, height int) error {
	if err := ed.AddModule(pager.New(s.settings.PagerConfig(width))); err != nil {
		return err
	}
	if err := ed.AddModule(picker.New(width, min(s.settings.PickerRows, height), picker.WithHistory(s.history))); err != nil {
		return err
	}
	s.applyKeymap(ed)
	return nil
}

// applyKeymap binds the keymap file's keys. Bad entries are logged; the
// good ones still apply.
func (s *session) applyKeymap(ed *editor.Editor) {
	if s.settings.KeymapFile == "" {
		return
	}
	km, err := config.LoadKeymap(s.settings.KeymapFile)
	if err == nil {
		err = ed.ApplyKeymap(km.Groups)
	} else if len(km.Groups) > 0 {
		err = multierror.Append(err, ed.ApplyKeymap(km.Groups))
	}
	if err != nil {
		s.logger.Warn("Keymap problems", "file", s.settings.KeymapFile, "error", err)
	}
}

// record adds an accepted line to history.
func (s *session) record(line string) {
	if line == "" {
		return
	}
	if err := s.history.Add(line); err != nil {
		s.logger.Warn("Failed to save history", "error", err)
	}
}

// Close stops the alias watcher and the script host.
func (s *session) Close() {
	s.cancel()
	if s.scripts != nil {
		s.scripts.Close()
	}
}
