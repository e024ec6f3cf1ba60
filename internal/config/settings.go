// Package config loads clink settings from defaults, an optional config file,
// .env files and CLINK_ environment variables, and reads keymap files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/editor"
	"github.com/A-SunsetMkt-Forks/clink/internal/matches"
	"github.com/A-SunsetMkt-Forks/clink/internal/modules/pager"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// EnvPrefix prefixes every setting's environment variable.
const EnvPrefix = "CLINK"

// Settings are the user-facing settings.
type Settings struct {
	QuotePair        string        `mapstructure:"quote_pair"`
	SequenceTimeout  time.Duration `mapstructure:"sequence_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	SuggestEnabled   bool          `mapstructure:"suggest_enabled"`
	AutoGenerate     bool          `mapstructure:"auto_generate"`
	MatchFilter      string        `mapstructure:"match_filter"`
	CommandCacheSize int           `mapstructure:"command_cache_size"`
	PagerThreshold   int           `mapstructure:"pager_threshold"`
	PagerHeight      int           `mapstructure:"pager_height"`
	PickerRows       int           `mapstructure:"picker_rows"`
	HistoryFile      string        `mapstructure:"history_file"`
	HistoryMax       int           `mapstructure:"history_max"`
	AliasFile        string        `mapstructure:"alias_file"`
	WatchAliases     bool          `mapstructure:"watch_aliases"`
	KeymapFile       string        `mapstructure:"keymap_file"`
	ScriptsDir       string        `mapstructure:"scripts_dir"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFile          string        `mapstructure:"log_file"`
	Prompt           string        `mapstructure:"prompt"`
	ShellMarks       bool          `mapstructure:"shell_marks"`
	TestMode         bool          `mapstructure:"test_mode"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	ed := editor.DefaultConfig()
	pg := pager.DefaultConfig()
	return Settings{
		QuotePair:        clinktypes.DefaultQuotePair,
		SequenceTimeout:  bind.DefaultSequenceTimeout,
		IdleTimeout:      ed.IdleTimeout,
		SuggestEnabled:   ed.SuggestEnabled,
		AutoGenerate:     true,
		MatchFilter:      string(matches.FilterPrefix),
		CommandCacheSize: ed.CommandCacheSize,
		PagerThreshold:   pg.Threshold,
		PagerHeight:      pg.Height,
		PickerRows:       10,
		HistoryMax:       1000,
		WatchAliases:     true,
		LogLevel:         "info",
		Prompt:           "clink> ",
	}
}

// EditorConfig returns the editor configuration the settings describe.
func (s Settings) EditorConfig() editor.Config {
	cfg := editor.DefaultConfig()
	cfg.QuotePair = s.QuotePair
	cfg.SequenceTimeout = s.SequenceTimeout
	cfg.IdleTimeout = s.IdleTimeout
	cfg.SuggestEnabled = s.SuggestEnabled
	cfg.AutoGenerate = s.AutoGenerate
	cfg.MatchFilter = matches.ParseFilterMode(s.MatchFilter)
	cfg.CommandCacheSize = s.CommandCacheSize
	cfg.TestMode = s.TestMode
	return cfg
}

// PagerConfig returns the pager configuration the settings describe.
func (s Settings) PagerConfig(width int) pager.Config {
	return pager.Config{Threshold: s.PagerThreshold, Height: s.PagerHeight, Width: width}
}

// Validate checks every setting and reports all problems together.
func (s Settings) Validate() error {
	var errs *multierror.Error
	if n := len(s.QuotePair); n < 1 || n > 2 {
		errs = multierror.Append(errs, fmt.Errorf("quote_pair: want one or two characters, got %q", s.QuotePair))
	}
	switch strings.ToLower(s.MatchFilter) {
	case string(matches.FilterPrefix), string(matches.FilterFuzzy):
	default:
		errs = multierror.Append(errs, fmt.Errorf("match_filter: want prefix or fuzzy, got %q", s.MatchFilter))
	}
	if s.SequenceTimeout < 0 {
		errs = multierror.Append(errs, errors.New("sequence_timeout: must not be negative"))
	}
	if s.HistoryMax < 0 {
		errs = multierror.Append(errs, errors.New("history_max: must not be negative"))
	}
	if s.CommandCacheSize < 1 {
		errs = multierror.Append(errs, errors.New("command_cache_size: must be positive"))
	}
	return errs.ErrorOrNil()
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/clink or its platform
// equivalent.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "clink")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "clink")
}

// Loader reads settings into a viper instance.
type Loader struct {
	v         *viper.Viper
	configDir string
	workDir   string
}

// NewLoader creates a loader over v. Empty directories mean the default
// config dir and the working directory.
func NewLoader(v *viper.Viper, configDir, workDir string) *Loader {
	if v == nil {
		v = viper.New()
	}
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return &Loader{v: v, configDir: configDir, workDir: workDir}
}

// Viper returns the underlying viper instance, e.g. for binding flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the settings. Precedence, highest first: explicit viper values
// and bound flags, the environment, .env files (the working directory's over
// the config dir's), the config file, defaults. A config file named by
// the "config" key must exist; otherwise clink.yaml or clink.toml is
// searched in the working and config directories.
func (l *Loader) Load() (Settings, error) {
	v := l.v
	setDefaults(v, DefaultSettings())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := l.loadDotEnv(); err != nil {
		return Settings{}, err
	}
	if err := l.readConfigFile(); err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func (l *Loader) readConfigFile() error {
	v := l.v
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("clink")
	v.AddConfigPath(l.workDir)
	if l.configDir != "" {
		v.AddConfigPath(l.configDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadDotEnv loads .env files into the process environment without
// overriding variables that are already set, so CLINK_ entries there reach
// viper's environment lookup.
func (l *Loader) loadDotEnv() error {
	var paths []string
	for _, dir := range []string{l.workDir, l.configDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load .env files: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, s Settings) {
	v.SetDefault("quote_pair", s.QuotePair)
	v.SetDefault("sequence_timeout", s.SequenceTimeout)
	v.SetDefault("idle_timeout", s.IdleTimeout)
	v.SetDefault("suggest_enabled", s.SuggestEnabled)
	v.SetDefault("auto_generate", s.AutoGenerate)
	v.SetDefault("match_filter", s.MatchFilter)
	v.SetDefault("command_cache_size", s.CommandCacheSize)
	v.SetDefault("pager_threshold", s.PagerThreshold)
	v.SetDefault("pager_height", s.PagerHeight)
	v.SetDefault("picker_rows", s.PickerRows)
	v.SetDefault("history_file", s.HistoryFile)
	v.SetDefault("history_max", s.HistoryMax)
	v.SetDefault("alias_file", s.AliasFile)
	v.SetDefault("watch_aliases", s.WatchAliases)
	v.SetDefault("keymap_file", s.KeymapFile)
	v.SetDefault("scripts_dir", s.ScriptsDir)
	v.SetDefault("log_level", s.LogLevel)
	v.SetDefault("log_file", s.LogFile)
	v.SetDefault("prompt", s.Prompt)
	v.SetDefault("shell_marks", s.ShellMarks)
	v.SetDefault("test_mode", s.TestMode)
}
