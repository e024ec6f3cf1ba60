package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
)

// ErrKeymapFormat is returned for a keymap file with an unknown extension.
var ErrKeymapFormat = errors.New("unsupported keymap format")

// Keymap binds key names to action names per bind group:
//
//	groups:
//	  default:
//	    "C-x C-r": previous-history
type Keymap struct {
	Groups map[string]map[string]string `yaml:"groups" toml:"groups"`
}

// LoadKeymap reads a .yaml, .yml or .toml keymap file and checks every key
// name. All bad key names are reported together.
func LoadKeymap(path string) (Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keymap{}, fmt.Errorf("reading keymap: %w", err)
	}

	var km Keymap
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &km)
	case ".toml":
		err = toml.Unmarshal(data, &km)
	default:
		return Keymap{}, fmt.Errorf("%w: %s", ErrKeymapFormat, path)
	}
	if err != nil {
		return Keymap{}, fmt.Errorf("parsing keymap %s: %w", path, err)
	}
	return km, km.Validate()
}

// Validate parses every key name.
func (k Keymap) Validate() error {
	var errs *multierror.Error
	for group, bindings := range k.Groups {
		for keys, action := range bindings {
			if _, err := bind.ParseKeys(keys); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %q: %w", group, keys, err))
			}
			if action == "" {
				errs = multierror.Append(errs, fmt.Errorf("%s: %q: empty action", group, keys))
			}
		}
	}
	return errs.ErrorOrNil()
}
