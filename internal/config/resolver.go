package config

import (
	"os"
	"path/filepath"
)

// Overrides carries values given on the command line. Zero values leave the
// file-based configuration untouched.
type Overrides struct {
	ConfigFile string
	Verbose    bool
	Jobs       int
}

// UserConfigDir returns the directory holding the user-level config file
// and user-installed toolchains.
func UserConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "simulant")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "simulant")
}

// Resolve builds the configuration for one invocation.
// Precedence: CLI flags > project .simulant.yaml > user config.yaml > defaults.
// projectRoot may be empty when the command is not project-scoped.
func Resolve(projectRoot string, o Overrides) (Config, error) {
	var c Config

	if dir := UserConfigDir(); dir != "" {
		if err := c.mergeFile(filepath.Join(dir, "config.yaml")); err != nil {
			return Config{}, err
		}
	}

	if projectRoot != "" {
		if err := c.mergeFile(filepath.Join(projectRoot, FileName)); err != nil {
			return Config{}, err
		}
	}

	if o.ConfigFile != "" {
		if _, err := os.Stat(o.ConfigFile); err != nil {
			return Config{}, err
		}
		if err := c.mergeFile(o.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	if o.Jobs > 0 {
		c.Jobs = o.Jobs
	}
	c.Verbose = o.Verbose

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
