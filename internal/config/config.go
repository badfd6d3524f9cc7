// Package config holds the tool configuration. A Config is built once per
// invocation and handed to every component; nothing reads it from globals.
package config

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the per-project override file at the project root.
	FileName = ".simulant.yaml"

	DefaultFeedURL       = "https://storage.googleapis.com/simulant-engine/releases"
	DefaultEngineVersion = "current"
	DefaultImage         = "kazade/dreamcast-sdk:latest"
	DefaultContainerName = "simulant-dreamcast-builder"
	DefaultMountPath     = "/simulant"
	DefaultSetupScript   = "/opt/toolchains/dc/kos/environ.sh"
	DefaultStopTimeout   = 1
)

// Config represents the merged tool configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`

	Container ContainerConfig `yaml:"container"`

	// ToolchainDirs are searched for toolchain files after the project's own
	// directories and before the system-wide ones.
	ToolchainDirs []string `yaml:"toolchain_dirs,omitempty"`

	// Jobs is the compile parallelism; 0 means one job per CPU.
	Jobs int `yaml:"jobs,omitempty"`

	Flatpak FlatpakConfig `yaml:"flatpak"`

	// Verbose enables debug logging. Only set from the command line.
	Verbose bool `yaml:"-"`
}

// EngineConfig locates the prebuilt engine releases.
type EngineConfig struct {
	Version string `yaml:"version"`
	FeedURL string `yaml:"feed_url"`
}

// ContainerConfig describes the isolated build environment used for
// console builds.
type ContainerConfig struct {
	Image       string `yaml:"image"`
	Name        string `yaml:"name"`
	MountPath   string `yaml:"mount_path"`
	SetupScript string `yaml:"setup_script"`
	// StopTimeout is how long, in seconds, a previous environment is given
	// to stop before it is killed. Zero kills it at once; nil means the
	// default.
	StopTimeout *int `yaml:"stop_timeout"`
}

// StopAfter returns the stop timeout in seconds.
func (c ContainerConfig) StopAfter() int {
	if c.StopTimeout == nil {
		return DefaultStopTimeout
	}
	return *c.StopTimeout
}

// Seconds returns a pointer to n, for StopTimeout.
func Seconds(n int) *int {
	return &n
}

// FlatpakConfig selects the runtime the desktop bundle targets.
type FlatpakConfig struct {
	Runtime        string `yaml:"runtime"`
	RuntimeVersion string `yaml:"runtime_version"`
	SDK            string `yaml:"sdk"`
}

// Default returns the built-in configuration.
func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// applyDefaults sets default values for missing fields.
func (c *Config) applyDefaults() {
	if c.Engine.Version == "" {
		c.Engine.Version = DefaultEngineVersion
	}
	if c.Engine.FeedURL == "" {
		c.Engine.FeedURL = DefaultFeedURL
	}
	if c.Container.Image == "" {
		c.Container.Image = DefaultImage
	}
	if c.Container.Name == "" {
		c.Container.Name = DefaultContainerName
	}
	if c.Container.MountPath == "" {
		c.Container.MountPath = DefaultMountPath
	}
	if c.Container.SetupScript == "" {
		c.Container.SetupScript = DefaultSetupScript
	}
	if c.Container.StopTimeout == nil {
		c.Container.StopTimeout = Seconds(DefaultStopTimeout)
	}
	if c.Jobs == 0 {
		c.Jobs = runtime.NumCPU()
	}
	if c.Flatpak.Runtime == "" {
		c.Flatpak.Runtime = "org.freedesktop.Platform"
	}
	if c.Flatpak.RuntimeVersion == "" {
		c.Flatpak.RuntimeVersion = "23.08"
	}
	if c.Flatpak.SDK == "" {
		c.Flatpak.SDK = "org.freedesktop.Sdk"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !path.IsAbs(c.Container.MountPath) {
		return fmt.Errorf("container.mount_path must be an absolute path, got %q", c.Container.MountPath)
	}
	if c.Container.StopTimeout != nil && *c.Container.StopTimeout < 0 {
		return fmt.Errorf("container.stop_timeout must not be negative")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	if !strings.HasPrefix(c.Engine.FeedURL, "http://") && !strings.HasPrefix(c.Engine.FeedURL, "https://") {
		return fmt.Errorf("engine.feed_url must be an http(s) URL, got %q", c.Engine.FeedURL)
	}
	return nil
}

// mergeFile decodes the YAML file at path over c. Keys absent from the file
// keep their current value. A missing file is not an error.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
