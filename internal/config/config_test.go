package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateUserConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func TestDefault(t *testing.T) {
	c := Default()

	if c.Container.Name != DefaultContainerName {
		t.Errorf("expected container name %s, got %s", DefaultContainerName, c.Container.Name)
	}
	if c.Container.MountPath != DefaultMountPath {
		t.Errorf("expected mount path %s, got %s", DefaultMountPath, c.Container.MountPath)
	}
	if c.Jobs <= 0 {
		t.Errorf("expected positive job count, got %d", c.Jobs)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestResolve_ProjectFileOverridesDefaults(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	content := "container:\n  image: example/dc:1\n  stop_timeout: 5\njobs: 3\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Resolve(root, Overrides{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if c.Container.Image != "example/dc:1" {
		t.Errorf("expected image override, got %s", c.Container.Image)
	}
	if c.Container.StopAfter() != 5 {
		t.Errorf("expected stop timeout 5, got %d", c.Container.StopAfter())
	}
	if c.Jobs != 3 {
		t.Errorf("expected jobs 3, got %d", c.Jobs)
	}
	// Keys absent from the file keep their defaults.
	if c.Container.Name != DefaultContainerName {
		t.Errorf("expected default container name, got %s", c.Container.Name)
	}
}

func TestResolve_ZeroStopTimeoutKept(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, FileName), []byte("container:\n  stop_timeout: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Resolve(root, Overrides{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Container.StopAfter() != 0 {
		t.Errorf("expected stop timeout 0, got %d", c.Container.StopAfter())
	}

	if d := Default(); d.Container.StopAfter() != DefaultStopTimeout {
		t.Errorf("expected default stop timeout %d, got %d", DefaultStopTimeout, d.Container.StopAfter())
	}
}

func TestResolve_NegativeStopTimeout(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, FileName), []byte("container:\n  stop_timeout: -2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Resolve(root, Overrides{}); err == nil {
		t.Fatal("expected a negative stop timeout to be rejected")
	}
}

func TestResolve_FlagsWin(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, FileName), []byte("jobs: 3\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Resolve(root, Overrides{Jobs: 9, Verbose: true})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Jobs != 9 {
		t.Errorf("expected jobs 9, got %d", c.Jobs)
	}
	if !c.Verbose {
		t.Error("expected verbose")
	}
}

func TestResolve_UserFileThenProjectFile(t *testing.T) {
	isolateUserConfig(t)

	userDir := UserConfigDir()
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	user := "engine:\n  version: \"1.2\"\ntoolchain_dirs:\n  - /opt/toolchains\n"
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(user), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("engine:\n  version: \"1.3\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Resolve(root, Overrides{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Engine.Version != "1.3" {
		t.Errorf("expected project version 1.3, got %s", c.Engine.Version)
	}
	if len(c.ToolchainDirs) != 1 || c.ToolchainDirs[0] != "/opt/toolchains" {
		t.Errorf("expected user toolchain dirs, got %v", c.ToolchainDirs)
	}
	if c.Engine.FeedURL != DefaultFeedURL {
		t.Errorf("expected default feed url, got %s", c.Engine.FeedURL)
	}
}

func TestResolve_InvalidMountPath(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, FileName), []byte("container:\n  mount_path: relative\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Resolve(root, Overrides{}); err == nil {
		t.Fatal("expected validation error for relative mount path")
	}
}

func TestResolve_MalformedYAML(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, FileName), []byte("container: [\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Resolve(root, Overrides{}); err == nil {
		t.Fatal("expected parse error")
	}
}
