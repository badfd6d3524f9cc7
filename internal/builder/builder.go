// Package builder configures and compiles a project with CMake, natively,
// with a cross toolchain, or inside the console build environment.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/target"
)

var (
	// ErrToolNotFound is returned when a required host tool is not on PATH.
	ErrToolNotFound = errors.New("required tool not found")

	// ErrToolchainNotFound is returned when no toolchain directory holds the
	// requested file.
	ErrToolchainNotFound = errors.New("toolchain file not found")
)

// CompileError reports a failed in-container compile. The caller decides
// whether it is fatal.
type CompileError struct {
	Code   int
	Output []byte
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compilation failed with code %d", e.Code)
}

// Options tune a single build.
type Options struct {
	// UseGlobalSimulant builds against a system-wide engine install instead
	// of the project's libraries/ directory.
	UseGlobalSimulant bool
	// Rebuild removes the build directory first.
	Rebuild bool
}

// Result describes a finished build.
type Result struct {
	Target   target.Target
	BuildDir string
}

// Builder runs CMake builds.
type Builder struct {
	runner process.Runner
	env    container.Provider
	cfg    config.Config
	log    *logrus.Logger
}

// New creates a builder. env is only used for console targets.
func New(runner process.Runner, env container.Provider, cfg config.Config, log *logrus.Logger) *Builder {
	return &Builder{runner: runner, env: env, cfg: cfg, log: log}
}

// Build configures and compiles proj for t.
func (b *Builder) Build(ctx context.Context, proj *project.Project, t target.Target, opts Options) (Result, error) {
	buildDir := t.BuildDir(proj.Root)
	res := Result{Target: t, BuildDir: buildDir}

	if opts.Rebuild {
		b.log.Debugf("build: removing %s", buildDir)
		if err := os.RemoveAll(buildDir); err != nil {
			return res, fmt.Errorf("failed to clean build directory: %w", err)
		}
	}

	switch {
	case t.Platform == target.PlatformDreamcast:
		return res, b.buildDreamcast(ctx, proj, t, buildDir)
	case t.Platform == target.PlatformWindows && t.IsCross(target.Native()):
		return res, b.buildNative(ctx, proj, t, buildDir, "mingw64-cmake", opts)
	default:
		return res, b.buildNative(ctx, proj, t, buildDir, "cmake", opts)
	}
}

// CMakeFlags returns the configure flags shared by every target.
func CMakeFlags(root string, t target.Target, useGlobal bool) []string {
	flags := []string{"-DCMAKE_BUILD_TYPE=" + t.BuildType.CMakeName()}
	if !useGlobal {
		lib := t.LibraryDir(root)
		flags = append(flags,
			"-DSIMULANT_INCLUDE_FOLDER="+filepath.Join(lib, "include"),
			"-DSIMULANT_LIBRARY_FOLDER="+filepath.Join(lib, "lib"),
		)
	}
	return flags
}

func (b *Builder) buildNative(ctx context.Context, proj *project.Project, t target.Target, buildDir, configureTool string, opts Options) error {
	for _, tool := range []string{configureTool, "cmake"} {
		if _, err := b.runner.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s (install CMake and make sure it is on your PATH)", ErrToolNotFound, tool)
		}
	}

	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}

	configure := append(CMakeFlags(proj.Root, t, opts.UseGlobalSimulant), proj.Root)
	if err := b.runner.Run(ctx, process.Command{Name: configureTool, Args: configure, Dir: buildDir}); err != nil {
		return fmt.Errorf("cmake configure failed: %w", err)
	}

	compile := []string{"--build", ".", "--parallel", strconv.Itoa(b.cfg.Jobs)}
	if err := b.runner.Run(ctx, process.Command{Name: "cmake", Args: compile, Dir: buildDir}); err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	return nil
}
