package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// ToolchainFile is the CMake toolchain used for console builds.
const ToolchainFile = "Dreamcast.cmake"

// buildDreamcast runs configure and compile inside the build environment.
// Console builds always use the project's own libraries.
func (b *Builder) buildDreamcast(ctx context.Context, proj *project.Project, t target.Target, buildDir string) error {
	toolchain, err := FindFile(ToolchainDirs(proj.Root, t, b.cfg), ToolchainFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	if err := xos.CopyFile(toolchain, filepath.Join(buildDir, ToolchainFile)); err != nil {
		return fmt.Errorf("failed to copy toolchain file: %w", err)
	}

	env, err := b.env(ctx, proj.Root, b.cfg.Container.MountPath)
	if err != nil {
		return err
	}

	dir, err := env.Path(buildDir)
	if err != nil {
		return err
	}
	libDir, err := env.Path(t.LibraryDir(proj.Root))
	if err != nil {
		return err
	}

	configure := []string{
		"cmake",
		"-DCMAKE_TOOLCHAIN_FILE=" + dir + "/" + ToolchainFile,
		"-DCMAKE_BUILD_TYPE=" + t.BuildType.CMakeName(),
		"-DSIMULANT_INCLUDE_FOLDER=" + libDir + "/include",
		"-DSIMULANT_LIBRARY_FOLDER=" + libDir + "/lib",
		b.cfg.Container.MountPath,
	}
	if _, err := env.Exec(ctx, container.ExecRequest{Args: configure, Dir: dir, Check: true, Stream: true}); err != nil {
		return fmt.Errorf("cmake configure failed: %w", err)
	}

	compile := []string{"cmake", "--build", ".", "--", "-j" + strconv.Itoa(b.cfg.Jobs)}
	res, err := env.Exec(ctx, container.ExecRequest{Args: compile, Dir: dir, Stream: true})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	if res.Code != 0 {
		return &CompileError{Code: res.Code, Output: res.Output}
	}
	return nil
}

// ToolchainDirs lists the directories searched for toolchain and boot
// template files, in priority order: project-local, vendored engine,
// configured extras, user-installed, then system-wide.
func ToolchainDirs(root string, t target.Target, cfg config.Config) []string {
	dirs := []string{
		filepath.Join(root, "toolchains"),
		filepath.Join(t.LibraryDir(root), "toolchains"),
	}
	dirs = append(dirs, cfg.ToolchainDirs...)
	if dir := config.UserConfigDir(); dir != "" {
		dirs = append(dirs, filepath.Join(dir, "toolchains"))
	}
	return append(dirs,
		"/usr/local/share/simulant/toolchains",
		"/usr/share/simulant/toolchains",
	)
}

// FindFile returns the first dirs/name that exists.
func FindFile(dirs []string, name string) (string, error) {
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("%w: %s (searched %d directories)", ErrToolchainNotFound, name, len(dirs))
}
