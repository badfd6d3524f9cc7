package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
	"github.com/simulant-engine/simulant-tools/internal/watch"
)

type buildOptions struct {
	rebuild           bool
	release           bool
	useGlobalSimulant bool
	watch             bool
}

func newBuildCmd(app *App) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [platform]",
		Short: "Build the project",
		Long: `Configure and compile the project with CMake.

Platforms:
  native     - The machine you are on (default)
  linux      - Linux
  windows    - Windows (cross-compiled with mingw64-cmake on linux)
  dreamcast  - Dreamcast, built inside the toolchain container (always release)

Examples:
  simulant build                      # Debug build for this machine
  simulant build --release            # Release build
  simulant build dreamcast            # Dreamcast build in Docker
  simulant build --rebuild            # Clean the build directory first
  simulant build --watch              # Rebuild whenever sources change`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.rebuild, "rebuild", false, "Remove the build directory before building")
	cmd.Flags().BoolVar(&opts.release, "release", false, "Build in release mode")
	cmd.Flags().BoolVar(&opts.useGlobalSimulant, "use-global-simulant", false, "Build against a system-wide engine install")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild when sources, assets or CMakeLists.txt change")
	return cmd
}

func runBuild(ctx context.Context, app *App, opts *buildOptions, args []string) error {
	s, err := app.openProject()
	if err != nil {
		return err
	}

	t, err := parseTarget(args, opts.release)
	if err != nil {
		return err
	}

	bopts := builder.Options{UseGlobalSimulant: opts.useGlobalSimulant, Rebuild: opts.rebuild}
	if _, err := s.build(ctx, t, bopts); err != nil {
		if !opts.watch {
			return err
		}
		s.out.Error("%v", err)
	}

	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.DefaultConfig(s.proj.Root), s.log)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.out.Info(ui.IconWatch, "Watching for changes (Ctrl+C to stop)")
	// a rebuild never wipes the build directory
	bopts.Rebuild = false
	return w.Run(ctx, func(ctx context.Context, paths []string) {
		s.out.Info(ui.IconBuild, "%d file(s) changed", len(paths))
		if _, err := s.build(ctx, t, bopts); err != nil && !errors.Is(err, context.Canceled) {
			s.out.Error("%v", err)
		}
	})
}

// build runs one build and reports it.
func (s *session) build(ctx context.Context, t target.Target, opts builder.Options) (builder.Result, error) {
	start := time.Now()
	s.out.Info(ui.IconBuild, "Building %s for %s", s.proj.Descriptor.Name, t)

	res, err := s.builder().Build(ctx, s.proj, t, opts)
	if err != nil {
		s.explain(err)
		return res, err
	}

	s.out.Success("Build completed in %s", time.Since(start).Round(time.Millisecond))
	s.log.Debugf("build output in %s", res.BuildDir)
	return res, nil
}

// explain prints a hint for failures that carry captured tool output.
func (s *session) explain(err error) {
	var output []byte
	var compileErr *builder.CompileError
	var execErr *container.ExecError
	switch {
	case errors.As(err, &compileErr):
		output = compileErr.Output
	case errors.As(err, &execErr):
		output = execErr.Output
	default:
		return
	}
	if hint := builder.Explain(string(output)); hint != "" {
		s.out.Warn("%s", hint)
	}
}

// parseTarget resolves the optional platform argument.
func parseTarget(args []string, release bool) (target.Target, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	p, err := target.ParsePlatform(name)
	if err != nil {
		return target.Target{}, err
	}
	return target.New(p, release)
}
