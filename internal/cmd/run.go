package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/packager"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
)

// Emulator launches console disc images.
const Emulator = "flycast"

type runOptions struct {
	rebuild bool
	release bool
}

func newRunCmd(app *App) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [platform]",
		Short: "Build if needed, then run the game",
		Long: `Run the project's executable from the project root.

The project is built first when --rebuild is given or no executable exists
yet. For the Dreamcast the game is packaged into a disc image and started
in the flycast emulator.

Examples:
  simulant run
  simulant run --release
  simulant run dreamcast`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), app, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.rebuild, "rebuild", false, "Rebuild from scratch before running")
	cmd.Flags().BoolVar(&opts.release, "release", false, "Run the release build")
	return cmd
}

func runRun(ctx context.Context, app *App, opts *runOptions, args []string) error {
	s, err := app.openProject()
	if err != nil {
		return err
	}

	t, err := parseTarget(args, opts.release)
	if err != nil {
		return err
	}

	if t.Platform == target.PlatformDreamcast {
		return s.runDreamcast(ctx, t, opts)
	}

	binary := filepath.Join(t.BuildDir(s.proj.Root), s.proj.Descriptor.Executable)
	for _, ext := range t.BinaryExtensions() {
		binary += ext
	}

	if opts.rebuild || !fileExists(binary) {
		if _, err := s.build(ctx, t, builder.Options{Rebuild: opts.rebuild}); err != nil {
			return err
		}
	}

	s.out.Info(ui.IconRocket, "Running %s", s.proj.Descriptor.Name)
	return s.runner.Run(ctx, process.Command{Name: binary, Dir: s.proj.Root})
}

func (s *session) runDreamcast(ctx context.Context, t target.Target, opts *runOptions) error {
	if _, err := s.runner.LookPath(Emulator); err != nil {
		return fmt.Errorf("%w: %s (install the flycast emulator)", builder.ErrToolNotFound, Emulator)
	}

	if _, err := packager.FindBinary(t.BuildDir(s.proj.Root), ".elf"); opts.rebuild || err != nil {
		if _, err := s.build(ctx, t, builder.Options{Rebuild: opts.rebuild}); err != nil {
			return err
		}
	}

	cdi, err := s.packageDreamcast(ctx)
	if err != nil {
		return err
	}

	s.out.Info(ui.IconRocket, "Starting %s in %s", filepath.Base(cdi), Emulator)
	return s.runner.Run(ctx, process.Command{Name: Emulator, Args: []string{cdi}, Dir: s.proj.Root})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
