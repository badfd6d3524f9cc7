// Package cmd implements the simulant command line.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/ui"
)

// Version is set at link time.
var Version = "dev"

// App carries the dependencies commands reach the outside world through.
type App struct {
	Out io.Writer
	Err io.Writer

	// Dir is the directory project lookup starts from. Empty means the
	// process working directory.
	Dir string

	// Runner executes host tools. Nil means a process.Local built with the
	// invocation's logger.
	Runner process.Runner

	// Containers opens the build environment provider. It is only called
	// when a console step needs it.
	Containers func(cfg config.Config, log *logrus.Logger, out io.Writer) container.Provider

	// Confirm asks yes/no questions.
	Confirm ui.ConfirmFunc

	verbose    bool
	configFile string
	jobs       int
}

// NewApp returns the production wiring.
func NewApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		Containers: dockerProvider,
		Confirm:    ui.TerminalConfirm,
	}
}

// NewRootCmd builds the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "simulant",
		Short: "Simulant CLI - create, build, run and package Simulant games",
		Long: `simulant manages game projects built on the Simulant engine.

It scaffolds new projects, downloads prebuilt engine releases, builds
natively or for the Dreamcast inside a Docker toolchain container, and
packages games as Flatpak bundles or bootable disc images.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Show every external command and container step")
	root.PersistentFlags().IntVarP(&app.jobs, "jobs", "j", 0, "Parallel compile jobs (default: one per CPU)")
	root.PersistentFlags().StringVar(&app.configFile, "config", "", "Extra configuration file (highest precedence after flags)")

	root.AddCommand(
		newStartCmd(app),
		newBuildCmd(app),
		newRunCmd(app),
		newPackageCmd(app),
		newUpdateCmd(app),
		newTestCmd(app),
		newValidateCmd(app),
	)
	return root
}

// Execute runs the CLI with production wiring.
func Execute() error {
	return NewRootCmd(NewApp()).Execute()
}

func dockerProvider(cfg config.Config, log *logrus.Logger, out io.Writer) container.Provider {
	return func(ctx context.Context, hostDir, workDir string) (container.Executor, error) {
		cli, err := container.NewClient()
		if err != nil {
			return nil, err
		}
		return container.NewManager(cli, cfg.Container, log, out).Provider()(ctx, hostDir, workDir)
	}
}
