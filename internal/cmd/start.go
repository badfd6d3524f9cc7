package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/template"
	"github.com/simulant-engine/simulant-tools/internal/ui"
	"github.com/simulant-engine/simulant-tools/internal/updater"
)

type startOptions struct {
	force      bool
	nativeOnly bool
	author     string
	skipUpdate bool
}

func newStartCmd(app *App) *cobra.Command {
	opts := &startOptions{}

	cmd := &cobra.Command{
		Use:   "start <project> [target]",
		Short: "Create a new Simulant project",
		Long: `Create a new Simulant project from the built-in template.

The project is written to [target], or to a directory named after the
project in the current directory. Engine releases are downloaded into the
new project unless --skip-update is given.

Examples:
  simulant start "Space Invaders"
  simulant start "Space Invaders" ~/games/invaders
  simulant start demo --native-only
  simulant start demo -f --author "Jane Doe"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), app, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Replace the target directory without asking")
	cmd.Flags().BoolVar(&opts.nativeOnly, "native-only", false, "Only download engine releases for this machine")
	cmd.Flags().StringVar(&opts.author, "author", "", "Author recorded in simulant.json (defaults to git user.name)")
	cmd.Flags().BoolVar(&opts.skipUpdate, "skip-update", false, "Do not download engine releases")
	return cmd
}

func runStart(ctx context.Context, app *App, opts *startOptions, args []string) error {
	name := args[0]

	base := app.Dir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		base = wd
	}

	dest := filepath.Join(base, template.SnakeCase(name))
	if len(args) > 1 {
		dest = args[1]
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(base, dest)
		}
	}

	cfg, err := config.Resolve("", config.Overrides{ConfigFile: app.configFile, Verbose: app.verbose, Jobs: app.jobs})
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	s := app.newSession(cfg)

	s.out.Info(ui.IconTool, "Creating project %q in %s", name, dest)
	if err := template.Create(dest, name, opts.force, app.Confirm); err != nil {
		return err
	}

	desc, err := project.Load(dest)
	if err != nil {
		return err
	}
	desc.Author = opts.author
	if desc.Author == "" {
		desc.Author = gitUserName(ctx, s.runner)
	}
	if err := desc.Save(dest); err != nil {
		return err
	}

	if !opts.skipUpdate {
		u := updater.New(s.cfg, s.log, s.out, app.Err)
		if err := u.Update(ctx, dest, updater.Options{NativeOnly: opts.nativeOnly}); err != nil {
			return err
		}
	}

	s.out.Success("Project %q created", name)
	fmt.Fprintln(app.Out)
	fmt.Fprintln(app.Out, "Next steps:")
	fmt.Fprintf(app.Out, "  cd %s\n", dest)
	fmt.Fprintln(app.Out, "  simulant build")
	fmt.Fprintln(app.Out, "  simulant run")
	return nil
}

// gitUserName returns git's user.name, or "Unknown".
func gitUserName(ctx context.Context, runner process.Runner) string {
	if _, err := runner.LookPath("git"); err != nil {
		return "Unknown"
	}
	out, err := runner.Output(ctx, process.Command{Name: "git", Args: []string{"config", "user.name"}})
	if err != nil {
		return "Unknown"
	}
	if name := strings.TrimSpace(string(out)); name != "" {
		return name
	}
	return "Unknown"
}
