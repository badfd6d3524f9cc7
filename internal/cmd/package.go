package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/packager"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
)

func newPackageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "package [platform]",
		Short: "Build a release and package it for distribution",
		Long: `Build the project in release mode and package it.

Platforms:
  linux      - Flatpak bundle in packages/linux-<arch>/<executable>.flatpak
  dreamcast  - Bootable disc image in packages/dreamcast-sh4/<executable>.cdi

Examples:
  simulant package
  simulant package dreamcast`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackage(cmd.Context(), app, args)
		},
	}
}

func runPackage(ctx context.Context, app *App, args []string) error {
	s, err := app.openProject()
	if err != nil {
		return err
	}

	t, err := parseTarget(args, true)
	if err != nil {
		return err
	}

	var artifact string
	switch t.Platform {
	case target.PlatformDreamcast:
		if _, err := s.build(ctx, t, builder.Options{}); err != nil {
			return err
		}
		artifact, err = s.packageDreamcast(ctx)
	case target.PlatformLinux:
		if _, err := s.runner.LookPath("flatpak"); err != nil {
			return fmt.Errorf("%w: flatpak", builder.ErrToolNotFound)
		}
		if _, err := s.build(ctx, t, builder.Options{}); err != nil {
			return err
		}
		s.out.Info(ui.IconPackage, "Packaging %s as a Flatpak", s.proj.Descriptor.Name)
		artifact, err = packager.NewFlatpak(s.runner, s.cfg, s.log, s.out).Package(ctx, s.proj, t)
	default:
		return fmt.Errorf("%w: packaging for %s", target.ErrUnsupportedPlatform, t.Platform)
	}
	if err != nil {
		return err
	}

	s.out.Success("Package created: %s", artifact)
	return nil
}

func (s *session) packageDreamcast(ctx context.Context) (string, error) {
	s.out.Info(ui.IconDisc, "Packaging %s as a disc image", s.proj.Descriptor.Name)
	return packager.NewDreamcast(s.env, s.cfg, s.log, s.out).Package(ctx, s.proj)
}
