package cmd

import (
	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/updater"
)

func newUpdateCmd(app *App) *cobra.Command {
	var nativeOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download the engine releases for this project",
		Long: `Download prebuilt Simulant releases into libraries/ and the engine
assets into assets/simulant, replacing what is there.

Examples:
  simulant update
  simulant update --native-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openProject()
			if err != nil {
				return err
			}

			u := updater.New(s.cfg, s.log, s.out, app.Err)
			if err := u.Update(cmd.Context(), s.proj.Root, updater.Options{NativeOnly: nativeOnly}); err != nil {
				return err
			}
			s.out.Success("Engine updated to %s", s.cfg.Engine.Version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&nativeOnly, "native-only", false, "Skip the Dreamcast release")
	return cmd
}
