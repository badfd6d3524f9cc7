package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simulant-engine/simulant-tools/internal/project"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate simulant.json and the project configuration",
		Long: `Validates simulant.json against its JSON Schema and checks that the
layered configuration (user config.yaml, project .simulant.yaml and
--config) parses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(app.Out, "🔍 Validating %s...\n", project.FileName)

			s, err := app.openProject()
			var verr *project.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(app.Out, "\n❌ Validation failed with the following errors:")
				fmt.Fprintln(app.Out)
				for i, problem := range verr.Problems {
					fmt.Fprintf(app.Out, "%d. %s\n", i+1, problem)
				}
				return fmt.Errorf("validation failed with %d errors", len(verr.Problems))
			}
			if err != nil {
				return err
			}

			s.out.Success("%s is valid (%s)", project.FileName, s.proj.Root)
			return nil
		},
	}
}
