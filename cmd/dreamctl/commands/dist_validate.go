package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/validator"
)

var distValidateJSON bool

func init() {
	distValidateCmd.Flags().BoolVar(&distValidateJSON, "json", false, "Output in JSON format")
	distCmd.AddCommand(distValidateCmd)
}

var distValidateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: "Validate a distribution's descriptors",
	Long: `Validate a distribution: connector shapes, component-to-service wiring,
service definitions, and connector URL ports against the ports the
services declare.

The command exits non-zero when any error-level issue is found; warnings
alone do not fail the validation.

Examples:
  # Validate a distribution
  dreamctl dist validate dream_weather

  # Machine-readable report
  dreamctl dist validate dream_weather --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDist(args[0])
		if err != nil {
			return err
		}

		result := d.Validate()

		format := validator.FormatText
		if distValidateJSON {
			format = validator.FormatJSON
		}
		if err := validator.NewReporter(os.Stdout, format).Report(result); err != nil {
			return err
		}

		if result.HasErrors() {
			return errors.NewExitError(errors.Newf("distribution %s is invalid", args[0]), errors.ExitUser)
		}
		return nil
	},
}
