package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

var (
	newDisplayName string
	newAuthor      string
	newDescription string
)

func init() {
	distNewCmd.Flags().StringVar(&newDisplayName, "display-name", "", "Display name of the distribution")
	distNewCmd.Flags().StringVar(&newAuthor, "author", "", "Author of the distribution")
	distNewCmd.Flags().StringVar(&newDescription, "description", "", "Description of the distribution")
	distCmd.AddCommand(distNewCmd)
}

var distNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty distribution",
	Long: `Create an empty distribution: a pipeline descriptor with no components
and an override compose descriptor, ready for 'dreamctl component add'.

Examples:
  dreamctl dist new my_assistant --display-name "My Assistant"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		root, err := resolveRoot()
		if err != nil {
			return err
		}

		d := dist.New(name, root, fileutil.NewOSStore(), parseMode())

		displayName := newDisplayName
		if displayName == "" {
			displayName = name
		}
		d.Metadata = &descriptor.PipelineMetadata{
			DisplayName: displayName,
			Author:      newAuthor,
			Description: newDescription,
			Version:     "0.1.0",
			DateCreated: time.Now().UTC().Format("2006-01-02T15:04:05"),
		}

		if err := d.Save(dist.SaveOptions{}); err != nil {
			var exists *errors.AlreadyExistsError
			if errors.As(err, &exists) {
				return errors.NewUserError(err, "Pick a name that is not already taken")
			}
			return errors.Wrapf(err, "creating %s", name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", d.Path())
		return nil
	},
}
