package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
)

var (
	cloneDisplayName   string
	cloneAuthor        string
	cloneDescription   string
	cloneWriteServices bool
)

func init() {
	distCloneCmd.Flags().StringVar(&cloneDisplayName, "display-name", "", "Display name of the new distribution")
	distCloneCmd.Flags().StringVar(&cloneAuthor, "author", "", "Author of the new distribution")
	distCloneCmd.Flags().StringVar(&cloneDescription, "description", "", "Description of the new distribution")
	distCloneCmd.Flags().BoolVar(&cloneWriteServices, "write-service-configs", false,
		"Also regenerate service.yml/environment.yml for services loaded from config directories")
	distCmd.AddCommand(distCloneCmd)
}

var distCloneCmd = &cobra.Command{
	Use:   "clone <source> <name>",
	Short: "Clone a distribution under a new name",
	Long: `Clone a distribution: copy its pipeline graph, connectors and services
under a new name with fresh identity metadata. The agent command is
rewritten to point at the new pipeline descriptor. Nothing is written
until the whole clone renders cleanly.

Examples:
  # Clone dream_weather into my_assistant
  dreamctl dist clone dream_weather my_assistant \
      --display-name "My Assistant" --author "Me" --description "..."`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, name := args[0], args[1]

		d, err := loadDist(source)
		if err != nil {
			return err
		}

		displayName := cloneDisplayName
		if displayName == "" {
			displayName = name
		}

		clone, err := d.Clone(name, displayName, cloneAuthor, cloneDescription)
		if err != nil {
			var exists *errors.AlreadyExistsError
			if errors.As(err, &exists) {
				return errors.NewUserError(err, "Pick a name that is not already taken")
			}
			return err
		}

		if err := clone.Save(dist.SaveOptions{WriteServiceConfigs: cloneWriteServices}); err != nil {
			return errors.Wrapf(err, "saving %s", name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s into %s\n", source, clone.Path())
		return nil
	},
}
