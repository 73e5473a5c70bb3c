package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/service"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

var (
	addCardPath   string
	addServiceDir string
)

func init() {
	componentAddCmd.Flags().StringVar(&addCardPath, "card", "", "Path to the component card (component.yml)")
	componentAddCmd.Flags().StringVar(&addServiceDir, "service-dir", "",
		"Directory holding the backing service's service.yml (and optional environment.yml)")
	_ = componentAddCmd.MarkFlagRequired("card")
	componentCmd.AddCommand(componentAddCmd)
}

var componentAddCmd = &cobra.Command{
	Use:   "add <dist>",
	Short: "Add a component to a distribution",
	Long: `Add a component described by a component card to a distribution and
regenerate its descriptors.

The card names the component, its stage group, connector and
dependencies. When the component needs a new backing service, pass
--service-dir pointing at the directory with its service.yml; without
it the component must resolve to an already-registered container.

Examples:
  # Add a skill with its service definition
  dreamctl component add dream_weather \
      --card skills/dff_travel_skill/component.yml \
      --service-dir skills/dff_travel_skill

  # Add a component that runs in an existing container
  dreamctl component add dream_weather --card annotators/foo/component.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDist(args[0])
		if err != nil {
			return err
		}

		store := fileutil.NewOSStore()
		c, err := component.FromFile(store, addCardPath, parseMode())
		if err != nil {
			return errors.Wrapf(err, "reading component card %s", addCardPath)
		}

		var svc *service.Service
		if addServiceDir != "" {
			svc, err = service.FromConfigDir(store, addServiceDir, parseMode())
			if err != nil {
				return errors.Wrapf(err, "reading service config in %s", addServiceDir)
			}
		}

		if err := d.AddComponent(c, svc); err != nil {
			var notFound *errors.NotFoundError
			if errors.As(err, &notFound) {
				return errors.NewUserError(err,
					"Pass --service-dir with the component's service definition")
			}
			return err
		}

		if err := d.Save(dist.SaveOptions{Overwrite: true}); err != nil {
			return errors.Wrapf(err, "saving %s", d.Name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", c.ID(), d.Name)
		return nil
	},
}
