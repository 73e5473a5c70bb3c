package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/pipeline"
)

var (
	removeForce bool
	removePrune bool
)

func init() {
	componentRemoveCmd.Flags().BoolVarP(&removeForce, "force", "f", false,
		"Strip optional dependency references on the removed component")
	componentRemoveCmd.Flags().BoolVar(&removePrune, "prune", false,
		"Also drop services left without any referencing component")
	componentCmd.AddCommand(componentRemoveCmd)
}

var componentRemoveCmd = &cobra.Command{
	Use:   "remove <dist> <group> <name>",
	Short: "Remove a component from a distribution",
	Long: `Remove a component from a distribution's pipeline and regenerate its
descriptors.

A removal that would leave dangling dependency references is refused.
With --force, optional references to the removed component are stripped
(each strip is reported); hard references still block the removal.

The last component referencing a service marks the service orphaned.
Orphaned services stay in the compose descriptors until pruned with
--prune or a later 'component remove --prune'.

Examples:
  dreamctl component remove dream_weather skills dialogpt --prune
  dreamctl component remove dream_weather annotators ner --force`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		distName, groupName, name := args[0], args[1], args[2]

		group, err := component.ParseGroup(groupName)
		if err != nil {
			return errors.NewUserError(err,
				"Valid groups: "+strings.Join(groupNames(), ", "))
		}

		d, err := loadDist(distName)
		if err != nil {
			return err
		}

		issues, err := d.RemoveComponent(group, name, pipeline.RemoveOptions{Force: removeForce})
		if err != nil {
			var dangling *errors.DanglingDependencyError
			if errors.As(err, &dangling) && !removeForce {
				return errors.NewUserError(err,
					"Re-run with --force to strip optional references")
			}
			return err
		}
		for _, issue := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", issue.Message)
		}

		if removePrune {
			for _, container := range d.PruneOrphans() {
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned service %s\n", container)
			}
		} else if orphans := d.Orphans(); len(orphans) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Orphaned services: %s (remove with --prune)\n",
				strings.Join(orphans, ", "))
		}

		if err := d.Save(dist.SaveOptions{Overwrite: true}); err != nil {
			return errors.Wrapf(err, "saving %s", d.Name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.%s from %s\n", group, name, d.Name)
		return nil
	},
}

// groupNames lists the stage group wire names for error messages.
func groupNames() []string {
	names := make([]string, len(component.CanonicalOrder))
	for i, g := range component.CanonicalOrder {
		names[i] = string(g)
	}
	return names
}
