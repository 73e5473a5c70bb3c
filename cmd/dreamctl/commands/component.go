package commands

import (
	"github.com/spf13/cobra"
)

var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Manage pipeline components",
	Long: `Manage the components of a distribution's pipeline: the annotators,
selectors and skills that make up its stages.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(componentCmd)
}
