package commands

import (
	"github.com/spf13/cobra"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Manage assistant distributions",
	Long: `Manage assistant distributions: the directories under assistant_dists
that hold a pipeline descriptor and its docker compose variants.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(distCmd)
}
