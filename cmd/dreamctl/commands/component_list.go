package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
)

var componentListJSON bool

func init() {
	componentListCmd.Flags().BoolVar(&componentListJSON, "json", false, "Output in JSON format")
	componentCmd.AddCommand(componentListCmd)
}

var componentListCmd = &cobra.Command{
	Use:   "list <dist>",
	Short: "List a distribution's components in execution order",
	Long: `List every component of a distribution in pipeline execution order:
singleton slots first, then each stage group.

Examples:
  dreamctl component list dream_weather
  dreamctl component list dream_weather --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDist(args[0])
		if err != nil {
			return err
		}
		return runComponentList(os.Stdout, d)
	},
}

// componentRow is one row of component list output.
type componentRow struct {
	Stage     string `json:"stage"`
	Name      string `json:"name"`
	Connector string `json:"connector"`
	Container string `json:"container"`
}

func runComponentList(w io.Writer, d *dist.Dist) error {
	var rows []componentRow
	for slot, c := range d.Graph.Components() {
		rows = append(rows, componentRow{
			Stage:     slot,
			Name:      c.Name,
			Connector: string(c.Connector.Kind),
			Container: c.ContainerName(),
		})
	}

	if componentListJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(rows), "encoding output")
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No components found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tNAME\tCONNECTOR\tCONTAINER")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Stage, row.Name, row.Connector, row.Container)
	}
	return errors.Wrap(tw.Flush(), "flushing output")
}
