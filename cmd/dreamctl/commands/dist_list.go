package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

var distListJSON bool

func init() {
	distListCmd.Flags().BoolVar(&distListJSON, "json", false, "Output in JSON format")
	distCmd.AddCommand(distListCmd)
}

var distListCmd = &cobra.Command{
	Use:   "list",
	Short: "List distributions in the dream repository",
	Long: `List every distribution found under assistant_dists, with its display
name and component count.

Examples:
  # List all distributions
  dreamctl dist list

  # Output as JSON
  dreamctl dist list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDistList(os.Stdout)
	},
}

// distInfo is one row of dist list output.
type distInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Components  int    `json:"components"`
	Services    int    `json:"services"`
}

func runDistList(w io.Writer) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	names, err := dist.List(root)
	if err != nil {
		return errors.Wrap(err, "listing distributions")
	}

	// Descriptors authored outside this tool may carry vendor keys, so the
	// listing never uses strict mode.
	store := fileutil.NewOSStore()
	var infos []distInfo
	for _, name := range names {
		d, err := dist.FromName(name, root, store, descriptor.ModeLenient)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable: %v)\n", name, err)
			continue
		}
		info := distInfo{Name: name, Components: d.Graph.Len(), Services: len(d.Services())}
		if d.Metadata != nil {
			info.DisplayName = d.Metadata.DisplayName
		}
		infos = append(infos, info)
	}

	if distListJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(infos), "encoding output")
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No distributions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tCOMPONENTS\tSERVICES")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", info.Name, truncate(info.DisplayName, 40), info.Components, info.Services)
	}
	return errors.Wrap(tw.Flush(), "flushing output")
}
