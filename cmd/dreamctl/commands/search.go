package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactively search components across all distributions",
	Long: `Fuzzy-search every component of every distribution in the dream
repository. The selected component is printed with its distribution,
stage and connector details.

Examples:
  dreamctl search`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := collectSearchEntries()
		if err != nil {
			return err
		}
		return runInteractiveSearch(os.Stdout, entries)
	},
}

// searchEntry is one selectable component.
type searchEntry struct {
	Dist      string
	Stage     string
	Name      string
	Connector string
	Container string
	DependsOn []string
}

// collectSearchEntries loads every distribution and flattens its components.
func collectSearchEntries() ([]searchEntry, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	names, err := dist.List(root)
	if err != nil {
		return nil, errors.Wrap(err, "listing distributions")
	}

	store := fileutil.NewOSStore()
	var entries []searchEntry
	for _, name := range names {
		d, err := dist.FromName(name, root, store, descriptor.ModeLenient)
		if err != nil {
			// An unreadable distribution should not break searching the rest.
			continue
		}
		for slot, c := range d.Graph.Components() {
			entry := searchEntry{
				Dist:      name,
				Stage:     slot,
				Name:      c.Name,
				Connector: string(c.Connector.Kind),
				Container: c.ContainerName(),
			}
			for _, ref := range c.Dependencies {
				entry.DependsOn = append(entry.DependsOn, ref.String())
			}
			for _, ref := range c.RequiredDependencies {
				entry.DependsOn = append(entry.DependsOn, ref.String())
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func runInteractiveSearch(w io.Writer, entries []searchEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No components found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string {
			return fmt.Sprintf("%s/%s: %s", entries[i].Dist, entries[i].Stage, entries[i].Name)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewEntry(entries[i])
		}),
	)

	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive search failed")
	}

	e := entries[idx]
	fmt.Fprintf(w, "Selected: %s (%s in %s)\n", e.Name, e.Stage, e.Dist)
	fmt.Fprintf(w, "Connector: %s\n", e.Connector)
	fmt.Fprintf(w, "Container: %s\n", e.Container)
	if len(e.DependsOn) > 0 {
		fmt.Fprintf(w, "Depends on: %s\n", strings.Join(e.DependsOn, ", "))
	}

	return nil
}

// previewEntry renders the right-hand preview pane.
func previewEntry(e searchEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Distribution: %s\nStage: %s\nName: %s\n\n", e.Dist, e.Stage, e.Name)
	fmt.Fprintf(&sb, "Connector: %s\nContainer: %s\n", e.Connector, e.Container)
	if len(e.DependsOn) > 0 {
		fmt.Fprintf(&sb, "Depends on:\n")
		for _, dep := range e.DependsOn {
			fmt.Fprintf(&sb, "  - %s\n", dep)
		}
	}
	return sb.String()
}
