package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/pipeline"
)

var distShowJSON bool

func init() {
	distShowCmd.Flags().BoolVar(&distShowJSON, "json", false, "Output in JSON format")
	distCmd.AddCommand(distShowCmd)
}

var distShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one distribution's stages, components and services",
	Long: `Show a distribution: its metadata, every pipeline stage with its
components in execution order, and the backing services.

Examples:
  # Show a distribution
  dreamctl dist show dream_weather

  # Output as JSON
  dreamctl dist show dream_weather --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDist(args[0])
		if err != nil {
			return err
		}
		return runDistShow(os.Stdout, d)
	},
}

// componentInfo is one component in dist show output.
type componentInfo struct {
	Name      string   `json:"name"`
	Connector string   `json:"connector"`
	Container string   `json:"container"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// showOutput is the JSON form of dist show.
type showOutput struct {
	Name        string                     `json:"name"`
	DisplayName string                     `json:"display_name,omitempty"`
	Author      string                     `json:"author,omitempty"`
	Description string                     `json:"description,omitempty"`
	Stages      map[string][]componentInfo `json:"stages"`
	Services    []string                   `json:"services"`
	Orphans     []string                   `json:"orphans,omitempty"`
}

func runDistShow(w io.Writer, d *dist.Dist) error {
	out := showOutput{
		Name:     d.Name,
		Stages:   make(map[string][]componentInfo),
		Services: d.Services(),
		Orphans:  d.Orphans(),
	}
	if d.Metadata != nil {
		out.DisplayName = d.Metadata.DisplayName
		out.Author = d.Metadata.Author
		out.Description = d.Metadata.Description
	}

	for slot, c := range d.Graph.Components() {
		info := componentInfo{
			Name:      c.Name,
			Connector: string(c.Connector.Kind),
			Container: c.ContainerName(),
		}
		for _, ref := range c.Dependencies {
			info.DependsOn = append(info.DependsOn, ref.String())
		}
		for _, ref := range c.RequiredDependencies {
			info.DependsOn = append(info.DependsOn, ref.String()+" (required)")
		}
		out.Stages[slot] = append(out.Stages[slot], info)
	}

	if distShowJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding output")
	}

	fmt.Fprintf(w, "%s", d.Name)
	if out.DisplayName != "" {
		fmt.Fprintf(w, " (%s)", out.DisplayName)
	}
	fmt.Fprintln(w)
	if out.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", out.Author)
	}
	if out.Description != "" {
		fmt.Fprintf(w, "%s\n", truncate(out.Description, 100))
	}
	fmt.Fprintln(w)

	for _, slot := range []string{pipeline.SlotLastChance, pipeline.SlotTimeout} {
		if infos, ok := out.Stages[slot]; ok {
			printStage(w, slot, infos)
		}
	}
	for _, group := range component.CanonicalOrder {
		if infos, ok := out.Stages[string(group)]; ok {
			printStage(w, string(group), infos)
		}
	}

	fmt.Fprintf(w, "services: %s\n", strings.Join(out.Services, ", "))
	if len(out.Orphans) > 0 {
		fmt.Fprintf(w, "orphans: %s\n", strings.Join(out.Orphans, ", "))
	}
	return nil
}

func printStage(w io.Writer, slot string, infos []componentInfo) {
	fmt.Fprintf(w, "%s:\n", slot)
	for _, info := range infos {
		fmt.Fprintf(w, "  %s [%s -> %s]", info.Name, info.Connector, info.Container)
		if len(info.DependsOn) > 0 {
			fmt.Fprintf(w, " after %s", strings.Join(info.DependsOn, ", "))
		}
		fmt.Fprintln(w)
	}
}
