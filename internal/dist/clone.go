package dist

import (
	"strings"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
)

// Clone returns a deep, independently mutable copy of the distribution with
// a new identity. The agent command is rewritten to point at the new
// pipeline descriptor path. Nothing touches the filesystem until Save; the
// target directory must not already hold a distribution.
func (d *Dist) Clone(name, displayName, author, description string) (*Dist, error) {
	if name == "" {
		return nil, &dreamerrors.ValidationError{Name: "clone", Field: "name", Reason: "required"}
	}
	if strings.ContainsAny(name, "/\\") {
		return nil, &dreamerrors.ValidationError{
			Name:   "clone",
			Field:  "name",
			Reason: "must be a plain directory name under " + DistsDirName,
			Value:  name,
		}
	}

	out := New(name, d.DreamRoot, d.store, d.mode)
	if d.store != nil && d.store.Exists(out.FilePath(descriptor.KindPipeline)) {
		return nil, &dreamerrors.AlreadyExistsError{Path: out.Path()}
	}

	out.Graph = d.Graph.Clone()
	out.connectors = cloneConnectors(d.connectors)
	out.enabled = make(map[descriptor.Kind]bool, len(d.enabled))
	for kind, on := range d.enabled {
		out.enabled[kind] = on
	}

	out.Metadata = &descriptor.PipelineMetadata{
		DisplayName: displayName,
		Author:      author,
		Description: description,
	}
	if d.Metadata != nil {
		out.Metadata.Version = d.Metadata.Version
		out.Metadata.DateCreated = d.Metadata.DateCreated
		out.Metadata.RAMUsage = d.Metadata.RAMUsage
		out.Metadata.GPUUsage = d.Metadata.GPUUsage
		out.Metadata.DiskUsage = d.Metadata.DiskUsage
	}

	for _, container := range d.order {
		entry := d.services[container]
		svc := entry.svc.Clone()
		if container == component.AgentContainerName {
			svc.Command = rewriteAgentCommand(svc.Command, d.Name, name)
		}
		out.services[container] = &serviceEntry{
			svc:      svc,
			refs:     entry.refs,
			orphaned: entry.orphaned,
		}
		out.order = append(out.order, container)
	}

	return out, nil
}

// rewriteAgentCommand repoints the pipeline descriptor path in the agent
// command at the new distribution.
func rewriteAgentCommand(command, oldName, newName string) string {
	from := DistsDirName + "/" + oldName + "/" + descriptor.PipelineFileName
	to := DistsDirName + "/" + newName + "/" + descriptor.PipelineFileName
	return strings.ReplaceAll(command, from, to)
}

func cloneConnectors(c *descriptor.Connectors) *descriptor.Connectors {
	if c == nil {
		return nil
	}
	out := &descriptor.Connectors{}
	for _, name := range c.Names() {
		conn := *c.Get(name)
		out.Set(name, &conn)
	}
	return out
}
