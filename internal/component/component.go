package component

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// Component is a single named pipeline building block.
type Component struct {
	// Name is unique within its stage group.
	Name string

	// Group is the stage group the component belongs to.
	Group Group

	// Source is the path of the component's descriptor, relative to the
	// dream root ("" for components built in memory).
	Source string

	// ServiceSource is the path of the backing service's config directory,
	// carried through from the pipeline descriptor's source block.
	ServiceSource string

	// ConnectorRef names a shared connector from the pipeline descriptor's
	// connectors table; empty when the connector is inline.
	ConnectorRef string

	// Connector reaches the component's backing logic.
	Connector Connector

	// DialogFormatter and ResponseFormatter are the formatting reference
	// pair applied around calls to the component.
	DialogFormatter   string
	ResponseFormatter string

	// Dependencies and RequiredDependencies are declared upstream stage
	// references; required ones may not be stripped by forced removal.
	Dependencies         []DependencyRef
	RequiredDependencies []DependencyRef

	// StateManagerMethod is the optional state-update hook invoked after the
	// component responds.
	StateManagerMethod string

	// Tags carry reserved role markers like "selector" or "last_chance".
	Tags []string
}

// New validates and returns a component built from explicit fields.
func New(c Component) (*Component, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := c.Clone()
	return out, nil
}

// FromCard builds a component from a parsed component card.
func FromCard(card *descriptor.ComponentCard) (*Component, error) {
	group, err := ParseGroup(card.Group)
	if err != nil {
		return nil, &dreamerrors.ValidationError{Name: card.Name, Field: "group", Reason: err.Error(), Value: card.Group}
	}

	conn, err := ConnectorFromDescriptor(card.Connector)
	if err != nil {
		return nil, errors.Wrapf(err, "component %q", card.Name)
	}

	deps, err := ParseDependencyRefs(card.PreviousServices)
	if err != nil {
		return nil, &dreamerrors.ValidationError{Name: card.Name, Field: "previous_services", Reason: err.Error()}
	}

	return New(Component{
		Name:               card.Name,
		Group:              group,
		Source:             card.Source,
		Connector:          conn,
		DialogFormatter:    card.DialogFormatter,
		ResponseFormatter:  card.ResponseFormatter,
		Dependencies:       deps,
		StateManagerMethod: card.StateManagerMethod,
		Tags:               card.Tags,
	})
}

// FromDescriptorText parses component card text and builds a component.
func FromDescriptorText(data []byte, mode descriptor.Mode, path string) (*Component, error) {
	card, err := descriptor.ParseComponentCard(data, mode, path)
	if err != nil {
		return nil, err
	}
	return FromCard(card)
}

// FromFile reads a component card through the store and builds a component.
func FromFile(store fileutil.Store, path string, mode descriptor.Mode) (*Component, error) {
	data, err := store.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading component card %s", path)
	}
	c, err := FromDescriptorText(data, mode, path)
	if err != nil {
		return nil, err
	}
	c.Source = path
	return c, nil
}

// FromPipelineEntry builds a component from one stage entry of a parsed
// pipeline descriptor. Shared connector references are resolved against the
// descriptor's connectors table and remembered for round-trip rendering.
func FromPipelineEntry(group Group, name string, entry *descriptor.PipelineService, connectors *descriptor.Connectors) (*Component, error) {
	var (
		conn Connector
		ref  string
		err  error
	)

	switch {
	case entry.Connector.Ref != "":
		ref = entry.Connector.Ref
		shared := resolveSharedConnector(ref, connectors)
		if shared == nil {
			return nil, &dreamerrors.ValidationError{
				Name:   name,
				Field:  "connector",
				Reason: "references an undefined shared connector",
				Value:  ref,
			}
		}
		conn, err = ConnectorFromDescriptor(shared)
	default:
		conn, err = ConnectorFromDescriptor(entry.Connector.Inline)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "component %q", name)
	}

	deps, err := ParseDependencyRefs(entry.PreviousServices)
	if err != nil {
		return nil, &dreamerrors.ValidationError{Name: name, Field: "previous_services", Reason: err.Error()}
	}
	required, err := ParseDependencyRefs(entry.RequiredPreviousServices)
	if err != nil {
		return nil, &dreamerrors.ValidationError{Name: name, Field: "required_previous_services", Reason: err.Error()}
	}

	var source, serviceSource string
	if entry.Source != nil {
		source = entry.Source.Component
		serviceSource = entry.Source.Service
	}

	return New(Component{
		Name:                 name,
		Group:                group,
		Source:               source,
		ServiceSource:        serviceSource,
		ConnectorRef:         ref,
		Connector:            conn,
		DialogFormatter:      entry.DialogFormatter,
		ResponseFormatter:    entry.ResponseFormatter,
		Dependencies:         deps,
		RequiredDependencies: required,
		StateManagerMethod:   entry.StateManagerMethod,
		Tags:                 entry.Tags,
	})
}

// resolveSharedConnector looks up a "connectors.<name>" reference.
func resolveSharedConnector(ref string, connectors *descriptor.Connectors) *descriptor.Connector {
	const prefix = "connectors."
	if len(ref) <= len(prefix) || ref[:len(prefix)] != prefix {
		return nil
	}
	return connectors.Get(ref[len(prefix):])
}

// PipelineEntry renders the component back into its pipeline descriptor wire
// form.
func (c *Component) PipelineEntry() *descriptor.PipelineService {
	entry := &descriptor.PipelineService{
		DialogFormatter:          c.DialogFormatter,
		ResponseFormatter:        c.ResponseFormatter,
		PreviousServices:         refStrings(c.Dependencies),
		RequiredPreviousServices: refStrings(c.RequiredDependencies),
		StateManagerMethod:       c.StateManagerMethod,
		Tags:                     c.Tags,
	}
	if c.ConnectorRef != "" {
		entry.Connector = descriptor.ConnectorSpec{Ref: c.ConnectorRef}
	} else {
		entry.Connector = descriptor.ConnectorSpec{Inline: c.Connector.ToDescriptor()}
	}
	if c.Source != "" || c.ServiceSource != "" {
		entry.Source = &descriptor.SourceSpec{Component: c.Source, Service: c.ServiceSource}
	}
	return entry
}

// Validate enforces the component invariants.
func (c *Component) Validate() error {
	if c.Name == "" {
		return &dreamerrors.ValidationError{Name: "component", Field: "name", Reason: "required"}
	}
	if !c.Group.Singleton() {
		if _, err := ParseGroup(string(c.Group)); err != nil {
			return &dreamerrors.ValidationError{Name: c.Name, Field: "group", Reason: err.Error(), Value: string(c.Group)}
		}
	}
	if err := c.Connector.Validate(); err != nil {
		return errors.Wrapf(err, "component %q", c.Name)
	}
	return nil
}

// Equal reports structural equality: two components with identical fields
// are interchangeable.
func (c *Component) Equal(other *Component) bool {
	if c == nil || other == nil {
		return c == other
	}
	return reflect.DeepEqual(*c, *other)
}

// Clone returns a deep, independently mutable copy.
func (c *Component) Clone() *Component {
	out := *c
	out.Connector = c.Connector.clone()
	out.Dependencies = append([]DependencyRef(nil), c.Dependencies...)
	out.RequiredDependencies = append([]DependencyRef(nil), c.RequiredDependencies...)
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return &out
}

// ContainerName resolves the container backing the component.
func (c *Component) ContainerName() string {
	return c.Connector.ContainerName()
}

// ID returns the "group.name" identifier used in diagnostics.
func (c *Component) ID() string {
	return string(c.Group) + "." + c.Name
}
