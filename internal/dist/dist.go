package dist

import (
	"path"
	"strings"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/pipeline"
	"github.com/thoreinstein/dreamctl/internal/service"
	"github.com/thoreinstein/dreamctl/internal/validator"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// DistsDirName is the directory under a dream root that holds all
// distributions.
const DistsDirName = "assistant_dists"

// Environment keys maintained on the agent service and the prompt selector
// annotator during generation and mutation.
const (
	waitHostsEnv         = "WAIT_HOSTS"
	promptFileEnv        = "PROMPT_FILE"
	promptsToConsiderEnv = "PROMPTS_TO_CONSIDER"
	promptSelectorName   = "prompt_selector"
)

// serviceEntry tracks one backing service and how many graph components
// reference it.
type serviceEntry struct {
	svc      *service.Service
	refs     int
	orphaned bool
}

// Dist aggregates everything that makes up one distribution.
type Dist struct {
	// Name is the distribution directory name under assistant_dists.
	Name string

	// DreamRoot is the dream repository root the distribution lives in.
	DreamRoot string

	// Metadata is the identity block rendered into the pipeline descriptor.
	Metadata *descriptor.PipelineMetadata

	// Graph is the owned stage graph.
	Graph *pipeline.Graph

	connectors *descriptor.Connectors
	services   map[string]*serviceEntry
	order      []string
	enabled    map[descriptor.Kind]bool

	store fileutil.Store
	mode  descriptor.Mode
}

// New returns an empty distribution rooted at root with the override compose
// descriptor enabled.
func New(name, root string, store fileutil.Store, mode descriptor.Mode) *Dist {
	return &Dist{
		Name:      name,
		DreamRoot: root,
		Graph:     pipeline.New(),
		services:  make(map[string]*serviceEntry),
		enabled:   map[descriptor.Kind]bool{descriptor.KindComposeOverride: true},
		store:     store,
		mode:      mode,
	}
}

// Path returns the distribution directory.
func (d *Dist) Path() string {
	return path.Join(d.DreamRoot, DistsDirName, d.Name)
}

// FilePath returns the path of one descriptor file inside the distribution
// directory.
func (d *Dist) FilePath(kind descriptor.Kind) string {
	return path.Join(d.Path(), kind.FileName())
}

// Enabled reports whether a compose descriptor kind is generated for this
// distribution.
func (d *Dist) Enabled(kind descriptor.Kind) bool {
	return d.enabled[kind]
}

// Enable marks a compose descriptor kind as generated.
func (d *Dist) Enable(kind descriptor.Kind) {
	d.enabled[kind] = true
}

// EnabledKinds returns the generated compose kinds in canonical order.
func (d *Dist) EnabledKinds() []descriptor.Kind {
	var kinds []descriptor.Kind
	for _, k := range descriptor.ComposeKinds {
		if d.enabled[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Service returns the backing service registered under a container name,
// nil when absent.
func (d *Dist) Service(container string) *service.Service {
	entry, ok := d.services[container]
	if !ok {
		return nil
	}
	return entry.svc
}

// Services returns the registered container names in registration order.
func (d *Dist) Services() []string {
	return append([]string(nil), d.order...)
}

// registerService adds or reuses the entry for a container name.
func (d *Dist) registerService(container string, svc *service.Service) *serviceEntry {
	entry, ok := d.services[container]
	if !ok {
		entry = &serviceEntry{svc: svc}
		d.services[container] = entry
		d.order = append(d.order, container)
	} else if svc != nil {
		entry.svc = svc
	}
	entry.orphaned = false
	return entry
}

// AddComponent inserts a component into the graph and wires up its backing
// service. When svc is nil an already-registered service under the
// component's container name is reused; a component reaching an unknown
// container without a service definition is an error. Descriptor text is not
// regenerated.
func (d *Dist) AddComponent(c *component.Component, svc *service.Service) error {
	container := c.ContainerName()
	if svc == nil && d.services[container] == nil {
		return &dreamerrors.NotFoundError{Kind: "service", Name: container}
	}

	if err := d.Graph.Add(c); err != nil {
		return err
	}

	entry := d.registerService(container, svc)
	entry.refs++

	if c.Group == component.GroupSkills {
		d.refreshPromptSelector()
	}
	return nil
}

// RemoveComponent removes a component from the graph. The last reference to
// its backing service marks the service orphaned; orphans stay registered
// until PruneOrphans.
func (d *Dist) RemoveComponent(group component.Group, name string, opts pipeline.RemoveOptions) ([]validator.Issue, error) {
	c, err := d.Graph.Get(group, name)
	if err != nil {
		return nil, err
	}

	issues, err := d.Graph.Remove(group, name, opts)
	if err != nil {
		return nil, err
	}

	if entry, ok := d.services[c.ContainerName()]; ok {
		entry.refs--
		if entry.refs <= 0 {
			entry.refs = 0
			entry.orphaned = true
		}
	}

	if group == component.GroupSkills {
		d.refreshPromptSelector()
	}
	return issues, nil
}

// PruneOrphans drops services no component references anymore and returns
// their container names.
func (d *Dist) PruneOrphans() []string {
	var pruned []string
	kept := d.order[:0]
	for _, container := range d.order {
		entry := d.services[container]
		if entry.orphaned {
			delete(d.services, container)
			pruned = append(pruned, container)
			continue
		}
		kept = append(kept, container)
	}
	d.order = kept
	return pruned
}

// Orphans returns the container names of services awaiting pruning.
func (d *Dist) Orphans() []string {
	var orphans []string
	for _, container := range d.order {
		if d.services[container].orphaned {
			orphans = append(orphans, container)
		}
	}
	return orphans
}

// refreshPromptSelector recomputes the PROMPTS_TO_CONSIDER value of the
// prompt selector annotator from the skills whose services declare a prompt
// file. A distribution without that annotator is left untouched.
func (d *Dist) refreshPromptSelector() {
	selector, err := d.Graph.Get(component.GroupAnnotators, promptSelectorName)
	if err != nil {
		return
	}
	entry, ok := d.services[selector.ContainerName()]
	if !ok {
		return
	}

	var prompts []string
	for _, skill := range d.Graph.Group(component.GroupSkills) {
		svcEntry, ok := d.services[skill.ContainerName()]
		if !ok {
			continue
		}
		promptFile := svcEntry.svc.Env(promptFileEnv)
		if promptFile == "" {
			continue
		}
		prompts = append(prompts, promptStem(promptFile))
	}

	entry.svc.SetEnvironment(promptsToConsiderEnv, strings.Join(prompts, ","))
}

// promptStem strips the directory and extension from a prompt file path.
func promptStem(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
