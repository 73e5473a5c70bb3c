package dist

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/service"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// FromName loads a distribution from <root>/assistant_dists/<name>. Every
// descriptor file present in the directory is parsed; a single corrupt file
// aborts the whole load.
func FromName(name, root string, store fileutil.Store, mode descriptor.Mode) (*Dist, error) {
	d := New(name, root, store, mode)
	d.enabled = make(map[descriptor.Kind]bool)

	pipelinePath := d.FilePath(descriptor.KindPipeline)
	if !store.Exists(pipelinePath) {
		return nil, &dreamerrors.DistributionNotFoundError{Name: name, Path: d.Path()}
	}
	data, err := store.Read(pipelinePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", pipelinePath)
	}
	conf, err := descriptor.ParsePipeline(data, mode, pipelinePath)
	if err != nil {
		return nil, err
	}

	d.Metadata = conf.Metadata
	d.connectors = conf.Connectors
	if err := d.buildGraph(conf); err != nil {
		return nil, err
	}

	override, err := d.loadCompose(descriptor.KindComposeOverride)
	if err != nil {
		return nil, err
	}
	if override != nil {
		if err := d.buildServices(override); err != nil {
			return nil, err
		}
	}

	dev, err := d.loadCompose(descriptor.KindComposeDev)
	if err != nil {
		return nil, err
	}
	if dev != nil {
		d.mergeDev(dev)
	}

	// Proxy and local descriptors are fully derived from the override and
	// dev definitions; their presence only enables regeneration.
	for _, kind := range []descriptor.Kind{descriptor.KindComposeProxy, descriptor.KindComposeLocal} {
		if _, err := d.loadCompose(kind); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// loadCompose parses one compose descriptor when present and marks its kind
// enabled.
func (d *Dist) loadCompose(kind descriptor.Kind) (*descriptor.ComposeFile, error) {
	p := d.FilePath(kind)
	if !d.store.Exists(p) {
		return nil, nil
	}
	data, err := d.store.Read(p)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", p)
	}
	file, err := descriptor.ParseCompose(kind, data, d.mode, p)
	if err != nil {
		return nil, err
	}
	d.enabled[kind] = true
	return file, nil
}

// buildGraph assembles the stage graph from a parsed pipeline descriptor.
func (d *Dist) buildGraph(conf *descriptor.PipelineConf) error {
	if entry := conf.Services.LastChanceService; entry != nil {
		c, err := component.FromPipelineEntry(component.GroupLastChance, string(component.GroupLastChance), entry, conf.Connectors)
		if err != nil {
			return err
		}
		d.Graph.SetLastChance(c)
	}
	if entry := conf.Services.TimeoutService; entry != nil {
		c, err := component.FromPipelineEntry(component.GroupTimeout, string(component.GroupTimeout), entry, conf.Connectors)
		if err != nil {
			return err
		}
		d.Graph.SetTimeout(c)
	}

	for _, group := range component.CanonicalOrder {
		services := groupServices(&conf.Services, group)
		if services == nil {
			continue
		}
		for _, name := range services.Names() {
			c, err := component.FromPipelineEntry(group, name, services.Get(name), conf.Connectors)
			if err != nil {
				return err
			}
			if err := d.Graph.Add(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupServices maps a stage group to its slot in the descriptor service
// list.
func groupServices(list *descriptor.ServiceList, group component.Group) *descriptor.Services {
	switch group {
	case component.GroupAnnotators:
		return list.Annotators
	case component.GroupSkillSelectors:
		return list.SkillSelectors
	case component.GroupSkills:
		return list.Skills
	case component.GroupResponseAnnotatorSelectors:
		return list.ResponseAnnotatorSelectors
	case component.GroupResponseAnnotators:
		return list.ResponseAnnotators
	case component.GroupCandidateAnnotators:
		return list.CandidateAnnotators
	case component.GroupResponseSelectors:
		return list.ResponseSelectors
	default:
		return nil
	}
}

// buildServices registers the backing services of every graph component from
// the override descriptor, then any remaining override-only services (data
// stores and the like) in sorted order.
func (d *Dist) buildServices(override *descriptor.ComposeFile) error {
	seen := make(map[string]bool)

	for _, c := range d.Graph.Components() {
		container := c.ContainerName()
		if seen[container] {
			d.services[container].refs++
			continue
		}
		def, ok := override.Services[container]
		if !ok {
			return &dreamerrors.NotFoundError{Kind: "service", Name: container}
		}
		svc, err := service.FromCompose(container, def)
		if err != nil {
			return err
		}
		entry := d.registerService(container, svc)
		entry.refs++
		seen[container] = true
	}

	var rest []string
	for name := range override.Services {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	for _, name := range rest {
		svc, err := service.FromCompose(name, override.Services[name])
		if err != nil {
			return err
		}
		d.registerService(name, svc)
	}
	return nil
}

// mergeDev folds the development mounts and published ports of the dev
// descriptor into the registered services.
func (d *Dist) mergeDev(dev *descriptor.ComposeFile) {
	for name, def := range dev.Services {
		entry, ok := d.services[name]
		if !ok {
			continue
		}
		if len(def.Volumes) > 0 {
			entry.svc.Volumes = append([]string(nil), def.Volumes...)
		}
		if len(def.Ports) > 0 {
			entry.svc.Ports = append([]string(nil), def.Ports...)
		}
	}
}
