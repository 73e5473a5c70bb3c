package dist

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/descriptor"
)

// GeneratePipelineConf renders the graph back into a pipeline descriptor
// record. The output depends only on aggregate state, so identical state
// produces identical records.
func (d *Dist) GeneratePipelineConf() *descriptor.PipelineConf {
	conf := &descriptor.PipelineConf{
		Connectors: d.connectors,
		Metadata:   d.Metadata,
	}

	if c := d.Graph.LastChance(); c != nil {
		conf.Services.LastChanceService = c.PipelineEntry()
	}
	if c := d.Graph.Timeout(); c != nil {
		conf.Services.TimeoutService = c.PipelineEntry()
	}

	for _, group := range component.CanonicalOrder {
		components := d.Graph.Group(group)
		if len(components) == 0 {
			continue
		}
		services := &descriptor.Services{}
		for _, c := range components {
			services.Set(c.Name, c.PipelineEntry())
		}
		setGroupServices(&conf.Services, group, services)
	}

	return conf
}

// setGroupServices writes a stage group into its slot of the descriptor
// service list.
func setGroupServices(list *descriptor.ServiceList, group component.Group, services *descriptor.Services) {
	switch group {
	case component.GroupAnnotators:
		list.Annotators = services
	case component.GroupSkillSelectors:
		list.SkillSelectors = services
	case component.GroupSkills:
		list.Skills = services
	case component.GroupResponseAnnotatorSelectors:
		list.ResponseAnnotatorSelectors = services
	case component.GroupResponseAnnotators:
		list.ResponseAnnotators = services
	case component.GroupCandidateAnnotators:
		list.CandidateAnnotators = services
	case component.GroupResponseSelectors:
		list.ResponseSelectors = services
	}
}

// GenerateCompose renders one compose descriptor variant from the registered
// services. Orphaned services are skipped. Generating the override variant
// first recomputes the agent's WAIT_HOSTS value from the other services.
func (d *Dist) GenerateCompose(kind descriptor.Kind) (*descriptor.ComposeFile, error) {
	if kind == descriptor.KindComposeOverride {
		d.updateWaitHosts()
	}

	file := &descriptor.ComposeFile{
		Version:  descriptor.DefaultComposeVersion,
		Services: make(map[string]*descriptor.ComposeService, len(d.order)),
	}
	for _, container := range d.order {
		entry := d.services[container]
		if entry.orphaned {
			continue
		}
		if kind == descriptor.KindComposeProxy {
			// The agent always runs locally and services without a
			// discoverable port (data stores) cannot be proxied.
			if container == component.AgentContainerName {
				continue
			}
			if _, err := entry.svc.Port(); err != nil {
				continue
			}
		}
		def, err := entry.svc.GenerateCompose(kind)
		if err != nil {
			return nil, errors.Wrapf(err, "generating %s", kind)
		}
		file.Services[container] = def
	}
	return file, nil
}

// updateWaitHosts rewrites the agent service's WAIT_HOSTS environment entry
// to list host:port of every other live service, in service registration
// order.
func (d *Dist) updateWaitHosts() {
	agent, ok := d.services[component.AgentContainerName]
	if !ok {
		return
	}

	var hosts []string
	for _, container := range d.order {
		if container == component.AgentContainerName {
			continue
		}
		entry := d.services[container]
		if entry.orphaned {
			continue
		}
		port, err := entry.svc.Port()
		if err != nil {
			continue
		}
		hosts = append(hosts, container+":"+port)
	}

	agent.svc.SetEnvironment(waitHostsEnv, strings.Join(hosts, ", "))
}
