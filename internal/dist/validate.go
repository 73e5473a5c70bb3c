package dist

import (
	"github.com/thoreinstein/dreamctl/internal/component"
	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/validator"
)

// Validate checks the aggregate invariants and returns every finding:
//
//   - each component's connector is well-formed
//   - each component's container resolves to a registered, live service
//   - each service definition is valid (build-vs-image, memory formats)
//   - for http components, the connector URL port matches the port the
//     backing service declares
//   - the singleton slots share one backing service
func (d *Dist) Validate() *validator.Result {
	result := &validator.Result{}
	pipelinePath := d.FilePath(descriptor.KindPipeline)
	overridePath := d.FilePath(descriptor.KindComposeOverride)

	for slot, c := range d.Graph.Components() {
		id := slot + "." + c.Name
		if c.Group.Singleton() {
			id = slot
		}

		if err := c.Connector.Validate(); err != nil {
			result.AddErrorAt(pipelinePath, id, err.Error(), nil)
			continue
		}

		container := c.ContainerName()
		entry, ok := d.services[container]
		if !ok {
			result.AddErrorAt(overridePath, id, "container has no registered service", container)
			continue
		}
		if entry.orphaned {
			result.AddErrorAt(overridePath, id, "container resolves to an orphaned service", container)
			continue
		}

		if c.Connector.Kind == component.ConnectorHTTP {
			d.checkPort(result, overridePath, id, c, entry)
		}
	}

	for _, container := range d.order {
		entry := d.services[container]
		if entry.orphaned {
			result.AddWarningAt(overridePath, container, "service is orphaned; run prune to drop it", nil)
			continue
		}
		if err := entry.svc.Validate(); err != nil {
			result.AddErrorAt(overridePath, container, err.Error(), nil)
		}
	}

	d.checkSingletons(result, pipelinePath)
	return result
}

// checkPort cross-checks the connector URL port against the port the
// backing service declares.
func (d *Dist) checkPort(result *validator.Result, path, id string, c *component.Component, entry *serviceEntry) {
	addr, err := component.ParseConnectorURL(c.Connector.URL)
	if err != nil {
		result.AddErrorAt(path, id, err.Error(), c.Connector.URL)
		return
	}
	declared, err := entry.svc.Port()
	if err != nil {
		// A service may legitimately declare no port (e.g. data stores
		// addressed by image defaults).
		return
	}
	if declared != addr.Port {
		result.AddErrorAt(path, id, "connector port does not match the service's declared port", addr.Port+" vs "+declared)
	}
}

// checkSingletons verifies that the last-chance and timeout slots share one
// backing service.
func (d *Dist) checkSingletons(result *validator.Result, path string) {
	lastChance, timeout := d.Graph.LastChance(), d.Graph.Timeout()
	if lastChance == nil || timeout == nil {
		return
	}
	if lastChance.ContainerName() != timeout.ContainerName() {
		result.AddErrorAt(path, "last_chance_service",
			"singleton slots must share one backing service",
			lastChance.ContainerName()+" vs "+timeout.ContainerName())
	}
}
