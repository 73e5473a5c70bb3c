package descriptor

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Services is an insertion-ordered mapping of stage-local names to pipeline
// service entries.
type Services struct {
	orderedMap[PipelineService]
}

// Connectors is an insertion-ordered mapping of connector names to shared
// connector definitions.
type Connectors struct {
	orderedMap[Connector]
}

// PipelineConf is the wire form of pipeline_conf.json.
type PipelineConf struct {
	Connectors *Connectors       `json:"connectors,omitempty"`
	Services   ServiceList       `json:"services"`
	Metadata   *PipelineMetadata `json:"metadata,omitempty"`
}

// ServiceList holds the stage groups of the pipeline in canonical order:
// the two singleton slots first, then annotators, skill selectors, skills,
// response annotator selectors, response annotators, candidate annotators
// and response selectors. Field declaration order is rendering order.
type ServiceList struct {
	LastChanceService          *PipelineService `json:"last_chance_service,omitempty"`
	TimeoutService             *PipelineService `json:"timeout_service,omitempty"`
	Annotators                 *Services        `json:"annotators,omitempty"`
	SkillSelectors             *Services        `json:"skill_selectors,omitempty"`
	Skills                     *Services        `json:"skills,omitempty"`
	ResponseAnnotatorSelectors *Services        `json:"response_annotator_selectors,omitempty"`
	ResponseAnnotators         *Services        `json:"response_annotators,omitempty"`
	CandidateAnnotators        *Services        `json:"candidate_annotators,omitempty"`
	ResponseSelectors          *Services        `json:"response_selectors,omitempty"`
}

// PipelineService is one stage entry of the pipeline descriptor.
type PipelineService struct {
	Connector                ConnectorSpec `json:"connector"`
	DialogFormatter          string        `json:"dialog_formatter,omitempty"`
	ResponseFormatter        string        `json:"response_formatter,omitempty"`
	PreviousServices         []string      `json:"previous_services,omitempty"`
	RequiredPreviousServices []string      `json:"required_previous_services,omitempty"`
	StateManagerMethod       string        `json:"state_manager_method,omitempty"`
	Tags                     []string      `json:"tags,omitempty"`
	Source                   *SourceSpec   `json:"source,omitempty"`
}

// SourceSpec references the component and service directories a pipeline
// entry was authored from.
type SourceSpec struct {
	Component string `json:"component,omitempty"`
	Service   string `json:"service,omitempty"`
}

// Connector is the wire form of a connector definition: a network call with
// url and timeout (protocol "http") or an in-process class reference
// (protocol "python").
type Connector struct {
	Protocol       string         `json:"protocol"           yaml:"protocol"`
	Timeout        *float64       `json:"timeout,omitempty"  yaml:"timeout,omitempty"`
	URL            string         `json:"url,omitempty"      yaml:"url,omitempty"`
	ClassName      string         `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	ResponseText   string         `json:"response_text,omitempty" yaml:"response_text,omitempty"`
	Annotations    map[string]any `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	AnnotatorNames []string       `json:"annotator_names,omitempty" yaml:"annotator_names,omitempty"`
}

// PipelineMetadata is the distribution identity block of the pipeline
// descriptor. DateCreated stays a string so loaded files round-trip
// byte-identically.
type PipelineMetadata struct {
	DisplayName string `json:"display_name"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`
	DateCreated string `json:"date_created,omitempty"`
	RAMUsage    string `json:"ram_usage,omitempty"`
	GPUUsage    string `json:"gpu_usage,omitempty"`
	DiskUsage   string `json:"disk_usage,omitempty"`
}

// ConnectorSpec is either a reference to a shared connector
// ("connectors.<name>") or an inline connector definition.
type ConnectorSpec struct {
	// Ref is the shared connector reference, empty for inline connectors.
	Ref string

	// Inline is the inline definition, nil when Ref is set.
	Inline *Connector

	raw json.RawMessage
}

func (c *ConnectorSpec) UnmarshalJSON(data []byte) error {
	// Defer typed decoding to materialize so the parse mode applies.
	c.raw = append(c.raw[:0], data...)
	return nil
}

func (c ConnectorSpec) MarshalJSON() ([]byte, error) {
	if c.Ref != "" {
		return json.Marshal(c.Ref)
	}
	if c.Inline != nil {
		return json.Marshal(c.Inline)
	}
	return []byte("null"), nil
}

// materialize resolves the captured raw value into Ref or Inline.
func (c *ConnectorSpec) materialize(mode Mode) error {
	if c.raw == nil {
		return nil
	}
	raw := c.raw
	c.raw = nil

	if len(raw) > 0 && raw[0] == '"' {
		return decodeJSON(raw, &c.Ref, mode)
	}

	var conn Connector
	if err := decodeJSON(raw, &conn, mode); err != nil {
		return err
	}
	c.Inline = &conn
	return nil
}

// groups returns the multi-component stage groups in canonical order, paired
// with their wire names. Nil groups are included so callers can key on name.
func (l *ServiceList) groups() []struct {
	Name  string
	Group *Services
} {
	return []struct {
		Name  string
		Group *Services
	}{
		{"annotators", l.Annotators},
		{"skill_selectors", l.SkillSelectors},
		{"skills", l.Skills},
		{"response_annotator_selectors", l.ResponseAnnotatorSelectors},
		{"response_annotators", l.ResponseAnnotators},
		{"candidate_annotators", l.CandidateAnnotators},
		{"response_selectors", l.ResponseSelectors},
	}
}

// materialize finishes the two-pass decode of every stage group, singleton
// slot and connector entry.
func (p *PipelineConf) materialize(mode Mode) error {
	if p.Connectors != nil {
		if err := p.Connectors.materialize(mode); err != nil {
			return errors.Wrap(err, "connectors")
		}
	}

	for _, g := range p.Services.groups() {
		if g.Group == nil {
			continue
		}
		if err := g.Group.materialize(mode); err != nil {
			return errors.Wrap(err, g.Name)
		}
		for _, name := range g.Group.Names() {
			svc := g.Group.Get(name)
			if err := svc.Connector.materialize(mode); err != nil {
				return errors.Wrapf(err, "%s.%s: connector", g.Name, name)
			}
		}
	}

	for _, slot := range []struct {
		name string
		svc  *PipelineService
	}{
		{"last_chance_service", p.Services.LastChanceService},
		{"timeout_service", p.Services.TimeoutService},
	} {
		if slot.svc == nil {
			continue
		}
		if err := slot.svc.Connector.materialize(mode); err != nil {
			return errors.Wrapf(err, "%s: connector", slot.name)
		}
	}
	return nil
}
