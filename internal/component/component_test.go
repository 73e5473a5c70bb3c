package component

import (
	"errors"
	"strings"
	"testing"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

func TestParseGroup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Group
		wantErr bool
	}{
		{name: "annotators", input: "annotators", want: GroupAnnotators},
		{name: "response selectors", input: "response_selectors", want: GroupResponseSelectors},
		{name: "unknown", input: "post_annotators", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "singleton is not a group", input: "last_chance_service", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGroup(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseGroup(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGroup(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseGroup(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGroupPrecedes(t *testing.T) {
	if !GroupAnnotators.Precedes(GroupSkills) {
		t.Error("annotators should precede skills")
	}
	if GroupSkills.Precedes(GroupAnnotators) {
		t.Error("skills should not precede annotators")
	}
	if GroupSkills.Precedes(GroupSkills) {
		t.Error("a group should not precede itself")
	}
	if Group("bogus").Precedes(GroupSkills) {
		t.Error("unknown group should not precede anything")
	}
}

func TestCanonicalOrderPositions(t *testing.T) {
	for i, g := range CanonicalOrder {
		if got := g.Position(); got != i {
			t.Errorf("Position(%s) = %d, want %d", g, got, i)
		}
	}
	if got := Group("bogus").Position(); got != -1 {
		t.Errorf("Position(bogus) = %d, want -1", got)
	}
}

func TestParseDependencyRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DependencyRef
		wantErr bool
	}{
		{
			name:  "single component",
			input: "annotators.sentseg",
			want:  DependencyRef{Stage: GroupAnnotators, Name: "sentseg"},
		},
		{
			name:  "whole stage",
			input: "skills",
			want:  DependencyRef{Stage: GroupSkills},
		},
		{
			name:  "name with dots",
			input: "annotators.ner.v2",
			want:  DependencyRef{Stage: GroupAnnotators, Name: "ner.v2"},
		},
		{name: "unknown group", input: "widgets.foo", wantErr: true},
		{name: "empty name", input: "annotators.", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDependencyRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDependencyRef(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDependencyRef(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDependencyRef(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestDependencyRefWholeStage(t *testing.T) {
	whole := DependencyRef{Stage: GroupAnnotators}
	if !whole.WholeStage() {
		t.Error("reference without a name should be whole-stage")
	}
	single := DependencyRef{Stage: GroupAnnotators, Name: "ner"}
	if single.WholeStage() {
		t.Error("reference with a name should not be whole-stage")
	}
}

func TestResolveClass(t *testing.T) {
	kind, err := ResolveClass("PredefinedTextConnector")
	if err != nil {
		t.Fatalf("ResolveClass error: %v", err)
	}
	if kind != KindPredefinedText {
		t.Errorf("kind = %v, want %v", kind, KindPredefinedText)
	}

	if _, err := ResolveClass("made.up:Connector"); err == nil {
		t.Error("expected error for unregistered class")
	}
}

func TestRegisterClass(t *testing.T) {
	const name = "custom.connector:TestOnlyConnector"
	RegisterClass(name, KindPredefinedText)
	defer delete(classRegistry, name)

	kind, err := ResolveClass(name)
	if err != nil {
		t.Fatalf("ResolveClass after RegisterClass error: %v", err)
	}
	if kind != KindPredefinedText {
		t.Errorf("kind = %v, want %v", kind, KindPredefinedText)
	}
}

func TestParseConnectorURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    Address
		wantErr bool
	}{
		{
			name: "full url",
			url:  "http://sentseg:8011/sentseg",
			want: Address{Host: "sentseg", Port: "8011", Endpoint: "sentseg"},
		},
		{
			name: "https",
			url:  "https://ner:8021/ner",
			want: Address{Host: "ner", Port: "8021", Endpoint: "ner"},
		},
		{
			name: "no endpoint",
			url:  "http://dialogpt:8125",
			want: Address{Host: "dialogpt", Port: "8125"},
		},
		{name: "no port", url: "http://sentseg/sentseg", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "garbage", url: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConnectorURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseConnectorURL(%q) = %+v, want error", tt.url, got)
				}
				if !strings.Contains(err.Error(), "does not fit") {
					t.Errorf("error %q should mention the expected format", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConnectorURL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ParseConnectorURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestConnectorValidate(t *testing.T) {
	tests := []struct {
		name    string
		conn    Connector
		wantErr bool
	}{
		{
			name: "valid http",
			conn: Connector{Kind: ConnectorHTTP, URL: "http://sentseg:8011/sentseg", Timeout: 1.5},
		},
		{
			name:    "http zero timeout",
			conn:    Connector{Kind: ConnectorHTTP, URL: "http://sentseg:8011/sentseg"},
			wantErr: true,
		},
		{
			name:    "http negative timeout",
			conn:    Connector{Kind: ConnectorHTTP, URL: "http://sentseg:8011/sentseg", Timeout: -1},
			wantErr: true,
		},
		{
			name:    "http bad url",
			conn:    Connector{Kind: ConnectorHTTP, URL: "sentseg", Timeout: 1},
			wantErr: true,
		},
		{
			name: "valid python",
			conn: Connector{Kind: ConnectorPython, Class: "PredefinedTextConnector"},
		},
		{
			name:    "python unknown class",
			conn:    Connector{Kind: ConnectorPython, Class: "no.such:Connector"},
			wantErr: true,
		},
		{
			name:    "python empty class",
			conn:    Connector{Kind: ConnectorPython},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			conn:    Connector{Kind: "grpc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				var verr *dreamerrors.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error %T should be a ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
		})
	}
}

func TestConnectorContainerName(t *testing.T) {
	http := Connector{Kind: ConnectorHTTP, URL: "http://sentseg:8011/sentseg", Timeout: 1}
	if got := http.ContainerName(); got != "sentseg" {
		t.Errorf("ContainerName() = %q, want sentseg", got)
	}

	python := Connector{Kind: ConnectorPython, Class: "PredefinedTextConnector"}
	if got := python.ContainerName(); got != AgentContainerName {
		t.Errorf("ContainerName() = %q, want %q", got, AgentContainerName)
	}
}

func TestConnectorDescriptorRoundTrip(t *testing.T) {
	timeout := 2.0
	tests := []struct {
		name string
		wire *descriptor.Connector
	}{
		{
			name: "http",
			wire: &descriptor.Connector{Protocol: "http", Timeout: &timeout, URL: "http://ner:8021/ner"},
		},
		{
			name: "python",
			wire: &descriptor.Connector{
				Protocol:     "python",
				ClassName:    "PredefinedTextConnector",
				ResponseText: "Sorry, something went wrong.",
				Annotations:  map[string]any{"sentseg": map[string]any{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := ConnectorFromDescriptor(tt.wire)
			if err != nil {
				t.Fatalf("ConnectorFromDescriptor error: %v", err)
			}
			back := conn.ToDescriptor()
			if back.Protocol != tt.wire.Protocol {
				t.Errorf("protocol = %q, want %q", back.Protocol, tt.wire.Protocol)
			}
			if back.URL != tt.wire.URL {
				t.Errorf("url = %q, want %q", back.URL, tt.wire.URL)
			}
			if back.ClassName != tt.wire.ClassName {
				t.Errorf("class_name = %q, want %q", back.ClassName, tt.wire.ClassName)
			}
			if back.ResponseText != tt.wire.ResponseText {
				t.Errorf("response_text = %q, want %q", back.ResponseText, tt.wire.ResponseText)
			}
		})
	}
}

func TestConnectorFromDescriptorErrors(t *testing.T) {
	if _, err := ConnectorFromDescriptor(nil); err == nil {
		t.Error("expected error for nil definition")
	}
	if _, err := ConnectorFromDescriptor(&descriptor.Connector{Protocol: "grpc"}); err == nil {
		t.Error("expected error for unsupported protocol")
	}
}

const sentsegCard = `name: sentseg
group: annotators
container_name: sentseg
source: annotators/SentSeg
connector:
  protocol: http
  timeout: 1.5
  url: http://sentseg:8011/sentseg
dialog_formatter: state_formatters.dp_formatters:preproc_last_human_utt_dialog
response_formatter: state_formatters.dp_formatters:simple_formatter_service
state_manager_method: add_annotation
`

func TestFromCard(t *testing.T) {
	card, err := descriptor.ParseComponentCard([]byte(sentsegCard), descriptor.ModeStrict, "component.yml")
	if err != nil {
		t.Fatalf("ParseComponentCard error: %v", err)
	}

	c, err := FromCard(card)
	if err != nil {
		t.Fatalf("FromCard error: %v", err)
	}

	if c.Name != "sentseg" {
		t.Errorf("name = %q, want sentseg", c.Name)
	}
	if c.Group != GroupAnnotators {
		t.Errorf("group = %v, want annotators", c.Group)
	}
	if c.Connector.Kind != ConnectorHTTP {
		t.Errorf("connector kind = %v, want http", c.Connector.Kind)
	}
	if c.Connector.Timeout != 1.5 {
		t.Errorf("timeout = %v, want 1.5", c.Connector.Timeout)
	}
	if c.StateManagerMethod != "add_annotation" {
		t.Errorf("state_manager_method = %q", c.StateManagerMethod)
	}
	if got := c.ContainerName(); got != "sentseg" {
		t.Errorf("ContainerName() = %q, want sentseg", got)
	}
	if got := c.ID(); got != "annotators.sentseg" {
		t.Errorf("ID() = %q, want annotators.sentseg", got)
	}
}

func TestFromCardBadGroup(t *testing.T) {
	card := &descriptor.ComponentCard{
		Name:      "sentseg",
		Group:     "post_annotators",
		Connector: &descriptor.Connector{Protocol: "http", URL: "http://sentseg:8011/sentseg"},
	}
	_, err := FromCard(card)
	var verr *dreamerrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Field != "group" {
		t.Errorf("field = %q, want group", verr.Field)
	}
}

func TestFromFile(t *testing.T) {
	store := fileutil.NewMemStore()
	path := "components/sentseg/component.yml"
	if err := store.Write(path, []byte(sentsegCard)); err != nil {
		t.Fatal(err)
	}

	c, err := FromFile(store, path, descriptor.ModeStrict)
	if err != nil {
		t.Fatalf("FromFile error: %v", err)
	}
	if c.Source != path {
		t.Errorf("source = %q, want %q", c.Source, path)
	}

	if _, err := FromFile(store, "components/missing/component.yml", descriptor.ModeStrict); err == nil {
		t.Error("expected error for missing card")
	}
}

func TestFromPipelineEntry(t *testing.T) {
	timeout := 1.0
	entry := &descriptor.PipelineService{
		Connector: descriptor.ConnectorSpec{
			Inline: &descriptor.Connector{Protocol: "http", Timeout: &timeout, URL: "http://ner:8021/ner"},
		},
		DialogFormatter:          "state_formatters.dp_formatters:ner_formatter_dialog",
		ResponseFormatter:        "state_formatters.dp_formatters:simple_formatter_service",
		PreviousServices:         []string{"annotators.sentseg"},
		RequiredPreviousServices: []string{"annotators.sentseg"},
		StateManagerMethod:       "add_annotation",
		Source:                   &descriptor.SourceSpec{Component: "components/ner/component.yml"},
	}

	c, err := FromPipelineEntry(GroupAnnotators, "ner", entry, nil)
	if err != nil {
		t.Fatalf("FromPipelineEntry error: %v", err)
	}
	if c.Name != "ner" || c.Group != GroupAnnotators {
		t.Errorf("identity = %s.%s", c.Group, c.Name)
	}
	if len(c.Dependencies) != 1 || c.Dependencies[0].Name != "sentseg" {
		t.Errorf("dependencies = %v", c.Dependencies)
	}
	if len(c.RequiredDependencies) != 1 {
		t.Errorf("required dependencies = %v", c.RequiredDependencies)
	}
	if c.Source != "components/ner/component.yml" {
		t.Errorf("source = %q", c.Source)
	}

	back := c.PipelineEntry()
	if back.Connector.Inline == nil || back.Connector.Inline.URL != "http://ner:8021/ner" {
		t.Errorf("round-tripped connector = %+v", back.Connector)
	}
	if len(back.PreviousServices) != 1 || back.PreviousServices[0] != "annotators.sentseg" {
		t.Errorf("round-tripped previous_services = %v", back.PreviousServices)
	}
	if back.Source == nil || back.Source.Component != c.Source {
		t.Errorf("round-tripped source = %+v", back.Source)
	}
}

func TestFromPipelineEntrySharedConnector(t *testing.T) {
	pipelineJSON := []byte(`{
    "connectors": {
        "sentseg": {
            "protocol": "http",
            "timeout": 1.5,
            "url": "http://sentseg:8011/sentseg"
        }
    },
    "services": {
        "annotators": {
            "sentseg": {
                "connector": "connectors.sentseg",
                "dialog_formatter": "state_formatters.dp_formatters:preproc_last_human_utt_dialog",
                "response_formatter": "state_formatters.dp_formatters:simple_formatter_service",
                "state_manager_method": "add_annotation"
            }
        }
    }
}`)
	conf, err := descriptor.ParsePipeline(pipelineJSON, descriptor.ModeStrict, "pipeline_conf.json")
	if err != nil {
		t.Fatalf("ParsePipeline error: %v", err)
	}

	entry := conf.Services.Annotators.Get("sentseg")
	c, err := FromPipelineEntry(GroupAnnotators, "sentseg", entry, conf.Connectors)
	if err != nil {
		t.Fatalf("FromPipelineEntry error: %v", err)
	}
	if c.ConnectorRef != "connectors.sentseg" {
		t.Errorf("connector ref = %q", c.ConnectorRef)
	}
	if c.Connector.URL != "http://sentseg:8011/sentseg" {
		t.Errorf("resolved url = %q", c.Connector.URL)
	}

	back := c.PipelineEntry()
	if back.Connector.Ref != "connectors.sentseg" {
		t.Errorf("round-tripped connector ref = %q", back.Connector.Ref)
	}

	// A reference to a connector that is not in the table must fail.
	entry.Connector = descriptor.ConnectorSpec{Ref: "connectors.missing"}
	if _, err := FromPipelineEntry(GroupAnnotators, "sentseg", entry, conf.Connectors); err == nil {
		t.Error("expected error for undefined shared connector")
	}
}

func TestComponentClone(t *testing.T) {
	orig := &Component{
		Name:  "intent_responder",
		Group: GroupSkills,
		Connector: Connector{
			Kind:    ConnectorHTTP,
			URL:     "http://dff-intent-responder-skill:8012/respond",
			Timeout: 2,
		},
		Dependencies: []DependencyRef{{Stage: GroupAnnotators, Name: "intent_catcher"}},
		Tags:         []string{"command"},
	}

	cp := orig.Clone()
	if !cp.Equal(orig) {
		t.Fatal("clone should equal original")
	}

	cp.Dependencies[0].Name = "sentseg"
	cp.Tags[0] = "mutated"
	cp.Connector.URL = "http://other:1/x"
	if orig.Dependencies[0].Name != "intent_catcher" {
		t.Error("mutating clone dependencies changed original")
	}
	if orig.Tags[0] != "command" {
		t.Error("mutating clone tags changed original")
	}
	if orig.Connector.URL == cp.Connector.URL {
		t.Error("mutating clone connector changed original")
	}
	if cp.Equal(orig) {
		t.Error("mutated clone should not equal original")
	}
}

func TestComponentValidate(t *testing.T) {
	valid := Component{
		Name:      "sentseg",
		Group:     GroupAnnotators,
		Connector: Connector{Kind: ConnectorHTTP, URL: "http://sentseg:8011/sentseg", Timeout: 1},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	noName := valid
	noName.Name = ""
	if err := noName.Validate(); err == nil {
		t.Error("expected error for missing name")
	}

	badGroup := valid
	badGroup.Group = "widgets"
	if err := badGroup.Validate(); err == nil {
		t.Error("expected error for unknown group")
	}

	badConn := valid
	badConn.Connector.Timeout = 0
	if err := badConn.Validate(); err == nil {
		t.Error("expected error for invalid connector")
	}
}
