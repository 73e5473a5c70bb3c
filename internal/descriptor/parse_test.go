package descriptor

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
)

const pipelineJSON = `{
    "connectors": {
        "sentseg": {
            "protocol": "http",
            "timeout": 1.5,
            "url": "http://sentseg:8011/sentseg"
        }
    },
    "services": {
        "last_chance_service": {
            "connector": {
                "protocol": "python",
                "class_name": "PredefinedTextConnector",
                "response_text": "Sorry, something went wrong inside."
            },
            "state_manager_method": "add_bot_utterance_last_chance",
            "tags": ["last_chance"]
        },
        "annotators": {
            "zzz_first": {
                "connector": "connectors.sentseg",
                "dialog_formatter": "state_formatters.dp_formatters:preproc_last_human_utt_dialog",
                "state_manager_method": "add_annotation"
            },
            "aaa_second": {
                "connector": {
                    "protocol": "http",
                    "timeout": 2,
                    "url": "http://ner:8021/ner"
                },
                "previous_services": ["annotators.zzz_first"],
                "state_manager_method": "add_annotation"
            }
        },
        "skills": {
            "dff_weather_skill": {
                "connector": {
                    "protocol": "http",
                    "timeout": 2,
                    "url": "http://dff-weather-skill:8037/respond"
                },
                "dialog_formatter": "state_formatters.dp_formatters:dff_weather_skill_formatter",
                "response_formatter": "state_formatters.dp_formatters:skill_with_attributes_formatter_service",
                "previous_services": ["annotators"]
            }
        }
    },
    "metadata": {
        "display_name": "Dream Weather",
        "author": "DeepPavlov",
        "description": "Weather distribution",
        "version": "0.1.0"
    }
}`

func TestParsePipeline_PreservesInsertionOrder(t *testing.T) {
	conf, err := ParsePipeline([]byte(pipelineJSON), ModeStrict, "pipeline_conf.json")
	if err != nil {
		t.Fatalf("ParsePipeline() error = %v", err)
	}

	// "zzz_first" precedes "aaa_second" in the document; alphabetical order
	// would invert them.
	got := conf.Services.Annotators.Names()
	want := []string{"zzz_first", "aaa_second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("annotator order = %v, want %v", got, want)
	}
}

func TestParsePipeline_ConnectorForms(t *testing.T) {
	conf, err := ParsePipeline([]byte(pipelineJSON), ModeStrict, "pipeline_conf.json")
	if err != nil {
		t.Fatalf("ParsePipeline() error = %v", err)
	}

	ref := conf.Services.Annotators.Get("zzz_first")
	if ref.Connector.Ref != "connectors.sentseg" {
		t.Errorf("Ref = %q, want connectors.sentseg", ref.Connector.Ref)
	}
	if ref.Connector.Inline != nil {
		t.Error("reference connector must not carry an inline definition")
	}

	inline := conf.Services.Annotators.Get("aaa_second")
	if inline.Connector.Inline == nil {
		t.Fatal("inline connector missing")
	}
	if inline.Connector.Inline.URL != "http://ner:8021/ner" {
		t.Errorf("URL = %q", inline.Connector.Inline.URL)
	}
	if *inline.Connector.Inline.Timeout != 2 {
		t.Errorf("Timeout = %v, want 2", *inline.Connector.Inline.Timeout)
	}

	shared := conf.Connectors.Get("sentseg")
	if shared == nil || shared.Protocol != "http" {
		t.Fatalf("shared connector not parsed: %+v", shared)
	}

	lastChance := conf.Services.LastChanceService
	if lastChance == nil || lastChance.Connector.Inline == nil {
		t.Fatal("last_chance_service connector missing")
	}
	if lastChance.Connector.Inline.ClassName != "PredefinedTextConnector" {
		t.Errorf("ClassName = %q", lastChance.Connector.Inline.ClassName)
	}
}

func TestParsePipeline_UnknownKeys(t *testing.T) {
	withVendorKey := strings.Replace(pipelineJSON,
		`"state_manager_method": "add_annotation"
            }
        },
        "skills"`,
		`"state_manager_method": "add_annotation",
                "x_vendor_hint": true
            }
        },
        "skills"`, 1)
	if withVendorKey == pipelineJSON {
		t.Fatal("fixture replacement failed")
	}

	if _, err := ParsePipeline([]byte(withVendorKey), ModeLenient, "p.json"); err != nil {
		t.Errorf("lenient mode should tolerate vendor keys, got %v", err)
	}

	_, err := ParsePipeline([]byte(withVendorKey), ModeStrict, "p.json")
	var schemaErr *dreamerrors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("strict mode should return *SchemaError, got %v", err)
	}
	if schemaErr.Path != "p.json" {
		t.Errorf("Path = %q, want p.json", schemaErr.Path)
	}
	if schemaErr.Field != "x_vendor_hint" {
		t.Errorf("Field = %q, want x_vendor_hint", schemaErr.Field)
	}
}

func TestParsePipeline_RoundTrip(t *testing.T) {
	conf, err := ParsePipeline([]byte(pipelineJSON), ModeStrict, "p.json")
	if err != nil {
		t.Fatalf("ParsePipeline() error = %v", err)
	}

	out, err := json.MarshalIndent(conf, "", "    ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	if string(out) != pipelineJSON {
		t.Errorf("round-trip mismatch:\n--- got ---\n%s\n--- want ---\n%s", out, pipelineJSON)
	}
}

func TestParsePipeline_MalformedJSON(t *testing.T) {
	_, err := ParsePipeline([]byte(`{"services": [1, 2]}`), ModeLenient, "p.json")
	var schemaErr *dreamerrors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want *SchemaError, got %v", err)
	}
}

const composeYAML = `services:
  agent:
    command: sh -c 'bin/wait && python -m deeppavlov_agent.run agent.pipeline_config=assistant_dists/dream_weather/pipeline_conf.json'
    environment:
      WAIT_HOSTS: ''
      WAIT_HOSTS_TIMEOUT: ${WAIT_TIMEOUT:-480}
    volumes:
      - .:/dp-agent
  dff-weather-skill:
    build:
      context: .
      dockerfile: ./skills/dff_weather_skill/Dockerfile
      args:
        SERVICE_PORT: 8037
    command: gunicorn --workers=1 server:app -b 0.0.0.0:8037
    deploy:
      resources:
        limits:
          memory: 1G
        reservations:
          memory: 768M
version: '3.7'
`

func TestParseCompose(t *testing.T) {
	file, err := ParseCompose(KindComposeOverride, []byte(composeYAML), ModeStrict, "docker-compose.override.yml")
	if err != nil {
		t.Fatalf("ParseCompose() error = %v", err)
	}

	if file.Version != "3.7" {
		t.Errorf("Version = %q, want 3.7", file.Version)
	}

	skill := file.Services["dff-weather-skill"]
	if skill == nil {
		t.Fatal("dff-weather-skill missing")
	}
	if skill.Build == nil || skill.Build.Context != "." {
		t.Errorf("Build = %+v", skill.Build)
	}
	if skill.Deploy.Resources.Limits.Memory != "1G" {
		t.Errorf("memory limit = %q", skill.Deploy.Resources.Limits.Memory)
	}

	agent := file.Services["agent"]
	if agent.Environment["WAIT_HOSTS_TIMEOUT"] != "${WAIT_TIMEOUT:-480}" {
		t.Errorf("environment = %v", agent.Environment)
	}
}

func TestParseCompose_EnvironmentSequenceForm(t *testing.T) {
	doc := `services:
  proxy:
    environment:
      - PROXY_PASS=dream.deeppavlov.ai:8011
      - PORT=8011
version: '3.7'
`
	file, err := ParseCompose(KindComposeProxy, []byte(doc), ModeStrict, "proxy.yml")
	if err != nil {
		t.Fatalf("ParseCompose() error = %v", err)
	}
	env := file.Services["proxy"].Environment
	if env["PORT"] != "8011" || env["PROXY_PASS"] != "dream.deeppavlov.ai:8011" {
		t.Errorf("environment = %v", env)
	}
}

func TestParseCompose_Errors(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		doc  string
		mode Mode
	}{
		{
			name: "bad memory unit",
			kind: KindComposeOverride,
			doc: `services:
  s:
    deploy:
      resources:
        limits:
          memory: 1T
        reservations:
          memory: 1G
version: '3.7'
`,
			mode: ModeLenient,
		},
		{
			name: "unknown key strict",
			kind: KindComposeDev,
			doc: `services:
  s:
    ports:
      - 8037:8037
    x_vendor: 1
version: '3.7'
`,
			mode: ModeStrict,
		},
		{
			name: "missing services",
			kind: KindComposeDev,
			doc:  "version: '3.7'\n",
			mode: ModeLenient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompose(tt.kind, []byte(tt.doc), tt.mode, "f.yml")
			var schemaErr *dreamerrors.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("want *SchemaError, got %v", err)
			}
		})
	}
}

func TestParseCompose_RejectsNonComposeKind(t *testing.T) {
	if _, err := ParseCompose(KindPipeline, []byte("services: {}\n"), ModeLenient, "f"); err == nil {
		t.Error("ParseCompose(KindPipeline) should fail")
	}
}

func TestParseComponentCard(t *testing.T) {
	doc := `name: sentseg
group: annotators
container_name: sentseg
source: annotators/SentSeg
connector:
  protocol: http
  timeout: 1.5
  url: http://sentseg:8011/sentseg
dialog_formatter: state_formatters.dp_formatters:preproc_last_human_utt_dialog
state_manager_method: add_annotation
`
	card, err := ParseComponentCard([]byte(doc), ModeStrict, "component.yml")
	if err != nil {
		t.Fatalf("ParseComponentCard() error = %v", err)
	}
	if card.Name != "sentseg" || card.Group != "annotators" {
		t.Errorf("card = %+v", card)
	}
	if card.Connector.URL != "http://sentseg:8011/sentseg" {
		t.Errorf("connector URL = %q", card.Connector.URL)
	}
}

func TestParseComponentCard_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing name", "group: skills\nconnector:\n  protocol: http\n", "name"},
		{"missing connector", "name: x\ngroup: skills\n", "connector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseComponentCard([]byte(tt.doc), ModeLenient, "component.yml")
			var schemaErr *dreamerrors.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("want *SchemaError, got %v", err)
			}
			if schemaErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", schemaErr.Field, tt.field)
			}
		})
	}
}

func TestParseServiceConfig(t *testing.T) {
	doc := `name: dff-weather-skill
build:
  context: .
  dockerfile: ./skills/dff_weather_skill/Dockerfile
  args:
    SERVICE_PORT: 8037
command: gunicorn --workers=1 server:app -b 0.0.0.0:8037
ports:
  - 8037:8037
memory_limit: 1G
memory_reservation: 768M
`
	cfg, err := ParseServiceConfig([]byte(doc), ModeStrict, "service.yml")
	if err != nil {
		t.Fatalf("ParseServiceConfig() error = %v", err)
	}
	if cfg.Name != "dff-weather-skill" || cfg.MemoryLimit != "1G" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseServiceConfig_BadMemory(t *testing.T) {
	doc := "name: s\nmemory_limit: lots\n"
	_, err := ParseServiceConfig([]byte(doc), ModeLenient, "service.yml")
	var schemaErr *dreamerrors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want *SchemaError, got %v", err)
	}
	if schemaErr.Field != "memory_limit" {
		t.Errorf("Field = %q, want memory_limit", schemaErr.Field)
	}
}

func TestCheckMemory(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"2.5G", false},
		{"256M", false},
		{"1G", false},
		{"", true},
		{"G", true},
		{"100K", true},
		{"xG", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := CheckMemory(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckMemory(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("strict"); err != nil {
		t.Errorf("ParseMode(strict) error = %v", err)
	}
	if _, err := ParseMode("lenient"); err != nil {
		t.Errorf("ParseMode(lenient) error = %v", err)
	}
	if _, err := ParseMode("relaxed"); err == nil {
		t.Error("ParseMode(relaxed) should fail")
	}
}
