package descriptor

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
)

// ParsePipeline parses pipeline descriptor text. The path is carried into
// schema errors for reporting only.
func ParsePipeline(data []byte, mode Mode, path string) (*PipelineConf, error) {
	var conf PipelineConf
	if err := decodeJSON(data, &conf, mode); err != nil {
		return nil, schemaError(path, err)
	}
	if err := conf.materialize(mode); err != nil {
		return nil, schemaError(path, err)
	}
	return &conf, nil
}

// ParseCompose parses one of the compose descriptor variants. The kind must
// be a compose kind; the four variants share a schema and differ only in
// which fields their services typically carry.
func ParseCompose(kind Kind, data []byte, mode Mode, path string) (*ComposeFile, error) {
	if !isComposeKind(kind) {
		return nil, errors.Newf("%s is not a compose descriptor kind", kind)
	}

	var file ComposeFile
	if err := decodeYAML(data, &file, mode); err != nil {
		return nil, schemaError(path, err)
	}
	if file.Services == nil {
		return nil, schemaError(path, errors.New("missing required key \"services\""))
	}
	if file.Version == "" {
		file.Version = DefaultComposeVersion
	}

	for name, svc := range file.Services {
		if svc == nil {
			continue
		}
		if err := checkComposeService(svc); err != nil {
			return nil, &dreamerrors.SchemaError{Path: path, Field: "services." + name, Err: err}
		}
	}
	return &file, nil
}

// ParseComponentCard parses a component.yml card.
func ParseComponentCard(data []byte, mode Mode, path string) (*ComponentCard, error) {
	var card ComponentCard
	if err := decodeYAML(data, &card, mode); err != nil {
		return nil, schemaError(path, err)
	}
	if card.Name == "" {
		return nil, &dreamerrors.SchemaError{Path: path, Field: "name", Expected: "non-empty component name"}
	}
	if card.Connector == nil {
		return nil, &dreamerrors.SchemaError{Path: path, Field: "connector", Expected: "connector definition"}
	}
	return &card, nil
}

// ParseServiceConfig parses a service.yml config.
func ParseServiceConfig(data []byte, mode Mode, path string) (*ServiceConfig, error) {
	var cfg ServiceConfig
	if err := decodeYAML(data, &cfg, mode); err != nil {
		return nil, schemaError(path, err)
	}
	if cfg.Name == "" {
		return nil, &dreamerrors.SchemaError{Path: path, Field: "name", Expected: "non-empty service name"}
	}
	for _, mem := range []struct {
		field string
		value string
	}{
		{"memory_limit", cfg.MemoryLimit},
		{"memory_reservation", cfg.MemoryReservation},
	} {
		if mem.value == "" {
			continue
		}
		if err := CheckMemory(mem.value); err != nil {
			return nil, &dreamerrors.SchemaError{Path: path, Field: mem.field, Value: mem.value, Err: err}
		}
	}
	return &cfg, nil
}

// ParseEnvironment parses an environment.yml mapping.
func ParseEnvironment(data []byte, path string) (map[string]string, error) {
	env := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return env, nil
	}
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, schemaError(path, err)
	}
	return env, nil
}

func isComposeKind(kind Kind) bool {
	for _, k := range ComposeKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func checkComposeService(svc *ComposeService) error {
	if svc.Deploy != nil && svc.Deploy.Resources != nil {
		for _, amt := range []*MemoryAmount{svc.Deploy.Resources.Limits, svc.Deploy.Resources.Reservations} {
			if amt == nil {
				continue
			}
			if err := CheckMemory(amt.Memory); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeYAML decodes data into v, rejecting unknown fields in strict mode.
func decodeYAML(data []byte, v any, mode Mode) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(mode == ModeStrict)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// schemaError wraps a decode error into the structured schema error,
// extracting the offending field name when the underlying error exposes one.
func schemaError(path string, err error) error {
	se := &dreamerrors.SchemaError{Path: path, Err: err}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		se.Field = typeErr.Field
		se.Expected = typeErr.Type.String()
	} else if field, ok := unknownField(err); ok {
		se.Field = field
		se.Expected = "no unknown keys in strict mode"
	}
	return se
}

// unknownField extracts the field name from encoding/json's unknown-field
// error, which is only exposed as text.
func unknownField(err error) (string, bool) {
	msg := err.Error()
	const marker = "unknown field "
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	field := strings.TrimSpace(msg[i+len(marker):])
	return strings.Trim(field, "\""), true
}
