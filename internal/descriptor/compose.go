package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ComposeFile is the wire form of the docker-compose variant descriptors.
// The services map renders with sorted keys, which keeps generation
// deterministic.
type ComposeFile struct {
	Services map[string]*ComposeService `yaml:"services"`
	Version  string                     `yaml:"version"`
}

// DefaultComposeVersion is used when generating compose descriptors from
// scratch.
const DefaultComposeVersion = "3.7"

// ComposeService is one service definition inside a compose descriptor.
// Field declaration order is rendering order.
type ComposeService struct {
	Volumes     []string    `yaml:"volumes,omitempty"`
	EnvFile     []string    `yaml:"env_file,omitempty"`
	Build       *BuildSpec  `yaml:"build,omitempty"`
	Image       string      `yaml:"image,omitempty"`
	Command     string      `yaml:"command,omitempty"`
	Environment EnvMap      `yaml:"environment,omitempty"`
	Deploy      *DeploySpec `yaml:"deploy,omitempty"`
	Tty         bool        `yaml:"tty,omitempty"`
	Ports       []string    `yaml:"ports,omitempty"`
}

// BuildSpec describes how a service image is built from source.
type BuildSpec struct {
	Context    string         `yaml:"context"              json:"context"`
	Dockerfile string         `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
	Args       map[string]any `yaml:"args,omitempty"       json:"args,omitempty"`
}

// DeploySpec carries the deployment resource requirements of a service.
type DeploySpec struct {
	Mode      string         `yaml:"mode,omitempty"`
	Replicas  int            `yaml:"replicas,omitempty"`
	Resources *ResourcesSpec `yaml:"resources,omitempty"`
}

// ResourcesSpec holds memory limits and reservations.
type ResourcesSpec struct {
	Limits       *MemoryAmount `yaml:"limits,omitempty"`
	Reservations *MemoryAmount `yaml:"reservations,omitempty"`
}

// MemoryAmount is a memory size with unit, e.g. "2.5G" or "256M".
type MemoryAmount struct {
	Memory string `yaml:"memory"`
}

// CheckMemory validates that a memory string carries a G or M unit preceded
// by a float-like value, e.g. "2.5G" or "256M".
func CheckMemory(s string) error {
	if len(s) < 2 {
		return errors.Newf("memory value %q must contain a number and a unit, e.g. '2.5G' or '256M'", s)
	}
	unit := s[len(s)-1:]
	if unit != "G" && unit != "M" {
		return errors.Newf("memory value %q must end with a G or M unit, e.g. '2.5G' or '256M'", s)
	}
	if _, err := strconv.ParseFloat(s[:len(s)-1], 64); err != nil {
		return errors.Newf("memory value %q must contain a float-like value before the unit, e.g. '2.5G' or '256M'", s)
	}
	return nil
}

// EnvMap is a compose environment block. Compose accepts either a mapping or
// a "KEY=VALUE" sequence on input; the map form is always rendered, with
// sorted keys.
type EnvMap map[string]string

func (m *EnvMap) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		raw := make(map[string]string)
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*m = raw
		return nil
	case yaml.SequenceNode:
		var entries []string
		if err := value.Decode(&entries); err != nil {
			return err
		}
		out := make(EnvMap, len(entries))
		for _, e := range entries {
			key, val, found := strings.Cut(e, "=")
			if !found {
				return errors.Newf("environment entry %q is not of KEY=VALUE form", e)
			}
			out[key] = val
		}
		*m = out
		return nil
	default:
		return errors.Newf("environment must be a mapping or a sequence, got %s", nodeKind(value))
	}
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return fmt.Sprintf("scalar %q", n.Value)
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "unknown node"
	}
}
