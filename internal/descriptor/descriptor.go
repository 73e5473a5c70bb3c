package descriptor

import (
	"github.com/cockroachdb/errors"
)

// Kind identifies a descriptor file schema.
type Kind string

// Descriptor kinds.
const (
	KindPipeline        Kind = "pipeline"
	KindComposeOverride Kind = "compose-override"
	KindComposeDev      Kind = "compose-dev"
	KindComposeProxy    Kind = "compose-proxy"
	KindComposeLocal    Kind = "compose-local"
	KindComponentCard   Kind = "component-card"
	KindServiceConfig   Kind = "service-config"
)

// Default file names for descriptors inside a distribution directory.
const (
	PipelineFileName        = "pipeline_conf.json"
	ComposeOverrideFileName = "docker-compose.override.yml"
	ComposeDevFileName      = "dev.yml"
	ComposeProxyFileName    = "proxy.yml"
	ComposeLocalFileName    = "local.yml"
	ComponentCardFileName   = "component.yml"
	ServiceConfigFileName   = "service.yml"
	EnvironmentFileName     = "environment.yml"
)

// ComposeKinds lists the four compose descriptor variants in their canonical
// order.
var ComposeKinds = []Kind{
	KindComposeOverride,
	KindComposeDev,
	KindComposeProxy,
	KindComposeLocal,
}

// FileName returns the default file name for the descriptor kind within a
// distribution directory.
func (k Kind) FileName() string {
	switch k {
	case KindPipeline:
		return PipelineFileName
	case KindComposeOverride:
		return ComposeOverrideFileName
	case KindComposeDev:
		return ComposeDevFileName
	case KindComposeProxy:
		return ComposeProxyFileName
	case KindComposeLocal:
		return ComposeLocalFileName
	case KindComponentCard:
		return ComponentCardFileName
	case KindServiceConfig:
		return ServiceConfigFileName
	default:
		return string(k)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Mode controls unknown-key tolerance during parsing.
type Mode string

const (
	// ModeStrict rejects unknown keys. Used for round-trip fidelity of files
	// this tool generates itself.
	ModeStrict Mode = "strict"

	// ModeLenient permits unknown keys. Used when loading externally-authored
	// files that may carry extra vendor keys.
	ModeLenient Mode = "lenient"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	default:
		return "", errors.Newf("unrecognized parse mode %q (want strict or lenient)", s)
	}
}
