package render

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// Pipeline renders a pipeline descriptor to its canonical JSON text.
func Pipeline(conf *descriptor.PipelineConf) ([]byte, error) {
	data, err := json.MarshalIndent(conf, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "rendering pipeline descriptor")
	}
	return append(data, '\n'), nil
}

// Compose renders a compose descriptor to its canonical YAML text.
func Compose(file *descriptor.ComposeFile) ([]byte, error) {
	data, err := fileutil.MarshalYAML(file)
	if err != nil {
		return nil, errors.Wrap(err, "rendering compose descriptor")
	}
	return data, nil
}

// Environment renders an environment.yml mapping to its canonical YAML text.
func Environment(env map[string]string) ([]byte, error) {
	data, err := fileutil.MarshalYAML(env)
	if err != nil {
		return nil, errors.Wrap(err, "rendering environment config")
	}
	return data, nil
}

// ServiceConfig renders a service.yml record to its canonical YAML text.
func ServiceConfig(cfg *descriptor.ServiceConfig) ([]byte, error) {
	data, err := fileutil.MarshalYAML(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "rendering service config")
	}
	return data, nil
}
