package service

import (
	"path"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// Proxy recipe applied to every service in the proxy compose variant. The
// real service runs remotely; the local container is an nginx pass-through.
const (
	proxyCommand     = `nginx -g "daemon off;"`
	proxyContext     = "dp/proxy"
	proxyDockerfile  = "Dockerfile"
	proxyUpstreamEnv = "PROXY_PASS"
	proxyPortEnv     = "PORT"
)

// DefaultProxyUpstream is the remote host serving proxied components.
const DefaultProxyUpstream = "dream.deeppavlov.ai"

// Service is the deployable unit backing one or more pipeline components:
// a container built from source or pulled as an image, with its runtime
// settings and environment.
type Service struct {
	// Name is the container name, unique within a distribution.
	Name string

	// Build describes how the image is built; nil when Image is set.
	// Exactly one of Build and Image must be present.
	Build *descriptor.BuildSpec

	// Image is a prebuilt image reference; empty when Build is set.
	Image string

	Command           string
	Ports             []string
	MemoryLimit       string
	MemoryReservation string
	Environment       map[string]string
	EnvFile           []string
	Volumes           []string

	// ConfigDir is the service_configs/<name> directory the service was
	// loaded from ("" for services built in memory or from compose files).
	ConfigDir string
}

// New validates and returns a service built from explicit fields.
func New(s Service) (*Service, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := s.Clone()
	return out, nil
}

// FromConfig builds a service from a parsed service.yml, with optional
// environment entries from environment.yml.
func FromConfig(cfg *descriptor.ServiceConfig, env map[string]string) (*Service, error) {
	environment := make(map[string]string, len(cfg.Environment)+len(env))
	for k, v := range cfg.Environment {
		environment[k] = v
	}
	for k, v := range env {
		environment[k] = v
	}
	if len(environment) == 0 {
		environment = nil
	}

	return New(Service{
		Name:              cfg.Name,
		Build:             cfg.Build,
		Image:             cfg.Image,
		Command:           cfg.Command,
		Ports:             cfg.Ports,
		MemoryLimit:       cfg.MemoryLimit,
		MemoryReservation: cfg.MemoryReservation,
		Environment:       environment,
		EnvFile:           cfg.EnvFile,
		Volumes:           cfg.Volumes,
	})
}

// FromConfigDir reads service.yml and, when present, environment.yml from a
// service config directory.
func FromConfigDir(store fileutil.Store, dir string, mode descriptor.Mode) (*Service, error) {
	servicePath := path.Join(dir, descriptor.ServiceConfigFileName)
	data, err := store.Read(servicePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading service config %s", servicePath)
	}
	cfg, err := descriptor.ParseServiceConfig(data, mode, servicePath)
	if err != nil {
		return nil, err
	}

	var env map[string]string
	envPath := path.Join(dir, descriptor.EnvironmentFileName)
	if store.Exists(envPath) {
		envData, err := store.Read(envPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading environment config %s", envPath)
		}
		env, err = descriptor.ParseEnvironment(envData, envPath)
		if err != nil {
			return nil, err
		}
	}

	s, err := FromConfig(cfg, env)
	if err != nil {
		return nil, err
	}
	s.ConfigDir = dir
	return s, nil
}

// FromCompose builds a service from its definition in a compose override
// descriptor.
func FromCompose(name string, def *descriptor.ComposeService) (*Service, error) {
	s := Service{
		Name:    name,
		Build:   def.Build,
		Image:   def.Image,
		Command: def.Command,
		Ports:   def.Ports,
		EnvFile: def.EnvFile,
		Volumes: def.Volumes,
	}
	if len(def.Environment) > 0 {
		s.Environment = make(map[string]string, len(def.Environment))
		for k, v := range def.Environment {
			s.Environment[k] = v
		}
	}
	if def.Deploy != nil && def.Deploy.Resources != nil {
		if def.Deploy.Resources.Limits != nil {
			s.MemoryLimit = def.Deploy.Resources.Limits.Memory
		}
		if def.Deploy.Resources.Reservations != nil {
			s.MemoryReservation = def.Deploy.Resources.Reservations.Memory
		}
	}
	return New(s)
}

// Validate enforces the service invariants: exactly one of build and image,
// and well-formed memory strings.
func (s *Service) Validate() error {
	if s.Name == "" {
		return &dreamerrors.ValidationError{Name: "service", Field: "name", Reason: "required"}
	}
	if s.Build == nil && s.Image == "" {
		return &dreamerrors.ValidationError{Name: s.Name, Field: "build", Reason: "one of build and image is required"}
	}
	if s.Build != nil && s.Image != "" {
		return &dreamerrors.ValidationError{Name: s.Name, Field: "build", Reason: "build and image are mutually exclusive", Value: s.Image}
	}
	if s.MemoryLimit != "" {
		if err := descriptor.CheckMemory(s.MemoryLimit); err != nil {
			return &dreamerrors.ValidationError{Name: s.Name, Field: "memory_limit", Reason: err.Error(), Value: s.MemoryLimit}
		}
	}
	if s.MemoryReservation != "" {
		if err := descriptor.CheckMemory(s.MemoryReservation); err != nil {
			return &dreamerrors.ValidationError{Name: s.Name, Field: "memory_reservation", Reason: err.Error(), Value: s.MemoryReservation}
		}
	}
	return nil
}

// SetEnvironment sets one environment entry, allocating the map on first
// use.
func (s *Service) SetEnvironment(key, value string) {
	if s.Environment == nil {
		s.Environment = make(map[string]string, 1)
	}
	s.Environment[key] = value
}

// Env returns the value of one environment entry, "" when absent.
func (s *Service) Env(key string) string {
	return s.Environment[key]
}

// GenerateCompose renders the service for one compose variant:
//
//   - override carries the full runtime definition (env_file, build or
//     image, command, environment, deploy resources)
//   - dev carries the local development mounts and published ports
//   - proxy replaces the service with an nginx pass-through to the remote
//     deployment
//   - local mirrors dev
func (s *Service) GenerateCompose(kind descriptor.Kind) (*descriptor.ComposeService, error) {
	switch kind {
	case descriptor.KindComposeOverride:
		return s.generateOverride(), nil
	case descriptor.KindComposeDev, descriptor.KindComposeLocal:
		return s.generateDev(), nil
	case descriptor.KindComposeProxy:
		return s.generateProxy()
	default:
		return nil, errors.Newf("cannot generate a %s entry for service %q", kind, s.Name)
	}
}

func (s *Service) generateOverride() *descriptor.ComposeService {
	out := &descriptor.ComposeService{
		EnvFile: append([]string(nil), s.EnvFile...),
		Image:   s.Image,
		Command: s.Command,
	}
	if s.Build != nil {
		out.Build = cloneBuild(s.Build)
	}
	if len(s.Environment) > 0 {
		out.Environment = make(descriptor.EnvMap, len(s.Environment))
		for k, v := range s.Environment {
			out.Environment[k] = v
		}
	}
	if s.MemoryLimit != "" || s.MemoryReservation != "" {
		res := &descriptor.ResourcesSpec{}
		if s.MemoryLimit != "" {
			res.Limits = &descriptor.MemoryAmount{Memory: s.MemoryLimit}
		}
		if s.MemoryReservation != "" {
			res.Reservations = &descriptor.MemoryAmount{Memory: s.MemoryReservation}
		}
		out.Deploy = &descriptor.DeploySpec{Resources: res}
	}
	return out
}

func (s *Service) generateDev() *descriptor.ComposeService {
	return &descriptor.ComposeService{
		Volumes: append([]string(nil), s.Volumes...),
		Ports:   append([]string(nil), s.Ports...),
	}
}

func (s *Service) generateProxy() (*descriptor.ComposeService, error) {
	port, err := s.Port()
	if err != nil {
		return nil, errors.Wrapf(err, "service %q has no discoverable port for proxying", s.Name)
	}
	return &descriptor.ComposeService{
		Build:   &descriptor.BuildSpec{Context: proxyContext, Dockerfile: proxyDockerfile},
		Command: proxyCommand,
		Environment: descriptor.EnvMap{
			proxyUpstreamEnv: DefaultProxyUpstream + ":" + port,
			proxyPortEnv:     port,
		},
	}, nil
}

// Port discovers the port the service listens on, checking the command line
// (-p/--port flags and 0.0.0.0:<port> binds), the SERVICE_PORT build arg and
// the PORT environment entry. Sources that disagree are an error.
func (s *Service) Port() (string, error) {
	var found []string

	if p := commandPort(s.Command); p != "" {
		found = append(found, p)
	}
	if s.Build != nil {
		if raw, ok := s.Build.Args["SERVICE_PORT"]; ok {
			if p := argString(raw); p != "" {
				found = append(found, p)
			}
		}
	}
	if p := s.Env(proxyPortEnv); p != "" {
		found = append(found, p)
	}

	if len(found) == 0 {
		return "", errors.Newf("no port declared in command, build args or environment")
	}
	for _, p := range found[1:] {
		if p != found[0] {
			return "", errors.Newf("mismatching ports declared: %s and %s", found[0], p)
		}
	}
	return found[0], nil
}

// commandPort extracts a port from a service command line.
func commandPort(command string) string {
	fields := strings.Fields(command)
	for i, f := range fields {
		if strings.HasPrefix(f, "0.0.0.0:") {
			return strings.TrimPrefix(f, "0.0.0.0:")
		}
		if (f == "-p" || f == "--port") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

// argString renders a build arg value, which YAML may have decoded as a
// string or a number.
func argString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// Config renders the service as a service.yml record. The environment lives
// in its own environment.yml and is not included.
func (s *Service) Config() *descriptor.ServiceConfig {
	return &descriptor.ServiceConfig{
		Name:              s.Name,
		Build:             cloneBuild(s.Build),
		Image:             s.Image,
		Command:           s.Command,
		Ports:             append([]string(nil), s.Ports...),
		MemoryLimit:       s.MemoryLimit,
		MemoryReservation: s.MemoryReservation,
		EnvFile:           append([]string(nil), s.EnvFile...),
		Volumes:           append([]string(nil), s.Volumes...),
	}
}

// Clone returns a deep, independently mutable copy.
func (s *Service) Clone() *Service {
	out := *s
	out.Build = cloneBuild(s.Build)
	out.Ports = append([]string(nil), s.Ports...)
	out.EnvFile = append([]string(nil), s.EnvFile...)
	out.Volumes = append([]string(nil), s.Volumes...)
	if s.Environment != nil {
		out.Environment = make(map[string]string, len(s.Environment))
		for k, v := range s.Environment {
			out.Environment[k] = v
		}
	}
	return &out
}

func cloneBuild(b *descriptor.BuildSpec) *descriptor.BuildSpec {
	if b == nil {
		return nil
	}
	out := *b
	if b.Args != nil {
		out.Args = make(map[string]any, len(b.Args))
		for k, v := range b.Args {
			out.Args[k] = v
		}
	}
	return &out
}
