package descriptor

// ComponentCard is the wire form of a component.yml card describing a single
// pipeline component.
type ComponentCard struct {
	Name               string     `yaml:"name"`
	Group              string     `yaml:"group"`
	ContainerName      string     `yaml:"container_name,omitempty"`
	Source             string     `yaml:"source,omitempty"`
	Connector          *Connector `yaml:"connector"`
	DialogFormatter    string     `yaml:"dialog_formatter,omitempty"`
	ResponseFormatter  string     `yaml:"response_formatter,omitempty"`
	PreviousServices   []string   `yaml:"previous_services,omitempty"`
	StateManagerMethod string     `yaml:"state_manager_method,omitempty"`
	Tags               []string   `yaml:"tags,omitempty"`
	Endpoint           string     `yaml:"endpoint,omitempty"`
}

// ServiceConfig is the wire form of a service.yml config under a service's
// config directory.
type ServiceConfig struct {
	Name              string     `yaml:"name"`
	Build             *BuildSpec `yaml:"build,omitempty"`
	Image             string     `yaml:"image,omitempty"`
	Command           string     `yaml:"command,omitempty"`
	Ports             []string   `yaml:"ports,omitempty"`
	MemoryLimit       string     `yaml:"memory_limit,omitempty"`
	MemoryReservation string     `yaml:"memory_reservation,omitempty"`
	Environment       EnvMap     `yaml:"environment,omitempty"`
	EnvFile           []string   `yaml:"env_file,omitempty"`
	Volumes           []string   `yaml:"volumes,omitempty"`
}
