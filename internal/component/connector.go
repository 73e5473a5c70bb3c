package component

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
)

// ConnectorKind distinguishes the two connector variants.
type ConnectorKind string

const (
	// ConnectorHTTP reaches the component's backing logic over the network.
	ConnectorHTTP ConnectorKind = "http"

	// ConnectorPython calls an in-process class resolved through the
	// connector registry.
	ConnectorPython ConnectorKind = "python"
)

// AgentContainerName is the container every in-process connector runs in.
const AgentContainerName = "agent"

// Connector is the mechanism a component uses to reach its backing logic:
// a network call with URL and timeout, or an in-process class reference with
// constructor parameters.
type Connector struct {
	Kind ConnectorKind

	// Network call fields (Kind == ConnectorHTTP).
	URL     string
	Timeout float64

	// In-process fields (Kind == ConnectorPython).
	Class          string
	Params         map[string]any
	ResponseText   string
	AnnotatorNames []string
}

// Address is the host, port and endpoint of a network connector URL.
type Address struct {
	Host     string
	Port     string
	Endpoint string
}

// ParseConnectorURL splits a connector URL of the form
// http(s)://{host}:{port}/{endpoint} into its parts.
func ParseConnectorURL(url string) (Address, error) {
	withoutProtocol := url
	if i := strings.Index(url, "//"); i >= 0 {
		withoutProtocol = url[i+2:]
	}

	hostPort, endpoint, _ := strings.Cut(withoutProtocol, "/")
	host, port, found := strings.Cut(hostPort, ":")
	if !found || host == "" || port == "" {
		return Address{}, errors.Newf("%s does not fit the http(s)://{host}:{port}/{endpoint} format", url)
	}

	return Address{Host: host, Port: port, Endpoint: endpoint}, nil
}

// NewHTTPConnector builds a validated network connector.
func NewHTTPConnector(url string, timeout float64) (Connector, error) {
	c := Connector{Kind: ConnectorHTTP, URL: url, Timeout: timeout}
	if err := c.Validate(); err != nil {
		return Connector{}, err
	}
	return c, nil
}

// NewPythonConnector builds a validated in-process connector. The class
// reference must be known to the registry.
func NewPythonConnector(class string, params map[string]any) (Connector, error) {
	c := Connector{Kind: ConnectorPython, Class: class, Params: params}
	if err := c.Validate(); err != nil {
		return Connector{}, err
	}
	return c, nil
}

// ConnectorFromDescriptor converts the wire form into the domain variant.
func ConnectorFromDescriptor(wire *descriptor.Connector) (Connector, error) {
	if wire == nil {
		return Connector{}, &dreamerrors.ValidationError{Name: "connector", Reason: "missing connector definition"}
	}

	switch wire.Protocol {
	case "http":
		var timeout float64
		if wire.Timeout != nil {
			timeout = *wire.Timeout
		}
		return Connector{Kind: ConnectorHTTP, URL: wire.URL, Timeout: timeout}, nil
	case "python":
		return Connector{
			Kind:           ConnectorPython,
			Class:          wire.ClassName,
			Params:         wire.Annotations,
			ResponseText:   wire.ResponseText,
			AnnotatorNames: wire.AnnotatorNames,
		}, nil
	default:
		return Connector{}, &dreamerrors.ValidationError{
			Name:   "connector",
			Field:  "protocol",
			Reason: "must be http or python",
			Value:  wire.Protocol,
		}
	}
}

// ToDescriptor converts the connector back into its wire form.
func (c Connector) ToDescriptor() *descriptor.Connector {
	wire := &descriptor.Connector{Protocol: string(c.Kind)}
	switch c.Kind {
	case ConnectorHTTP:
		timeout := c.Timeout
		wire.Timeout = &timeout
		wire.URL = c.URL
	case ConnectorPython:
		wire.ClassName = c.Class
		wire.Annotations = c.Params
		wire.ResponseText = c.ResponseText
		wire.AnnotatorNames = c.AnnotatorNames
	}
	return wire
}

// Validate enforces the connector invariants: a network connector must carry
// a resolvable URL and a positive timeout; an in-process connector must carry
// a class reference known to the registry.
func (c Connector) Validate() error {
	switch c.Kind {
	case ConnectorHTTP:
		if _, err := ParseConnectorURL(c.URL); err != nil {
			return &dreamerrors.ValidationError{Name: "connector", Field: "url", Reason: err.Error(), Value: c.URL}
		}
		if c.Timeout <= 0 {
			return &dreamerrors.ValidationError{Name: "connector", Field: "timeout", Reason: "must be positive", Value: c.Timeout}
		}
		return nil
	case ConnectorPython:
		if c.Class == "" {
			return &dreamerrors.ValidationError{Name: "connector", Field: "class_name", Reason: "required for in-process connectors"}
		}
		if _, err := ResolveClass(c.Class); err != nil {
			return &dreamerrors.ValidationError{Name: "connector", Field: "class_name", Reason: err.Error(), Value: c.Class}
		}
		return nil
	default:
		return &dreamerrors.ValidationError{Name: "connector", Field: "protocol", Reason: "must be http or python", Value: string(c.Kind)}
	}
}

// ContainerName resolves the container a connector reaches: the URL host for
// network connectors, the agent container for in-process ones.
func (c Connector) ContainerName() string {
	if c.Kind == ConnectorHTTP {
		if addr, err := ParseConnectorURL(c.URL); err == nil {
			return addr.Host
		}
	}
	return AgentContainerName
}

// clone returns a deep copy of the connector.
func (c Connector) clone() Connector {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	if c.AnnotatorNames != nil {
		out.AnnotatorNames = append([]string(nil), c.AnnotatorNames...)
	}
	return out
}
