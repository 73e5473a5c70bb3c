package component

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DependencyRef is a declared dependency on an earlier pipeline stage:
// either one specific component of a prior group, or a whole prior group
// ("skills" meaning "any skill has run").
type DependencyRef struct {
	// Stage is the referenced stage group.
	Stage Group

	// Name is the stage-local component name; empty for a whole-stage
	// reference.
	Name string
}

// ParseDependencyRef parses the wire form of a dependency reference:
// "<group>.<name>" for a single component, or a bare group keyword for a
// whole stage.
func ParseDependencyRef(s string) (DependencyRef, error) {
	groupName, name, found := strings.Cut(s, ".")
	group, err := ParseGroup(groupName)
	if err != nil {
		return DependencyRef{}, errors.Wrapf(err, "dependency %q", s)
	}
	if found && name == "" {
		return DependencyRef{}, errors.Newf("dependency %q has an empty component name", s)
	}
	if !found {
		return DependencyRef{Stage: group}, nil
	}
	return DependencyRef{Stage: group, Name: name}, nil
}

// ParseDependencyRefs parses a list of wire references, preserving order.
func ParseDependencyRefs(refs []string) ([]DependencyRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]DependencyRef, 0, len(refs))
	for _, s := range refs {
		ref, err := ParseDependencyRef(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// WholeStage reports whether the reference names an entire stage group.
func (r DependencyRef) WholeStage() bool {
	return r.Name == ""
}

// String returns the wire form of the reference.
func (r DependencyRef) String() string {
	if r.WholeStage() {
		return string(r.Stage)
	}
	return string(r.Stage) + "." + r.Name
}

// refStrings converts references back to their wire form.
func refStrings(refs []DependencyRef) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}
