package pipeline

import (
	"fmt"
	"iter"

	"github.com/thoreinstein/dreamctl/internal/component"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/validator"
)

// Wire names of the singleton slots. They are not stage groups: each holds
// at most one component and both run outside the canonical stage order.
const (
	SlotLastChance = "last_chance_service"
	SlotTimeout    = "timeout_service"
)

// stage is one ordered group of components.
type stage struct {
	names []string
	items map[string]*component.Component
}

func newStage() *stage {
	return &stage{items: make(map[string]*component.Component)}
}

func (s *stage) add(c *component.Component) {
	s.names = append(s.names, c.Name)
	s.items[c.Name] = c
}

func (s *stage) remove(name string) {
	delete(s.items, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return
		}
	}
}

// Graph is the mutable stage graph of a distribution.
type Graph struct {
	lastChance *component.Component
	timeout    *component.Component
	groups     map[component.Group]*stage
}

// New returns an empty graph.
func New() *Graph {
	groups := make(map[component.Group]*stage, len(component.CanonicalOrder))
	for _, g := range component.CanonicalOrder {
		groups[g] = newStage()
	}
	return &Graph{groups: groups}
}

// Add inserts a component into its stage group. The name must be free within
// the group and every declared dependency must reference a strictly earlier
// stage; single-component dependencies must already be present.
func (g *Graph) Add(c *component.Component) error {
	st, ok := g.groups[c.Group]
	if !ok {
		return &dreamerrors.ValidationError{Name: c.Name, Field: "group", Reason: "unknown stage group", Value: string(c.Group)}
	}
	if _, exists := st.items[c.Name]; exists {
		return &dreamerrors.DuplicateNameError{Group: string(c.Group), Name: c.Name}
	}

	for _, refs := range [][]component.DependencyRef{c.Dependencies, c.RequiredDependencies} {
		for _, ref := range refs {
			if err := g.checkDependency(c, ref); err != nil {
				return err
			}
		}
	}

	st.add(c)
	return nil
}

// checkDependency verifies one declared dependency of a component about to
// be added to the graph.
func (g *Graph) checkDependency(c *component.Component, ref component.DependencyRef) error {
	if !ref.Stage.Precedes(c.Group) {
		reason := "references a stage at or after its own"
		if ref.Stage.Position() < 0 {
			reason = "references an unknown stage"
		}
		return &dreamerrors.DependencyOrderError{
			Group:      string(c.Group),
			Name:       c.Name,
			Dependency: ref.String(),
			Reason:     reason,
		}
	}
	if ref.WholeStage() {
		return nil
	}
	if _, ok := g.groups[ref.Stage].items[ref.Name]; !ok {
		return &dreamerrors.DependencyOrderError{
			Group:      string(c.Group),
			Name:       c.Name,
			Dependency: ref.String(),
			Reason:     "references a component that is not in the graph",
		}
	}
	return nil
}

// RemoveOptions controls Remove behavior.
type RemoveOptions struct {
	// Force strips dangling optional dependency references from remaining
	// components instead of failing. Required references still block the
	// removal.
	Force bool
}

// Remove deletes a component from its stage group. When other components
// depend on it the removal fails with a DanglingDependencyError unless
// opts.Force; the forced path strips the dangling references and reports
// each strip as a warning issue.
func (g *Graph) Remove(group component.Group, name string, opts RemoveOptions) ([]validator.Issue, error) {
	st, ok := g.groups[group]
	if !ok {
		return nil, &dreamerrors.NotFoundError{Kind: "component", Group: string(group), Name: name}
	}
	target, exists := st.items[name]
	if !exists {
		return nil, &dreamerrors.NotFoundError{Kind: "component", Group: string(group), Name: name}
	}

	lastInGroup := len(st.names) == 1

	var dependents, required []string
	for _, otherGroup := range component.CanonicalOrder {
		other := g.groups[otherGroup]
		for _, otherName := range other.names {
			c := other.items[otherName]
			if c == target {
				continue
			}
			if dependsOn(c.Dependencies, group, name, lastInGroup) {
				dependents = append(dependents, c.ID())
			}
			if dependsOn(c.RequiredDependencies, group, name, lastInGroup) {
				required = append(required, c.ID())
			}
		}
	}

	if len(required) > 0 {
		return nil, &dreamerrors.DanglingDependencyError{Group: string(group), Name: name, Dependents: required}
	}
	if len(dependents) > 0 && !opts.Force {
		return nil, &dreamerrors.DanglingDependencyError{Group: string(group), Name: name, Dependents: dependents}
	}

	var issues []validator.Issue
	if len(dependents) > 0 {
		for _, otherGroup := range component.CanonicalOrder {
			other := g.groups[otherGroup]
			for _, otherName := range other.names {
				c := other.items[otherName]
				before := len(c.Dependencies)
				c.Dependencies = stripRefs(c.Dependencies, group, name, lastInGroup)
				if len(c.Dependencies) != before {
					issues = append(issues, validator.Issue{
						Severity: validator.SeverityWarning,
						Field:    c.ID(),
						Message:  fmt.Sprintf("stripped dependency on removed component %s.%s", group, name),
					})
				}
			}
		}
	}

	st.remove(name)
	return issues, nil
}

// dependsOn reports whether any reference in refs names the given component,
// or its whole stage when the component is the last one in it.
func dependsOn(refs []component.DependencyRef, group component.Group, name string, lastInGroup bool) bool {
	for _, ref := range refs {
		if ref.Stage != group {
			continue
		}
		if ref.WholeStage() {
			if lastInGroup {
				return true
			}
			continue
		}
		if ref.Name == name {
			return true
		}
	}
	return false
}

func stripRefs(refs []component.DependencyRef, group component.Group, name string, lastInGroup bool) []component.DependencyRef {
	out := refs[:0]
	for _, ref := range refs {
		if ref.Stage == group {
			if ref.WholeStage() && lastInGroup {
				continue
			}
			if !ref.WholeStage() && ref.Name == name {
				continue
			}
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Get returns a component by stage group and name.
func (g *Graph) Get(group component.Group, name string) (*component.Component, error) {
	st, ok := g.groups[group]
	if !ok {
		return nil, &dreamerrors.NotFoundError{Kind: "component", Group: string(group), Name: name}
	}
	c, exists := st.items[name]
	if !exists {
		return nil, &dreamerrors.NotFoundError{Kind: "component", Group: string(group), Name: name}
	}
	return c, nil
}

// Group returns the components of one stage group in insertion order.
func (g *Graph) Group(group component.Group) []*component.Component {
	st, ok := g.groups[group]
	if !ok {
		return nil
	}
	out := make([]*component.Component, 0, len(st.names))
	for _, name := range st.names {
		out = append(out, st.items[name])
	}
	return out
}

// Len counts all components, singleton slots included.
func (g *Graph) Len() int {
	n := 0
	if g.lastChance != nil {
		n++
	}
	if g.timeout != nil {
		n++
	}
	for _, st := range g.groups {
		n += len(st.names)
	}
	return n
}

// SetLastChance sets the last-chance singleton slot.
func (g *Graph) SetLastChance(c *component.Component) {
	g.lastChance = c
}

// SetTimeout sets the timeout singleton slot.
func (g *Graph) SetTimeout(c *component.Component) {
	g.timeout = c
}

// LastChance returns the last-chance singleton, nil when unset.
func (g *Graph) LastChance() *component.Component {
	return g.lastChance
}

// Timeout returns the timeout singleton, nil when unset.
func (g *Graph) Timeout() *component.Component {
	return g.timeout
}

// Components iterates the graph in execution order: the singleton slots
// first, then every stage group in canonical order with insertion order
// inside each group. The key is the slot or group wire name. The sequence is
// restartable and reads live graph state.
func (g *Graph) Components() iter.Seq2[string, *component.Component] {
	return func(yield func(string, *component.Component) bool) {
		if g.lastChance != nil && !yield(SlotLastChance, g.lastChance) {
			return
		}
		if g.timeout != nil && !yield(SlotTimeout, g.timeout) {
			return
		}
		for _, group := range component.CanonicalOrder {
			st := g.groups[group]
			for _, name := range st.names {
				if !yield(string(group), st.items[name]) {
					return
				}
			}
		}
	}
}

// Clone returns a deep, independently mutable copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	if g.lastChance != nil {
		out.lastChance = g.lastChance.Clone()
	}
	if g.timeout != nil {
		out.timeout = g.timeout.Clone()
	}
	for group, st := range g.groups {
		for _, name := range st.names {
			out.groups[group].add(st.items[name].Clone())
		}
	}
	return out
}
