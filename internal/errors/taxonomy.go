package errors

import (
	"fmt"
	"strings"
)

// SchemaError indicates a descriptor file does not match its declared schema:
// a required field is missing, a field has the wrong shape, or an unknown key
// was encountered in strict mode.
type SchemaError struct {
	// Path is the descriptor file path, if known.
	Path string

	// Field is the offending field, if it could be determined.
	Field string

	// Expected describes the expected shape.
	Expected string

	// Value is the offending value, if any.
	Value any

	// Err is the underlying decoding error, if any.
	Err error
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema error")
	if e.Path != "" {
		fmt.Fprintf(&sb, " in %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, ": field %q", e.Field)
	}
	if e.Expected != "" {
		fmt.Fprintf(&sb, ": expected %s", e.Expected)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a record is internally inconsistent, e.g. a
// service declaring both a build spec and a prebuilt image.
type ValidationError struct {
	// Name identifies the record (component or service name).
	Name string

	// Field is the inconsistent field, if a single one can be named.
	Field string

	// Reason describes the inconsistency.
	Reason string

	// Value is the offending value, if any.
	Value any
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid %s", e.Name)
	if e.Field != "" {
		fmt.Fprintf(&sb, ": field %q", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&sb, ": %s", e.Reason)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", e.Value)
	}
	return sb.String()
}

// DuplicateNameError indicates a component name already exists in the target
// stage group.
type DuplicateNameError struct {
	Group string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("component %q already exists in %s", e.Name, e.Group)
}

// DependencyOrderError indicates a component declares a dependency that
// violates canonical stage order or references an unknown stage or component.
type DependencyOrderError struct {
	// Group and Name identify the component being added.
	Group string
	Name  string

	// Dependency is the offending dependency reference as written.
	Dependency string

	// Reason explains the violation.
	Reason string
}

func (e *DependencyOrderError) Error() string {
	return fmt.Sprintf("component %q in %s: dependency %q: %s", e.Name, e.Group, e.Dependency, e.Reason)
}

// DanglingDependencyError indicates removing a component would leave other
// components with unresolvable dependency references.
type DanglingDependencyError struct {
	// Group and Name identify the component being removed.
	Group string
	Name  string

	// Dependents lists the "group.name" identifiers of components that still
	// depend on the removed one.
	Dependents []string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("cannot remove %s.%s: still required by %s",
		e.Group, e.Name, strings.Join(e.Dependents, ", "))
}

// NotFoundError indicates the requested component or service does not exist.
type NotFoundError struct {
	// Kind names what was looked up, e.g. "component" or "service".
	Kind string

	// Group is the stage group searched, if any.
	Group string

	// Name is the requested name.
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("%s %q not found in %s", e.Kind, e.Name, e.Group)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// DistributionNotFoundError indicates a distribution directory or its
// mandatory pipeline descriptor is missing.
type DistributionNotFoundError struct {
	Name string
	Path string
}

func (e *DistributionNotFoundError) Error() string {
	return fmt.Sprintf("distribution %q not found at %s", e.Name, e.Path)
}

// AlreadyExistsError indicates a save target already exists and overwrite was
// not requested.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists (use overwrite to replace it)", e.Path)
}
