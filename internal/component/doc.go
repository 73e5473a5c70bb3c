// Package component models a single named pipeline building block: its
// identity, source location, connector, formatter pair and declared
// dependencies on earlier pipeline stages.
//
// A component is independent of which pipeline stage references it; identity
// for graph purposes is the (stage group, name) pair, while equality between
// component values is structural. Components are immutable once embedded in
// a pipeline graph except through aggregate-mediated replacement.
package component
