// Package render turns descriptor records back into their canonical file
// text. The output is byte-deterministic for identical input: pipeline JSON
// uses four-space indentation with group maps in insertion order, compose
// YAML uses two-space indentation with service keys sorted. Both end with a
// trailing newline so generated files diff cleanly.
package render
