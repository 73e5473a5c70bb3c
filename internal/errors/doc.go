// Package errors provides error handling conventions for the dreamctl CLI.
//
// This package defines the structured error taxonomy for descriptor parsing
// and distribution mutation, an ExitError type for CLI exit code handling,
// and exit code constants following standard Unix conventions.
//
// # Structured Errors
//
// Parsing and mutation failures are surfaced as typed errors carrying enough
// context (file path, field name, offending value) to render a one-line
// actionable message without the caller re-deriving it. Callers match them
// with [errors.As]:
//
//	var schemaErr *dreamerrors.SchemaError
//	if errors.As(err, &schemaErr) {
//	    fmt.Println(schemaErr.Path, schemaErr.Field)
//	}
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for CLI applications. It supports error unwrapping via
// [errors.Unwrap] and [errors.As].
package errors
