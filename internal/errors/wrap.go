package errors

import "github.com/cockroachdb/errors"

// Re-exports so callers need a single errors import. Wrapping goes through
// cockroachdb/errors to keep stack traces and hints on the chain.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)
