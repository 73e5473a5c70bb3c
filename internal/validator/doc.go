// Package validator provides the diagnostics framework shared by the
// distribution, pipeline and descriptor checks.
//
// It defines shared types for representing issues (errors, warnings, info)
// and results across the different descriptor files of a distribution.
//
// # Core Concepts
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: Represents a single problem with file and field context.
//   - [Result]: Aggregates multiple issues and provides helper methods.
//
// # Basic Usage
//
//	result := &validator.Result{}
//	if svc.Image == "" && svc.Build == nil {
//		result.AddError("build", "one of build and image is required", nil)
//	}
//
//	if result.HasErrors() {
//		// handle validation failure
//	}
package validator
