package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

// reportJSON writes the result as JSON.
func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

// reportText writes the result as human-readable text, grouped by the
// descriptor file the issues were found in.
func (r *Reporter) reportText(result *Result) error {
	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(r.out, color.GreenString("✓ Validation passed"))
		return nil
	}

	errs := result.Errors()
	warnings := result.Warnings()

	summary := []string{}
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))

	for _, group := range groupByPath(result.Issues) {
		if group.path != "" {
			fmt.Fprintf(r.out, "%s:\n", color.CyanString(group.path))
		}
		for _, issue := range group.issues {
			r.printIssue(issue)
		}
		fmt.Fprintln(r.out)
	}

	return nil
}

type pathGroup struct {
	path   string
	issues []Issue
}

// groupByPath buckets issues by path, preserving first-seen path order.
func groupByPath(issues []Issue) []pathGroup {
	var groups []pathGroup
	index := make(map[string]int)
	for _, issue := range issues {
		i, ok := index[issue.Path]
		if !ok {
			i = len(groups)
			index[issue.Path] = i
			groups = append(groups, pathGroup{path: issue.Path})
		}
		groups[i].issues = append(groups[i].issues, issue)
	}
	return groups
}

func (r *Reporter) printIssue(i Issue) {
	var printer func(a ...any) string
	switch i.Severity {
	case SeverityError:
		printer = color.New(color.FgRed).SprintFunc()
	case SeverityWarning:
		printer = color.New(color.FgYellow).SprintFunc()
	default:
		printer = color.New(color.FgBlue).SprintFunc()
	}

	var sb strings.Builder
	sb.WriteString("  • ")

	if i.Field != "" {
		sb.WriteString(printer(i.Field))
		sb.WriteString(": ")
	}

	sb.WriteString(i.Message)

	if i.Value != nil {
		valStr := fmt.Sprintf("%v", i.Value)
		// Truncate long values
		if len(valStr) > 50 {
			valStr = valStr[:47] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", valStr))
	}

	fmt.Fprintln(r.out, sb.String())
}
