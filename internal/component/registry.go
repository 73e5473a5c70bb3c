package component

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// InProcessKind identifies one of the known in-process connector
// implementations. Class-reference strings from descriptor files resolve to
// these through an explicit registry instead of reflective lookup.
type InProcessKind string

// Known in-process connector kinds.
const (
	KindPredefinedText           InProcessKind = "predefined_text"
	KindPredefinedOutput         InProcessKind = "predefined_output"
	KindRuleBasedSkillSelector   InProcessKind = "rule_based_skill_selector"
	KindConfidenceResponseSelect InProcessKind = "confidence_response_selector"
	KindBatchAnnotatorSelector   InProcessKind = "batch_annotator_selector"
)

// classRegistry maps canonical class-reference strings to their kinds.
// The set is closed: loading a descriptor with an unregistered class
// reference is a validation error.
var classRegistry = map[string]InProcessKind{
	"PredefinedTextConnector":   KindPredefinedText,
	"PredefinedOutputConnector": KindPredefinedOutput,
	"skill_selectors.rule_based_selector.connector:RuleBasedSkillSelectorConnector": KindRuleBasedSkillSelector,
	"response_selectors.confidence_based_selector.connector:ConfidenceBasedSelectorConnector": KindConfidenceResponseSelect,
	"BatchConnector": KindBatchAnnotatorSelector,
}

// ResolveClass resolves a class-reference string to its in-process connector
// kind.
func ResolveClass(name string) (InProcessKind, error) {
	kind, ok := classRegistry[name]
	if !ok {
		return "", errors.Newf("unknown in-process connector class %q", name)
	}
	return kind, nil
}

// RegisterClass adds a class reference to the registry. It exists for
// deployments carrying custom connector implementations; registering an
// already-known name replaces its kind.
func RegisterClass(name string, kind InProcessKind) {
	classRegistry[name] = kind
}

// KnownClasses returns the registered class references in sorted order.
func KnownClasses() []string {
	names := make([]string, 0, len(classRegistry))
	for name := range classRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
