// Package validation checks resolved const metadata against the pointer-ness of every
// slot and reports the findings as diagnostics with suggested fixes.
package validation

import (
	"fmt"

	"nativeabi/internal/codefix"
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

// Rule identifiers are stable across versions.
type Rule string

const (
	RuleUnnecessaryConst            Rule = "unnecessary-const"
	RuleUnnecessaryPointsToConst    Rule = "unnecessary-points-to-const"
	RuleRequiredConst               Rule = "required-const"
	RuleRequiredPointsToConst       Rule = "required-points-to-const"
	RuleRequiredCompositeAnnotation Rule = "required-composite-annotation"
)

var messageFormats = map[Rule]string{
	RuleUnnecessaryConst:            "Unnecessary IsConst for type '%s'",
	RuleUnnecessaryPointsToConst:    "Unnecessary IsPtrConst for type '%s'",
	RuleRequiredConst:               "Required IsConst for type '%s'",
	RuleRequiredPointsToConst:       "Required IsPtrConst for type '%s'",
	RuleRequiredCompositeAnnotation: "Required ConstMeta for type '%s'",
}

// CategoryUsage is the category of every rule.
const CategoryUsage = "usage"

// Rules lists every rule in a fixed order.
func Rules() []Rule {
	return []Rule{
		RuleUnnecessaryConst,
		RuleUnnecessaryPointsToConst,
		RuleRequiredConst,
		RuleRequiredPointsToConst,
		RuleRequiredCompositeAnnotation,
	}
}

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Profile selects which rules apply to a function.
type Profile int

const (
	// ProfilePermissive only reports annotations that have no effect.
	ProfilePermissive Profile = iota
	// ProfileStrict additionally requires annotations on every pointer slot.
	ProfileStrict
)

func (p Profile) String() string {
	if p == ProfileStrict {
		return "strict"
	}
	return "permissive"
}

// ProfileFor returns the strict profile for natively-exported functions.
func ProfileFor(method *metadata.Method) Profile {
	if method.Exported {
		return ProfileStrict
	}
	return ProfilePermissive
}

// Diagnostic is a single finding. At points at the exact syntax a fix rewrites.
type Diagnostic struct {
	Rule     Rule                   `json:"rule"`
	Severity Severity               `json:"severity"`
	Category string                 `json:"category"`
	Message  string                 `json:"message"`
	Function string                 `json:"function"`
	At       syntax.Span            `json:"at"`
	Fixes    []codefix.SuggestedFix `json:"fixes,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.At, d.Severity, d.Message, d.Rule)
}

func newDiagnostic(rule Rule, function string, slotType metadata.Type, at syntax.Span) Diagnostic {
	return Diagnostic{
		Rule:     rule,
		Severity: SeverityWarning,
		Category: CategoryUsage,
		Message:  fmt.Sprintf(messageFormats[rule], slotType.String()),
		Function: function,
		At:       at,
	}
}
