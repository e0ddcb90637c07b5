package reconcile

import (
	"errors"
	"fmt"

	"veriscan/internal/fields"
	"veriscan/internal/fuzzy"
)

var (
	// ErrUnknownField marks submissions referencing a field kind outside the
	// known set. The submission is rejected wholesale, never partially applied.
	ErrUnknownField = errors.New("unknown field kind")
	// ErrMissingRequired marks a policy-required field with no resolvable
	// value in either the OCR output or the submission.
	ErrMissingRequired = errors.New("missing required field")
)

// Verdict classifies how a submitted value compares to the OCR raw value.
type Verdict string

const (
	// VerdictMatch: similarity at or above the match threshold.
	VerdictMatch Verdict = "match"
	// VerdictMinorDivergence: between the divergence and match thresholds.
	// Flagged for review visibility but not blocking.
	VerdictMinorDivergence Verdict = "minor_divergence"
	// VerdictOverride: below the divergence threshold, or the OCR produced no
	// value at all. The operator is assumed to hold ground truth, so the value
	// is accepted, but the override is recorded distinctly in the audit trail.
	VerdictOverride Verdict = "override"
)

// Thresholds are the policy knobs for verdict classification. Raising Match
// flags more edits as divergences; lowering Divergence widens what is
// accepted silently as close enough.
type Thresholds struct {
	Match      float64
	Divergence float64
}

// DefaultThresholds mirror the service configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Match: 0.85, Divergence: 0.5}
}

// Submission holds the operator's final values keyed by field kind. Omitted
// kinds imply no change from the OCR value.
type Submission map[fields.Kind]string

// FieldResult is the per-field outcome of a reconciliation pass.
type FieldResult struct {
	Kind          fields.Kind
	Verdict       Verdict
	Similarity    float64
	OriginalValue string
	FinalValue    string
	Override      bool
	State         fields.State
}

// Outcome is the full result of reconciling one submission.
type Outcome struct {
	Results  []FieldResult
	Accepted bool
}

// Result returns the outcome for a single kind, or nil when absent.
func (o Outcome) Result(kind fields.Kind) *FieldResult {
	for i := range o.Results {
		if o.Results[i].Kind == kind {
			return &o.Results[i]
		}
	}
	return nil
}

// Reconcile compares an operator submission against the stored fields and
// produces a verdict per known field kind. It is a pure function: the input
// fields are never mutated, and identical inputs always yield identical
// outcomes.
//
// Accepted is true only when every field reaches the accepted state. A field
// the operator explicitly rejected beforehand stays rejected unless the
// submission carries a value for it.
func Reconcile(fieldSet []fields.Field, submission Submission, thresholds Thresholds, required []fields.Kind) (Outcome, error) {
	for kind := range submission {
		if !fields.IsKnown(kind) {
			return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownField, kind)
		}
	}

	outcome := Outcome{
		Results:  make([]FieldResult, 0, len(fieldSet)),
		Accepted: true,
	}

	for _, field := range fieldSet {
		submitted, present := submission[field.Kind]
		if !present {
			// No change implied: reconcile the OCR value against itself.
			submitted = field.RawValue
		}

		similarity := fuzzy.Similarity(field.RawValue, submitted)
		verdict := classify(similarity, thresholds)
		if fuzzy.Normalize(field.RawValue) == "" && fuzzy.Normalize(submitted) != "" {
			// New data introduced against an undetected field is always an
			// explicit override regardless of thresholds.
			verdict = VerdictOverride
		}

		result := FieldResult{
			Kind:          field.Kind,
			Verdict:       verdict,
			Similarity:    similarity,
			OriginalValue: field.RawValue,
			FinalValue:    submitted,
			Override:      verdict == VerdictOverride,
			State:         fields.StateAccepted,
		}

		if field.State == fields.StateRejected && !present {
			// A prior explicit rejection needs a fresh submitted value before
			// the field can reach accepted.
			result.State = fields.StateRejected
			result.FinalValue = field.Value
			outcome.Accepted = false
		}

		outcome.Results = append(outcome.Results, result)
	}

	for _, kind := range required {
		result := outcome.Result(kind)
		if result == nil || fuzzy.Normalize(result.FinalValue) == "" {
			return Outcome{}, fmt.Errorf("%w: %q", ErrMissingRequired, kind)
		}
	}

	return outcome, nil
}

func classify(similarity float64, thresholds Thresholds) Verdict {
	switch {
	case similarity >= thresholds.Match:
		return VerdictMatch
	case similarity >= thresholds.Divergence:
		return VerdictMinorDivergence
	default:
		return VerdictOverride
	}
}
