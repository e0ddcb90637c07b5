package fields

import (
	"fmt"
	"strings"
)

// Kind identifies one extractable document attribute.
type Kind string

const (
	KindFullName Kind = "full_name"
	KindUID      Kind = "uid"
	KindAge      Kind = "age"
	KindGender   Kind = "gender"
	KindAddress  Kind = "address"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
)

var allKinds = []Kind{
	KindFullName,
	KindUID,
	KindAge,
	KindGender,
	KindAddress,
	KindEmail,
	KindPhone,
}

var kindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(allKinds))
	for _, kind := range allKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// Kinds returns the known field kinds in canonical document order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// IsKnown reports whether kind belongs to the fixed field-kind set.
func IsKnown(kind Kind) bool {
	_, ok := kindSet[kind]
	return ok
}

// ParseKind normalizes and validates a field kind supplied by a caller.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !IsKnown(kind) {
		return "", fmt.Errorf("unknown field kind %q", value)
	}
	return kind, nil
}

// State represents the review lifecycle of a single field.
type State string

const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
	StateEdited   State = "edited"
)

var allStates = []State{StatePending, StateAccepted, StateRejected, StateEdited}

// ValidState reports whether state is a known field state.
func ValidState(state State) bool {
	for _, s := range allStates {
		if s == state {
			return true
		}
	}
	return false
}

// Touched reports whether the field has left Pending. Every other state was
// reached through operator action or reconciliation and never reverts.
func (s State) Touched() bool {
	return s != StatePending
}

// Field is one extracted attribute awaiting or past verification.
type Field struct {
	Kind       Kind
	RawValue   string
	Confidence float64
	Value      string
	State      State
}

// New builds a Pending field from an OCR candidate. The final value starts as
// the raw OCR value until an operator or the reconciliation engine replaces it.
func New(kind Kind, rawValue string, confidence float64) Field {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Field{
		Kind:       kind,
		RawValue:   rawValue,
		Confidence: confidence,
		Value:      rawValue,
		State:      StatePending,
	}
}

// NewEmptySet returns one Pending field per known kind with empty values and
// zero confidence, used when the OCR provider is unavailable.
func NewEmptySet() []Field {
	out := make([]Field, 0, len(allKinds))
	for _, kind := range allKinds {
		out = append(out, New(kind, "", 0))
	}
	return out
}
