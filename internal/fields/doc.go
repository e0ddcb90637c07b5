// Package fields defines the fixed set of extractable document attributes and
// the per-field review lifecycle.
//
// A Field pairs the OCR candidate (raw value plus provider confidence) with
// the operator-facing final value and a State that only moves forward:
// Pending until someone touches it, then Accepted, Rejected, or Edited.
// Unknown kinds are rejected at parse time so downstream packages can treat
// the kind set as closed.
package fields
