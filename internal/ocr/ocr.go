package ocr

import (
	"context"
	"errors"
	"time"

	"veriscan/internal/fields"
)

// ErrUnavailable marks any provider failure. Callers degrade to an all-empty
// field set rather than failing document creation.
var ErrUnavailable = errors.New("ocr provider unavailable")

// Candidate is one extracted value with the provider's self-reported
// certainty.
type Candidate struct {
	Value      string
	Confidence float64
}

// Extraction is the provider output for one document image.
type Extraction struct {
	Candidates map[fields.Kind]Candidate
	Model      string
	ScanTime   time.Time
	Elapsed    time.Duration
}

// Fields converts an extraction into the canonical field set, one Pending
// field per known kind. Kinds the provider did not detect come back empty
// with zero confidence.
func (e Extraction) Fields() []fields.Field {
	out := make([]fields.Field, 0, len(fields.Kinds()))
	for _, kind := range fields.Kinds() {
		candidate := e.Candidates[kind]
		out = append(out, fields.New(kind, candidate.Value, candidate.Confidence))
	}
	return out
}

// Provider extracts field candidates from raw image bytes. Implementations
// are opaque to the core: no retries, no validation of provider internals.
type Provider interface {
	Name() string
	Extract(ctx context.Context, image []byte) (Extraction, error)
}
