package ocr

import (
	"context"
	"fmt"
	"time"
)

// StaticProvider returns a fixed extraction for every image. It backs tests
// and demo setups where no Tesseract installation exists.
type StaticProvider struct {
	Extraction Extraction
	Err        error
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Extract(ctx context.Context, _ []byte) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if p.Err != nil {
		return Extraction{}, p.Err
	}
	out := p.Extraction
	if out.Model == "" {
		out.Model = p.Name()
	}
	if out.ScanTime.IsZero() {
		out.ScanTime = time.Now().UTC()
	}
	return out, nil
}

// Disabled returns a provider that always reports ErrUnavailable, used when
// extraction is switched off in config. Documents created against it start
// with empty fields and a degraded marker.
func Disabled() Provider {
	return disabledProvider{}
}

type disabledProvider struct{}

func (disabledProvider) Name() string { return "disabled" }

func (disabledProvider) Extract(context.Context, []byte) (Extraction, error) {
	return Extraction{}, fmt.Errorf("%w: extraction disabled in configuration", ErrUnavailable)
}
