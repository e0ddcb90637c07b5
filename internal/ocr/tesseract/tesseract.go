package tesseract

import (
	"context"
	"fmt"
	"time"

	"github.com/otiai10/gosseract/v2"

	"veriscan/internal/config"
	"veriscan/internal/ocr"
)

// Provider implements ocr.Provider using the gosseract client.
type Provider struct {
	languages     []string
	dpi           int
	timeout       time.Duration
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed extraction provider from config.
func New(cfg *config.Config) *Provider {
	timeout := time.Duration(cfg.OCR.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		languages:     append([]string(nil), cfg.OCR.Languages...),
		dpi:           cfg.OCR.DPI,
		timeout:       timeout,
		clientFactory: gosseract.NewClient,
	}
}

func (p *Provider) Name() string { return "tesseract" }

type recognized struct {
	text       string
	confidence float64
}

// Extract runs Tesseract over the image and maps labeled lines onto field
// kinds. Any client failure surfaces as ocr.ErrUnavailable so the caller can
// degrade to manual entry.
func (p *Provider) Extract(ctx context.Context, image []byte) (ocr.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	type outcome struct {
		result recognized
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		client := p.clientFactory()
		defer client.Close()
		result, err := p.recognize(client, image)
		done <- outcome{result: result, err: err}
	}()

	var result recognized
	select {
	case <-ctx.Done():
		return ocr.Extraction{}, fmt.Errorf("%w: %v", ocr.ErrUnavailable, ctx.Err())
	case out := <-done:
		if out.err != nil {
			return ocr.Extraction{}, fmt.Errorf("%w: %v", ocr.ErrUnavailable, out.err)
		}
		result = out.result
	}

	return ocr.Extraction{
		Candidates: ocr.ParseLabeledText(result.text, result.confidence),
		Model:      p.Name(),
		ScanTime:   start.UTC(),
		Elapsed:    time.Since(start),
	}, nil
}

func (p *Provider) recognize(client *gosseract.Client, image []byte) (recognized, error) {
	if err := client.SetImageFromBytes(image); err != nil {
		return recognized{}, fmt.Errorf("set image: %w", err)
	}
	if len(p.languages) > 0 {
		if err := client.SetLanguage(p.languages...); err != nil {
			return recognized{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if p.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(p.dpi)); err != nil {
			return recognized{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return recognized{}, fmt.Errorf("recognize text: %w", err)
	}
	return recognized{text: text, confidence: wordConfidence(client)}, nil
}

// wordConfidence averages word-level confidences scaled to [0, 1]. A zero
// average simply means Tesseract reported no word boxes.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
