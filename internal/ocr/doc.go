// Package ocr defines the extraction boundary for document images.
//
// A Provider turns raw image bytes into per-field candidates with a
// confidence score. The core treats providers as opaque collaborators:
// any failure is classified as ErrUnavailable and the verification flow
// continues with empty fields instead of refusing the document.
package ocr
