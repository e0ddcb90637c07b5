// Package reconcile decides, per field, whether an operator submission
// matches the OCR output, diverges within tolerance, or constitutes an
// explicit override.
//
// Reconcile is stateless and side-effect free; it never holds references to
// the field set across calls. Session lifecycle transitions driven by its
// outcome live in the session package.
package reconcile
