// Package fuzzy scores string similarity for reconciling OCR output against
// operator corrections.
//
// Similarity is a pure function over its inputs; identical calls always
// produce identical scores, which keeps reconciliation verdicts reproducible
// from the audit trail alone.
package fuzzy
