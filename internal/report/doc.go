// Package report renders verification outcomes for operators and tooling.
//
// Each document gets a paired text report and JSON sidecar in the
// configured report directory. Reports are regenerated on demand from the
// session snapshot; they hold no state of their own.
package report
