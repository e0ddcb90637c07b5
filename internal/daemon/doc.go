// Package daemon hosts the long-running verification service.
//
// The daemon owns the document store, the in-memory session manager, the
// extraction provider, and the HTTP API server. A file lock keeps a single
// instance per machine.
package daemon
