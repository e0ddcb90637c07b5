// Package session owns the lifecycle of one document from extraction through
// final verification.
//
// A Session moves Created -> AwaitingVerification -> {Verified, Rejected}.
// Terminal states are immutable and every transition appends an audit entry;
// the trail is append-only and never pruned, including for rejected
// documents.
//
// The Manager keeps active sessions in an arena keyed by document ID, each
// guarded by its own lock, so concurrent operators on the same document are
// serialized while unrelated documents never contend. Terminal sessions are
// handed to the injected Persister before success is reported.
package session
