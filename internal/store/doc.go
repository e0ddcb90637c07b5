// Package store persists terminal document sessions in SQLite.
//
// Unlike the in-memory session arena, the database is an archive: verified
// and rejected documents land here with their full field sets and audit
// trails and are never deleted. Saves are transactional whole-snapshot
// replacements, so retrying a failed save is safe.
//
// Schema changes bump schemaVersion in schema.go; opening a database with a
// different version fails rather than silently migrating.
package store
