// Package api defines the transport contract between the daemon and its
// clients.
//
// DTO types carry camelCase JSON tags and are converted from core types via
// the From* helpers. DocumentService is the single entry point handlers use
// to reach the session manager.
package api
