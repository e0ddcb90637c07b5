// Package client provides HTTP access to a running veriscan daemon.
//
// Methods map one-to-one onto the daemon API routes and return the shared
// api DTO types. Daemon-side failures surface as *APIError with the HTTP
// status preserved.
package client
