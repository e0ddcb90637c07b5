// Package logging wraps log/slog with the handlers and attribute helpers the
// daemon and CLI share.
//
// Format selection follows config ("console" or "json"); when unset it is
// inferred from whether output is a terminal. Component loggers carry a
// standard component attribute so daemon logs can be filtered per subsystem.
package logging
