// Package config loads, normalizes, and validates the TOML configuration for
// the daemon and CLI.
//
// Load resolves an explicit path, then ~/.config/veriscan/config.toml, then a
// project-local veriscan.toml, falling back to defaults when no file exists.
// Path fields are tilde-expanded and made absolute before validation, so the
// rest of the codebase never handles raw user input.
package config
