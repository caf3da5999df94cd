// Package config loads, normalizes, and validates landscaper configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the LANDSCAPER_ARCHIVE_PASSWORD
// environment fallback. Command-line flags are applied on top of the loaded
// Config by the CLI, so one Config value describes exactly one run.
package config
