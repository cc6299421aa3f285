// Package config loads, normalizes, and validates theoraprobe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the THEORAPROBE_LOG_LEVEL environment override.
// Always obtain settings through this package so downstream code receives
// sanitized paths and canonical log formats.
package config
