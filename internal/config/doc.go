// Package config loads, normalizes, and validates daemon configuration.
//
// Configuration comes from a TOML file (default ~/.config/signalstate/config.toml)
// layered over built-in defaults. Load never mutates the file; normalization
// expands paths and fills gaps, validation rejects unusable values before the
// daemon starts.
package config
