// Package config loads, normalizes, and validates sequencer configuration.
//
// It supplies defaults for the editor, the export renderer, the transfer
// server and logging, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the DATA_DIR and SEQUENCER_BIND environment
// overrides. The CLI, the server and the desktop editor all obtain their
// settings here.
package config
