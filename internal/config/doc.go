// Package config resolves bdblink run settings.
//
// Settings come from three layers, later layers winning:
//   - built-in defaults (Default)
//   - an optional CUE file, unified with the embedded #Config schema
//   - command-line flags, applied by the CLI
//
// The embedded schema is closed, so misspelled keys in a config file are
// rejected instead of silently ignored.
package config
