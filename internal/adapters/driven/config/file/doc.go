// Package file provides the file-based configuration adapter.
//
// ConfigStore persists raw keys to a TOML file, addressing nested tables
// with dot-notation keys. Load turns a ConfigStore into a typed Config,
// applying defaults first, then the file, then LIGHTWAY_* environment
// variables.
package file
