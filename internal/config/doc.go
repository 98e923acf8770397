// Package config loads and validates console configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Loading is
// split into three stages: Load (parse), applyDefaults (fill optional
// fields), Validate (reject impossible values). LoadAndValidate runs
// all three.
package config
