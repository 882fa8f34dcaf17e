// Package config loads, normalizes, and validates clipforge's TOML
// configuration. Every binary shares one config file; worker-specific knobs
// live under [workflow].
package config
