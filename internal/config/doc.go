// Package config provides configuration management for the dreamctl CLI.
//
// This package handles loading and validating the tool's own configuration
// file. It is distinct from the distribution descriptors, which are parsed
// by the descriptor package.
//
// # Configuration File
//
// The default configuration file location is ~/.config/dreamctl/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	version: 1
//	dream_root: /home/user/dream   # optional, discovered when unset
//	parse_mode: strict             # strict | lenient
//	log_format: text               # text | json
//
// Every key can also be set through the environment with the DREAMCTL
// prefix, e.g. DREAMCTL_PARSE_MODE=lenient.
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// An empty path searches the default locations and falls back to defaults
// when no file exists; an explicit path must exist.
package config
