// Package config defines the Minerva configuration structure and
// handles loading it from YAML files with defaulting, environment
// variable overrides (MINERVA_* prefix), and validation.
package config
