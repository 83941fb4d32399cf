// Package cli contains small helpers shared by the minerva commands:
// typed command errors, shutdown signal plumbing, and output
// formatting.
package cli
