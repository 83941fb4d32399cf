// Package logging configures the process-wide structured logger from
// the telemetry configuration section.
package logging
