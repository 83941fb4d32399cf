// Package obligation maps AI-Act risk classifications and detected
// signals to the regulatory-article obligations they trigger, backed by a
// static article registry.
package obligation
