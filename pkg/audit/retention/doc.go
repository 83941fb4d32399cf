// Package retention enforces the audit retention policy: records older
// than the configured period are archived to JSON and deleted, on a
// cron schedule.
package retention
