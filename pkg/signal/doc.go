// Package signal defines the Signal type: a neutral, typed observation
// extracted from a conversation by a detector. It also hosts the shared
// severity scale used by rules, violations, and incident classifications.
package signal
