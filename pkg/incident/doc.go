// Package incident maps specific signal types to the fixed
// serious-incident taxonomy used for regulatory incident-radar reporting.
package incident
