package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit records table
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,

    -- Integrity
    hash TEXT NOT NULL,

    -- Verdict
    timestamp_iso TEXT NOT NULL,
    compliant BOOLEAN NOT NULL,
    score INTEGER NOT NULL,

    -- Pack provenance
    pack_id TEXT NOT NULL,
    pack_version TEXT NOT NULL,

    -- Violations (JSON array)
    risks TEXT NOT NULL,

    -- Timing
    processing_time_ms INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_records(timestamp_iso);
CREATE INDEX IF NOT EXISTS idx_audit_conversation ON audit_records(conversation_id);
CREATE INDEX IF NOT EXISTS idx_audit_pack ON audit_records(pack_id);
CREATE INDEX IF NOT EXISTS idx_audit_compliant ON audit_records(compliant);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
