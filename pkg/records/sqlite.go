package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// recordsSchema creates the record tables. Records are stored as JSON
// payloads with the filterable columns lifted out; the hash column stays
// alongside the payload so tamper checks need no deserialization.
const recordsSchema = `
CREATE TABLE IF NOT EXISTS evaluation_records (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    pack_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    compliant BOOLEAN NOT NULL,
    score INTEGER NOT NULL,
    hash TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_eval_conversation ON evaluation_records(conversation_id);
CREATE INDEX IF NOT EXISTS idx_eval_timestamp ON evaluation_records(timestamp);

CREATE TABLE IF NOT EXISTS conversation_records (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    risk_class TEXT NOT NULL,
    hash TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conv_conversation ON conversation_records(conversation_id);
CREATE INDEX IF NOT EXISTS idx_conv_timestamp ON conversation_records(timestamp);
`

// SQLiteStore persists records in SQLite using the pure-Go driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the record database at path and
// initializes the schema with WAL mode enabled.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(recordsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize record schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// PutEvaluation appends an evaluation record.
func (s *SQLiteStore) PutEvaluation(ctx context.Context, rec *EvaluationRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize evaluation record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluation_records (id, conversation_id, pack_id, timestamp, compliant, score, hash, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConversationID, rec.PackID, rec.Timestamp.UTC(), rec.Compliant, rec.Score, rec.Hash, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store evaluation record %q: %w", rec.ID, err)
	}
	return nil
}

// PutConversation appends a conversation record.
func (s *SQLiteStore) PutConversation(ctx context.Context, rec *ConversationRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize conversation record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_records (id, conversation_id, timestamp, risk_class, hash, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConversationID, rec.Timestamp.UTC(), string(rec.RiskClass), rec.Hash, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store conversation record %q: %w", rec.ID, err)
	}
	return nil
}

// ListEvaluations returns matching evaluation records ordered by
// timestamp ascending.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, q *Query) ([]*EvaluationRecord, error) {
	query, args := buildListQuery("evaluation_records", q, q != nil && q.PackID != "")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation records: %w", err)
	}
	defer rows.Close()

	var out []*EvaluationRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation record: %w", err)
		}
		var rec EvaluationRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to deserialize evaluation record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// ListConversations returns matching conversation records ordered by
// timestamp ascending.
func (s *SQLiteStore) ListConversations(ctx context.Context, q *Query) ([]*ConversationRecord, error) {
	query, args := buildListQuery("conversation_records", q, false)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation records: %w", err)
	}
	defer rows.Close()

	var out []*ConversationRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan conversation record: %w", err)
		}
		var rec ConversationRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to deserialize conversation record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// DeleteConversation removes all records for a conversation id (GDPR
// erasure; whole records only).
func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	var deleted int64

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM evaluation_records WHERE conversation_id = ?", conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete evaluation records: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		deleted += n
	}

	res, err = s.db.ExecContext(ctx,
		"DELETE FROM conversation_records WHERE conversation_id = ?", conversationID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete conversation records: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		deleted += n
	}

	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// buildListQuery assembles the filtered payload select for a record table.
func buildListQuery(table string, q *Query, withPack bool) (string, []any) {
	query := "SELECT payload FROM " + table + " WHERE 1=1"
	var args []any

	if q != nil {
		if q.StartTime != nil {
			query += " AND timestamp >= ?"
			args = append(args, q.StartTime.UTC())
		}
		if q.EndTime != nil {
			query += " AND timestamp <= ?"
			args = append(args, q.EndTime.UTC())
		}
		if q.ConversationID != "" {
			query += " AND conversation_id = ?"
			args = append(args, q.ConversationID)
		}
		if withPack {
			query += " AND pack_id = ?"
			args = append(args, q.PackID)
		}
	}

	query += " ORDER BY timestamp ASC"
	if q != nil && q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args
}
