package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scribewire/internal/domain"
	"scribewire/internal/ports"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements ports.NoteStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath.
func NewSQLite(dbPath string) (ports.NoteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode keeps inserts from the dictation loop from blocking reads.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL,
		patient TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'open',
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		speaker TEXT NOT NULL DEFAULT '',
		speaker_role TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		start_time REAL NOT NULL DEFAULT 0,
		end_time REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_segments_session ON segments(session_id, id);

	CREATE TABLE IF NOT EXISTS artifacts (
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		kind TEXT NOT NULL,
		body BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, kind)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateSession opens a new dictation session for the given topic.
func (s *SQLiteStore) CreateSession(ctx context.Context, topic string) (*domain.Session, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (topic, started_at) VALUES (?, ?)`,
		topic, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	return &domain.Session{
		ID:        id,
		Topic:     topic,
		StartedAt: now,
		Status:    "open",
	}, nil
}

// SetPatient records the patient name on a session.
func (s *SQLiteStore) SetPatient(ctx context.Context, sessionID int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET patient = ? WHERE id = ?`, name, sessionID)
	if err != nil {
		return fmt.Errorf("set patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %d not found", sessionID)
	}
	return nil
}

// CompleteSession marks a session as finished.
func (s *SQLiteStore) CompleteSession(ctx context.Context, sessionID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = 'complete', ended_at = ? WHERE id = ?`,
		time.Now().Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %d not found", sessionID)
	}
	return nil
}

// InsertSegment appends one finalized transcript line.
func (s *SQLiteStore) InsertSegment(ctx context.Context, seg domain.Segment) (int64, error) {
	createdAt := seg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO segments (session_id, speaker, speaker_role, text, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seg.SessionID, seg.Speaker, seg.SpeakerRole, seg.Text,
		seg.StartTime, seg.EndTime, createdAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert segment: %w", err)
	}
	return result.LastInsertId()
}

// ListSegments returns a session's transcript lines in insertion order.
func (s *SQLiteStore) ListSegments(ctx context.Context, sessionID int64) ([]domain.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, speaker, speaker_role, text, start_time, end_time, created_at
		FROM segments WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment
	for rows.Next() {
		var seg domain.Segment
		var createdAt int64
		if err := rows.Scan(
			&seg.ID, &seg.SessionID, &seg.Speaker, &seg.SpeakerRole,
			&seg.Text, &seg.StartTime, &seg.EndTime, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan segment row: %w", err)
		}
		seg.CreatedAt = time.Unix(createdAt, 0)
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// UpsertArtifact stores the latest artifact of a kind for a session.
func (s *SQLiteStore) UpsertArtifact(ctx context.Context, artifact domain.Artifact) error {
	updatedAt := artifact.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (session_id, kind, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, kind) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		artifact.SessionID, artifact.Kind, artifact.Body, updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert artifact: %w", err)
	}
	return nil
}

// GetArtifact returns the stored artifact of a kind, or nil when absent.
func (s *SQLiteStore) GetArtifact(ctx context.Context, sessionID int64, kind string) (*domain.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, kind, body, updated_at
		FROM artifacts WHERE session_id = ? AND kind = ?`, sessionID, kind)

	var artifact domain.Artifact
	var updatedAt int64
	err := row.Scan(&artifact.SessionID, &artifact.Kind, &artifact.Body, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan artifact row: %w", err)
	}
	artifact.UpdatedAt = time.Unix(updatedAt, 0)
	return &artifact, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
