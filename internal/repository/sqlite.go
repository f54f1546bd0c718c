package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // github.com/glebarez/go-sqlite
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store backed by the cgo driver.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	return Open(DriverCGO, dsn)
}

// Open creates a SQLite store using the named driver and runs migrations.
func Open(driver, dsn string) (*SQLiteStore, error) {
	if driver != DriverCGO && driver != DriverPure {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection keeps conditional writes
	// serialized and in-memory databases visible across goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT,
			status TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER,
			end_reason TEXT,
			metadata TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			metadata TEXT,
			UNIQUE (session_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS credits (
			session_id TEXT PRIMARY KEY,
			lines TEXT NOT NULL,
			message_count INTEGER NOT NULL,
			duration_sec INTEGER NOT NULL,
			generated_at INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	metadata, err := marshalMetadata(session.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, status, started_at, metadata) VALUES (?, ?, ?, ?, ?)`,
		session.SessionID, nullString(session.UserID), session.Status, session.StartedAt.UnixMilli(), metadata)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var userID, reason, metadata sql.NullString
	var startedAt int64
	var endedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, status, started_at, ended_at, end_reason, metadata FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &userID, &session.Status, &startedAt, &endedAt, &reason, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.UserID = userID.String
	session.EndReason = reason.String
	session.StartedAt = fromMillis(startedAt)
	if endedAt.Valid {
		t := fromMillis(endedAt.Int64)
		session.EndedAt = &t
	}
	if session.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, err
	}
	return &session, nil
}

// ActivateSession moves a CREATED session to ACTIVE.
func (s *SQLiteStore) ActivateSession(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ? WHERE session_id = ? AND status = ?`,
		domain.SessionStatusActive, sessionID, domain.SessionStatusCreated)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// EndSession moves a session that is not yet ENDED to ENDED.
func (s *SQLiteStore) EndSession(ctx context.Context, sessionID string, endedAt time.Time, reason string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, ended_at = ?, end_reason = ? WHERE session_id = ? AND status != ?`,
		domain.SessionStatusEnded, endedAt.UnixMilli(), nullString(reason), sessionID, domain.SessionStatusEnded)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AppendMessage inserts message in a single statement guarded by the
// session status, so an append can never land after the session ended.
func (s *SQLiteStore) AppendMessage(ctx context.Context, message *domain.Message) (bool, error) {
	metadata, err := marshalMetadata(message.Metadata)
	if err != nil {
		return false, err
	}
	var seq, createdAt int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO messages (message_id, session_id, seq, role, content, created_at, metadata)
		 SELECT ?, s.session_id,
			(SELECT COALESCE(MAX(m.seq), 0) + 1 FROM messages m WHERE m.session_id = s.session_id),
			?, ?,
			MAX(?, (SELECT COALESCE(MAX(m.created_at), 0) FROM messages m WHERE m.session_id = s.session_id)),
			?
		 FROM sessions s WHERE s.session_id = ? AND s.status != ?
		 RETURNING seq, created_at`,
		message.MessageID, message.Role, message.Content, message.CreatedAt.UnixMilli(), metadata,
		message.SessionID, domain.SessionStatusEnded).Scan(&seq, &createdAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	message.Seq = seq
	message.CreatedAt = fromMillis(createdAt)
	return true, nil
}

// CountMessages returns the number of messages in a session.
func (s *SQLiteStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// ListMessages retrieves messages for a session ordered by seq.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, session_id, seq, role, content, created_at, metadata FROM messages WHERE session_id = ? ORDER BY seq ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var createdAt int64
		var metadata sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Seq, &msg.Role, &msg.Content, &createdAt, &metadata); err != nil {
			return nil, err
		}
		msg.CreatedAt = fromMillis(createdAt)
		if msg.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetCredits retrieves the credits record of a session.
func (s *SQLiteStore) GetCredits(ctx context.Context, sessionID string) (*domain.CreditsRecord, error) {
	var record domain.CreditsRecord
	var lines string
	var generatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, lines, message_count, duration_sec, generated_at FROM credits WHERE session_id = ?`,
		sessionID).Scan(&record.SessionID, &lines, &record.Stats.MessageCount, &record.Stats.DurationSec, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lines), &record.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode credits lines: %w", err)
	}
	record.GeneratedAt = fromMillis(generatedAt)
	return &record, nil
}

// SaveCreditsIfAbsent inserts record unless the session already has one.
func (s *SQLiteStore) SaveCreditsIfAbsent(ctx context.Context, record *domain.CreditsRecord) (*domain.CreditsRecord, bool, error) {
	lines, err := json.Marshal(record.Lines)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode credits lines: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO credits (session_id, lines, message_count, duration_sec, generated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		record.SessionID, string(lines), record.Stats.MessageCount, record.Stats.DurationSec, record.GeneratedAt.UnixMilli())
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	stored, err := s.GetCredits(ctx, record.SessionID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, errors.New("credits record missing after insert")
	}
	return stored, affected > 0, nil
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, session_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.SessionID, event.Ts, event.Type, nullStringBytes(event.Payload))
	return err
}

// GetEvents retrieves events for a session.
func (s *SQLiteStore) GetEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	query := `SELECT event_id, session_id, ts, type, payload FROM events WHERE session_id = ?`
	args := []interface{}{sessionID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.SessionID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalMetadata(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return m, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
