package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cutline/internal/timeline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Record is one dispatched command as stored in the journal.
type Record struct {
	ID           int64                `json:"id"`
	SessionID    string               `json:"session_id"`
	Command      timeline.CommandType `json:"command"`
	Payload      []byte               `json:"payload"`
	Applied      bool                 `json:"applied"`
	Error        string               `json:"error,omitempty"`
	HistoryIndex int                  `json:"history_index"`
	Fingerprint  string               `json:"fingerprint,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Journal is an append-only SQLite log of dispatched commands.
type Journal struct {
	conn   *sql.DB
	logger *log.Logger
}

// Open opens or creates the journal database at path and applies any pending
// migrations.
func Open(path string, logger *log.Logger) (*Journal, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	j := &Journal{conn: conn, logger: logger}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run journal migrations: %w", err)
	}
	return j, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if j.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := j.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := j.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		j.logger.Printf("journal: applied migration %s", name)
	}
	return nil
}

func (j *Journal) isMigrationApplied(name string) bool {
	var exists int
	err := j.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists)
	if err != nil {
		return false
	}
	var applied int
	err = j.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

// NewRecord builds the journal record for a dispatch of cmd that produced
// doc and err.
func NewRecord(sessionID string, cmd timeline.Command, doc timeline.Document, fingerprint string, err error) (Record, error) {
	payload, encErr := timeline.EncodeCommand(cmd)
	if encErr != nil {
		return Record{}, fmt.Errorf("encode journal payload: %w", encErr)
	}
	rec := Record{
		SessionID:    sessionID,
		Command:      cmd.Type(),
		Payload:      payload,
		Applied:      err == nil,
		HistoryIndex: doc.History.CurrentIndex,
		Fingerprint:  fingerprint,
		CreatedAt:    time.Now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec, nil
}

// Append stores rec and returns its id.
func (j *Journal) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := j.conn.ExecContext(ctx, `
		INSERT INTO entries (session_id, command, payload, applied, error, history_index, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SessionID, string(rec.Command), string(rec.Payload), boolToInt(rec.Applied),
		nullString(rec.Error), rec.HistoryIndex, rec.Fingerprint, rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("append journal entry: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (j *Journal) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, session_id, command, payload, applied, error, history_index, fingerprint, created_at
		FROM entries ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return j.query(ctx, query, args...)
}

// Count returns the number of stored records.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return n, nil
}

// Clear removes every record.
func (j *Journal) Clear(ctx context.Context) error {
	if _, err := j.conn.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	return nil
}

// Replay dispatches every applied record, oldest first, onto doc. It stops
// at the first command the engine rejects and returns the document reached
// so far together with the number of commands replayed.
func (j *Journal) Replay(ctx context.Context, e *timeline.Engine, doc timeline.Document) (timeline.Document, int, error) {
	records, err := j.query(ctx, `
		SELECT id, session_id, command, payload, applied, error, history_index, fingerprint, created_at
		FROM entries WHERE applied = 1 ORDER BY id ASC`)
	if err != nil {
		return doc, 0, err
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return doc, i, err
		}
		cmd, err := timeline.DecodeCommand(rec.Payload)
		if err != nil {
			return doc, i, fmt.Errorf("journal entry %d: %w", rec.ID, err)
		}
		next, err := e.Dispatch(doc, cmd)
		if err != nil {
			return doc, i, fmt.Errorf("replay entry %d (%s): %w", rec.ID, rec.Command, err)
		}
		doc = next
	}
	return doc, len(records), nil
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := j.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec       Record
		command   string
		payload   string
		applied   int
		errMsg    sql.NullString
		createdAt string
	)
	if err := rows.Scan(&rec.ID, &rec.SessionID, &command, &payload, &applied, &errMsg,
		&rec.HistoryIndex, &rec.Fingerprint, &createdAt); err != nil {
		return Record{}, fmt.Errorf("scan journal entry: %w", err)
	}
	rec.Command = timeline.CommandType(command)
	rec.Payload = []byte(payload)
	rec.Applied = applied == 1
	rec.Error = errMsg.String
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("journal entry %d: bad timestamp %q: %w", rec.ID, createdAt, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// ErrEmpty is returned by Last when the journal has no records.
var ErrEmpty = errors.New("journal is empty")

// Last returns the most recent record.
func (j *Journal) Last(ctx context.Context) (Record, error) {
	records, err := j.List(ctx, 1)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrEmpty
	}
	return records[0], nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
