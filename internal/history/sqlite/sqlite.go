package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/sidekick/internal/history"
)

// Sink writes launch records to a SQLite database. This is the desktop
// default: one file next to the launcher's other state.
type Sink struct {
	db *sql.DB
}

// New creates a new SQLite history sink.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:" (in-memory database)
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	sink := &Sink{db: db}
	if err := sink.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS launch_history(
		name TEXT NOT NULL,
		pid INTEGER NOT NULL,
		spawned_at TIMESTAMP,
		ready_at TIMESTAMP,
		attempts INTEGER NOT NULL,
		ready INTEGER NOT NULL,
		shutdown_outcome TEXT,
		exit_reason TEXT NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, r history.Record) error {
	var readyAt any
	if !r.ReadyAt.IsZero() {
		readyAt = r.ReadyAt.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launch_history(name, pid, spawned_at, ready_at, attempts, ready, shutdown_outcome, exit_reason, finished_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.Name, r.PID, r.SpawnedAt.UTC(), readyAt, r.Attempts, r.Ready, r.ShutdownOutcome, r.ExitReason, r.FinishedAt.UTC())
	return err
}

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
