package sqlite

import (
	"context"
	"fmt"
)

// schema holds the ordered migration statements. New statements append at
// the end; applied entries are tracked in schema_migrations by index.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		mpk_number TEXT NOT NULL DEFAULT '',
		store_address TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		franchisee_id TEXT NOT NULL REFERENCES users(id),
		worker_id TEXT REFERENCES users(id),
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_status_date ON reservations(status, date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_worker ON reservations(worker_id)`,
	`CREATE TABLE IF NOT EXISTS worker_shifts (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL REFERENCES users(id),
		shift_date TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(worker_id, shift_date)
	)`,
	`CREATE TABLE IF NOT EXISTS custom_shift_hours (
		worker_shift_id TEXT PRIMARY KEY REFERENCES worker_shifts(id) ON DELETE CASCADE,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}

// Migrate applies pending schema statements. It is safe to run at every
// startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (idx INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("sqlite: create migration table: %w", err)
	}

	var applied int
	if err := cp.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("sqlite: read migration state: %w", err)
	}

	for i := applied; i < len(schema); i++ {
		stmt := schema[i]
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migration %d: %w", i, err)
		}
		if _, err := cp.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (idx, applied_at) VALUES (?, datetime('now'))`, i); err != nil {
			return fmt.Errorf("sqlite: record migration %d: %w", i, err)
		}
	}
	return nil
}
