package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Amawers/idmsystem-sub001/internal/dbx"
)

// sessionKey is the fixed metadata key the session record lives under.
const sessionKey = "auth.session"

type SQLiteStore struct {
	db dbx.DBTX
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, sessionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}
	return value, nil
}

func (r *SQLiteStore) Save(ctx context.Context, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, sessionKey, value)
	if err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}
	return nil
}

func (r *SQLiteStore) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
