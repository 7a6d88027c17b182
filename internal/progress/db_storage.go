package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/refresher/schemas"
)

// DBStorage keeps the document as one row of progress_snapshots.
// The statements work with both the mysql and sqlite3 drivers.
type DBStorage struct {
	db  *sqlx.DB
	key string
	now func() time.Time
}

func NewDBStorage(db *sqlx.DB, key string) *DBStorage {
	return &DBStorage{
		db:  db,
		key: key,
		now: time.Now,
	}
}

// Migrate creates the progress_snapshots table when it does not exist.
func (s *DBStorage) Migrate(ctx context.Context) error {
	statements, err := schemas.Statements()
	if err != nil {
		return fmt.Errorf("schemas.Statements() > %w", err)
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("db.ExecContext(migration) > %w", err)
		}
	}
	return nil
}

func (s *DBStorage) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, "SELECT payload FROM progress_snapshots WHERE storage_key = ?", s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(progress_snapshots) > %w", err)
	}
	return []byte(payload), nil
}

func (s *DBStorage) Save(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx,
		"REPLACE INTO progress_snapshots (storage_key, payload, updated_at) VALUES (?, ?, ?)",
		s.key, string(data), s.now().UnixMilli()); err != nil {
		return fmt.Errorf("db.ExecContext(replace progress_snapshots) > %w", err)
	}
	return nil
}
