package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
	corestore "github.com/kilianp07/dockflow/core/store"
)

// SQLiteStore persists models as JSON blobs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS demand_models (
        key TEXT PRIMARY KEY,
        station_id INTEGER NOT NULL,
        mode TEXT NOT NULL,
        fitted_at INTEGER NOT NULL,
        model BLOB NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the model row.
func (s *SQLiteStore) Save(ctx context.Context, m *demand.Model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO demand_models (key, station_id, mode, fitted_at, model)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            fitted_at = excluded.fitted_at,
            model = excluded.model`,
		corestore.Key(m.StationID, m.Mode), m.StationID, m.Mode.Tag(), time.Now().Unix(), data)
	return err
}

// Load returns the model for stationID and mode.
func (s *SQLiteStore) Load(ctx context.Context, stationID int64, mode model.RebalanceMode) (*demand.Model, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT model FROM demand_models WHERE key = ?`,
		corestore.Key(stationID, mode)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, corestore.NotFound(stationID, mode)
	}
	if err != nil {
		return nil, err
	}
	var m demand.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", corestore.Key(stationID, mode), err)
	}
	return &m, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
