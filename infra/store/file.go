package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
	corestore "github.com/kilianp07/dockflow/core/store"
)

// FileStore keeps one JSON document per model in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(stationID int64, mode model.RebalanceMode) string {
	return filepath.Join(s.dir, corestore.Key(stationID, mode)+".json")
}

// Save writes the model atomically through a temporary file.
func (s *FileStore) Save(ctx context.Context, m *demand.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	dst := s.path(m.StationID, m.Mode)
	tmp, err := os.CreateTemp(s.dir, ".model-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Load reads the model for stationID and mode.
func (s *FileStore) Load(ctx context.Context, stationID int64, mode model.RebalanceMode) (*demand.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(stationID, mode))
	if errors.Is(err, fs.ErrNotExist) {
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

func (s *FileStore) Close() error { return nil }
