// Package report appends fit batch outcomes to a rotating JSONL file.
package report

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/dockflow/core/batch"
	"github.com/kilianp07/dockflow/core/model"
)

// Line is one station outcome as written to the report file.
type Line struct {
	RunID      string              `json:"run_id"`
	Mode       model.RebalanceMode `json:"mode"`
	StationID  int64               `json:"station_id"`
	Key        string              `json:"key,omitempty"`
	Records    int                 `json:"records"`
	Stage      string              `json:"stage,omitempty"`
	Error      string              `json:"error,omitempty"`
	DurationMS float64             `json:"duration_ms"`
	Time       time.Time           `json:"time"`
}

// Writer stores report lines in a JSONL file with automatic rotation.
type Writer struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewWriter creates a writer with rotation options in megabytes and days.
func NewWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) (*Writer, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Writer{logger: lj, path: path}, nil
}

// Write appends one line per station of rep.
func (w *Writer) Write(rep batch.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	enc := json.NewEncoder(w.logger)
	for _, r := range rep.Results {
		line := Line{
			RunID:      rep.RunID,
			Mode:       rep.Mode,
			StationID:  r.StationID,
			Key:        r.Key,
			Records:    r.Records,
			Stage:      r.Stage,
			Error:      r.Error,
			DurationMS: float64(r.Duration.Microseconds()) / 1000,
			Time:       rep.Finished,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// Query reads every report file, rotated ones included, and returns the
// lines of runID ordered by station. An empty runID matches every run.
func (w *Writer) Query(runID string) ([]Line, error) {
	files, err := filepath.Glob(w.path + "*")
	if err != nil {
		return nil, err
	}
	more, err := filepath.Glob(rotatedPattern(w.path))
	if err != nil {
		return nil, err
	}
	files = append(files, more...)
	seen := map[string]bool{}
	var res []Line
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var l Line
			if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
				continue
			}
			if runID != "" && l.RunID != runID {
				continue
			}
			res = append(res, l)
		}
		_ = file.Close()
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].RunID != res[j].RunID {
			return res[i].Time.Before(res[j].Time)
		}
		return res[i].StationID < res[j].StationID
	})
	return res, nil
}

// Close closes the underlying writer.
func (w *Writer) Close() error {
	return w.logger.Close()
}

// rotatedPattern matches lumberjack backups, which insert a timestamp
// between the base name and the extension.
func rotatedPattern(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + "-*" + ext
}
