package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/dockflow/infra/warehouse"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"35", "192"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 2 || ids[0] != 35 || ids[1] != 192 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, err := parseIDs([]string{"x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStationsCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "warehouse.db")
	w, err := warehouse.Open(warehouse.Config{DSN: dsn}, time.UTC, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = w.DB().Exec(`CREATE TABLE stations (station_id INTEGER, name TEXT, latitude REAL,
    longitude REAL, capacity INTEGER, online_date TEXT, offline_date TEXT);
INSERT INTO stations VALUES (35, 'Streeter Dr & Grand Ave', 41.892278, -87.612043, 55, '2013-06-27', NULL);`)
	_ = w.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Setenv("K_WAREHOUSE__DSN", dsn)
	t.Setenv("K_REPORT__DISABLED", "true")
	t.Setenv("K_STORE__CONF__DIR", filepath.Join(dir, "models"))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"stations", "--config", "", "--as-of", "2019-06-30"})
	if err := Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Streeter Dr & Grand Ave") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
