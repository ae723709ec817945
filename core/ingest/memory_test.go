package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

func TestMemorySource_StationsAsOf(t *testing.T) {
	day := time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC)
	src := &MemorySource{
		StationList: []model.Station{{ID: 3}, {ID: 1}, {ID: 2}},
		Active: map[int64][2]time.Time{
			2: {day.AddDate(0, 1, 0), time.Time{}},
			3: {day.AddDate(-1, 0, 0), day.AddDate(0, 0, -1)},
		},
	}
	got, err := src.Stations(context.Background(), day)
	if err != nil {
		t.Fatalf("stations: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected stations %+v", got)
	}
}

func TestMemorySource_Failing(t *testing.T) {
	boom := errors.New("warehouse down")
	src := &MemorySource{Failing: map[int64]error{4: boom}}
	if _, err := src.Snapshots(context.Background(), model.Station{ID: 4}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
