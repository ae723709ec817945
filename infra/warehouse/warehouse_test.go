package warehouse

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockflow/core/model"
)

const fixtureSQL = `
CREATE TABLE stations (station_id INTEGER, name TEXT, latitude REAL, longitude REAL,
    capacity INTEGER, online_date TEXT, offline_date TEXT);
CREATE TABLE station_status (station_id INTEGER, timestamp TEXT, available INTEGER);
CREATE TABLE rebalance_moves (station_id INTEGER, timestamp TEXT, delta INTEGER);
INSERT INTO stations VALUES
    (2, 'Clark & Lake', 41.88, -87.63, 15, '2013-06-27', NULL),
    (1, 'Canal & Adams', 41.87, -87.64, 47, '2013-06-27', NULL),
    (3, 'Retired', 41.90, -87.60, 11, '2013-06-27', '2018-01-01'),
    (4, 'Future', 41.91, -87.61, 19, '2020-01-01', NULL);
INSERT INTO station_status VALUES
    (1, '2019-06-01 08:20:00', 5),
    (1, '2019-06-01 08:00:00', 3),
    (1, '2019-06-01 09:05:00', 4),
    (2, '2019-06-01 08:00:00', 9);
INSERT INTO rebalance_moves VALUES
    (1, '2019-06-01 13:10:00', 4),
    (1, '2019-06-01 13:40:00', -1),
    (1, '2019-06-01 15:00:00', -2);
`

func open(t *testing.T) *Warehouse {
	t.Helper()
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	w, err := Open(Config{DSN: filepath.Join(t.TempDir(), "warehouse.db")}, chicago, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	_, err = w.DB().Exec(fixtureSQL)
	require.NoError(t, err)
	return w
}

func TestStations_AsOf(t *testing.T) {
	w := open(t)
	got, err := w.Stations(context.Background(), time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 47, got[0].Capacity)
	assert.Equal(t, "Clark & Lake", got[1].Name)
	assert.InDelta(t, -87.63, got[1].Longitude, 1e-9)
}

func TestSnapshots_OrderedInLocation(t *testing.T) {
	w := open(t)
	got, err := w.Snapshots(context.Background(), model.Station{ID: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 5, 4}, []int{got[0].Available, got[1].Available, got[2].Available})
	assert.Equal(t, "America/Chicago", got[0].Timestamp.Location().String())
	assert.Equal(t, 8, got[0].Timestamp.Hour())
	assert.True(t, got[1].Timestamp.Before(got[2].Timestamp))
}

func TestRebalanceMoves_NettedAndConverted(t *testing.T) {
	w := open(t)
	got, err := w.RebalanceMoves(context.Background(), 1, time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 13:00 UTC is 08:00 CDT
	assert.Equal(t, 8, got[0].Timestamp.Hour())
	assert.Equal(t, 3, got[0].Delta)
	assert.Equal(t, 10, got[1].Timestamp.Hour())
	assert.Equal(t, -2, got[1].Delta)

	none, err := w.RebalanceMoves(context.Background(), 2, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = w.RebalanceMoves(context.Background(), 1, 0)
	assert.Error(t, err)
}

func TestRebalanceMoves_DailyNettingFollowsLocalDays(t *testing.T) {
	w := open(t)
	// 03:00 UTC is the previous evening in Chicago, 06:00 UTC is after midnight.
	_, err := w.DB().Exec(`INSERT INTO rebalance_moves VALUES
        (7, '2019-06-02 03:00:00', 5),
        (7, '2019-06-02 06:00:00', -1)`)
	require.NoError(t, err)
	got, err := w.RebalanceMoves(context.Background(), 7, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, want := range []time.Time{
		time.Date(2019, 6, 1, 0, 0, 0, 0, w.loc),
		time.Date(2019, 6, 2, 0, 0, 0, 0, w.loc),
	} {
		if !got[i].Timestamp.Equal(want) {
			t.Fatalf("move %d at %s, want %s", i, got[i].Timestamp, want)
		}
	}
	assert.Equal(t, []int{5, -1}, []int{got[0].Delta, got[1].Delta})
}

func TestCustomQueryParams(t *testing.T) {
	w := open(t)
	w.cfg.SnapshotQuery = `SELECT timestamp, available FROM station_status
        WHERE station_id = :station_id AND available > 3 ORDER BY timestamp`
	got, err := w.Snapshots(context.Background(), model.Station{ID: 1, Latitude: 41.87, Longitude: -87.64})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   any
		want time.Time
	}{
		{"2019-06-01 08:00:00", time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
		{"2019-06-01T08:00:00Z", time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
		{[]byte("2019-06-01"), time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)},
		{int64(1559376000), time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := parseTime(c.in, time.UTC)
		if err != nil {
			t.Fatalf("parse %v: %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("parse %v: got %s want %s", c.in, got, c.want)
		}
	}
	if _, err := parseTime("yesterday", time.UTC); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := parseTime(true, time.UTC); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Error(t, c.Validate())
	c.DSN = "file:x.db"
	assert.NoError(t, c.Validate())
	c.Driver = "snowflake"
	assert.Error(t, c.Validate())
}

