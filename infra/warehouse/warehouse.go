// Package warehouse reads stations, occupancy snapshots and rebalance moves
// from a SQL database through configured queries.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/dockflow/core/ingest"
	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/reconcile"
)

// DateLayout is the format of the :as_of parameter.
const DateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	DateLayout,
}

var paramRe = regexp.MustCompile(`[:@$]([a-z_]+)`)

// Warehouse implements ingest.Source over database/sql.
type Warehouse struct {
	db  *sql.DB
	cfg Config
	loc *time.Location
	log logger.Logger
}

var _ ingest.Source = (*Warehouse)(nil)

// Open connects to the configured database. Snapshot timestamps without an
// offset are read in loc; rebalance moves are read as UTC and converted to loc.
func Open(cfg Config, loc *time.Location, log logger.Logger) (*Warehouse, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}
	return New(db, cfg, loc, log), nil
}

// New wraps an existing connection.
func New(db *sql.DB, cfg Config, loc *time.Location, log logger.Logger) *Warehouse {
	cfg.SetDefaults()
	if loc == nil {
		loc = time.UTC
	}
	return &Warehouse{db: db, cfg: cfg, loc: loc, log: logger.OrNop(log)}
}

// DB exposes the underlying connection.
func (w *Warehouse) DB() *sql.DB { return w.db }

// Close closes the underlying database.
func (w *Warehouse) Close() error { return w.db.Close() }

// Stations returns the stations online at asOf.
func (w *Warehouse) Stations(ctx context.Context, asOf time.Time) ([]model.Station, error) {
	rows, cancel, err := w.query(ctx, w.cfg.StationListQuery, map[string]any{
		"as_of": asOf.Format(DateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("station list: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	var res []model.Station
	for rows.Next() {
		var st model.Station
		var name sql.NullString
		var capacity sql.NullInt64
		if err := rows.Scan(&st.ID, &name, &st.Latitude, &st.Longitude, &capacity); err != nil {
			return nil, fmt.Errorf("station list: %w", err)
		}
		st.Name = name.String
		st.Capacity = int(capacity.Int64)
		res = append(res, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("station list: %w", err)
	}
	w.log.Infof("loaded %d stations as of %s", len(res), asOf.Format(DateLayout))
	return res, nil
}

// Snapshots returns the station's snapshots ordered by time.
func (w *Warehouse) Snapshots(ctx context.Context, st model.Station) ([]model.Snapshot, error) {
	tick := time.Now()
	rows, cancel, err := w.query(ctx, w.cfg.SnapshotQuery, map[string]any{
		"station_id": st.ID,
		"latitude":   st.Latitude,
		"longitude":  st.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("station %d snapshots: %w", st.ID, err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	var res []model.Snapshot
	for rows.Next() {
		var raw any
		var available int
		if err := rows.Scan(&raw, &available); err != nil {
			return nil, fmt.Errorf("station %d snapshots: %w", st.ID, err)
		}
		ts, err := parseTime(raw, w.loc)
		if err != nil {
			return nil, fmt.Errorf("station %d snapshots: %w", st.ID, err)
		}
		res = append(res, model.Snapshot{Timestamp: ts.In(w.loc), Available: available})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("station %d snapshots: %w", st.ID, err)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	w.log.Debugw("snapshots loaded", map[string]any{"station_id": st.ID, "rows": len(res), "duration": time.Since(tick).Seconds()})
	return res, nil
}

// RebalanceMoves returns the station's operator moves netted per interval.
// Moves are stored in UTC and netted on the station's wall clock.
func (w *Warehouse) RebalanceMoves(ctx context.Context, stationID int64, interval time.Duration) ([]model.RebalanceMove, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("station %d rebalance moves: invalid interval %s", stationID, interval)
	}
	rows, cancel, err := w.query(ctx, w.cfg.RebalanceQuery, map[string]any{
		"station_id":       stationID,
		"interval_seconds": int64(interval / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("station %d rebalance moves: %w", stationID, err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	net := map[int64]int{}
	for rows.Next() {
		var raw any
		var delta int
		if err := rows.Scan(&raw, &delta); err != nil {
			return nil, fmt.Errorf("station %d rebalance moves: %w", stationID, err)
		}
		ts, err := parseTime(raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("station %d rebalance moves: %w", stationID, err)
		}
		net[reconcile.BucketStart(ts, interval, w.loc).Unix()] += delta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("station %d rebalance moves: %w", stationID, err)
	}
	keys := make([]int64, 0, len(net))
	for k := range net {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	res := make([]model.RebalanceMove, 0, len(keys))
	for _, k := range keys {
		res = append(res, model.RebalanceMove{Timestamp: time.Unix(k, 0).In(w.loc), Delta: net[k]})
	}
	return res, nil
}

// query binds only the named parameters the statement references. The
// returned cancel func must be called once rows are consumed.
func (w *Warehouse) query(ctx context.Context, q string, params map[string]any) (*sql.Rows, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if d := w.cfg.timeout(); d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	}
	var args []any
	seen := map[string]bool{}
	for _, m := range paramRe.FindAllStringSubmatch(q, -1) {
		name := m[1]
		v, ok := params[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		args = append(args, sql.Named(name, v))
	}
	rows, err := w.db.QueryContext(ctx, q, args...)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return rows, cancel, nil
}

func parseTime(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case int64:
		return time.Unix(t, 0), nil
	case float64:
		return time.Unix(int64(t), 0), nil
	case []byte:
		return parseTime(string(t), loc)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.Unix(n, 0), nil
		}
		for _, layout := range timeLayouts {
			if ts, err := time.ParseInLocation(layout, t, loc); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
