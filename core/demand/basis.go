package demand

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/dockflow/core/model"
)

// BasisKind selects how category levels are chosen.
type BasisKind string

const (
	// ObservedBasis uses only the levels present in the records.
	ObservedBasis BasisKind = "observed"
	// FullBasis uses every calendar level. Stations that never observed a
	// level produce a rank-deficient design.
	FullBasis BasisKind = "full"
)

// Basis describes the columns of a treatment-coded design matrix. The first
// level of each factor is the reference and has no column.
type Basis struct {
	Months   []int `json:"months"`
	Hours    []int `json:"hours"`
	Weekdays []int `json:"weekdays"` // 0 weekend, 1 weekday
}

// NewBasis returns the basis of the requested kind for recs.
func NewBasis(kind BasisKind, recs []model.IntervalRecord) (Basis, error) {
	switch kind {
	case FullBasis:
		return CalendarBasis(), nil
	case ObservedBasis, "":
		return ObservedLevels(recs), nil
	}
	return Basis{}, fmt.Errorf("unknown basis kind %q", kind)
}

// CalendarBasis returns all twelve months, twenty-four hours and both day types.
func CalendarBasis() Basis {
	b := Basis{Weekdays: []int{0, 1}}
	for m := 1; m <= 12; m++ {
		b.Months = append(b.Months, m)
	}
	for h := 0; h < 24; h++ {
		b.Hours = append(b.Hours, h)
	}
	return b
}

// ObservedLevels returns the sorted levels present in recs.
func ObservedLevels(recs []model.IntervalRecord) Basis {
	months := map[int]struct{}{}
	hours := map[int]struct{}{}
	days := map[int]struct{}{}
	for _, r := range recs {
		months[r.Month] = struct{}{}
		hours[r.Hour] = struct{}{}
		days[weekdayLevel(r.Weekday)] = struct{}{}
	}
	return Basis{Months: sortedKeys(months), Hours: sortedKeys(hours), Weekdays: sortedKeys(days)}
}

// Columns returns the column names in design-matrix order.
func (b Basis) Columns() []string {
	cols := []string{"Intercept"}
	for _, m := range tail(b.Months) {
		cols = append(cols, fmt.Sprintf("month[T.%d]", m))
	}
	for _, h := range tail(b.Hours) {
		cols = append(cols, fmt.Sprintf("hour[T.%d]", h))
	}
	for _, d := range tail(b.Weekdays) {
		cols = append(cols, fmt.Sprintf("weekday[T.%d]", d))
	}
	return cols
}

// Width is the number of design-matrix columns.
func (b Basis) Width() int {
	return 1 + len(tail(b.Months)) + len(tail(b.Hours)) + len(tail(b.Weekdays))
}

// Row writes the dummy-coded row for one category combination into dst,
// which must have length Width.
func (b Basis) Row(dst []float64, month, hour int, weekday bool) error {
	for i := range dst {
		dst[i] = 0
	}
	dst[0] = 1
	off := 1
	for _, f := range []struct {
		name   string
		levels []int
		value  int
	}{
		{"month", b.Months, month},
		{"hour", b.Hours, hour},
		{"weekday", b.Weekdays, weekdayLevel(weekday)},
	} {
		idx := indexOf(f.levels, f.value)
		if idx < 0 {
			return fmt.Errorf("%w: %s=%d", ErrUnknownLevel, f.name, f.value)
		}
		if idx > 0 {
			dst[off+idx-1] = 1
		}
		off += len(f.levels) - 1
	}
	return nil
}

// Design builds the design matrix for recs.
func (b Basis) Design(recs []model.IntervalRecord) (*mat.Dense, error) {
	w := b.Width()
	x := mat.NewDense(len(recs), w, nil)
	row := make([]float64, w)
	for i, r := range recs {
		if err := b.Row(row, r.Month, r.Hour, r.Weekday); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Start, err)
		}
		x.SetRow(i, row)
	}
	return x, nil
}

func weekdayLevel(weekday bool) int {
	if weekday {
		return 1
	}
	return 0
}

func tail(levels []int) []int {
	if len(levels) == 0 {
		return nil
	}
	return levels[1:]
}

func indexOf(levels []int, v int) int {
	for i, l := range levels {
		if l == v {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
