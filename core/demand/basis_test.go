package demand

import (
	"errors"
	"testing"

	"github.com/kilianp07/dockflow/core/model"
)

func TestBasisColumnsAndRow(t *testing.T) {
	b := Basis{Months: []int{6, 7}, Hours: []int{0, 1, 2}, Weekdays: []int{0, 1}}
	cols := b.Columns()
	want := []string{"Intercept", "month[T.7]", "hour[T.1]", "hour[T.2]", "weekday[T.1]"}
	if len(cols) != len(want) || b.Width() != len(want) {
		t.Fatalf("unexpected columns %v", cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("column %d: got %s want %s", i, cols[i], want[i])
		}
	}

	row := make([]float64, b.Width())
	if err := b.Row(row, 7, 2, true); err != nil {
		t.Fatalf("row: %v", err)
	}
	exp := []float64{1, 1, 0, 1, 1}
	for i := range exp {
		if row[i] != exp[i] {
			t.Fatalf("row %v, want %v", row, exp)
		}
	}
	if err := b.Row(row, 6, 0, false); err != nil {
		t.Fatalf("reference row: %v", err)
	}
	if row[0] != 1 || row[1]+row[2]+row[3]+row[4] != 0 {
		t.Fatalf("reference levels should only set the intercept: %v", row)
	}
	if err := b.Row(row, 8, 0, false); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestObservedLevelsSorted(t *testing.T) {
	recs := []model.IntervalRecord{
		{Month: 7, Hour: 5, Weekday: true},
		{Month: 6, Hour: 1, Weekday: true},
		{Month: 7, Hour: 3, Weekday: true},
	}
	b := ObservedLevels(recs)
	if len(b.Months) != 2 || b.Months[0] != 6 || b.Months[1] != 7 {
		t.Fatalf("months %v", b.Months)
	}
	if len(b.Hours) != 3 || b.Hours[0] != 1 || b.Hours[2] != 5 {
		t.Fatalf("hours %v", b.Hours)
	}
	if len(b.Weekdays) != 1 || b.Weekdays[0] != 1 {
		t.Fatalf("weekdays %v", b.Weekdays)
	}
	if b.Width() != 1+1+2 {
		t.Fatalf("width %d", b.Width())
	}
}

func TestNewBasisKinds(t *testing.T) {
	full, err := NewBasis(FullBasis, nil)
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	if full.Width() != 1+11+23+1 {
		t.Fatalf("calendar width %d", full.Width())
	}
	if _, err := NewBasis("weekly", nil); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
