package demand

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/dockflow/core/model"
)

// Model is a fitted pair of Poisson regressions for one station. It is never
// mutated after Fit returns and can be shared by concurrent readers.
type Model struct {
	StationID  int64               `json:"station_id"`
	Mode       model.RebalanceMode `json:"mode"`
	Interval   string              `json:"interval"`
	Basis      Basis               `json:"basis"`
	Arrivals   []float64           `json:"arrivals"`
	Departures []float64           `json:"departures"`
}

// Rates returns the expected arrivals and departures per interval for the
// given category combination.
func (m *Model) Rates(month, hour int, weekday bool) (float64, float64, error) {
	w := m.Basis.Width()
	if len(m.Arrivals) != w || len(m.Departures) != w {
		return 0, 0, fmt.Errorf("station %d: coefficients do not match basis width %d", m.StationID, w)
	}
	row := make([]float64, w)
	if err := m.Basis.Row(row, month, hour, weekday); err != nil {
		return 0, 0, fmt.Errorf("station %d: %w", m.StationID, err)
	}
	return math.Exp(floats.Dot(row, m.Arrivals)), math.Exp(floats.Dot(row, m.Departures)), nil
}

// Coefficients returns the named arrival and departure coefficients.
func (m *Model) Coefficients() (map[string]float64, map[string]float64) {
	cols := m.Basis.Columns()
	arr := make(map[string]float64, len(cols))
	dep := make(map[string]float64, len(cols))
	for i, c := range cols {
		if i < len(m.Arrivals) {
			arr[c] = m.Arrivals[i]
		}
		if i < len(m.Departures) {
			dep[c] = m.Departures[i]
		}
	}
	return arr, dep
}
