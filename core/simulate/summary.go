package simulate

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the outcomes of a simulation.
type Summary struct {
	Trials           int         `json:"trials"`
	EmptyProbability float64     `json:"empty_probability"`
	FullProbability  float64     `json:"full_probability"`
	MeanFinal        float64     `json:"mean_final"`
	StdDevFinal      float64     `json:"stddev_final"`
	Histogram        []Frequency `json:"histogram"`
}

// Frequency is the number of trials ending with Count vehicles.
type Frequency struct {
	Count  int `json:"count"`
	Trials int `json:"trials"`
}

// Summarize computes event probabilities and final-count statistics.
func Summarize(r Result) Summary {
	n := len(r.Finals)
	s := Summary{Trials: n}
	if n == 0 {
		return s
	}
	finals := make([]float64, n)
	hist := map[int]int{}
	for i, f := range r.Finals {
		finals[i] = float64(f)
		hist[f]++
		if r.Empty[i] {
			s.EmptyProbability++
		}
		if r.Full[i] {
			s.FullProbability++
		}
	}
	s.EmptyProbability /= float64(n)
	s.FullProbability /= float64(n)
	if n > 1 {
		s.MeanFinal, s.StdDevFinal = stat.MeanStdDev(finals, nil)
	} else {
		s.MeanFinal = finals[0]
	}
	for c, t := range hist {
		s.Histogram = append(s.Histogram, Frequency{Count: c, Trials: t})
	}
	sort.Slice(s.Histogram, func(i, j int) bool { return s.Histogram[i].Count < s.Histogram[j].Count })
	return s
}
