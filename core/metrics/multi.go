package metrics

import (
	"context"
	"errors"
)

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStationFit forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordStationFit(ev FitEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordStationFit(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatch forwards batch summaries to sinks that support them.
func (m *MultiSink) RecordBatch(ev BatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BatchRecorder); ok {
			if err := rec.RecordBatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSimulation forwards simulation summaries to sinks that support them.
func (m *MultiSink) RecordSimulation(ev SimulationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SimulationRecorder); ok {
			if err := rec.RecordSimulation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every sink and joins their errors.
func (m *MultiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			errs = append(errs, f.Flush(ctx))
		}
	}
	return errors.Join(errs...)
}
