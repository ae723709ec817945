package app

import (
	"context"

	"github.com/kilianp07/dockflow/core/events"
	"github.com/kilianp07/dockflow/infra/logger"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// StartProgressLogger subscribes to the bus and logs station progress until
// the bus is closed or ctx is cancelled. The returned channel is closed when
// the logger stops.
func StartProgressLogger(ctx context.Context, bus eventbus.EventBus, total int, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		finished := 0
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.StationFitted:
					finished++
					log.Infof("[%d/%d] station %d fitted on %d records as %s", finished, total, e.StationID, e.Records, e.Key)
				case events.StationFailed:
					finished++
					log.Warnf("[%d/%d] station %d failed at %s: %v", finished, total, e.StationID, e.Stage, e.Err)
				}
			}
		}
	}()
	return done
}
