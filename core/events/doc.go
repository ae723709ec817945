// Package events defines the batch progress events emitted on the event bus.
//
// Available event types:
//   - StationStarted: a station entered the fit pipeline
//   - StationFitted: a model was fitted and persisted
//   - StationFailed: the station was skipped after an error
package events
