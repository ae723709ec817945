// Package metrics defines the sinks that observe fit batches and
// simulations. Sinks like PromSink and InfluxSink can be combined with
// NewMultiSink; the factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics
