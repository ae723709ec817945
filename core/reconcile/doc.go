// Package reconcile converts raw station occupancy snapshots into
// interval-bucketed arrival and departure counts. In rebalanced mode the
// counts are corrected with operator moves, reclassifying intervals whose
// correction flips the sign of the organic total.
package reconcile
