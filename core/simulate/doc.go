// Package simulate runs Monte Carlo projections of station occupancy from a
// fitted demand model. The stochastic behaviour of a single trial is
// supplied by a Policy; PoissonPolicy is the default implementation.
package simulate
