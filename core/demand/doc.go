// Package demand fits per-station Poisson regression models of arrivals and
// departures over a treatment-coded month, hour and weekday basis.
package demand
