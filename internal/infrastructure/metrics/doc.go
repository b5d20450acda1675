// Package metrics holds the Prometheus collectors for Smart Home Core.
//
// Collectors live on a dedicated registry rather than the global default,
// so tests can build as many as they like without duplicate-registration
// panics. Handler exposes the registry for scraping at /metrics.
package metrics
