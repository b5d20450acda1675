// Package api provides the HTTP REST API for Smart Home Core.
//
// It exposes the reconciliation queries (device measurements, last
// measurement, peak power, temperature differentials) and the weather
// lookups as read-only JSON endpoints under /api/v1, plus the Prometheus
// scrape endpoint at /metrics.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
