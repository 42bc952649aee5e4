// Package prometheus provides Prometheus collectors for credkit metrics.
//
// [NewPrometheusExporter] accepts a [credkit.Manager] and exposes an [http.Handler]
// that renders all credkit counters and histograms in Prometheus text exposition format.
// Counter names are prefixed credkit_*_total; the single histogram is
// credkit_token_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
