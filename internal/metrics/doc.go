// Package metrics provides observability hooks for the notification engine.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	eng := engine.New(deps) // deps.Recorder == nil -> NoopRecorder{}
//
// When metrics are enabled in the configuration the daemon swaps in a
// PrometheusRecorder and serves its registry through HTTPHandler:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
