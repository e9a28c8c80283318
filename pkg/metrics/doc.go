// Package metrics provides Prometheus instrumentation for sessions.
//
// A Collector counts loads by result, finalize decisions by action and
// errors by operation, and tracks store availability in a gauge:
//
//	reg := prometheus.NewRegistry()
//	col := metrics.NewCollector(reg)
//	mgr, err := session.New(session.WithRecorder(col))
//	col.Track(mgr.Store())
//	router.Handle("/metrics", metrics.Handler(reg))
package metrics
