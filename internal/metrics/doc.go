// Package metrics records pipeline run metrics.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	orch, _ := pipeline.New(pipeline.Options{Recorder: metrics.NoopRecorder{}})
//
// The preview server swaps in a PrometheusRecorder bound to its own registry
// and serves it on /metrics via HTTPHandler.
package metrics
