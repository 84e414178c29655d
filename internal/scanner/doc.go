// Package scanner drives the scan pipeline: enumerate the tree, reuse or
// extract features per file, keep the feature cache current, and aggregate
// duplicate groups into a single ScanResult.
//
// A Run executes on background goroutines and reports through outbound
// streams only: ordered progress events, free-text log lines, and exactly
// one final result. The host never calls back into pipeline internals.
//
// Extraction can fan out across a bounded worker pool, but aggregation,
// cache writes and event emission stay on one goroutine, so progress counts
// are monotonic and per-path upserts never race. Cancellation is a
// cooperative flag polled at file boundaries; a stopped run still delivers
// the partial result it accumulated.
package scanner
