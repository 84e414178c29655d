// Package workers computes sensible worker-pool sizes for the extraction
// pipeline, respecting container CPU limits via GOMAXPROCS.
package workers
