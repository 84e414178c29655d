// Package metrics defines the Prometheus collectors for the media cleaner
// engine: scan pipeline counters, feature-extraction timings, and feature
// cache statistics. Collectors are registered with promauto at package
// initialization; the host decides whether and where to expose them.
package metrics
