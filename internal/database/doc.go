// Package database implements the persistent feature cache backing the scan
// engine.
//
// Each row caches the extracted features of one media file, keyed by its
// normalized absolute path, together with the (modification time, size)
// fingerprint that decides validity. Rows are replaced wholesale on
// recomputation; stale fields are never partially reused.
//
// The schema carries an explicit version marker. Opening a store created by
// an older engine triggers an additive migration: newly introduced columns
// are added in place with NULL defaults and existing rows are preserved.
//
// Storage errors are reported to callers, which degrade them to cache
// misses. A cache failure never aborts a scan.
package database
