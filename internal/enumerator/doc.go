// Package enumerator discovers scannable media files under a root
// directory. Well-known non-content directories are pruned before descent,
// and per-entry errors (permission denied, vanished paths) are tolerated
// without aborting the walk.
package enumerator
