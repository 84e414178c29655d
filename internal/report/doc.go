// Package report renders scan results as plain-text tables for CLI hosts.
package report
