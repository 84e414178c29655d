// Package logging provides the leveled logger used throughout the media
// cleaner engine.
//
// Levels, from most to least verbose: DEBUG, INFO, WARN, ERROR. The active
// level is read once from the LOG_LEVEL environment variable (DEBUG=1 also
// enables debug output) and defaults to INFO.
//
// Per-file scan diagnostics are not routed through this package; those go to
// the run's log stream so the host can display them. This logger is for
// engine lifecycle and storage events.
package logging
