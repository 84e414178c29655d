// Package mediatypes classifies filesystem entries for the scan engine.
//
// A file participates in a scan only if its lowercased extension belongs to
// the image or video extension sets. The excluded-directory set is a hard
// exclusion applied during enumeration; it is not user-configurable.
package mediatypes
