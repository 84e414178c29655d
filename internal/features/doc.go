// Package features extracts the per-file features the scan engine caches
// and groups on.
//
// Images yield a blur score (variance of the Laplacian edge response), a
// 64-bit perceptual hash, and a face count from a cascade detector. Videos
// yield a cheap content signature (size plus head bytes, MD5), a duration
// derived from container metadata, and a perceptual hash of the frame
// nearest the temporal midpoint.
//
// Every sub-feature is independently fault tolerant: a decode failure in
// one never blocks the others, and no extraction error is ever fatal.
package features
