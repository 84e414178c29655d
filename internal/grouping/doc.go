// Package grouping clusters extracted features into duplicate groups and
// picks the member of each group worth keeping.
//
// Clustering is purely a function of already-extracted features: nothing in
// this package touches the filesystem, which is what makes threshold
// re-grouping cheap enough to run on demand after a scan.
//
// Image groups form on perceptual hash, either by exact key or by greedy
// Hamming-distance clustering. Video groups form on the conjunction of
// whole-second duration bucket and bit-identical mid-frame hash. Only
// groups with at least two members are ever emitted.
package grouping
