package grouping

import (
	"sort"
	"strconv"

	"github.com/corona10/goimagehash"
)

// ClusterImages groups images by perceptual-hash similarity, purely from
// collected metadata. Threshold 0 is exact-match grouping; a positive
// threshold admits members whose hash differs from the group anchor by at
// most that many bits.
//
// Tolerant clustering is greedy and single-pass: paths are visited in a
// fixed (sorted) order, the first unassigned path anchors a new group, and
// every later unassigned path within the threshold of that anchor is
// absorbed. The result is not a global optimum; the anchor fixes the
// comparison basis for its group.
//
// Only groups with at least two members are returned.
func ClusterImages(meta map[string]ImageMeta, threshold int) map[string][]ImageRecord {
	if threshold <= 0 {
		return exactClusters(meta)
	}
	return tolerantClusters(meta, threshold)
}

func exactClusters(meta map[string]ImageMeta) map[string][]ImageRecord {
	byHash := make(map[string][]ImageRecord)
	for _, path := range sortedHashedPaths(meta) {
		m := meta[path]
		byHash[m.PHash] = append(byHash[m.PHash], record(path, m))
	}

	groups := make(map[string][]ImageRecord)
	for hash, members := range byHash {
		if len(members) >= 2 {
			groups[hash] = members
		}
	}
	return groups
}

func tolerantClusters(meta map[string]ImageMeta, threshold int) map[string][]ImageRecord {
	paths := sortedHashedPaths(meta)

	groups := make(map[string][]ImageRecord)
	assigned := make(map[string]bool, len(paths))

	for i, anchor := range paths {
		if assigned[anchor] {
			continue
		}
		assigned[anchor] = true
		anchorMeta := meta[anchor]
		members := []ImageRecord{record(anchor, anchorMeta)}

		for _, candidate := range paths[i+1:] {
			if assigned[candidate] {
				continue
			}
			dist, comparable := hashDistance(anchorMeta.PHash, meta[candidate].PHash)
			if comparable && dist <= threshold {
				assigned[candidate] = true
				members = append(members, record(candidate, meta[candidate]))
			}
		}

		if len(members) >= 2 {
			groups[anchorMeta.PHash] = members
		}
	}

	return groups
}

// sortedHashedPaths returns the paths carrying a perceptual hash, sorted so
// clustering visits them in a fixed order.
func sortedHashedPaths(meta map[string]ImageMeta) []string {
	paths := make([]string, 0, len(meta))
	for path, m := range meta {
		if m.PHash != "" {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// hashDistance returns the Hamming distance between two hex-encoded 64-bit
// perceptual hashes. The second return is false when either hash cannot be
// parsed, in which case the pair is treated as incomparable.
func hashDistance(a, b string) (int, bool) {
	bitsA, errA := strconv.ParseUint(a, 16, 64)
	bitsB, errB := strconv.ParseUint(b, 16, 64)
	if errA != nil || errB != nil {
		return 0, false
	}

	dist, err := goimagehash.NewImageHash(bitsA, goimagehash.PHash).
		Distance(goimagehash.NewImageHash(bitsB, goimagehash.PHash))
	if err != nil {
		return 0, false
	}
	return dist, true
}
