package grouping

import "sort"

// SelectBestShot picks the single member of a group worth keeping: most
// faces first, then the sharpest (highest blur score), then the largest
// file. Paths break any remaining tie so the choice is a pure function of
// the member multiset, independent of input order.
//
// Returns an empty string for an empty group.
func SelectBestShot(members []ImageRecord) string {
	if len(members) == 0 {
		return ""
	}

	ranked := make([]ImageRecord, len(members))
	copy(ranked, members)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.FaceCount != b.FaceCount {
			return a.FaceCount > b.FaceCount
		}
		if a.BlurScore != b.BlurScore {
			return a.BlurScore > b.BlurScore
		}
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Path < b.Path
	})

	return ranked[0].Path
}
