package grouping

import "fmt"

// videoKey is the conjunctive duplicate-content key: two videos are
// duplicates iff their durations floor to the same whole second and their
// mid-frame hashes are bit-identical.
type videoKey struct {
	bucket    int
	frameHash string
}

// Collector accumulates features as the pipeline streams them in. Members
// keep their arrival order inside each group.
type Collector struct {
	images map[string][]ImageRecord
	videos map[videoKey][]VideoRecord
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		images: make(map[string][]ImageRecord),
		videos: make(map[videoKey][]VideoRecord),
	}
}

// AddImage files an image under its perceptual hash. Images without a hash
// (failed decode) cannot participate in similarity grouping and are skipped.
func (c *Collector) AddImage(path string, meta ImageMeta) {
	if meta.PHash == "" {
		return
	}
	c.images[meta.PHash] = append(c.images[meta.PHash], record(path, meta))
}

// AddVideo files a video under its duplicate-content key. Videos missing
// either duration or frame hash cannot be content-compared and are skipped.
func (c *Collector) AddVideo(path string, duration float64, frameHash string) {
	if frameHash == "" {
		return
	}
	key := videoKey{bucket: int(duration), frameHash: frameHash}
	c.videos[key] = append(c.videos[key], VideoRecord{Path: path, Duration: duration})
}

// SimilarGroups returns the image clusters with at least two members, keyed
// by shared perceptual hash. Singletons never appear.
func (c *Collector) SimilarGroups() map[string][]ImageRecord {
	groups := make(map[string][]ImageRecord)
	for hash, members := range c.images {
		if len(members) >= 2 {
			groups[hash] = members
		}
	}
	return groups
}

// DuplicateVideos returns the video clusters with at least two members,
// keyed by a rendered form of the (duration bucket, frame hash) key.
func (c *Collector) DuplicateVideos() map[string][]VideoRecord {
	groups := make(map[string][]VideoRecord)
	for key, members := range c.videos {
		if len(members) >= 2 {
			groups[VideoGroupKey(key.bucket, key.frameHash)] = members
		}
	}
	return groups
}

// VideoGroupKey renders a video duplicate key for result maps, using the
// duration bucket and a frame-hash prefix.
func VideoGroupKey(bucket int, frameHash string) string {
	prefix := frameHash
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("duration_%ds_%s", bucket, prefix)
}
