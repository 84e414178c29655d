package grouping

import "testing"

func TestCollectorSimilarGroups(t *testing.T) {
	c := NewCollector()
	c.AddImage("/p/a.jpg", ImageMeta{PHash: "00000000000000ff", BlurScore: 120, FaceCount: 1, Size: 100})
	c.AddImage("/p/b.jpg", ImageMeta{PHash: "00000000000000ff", BlurScore: 80, FaceCount: 0, Size: 90})
	c.AddImage("/p/c.jpg", ImageMeta{PHash: "ff00000000000000", BlurScore: 50, FaceCount: 0, Size: 10})

	groups := c.SimilarGroups()
	if len(groups) != 1 {
		t.Fatalf("SimilarGroups returned %d groups, want 1", len(groups))
	}

	members, ok := groups["00000000000000ff"]
	if !ok {
		t.Fatal("expected group keyed by the shared hash")
	}
	if len(members) != 2 {
		t.Fatalf("group has %d members, want 2", len(members))
	}
	// Arrival order is preserved within the group.
	if members[0].Path != "/p/a.jpg" || members[1].Path != "/p/b.jpg" {
		t.Errorf("member order = [%s, %s], want arrival order", members[0].Path, members[1].Path)
	}
}

func TestCollectorSkipsUnhashedImages(t *testing.T) {
	c := NewCollector()
	c.AddImage("/p/broken1.jpg", ImageMeta{PHash: ""})
	c.AddImage("/p/broken2.jpg", ImageMeta{PHash: ""})

	if groups := c.SimilarGroups(); len(groups) != 0 {
		t.Errorf("images without hashes must not group, got %v", groups)
	}
}

func TestCollectorNoSingletons(t *testing.T) {
	c := NewCollector()
	c.AddImage("/p/a.jpg", ImageMeta{PHash: "0000000000000001"})
	c.AddVideo("/v/a.mp4", 10.0, "aaaaaaaaaaaaaaaa")

	if groups := c.SimilarGroups(); len(groups) != 0 {
		t.Errorf("singleton image group emitted: %v", groups)
	}
	if groups := c.DuplicateVideos(); len(groups) != 0 {
		t.Errorf("singleton video group emitted: %v", groups)
	}
}

func TestCollectorVideoBucketRule(t *testing.T) {
	// 12.4s and 12.6s floor to the same bucket; with identical mid-frame
	// hashes they are duplicates. 13.0s with the same hash is not.
	c := NewCollector()
	c.AddVideo("/v/a.mp4", 12.4, "cafebabecafebabe")
	c.AddVideo("/v/b.mp4", 12.6, "cafebabecafebabe")
	c.AddVideo("/v/c.mp4", 13.0, "cafebabecafebabe")

	groups := c.DuplicateVideos()
	if len(groups) != 1 {
		t.Fatalf("DuplicateVideos returned %d groups, want 1", len(groups))
	}

	members := groups[VideoGroupKey(12, "cafebabecafebabe")]
	if len(members) != 2 {
		t.Fatalf("group has %d members, want 2", len(members))
	}
	for _, m := range members {
		if m.Path == "/v/c.mp4" {
			t.Error("13.0s video must not join the 12s bucket")
		}
	}
}

func TestCollectorVideoHashMustMatchExactly(t *testing.T) {
	// Same bucket, hashes differing by one bit: the video rule is
	// conjunctive and exact, not a similarity threshold.
	c := NewCollector()
	c.AddVideo("/v/a.mp4", 12.4, "0000000000000000")
	c.AddVideo("/v/b.mp4", 12.6, "0000000000000001")

	if groups := c.DuplicateVideos(); len(groups) != 0 {
		t.Errorf("near-identical frame hashes must not group videos: %v", groups)
	}
}

func TestCollectorSkipsVideosWithoutFrameHash(t *testing.T) {
	c := NewCollector()
	c.AddVideo("/v/a.mp4", 12.4, "")
	c.AddVideo("/v/b.mp4", 12.4, "")

	if groups := c.DuplicateVideos(); len(groups) != 0 {
		t.Errorf("videos without frame hashes must not group: %v", groups)
	}
}

func TestVideoGroupKey(t *testing.T) {
	if got := VideoGroupKey(12, "cafebabecafebabe"); got != "duration_12s_cafebabe" {
		t.Errorf("VideoGroupKey = %q, want duration_12s_cafebabe", got)
	}
	if got := VideoGroupKey(0, "abc"); got != "duration_0s_abc" {
		t.Errorf("VideoGroupKey with short hash = %q, want duration_0s_abc", got)
	}
}
