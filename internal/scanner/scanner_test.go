package scanner

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writePNG encodes img to a new file under dir and returns its path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// uniformImage is a flat gray square. Its Laplacian variance is exactly
// zero, so it is blurry under any positive threshold.
func uniformImage(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

// rampX ramps from black to white left to right.
func rampX(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / size)})
		}
	}
	return img
}

// rampY ramps from black to white top to bottom.
func rampY(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(y * 255 / size)})
		}
	}
	return img
}

// rampDiag ramps from black to white corner to corner.
func rampDiag(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) * 255 / (2 * size))})
		}
	}
	return img
}

// library is one synthetic photo folder: a duplicated ramp, two distinct
// ramps and a uniform (blurry) frame.
type library struct {
	dir   string
	dupA  string
	dupB  string
	vert  string
	diag  string
	flat  string
	total int
}

func buildLibrary(t *testing.T) library {
	t.Helper()

	dir := t.TempDir()
	return library{
		dir:   dir,
		dupA:  writePNG(t, dir, "dup_a.png", rampX(64)),
		dupB:  writePNG(t, dir, "dup_b.png", rampX(64)),
		vert:  writePNG(t, dir, "vert.png", rampY(64)),
		diag:  writePNG(t, dir, "diag.png", rampDiag(64)),
		flat:  writePNG(t, dir, "flat.png", uniformImage(64)),
		total: 5,
	}
}

// testConfig uses a threshold only a perfectly flat image falls below, so
// the quantization noise in the ramps keeps them out of the blurry list.
func testConfig(root string) Config {
	return Config{
		Root:          root,
		Recursive:     true,
		BlurThreshold: 0.001,
	}
}

func newTestScanner(t *testing.T, workers int) *Scanner {
	t.Helper()
	return New(Options{
		CachePath: filepath.Join(t.TempDir(), "cache.db"),
		Workers:   workers,
	})
}

// awaitResult waits for the run to finish and returns its result.
func awaitResult(t *testing.T, run *Run) *ScanResult {
	t.Helper()

	select {
	case <-run.Done():
	case <-time.After(30 * time.Second):
		t.Fatal("scan did not finish in time")
	}

	result := run.Result()
	if result == nil {
		t.Fatal("Result() returned nil after Done closed")
	}
	return result
}

func TestScanEndToEnd(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 2)

	run := s.Start(context.Background(), testConfig(lib.dir))
	result := awaitResult(t, run)

	if result.ScannedCount != lib.total {
		t.Errorf("ScannedCount = %d, want %d", result.ScannedCount, lib.total)
	}
	if len(result.ImageMetadata) != lib.total {
		t.Errorf("ImageMetadata has %d entries, want %d", len(result.ImageMetadata), lib.total)
	}

	if len(result.BlurImages) != 1 {
		t.Fatalf("BlurImages = %+v, want exactly the uniform image", result.BlurImages)
	}
	blurry := result.BlurImages[0]
	if blurry.Path != lib.flat {
		t.Errorf("blurry image = %s, want %s", blurry.Path, lib.flat)
	}
	if blurry.BlurScore != 0 {
		t.Errorf("uniform image blur score = %v, want 0", blurry.BlurScore)
	}

	if len(result.SimilarGroups) != 1 {
		t.Fatalf("SimilarGroups = %+v, want one group", result.SimilarGroups)
	}
	for hash, members := range result.SimilarGroups {
		if len(members) != 2 {
			t.Fatalf("group %s has %d members, want 2", hash, len(members))
		}
		got := map[string]bool{members[0].Path: true, members[1].Path: true}
		if !got[lib.dupA] || !got[lib.dupB] {
			t.Errorf("group %s members = %v, want the duplicated ramp pair", hash, members)
		}

		// Identical features throughout, so the path breaks the tie.
		if best := result.BestShot(members); best != lib.dupA {
			t.Errorf("BestShot = %s, want %s", best, lib.dupA)
		}
	}

	if len(result.DuplicateVideos) != 0 {
		t.Errorf("DuplicateVideos = %+v, want none for an image-only folder", result.DuplicateVideos)
	}
}

func TestScanProgressOrdered(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 3)

	run := s.Start(context.Background(), testConfig(lib.dir))
	awaitResult(t, run)

	var events []Progress
	for p := range run.Progress() {
		events = append(events, p)
	}

	if len(events) != lib.total {
		t.Fatalf("got %d progress events, want %d", len(events), lib.total)
	}
	for i, p := range events {
		if p.Processed != i+1 {
			t.Errorf("event %d: Processed = %d, want %d", i, p.Processed, i+1)
		}
		if p.Total != lib.total {
			t.Errorf("event %d: Total = %d, want %d", i, p.Total, lib.total)
		}
		if p.Filename == "" {
			t.Errorf("event %d: empty filename", i)
		}
	}
}

func TestScanReusesCacheOnRescan(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 2)
	cfg := testConfig(lib.dir)

	first := awaitResult(t, s.Start(context.Background(), cfg))
	firstVert := first.ImageMetadata[lib.vert]

	// Replace the file's bytes with same-size garbage and restore its
	// mtime. A validity check on (mtime, size) alone must keep serving
	// the original features.
	info, err := os.Stat(lib.vert)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	garbage := bytes.Repeat([]byte{0xAB}, int(info.Size()))
	if err := os.WriteFile(lib.vert, garbage, 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := os.Chtimes(lib.vert, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second := awaitResult(t, s.Start(context.Background(), cfg))

	if second.ScannedCount != lib.total {
		t.Errorf("ScannedCount = %d, want %d", second.ScannedCount, lib.total)
	}
	secondVert, ok := second.ImageMetadata[lib.vert]
	if !ok {
		t.Fatal("rescan lost the overwritten image's metadata")
	}
	if secondVert != firstVert {
		t.Errorf("cached features changed across rescan: %+v != %+v", secondVert, firstVert)
	}
	if len(second.SimilarGroups) != 1 {
		t.Errorf("rescan SimilarGroups = %+v, want the same single group", second.SimilarGroups)
	}
}

func TestScanRecomputesChangedFile(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 2)
	cfg := testConfig(lib.dir)

	awaitResult(t, s.Start(context.Background(), cfg))

	// Changing the size invalidates the cache entry. The new bytes do not
	// decode, so the recomputed features carry the failure sentinel and no
	// hash, dissolving the duplicate pair.
	if err := os.WriteFile(lib.dupB, []byte("no longer an image"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	second := awaitResult(t, s.Start(context.Background(), cfg))

	if second.ScannedCount != lib.total {
		t.Errorf("ScannedCount = %d, want %d", second.ScannedCount, lib.total)
	}
	meta, ok := second.ImageMetadata[lib.dupB]
	if !ok {
		t.Fatal("changed image missing from metadata")
	}
	if meta.BlurScore != 1000.0 {
		t.Errorf("changed image blur score = %v, want decode failure sentinel", meta.BlurScore)
	}
	if meta.PHash != "" {
		t.Errorf("changed image hash = %q, want empty after decode failure", meta.PHash)
	}
	if len(second.SimilarGroups) != 0 {
		t.Errorf("SimilarGroups = %+v, want none once the pair is broken", second.SimilarGroups)
	}
}

func TestScanCanceledContextBeforeStart(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := awaitResult(t, s.Start(ctx, testConfig(lib.dir)))

	if result.ScannedCount != 0 {
		t.Errorf("ScannedCount = %d, want 0 for a pre-canceled run", result.ScannedCount)
	}
	if result.SimilarGroups == nil || result.DuplicateVideos == nil || result.ImageMetadata == nil {
		t.Error("canceled run must still yield initialized result maps")
	}
}

func TestScanStopYieldsPartialResult(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 1)

	run := s.Start(context.Background(), testConfig(lib.dir))
	run.Stop()

	result := awaitResult(t, run)

	if !run.Stopped() {
		t.Error("Stopped() = false after Stop()")
	}
	if result.ScannedCount > lib.total {
		t.Errorf("ScannedCount = %d exceeds file count %d", result.ScannedCount, lib.total)
	}
	if len(result.ImageMetadata) != result.ScannedCount {
		t.Errorf("metadata entries = %d, want one per scanned file %d",
			len(result.ImageMetadata), result.ScannedCount)
	}
}

func TestScanSurvivesUnopenableCache(t *testing.T) {
	lib := buildLibrary(t)

	// A cache path inside a missing directory cannot be opened; the run
	// degrades to cache-less scanning instead of failing.
	s := New(Options{
		CachePath: filepath.Join(t.TempDir(), "missing", "deep", "cache.db"),
		Workers:   2,
	})

	result := awaitResult(t, s.Start(context.Background(), testConfig(lib.dir)))

	if result.ScannedCount != lib.total {
		t.Errorf("ScannedCount = %d, want %d without a cache", result.ScannedCount, lib.total)
	}
	if len(result.SimilarGroups) != 1 {
		t.Errorf("SimilarGroups = %+v, want the duplicate pair", result.SimilarGroups)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := newTestScanner(t, 1)

	result := awaitResult(t, s.Start(context.Background(), testConfig(filepath.Join(t.TempDir(), "gone"))))

	if result.ScannedCount != 0 {
		t.Errorf("ScannedCount = %d, want 0 for a missing root", result.ScannedCount)
	}
}

func TestReclusterMatchesScanAtZeroThreshold(t *testing.T) {
	lib := buildLibrary(t)
	s := newTestScanner(t, 2)

	result := awaitResult(t, s.Start(context.Background(), testConfig(lib.dir)))

	regrouped := result.ReclusterImages(0)
	if len(regrouped) != len(result.SimilarGroups) {
		t.Fatalf("recluster at 0 yielded %d groups, scan yielded %d",
			len(regrouped), len(result.SimilarGroups))
	}
	for hash, members := range result.SimilarGroups {
		if len(regrouped[hash]) != len(members) {
			t.Errorf("group %s: recluster has %d members, scan had %d",
				hash, len(regrouped[hash]), len(members))
		}
	}

	// Reclustering reads only collected metadata, never the filesystem.
	if err := os.RemoveAll(lib.dir); err != nil {
		t.Fatalf("remove library: %v", err)
	}
	if again := result.ReclusterImages(2); len(again) == 0 {
		t.Error("recluster after library removal lost the duplicate pair")
	}
}

func TestRunHandle(t *testing.T) {
	r := newRun()

	if r.Result() != nil {
		t.Error("Result() before finish should be nil")
	}
	if r.Stopped() {
		t.Error("fresh run reports stopped")
	}

	r.Stop()
	if !r.Stopped() {
		t.Error("Stopped() = false after Stop()")
	}

	r.emitProgress(Progress{Processed: 1, Total: 1, Filename: "a.png"})
	r.emitLog("one line")

	want := newScanResult()
	r.finish(want)

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after finish")
	}
	if r.Result() != want {
		t.Error("Result() does not return the finished result")
	}

	var events int
	for range r.Progress() {
		events++
	}
	if events != 1 {
		t.Errorf("drained %d progress events, want 1", events)
	}
	var lines int
	for range r.Logs() {
		lines++
	}
	if lines != 1 {
		t.Errorf("drained %d log lines, want 1", lines)
	}
}

func TestRunEmitNeverBlocks(t *testing.T) {
	r := newRun()

	// Nobody drains; emission past the buffer must drop, not stall.
	for i := 0; i < progressBuffer*2; i++ {
		r.emitProgress(Progress{Processed: i})
	}
	for i := 0; i < logBuffer*2; i++ {
		r.emitLog("line")
	}

	r.finish(newScanResult())
}
