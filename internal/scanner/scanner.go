package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media-cleaner/internal/database"
	"media-cleaner/internal/enumerator"
	"media-cleaner/internal/features"
	"media-cleaner/internal/grouping"
	"media-cleaner/internal/logging"
	"media-cleaner/internal/mediatypes"
	"media-cleaner/internal/metrics"
)

// Options are the engine-level knobs shared by every run a Scanner starts.
type Options struct {
	// CachePath locates the feature cache store. An unopenable store
	// disables caching for the run instead of failing it.
	CachePath string

	// CascadePath locates the face cascade model. Empty disables face
	// detection; every image then reports zero faces.
	CascadePath string

	// Workers bounds the extraction pool. Values below 1 mean a single
	// sequential worker.
	Workers int
}

// Scanner starts scan runs. It is cheap to construct and safe to reuse;
// each run opens its own cache handle and owns it for the run's duration.
type Scanner struct {
	opts      Options
	extractor *features.Extractor
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scanner{
		opts:      opts,
		extractor: features.NewExtractor(opts.CascadePath),
	}
}

// Start begins a scan run in the background and returns its handle
// immediately. The context bounds external tool invocations and is polled
// at file boundaries alongside the handle's stop flag.
func (s *Scanner) Start(ctx context.Context, cfg Config) *Run {
	run := newRun()
	go s.execute(ctx, cfg, run)
	return run
}

// fileOutcome carries everything the aggregation step needs about one
// attempted file.
type fileOutcome struct {
	path     string
	fileType mediatypes.FileType
	size     int64
	err      error
	cacheHit bool

	// entry holds the file's features, whether reused from the cache or
	// freshly computed. nil when the stat failed.
	entry       *database.CacheEntry
	needsUpsert bool
}

type fileJob struct {
	path string
	out  chan fileOutcome
}

func (s *Scanner) execute(ctx context.Context, cfg Config, run *Run) {
	start := time.Now()
	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	run.emitLog("Scan started")

	db, err := database.New(ctx, s.opts.CachePath)
	if err != nil {
		// Logged once; the run proceeds with every file a miss.
		logging.Warn("Feature cache unavailable, scanning without it: %v", err)
		run.emitLog(fmt.Sprintf("feature cache unavailable: %v", err))
		metrics.CacheDegraded.Inc()
		db = nil
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error("failed to close feature cache: %v", err)
		}
	}()

	files, err := enumerator.Enumerate(cfg.Root, cfg.Recursive)
	if err != nil {
		run.emitLog(fmt.Sprintf("enumeration failed: %v", err))
		files = nil
	}
	total := len(files)
	run.emitLog(fmt.Sprintf("Files to scan: %d", total))

	result := newScanResult()
	collector := grouping.NewCollector()

	jobs := make(chan fileJob)
	pending := make(chan chan fileOutcome, s.opts.Workers)

	for i := 0; i < s.opts.Workers; i++ {
		go func() {
			for job := range jobs {
				job.out <- s.processFile(ctx, db, job.path)
			}
		}()
	}

	// The dispatcher observes cancellation at file boundaries only; files
	// already dispatched complete and count as processed.
	go func() {
		defer close(jobs)
		defer close(pending)
		for _, path := range files {
			if run.Stopped() || ctx.Err() != nil {
				return
			}
			out := make(chan fileOutcome, 1)
			pending <- out
			jobs <- fileJob{path: path, out: out}
		}
	}()

	processed := 0
	for out := range pending {
		outcome := <-out
		processed++
		s.aggregate(db, cfg, run, result, collector, outcome)
		run.emitProgress(Progress{
			Processed: processed,
			Total:     total,
			Filename:  filepath.Base(outcome.path),
		})
	}

	if run.Stopped() || ctx.Err() != nil {
		run.emitLog("Scan stopped before completion")
		metrics.ScanCancellations.Inc()
	}

	result.ScannedCount = processed
	result.SimilarGroups = collector.SimilarGroups()
	result.DuplicateVideos = collector.DuplicateVideos()

	metrics.GroupsEmitted.WithLabelValues("similar_images").Set(float64(len(result.SimilarGroups)))
	metrics.GroupsEmitted.WithLabelValues("duplicate_videos").Set(float64(len(result.DuplicateVideos)))
	metrics.ScanLastRunDuration.Set(time.Since(start).Seconds())

	logging.Info("Scan finished: %d/%d files in %v", processed, total, time.Since(start))
	run.finish(result)
}

// processFile stats one file and either reuses its valid cache entry or
// extracts all features for its type. Cache reads may run concurrently
// across workers; writes happen later, on the aggregation goroutine.
func (s *Scanner) processFile(ctx context.Context, db *database.Database, path string) fileOutcome {
	fileType := mediatypes.TypeOf(path)
	outcome := fileOutcome{path: path, fileType: fileType}

	info, err := os.Stat(path)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.size = info.Size()
	mtime := float64(info.ModTime().UnixNano()) / 1e9

	if entry, err := db.GetEntry(ctx, path); err == nil {
		if entry.Matches(mtime, outcome.size) {
			metrics.CacheHits.Inc()
			outcome.cacheHit = true
			outcome.entry = entry
			return outcome
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		metrics.CacheDegraded.Inc()
		logging.Debug("cache lookup failed for %s, recomputing: %v", path, err)
	}
	metrics.CacheMisses.Inc()

	entry := &database.CacheEntry{
		Path:         path,
		LastModified: mtime,
		FileSize:     outcome.size,
	}

	switch fileType {
	case mediatypes.FileTypeImage:
		feats := s.extractor.Image(path)
		entry.BlurScore = &feats.BlurScore
		if feats.PHash != "" {
			entry.PHash = &feats.PHash
		}
		count := int64(feats.FaceCount)
		entry.FaceCount = &count
	case mediatypes.FileTypeVideo:
		feats := s.extractor.Video(ctx, path, outcome.size)
		entry.VideoHash = &feats.Signature
		entry.VideoDuration = feats.Duration
		entry.VideoFrameHash = feats.FrameHash
	}

	outcome.entry = entry
	outcome.needsUpsert = true
	return outcome
}

// aggregate merges one file's outcome into the run's accumulating result
// and persists fresh extractions. Runs on a single goroutine, so upserts
// are serialized and event order follows file order.
func (s *Scanner) aggregate(
	db *database.Database,
	cfg Config,
	run *Run,
	result *ScanResult,
	collector *grouping.Collector,
	outcome fileOutcome,
) {
	if outcome.err != nil {
		run.emitLog(fmt.Sprintf("error (%s): %v", filepath.Base(outcome.path), outcome.err))
		metrics.ScanFileErrors.Inc()
		return
	}

	metrics.ScanFilesProcessed.WithLabelValues(string(outcome.fileType)).Inc()

	// The upsert is unconditional on recomputation, even when sub-features
	// failed and stayed null. A failed write degrades to uncached. The
	// write uses a fresh context so a stop request cannot interrupt a
	// file's persistence mid-way; UpsertEntry applies its own timeout.
	if outcome.needsUpsert && db != nil {
		if err := db.UpsertEntry(context.Background(), outcome.entry); err != nil {
			metrics.CacheDegraded.Inc()
			logging.Warn("failed to cache features for %s: %v", outcome.path, err)
		}
	}

	entry := outcome.entry

	if entry.BlurScore != nil {
		faceCount := 0
		if entry.FaceCount != nil {
			faceCount = int(*entry.FaceCount)
		}
		phash := ""
		if entry.PHash != nil {
			phash = *entry.PHash
		}

		meta := grouping.ImageMeta{
			BlurScore: *entry.BlurScore,
			FaceCount: faceCount,
			Size:      outcome.size,
			PHash:     phash,
		}
		result.ImageMetadata[outcome.path] = meta

		if *entry.BlurScore < cfg.BlurThreshold {
			result.BlurImages = append(result.BlurImages, BlurImage{
				Path:      outcome.path,
				BlurScore: *entry.BlurScore,
				FaceCount: faceCount,
			})
		}

		collector.AddImage(outcome.path, meta)
	}

	if entry.VideoDuration != nil && entry.VideoFrameHash != nil {
		collector.AddVideo(outcome.path, *entry.VideoDuration, *entry.VideoFrameHash)
	}
}
