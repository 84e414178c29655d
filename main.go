package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-cleaner/internal/logging"
	"media-cleaner/internal/report"
	"media-cleaner/internal/scanner"
	"media-cleaner/internal/startup"

	"github.com/schollz/progressbar/v3"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	var (
		root      = flag.String("root", ".", "directory to scan")
		recursive = flag.Bool("recursive", true, "descend into subdirectories")
		blur      = flag.Float64("blur-threshold", config.BlurThreshold, "blur score below which an image counts as blurry")
		hamming   = flag.Int("hamming", config.HammingDistance, "hamming distance for similarity grouping, 0 for exact match")
		cache     = flag.String("cache", config.CachePath, "feature cache database file")
		cascade   = flag.String("cascade", config.CascadePath, "face cascade model file")
		poolSize  = flag.Int("workers", config.Workers, "extraction pool size")
	)
	flag.Parse()
	if flag.NArg() > 0 {
		*root = flag.Arg(0)
	}

	if *hamming < 0 || *hamming > 64 {
		startup.LogFatal("hamming distance must be in [0, 64], got %d", *hamming)
	}

	// Ctrl-C stops the scan at the next file boundary; partial results
	// are still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scanner.New(scanner.Options{
		CachePath:   *cache,
		CascadePath: *cascade,
		Workers:     *poolSize,
	})

	run := s.Start(ctx, scanner.Config{
		Root:          *root,
		Recursive:     *recursive,
		BlurThreshold: *blur,
	})

	go func() {
		for line := range run.Logs() {
			logging.Debug("scan: %s", line)
		}
	}()

	var bar *progressbar.ProgressBar
	for p := range run.Progress() {
		if bar == nil {
			bar = progressbar.Default(int64(p.Total), "Scanning")
		}
		if err := bar.Set(p.Processed); err != nil {
			logging.Debug("progress bar: %v", err)
		}
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			logging.Debug("progress bar: %v", err)
		}
	}

	<-run.Done()
	result := run.Result()

	if *hamming > 0 {
		result.SimilarGroups = result.ReclusterImages(*hamming)
	}

	fmt.Println(report.Render(result))
	logging.Info("Finished in %v", time.Since(startTime).Round(time.Millisecond))

	if ctx.Err() != nil {
		os.Exit(130)
	}
}
