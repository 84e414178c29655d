package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"media-cleaner/internal/logging"
	"media-cleaner/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration.
type Config struct {
	// CachePath is the feature cache database file.
	CachePath string

	// CascadePath is the face cascade model file. Face detection is
	// disabled when the file is absent.
	CascadePath string

	// BlurThreshold is the score below which an image counts as blurry.
	BlurThreshold float64

	// HammingDistance is the grouping tolerance; 0 means exact hash match.
	HammingDistance int

	// Workers is the extraction pool size.
	Workers int

	// VideoToolsAvailable reports whether ffmpeg and ffprobe were found.
	// Without them video files still get a content signature but no
	// duration or frame hash.
	VideoToolsAvailable bool
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	logging.Info("media-cleaner %s (%s, built %s)", Version, Commit, BuildTime)
	logging.Debug("  Go %s on %s/%s, GOMAXPROCS=%d",
		GoVersion, runtime.GOOS, runtime.GOARCH, runtime.GOMAXPROCS(0))

	baseDir := executableDir()

	cachePath := getEnv("MEDIA_CACHE_DB", filepath.Join(baseDir, "media_cache.db"))
	cascadePath := getEnv("CASCADE_FILE", filepath.Join(baseDir, "facefinder"))
	blurThreshold := getEnvFloat("BLUR_THRESHOLD", 100.0)
	hamming := getEnvInt("HAMMING_DISTANCE", 0)

	cachePath, err := filepath.Abs(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache path: %w", err)
	}

	if blurThreshold <= 0 {
		return nil, fmt.Errorf("blur threshold must be positive, got %v", blurThreshold)
	}
	if hamming < 0 || hamming > 64 {
		return nil, fmt.Errorf("hamming distance must be in [0, 64], got %d", hamming)
	}

	if err := testWriteAccess(filepath.Dir(cachePath)); err != nil {
		logging.Warn("Cache directory not writable, scans will run uncached: %v", err)
	}

	if _, err := os.Stat(cascadePath); err != nil {
		logging.Warn("Face cascade model not found at %s, face detection disabled", cascadePath)
	}

	config := &Config{
		CachePath:           cachePath,
		CascadePath:         cascadePath,
		BlurThreshold:       blurThreshold,
		HammingDistance:     hamming,
		Workers:             workers.ForMixed(0),
		VideoToolsAvailable: checkVideoTools(),
	}

	logging.Info("  Cache DB:         %s", config.CachePath)
	logging.Info("  Cascade model:    %s", config.CascadePath)
	logging.Info("  Blur threshold:   %v", config.BlurThreshold)
	logging.Info("  Hamming distance: %d", config.HammingDistance)
	logging.Info("  Workers:          %d", config.Workers)

	return config, nil
}

// LogFatal logs a fatal error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// executableDir returns the directory of the running binary, falling back
// to the working directory.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// checkVideoTools probes for ffmpeg and ffprobe on PATH.
func checkVideoTools() bool {
	for _, tool := range []string{"ffprobe", "ffmpeg"} {
		path, err := exec.LookPath(tool)
		if err != nil {
			logging.Warn("%s not found in PATH, video duration and frame hashing disabled", tool)
			return false
		}
		logging.Debug("  %s path: %s", tool, path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := exec.CommandContext(ctx, "ffprobe", "-version").Run(); err != nil {
		logging.Warn("ffprobe failed to run: %v", err)
		return false
	}
	return true
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
