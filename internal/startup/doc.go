// Package startup handles configuration loading and startup logging.
//
// All configuration is loaded from environment variables via [LoadConfig];
// CLI hosts may override individual fields with flags afterward. The
// following environment variables are supported:
//
//   - MEDIA_CACHE_DB: Path to the feature cache database
//     (default: media_cache.db next to the executable)
//   - CASCADE_FILE: Path to the face cascade model (default: facefinder
//     next to the executable; face detection is disabled if absent)
//   - BLUR_THRESHOLD: Blur score below which an image counts as blurry
//     (default: 100)
//   - HAMMING_DISTANCE: Hamming distance for image similarity grouping,
//     0 means exact hash match (default: 0)
//   - SCAN_WORKERS: Extraction pool size (default: one per CPU)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
package startup
