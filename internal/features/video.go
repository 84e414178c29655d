package features

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"media-cleaner/internal/logging"
)

// videoHeadBytes is how much of the file participates in the legacy content
// signature alongside the size.
const videoHeadBytes = 64 * 1024

// VideoSignature computes the legacy content signature: MD5 over the decimal
// file size concatenated with the first 64KB of raw bytes. It is an identity
// hint, not the duplicate-grouping key. On read failure it degrades to the
// bare size string so the field is never empty.
func VideoSignature(path string, size int64) string {
	start := time.Now()

	hasher := md5.New()
	hasher.Write([]byte(strconv.FormatInt(size, 10)))

	f, err := os.Open(path)
	if err != nil {
		observe("video_signature", start, true)
		return strconv.FormatInt(size, 10)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close video file %s: %v", path, err)
		}
	}()

	if _, err := io.CopyN(hasher, f, videoHeadBytes); err != nil && err != io.EOF {
		observe("video_signature", start, true)
		return strconv.FormatInt(size, 10)
	}

	observe("video_signature", start, false)
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// AnalyzeVideo derives a video's duration and mid-frame perceptual hash.
//
// Duration is frame count over frame rate from container metadata; nil when
// either is non-positive or the container cannot be probed. The frame hash
// covers the single frame nearest the temporal midpoint; nil when the
// duration is unknown or the frame cannot be decoded.
func AnalyzeVideo(ctx context.Context, path string) (*float64, *string) {
	start := time.Now()

	fps, frames, err := probeVideo(ctx, path)
	if err != nil {
		logging.Debug("ffprobe failed for %s: %v", path, err)
		observe("video_content", start, true)
		return nil, nil
	}
	if fps <= 0 || frames <= 0 {
		observe("video_content", start, true)
		return nil, nil
	}

	duration := frames / fps

	midFrame := float64(int(frames / 2))
	frameHash, err := hashFrameAt(ctx, path, midFrame/fps)
	observe("video_content", start, err != nil)
	if err != nil {
		logging.Debug("mid-frame extraction failed for %s: %v", path, err)
		return &duration, nil
	}

	return &duration, &frameHash
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// probeVideo runs ffprobe and returns the first video stream's frame rate
// and frame count. Containers that omit nb_frames get it reconstructed from
// the reported duration.
func probeVideo(ctx context.Context, path string) (fps, frames float64, err error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w", err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, 0, fmt.Errorf("ffprobe parse: %w", err)
	}

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}

		fps = parseRational(stream.AvgFrameRate)
		if fps <= 0 {
			fps = parseRational(stream.RFrameRate)
		}

		frames, _ = strconv.ParseFloat(strings.TrimSpace(stream.NbFrames), 64)
		if frames <= 0 && fps > 0 {
			streamDuration := parseSeconds(stream.Duration)
			if streamDuration <= 0 {
				streamDuration = parseSeconds(result.Format.Duration)
			}
			frames = streamDuration * fps
		}

		return fps, frames, nil
	}

	return 0, 0, fmt.Errorf("no video stream in %s", path)
}

// hashFrameAt decodes the frame at the given timestamp via ffmpeg's
// image2pipe output and returns its perceptual hash.
func hashFrameAt(ctx context.Context, path string, seconds float64) (string, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seconds),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return "", fmt.Errorf("ffmpeg produced no frame for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return "", fmt.Errorf("failed to decode extracted frame: %w", err)
	}

	return hashImage(img)
}

// parseRational parses ffprobe's "num/den" frame-rate form, tolerating a
// plain decimal as well.
func parseRational(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "0/0" {
		return 0
	}

	if num, den, ok := strings.Cut(value, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseSeconds(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}
