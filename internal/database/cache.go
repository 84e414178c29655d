package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned by GetEntry when no row exists for a path.
var ErrNotFound = errors.New("cache entry not found")

// GetEntry retrieves the cached entry for a path. The path is normalized
// before lookup. Returns ErrNotFound when the path has never been cached.
func (d *Database) GetEntry(ctx context.Context, path string) (*CacheEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_entry", start, err) }()

	if d == nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	SELECT file_path, last_modified, file_size, blur_score, phash, video_hash,
	       face_count, video_duration, video_frame_hash
	FROM media_cache WHERE file_path = ?
	`

	var entry CacheEntry
	var blurScore, videoDuration sql.NullFloat64
	var phash, videoHash, videoFrameHash sql.NullString
	var faceCount sql.NullInt64

	err = d.db.QueryRowContext(ctx, query, NormalizePath(path)).Scan(
		&entry.Path, &entry.LastModified, &entry.FileSize,
		&blurScore, &phash, &videoHash,
		&faceCount, &videoDuration, &videoFrameHash,
	)
	if err == sql.ErrNoRows {
		err = nil // not a storage failure
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if blurScore.Valid {
		entry.BlurScore = &blurScore.Float64
	}
	if phash.Valid {
		entry.PHash = &phash.String
	}
	if videoHash.Valid {
		entry.VideoHash = &videoHash.String
	}
	if faceCount.Valid {
		entry.FaceCount = &faceCount.Int64
	}
	if videoDuration.Valid {
		entry.VideoDuration = &videoDuration.Float64
	}
	if videoFrameHash.Valid {
		entry.VideoFrameHash = &videoFrameHash.String
	}

	return &entry, nil
}

// IsValid reports whether a stored entry exists for path and its
// (modification time, size) fingerprint matches the given stat within
// tolerance. Storage errors propagate so callers can degrade to a miss.
func (d *Database) IsValid(ctx context.Context, path string, mtime float64, size int64) (bool, error) {
	entry, err := d.GetEntry(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry.Matches(mtime, size), nil
}

// UpsertEntry replaces the whole row for the entry's path. The write is
// durable before the call returns. Partial updates are deliberately not
// supported; recomputation always overwrites every field.
func (d *Database) UpsertEntry(ctx context.Context, entry *CacheEntry) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_entry", start, err) }()

	if d == nil {
		return errors.New("cache unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	INSERT OR REPLACE INTO media_cache
	(file_path, last_modified, file_size, blur_score, phash, video_hash,
	 face_count, video_duration, video_frame_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = d.db.ExecContext(ctx, query,
		NormalizePath(entry.Path),
		entry.LastModified,
		entry.FileSize,
		nullFloat(entry.BlurScore),
		nullString(entry.PHash),
		nullString(entry.VideoHash),
		nullInt(entry.FaceCount),
		nullFloat(entry.VideoDuration),
		nullString(entry.VideoFrameHash),
	)
	return err
}

// EntryCount returns the number of cached rows. Used by hosts for
// diagnostics; orphan rows for deleted files are expected and harmless.
func (d *Database) EntryCount(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("entry_count", start, err) }()

	if d == nil {
		return 0, errors.New("cache unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int64
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_cache").Scan(&count)
	return count, err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
