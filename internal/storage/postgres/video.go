package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"yt_digest/internal/domain"
)

type VideoStore struct {
	db *sqlx.DB
}

func NewVideoStore(db *sqlx.DB) *VideoStore {
	return &VideoStore{db: db}
}

// Upsert stores the video keyed by its id. An unavailable transcript never
// replaces one captured earlier.
func (s *VideoStore) Upsert(ctx context.Context, video *domain.VideoRecord, unavailable string) (int64, error) {
	query := `
		INSERT INTO videos (video_id, canonical_url, title, transcript)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id) DO UPDATE SET
			canonical_url = EXCLUDED.canonical_url,
			title = CASE WHEN EXCLUDED.title = '' THEN videos.title ELSE EXCLUDED.title END,
			transcript = CASE
				WHEN EXCLUDED.transcript = $5 AND videos.transcript <> '' THEN videos.transcript
				ELSE EXCLUDED.transcript
			END,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		video.VideoID,
		video.CanonicalURL,
		video.Title,
		video.Transcript,
		unavailable,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetByVideoID returns nil when the video was never stored.
func (s *VideoStore) GetByVideoID(ctx context.Context, videoID string) (*domain.VideoRecord, error) {
	query := `
		SELECT id, video_id, title, canonical_url, transcript, created_at, updated_at
		FROM videos
		WHERE video_id = $1`

	var video domain.VideoRecord
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &video, query, videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}
