package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"yt_digest/internal/domain"
)

type SummaryStore struct {
	db *sqlx.DB
}

func NewSummaryStore(db *sqlx.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Create inserts the summary unless the same content was already stored for
// the video. It returns the row id and whether the row is new.
func (s *SummaryStore) Create(ctx context.Context, summary *domain.Summary) (int64, bool, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO summaries (video_ref, video_url, title, html, content_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_url, content_hash) DO NOTHING
		RETURNING id`

	var id int64
	err := exec.QueryRowxContext(ctx, query,
		summary.VideoRef,
		summary.VideoURL,
		summary.Title,
		summary.HTML,
		summary.ContentHash,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM summaries WHERE video_url = $1 AND content_hash = $2",
			summary.VideoURL, summary.ContentHash,
		).Scan(&id)
		if err != nil {
			return 0, false, err
		}
		return id, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	return id, true, nil
}
