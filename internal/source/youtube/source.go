package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yt_digest/internal/domain"
	"yt_digest/internal/dom"
)

const SourceID = "youtube"

var ErrIncompatiblePage = errors.New("page is not a video page")

// Config holds YouTube source configuration.
type Config struct {
	Timings Timings
}

// Source captures video data from watch pages.
type Source struct {
	opener   dom.Opener
	revealer *Revealer
	scraper  *Scraper
	logger   *slog.Logger
}

// New creates a new YouTube source. opener may be nil when only
// GetVideoData is used on pages opened elsewhere.
func New(cfg Config, opener dom.Opener, logger *slog.Logger) *Source {
	logger = logger.With("source", SourceID)
	return &Source{
		opener:   opener,
		revealer: NewRevealer(cfg.Timings, logger),
		scraper:  NewScraper(cfg.Timings, logger),
		logger:   logger,
	}
}

// Extract opens the watch page for videoURL and captures it.
func (s *Source) Extract(ctx context.Context, videoURL string) (*domain.VideoRecord, error) {
	if s.opener == nil {
		return nil, errors.New("youtube source has no browser")
	}

	canonical := CanonicalURL(videoURL)
	if _, ok := VideoID(canonical); !ok {
		return nil, fmt.Errorf("%s: %w", videoURL, ErrIncompatiblePage)
	}

	page, err := s.opener.OpenPage(ctx, canonical)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Warn("failed to close page", "error", err)
		}
	}()

	return s.GetVideoData(ctx, page)
}

// GetVideoData reads title, canonical URL and transcript from an open watch
// page. Reveal failures are logged and the scrape still runs; a transcript
// that cannot be read is replaced by TranscriptUnavailable.
func (s *Source) GetVideoData(ctx context.Context, page *dom.Page) (*domain.VideoRecord, error) {
	location, err := page.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page url: %w", err)
	}
	id, ok := VideoID(location)
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, ErrIncompatiblePage)
	}

	title, err := page.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page title: %w", err)
	}

	state, err := s.revealer.Reveal(ctx, page)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("could not open transcript automatically",
			"state", state,
			"error", err,
		)
	}

	record := &domain.VideoRecord{
		VideoID:      id,
		Title:        strings.TrimSuffix(title, " - YouTube"),
		CanonicalURL: CanonicalURL(location),
		Transcript:   s.scraper.Transcript(ctx, page),
	}

	s.logger.Info("captured video",
		"video_id", record.VideoID,
		"title", record.Title,
		"transcript", record.Transcript != TranscriptUnavailable,
	)

	return record, nil
}
