package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yt_digest/internal/chat"
	"yt_digest/internal/domain"
	"yt_digest/internal/prompts"
	"yt_digest/internal/source/youtube"
)

// ErrSelectionCancelled is returned when the user dismisses the prompt picker.
var ErrSelectionCancelled = errors.New("prompt selection cancelled")

// Stores persists videos, summaries and delivery outcomes. A nil *Stores
// runs the service without a database.
type Stores struct {
	Videos     VideoStore
	Summaries  SummaryStore
	Deliveries DeliveryStore
	Tx         TransactionManager
}

type DigestService struct {
	extractor  Extractor
	selector   PromptSelector
	generator  Generator
	attacher   PageAttacher
	dispatcher Dispatcher
	stores     *Stores
	prompts    []domain.PromptSelection
	logger     *slog.Logger
}

func NewDigestService(
	extractor Extractor,
	selector PromptSelector,
	generator Generator,
	attacher PageAttacher,
	dispatcher Dispatcher,
	stores *Stores,
	promptList []domain.PromptSelection,
	logger *slog.Logger,
) *DigestService {
	return &DigestService{
		extractor:  extractor,
		selector:   selector,
		generator:  generator,
		attacher:   attacher,
		dispatcher: dispatcher,
		stores:     stores,
		prompts:    prompts.Normalize(promptList),
		logger:     logger.With("component", "digest"),
	}
}

// Run extracts the video, asks the chat page to summarize it with the
// selected prompt and delivers the answer.
func (s *DigestService) Run(ctx context.Context, videoURL string) (*domain.RunStats, error) {
	startTime := time.Now()

	video, err := s.extractor.Extract(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("extract video: %w", err)
	}

	stats := &domain.RunStats{
		VideoURL:   video.CanonicalURL,
		Transcript: video.Transcript != youtube.TranscriptUnavailable,
	}
	s.logger.Info("video extracted",
		"title", video.Title,
		"url", video.CanonicalURL,
		"transcript", stats.Transcript,
	)

	idx, err := s.selector.Select(ctx, s.prompts)
	if err != nil {
		return stats, fmt.Errorf("select prompt: %w", err)
	}
	if idx == nil {
		return stats, ErrSelectionCancelled
	}
	prompt := s.prompts[*idx]
	s.logger.Debug("prompt selected", "name", prompt.Name)

	completion, err := s.generator.Generate(ctx, chat.ComposeMessage(prompt.Content, *video))
	if err != nil {
		return stats, fmt.Errorf("generate summary: %w", err)
	}
	if completion.Title == "" {
		completion.Title = video.Title
	}
	if completion.VideoURL == "" {
		completion.VideoURL = video.CanonicalURL
	}

	if err := s.publish(ctx, completion, video, stats); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(startTime)
	s.logStats("run completed", stats)

	return stats, nil
}

// Watch attaches to an open chat page whose URL starts with prefix and
// delivers the next completed answer. With current set, the last answer
// already on the page counts as the one to watch.
func (s *DigestService) Watch(ctx context.Context, prefix string, current bool) (*domain.RunStats, error) {
	if s.attacher == nil {
		return nil, errors.New("watch: no browser to attach to")
	}
	startTime := time.Now()

	page, err := s.attacher.Attach(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("attach to chat page: %w", err)
	}
	defer page.Close()

	snap, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot chat page: %w", err)
	}
	baseline := len(snap.Find(chat.AnswerSelector))
	if current && baseline > 0 {
		baseline--
	}
	s.logger.Info("watching chat page", "answers", baseline)

	completion, err := s.generator.Await(ctx, page, baseline)
	if err != nil {
		return nil, fmt.Errorf("await answer: %w", err)
	}

	stats := &domain.RunStats{VideoURL: youtube.CanonicalURL(completion.VideoURL)}
	if err := s.publish(ctx, completion, nil, stats); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(startTime)
	s.logStats("watch completed", stats)

	return stats, nil
}

// publish persists the completion when storage is configured and hands it
// to the dispatcher. Destinations that already accepted an identical
// summary are skipped.
func (s *DigestService) publish(ctx context.Context, completion *chat.Completion, video *domain.VideoRecord, stats *domain.RunStats) error {
	summary := &domain.Summary{
		VideoURL:    youtube.CanonicalURL(completion.VideoURL),
		Title:       completion.Title,
		HTML:        completion.HTML,
		ContentHash: domain.HashContent(completion.HTML),
	}

	var skip []string
	if s.stores != nil {
		if err := s.saveSummary(ctx, summary, video, stats); err != nil {
			return fmt.Errorf("store summary: %w", err)
		}
		if stats.Duplicate {
			delivered, err := s.stores.Deliveries.Delivered(ctx, summary.ID)
			if err != nil {
				s.logger.Warn("failed to load previous deliveries", "summary_id", summary.ID, "error", err)
			}
			skip = delivered
		}
	}

	reports := s.dispatcher.Dispatch(ctx, summary, skip)
	stats.Skipped = len(skip)
	for _, r := range reports {
		if r.OK() {
			stats.Delivered++
		} else {
			stats.Failed++
		}
	}

	if s.stores != nil && len(reports) > 0 {
		if err := s.stores.Deliveries.Record(context.WithoutCancel(ctx), summary.ID, reports); err != nil {
			s.logger.Warn("failed to record deliveries", "summary_id", summary.ID, "error", err)
		}
	}

	return nil
}

func (s *DigestService) saveSummary(ctx context.Context, summary *domain.Summary, video *domain.VideoRecord, stats *domain.RunStats) error {
	return s.stores.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		switch {
		case video != nil:
			id, err := s.stores.Videos.Upsert(txCtx, video, youtube.TranscriptUnavailable)
			if err != nil {
				return fmt.Errorf("upsert video: %w", err)
			}
			summary.VideoRef = &id
		default:
			if videoID, ok := youtube.VideoID(summary.VideoURL); ok {
				known, err := s.stores.Videos.GetByVideoID(txCtx, videoID)
				if err != nil {
					return fmt.Errorf("get video: %w", err)
				}
				if known != nil {
					summary.VideoRef = &known.ID
				}
			}
		}

		id, isNew, err := s.stores.Summaries.Create(txCtx, summary)
		if err != nil {
			return fmt.Errorf("create summary: %w", err)
		}
		summary.ID = id
		stats.SummaryID = id
		stats.Duplicate = !isNew
		return nil
	})
}

func (s *DigestService) logStats(msg string, stats *domain.RunStats) {
	s.logger.Info(msg,
		"url", stats.VideoURL,
		"summary_id", stats.SummaryID,
		"duplicate", stats.Duplicate,
		"delivered", stats.Delivered,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)
}
