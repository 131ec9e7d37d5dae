package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yt_digest/internal/domain"
	"yt_digest/internal/dom"
	"yt_digest/internal/poll"
)

// TranscriptUnavailable replaces the transcript when it cannot be read.
const TranscriptUnavailable = "<Transcript unavailable>"

var ErrNoSegments = errors.New("transcript panel has no segments")

// Scraper reads the segments of an open transcript panel.
type Scraper struct {
	timings Timings
	logger  *slog.Logger
}

func NewScraper(timings Timings, logger *slog.Logger) *Scraper {
	return &Scraper{timings: timings, logger: logger}
}

// Segments scrolls the panel to its end so every segment renders, then
// reads them in document order.
func (s *Scraper) Segments(ctx context.Context, page *dom.Page) ([]domain.TranscriptSegment, error) {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	panel, err := snap.Require(PanelSelector)
	if err != nil {
		return nil, fmt.Errorf("transcript panel: %w", err)
	}

	if err := panel.ScrollToEnd(ctx); err != nil {
		return nil, fmt.Errorf("scroll transcript panel: %w", err)
	}
	if err := poll.Sleep(ctx, s.timings.ScrollSettle); err != nil {
		return nil, err
	}

	snap, err = page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	panel, err = snap.Require(PanelSelector)
	if err != nil {
		return nil, fmt.Errorf("transcript panel: %w", err)
	}

	elements := panel.Find(SegmentSelector)
	if len(elements) == 0 {
		return nil, ErrNoSegments
	}

	segments := make([]domain.TranscriptSegment, 0, len(elements))
	for _, el := range elements {
		segments = append(segments, ParseSegment(el.InnerText()))
	}
	return segments, nil
}

// Transcript never fails: any error becomes TranscriptUnavailable.
func (s *Scraper) Transcript(ctx context.Context, page *dom.Page) string {
	segments, err := s.Segments(ctx, page)
	if err != nil {
		s.logger.Warn("transcript scrape failed", "error", err)
		return TranscriptUnavailable
	}

	s.logger.Debug("transcript scraped", "segments", len(segments))
	return JoinSegments(segments)
}

// ParseSegment treats the first non-empty line as the timestamp and the
// rest as the spoken text.
func ParseSegment(text string) domain.TranscriptSegment {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return domain.TranscriptSegment{}
	}
	return domain.TranscriptSegment{
		Timestamp: lines[0],
		Text:      strings.Join(lines[1:], " "),
	}
}

func JoinSegments(segments []domain.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, seg.Line())
	}
	return strings.Join(lines, "\n")
}
