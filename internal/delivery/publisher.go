package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yt_digest/internal/domain"
)

// PublisherConfig holds publishing endpoint configuration.
type PublisherConfig struct {
	URL     string
	Timeout time.Duration
}

// FormPublisher posts title and content as an HTML form.
type FormPublisher struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

func NewFormPublisher(cfg PublisherConfig, logger *slog.Logger) *FormPublisher {
	return &FormPublisher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:    cfg.URL,
		logger: logger.With("destination", "publisher"),
	}
}

func (p *FormPublisher) Name() string {
	return "publisher"
}

func (p *FormPublisher) Deliver(ctx context.Context, summary *domain.Summary) error {
	form := url.Values{}
	form.Set("title", summary.Title)
	form.Set("content", summary.HTML)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	p.logger.Debug("published", "status", resp.StatusCode)
	return nil
}
