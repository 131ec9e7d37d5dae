package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"yt_digest/internal/chat"
	"yt_digest/internal/dom"
	"yt_digest/internal/domain"
)

type Extractor interface {
	Extract(ctx context.Context, videoURL string) (*domain.VideoRecord, error)
}

type PromptSelector interface {
	Select(ctx context.Context, prompts []domain.PromptSelection) (*int, error)
}

type Generator interface {
	Generate(ctx context.Context, message string) (*chat.Completion, error)
	Await(ctx context.Context, page *dom.Page, baseline int) (*chat.Completion, error)
}

type PageAttacher interface {
	Attach(ctx context.Context, prefix string) (*dom.Page, error)
}

type VideoStore interface {
	Upsert(ctx context.Context, video *domain.VideoRecord, unavailable string) (int64, error)
	GetByVideoID(ctx context.Context, videoID string) (*domain.VideoRecord, error)
}

type SummaryStore interface {
	Create(ctx context.Context, summary *domain.Summary) (int64, bool, error)
}

type DeliveryStore interface {
	Record(ctx context.Context, summaryID int64, reports []domain.DeliveryReport) error
	Delivered(ctx context.Context, summaryID int64) ([]string, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, summary *domain.Summary, skip []string) []domain.DeliveryReport
}
