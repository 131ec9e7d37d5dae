package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yt_digest/internal/dom"
	"yt_digest/internal/poll"
)

const (
	DefaultOrigin      = "https://chatgpt.com"
	DefaultModel       = "gpt-4o"
	DefaultInjectTries = 40
	sendButtonTimeout  = 5 * time.Second
)

type Config struct {
	Origin          string
	Model           string
	AutoSubmit      bool
	CloseTab        bool
	InjectTries     int
	InjectStep      time.Duration
	ObserveInterval time.Duration
	Detector        DetectorConfig
}

// Generator opens a conversation, sends a message and waits for the answer.
type Generator struct {
	opener   dom.Opener
	cfg      Config
	detector *Detector
	logger   *slog.Logger
}

func NewGenerator(opener dom.Opener, cfg Config, logger *slog.Logger) *Generator {
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.InjectTries <= 0 {
		cfg.InjectTries = DefaultInjectTries
	}
	if cfg.InjectStep <= 0 {
		cfg.InjectStep = poll.DefaultStep
	}
	return &Generator{
		opener:   opener,
		cfg:      cfg,
		detector: NewDetector(cfg.Detector, logger),
		logger:   logger.With("component", "chat"),
	}
}

// Generate sends message in a new conversation. Without auto submit the
// prompt is left in the composer and the answer is awaited once the user
// sends it.
func (g *Generator) Generate(ctx context.Context, message string) (*Completion, error) {
	target := ChatURL(g.cfg.Origin, g.cfg.Model)
	page, err := g.opener.OpenPage(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("open chat: %w", err)
	}
	if g.cfg.CloseTab {
		defer func() {
			if err := page.Close(); err != nil {
				g.logger.Warn("failed to close chat tab", "error", err)
			}
		}()
	}

	if err := g.Inject(ctx, page, message); err != nil {
		return nil, err
	}

	snap, err := page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	baseline := len(snap.Find(AnswerSelector))

	if g.cfg.AutoSubmit {
		if err := g.Submit(ctx, page); err != nil {
			return nil, err
		}
	} else {
		g.logger.Info("prompt ready, waiting for it to be sent", "url", target)
	}

	return g.Await(ctx, page, baseline)
}

// Await watches page until the answer after the first baseline answers is
// complete.
func (g *Generator) Await(ctx context.Context, page *dom.Page, baseline int) (*Completion, error) {
	watcher := dom.Watch(ctx, page, g.cfg.ObserveInterval, g.logger)
	return g.detector.Watch(ctx, watcher, baseline)
}

// Inject writes message into the composer, retrying while the page loads.
func (g *Generator) Inject(ctx context.Context, page *dom.Page, message string) error {
	content := PromptHTML(message)

	err := poll.Tries(ctx, func(ctx context.Context) bool {
		snap, err := page.Snapshot(ctx)
		if err != nil {
			g.logger.Debug("snapshot failed", "error", err)
			return false
		}
		area, ok := snap.First(PromptSelector)
		if !ok {
			return false
		}
		if err := area.SetContent(ctx, content); err != nil {
			g.logger.Debug("failed to set prompt", "error", err)
			return false
		}
		return true
	}, g.cfg.InjectTries, g.cfg.InjectStep)
	if err != nil {
		return fmt.Errorf("inject prompt: %w", err)
	}

	g.logger.Debug("prompt injected", "chars", len(message))
	return nil
}

// Submit clicks the send button once it is enabled.
func (g *Generator) Submit(ctx context.Context, page *dom.Page) error {
	button, ok := poll.Find(ctx, func(ctx context.Context) (dom.Element, bool) {
		snap, err := page.Snapshot(ctx)
		if err != nil {
			return dom.Element{}, false
		}
		el, ok := snap.First(SendButtonSelector)
		if !ok {
			return dom.Element{}, false
		}
		if _, disabled := el.Attr("disabled"); disabled {
			return dom.Element{}, false
		}
		return el, true
	}, sendButtonTimeout, g.cfg.InjectStep)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("send button: %w", dom.ErrNotFound)
	}

	if err := button.Click(ctx); err != nil {
		return fmt.Errorf("click send button: %w", err)
	}
	g.logger.Info("prompt sent")
	return nil
}
