// Package browser drives Chrome through the DevTools protocol and exposes
// each tab as a dom.Page.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"yt_digest/internal/dom"
)

type Config struct {
	ExecPath    string
	Headless    bool
	UserDataDir string
	// RemoteURL connects to an already running browser instead of
	// launching one, e.g. ws://127.0.0.1:9222.
	RemoteURL string
}

type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	remote bool
	logger *slog.Logger
}

// New launches or connects to a browser. The returned Browser outlives ctx
// only until Close is called.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Browser, error) {
	logger = logger.With("component", "browser")

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if cfg.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		opts = append(opts, chromedp.Flag("headless", cfg.Headless))
		if cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
		}
		if cfg.UserDataDir != "" {
			opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("devtools error", "message", fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Info("browser ready", "remote", cfg.RemoteURL != "", "headless", cfg.Headless)

	return &Browser{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		remote: cfg.RemoteURL != "",
		logger: logger,
	}, nil
}

// OpenPage opens url in a new tab.
func (b *Browser) OpenPage(ctx context.Context, url string) (*dom.Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	tab := &Tab{ctx: tabCtx, cancel: cancel, logger: b.logger}
	if err := tab.allocate(); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	err := tab.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(observerScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
		chromedp.Evaluate(observerScript, nil),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open %s: %w", url, err)
	}

	b.logger.Debug("opened tab", "url", url)
	return dom.NewPage(tab), nil
}

// Attach returns the first open tab whose URL starts with prefix. The tab
// is left open when the page is closed.
func (b *Browser) Attach(ctx context.Context, prefix string) (*dom.Page, error) {
	targets, err := chromedp.Targets(b.ctx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}

	for _, t := range targets {
		if t.Type != "page" || !strings.HasPrefix(t.URL, prefix) {
			continue
		}

		tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(t.TargetID))
		tab := &Tab{ctx: tabCtx, cancel: cancel, attached: true, logger: b.logger}
		if err := tab.allocate(); err != nil {
			cancel()
			return nil, fmt.Errorf("attach to %s: %w", t.URL, err)
		}
		if err := tab.run(ctx, chromedp.Evaluate(observerScript, nil)); err != nil {
			cancel()
			return nil, fmt.Errorf("attach to %s: %w", t.URL, err)
		}

		b.logger.Info("attached to tab", "url", t.URL, "title", t.Title)
		return dom.NewPage(tab), nil
	}

	return nil, fmt.Errorf("no open tab at %s: %w", prefix, dom.ErrNotFound)
}

// Close shuts a launched browser down. A remote browser keeps running with
// its tabs.
func (b *Browser) Close() error {
	if b.remote {
		return nil
	}
	b.cancel()
	return nil
}

// Tab is a dom.Driver backed by one browser tab.
type Tab struct {
	ctx      context.Context
	cancel   context.CancelFunc
	attached bool
	logger   *slog.Logger
}

// allocate creates or attaches the target. The target's event loop lives as
// long as the context of the first Run, so it must be the tab's own.
func (t *Tab) allocate() error {
	return chromedp.Run(t.ctx)
}

// run executes actions on the tab, bounded by the caller's ctx.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (t *Tab) HTML(ctx context.Context) (string, error) {
	var out string
	if err := t.run(ctx, chromedp.Evaluate(snapshotScript, &out)); err != nil {
		return "", err
	}
	return out, nil
}

func (t *Tab) Title(ctx context.Context) (string, error) {
	var out string
	if err := t.run(ctx, chromedp.Title(&out)); err != nil {
		return "", err
	}
	return out, nil
}

func (t *Tab) URL(ctx context.Context) (string, error) {
	var out string
	if err := t.run(ctx, chromedp.Location(&out)); err != nil {
		return "", err
	}
	return out, nil
}

func (t *Tab) MutationCount(ctx context.Context) (int64, error) {
	var out int64
	if err := t.run(ctx, chromedp.Evaluate(counterScript, &out)); err != nil {
		return 0, err
	}
	return out, nil
}

func (t *Tab) Click(ctx context.Context, path string) error {
	return t.act(ctx, path, "el.click()")
}

func (t *Tab) ScrollIntoView(ctx context.Context, path string) error {
	return t.act(ctx, path, "el.scrollIntoView({block: 'center'})")
}

func (t *Tab) ScrollToEnd(ctx context.Context, path string) error {
	return t.act(ctx, path, "el.scrollTop = el.scrollHeight")
}

func (t *Tab) SetContent(ctx context.Context, path, html string) error {
	body := fmt.Sprintf(
		"el.innerHTML = %s; el.dispatchEvent(new Event('input', {bubbles: true})); el.focus()",
		jsString(html),
	)
	return t.act(ctx, path, body)
}

func (t *Tab) act(ctx context.Context, path, body string) error {
	var found bool
	start := time.Now()
	if err := t.run(ctx, chromedp.Evaluate(actionScript(path, body), &found)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", path, dom.ErrNotFound)
	}
	t.logger.Debug("page action", "path", path, "took", time.Since(start))
	return nil
}

// Close closes a tab opened by this process.
func (t *Tab) Close() error {
	if t.attached {
		return nil
	}
	t.cancel()
	return nil
}
