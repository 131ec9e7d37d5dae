package dom

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultObserveInterval is how often the mutation counter is sampled.
const DefaultObserveInterval = 100 * time.Millisecond

// Watcher turns the page's mutation counter into a stream of snapshots,
// one per observed mutation burst. The first snapshot is emitted as soon as
// the watcher starts.
type Watcher struct {
	page     *Page
	interval time.Duration
	logger   *slog.Logger

	out  chan *Snapshot
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewWatcher(page *Page, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultObserveInterval
	}
	return &Watcher{
		page:     page,
		interval: interval,
		logger:   logger,
		out:      make(chan *Snapshot),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Watch starts a watcher that runs until ctx is done or it is detached.
func Watch(ctx context.Context, page *Page, interval time.Duration, logger *slog.Logger) *Watcher {
	w := NewWatcher(page, interval, logger)
	go w.run(ctx)
	return w
}

// Mutations is closed once the watcher stops.
func (w *Watcher) Mutations() <-chan *Snapshot {
	return w.out
}

// Detach stops the watcher. It is safe to call more than once; after it
// returns no further snapshots are delivered.
func (w *Watcher) Detach() {
	w.once.Do(func() {
		close(w.stop)
	})
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.out)

	w.logger.Debug("watcher started", "interval", w.interval)

	last := int64(-1)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if !w.sample(ctx, &last) {
			w.logger.Debug("watcher stopped")
			return
		}

		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped", "reason", ctx.Err())
			return
		case <-w.stop:
			w.logger.Debug("watcher detached")
			return
		case <-ticker.C:
		}
	}
}

// sample emits a snapshot when the counter moved. It reports false when
// the watcher must stop.
func (w *Watcher) sample(ctx context.Context, last *int64) bool {
	count, err := w.page.driver.MutationCount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.logger.Warn("failed to read mutation counter", "error", err)
		return true
	}
	if count == *last {
		return true
	}

	snap, err := w.page.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.logger.Warn("failed to snapshot page", "error", err)
		return true
	}
	*last = count

	select {
	case w.out <- snap:
		return true
	case <-w.stop:
		return false
	case <-ctx.Done():
		return false
	}
}
