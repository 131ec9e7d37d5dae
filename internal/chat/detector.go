package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yt_digest/internal/dom"
)

// ErrObservationAborted is returned when watching ends before the answer
// became stable.
var ErrObservationAborted = errors.New("observation aborted before completion")

// DefaultMaxWait bounds a single watch.
const DefaultMaxWait = 10 * time.Minute

// Observer delivers one snapshot per mutation burst. Detach must be safe to
// call more than once.
type Observer interface {
	Mutations() <-chan *dom.Snapshot
	Detach()
}

type DetectorConfig struct {
	QuietPeriod time.Duration
	// MaxWait ends the watch with ErrObservationAborted; zero disables it.
	MaxWait time.Duration
	Probes  []Probe
}

// Detector decides when a streaming answer is complete.
type Detector struct {
	cfg    DetectorConfig
	now    func() time.Time
	logger *slog.Logger
}

func NewDetector(cfg DetectorConfig, logger *slog.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With("component", "detector"),
	}
}

// Watch consumes obs until the answer after the first baseline answers is
// stable. The observer is detached exactly once, when Watch returns.
func (d *Detector) Watch(ctx context.Context, obs Observer, baseline int) (*Completion, error) {
	defer obs.Detach()

	session := NewSession(d.cfg.Probes, d.cfg.QuietPeriod, baseline)
	start := d.now()

	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	defer quiet.Stop()
	var quietC <-chan time.Time

	var watchdogC <-chan time.Time
	if d.cfg.MaxWait > 0 {
		watchdog := time.NewTimer(d.cfg.MaxWait)
		defer watchdog.Stop()
		watchdogC = watchdog.C
	}

	batches := 0
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrObservationAborted, ctx.Err())

		case <-watchdogC:
			d.logger.Warn("no completion detected",
				"waited", d.cfg.MaxWait,
				"batches", batches,
				"phase", session.Phase(),
			)
			return nil, fmt.Errorf("%w: no completion within %s", ErrObservationAborted, d.cfg.MaxWait)

		case snap, ok := <-obs.Mutations():
			if !ok {
				return nil, fmt.Errorf("%w: observer closed", ErrObservationAborted)
			}
			batches++

			now := d.now()
			deadline, pending := session.Observe(snap, now)
			if !pending {
				quiet.Stop()
				quietC = nil
				continue
			}
			quiet.Reset(deadline.Sub(now))
			quietC = quiet.C

		case <-quietC:
			quietC = nil
			now := d.now()
			completion, ok := session.Fire(now)
			if !ok {
				if deadline, pending := session.Deadline(); pending {
					quiet.Reset(deadline.Sub(now))
					quietC = quiet.C
				}
				continue
			}

			d.logger.Info("answer complete",
				"probe", completion.Probe,
				"title", completion.Title,
				"batches", batches,
				"took", completion.CompletedAt.Sub(start),
			)
			return completion, nil
		}
	}
}
