// Package delivery hands finished summaries to the configured destinations.
package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"yt_digest/internal/domain"
)

// DefaultTimeout bounds one dispatch across all destinations.
const DefaultTimeout = 30 * time.Second

// Destination receives a summary. Implementations must be safe for
// concurrent use.
type Destination interface {
	Name() string
	Deliver(ctx context.Context, summary *domain.Summary) error
}

// Dispatcher fans a summary out to every enabled destination.
type Dispatcher struct {
	destinations []Destination
	timeout      time.Duration
	logger       *slog.Logger
}

func NewDispatcher(destinations []Destination, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		destinations: destinations,
		timeout:      timeout,
		logger:       logger.With("component", "delivery"),
	}
}

// Names lists the enabled destinations.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.destinations))
	for _, dest := range d.destinations {
		names = append(names, dest.Name())
	}
	return names
}

// Dispatch delivers summary to every destination not named in skip, in
// parallel. It is not cancelled with ctx: a delivery that started is
// allowed to finish within the dispatch timeout. Failures are reported,
// never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, summary *domain.Summary, skip []string) []domain.DeliveryReport {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var targets []Destination
	for _, dest := range d.destinations {
		if slices.Contains(skip, dest.Name()) {
			d.logger.Debug("skipping destination", "destination", dest.Name(), "summary_id", summary.ID)
			continue
		}
		targets = append(targets, dest)
	}

	reports := make([]domain.DeliveryReport, len(targets))
	var g errgroup.Group
	for i, dest := range targets {
		g.Go(func() error {
			start := time.Now()
			err := dest.Deliver(ctx, summary)
			reports[i] = domain.DeliveryReport{Destination: dest.Name(), Err: err}

			if err != nil {
				d.logger.Error("delivery failed",
					"destination", dest.Name(),
					"title", summary.Title,
					"error", err,
				)
				return nil
			}
			d.logger.Info("delivered",
				"destination", dest.Name(),
				"title", summary.Title,
				"took", time.Since(start),
			)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// Close releases destinations that hold connections.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, dest := range d.destinations {
		if c, ok := dest.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
