package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"yt_digest/internal/browser"
	"yt_digest/internal/chat"
	"yt_digest/internal/config"
	"yt_digest/internal/delivery"
	"yt_digest/internal/service"
	"yt_digest/internal/source/youtube"
	"yt_digest/internal/storage/postgres"
)

// app owns the long-lived resources of one command invocation.
type app struct {
	browser    *browser.Browser
	source     *youtube.Source
	generator  *chat.Generator
	dispatcher *delivery.Dispatcher
	db         *sqlx.DB
	logger     *slog.Logger
}

// startBrowser is replaced in tests.
var startBrowser = browser.New

// newApp builds everything run and watch need: browser, source, chat,
// delivery and the optional database.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a, err := newExtractApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a.generator = chat.NewGenerator(a.browser, chat.Config{
		Origin:          cfg.Chat.Origin,
		Model:           cfg.Chat.Model,
		AutoSubmit:      cfg.Chat.AutoSubmit,
		CloseTab:        cfg.Chat.CloseTab,
		InjectTries:     cfg.Chat.InjectTries,
		InjectStep:      cfg.Chat.InjectStep,
		ObserveInterval: cfg.Browser.ObserveInterval,
		Detector: chat.DetectorConfig{
			QuietPeriod: cfg.Chat.QuietPeriod,
			MaxWait:     cfg.Chat.MaxWait,
		},
	}, logger)

	destinations, err := buildDestinations(cfg.Delivery, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.dispatcher = delivery.NewDispatcher(destinations, cfg.Delivery.Timeout, logger)
	logger.Info("delivery configured", "destinations", a.dispatcher.Names())

	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		logger.Info("connected to database")
	}

	return a, nil
}

// newExtractApp builds only the browser and the video source. Delivery and
// storage are never touched.
func newExtractApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	b, err := startBrowser(ctx, browser.Config{
		ExecPath:    cfg.Browser.ExecPath,
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		RemoteURL:   cfg.Browser.RemoteURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &app{browser: b, logger: logger}
	a.source = youtube.New(youtube.Config{
		Timings: youtube.Timings{
			Settle:       cfg.YouTube.Settle,
			ShowButton:   cfg.YouTube.ShowButton,
			Panel:        cfg.YouTube.Panel,
			Menu:         cfg.YouTube.Menu,
			Step:         cfg.YouTube.Step,
			ScrollSettle: cfg.YouTube.ScrollSettle,
		},
	}, b, logger)

	return a, nil
}

// buildDestinations creates every enabled destination.
func buildDestinations(cfg config.DeliveryConfig, logger *slog.Logger) ([]delivery.Destination, error) {
	var destinations []delivery.Destination

	if cfg.Publisher.Enabled {
		destinations = append(destinations, delivery.NewFormPublisher(delivery.PublisherConfig{
			URL:     cfg.Publisher.URL,
			Timeout: cfg.Publisher.Timeout,
		}, logger))
	}

	if cfg.Wallabag.Enabled {
		destinations = append(destinations, delivery.NewWallabag(delivery.WallabagConfig{
			URL:          cfg.Wallabag.URL,
			ClientID:     cfg.Wallabag.ClientID,
			ClientSecret: cfg.Wallabag.ClientSecret,
			Username:     cfg.Wallabag.Username,
			Password:     cfg.Wallabag.Password,
			Timeout:      cfg.Wallabag.Timeout,
		}, logger))
	}

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := delivery.NewRabbitMQ(delivery.RabbitMQConfig{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		destinations = append(destinations, rabbitMQ)
	}

	if len(destinations) == 0 {
		logger.Warn("no delivery destination enabled")
	}

	return destinations, nil
}

func (a *app) stores() *service.Stores {
	if a.db == nil {
		return nil
	}
	return &service.Stores{
		Videos:     postgres.NewVideoStore(a.db),
		Summaries:  postgres.NewSummaryStore(a.db),
		Deliveries: postgres.NewDeliveryStore(a.db),
		Tx:         postgres.NewTransactionManager(a.db),
	}
}

func (a *app) service(cfg *config.Config, selector service.PromptSelector) *service.DigestService {
	return service.NewDigestService(
		a.source,
		selector,
		a.generator,
		a.browser,
		a.dispatcher,
		a.stores(),
		cfg.Prompts,
		a.logger,
	)
}

func (a *app) close() {
	var errs []error
	if a.dispatcher != nil {
		errs = append(errs, a.dispatcher.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("failed to release resources", "error", err)
	}
}
