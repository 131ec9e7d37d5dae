package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"yt_digest/internal/domain"
)

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(step string, err error) (*RabbitMQ, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}

	logger = logger.With("destination", "rabbitmq")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

type SummaryPayload struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	VideoURL    string `json:"video_url"`
	HTML        string `json:"html"`
	Markdown    string `json:"markdown,omitempty"`
	ContentHash string `json:"content_hash"`
}

type SummaryMessage struct {
	Action    string         `json:"action"`
	Summary   SummaryPayload `json:"summary"`
	Timestamp time.Time      `json:"timestamp"`
}

func (r *RabbitMQ) Name() string {
	return "rabbitmq"
}

func (r *RabbitMQ) Deliver(ctx context.Context, summary *domain.Summary) error {
	msg := SummaryMessage{
		Action: "summary",
		Summary: SummaryPayload{
			ID:          summary.ID,
			Title:       summary.Title,
			VideoURL:    summary.VideoURL,
			HTML:        summary.HTML,
			ContentHash: summary.ContentHash,
		},
		Timestamp: time.Now().UTC(),
	}

	markdown, err := htmltomarkdown.ConvertString(summary.HTML)
	if err != nil {
		r.logger.Warn("failed to convert summary to markdown", "error", err)
	} else {
		msg.Summary.Markdown = markdown
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published summary",
		"summary_id", summary.ID,
		"video_url", summary.VideoURL,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
