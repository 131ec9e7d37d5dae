//go:build integration

package delivery

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"yt_digest/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(suffix string) RabbitMQConfig {
	return RabbitMQConfig{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-" + suffix,
		RoutingKey: "test-routing-key-" + suffix,
		QueueName:  "test-queue-" + suffix,
	}
}

func (s *RabbitMQIntegrationSuite) TestRabbitMQ_Connection() {
	pub, err := NewRabbitMQ(s.config("connect"), s.logger)
	s.NoError(err)
	s.NotNil(pub)
	s.Equal("rabbitmq", pub.Name())

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestRabbitMQ_DeliverSummary() {
	cfg := s.config("summary")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	summary := &domain.Summary{
		ID:          7,
		Title:       "Test Video",
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		HTML:        "<h2>Key points</h2><ul><li>one</li><li>two</li></ul>",
		ContentHash: domain.HashContent("<h2>Key points</h2><ul><li>one</li><li>two</li></ul>"),
	}

	s.Require().NoError(pub.Deliver(s.ctx, summary))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received SummaryMessage
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("summary", received.Action)
	s.Equal(int64(7), received.Summary.ID)
	s.Equal("Test Video", received.Summary.Title)
	s.Equal(summary.VideoURL, received.Summary.VideoURL)
	s.Equal(summary.HTML, received.Summary.HTML)
	s.Equal(summary.ContentHash, received.Summary.ContentHash)
	s.Contains(received.Summary.Markdown, "## Key points")
	s.Contains(received.Summary.Markdown, "- one")
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestRabbitMQ_ThroughDispatcher() {
	cfg := s.config("dispatch")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)

	d := NewDispatcher([]Destination{pub}, 5*time.Second, s.logger)
	defer d.Close()

	reports := d.Dispatch(s.ctx, &domain.Summary{Title: "Dispatched", HTML: "<p>x</p>"}, nil)
	s.Require().Len(reports, 1)
	s.NoError(reports[0].Err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received SummaryMessage
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("Dispatched", received.Summary.Title)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg RabbitMQConfig) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
