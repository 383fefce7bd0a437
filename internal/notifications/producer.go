package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cineseat/internal/shared/config"
	"cineseat/pkg/logger"

	"github.com/IBM/sarama"
)

// TicketIssuedEvent is published once per successful finalize. Downstream
// consumers (email, BI) key on CartID, which is also the partition key so one
// cart's events stay ordered.
type TicketIssuedEvent struct {
	OrderID     string    `json:"order_id"`
	CartID      string    `json:"cart_id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	TicketCodes []string  `json:"ticket_codes"`
	SeatCodes   []string  `json:"seat_codes"`
	Amount      float64   `json:"amount"`
	IssuedAt    time.Time `json:"issued_at"`
}

// TicketProducer publishes ticket events to Kafka.
type TicketProducer interface {
	PublishTicketsIssued(ctx context.Context, event *TicketIssuedEvent) error
	Close() error
}

type kafkaTicketProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewTicketProducer creates a Kafka producer for ticket events. Returns nil
// without error when the event stream is disabled; callers treat a nil
// producer as a no-op sink.
func NewTicketProducer(cfg config.KafkaConfig) (TicketProducer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaTicketProducer{
		producer: producer,
		topic:    cfg.TicketTopic,
		log:      logger.GetDefault(),
	}, nil
}

func (p *kafkaTicketProducer) PublishTicketsIssued(ctx context.Context, event *TicketIssuedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.CartID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("order_id"), Value: []byte(event.OrderID)},
			{Key: []byte("session_id"), Value: []byte(event.SessionID)},
			{Key: []byte("issued_at"), Value: []byte(event.IssuedAt.Format(time.RFC3339))},
		},
		Timestamp: event.IssuedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish ticket event: %w", err)
	}

	p.log.Info("ticket event published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"order_id", event.OrderID,
		"tickets", len(event.TicketCodes),
	)
	return nil
}

func (p *kafkaTicketProducer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
