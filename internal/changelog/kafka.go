package changelog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic is the Kafka topic changelog events are relayed to.
const DefaultTopic = "contactvault.changelog"

// KafkaPublisher produces outbox payloads to Kafka. Records are keyed by
// user ID so one user's events stay ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce changelog event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// OutboxRelay polls the outbox table and publishes unrelayed entries to
// Kafka. Rows are marked published only after the produce is acknowledged,
// so a crash between produce and mark results in at-least-once delivery.
type OutboxRelay struct {
	db        *sql.DB
	publisher *KafkaPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewOutboxRelay(db *sql.DB, publisher *KafkaPublisher, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		db:        db,
		publisher: publisher,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, r.batchSize)
	if err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}

	type entry struct {
		id          string
		aggregateID string
		payload     []byte
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.aggregateID, &e.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}

	for _, e := range entries {
		if err := r.publisher.Publish(ctx, e.aggregateID, e.payload); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), e.id,
		); err != nil {
			return fmt.Errorf("mark outbox entry published: %w", err)
		}
	}
	return nil
}
