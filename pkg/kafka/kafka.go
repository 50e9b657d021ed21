package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
)

const (
	BorrowTopic        = "borrow-events"
	StatsConsumerGroup = "athena-stats"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

type EventType string

const (
	EventBorrowRequested EventType = "BORROW_REQUESTED"
	EventBorrowApproved  EventType = "BORROW_APPROVED"
	EventBorrowRejected  EventType = "BORROW_REJECTED"
	EventBookReturned    EventType = "BOOK_RETURNED"
)

// BorrowEvent is the payload published on BorrowTopic after every
// successful lifecycle transition.
type BorrowEvent struct {
	EventType  EventType `json:"eventType"`
	RecordUid  string    `json:"recordUid"`
	BookUid    string    `json:"bookUid"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer-group loop until ctx is canceled. Consume must
// be re-entered after every rebalance, hence the outer loop.
func Consume(ctx context.Context, consumer sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topic string) error {
	for {
		if err := consumer.Consume(ctx, []string{topic}, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
