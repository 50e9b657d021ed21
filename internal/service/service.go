package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/internal/repository"
	"github.com/N-Srikar/Athena/pkg/breaker"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	producer sarama.SyncProducer
	cb       breaker.Breaker
	cache    *goredis.Client

	now func() time.Time
}

func NewService(repo repository.Repository, producer sarama.SyncProducer, cache *goredis.Client, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		producer: producer,
		cb:       breaker.New(10, 30*time.Second, 0.5, 3),
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// publishEvent is best-effort: a flapping broker must not fail the borrow
// operation that already committed, so failures are only logged and the
// breaker keeps a dead broker from slowing every request down.
func (s *Service) publishEvent(eventType kafka.EventType, recordUid, bookUid, username string) {
	if s.producer == nil {
		return
	}
	event := kafka.BorrowEvent{
		EventType:  eventType,
		RecordUid:  recordUid,
		BookUid:    bookUid,
		Username:   username,
		OccurredAt: s.now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("publishEvent marshal", zap.Error(err))
		return
	}
	if err := s.cb.Call(func() error {
		msg := &sarama.ProducerMessage{Topic: kafka.BorrowTopic, Value: sarama.StringEncoder(data)}
		_, _, err := s.producer.SendMessage(msg)
		return err
	}); err != nil {
		s.log.Warn("publishEvent", zap.String("eventType", string(eventType)), zap.Error(err))
	}
}

func (s *Service) RecordEvent(ctx context.Context, event kafka.BorrowEvent) error {
	return s.repo.InsertEvent(ctx, event)
}

func (s *Service) Stats(ctx context.Context) ([]model.StatsRow, error) {
	return s.repo.Stats(ctx)
}
