package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/N-Srikar/Athena/config"
	"github.com/N-Srikar/Athena/internal/handler"
	"github.com/N-Srikar/Athena/internal/repository"
	"github.com/N-Srikar/Athena/internal/server"
	"github.com/N-Srikar/Athena/internal/service"
	"github.com/N-Srikar/Athena/migrations"
	"github.com/N-Srikar/Athena/pkg/kafka"
	"github.com/N-Srikar/Athena/pkg/logger"
	"github.com/N-Srikar/Athena/pkg/postgres"
	"github.com/N-Srikar/Athena/pkg/redis"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "athena")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	// Cache and broker are soft dependencies: the service degrades to
	// uncached reads and unpublished events rather than refusing to start.
	cache, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis connect, caching disabled", zap.Error(err))
		cache = nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Warn("kafka.NewProducer, events disabled", zap.Error(err))
		producer = nil
	}

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	svc := service.NewService(repo, producer, cache, log)
	h := handler.New(svc, svc, svc, svc, log)

	gg, ctx := errgroup.WithContext(ctx)

	if producer != nil {
		consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.StatsConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		gg.Go(func() error {
			return kafka.Consume(ctx, consumer, handler.NewConsumer(svc.RecordEvent, log), kafka.BorrowTopic)
		})
	}

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	gg.Go(func() error {
		return srv.Run()
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case termSig := <-sig:
		log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	case <-ctx.Done():
		log.Error("run group", zap.Error(ctx.Err()))
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	cancel()
	if err := gg.Wait(); err != nil {
		log.Debug("run group finished", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
