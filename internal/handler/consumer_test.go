package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/handler"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

// The consumer-group loop re-enters Consume with the same handler after
// every rebalance, so Setup must survive being called more than once on
// one instance.
func TestConsumer_SetupAcrossSessions(t *testing.T) {
	t.Parallel()
	consumer := handler.NewConsumer(func(context.Context, kafka.BorrowEvent) error { return nil }, zap.NewNop())

	require.NoError(t, consumer.Setup(nil))
	require.NotPanics(t, func() {
		require.NoError(t, consumer.Setup(nil))
	})
	require.NoError(t, consumer.Cleanup(nil))
}
