package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/N-Srikar/Athena/pkg/breaker"
	"github.com/stretchr/testify/require"
)

func TestBreaker_Call(t *testing.T) {
	okCall := func() error { return nil }
	failCall := func() error { return errors.New("broker down") }

	t.Run("stays closed on success", func(t *testing.T) {
		b := breaker.New(10, time.Second, 0.3, 3)
		for i := 0; i < 50; i++ {
			require.NoError(t, b.Call(okCall))
		}
	})

	t.Run("opens after failure percentile", func(t *testing.T) {
		b := breaker.New(10, time.Minute, 0.3, 3)
		for i := 0; i < 3; i++ {
			require.Error(t, b.Call(failCall))
		}
		err := b.Call(okCall)
		require.ErrorIs(t, err, breaker.ErrOpen)
	})

	t.Run("recovers through half-open", func(t *testing.T) {
		b := breaker.New(10, 10*time.Millisecond, 0.3, 2)
		for i := 0; i < 3; i++ {
			require.Error(t, b.Call(failCall))
		}
		require.ErrorIs(t, b.Call(okCall), breaker.ErrOpen)

		time.Sleep(20 * time.Millisecond)
		for i := 0; i < 4; i++ {
			require.NoError(t, b.Call(okCall))
		}
	})

	t.Run("reset closes the breaker", func(t *testing.T) {
		b := breaker.New(10, time.Minute, 0.3, 3)
		for i := 0; i < 3; i++ {
			require.Error(t, b.Call(failCall))
		}
		b.Reset()
		require.NoError(t, b.Call(okCall))
	})
}
