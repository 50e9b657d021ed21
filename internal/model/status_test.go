package model_test

import (
	"testing"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()
	all := []model.Status{
		model.StatusPending,
		model.StatusApproved,
		model.StatusRejected,
		model.StatusReturned,
	}
	legal := map[model.Status]map[model.Status]bool{
		model.StatusPending:  {model.StatusApproved: true, model.StatusRejected: true},
		model.StatusApproved: {model.StatusReturned: true},
	}

	for _, from := range all {
		for _, to := range all {
			require.Equal(t, legal[from][to], model.CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}

	// unknown states admit nothing
	require.False(t, model.CanTransition("EXPIRED", model.StatusReturned))
	require.False(t, model.CanTransition(model.StatusPending, "EXPIRED"))
}

func TestTerminal(t *testing.T) {
	t.Parallel()
	require.False(t, model.StatusPending.Terminal())
	require.False(t, model.StatusApproved.Terminal())
	require.True(t, model.StatusRejected.Terminal())
	require.True(t, model.StatusReturned.Terminal())
}
