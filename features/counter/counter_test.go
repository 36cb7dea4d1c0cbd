package counter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/teststore"
)

func TestCounter_IncrementDecrement(t *testing.T) {
	store := teststore.New(t, counter.State{}, counter.Reducer(dependencies.Test()))

	store.Send(counter.IncrementButtonTapped{}, func(s *counter.State) { s.Count = 1 })
	store.Send(counter.IncrementButtonTapped{}, func(s *counter.State) { s.Count = 2 })
	store.Send(counter.DecrementButtonTapped{}, func(s *counter.State) { s.Count = 1 })
}

func TestCounter_Timer(t *testing.T) {
	deps := dependencies.Test()
	clock := deps.Clock.(*dependencies.TestClock)
	store := teststore.New(t, counter.State{}, counter.Reducer(deps))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	store.Send(counter.ToggleTimerButtonTapped{}, func(s *counter.State) { s.IsTimerRunning = true })

	require.NoError(t, clock.BlockUntil(ctx, 1))
	clock.Advance(time.Second)
	store.Receive(counter.TimerTick{}, func(s *counter.State) { s.Count = 1 })

	store.Send(counter.ToggleTimerButtonTapped{}, func(s *counter.State) { s.IsTimerRunning = false })
}

func TestCounter_NumberFact(t *testing.T) {
	store := teststore.New(t, counter.State{}, counter.Reducer(dependencies.Test()))

	store.Send(counter.FactButtonTapped{}, func(s *counter.State) { s.IsLoading = true })
	store.Receive(counter.FactResponse{Fact: "0 is a good number."}, func(s *counter.State) {
		s.IsLoading = false
		s.Fact = "0 is a good number."
	})
}

func TestCounter_NumberFactFailure(t *testing.T) {
	deps := dependencies.Test().With(dependencies.Dependencies{
		Fact: dependencies.FactClientFunc(func(context.Context, int) (string, error) {
			return "", errors.New("offline")
		}),
	})
	store := teststore.New(t, counter.State{}, counter.Reducer(deps))

	store.Send(counter.FactButtonTapped{}, func(s *counter.State) { s.IsLoading = true })
	store.Receive(counter.FactFailed{Message: "offline"}, func(s *counter.State) {
		s.IsLoading = false
		s.FactError = "offline"
	})
}

func TestParseAction(t *testing.T) {
	a, err := counter.ParseAction("+")
	require.NoError(t, err)
	assert.Equal(t, counter.IncrementButtonTapped{}, a)

	_, err = counter.ParseAction("jump")
	assert.ErrorIs(t, err, counter.ErrUnknownAction)
}
