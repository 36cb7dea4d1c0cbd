package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
	"github.com/on-the-ground/composable_ive_go/store"
)

type counterState struct {
	Count        int
	TimerRunning bool
}

type counterAction interface{ isCounterAction() }

type increment struct{}
type decrement struct{}
type toggleTimer struct{}
type tick struct{}

func (increment) isCounterAction()   {}
func (decrement) isCounterAction()   {}
func (toggleTimer) isCounterAction() {}
func (tick) isCounterAction()        {}

type timerID struct{}

func counterReducer(clock dependencies.Clock) reducer.Reducer[counterState, counterAction] {
	return reducer.Func[counterState, counterAction](func(s *counterState, a counterAction) effects.Effect[counterAction] {
		switch a.(type) {
		case increment:
			s.Count++
		case decrement:
			s.Count--
		case tick:
			s.Count++
		case toggleTimer:
			s.TimerRunning = !s.TimerRunning
			if !s.TimerRunning {
				return effects.Cancel[counterAction](timerID{})
			}
			return effects.Run(func(ctx context.Context, send effects.Sender[counterAction]) error {
				for {
					if err := clock.Sleep(ctx, time.Second); err != nil {
						return err
					}
					send(tick{})
				}
			}).Cancellable(timerID{})
		}
		return effects.None[counterAction]()
	})
}

func newStore[S, A any](t *testing.T, initial S, r reducer.Reducer[S, A], opts ...store.Option) *store.Store[S, A] {
	t.Helper()
	opts = append([]store.Option{store.WithLogger(zap.NewNop())}, opts...)
	s := store.New(context.Background(), initial, r, opts...)
	t.Cleanup(s.Close)
	return s
}

func TestStore_SendReducesInOrder(t *testing.T) {
	s := newStore(t, counterState{}, counterReducer(dependencies.SystemClock()))

	s.Send(increment{})
	s.Send(increment{})
	s.Send(decrement{})

	assert.Equal(t, 1, s.State().Count)
}

func TestStore_MatchesFoldingTheReducer(t *testing.T) {
	r := counterReducer(dependencies.SystemClock())
	actions := []counterAction{increment{}, increment{}, decrement{}, increment{}, decrement{}, decrement{}}

	var folded counterState
	for _, a := range actions {
		r.Reduce(&folded, a)
	}

	s := newStore(t, counterState{}, r)
	for _, a := range actions {
		s.Send(a)
	}
	assert.Equal(t, folded, s.State())
}

func TestStore_SendEffectsRunBeforeSendReturns(t *testing.T) {
	r := reducer.Func[counterState, counterAction](func(s *counterState, a counterAction) effects.Effect[counterAction] {
		switch a.(type) {
		case toggleTimer:
			return effects.Merge(effects.Send[counterAction](increment{}), effects.Send[counterAction](increment{}))
		case increment:
			s.Count++
		}
		return effects.None[counterAction]()
	})
	s := newStore(t, counterState{}, r)

	s.Send(toggleTimer{})
	assert.Equal(t, 2, s.State().Count)
}

func TestStore_TimerTicksAndStopsWithTestClock(t *testing.T) {
	clock := dependencies.NewTestClock(time.Unix(0, 0).UTC())
	s := newStore(t, counterState{}, counterReducer(clock))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s.Send(toggleTimer{})
	require.NoError(t, clock.BlockUntil(ctx, 1))
	clock.Advance(time.Second)
	require.NoError(t, clock.BlockUntil(ctx, 1))
	clock.Advance(time.Second)
	require.NoError(t, clock.BlockUntil(ctx, 1))

	assert.Eventually(t, func() bool { return s.State().Count == 2 }, time.Second, 5*time.Millisecond)

	s.Send(toggleTimer{})
	require.NoError(t, s.Wait(ctx))
	clock.Advance(10 * time.Second)
	assert.Equal(t, 2, s.State().Count)
	assert.Equal(t, 0, s.InFlight())
}

type fetchState struct{ Got []string }

type fetchAction interface{ isFetchAction() }

type startFetch struct{ ID string }
type stopFetch struct{ ID string }
type fetched struct{ ID string }

func (startFetch) isFetchAction() {}
func (stopFetch) isFetchAction()  {}
func (fetched) isFetchAction()    {}

func TestStore_CancelledTasksNeverDeliver(t *testing.T) {
	gates := map[string]chan struct{}{"X1": make(chan struct{}), "X2": make(chan struct{}), "X3": make(chan struct{})}

	r := reducer.Func[fetchState, fetchAction](func(s *fetchState, a fetchAction) effects.Effect[fetchAction] {
		switch a := a.(type) {
		case startFetch:
			gate := gates[a.ID]
			return effects.Run(func(ctx context.Context, send effects.Sender[fetchAction]) error {
				// a cancelled task that still sends must be ignored
				<-gate
				send(fetched{ID: a.ID})
				return nil
			}).Cancellable(a.ID)
		case stopFetch:
			return effects.Cancel[fetchAction](a.ID)
		case fetched:
			s.Got = append(s.Got, a.ID)
		}
		return effects.None[fetchAction]()
	})
	s := newStore(t, fetchState{}, r)

	for _, id := range []string{"X1", "X2", "X3"} {
		s.Send(startFetch{ID: id})
	}
	s.Send(stopFetch{ID: "X1"})
	s.Send(stopFetch{ID: "X2"})
	for _, gate := range gates {
		close(gate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Eventually(t, func() bool { return len(s.State().Got) == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return len(s.State().Got) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, []string{"X3"}, s.State().Got)
}

func TestStore_ReportsUnknownCancel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := reducer.Func[fetchState, fetchAction](func(s *fetchState, a fetchAction) effects.Effect[fetchAction] {
		return effects.Cancel[fetchAction]("never-started")
	})
	s := newStore(t, fetchState{}, r, store.WithLogger(zap.New(core)))

	s.Send(stopFetch{})
	entries := logs.FilterMessage("cancelled an identity that never ran").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DPanicLevel, entries[0].Level)
}

func TestStore_SubscribeSeesLatestState(t *testing.T) {
	s := newStore(t, counterState{}, counterReducer(dependencies.SystemClock()))
	ctx, cancel := context.WithCancel(context.Background())

	states := s.Subscribe(ctx)
	assert.Equal(t, 0, (<-states).Count)

	s.Send(increment{})
	assert.Equal(t, 1, (<-states).Count)

	cancel()
	select {
	case _, open := <-states:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
}

func TestStore_SendAfterCloseFails(t *testing.T) {
	s := newStore(t, counterState{}, counterReducer(dependencies.SystemClock()))
	s.Close()

	err := s.SendContext(context.Background(), increment{})
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestStore_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := store.NewMetrics(registry, "test")
	s := newStore(t, counterState{}, counterReducer(dependencies.SystemClock()),
		store.WithName("counter"), store.WithMetrics(metrics))

	s.Send(increment{})
	s.Send(increment{})
	s.Send(decrement{})

	expected := `
# HELP test_store_actions_total Total number of actions reduced
# TYPE test_store_actions_total counter
test_store_actions_total{action="store_test.decrement",store="counter"} 1
test_store_actions_total{action="store_test.increment",store="counter"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_store_actions_total"))
}

func TestStore_ChangePrinting(t *testing.T) {
	var printed []string
	s := newStore(t, counterState{}, counterReducer(dependencies.SystemClock()),
		store.WithChangePrinting(func(diff string) { printed = append(printed, diff) }))

	s.Send(increment{})
	s.Send(toggleTimer{})
	s.Send(toggleTimer{})

	require.Len(t, printed, 3)
	assert.Contains(t, printed[0], "-  Count: (int) 0,")
	assert.Contains(t, printed[0], "+  Count: (int) 1,")
	assert.True(t, strings.HasPrefix(printed[0], "received action: (store_test.increment)"), printed[0])
}

func TestScope_ChildViewSendsThroughParent(t *testing.T) {
	type pair struct{ Left, Right counterState }
	type pairAction struct {
		left   bool
		action counterAction
	}
	r := reducer.Func[pair, pairAction](func(s *pair, a pairAction) effects.Effect[pairAction] {
		c := counterReducer(dependencies.SystemClock())
		if a.left {
			c.Reduce(&s.Left, a.action)
		} else {
			c.Reduce(&s.Right, a.action)
		}
		return effects.None[pairAction]()
	})
	s := newStore(t, pair{}, r)

	left := store.Scope[pair, pairAction](s, func(p pair) counterState { return p.Left },
		func(a counterAction) pairAction { return pairAction{left: true, action: a} })
	left.Send(increment{})
	left.Send(increment{})

	assert.Equal(t, 2, left.State().Count)
	assert.Equal(t, 0, s.State().Right.Count)
}

func TestScopeOptional_KeepsLastStateAfterDismissal(t *testing.T) {
	type parent struct{ Child *counterState }
	type parentAction struct {
		dismiss bool
		child   counterAction
	}
	r := reducer.Func[parent, parentAction](func(s *parent, a parentAction) effects.Effect[parentAction] {
		if a.dismiss {
			s.Child = nil
			return effects.None[parentAction]()
		}
		if s.Child != nil {
			c := *s.Child
			c.Count++
			s.Child = &c
		}
		return effects.None[parentAction]()
	})
	s := newStore(t, parent{Child: &counterState{}}, r)
	get := func(p parent) (counterState, bool) {
		if p.Child == nil {
			return counterState{}, false
		}
		return *p.Child, true
	}
	embed := func(a counterAction) parentAction { return parentAction{child: a} }

	child, ok := store.ScopeOptional[parent, parentAction](s, get, embed)
	require.True(t, ok)
	child.Send(increment{})
	assert.Equal(t, 1, child.State().Count)

	s.Send(parentAction{dismiss: true})
	assert.Equal(t, 1, child.State().Count)

	_, ok = store.ScopeOptional[parent, parentAction](s, get, embed)
	assert.False(t, ok)
}

func ExampleStore() {
	s := store.New(context.Background(), counterState{}, counterReducer(dependencies.SystemClock()),
		store.WithLogger(zap.NewNop()))
	defer s.Close()

	s.Send(increment{})
	s.Send(increment{})
	fmt.Println(s.State().Count)
	// Output: 2
}

func TestStore_WaitReturnsAfterEffectActionsAreReduced(t *testing.T) {
	r := reducer.Func[fetchState, fetchAction](func(s *fetchState, a fetchAction) effects.Effect[fetchAction] {
		switch a := a.(type) {
		case startFetch:
			return effects.Run(func(ctx context.Context, send effects.Sender[fetchAction]) error {
				send(fetched{ID: a.ID})
				return nil
			})
		case fetched:
			s.Got = append(s.Got, a.ID)
			if a.ID == "first" {
				return effects.Send[fetchAction](startFetch{ID: "second"})
			}
		}
		return effects.None[fetchAction]()
	})
	s := newStore(t, fetchState{}, r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 50; i++ {
		s.Send(startFetch{ID: "first"})
		require.NoError(t, s.Wait(ctx))
		require.Len(t, s.State().Got, 2*(i+1))
	}
}
