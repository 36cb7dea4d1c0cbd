package effectscope_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/internal/effectscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu        sync.Mutex
	synced    []string
	delivered chan string
	issues    []string
}

func newRecorder() *recorder {
	return &recorder{delivered: make(chan string, 16)}
}

func (r *recorder) hooks() effectscope.Hooks[string] {
	return effectscope.Hooks[string]{
		Sync: func(a string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.synced = append(r.synced, a)
		},
		Deliver: func(ctx context.Context, a string) { r.delivered <- a },
		Issue: func(msg string, fields ...zap.Field) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.issues = append(r.issues, msg)
		},
	}
}

func (r *recorder) Issues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.issues...)
}

func waitTask(t *testing.T, started chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task did not start")
	}
}

func TestSchedule_SendIsSynchronousAndOrdered(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())
	defer scope.Close()

	scope.Schedule(effects.Merge(effects.Send("a"), effects.Send("b")))
	assert.Equal(t, []string{"a", "b"}, rec.synced)
}

func TestSchedule_CancelSuppressesOnlyMatchingIdentity(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())
	defer scope.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 3)
	task := func(name string) effects.Task[string] {
		return func(ctx context.Context, send effects.Sender[string]) error {
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
				return ctx.Err()
			}
			send(name)
			return nil
		}
	}

	scope.Schedule(effects.Merge(
		effects.Run(task("x1")).Cancellable("x"),
		effects.Run(task("x2")).Cancellable("x"),
		effects.Run(task("x3")).Cancellable("y"),
	))
	for i := 0; i < 3; i++ {
		waitTask(t, started)
	}

	scope.Schedule(effects.Cancel[string]("x"))
	close(release)

	select {
	case got := <-rec.delivered:
		assert.Equal(t, "x3", got)
	case <-time.After(time.Second):
		t.Fatal("x3 was not delivered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scope.Wait(ctx))
	assert.Empty(t, rec.delivered)
	assert.Empty(t, rec.Issues())
}

func TestSchedule_CancelInFlightReplacesRunningTask(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())
	defer scope.Close()

	started := make(chan struct{}, 2)
	blocking := effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})

	scope.Schedule(blocking.CancelInFlight("search"))
	waitTask(t, started)
	scope.Schedule(blocking.CancelInFlight("search"))
	waitTask(t, started)

	require.Eventually(t, func() bool { return scope.InFlight() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSchedule_ReportsProgrammerErrors(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())
	defer scope.Close()

	scope.Schedule(effects.Cancel[string]("never-started"))
	scope.Schedule(effects.CancelScope[string]("unused-scope"))
	scope.Schedule(effects.Dismiss[string]())
	scope.Schedule(effects.Report[string]("action sent to absent child"))

	assert.Equal(t, []string{
		"cancelled an identity that never ran",
		"dismiss returned by a feature that is not presented",
		"action sent to absent child",
	}, rec.Issues())
}

func TestSchedule_UnhandledTaskErrorIsReported(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())
	defer scope.Close()

	scope.Schedule(effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
		return errors.New("network down")
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scope.Wait(ctx))
	assert.Equal(t, []string{"unhandled error in effect"}, rec.Issues())
}

func TestNew_DefaultIssueLogsDPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	hooks := newRecorder().hooks()
	hooks.Issue = nil
	scope := effectscope.New(context.Background(), zap.New(core), hooks)
	defer scope.Close()

	scope.Schedule(effects.Report[string]("boom"))

	entries := logs.FilterMessage("boom").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DPanicLevel, entries[0].Level)
}

func TestClose_StopsTasksAndRefusesNewOnes(t *testing.T) {
	rec := newRecorder()
	scope := effectscope.New(context.Background(), zap.NewNop(), rec.hooks())

	started := make(chan struct{}, 1)
	scope.Schedule(effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
		started <- struct{}{}
		<-ctx.Done()
		send("late")
		return ctx.Err()
	}))
	waitTask(t, started)

	scope.Close()
	scope.Schedule(effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
		send("never")
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scope.Wait(ctx))
	assert.Empty(t, rec.delivered)
}
