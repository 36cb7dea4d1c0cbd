package effectscope

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/internal/handlers"
	"go.uber.org/zap"
)

// Hooks connect an EffectScope to the runtime that owns it.
type Hooks[A any] struct {
	// Sync handles the action of a Send effect before Schedule returns.
	Sync func(A)
	// Deliver handles an action sent by a running task. ctx is that task's context;
	// the receiver must drop the action if ctx is already done when it gets to it.
	Deliver func(ctx context.Context, a A)
	// Issue reports a programmer error.
	Issue func(msg string, fields ...zap.Field)
	// TaskStarted, when set, wraps every task: it may decorate the task context and
	// returns the callback invoked with the task's result.
	TaskStarted func(ctx context.Context, ids []any) (context.Context, func(error))
}

// EffectScope interprets effects for one store. Run effects are supervised; they
// end when cancelled by identity or when the scope is closed.
type EffectScope[A any] struct {
	EffectId   string
	ctx        context.Context
	cancelFn   context.CancelFunc
	supervisor *handlers.Supervisor
	hooks      Hooks[A]
	closeOnce  sync.Once
}

func New[A any](ctx context.Context, logger *zap.Logger, hooks Hooks[A]) *EffectScope[A] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hooks.Issue == nil {
		hooks.Issue = logger.DPanic
	}
	ctx, cancelFn := context.WithCancel(ctx)
	return &EffectScope[A]{
		EffectId:   uuid.New().String(),
		ctx:        ctx,
		cancelFn:   cancelFn,
		supervisor: handlers.NewSupervisor(logger),
		hooks:      hooks,
	}
}

// Schedule interprets e. Send members are handled synchronously, in order; Run members
// are started and left running.
func (s *EffectScope[A]) Schedule(e effects.Effect[A]) {
	switch e.Kind() {
	case effects.KindNone:
	case effects.KindSend:
		s.hooks.Sync(e.Action())
	case effects.KindRun:
		s.spawn(e)
	case effects.KindCancel:
		target := e.Target()
		if s.supervisor.Cancel(target) == 0 && !e.Quiet() && !s.supervisor.Seen(target) {
			s.hooks.Issue("cancelled an identity that never ran", zap.Any("id", target))
		}
	case effects.KindMerge:
		for _, m := range e.Members() {
			s.Schedule(m)
		}
	case effects.KindDismiss:
		s.hooks.Issue("dismiss returned by a feature that is not presented")
	case effects.KindReport:
		s.hooks.Issue(e.Message())
	}
}

func (s *EffectScope[A]) spawn(e effects.Effect[A]) {
	if s.ctx.Err() != nil {
		return
	}
	ids := e.IDs()
	if e.CancelsFirst() {
		for _, id := range ids {
			s.supervisor.Cancel(id)
		}
	}
	task := e.Task()
	s.supervisor.Spawn(s.ctx, ids, func(ctx context.Context) {
		done := func(error) {}
		if s.hooks.TaskStarted != nil {
			ctx, done = s.hooks.TaskStarted(ctx, ids)
		}
		err := task(ctx, func(a A) {
			if ctx.Err() != nil {
				return
			}
			s.hooks.Deliver(ctx, a)
		})
		done(err)
		if err != nil && !effects.IsCancellation(ctx, err) {
			s.hooks.Issue("unhandled error in effect", zap.Error(err), zap.Any("ids", ids))
		}
	})
}

// InFlight is the number of running tasks.
func (s *EffectScope[A]) InFlight() int {
	return s.supervisor.InFlight()
}

// CancelAll cancels every running task but keeps the scope usable.
func (s *EffectScope[A]) CancelAll() int {
	return s.supervisor.CancelAll()
}

// Wait blocks until every task returned or ctx ends.
func (s *EffectScope[A]) Wait(ctx context.Context) error {
	return s.supervisor.Wait(ctx)
}

// Close cancels every running task. Effects scheduled afterwards do not start.
func (s *EffectScope[A]) Close() {
	s.closeOnce.Do(func() {
		s.cancelFn()
		s.supervisor.CancelAll()
	})
}
