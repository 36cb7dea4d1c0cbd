// Package store is the runtime that owns a feature's state, reduces actions on a
// single loop goroutine and runs the effects reducers return.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/internal/effectscope"
	"github.com/on-the-ground/composable_ive_go/internal/handlers"
	"github.com/on-the-ground/composable_ive_go/internal/model"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

var ErrClosed = errors.New("store is closed")

// Viewer is what a rendering layer needs: a snapshot of state and a way to send.
type Viewer[S, A any] interface {
	State() S
	Send(action A)
}

var _ Viewer[int, int] = (*Store[int, int])(nil)

// Store owns the one authoritative copy of S.
//
// Every reducer call happens on the store loop goroutine, one action at a time. Send
// blocks until its action and the synchronous Send effects it triggered are reduced.
// Run effects execute on their own goroutines and their actions are queued back onto
// the loop in the order each task sent them.
type Store[S, A any] struct {
	id      string
	opts    options
	reducer reducer.Reducer[S, A]

	mu    sync.RWMutex
	state S

	ctx    context.Context
	cancel context.CancelFunc
	queue  handlers.Dispatcher[message[A]]
	scope  *effectscope.EffectScope[A]

	subsMu  sync.Mutex
	subs    map[uint64]chan S
	nextSub uint64

	closeOnce sync.Once
}

type message[A any] struct {
	action A
	// taskCtx is set for actions sent by a running task.
	taskCtx context.Context
	// done is closed once the action was reduced.
	done chan struct{}
	// barrier messages carry no action.
	barrier bool
}

// New starts a store loop. The loop ends when ctx ends or Close is called.
func New[S, A any](ctx context.Context, initial S, r reducer.Reducer[S, A], opts ...Option) *Store[S, A] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Store[S, A]{
		id:      uuid.New().String(),
		opts:    o,
		reducer: r,
		state:   initial,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[uint64]chan S),
	}
	s.opts.logger = o.logger.With(zap.String("store", o.name), zap.String("storeId", s.id))
	s.scope = effectscope.New(ctx, s.opts.logger, effectscope.Hooks[A]{
		Sync:        s.reduce,
		Deliver:     s.deliver,
		Issue:       s.issue,
		TaskStarted: s.taskStarted,
	})
	s.queue = handlers.NewSingleQueue(ctx, model.NewEffectScopeConfig(o.bufferSize, 1).BufferSize, s.handle)
	s.opts.logger.Debug("store started")
	return s
}

// State returns a snapshot of the current state.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Send reduces action and returns once it and its synchronous follow-ups are done.
// It must not be called from the store loop itself.
func (s *Store[S, A]) Send(action A) {
	if err := s.SendContext(context.Background(), action); err != nil {
		s.opts.logger.Warn("action was not reduced", zap.String("action", actionName(action)), zap.Error(err))
	}
}

// SendContext is Send that gives up when ctx ends or the store closes.
func (s *Store[S, A]) SendContext(ctx context.Context, action A) error {
	return s.await(ctx, message[A]{action: action, done: make(chan struct{})})
}

func (s *Store[S, A]) await(ctx context.Context, msg message[A]) error {
	if err := handlers.Enqueue(ctx, s.queue, msg); err != nil {
		if errors.Is(err, model.ErrNoPrimaryLoop) {
			return ErrClosed
		}
		return err
	}
	select {
	case <-msg.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.queue.Done():
		return ErrClosed
	}
}

// Subscribe returns a channel that holds the latest state. It receives the current
// state at once and is closed when ctx ends or the store closes. Intermediate states
// are skipped when the reader falls behind.
func (s *Store[S, A]) Subscribe(ctx context.Context) <-chan S {
	ch := make(chan S, 1)
	ch <- s.State()

	s.subsMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch
	s.subsMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
		}
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
		close(ch)
	}()
	return ch
}

// InFlight is the number of running effect tasks.
func (s *Store[S, A]) InFlight() int {
	return s.scope.InFlight()
}

// Close cancels every running effect and stops the loop.
func (s *Store[S, A]) Close() {
	s.closeOnce.Do(func() {
		s.scope.Close()
		s.cancel()
		s.opts.logger.Debug("store closed")
	})
}

// Wait blocks until every effect task returned and the actions they sent were
// reduced, or ctx ends.
func (s *Store[S, A]) Wait(ctx context.Context) error {
	for {
		if err := s.scope.Wait(ctx); err != nil {
			return err
		}
		// tasks enqueue before returning, so the barrier lands after their actions
		if err := s.await(ctx, message[A]{barrier: true, done: make(chan struct{})}); err != nil {
			return err
		}
		if s.scope.InFlight() == 0 {
			return nil
		}
	}
}

func (s *Store[S, A]) handle(ctx context.Context, msg message[A]) {
	if msg.done != nil {
		defer close(msg.done)
	}
	if msg.barrier {
		return
	}
	if msg.taskCtx != nil && msg.taskCtx.Err() != nil {
		if m := s.opts.metrics; m != nil {
			m.droppedDeliveries.WithLabelValues(s.opts.name).Inc()
		}
		return
	}
	s.reduce(msg.action)
}

// reduce runs on the store loop.
func (s *Store[S, A]) reduce(action A) {
	name := actionName(action)
	_, span := s.opts.tracer.Start(s.ctx, "store.reduce", trace.WithAttributes(
		attribute.String("store", s.opts.name),
		attribute.String("action", name),
	))
	start := time.Now()

	s.mu.Lock()
	before := s.state
	eff := s.reducer.Reduce(&s.state, action)
	after := s.state
	s.mu.Unlock()

	if m := s.opts.metrics; m != nil {
		m.actionsTotal.WithLabelValues(s.opts.name, name).Inc()
		m.reduceDuration.WithLabelValues(s.opts.name).Observe(time.Since(start).Seconds())
	}
	span.End()

	if s.opts.printChange != nil {
		s.opts.printChange(Diff(action, before, after))
	}
	s.publish(after)
	s.scope.Schedule(eff)
}

func (s *Store[S, A]) publish(state S) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// deliver runs on task goroutines.
func (s *Store[S, A]) deliver(taskCtx context.Context, action A) {
	err := handlers.Enqueue(taskCtx, s.queue, message[A]{action: action, taskCtx: taskCtx})
	if err != nil && !errors.Is(err, model.ErrNoPrimaryLoop) && !effects.IsCancellation(taskCtx, err) {
		s.opts.logger.Warn("failed to deliver effect action", zap.String("action", actionName(action)), zap.Error(err))
	}
}

func (s *Store[S, A]) issue(msg string, fields ...zap.Field) {
	if m := s.opts.metrics; m != nil {
		m.issuesTotal.WithLabelValues(s.opts.name).Inc()
	}
	s.opts.logger.DPanic(msg, fields...)
}

func (s *Store[S, A]) taskStarted(ctx context.Context, ids []any) (context.Context, func(error)) {
	ctx, span := s.opts.tracer.Start(ctx, "store.effect", trace.WithAttributes(
		attribute.String("store", s.opts.name),
		attribute.Int("ids", len(ids)),
	))
	if m := s.opts.metrics; m != nil {
		m.effectsInFlight.WithLabelValues(s.opts.name).Inc()
	}
	return ctx, func(err error) {
		if m := s.opts.metrics; m != nil {
			m.effectsInFlight.WithLabelValues(s.opts.name).Dec()
		}
		if err != nil && !effects.IsCancellation(ctx, err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func actionName(action any) string {
	return fmt.Sprintf("%T", action)
}
