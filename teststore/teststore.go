// Package teststore drives a reducer step by step from a test and asserts every
// state change and every action its effects feed back.
package teststore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/on-the-ground/composable_ive_go/internal/effectscope"
	"github.com/on-the-ground/composable_ive_go/reducer"
	"github.com/on-the-ground/composable_ive_go/store"
)

// Exhaustivity decides how much a test must assert.
type Exhaustivity int

const (
	// Exhaustive fails on any unasserted state change, received action or running effect.
	Exhaustive Exhaustivity = iota
	// NonExhaustive checks only what the test asserts and skips unmatched actions.
	NonExhaustive
)

const defaultTimeout = time.Second

type received[A any] struct {
	action A
	// ctx is nil for actions of Send effects.
	ctx context.Context
}

// TestStore is a Store stand-in whose loop is the test goroutine.
type TestStore[S, A any] struct {
	t       testing.TB
	reducer reducer.Reducer[S, A]
	state   S
	scope   *effectscope.EffectScope[A]
	opts    options[A]

	mu       sync.Mutex
	received []received[A]
	changed  chan struct{}

	finishOnce sync.Once
}

type options[A any] struct {
	exhaustivity Exhaustivity
	timeout      time.Duration
	equal        func(a, b A) bool
	logger       *zap.Logger
}

type Option[A any] func(*options[A])

func WithExhaustivity[A any](e Exhaustivity) Option[A] {
	return func(o *options[A]) { o.exhaustivity = e }
}

// WithTimeout bounds how long Receive and Finish wait for effects.
func WithTimeout[A any](d time.Duration) Option[A] {
	return func(o *options[A]) { o.timeout = d }
}

// WithActionEquality replaces the comparison Receive uses for actions.
func WithActionEquality[A any](equal func(a, b A) bool) Option[A] {
	return func(o *options[A]) { o.equal = equal }
}

// New returns a TestStore that calls Finish when the test ends.
func New[S, A any](t testing.TB, initial S, r reducer.Reducer[S, A], opts ...Option[A]) *TestStore[S, A] {
	t.Helper()
	o := options[A]{
		exhaustivity: Exhaustive,
		timeout:      defaultTimeout,
		equal:        defaultEqual[A],
		logger:       zaptest.NewLogger(t),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ts := &TestStore[S, A]{
		t:       t,
		reducer: r,
		state:   initial,
		opts:    o,
		changed: make(chan struct{}),
	}
	ts.scope = effectscope.New(context.Background(), o.logger, effectscope.Hooks[A]{
		Sync:    func(a A) { ts.push(received[A]{action: a}) },
		Deliver: func(ctx context.Context, a A) { ts.push(received[A]{action: a, ctx: ctx}) },
		Issue: func(msg string, fields ...zap.Field) {
			t.Errorf("%s %v", msg, fieldValues(fields))
		},
	})
	t.Cleanup(ts.Finish)
	return ts
}

func defaultEqual[A any](a, b A) bool {
	if eq, ok := any(a).(interface{ Equal(A) bool }); ok {
		return eq.Equal(b)
	}
	return assert.ObjectsAreEqual(a, b)
}

// State is the current state.
func (ts *TestStore[S, A]) State() S {
	return ts.state
}

// Send reduces action. assert receives the expected state and must apply every
// change the action is supposed to make; nil asserts no change.
func (ts *TestStore[S, A]) Send(action A, assert func(*S)) {
	ts.t.Helper()
	if ts.opts.exhaustivity == Exhaustive {
		if pending := ts.pending(); len(pending) > 0 {
			ts.t.Errorf("must handle %d received action(s) before sending %s: %s",
				len(pending), name(action), store.Dump(pending))
		}
	}
	ts.reduce(action, assert)
}

// Receive waits for the next action fed back by an effect, checks that it equals
// expected and reduces it. In non-exhaustive mode unmatched actions are reduced and
// skipped on the way.
func (ts *TestStore[S, A]) Receive(expected A, assert func(*S)) {
	ts.t.Helper()
	ts.receive(store.Dump(expected), func(a A) bool { return ts.opts.equal(expected, a) }, assert)
}

// ReceiveMatching is Receive for actions that cannot be compared, such as results
// carrying errors.
func (ts *TestStore[S, A]) ReceiveMatching(match func(A) bool, assert func(*S)) {
	ts.t.Helper()
	ts.receive("a matching action", match, assert)
}

func (ts *TestStore[S, A]) receive(want string, match func(A) bool, assert func(*S)) {
	ts.t.Helper()
	deadline := time.After(ts.opts.timeout)
	for {
		next, ok := ts.next(deadline)
		if !ok {
			ts.t.Errorf("expected to receive %s, but received nothing within %s", want, ts.opts.timeout)
			return
		}
		if match(next) {
			ts.reduce(next, assert)
			return
		}
		if ts.opts.exhaustivity == Exhaustive {
			ts.t.Errorf("expected to receive %s\nbut received %s", want, store.Dump(next))
			return
		}
		ts.skip(next)
	}
}

// Assert checks the current state without sending anything.
func (ts *TestStore[S, A]) Assert(assert func(*S)) {
	ts.t.Helper()
	expected := ts.state
	assert(&expected)
	if diff := store.Compare(expected, ts.state); diff != "" {
		ts.t.Errorf("state does not match:\n%s", diff)
	}
}

// SkipReceivedActions reduces every action received so far without asserting it.
func (ts *TestStore[S, A]) SkipReceivedActions() {
	ts.t.Helper()
	for _, r := range ts.drain() {
		if r.ctx != nil && r.ctx.Err() != nil {
			continue
		}
		ts.skip(r.action)
	}
}

// SkipInFlightEffects cancels every running effect.
func (ts *TestStore[S, A]) SkipInFlightEffects() {
	if n := ts.scope.CancelAll(); n > 0 {
		ts.opts.logger.Debug("skipped in-flight effects", zap.Int("count", n))
	}
}

// Finish waits for running effects and, in exhaustive mode, fails for every effect
// still running and every action left unreceived. It is idempotent.
func (ts *TestStore[S, A]) Finish() {
	ts.t.Helper()
	ts.finishOnce.Do(func() {
		defer ts.scope.Close()

		ctx, cancel := context.WithTimeout(context.Background(), ts.opts.timeout)
		defer cancel()
		waitErr := ts.scope.Wait(ctx)

		if ts.opts.exhaustivity != Exhaustive {
			return
		}
		if waitErr != nil {
			ts.t.Errorf("%d effect(s) still running at the end of the test", ts.scope.InFlight())
		}
		if pending := ts.pending(); len(pending) > 0 {
			ts.t.Errorf("%d received action(s) were never asserted: %s", len(pending), store.Dump(pending))
		}
	})
}

// reduce runs action against the real state and compares it with the expectation.
func (ts *TestStore[S, A]) reduce(action A, assert func(*S)) {
	ts.t.Helper()
	before := ts.state
	eff := ts.reducer.Reduce(&ts.state, action)

	expected := before
	if ts.opts.exhaustivity == NonExhaustive {
		expected = ts.state
	}
	if assert != nil {
		assert(&expected)
	}
	if diff := store.Compare(expected, ts.state); diff != "" {
		ts.t.Errorf("state change after %s does not match:\n%s", name(action), diff)
	}
	ts.scope.Schedule(eff)
}

// skip reduces action without checking the state it produced.
func (ts *TestStore[S, A]) skip(action A) {
	ts.scope.Schedule(ts.reducer.Reduce(&ts.state, action))
}

func (ts *TestStore[S, A]) push(r received[A]) {
	if r.ctx != nil && r.ctx.Err() != nil {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.received = append(ts.received, r)
	close(ts.changed)
	ts.changed = make(chan struct{})
}

// next pops the oldest received action still allowed to run.
func (ts *TestStore[S, A]) next(deadline <-chan time.Time) (A, bool) {
	for {
		ts.mu.Lock()
		for len(ts.received) > 0 {
			r := ts.received[0]
			ts.received = ts.received[1:]
			if r.ctx == nil || r.ctx.Err() == nil {
				ts.mu.Unlock()
				return r.action, true
			}
		}
		changed := ts.changed
		ts.mu.Unlock()

		select {
		case <-changed:
		case <-deadline:
			var zero A
			return zero, false
		}
	}
}

func (ts *TestStore[S, A]) pending() []A {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var out []A
	for _, r := range ts.received {
		if r.ctx == nil || r.ctx.Err() == nil {
			out = append(out, r.action)
		}
	}
	return out
}

func (ts *TestStore[S, A]) drain() []received[A] {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := ts.received
	ts.received = nil
	return out
}

func name(action any) string {
	return fmt.Sprintf("%T", action)
}

func fieldValues(fields []zap.Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch {
		case f.Interface != nil:
			out[f.Key] = f.Interface
		case f.String != "":
			out[f.Key] = f.String
		default:
			out[f.Key] = f.Integer
		}
	}
	return out
}
