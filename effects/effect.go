package effects

import (
	"context"
	"errors"
)

// Kind discriminates the cases of an Effect.
type Kind int

const (
	KindNone Kind = iota
	KindSend
	KindRun
	KindCancel
	KindMerge
	// KindDismiss asks the presenting parent to dismiss the feature that returned it.
	KindDismiss
	// KindReport carries a programmer error detected while reducing.
	KindReport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSend:
		return "send"
	case KindRun:
		return "run"
	case KindCancel:
		return "cancel"
	case KindMerge:
		return "merge"
	case KindDismiss:
		return "dismiss"
	case KindReport:
		return "report"
	}
	return "unknown"
}

// Sender delivers an action from a running task back to the store.
type Sender[A any] func(A)

// Task is the body of a Run effect. Returning an error that is not a cancellation is
// reported as an unhandled effect failure; use RunCatching to turn errors into actions.
type Task[A any] func(ctx context.Context, send Sender[A]) error

// Effect is an immutable description of deferred work producing actions of type A.
// The zero value is None.
type Effect[A any] struct {
	kind        Kind
	action      A
	task        Task[A]
	ids         []any
	cancelFirst bool
	target      any
	quiet       bool
	members     []Effect[A]
	message     string
}

func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Send reduces a immediately after the current reducer pass.
func Send[A any](a A) Effect[A] {
	return Effect[A]{kind: KindSend, action: a}
}

// Run starts task concurrently once the current reducer pass has finished.
func Run[A any](task Task[A]) Effect[A] {
	if task == nil {
		return None[A]()
	}
	return Effect[A]{kind: KindRun, task: task}
}

// RunCatching is Run where a failed task sends onError(err) instead of being reported.
func RunCatching[A any](task Task[A], onError func(error) A) Effect[A] {
	if task == nil {
		return None[A]()
	}
	return Run(func(ctx context.Context, send Sender[A]) error {
		err := task(ctx, send)
		if err == nil || IsCancellation(ctx, err) {
			return err
		}
		send(onError(err))
		return nil
	})
}

// Cancel cancels every running task tagged with id.
func Cancel[A any](id any) Effect[A] {
	return Effect[A]{kind: KindCancel, target: id}
}

// Merge combines effects. None members are dropped and nested merges are flattened.
func Merge[A any](effects ...Effect[A]) Effect[A] {
	members := make([]Effect[A], 0, len(effects))
	for _, e := range effects {
		switch e.kind {
		case KindNone:
		case KindMerge:
			members = append(members, e.members...)
		default:
			members = append(members, e)
		}
	}
	switch len(members) {
	case 0:
		return None[A]()
	case 1:
		return members[0]
	}
	return Effect[A]{kind: KindMerge, members: members}
}

// Dismiss asks whichever parent presented this feature to dismiss it.
func Dismiss[A any]() Effect[A] {
	return Effect[A]{kind: KindDismiss}
}

// Report flags a programmer error. Stores log it with DPanic and test stores fail the test.
func Report[A any](message string) Effect[A] {
	return Effect[A]{kind: KindReport, message: message}
}

// Cancellable tags every Run effect in e with id.
func (e Effect[A]) Cancellable(id any) Effect[A] {
	return e.tag(id, false)
}

// CancelInFlight tags every Run effect in e with id and cancels tasks already tagged with
// id before starting them.
func (e Effect[A]) CancelInFlight(id any) Effect[A] {
	return e.tag(id, true)
}

func (e Effect[A]) tag(id any, cancelFirst bool) Effect[A] {
	switch e.kind {
	case KindRun:
		e.ids = append(append([]any(nil), e.ids...), id)
		e.cancelFirst = e.cancelFirst || cancelFirst
	case KindMerge:
		e.members = mapMembers(e.members, func(m Effect[A]) Effect[A] { return m.tag(id, cancelFirst) })
	}
	return e
}

// OnDismiss replaces every Dismiss in e with the result of f.
func (e Effect[A]) OnDismiss(f func() Effect[A]) Effect[A] {
	switch e.kind {
	case KindDismiss:
		return f()
	case KindMerge:
		e.members = mapMembers(e.members, func(m Effect[A]) Effect[A] { return m.OnDismiss(f) })
	}
	return e
}

func (e Effect[A]) Kind() Kind           { return e.kind }
func (e Effect[A]) Action() A            { return e.action }
func (e Effect[A]) Task() Task[A]        { return e.task }
func (e Effect[A]) IDs() []any           { return e.ids }
func (e Effect[A]) CancelsFirst() bool   { return e.cancelFirst }
func (e Effect[A]) Target() any          { return e.target }
func (e Effect[A]) Members() []Effect[A] { return e.members }
func (e Effect[A]) Message() string      { return e.message }

// Quiet reports whether cancelling an identity that never ran is expected for this
// Cancel effect, as it is for namespace teardown.
func (e Effect[A]) Quiet() bool { return e.quiet }

// IsNone reports whether interpreting e does nothing.
func (e Effect[A]) IsNone() bool { return e.kind == KindNone }

// Map lifts an effect producing A into one producing B.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	out := Effect[B]{
		kind:        e.kind,
		ids:         e.ids,
		cancelFirst: e.cancelFirst,
		target:      e.target,
		quiet:       e.quiet,
		message:     e.message,
	}
	switch e.kind {
	case KindSend:
		out.action = f(e.action)
	case KindRun:
		task := e.task
		out.task = func(ctx context.Context, send Sender[B]) error {
			return task(ctx, func(a A) { send(f(a)) })
		}
	case KindMerge:
		out.members = make([]Effect[B], len(e.members))
		for i, m := range e.members {
			out.members[i] = Map(m, f)
		}
	}
	return out
}

// IsCancellation reports whether err is how a task observed its own cancellation.
func IsCancellation(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil
}

func mapMembers[A any](members []Effect[A], f func(Effect[A]) Effect[A]) []Effect[A] {
	out := make([]Effect[A], len(members))
	for i, m := range members {
		out[i] = f(m)
	}
	return out
}
