package shared

import (
	"context"

	"github.com/on-the-ground/composable_ive_go/effects"
)

// Publisher is a long-running effect that sends toAction(value) with the current
// value once it is subscribed, then after every change of s. Intermediate values may
// be skipped when changes arrive faster than the store consumes them; the latest
// value is always delivered.
func Publisher[T, A any](s Shared[T], toAction func(T) A) effects.Effect[A] {
	return effects.Run(func(ctx context.Context, send effects.Sender[A]) error {
		latest := make(chan T, 1)
		unsubscribe := s.Subscribe(func(c Change[T]) {
			select {
			case <-latest:
			default:
			}
			latest <- c.Value
		})
		defer unsubscribe()

		send(toAction(s.Load()))
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v := <-latest:
				send(toAction(v))
			}
		}
	})
}
