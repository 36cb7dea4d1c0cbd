// Package effects describes the work a reducer asks the runtime to do after it has
// updated state.
//
// An Effect is a value, never an action in itself. A reducer returns one Effect per
// call and the runtime (store.Store or teststore.TestStore) interprets it:
//
//   - None: nothing to do.
//   - Send: reduce another action synchronously, in the same logical step.
//   - Run: start a cancellable task on its own goroutine. The task receives a
//     context and a Sender; every action it sends is marshalled back onto the
//     store's primary loop.
//   - Cancel: cancel every running task tagged with an identity.
//   - Merge: interpret the members in order; run members execute concurrently.
//
// Identities are any comparable values. Child features are namespaced with
// Namespaced so the same identity in two children never collides, and
// CancelScope cancels everything a namespace owns.
//
// Example:
//
//	case StartTimer:
//	    return effects.Run(func(ctx context.Context, send effects.Sender[Action]) error {
//	        for {
//	            if err := clock.Sleep(ctx, time.Second); err != nil {
//	                return err
//	            }
//	            send(Tick{})
//	        }
//	    }).Cancellable(timerID{})
//	case StopTimer:
//	    return effects.Cancel[Action](timerID{})
package effects
