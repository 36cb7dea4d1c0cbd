package handlers

import (
	"context"

	"github.com/on-the-ground/composable_ive_go/internal/model"
)

// Dispatcher hands out the channel a message must be enqueued on.
type Dispatcher[T any] interface {
	ChannelOf(msg T) chan<- T
	Done() <-chan struct{}
}

// Enqueue blocks until msg is accepted or either context ends.
func Enqueue[T any](ctx context.Context, d Dispatcher[T], msg T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.Done():
		return model.ErrNoPrimaryLoop
	case d.ChannelOf(msg) <- msg:
		return nil
	}
}

// --- single queue ---

var _ Dispatcher[any] = singleQueue[any]{}

type singleQueue[T any] struct {
	ch   chan T
	done <-chan struct{}
}

func (q singleQueue[T]) ChannelOf(_ T) chan<- T { return q.ch }
func (q singleQueue[T]) Done() <-chan struct{}  { return q.done }

// NewSingleQueue starts one worker goroutine. Every message is handled on that goroutine in
// arrival order, which makes it usable as a primary execution context.
func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	ch := make(chan T, bufferSize)
	ready := make(chan struct{})

	go func() {
		close(ready)
		for {
			select {
			case msg := <-ch:
				handleFn(ctx, msg)
			case <-ctx.Done():
				return
			}
		}
	}()
	<-ready

	return singleQueue[T]{ch: ch, done: ctx.Done()}
}

// --- partitioned queue ---

var _ Dispatcher[model.Partitionable] = partitionedQueue[model.Partitionable]{}

type partitionedQueue[T model.Partitionable] struct {
	chs  []chan T
	done <-chan struct{}
}

func (pq partitionedQueue[T]) ChannelOf(msg T) chan<- T {
	return pq.chs[indexByHash(msg, len(pq.chs))]
}

func (pq partitionedQueue[T]) Done() <-chan struct{} { return pq.done }

// NewPartitionedQueue starts config.NumWorkers goroutines. Messages sharing a partition key
// are handled by the same worker and therefore in order.
func NewPartitionedQueue[T model.Partitionable](
	ctx context.Context,
	config model.EffectScopeConfig,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	chs := make([]chan T, config.NumWorkers)
	for i := range chs {
		ch := make(chan T, config.BufferSize)
		go func() {
			for {
				select {
				case msg := <-ch:
					handleFn(ctx, msg)
				case <-ctx.Done():
					return
				}
			}
		}()
		chs[i] = ch
	}
	return partitionedQueue[T]{chs: chs, done: ctx.Done()}
}
