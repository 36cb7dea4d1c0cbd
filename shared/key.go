package shared

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/internal/helper"
)

// Key names a value of type T on a Backend.
type Key[T any] struct {
	backend *Backend
	name    string
}

func NewKey[T any](backend *Backend, name string) Key[T] {
	return Key[T]{backend: backend, name: name}
}

func (k Key[T]) Name() string { return k.name }

func (k Key[T]) Backend() *Backend { return k.backend }

// Shared is a handle to the value of a Key. The zero Shared always reads the zero T.
type Shared[T any] struct {
	key Key[T]
	def T
	ref *reference
}

// New returns a handle to key that reads def while the key has no stored value.
func New[T any](key Key[T], def T) Shared[T] {
	if key.backend == nil {
		return Shared[T]{key: key, def: def}
	}
	return Shared[T]{key: key, def: def, ref: key.backend.reference(key.name, decodeJSON[T])}
}

func decodeJSON[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s Shared[T]) Key() Key[T] { return s.key }

// Load returns the current value.
func (s Shared[T]) Load() T {
	if s.ref == nil {
		return s.def
	}
	v, present := s.ref.get()
	return s.typed(v, present)
}

func (s Shared[T]) typed(v any, present bool) T {
	if !present {
		return s.def
	}
	t, err := helper.GetTypedValueOf[T](func() (any, error) { return v, nil })
	if err != nil {
		s.key.backend.logger.DPanic("shared key used with two different types",
			zap.String("key", s.key.name),
			zap.String("requested", fmt.Sprintf("%T", s.def)),
			zap.Error(err),
		)
		return s.def
	}
	return t
}

// WithLock runs mutate on a copy of the current value and persists the result. No
// other WithLock on the same key interleaves between the read and the write. When the
// value cannot be saved the cell keeps its previous value and the error wraps ErrSave.
func (s Shared[T]) WithLock(ctx context.Context, mutate func(*T)) error {
	if s.ref == nil {
		return fmt.Errorf("%w: %s has no backend", ErrSave, s.key.name)
	}
	if err := s.update(ctx, mutate); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSave, s.key.name, err)
	}
	s.key.backend.notify(s.ref, false)
	return nil
}

func (s Shared[T]) update(ctx context.Context, mutate func(*T)) error {
	s.ref.write.Lock()
	defer s.ref.write.Unlock()

	next := s.Load()
	mutate(&next)

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return s.key.backend.save(ctx, s.ref, next, data)
}

// Subscribe calls fn after changes of the key, from whichever handle or process they
// came. Calls for one key never overlap and arrive in order. Changes made while fn is
// still running are delivered as one call carrying the latest value.
func (s Shared[T]) Subscribe(fn func(Change[T])) (unsubscribe func()) {
	if s.ref == nil {
		return func() {}
	}
	return s.ref.subscribe(func(v any, present bool, span TimeSpan) {
		fn(Change[T]{Key: s.key.name, Value: s.typed(v, present), Span: span})
	})
}

func (s Shared[T]) String() string {
	return fmt.Sprintf("Shared(%s=%+v)", s.key.name, s.Load())
}
