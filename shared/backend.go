package shared

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/internal/handlers"
	"github.com/on-the-ground/composable_ive_go/internal/helper"
	"github.com/on-the-ground/composable_ive_go/internal/model"
)

// Backend is the set of reference cells backed by one Storage.
type Backend struct {
	kind    string
	storage Storage
	owned   io.Closer
	logger  *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	notifier handlers.Dispatcher[notification]
	refs     sync.Map
}

// notification asks the worker owning name to service the cell of that key. At most
// one is queued per key at a time.
type notification struct {
	name string
}

func (n notification) PartitionKey() string { return n.name }

// NewBackend serves keys from storage. kind names the backend in logs.
// Change notifications are delivered per key, in order, by the workers described
// by notify.
func NewBackend(
	ctx context.Context,
	kind string,
	storage Storage,
	logger *zap.Logger,
	notify model.EffectScopeConfig,
) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	b := &Backend{
		kind:    kind,
		storage: storage,
		logger:  logger.With(zap.String("backend", kind)),
		ctx:     ctx,
		cancel:  cancel,
	}
	b.notifier = handlers.NewPartitionedQueue(ctx, notify, b.handle)
	return b
}

// NewInMemory shares values between the stores of this process only.
func NewInMemory(ctx context.Context, logger *zap.Logger, notify model.EffectScopeConfig) *Backend {
	storage, err := NewMemDBStorage()
	if err != nil {
		// the schema is static; failing to build it is a bug
		panic(err)
	}
	return NewBackend(ctx, "memory", storage, logger, notify)
}

// NewAppStorage serves keys from a key-value store such as sqlitekv.
// The caller keeps ownership of kv.
func NewAppStorage(ctx context.Context, kv Storage, logger *zap.Logger, notify model.EffectScopeConfig) *Backend {
	return NewBackend(ctx, "appStorage", kv, logger, notify)
}

// NewFileStorage keeps one JSON file per key in dir.
func NewFileStorage(
	ctx context.Context,
	dir string,
	opts FileOptions,
	logger *zap.Logger,
	notify model.EffectScopeConfig,
) (*Backend, error) {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	storage, err := OpenFileStorage(dir, opts)
	if err != nil {
		return nil, err
	}
	b := NewBackend(ctx, "file", storage, logger, notify)
	b.owned = storage
	return b, nil
}

func (b *Backend) Kind() string { return b.kind }

// Close stops change delivery and releases storages the backend created.
func (b *Backend) Close() error {
	b.cancel()
	b.refs.Range(func(_, v any) bool {
		if r, ok := v.(*reference); ok && r.unwatch != nil {
			r.unwatch()
		}
		return true
	})
	if b.owned != nil {
		return b.owned.Close()
	}
	return nil
}

func (b *Backend) lookup(name string) (*reference, bool) {
	return helper.GetTypedValueOf2[*reference](func() (any, bool) { return b.refs.Load(name) })
}

// reference returns the cell of name, creating and loading it on first use.
func (b *Backend) reference(name string, decode func([]byte) (any, error)) *reference {
	r, ok := b.lookup(name)
	if !ok {
		actual, loaded := b.refs.LoadOrStore(name, newReference(name, decode))
		r = helper.MustGetTypedValue[*reference](func() (any, error) { return actual, nil })
		if !loaded {
			r.unwatch = b.storage.Subscribe(name, func() {
				b.notify(r, true)
			})
		}
	}
	r.once.Do(func() {
		value, present, hash := b.fetch(b.ctx, r)
		r.load(value, present, hash)
	})
	return r
}

func (b *Backend) fetch(ctx context.Context, r *reference) (value any, present bool, hash uint64) {
	data, err := b.storage.Load(ctx, r.name)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false, 0
	case err != nil:
		b.logger.Warn("failed to load shared value, using default", zap.String("key", r.name), zap.Error(err))
		return nil, false, 0
	}
	hash = xxhash.Sum64(data)
	value, err = r.decode(data)
	if err != nil {
		b.logger.Warn("corrupt shared value, using default", zap.String("key", r.name), zap.Error(err))
		return nil, false, hash
	}
	return value, true, hash
}

// save persists data and stores value in r. The write lock of r must be held; the
// caller publishes once it has released it.
func (b *Backend) save(ctx context.Context, r *reference, value any, data []byte) error {
	start := time.Now()
	if err := b.storage.Save(ctx, r.name, data); err != nil {
		return err
	}
	r.set(value, true, xxhash.Sum64(data), spanSince(start))
	return nil
}

// notify queues a notification for r unless one is already waiting; that one will
// observe the latest value.
func (b *Backend) notify(r *reference, reload bool) {
	if !r.schedule(reload) {
		return
	}
	n := notification{name: r.name}
	if err := handlers.Enqueue(b.ctx, b.notifier, n); err != nil && b.ctx.Err() == nil {
		b.logger.Warn("dropped shared change notification", zap.String("key", n.name), zap.Error(err))
	}
}

// handle runs on the notifier worker that owns n.name.
func (b *Backend) handle(ctx context.Context, n notification) {
	r, ok := b.lookup(n.name)
	if !ok {
		return
	}
	if reload, version := r.take(); reload {
		start := time.Now()
		value, present, hash := b.fetch(ctx, r)
		if r.setIfUnchanged(version, value, present, hash, spanSince(start)) {
			b.logger.Debug("shared value changed externally", zap.String("key", n.name))
		}
	}
	r.publish()
}
