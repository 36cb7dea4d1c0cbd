package shared

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	ristretto "github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/internal/helper"
)

type FileOptions struct {
	// PollInterval is how often watched files are checked for outside changes.
	PollInterval time.Duration
	// CacheMaxCost bounds the read cache in bytes.
	CacheMaxCost int64
	Logger       *zap.Logger
}

// FileStorage keeps one file per key in a directory. Writes go to a temporary file
// that is renamed over the target, so readers never see a partial payload.
type FileStorage struct {
	dir      string
	cache    *ristretto.Cache[string, []byte]
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	watchers map[string]map[uint64]func()
	stamps   map[string]fileStamp
	nextID   uint64
	polling  bool
	stop     chan struct{}
	stopOnce sync.Once
}

type fileStamp struct {
	exists  bool
	modTime time.Time
	size    int64
}

func OpenFileStorage(dir string, opts FileOptions) (*FileStorage, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.CacheMaxCost <= 0 {
		opts.CacheMaxCost = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create shared directory: %w", err)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e4,
		MaxCost:     opts.CacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &FileStorage{
		dir:      dir,
		cache:    cache,
		interval: opts.PollInterval,
		logger:   opts.Logger,
		watchers: make(map[string]map[uint64]func()),
		stamps:   make(map[string]fileStamp),
		stop:     make(chan struct{}),
	}, nil
}

func (f *FileStorage) path(key string) (string, error) {
	if key == "" || key == "." || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key), nil
}

func (f *FileStorage) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	if data, ok := f.cache.Get(key); ok {
		return append([]byte(nil), data...), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.cache.Set(key, data, int64(len(data)))
	return append([]byte(nil), data...), nil
}

func (f *FileStorage) Save(ctx context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := helper.Retry(3, 10*time.Millisecond, func() error { return os.Rename(tmpName, path) }); err != nil {
		os.Remove(tmpName)
		return err
	}

	stored := append([]byte(nil), data...)
	f.cache.Set(key, stored, int64(len(stored)))
	f.cache.Wait()

	f.mu.Lock()
	f.stamps[key] = stat(path)
	f.mu.Unlock()
	return nil
}

// Subscribe polls the file of key; fn runs on the poller goroutine.
func (f *FileStorage) Subscribe(key string, fn func()) func() {
	path, err := f.path(key)
	if err != nil {
		f.logger.Warn("cannot watch shared file", zap.String("key", key), zap.Error(err))
		return func() {}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	if f.watchers[key] == nil {
		f.watchers[key] = make(map[uint64]func())
		if _, ok := f.stamps[key]; !ok {
			f.stamps[key] = stat(path)
		}
	}
	f.watchers[key][id] = fn
	if !f.polling {
		f.polling = true
		go f.poll()
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.watchers[key], id)
		if len(f.watchers[key]) == 0 {
			delete(f.watchers, key)
		}
	}
}

func (f *FileStorage) poll() {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			for _, fn := range f.changedWatchers() {
				fn()
			}
		}
	}
}

func (f *FileStorage) changedWatchers() []func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fire []func()
	for key, fns := range f.watchers {
		current := stat(filepath.Join(f.dir, key))
		if current == f.stamps[key] {
			continue
		}
		f.stamps[key] = current
		f.cache.Del(key)
		for _, fn := range fns {
			fire = append(fire, fn)
		}
	}
	return fire
}

func (f *FileStorage) Close() error {
	f.stopOnce.Do(func() {
		close(f.stop)
		f.cache.Close()
	})
	return nil
}

func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, modTime: info.ModTime(), size: info.Size()}
}
