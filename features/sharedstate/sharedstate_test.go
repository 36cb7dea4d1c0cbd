package sharedstate_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/features/sharedstate"
	"github.com/on-the-ground/composable_ive_go/internal/model"
	"github.com/on-the-ground/composable_ive_go/shared"
	"github.com/on-the-ground/composable_ive_go/shared/sqlitekv"
	"github.com/on-the-ground/composable_ive_go/teststore"
)

var notify = model.NewEffectScopeConfig(4, 2)

func backends() map[string]func(t *testing.T) *shared.Backend {
	return map[string]func(t *testing.T) *shared.Backend{
		"memory": func(t *testing.T) *shared.Backend {
			b := shared.NewInMemory(context.Background(), zap.NewNop(), notify)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
		"appStorage": func(t *testing.T) *shared.Backend {
			kv, err := sqlitekv.Open(filepath.Join(t.TempDir(), "shared.db"), 10*time.Millisecond, zap.NewNop())
			require.NoError(t, err)
			b := shared.NewAppStorage(context.Background(), kv, zap.NewNop(), notify)
			t.Cleanup(func() {
				_ = b.Close()
				_ = kv.Close()
			})
			return b
		},
		"file": func(t *testing.T) *shared.Backend {
			b, err := shared.NewFileStorage(context.Background(), t.TempDir(),
				shared.FileOptions{PollInterval: 10 * time.Millisecond}, zap.NewNop(), notify)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}
}

func TestSharedState_TabsShareStats(t *testing.T) {
	for name, newBackend := range backends() {
		t.Run(name, func(t *testing.T) {
			key := sharedstate.StatsKey(newBackend(t))
			store := teststore.New(t, sharedstate.NewState(key), sharedstate.Reducer())

			saved := sharedstate.Counter{Action: sharedstate.StatsSaved{}}
			store.Send(sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, nil)
			store.Receive(saved, nil)
			store.Send(sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, nil)
			store.Receive(saved, nil)
			store.Send(sharedstate.Counter{Action: sharedstate.DecrementButtonTapped{}}, nil)
			store.Receive(saved, nil)

			want := sharedstate.Stats{Count: 1, MaxCount: 2, NumberOfCounts: 3}
			assert.Equal(t, want, store.State().Counter.Stats.Load())
			assert.Equal(t, want, store.State().Profile.Stats.Load())

			store.Send(sharedstate.Profile{Action: sharedstate.ResetStatsButtonTapped{}}, nil)
			store.Receive(sharedstate.Profile{Action: sharedstate.StatsSaved{}}, nil)
			assert.Equal(t, sharedstate.Stats{}, store.State().Counter.Stats.Load())
		})
	}
}

func TestSharedState_StatsSurviveANewStore(t *testing.T) {
	dir := t.TempDir()
	open := func() *shared.Backend {
		b, err := shared.NewFileStorage(context.Background(), dir, shared.FileOptions{}, zap.NewNop(), notify)
		require.NoError(t, err)
		return b
	}

	first := open()
	store := teststore.New(t, sharedstate.NewState(sharedstate.StatsKey(first)), sharedstate.Reducer())
	store.Send(sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, nil)
	store.Receive(sharedstate.Counter{Action: sharedstate.StatsSaved{}}, nil)
	store.Finish()
	require.NoError(t, first.Close())

	second := open()
	defer second.Close()
	state := sharedstate.NewState(sharedstate.StatsKey(second))
	assert.Equal(t, 1, state.Profile.Stats.Load().Count)
}

func TestSharedState_PrimeAlert(t *testing.T) {
	backend := shared.NewInMemory(context.Background(), zap.NewNop(), notify)
	defer backend.Close()
	key := sharedstate.StatsKey(backend)
	require.NoError(t, shared.New(key, sharedstate.Stats{}).WithLock(context.Background(), func(s *sharedstate.Stats) {
		s.Count = 7
	}))
	store := teststore.New(t, sharedstate.NewState(key), sharedstate.Reducer())

	store.Send(sharedstate.Counter{Action: sharedstate.IsPrimeButtonTapped{}}, func(s *sharedstate.State) {
		s.Counter.Alert = sharedstate.PrimeAlert(7)
	})
	assert.Equal(t, "👍 The number 7 is prime!", store.State().Counter.Alert.Title)

	store.Send(sharedstate.Counter{Action: sharedstate.CounterAlert{Action: store.State().Counter.Alert.Tap(0)}},
		func(s *sharedstate.State) { s.Counter.Alert = nil })
}

func TestSharedState_ObserveExternalChanges(t *testing.T) {
	backend := shared.NewInMemory(context.Background(), zap.NewNop(), notify)
	defer backend.Close()
	key := sharedstate.StatsKey(backend)
	store := teststore.New(t, sharedstate.NewState(key), sharedstate.Reducer())

	store.Send(sharedstate.Observe{}, nil)
	store.Receive(sharedstate.StatsChanged{}, nil)

	// another screen of the app writes the same key
	require.NoError(t, shared.New(key, sharedstate.Stats{}).WithLock(context.Background(), (*sharedstate.Stats).Increment))
	store.Receive(sharedstate.StatsChanged{Stats: sharedstate.Stats{Count: 1, MaxCount: 1, NumberOfCounts: 1}}, nil)

	store.Send(sharedstate.StopObserving{}, nil)
}

type failingStorage struct {
	shared.Storage
	fail atomic.Bool
}

func (f *failingStorage) Save(ctx context.Context, key string, data []byte) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.Storage.Save(ctx, key, data)
}

func TestSharedState_SaveRunsOffTheStoreLoop(t *testing.T) {
	mem, err := shared.NewMemDBStorage()
	require.NoError(t, err)
	storage := &failingStorage{Storage: mem}
	backend := shared.NewAppStorage(context.Background(), storage, zap.NewNop(), notify)
	defer backend.Close()
	store := teststore.New(t, sharedstate.NewState(sharedstate.StatsKey(backend)), sharedstate.Reducer())

	// the tap only schedules the write
	storage.fail.Store(true)
	store.Send(sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, nil)
	msg := fmt.Sprintf("%s: %s: disk full", shared.ErrSave, sharedstate.StatsKeyName)
	store.Receive(sharedstate.Counter{Action: sharedstate.SaveFailed{Message: msg}}, func(s *sharedstate.State) {
		s.Counter.SaveError = msg
	})
	assert.Equal(t, sharedstate.Stats{}, store.State().Counter.Stats.Load())

	storage.fail.Store(false)
	store.Send(sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, nil)
	store.Receive(sharedstate.Counter{Action: sharedstate.StatsSaved{}}, func(s *sharedstate.State) {
		s.Counter.SaveError = ""
	})
	assert.Equal(t, 1, store.State().Counter.Stats.Load().Count)
}

func TestSharedState_SelectTab(t *testing.T) {
	store := teststore.New(t, sharedstate.State{}, sharedstate.Reducer())
	store.Send(sharedstate.SelectTab{Tab: sharedstate.TabProfile}, func(s *sharedstate.State) {
		s.CurrentTab = sharedstate.TabProfile
	})
}
