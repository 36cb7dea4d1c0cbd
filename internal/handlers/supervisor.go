package handlers

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Supervisor runs effect tasks on their own goroutines and cancels them by identity.
//
// Every task gets its own cancellable context derived from the context passed to Spawn.
// A task may carry any number of comparable identities; Cancel(id) cancels every task
// currently tagged with id and nothing else.
type Supervisor struct {
	logger *zap.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	nextSeq uint64
	tasks   map[uint64]*supervisedTask
	byID    map[any]map[uint64]struct{}
	seen    map[any]struct{}
}

type supervisedTask struct {
	cancel context.CancelFunc
	ids    []any
}

func NewSupervisor(logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		logger: logger,
		tasks:  make(map[uint64]*supervisedTask),
		byID:   make(map[any]map[uint64]struct{}),
		seen:   make(map[any]struct{}),
	}
}

// Spawn starts fn on a new goroutine and returns once the goroutine is registered.
// Identities that are not comparable are dropped and reported.
func (s *Supervisor) Spawn(parent context.Context, ids []any, fn func(context.Context)) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	t := &supervisedTask{cancel: cancel}
	for _, id := range ids {
		if !isComparable(id) {
			s.logger.DPanic("cancellation identity is not comparable", zap.Any("id", id))
			continue
		}
		t.ids = append(t.ids, id)
		if s.byID[id] == nil {
			s.byID[id] = make(map[uint64]struct{})
		}
		s.byID[id][seq] = struct{}{}
		s.seen[id] = struct{}{}
	}
	s.tasks[seq] = t
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.forget(seq)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in effect task",
					zap.Any("error", r),
					zap.Any("ids", ids),
				)
			}
		}()
		fn(ctx)
	}()
}

// Cancel cancels every running task tagged with id and reports how many were cancelled.
func (s *Supervisor) Cancel(id any) int {
	if !isComparable(id) {
		return 0
	}
	s.mu.Lock()
	seqs := s.byID[id]
	cancels := make([]context.CancelFunc, 0, len(seqs))
	for seq := range seqs {
		if t, ok := s.tasks[seq]; ok {
			cancels = append(cancels, t.cancel)
			s.removeLocked(seq)
		}
	}
	delete(s.byID, id)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// Seen reports whether any task was ever tagged with id.
func (s *Supervisor) Seen(id any) bool {
	if !isComparable(id) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// InFlight is the number of tasks that have neither finished nor been cancelled.
func (s *Supervisor) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CancelAll cancels every running task.
func (s *Supervisor) CancelAll() int {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.tasks))
	for seq, t := range s.tasks {
		cancels = append(cancels, t.cancel)
		s.removeLocked(seq)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// Wait blocks until every spawned goroutine returned or ctx ends.
func (s *Supervisor) Wait(ctx context.Context) error {
	waitCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) forget(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[seq]; ok {
		t.cancel()
		s.removeLocked(seq)
	}
}

func (s *Supervisor) removeLocked(seq uint64) {
	t, ok := s.tasks[seq]
	if !ok {
		return
	}
	delete(s.tasks, seq)
	for _, id := range t.ids {
		if set, ok := s.byID[id]; ok {
			delete(set, seq)
			if len(set) == 0 {
				delete(s.byID, id)
			}
		}
	}
}

func isComparable(id any) bool {
	if id == nil {
		return false
	}
	return reflect.TypeOf(id).Comparable()
}
