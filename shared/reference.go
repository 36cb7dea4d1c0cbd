package shared

import "sync"

// reference is the single cell behind every handle of one key.
type reference struct {
	name   string
	decode func([]byte) (any, error)
	once   sync.Once

	// write serialises read-modify-write cycles. The notifier worker never takes it.
	write sync.Mutex

	mu      sync.RWMutex
	value   any
	present bool
	hash    uint64
	span    TimeSpan
	// version counts writes to the cell; published is the last version fanned out.
	version   uint64
	published uint64
	// pending is set while a notification for the cell sits in the queue; reload
	// asks that notification to read the storage first.
	pending bool
	reload  bool
	subs    map[uint64]func(any, bool, TimeSpan)
	nextSub uint64
	unwatch func()
}

func newReference(name string, decode func([]byte) (any, error)) *reference {
	return &reference{
		name:   name,
		decode: decode,
		subs:   make(map[uint64]func(any, bool, TimeSpan)),
	}
}

func (r *reference) get() (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.present
}

// load seeds the cell without counting as a change.
func (r *reference) load(value any, present bool, hash uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value, r.present, r.hash = value, present, hash
}

func (r *reference) set(value any, present bool, hash uint64, span TimeSpan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value, r.present, r.hash, r.span = value, present, hash, span
	r.version++
}

// setIfUnchanged stores a reloaded payload unless the cell was written after the
// reload started, or the payload is the one the cell already holds. Saves made through
// this cell come back from the storage as identical payloads.
func (r *reference) setIfUnchanged(version uint64, value any, present bool, hash uint64, span TimeSpan) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.version != version || (present == r.present && hash == r.hash) {
		return false
	}
	r.value, r.present, r.hash, r.span = value, present, hash, span
	r.version++
	return true
}

func (r *reference) subscribe(fn func(any, bool, TimeSpan)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSub++
	id := r.nextSub
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// schedule reports whether a notification must be queued for the cell.
func (r *reference) schedule(reload bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reload = r.reload || reload
	if r.pending {
		return false
	}
	r.pending = true
	return true
}

// take dequeues the pending notification, reporting whether it asked for a reload
// and the version the cell had at that point.
func (r *reference) take() (reload bool, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reload, r.reload, r.pending = r.reload, false, false
	return reload, r.version
}

// publish fans the latest value out to subscribers, once per version.
func (r *reference) publish() {
	r.mu.Lock()
	if r.version == r.published {
		r.mu.Unlock()
		return
	}
	r.published = r.version
	value, present, span := r.value, r.present, r.span
	subs := make([]func(any, bool, TimeSpan), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(value, present, span)
	}
}
