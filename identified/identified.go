// Package identified provides an ordered collection of uniquely keyed elements.
//
// Array is a value type: every mutating method returns nothing and replaces the
// backing slice instead of writing into it, so copies of a state that embeds an Array
// never observe each other's changes.
package identified

// Keyed is implemented by elements that carry their own stable key.
type Keyed[K comparable] interface {
	Key() K
}

type Array[K comparable, E Keyed[K]] struct {
	elems []E
}

// Of builds an Array from elems. Later duplicates of a key replace earlier ones in place.
func Of[K comparable, E Keyed[K]](elems ...E) Array[K, E] {
	var a Array[K, E]
	for _, e := range elems {
		a.Upsert(e)
	}
	return a
}

func (a Array[K, E]) Len() int { return len(a.elems) }

// Elements returns a copy of the elements in order.
func (a Array[K, E]) Elements() []E {
	return append([]E(nil), a.elems...)
}

func (a Array[K, E]) Keys() []K {
	keys := make([]K, len(a.elems))
	for i, e := range a.elems {
		keys[i] = e.Key()
	}
	return keys
}

func (a Array[K, E]) At(i int) E { return a.elems[i] }

func (a Array[K, E]) Index(key K) int {
	for i, e := range a.elems {
		if e.Key() == key {
			return i
		}
	}
	return -1
}

func (a Array[K, E]) Get(key K) (E, bool) {
	if i := a.Index(key); i >= 0 {
		return a.elems[i], true
	}
	var zero E
	return zero, false
}

func (a Array[K, E]) Contains(key K) bool { return a.Index(key) >= 0 }

// Upsert replaces the element with the same key or appends e.
func (a *Array[K, E]) Upsert(e E) {
	next := append(make([]E, 0, len(a.elems)+1), a.elems...)
	if i := a.Index(e.Key()); i >= 0 {
		next[i] = e
	} else {
		next = append(next, e)
	}
	a.elems = next
}

// Insert places e at index i, or replaces the element with the same key where it is.
func (a *Array[K, E]) Insert(i int, e E) {
	if a.Contains(e.Key()) {
		a.Upsert(e)
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(a.elems) {
		i = len(a.elems)
	}
	next := make([]E, 0, len(a.elems)+1)
	next = append(next, a.elems[:i]...)
	next = append(next, e)
	a.elems = append(next, a.elems[i:]...)
}

// Remove deletes the element with key and reports whether it existed.
func (a *Array[K, E]) Remove(key K) bool {
	i := a.Index(key)
	if i < 0 {
		return false
	}
	a.RemoveAt(i)
	return true
}

func (a *Array[K, E]) RemoveAt(i int) {
	next := make([]E, 0, len(a.elems)-1)
	next = append(next, a.elems[:i]...)
	a.set(append(next, a.elems[i+1:]...))
}

// Update applies f to the element with key and reports whether it existed.
func (a *Array[K, E]) Update(key K, f func(*E)) bool {
	i := a.Index(key)
	if i < 0 {
		return false
	}
	next := append([]E(nil), a.elems...)
	f(&next[i])
	a.elems = next
	return true
}

// Filter keeps the elements for which keep returns true.
func (a *Array[K, E]) Filter(keep func(E) bool) {
	next := make([]E, 0, len(a.elems))
	for _, e := range a.elems {
		if keep(e) {
			next = append(next, e)
		}
	}
	a.set(next)
}

// set keeps an empty Array equal to the zero Array.
func (a *Array[K, E]) set(next []E) {
	if len(next) == 0 {
		next = nil
	}
	a.elems = next
}

// Move relocates the element at from to index to.
func (a *Array[K, E]) Move(from, to int) {
	if from == to || from < 0 || from >= len(a.elems) {
		return
	}
	e := a.elems[from]
	a.RemoveAt(from)
	a.Insert(to, e)
}
