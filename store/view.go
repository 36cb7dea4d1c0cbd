package store

import (
	"sync"

	"github.com/on-the-ground/composable_ive_go/binding"
)

type scoped[P, PA, C, CA any] struct {
	parent Viewer[P, PA]
	get    func(P) C
	embed  func(CA) PA
}

// Scope derives a child view: State reads through get, Send wraps with embed.
func Scope[P, PA, C, CA any](parent Viewer[P, PA], get func(P) C, embed func(CA) PA) Viewer[C, CA] {
	return scoped[P, PA, C, CA]{parent: parent, get: get, embed: embed}
}

func (v scoped[P, PA, C, CA]) State() C { return v.get(v.parent.State()) }

func (v scoped[P, PA, C, CA]) Send(action CA) { v.parent.Send(v.embed(action)) }

type optionalScoped[P, PA, C, CA any] struct {
	parent Viewer[P, PA]
	get    func(P) (C, bool)
	embed  func(CA) PA

	mu   sync.Mutex
	last C
}

// ScopeOptional derives a child view of optional state. It reports false when the
// child is absent now. Once the child disappears the view keeps returning the last
// state it saw, so a dismissing screen can still render.
func ScopeOptional[P, PA, C, CA any](
	parent Viewer[P, PA],
	get func(P) (C, bool),
	embed func(CA) PA,
) (Viewer[C, CA], bool) {
	c, ok := get(parent.State())
	if !ok {
		return nil, false
	}
	return &optionalScoped[P, PA, C, CA]{parent: parent, get: get, embed: embed, last: c}, true
}

func (v *optionalScoped[P, PA, C, CA]) State() C {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.get(v.parent.State()); ok {
		v.last = c
	}
	return v.last
}

func (v *optionalScoped[P, PA, C, CA]) Send(action CA) { v.parent.Send(v.embed(action)) }

// Editor is a two-way handle on one value for a rendering layer.
type Editor[V any] struct {
	Get func() V
	Set func(V)
}

// Bind edits field by sending binding actions wrapped with embed.
func Bind[S, A, V any](v Viewer[S, A], field binding.Field[S, V], embed func(binding.Action[S]) A) Editor[V] {
	return Editor[V]{
		Get: func() V {
			s := v.State()
			return *field.Get(&s)
		},
		Set: func(value V) {
			v.Send(embed(binding.Set(field, value)))
		},
	}
}

// Sending edits a derived value by sending toAction(value).
func Sending[S, A, V any](v Viewer[S, A], get func(S) V, toAction func(V) A) Editor[V] {
	return Editor[V]{
		Get: func() V { return get(v.State()) },
		Set: func(value V) { v.Send(toAction(value)) },
	}
}
