package effects

// ScopedID is an identity owned by a namespace. Namespaces nest: the ID of a
// ScopedID may itself be a ScopedID.
type ScopedID struct {
	Scope any
	ID    any
}

type wholeScope struct{}

// Namespaced moves every identity in e under scope and additionally tags every Run
// effect with the namespace itself, so CancelScope(scope) reaches all of them.
func (e Effect[A]) Namespaced(scope any) Effect[A] {
	switch e.kind {
	case KindRun:
		ids := make([]any, 0, len(e.ids)+1)
		for _, id := range e.ids {
			ids = append(ids, ScopedID{Scope: scope, ID: id})
		}
		e.ids = append(ids, ScopedID{Scope: scope, ID: wholeScope{}})
	case KindCancel:
		e.target = ScopedID{Scope: scope, ID: e.target}
	case KindMerge:
		e.members = mapMembers(e.members, func(m Effect[A]) Effect[A] { return m.Namespaced(scope) })
	}
	return e
}

// CancelScope cancels every task started inside scope.
func CancelScope[A any](scope any) Effect[A] {
	return Effect[A]{kind: KindCancel, target: ScopedID{Scope: scope, ID: wholeScope{}}, quiet: true}
}
