package reducer

import "github.com/on-the-ground/composable_ive_go/effects"

// Scope runs child on the state returned by field whenever action extracts a child
// action, and lifts the child's effects back into parent actions. Other actions are
// left to whatever the scope is combined with.
func Scope[P, PA, C, CA any](
	field func(*P) *C,
	action CasePath[PA, CA],
	child Reducer[C, CA],
) Reducer[P, PA] {
	return Func[P, PA](func(state *P, a PA) effects.Effect[PA] {
		ca, ok := action.Extract(a)
		if !ok {
			return effects.None[PA]()
		}
		return effects.Map(child.Reduce(field(state), ca), action.Embed)
	})
}

// IsolatedScope is Scope where the child's effect identities are private to this
// scope: two isolated scopes over the same child reducer can each run and cancel a
// "timer" without touching the other's.
func IsolatedScope[P, PA, C, CA any](
	field func(*P) *C,
	action CasePath[PA, CA],
	child Reducer[C, CA],
) Reducer[P, PA] {
	id := caseScope{ns: newNamespace("scope"), name: action.Name}
	return Func[P, PA](func(state *P, a PA) effects.Effect[PA] {
		ca, ok := action.Extract(a)
		if !ok {
			return effects.None[PA]()
		}
		return effects.Map(child.Reduce(field(state), ca), action.Embed).Namespaced(id)
	})
}
