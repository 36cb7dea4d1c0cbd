package reducer

import (
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/identified"
)

// ElementAction routes Action to the element of a collection with Key.
type ElementAction[K comparable, A any] struct {
	Key    K
	Action A
}

// ForEach runs element on the collection member addressed by an ElementAction.
//
// An action for a key that no longer exists is ignored: the element may have been
// removed while one of its effects was finishing. Effects are namespaced per key and
// cancelled when base removes that key.
func ForEach[P, PA any, K comparable, E identified.Keyed[K], EA any](
	base Reducer[P, PA],
	elems func(*P) *identified.Array[K, E],
	action CasePath[PA, ElementAction[K, EA]],
	element Reducer[E, EA],
) Reducer[P, PA] {
	ns := newNamespace("forEach")
	return Func[P, PA](func(p *P, a PA) effects.Effect[PA] {
		before := elems(p).Keys()

		elemEff := effects.None[PA]()
		if ea, ok := action.Extract(a); ok {
			var eff effects.Effect[EA]
			if elems(p).Update(ea.Key, func(e *E) { eff = element.Reduce(e, ea.Action) }) {
				key := ea.Key
				elemEff = effects.Map(eff.Namespaced(elementScope[K]{ns: ns, key: key}), func(x EA) PA {
					return action.Embed(ElementAction[K, EA]{Key: key, Action: x})
				})
			}
		}

		parentEff := base.Reduce(p, a)

		after := elems(p)
		cancels := make([]effects.Effect[PA], 0)
		for _, key := range before {
			if !after.Contains(key) {
				cancels = append(cancels, effects.CancelScope[PA](elementScope[K]{ns: ns, key: key}))
			}
		}
		return effects.Merge(elemEff, effects.Merge(cancels...), parentEff)
	})
}
