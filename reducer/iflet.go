package reducer

import (
	"fmt"

	"github.com/on-the-ground/composable_ive_go/effects"
)

// IfLet runs child while its optional state is present. Child effects are namespaced
// and cancelled as soon as base leaves the child absent or replaces it with another
// instance.
//
// An action for the child while it is absent is reported as a programmer error and
// base still runs. Effects are ordered child first, then the cancellation, then base.
func IfLet[P, PA, C, CA any](
	base Reducer[P, PA],
	state Optional[P, C],
	action CasePath[PA, CA],
	child Reducer[C, CA],
) Reducer[P, PA] {
	ns := newNamespace("ifLet")
	return Func[P, PA](func(p *P, a PA) effects.Effect[PA] {
		childEff := effects.None[PA]()
		if ca, ok := action.Extract(a); ok {
			childEff = runOptionalChild(p, ca, state, action, child, ns)
		}

		before, wasPresent := state.identity(p)
		parentEff := base.Reduce(p, a)

		cancelEff := effects.None[PA]()
		if state.replaced(p, before, wasPresent) {
			cancelEff = effects.CancelScope[PA](ns)
		}
		return effects.Merge(childEff, cancelEff, parentEff)
	})
}

func runOptionalChild[P, PA, C, CA any](
	p *P,
	ca CA,
	state Optional[P, C],
	action CasePath[PA, CA],
	child Reducer[C, CA],
	ns *namespace,
) effects.Effect[PA] {
	c, present := state.Get(p)
	if !present {
		return effects.Report[PA](fmt.Sprintf(
			"%s received child action %T while child state was absent", ns.operator, ca,
		))
	}
	eff := child.Reduce(&c, ca)
	state.Set(p, c)
	return effects.Map(eff.Namespaced(ns), action.Embed)
}
