package reducer

import (
	"fmt"

	"github.com/on-the-ground/composable_ive_go/effects"
)

// IfCaseLet runs child only while the union value d holds the case addressed by
// caseState. Effects are namespaced per case and cancelled when base moves d to
// another case.
func IfCaseLet[D, DA, C, CA any](
	base Reducer[D, DA],
	caseState CasePath[D, C],
	caseAction CasePath[DA, CA],
	child Reducer[C, CA],
) Reducer[D, DA] {
	scope := caseScope{ns: newNamespace("ifCaseLet"), name: caseState.Name}
	return Func[D, DA](func(d *D, a DA) effects.Effect[DA] {
		_, wasActive := caseState.Extract(*d)

		childEff := effects.None[DA]()
		if ca, ok := caseAction.Extract(a); ok {
			if c, active := caseState.Extract(*d); active {
				eff := child.Reduce(&c, ca)
				*d = caseState.Embed(c)
				childEff = effects.Map(eff.Namespaced(scope), caseAction.Embed)
			} else {
				childEff = effects.Report[DA](fmt.Sprintf(
					"ifCaseLet received action %T for case %q while state held %T",
					ca, caseState.Name, any(*d),
				))
			}
		}

		parentEff := base.Reduce(d, a)

		cancelEff := effects.None[DA]()
		if _, isActive := caseState.Extract(*d); wasActive && !isActive {
			cancelEff = effects.CancelScope[DA](scope)
		}
		return effects.Merge(childEff, cancelEff, parentEff)
	})
}
