package reducer

import (
	"fmt"

	"github.com/on-the-ground/composable_ive_go/effects"
)

// PresentationAction wraps the actions of a presented child. It either carries a
// child action or reports that the presentation ended.
type PresentationAction[A any] struct {
	action  A
	dismiss bool
}

func Presented[A any](a A) PresentationAction[A] {
	return PresentationAction[A]{action: a}
}

func Dismiss[A any]() PresentationAction[A] {
	return PresentationAction[A]{dismiss: true}
}

func (p PresentationAction[A]) IsDismiss() bool { return p.dismiss }

// Action returns the child action unless p is a dismissal.
func (p PresentationAction[A]) Action() (A, bool) {
	return p.action, !p.dismiss
}

func (p PresentationAction[A]) String() string {
	if p.dismiss {
		return "dismiss"
	}
	return fmt.Sprintf("presented(%v)", p.action)
}

// IfLetPresentation is IfLet for presented children such as sheets, alerts and
// navigation destinations.
//
// A Dismiss action clears the child and cancels its effects before base sees the
// action. A child returning effects.Dismiss sends Dismiss back through action.
// When base replaces the child with another instance, as told by state's Identity,
// the old child's effects are cancelled as for a dismissal.
func IfLetPresentation[P, PA, C, CA any](
	base Reducer[P, PA],
	state Optional[P, C],
	action CasePath[PA, PresentationAction[CA]],
	child Reducer[C, CA],
) Reducer[P, PA] {
	ns := newNamespace("ifLetPresentation")
	dismissEff := func() effects.Effect[PA] {
		return effects.Send(action.Embed(Dismiss[CA]()))
	}
	return Func[P, PA](func(p *P, a PA) effects.Effect[PA] {
		_, wasPresent := state.Get(p)
		pa, ours := action.Extract(a)

		if ours && pa.IsDismiss() {
			cancelEff := effects.None[PA]()
			if wasPresent {
				state.Clear(p)
				cancelEff = effects.CancelScope[PA](ns)
			}
			return effects.Merge(cancelEff, base.Reduce(p, a))
		}

		childEff := effects.None[PA]()
		if ours {
			ca, _ := pa.Action()
			childEff = runPresentedChild(p, ca, state, action, child, ns).OnDismiss(dismissEff)
		}

		// the child writes its own state back; only base can replace the instance
		before, present := state.identity(p)
		parentEff := base.Reduce(p, a)

		cancelEff := effects.None[PA]()
		if state.replaced(p, before, present) {
			cancelEff = effects.CancelScope[PA](ns)
		}
		return effects.Merge(childEff, cancelEff, parentEff)
	})
}

func runPresentedChild[P, PA, C, CA any](
	p *P,
	ca CA,
	state Optional[P, C],
	action CasePath[PA, PresentationAction[CA]],
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
	return effects.Map(eff.Namespaced(ns), func(x CA) PA {
		return action.Embed(Presented(x))
	})
}
