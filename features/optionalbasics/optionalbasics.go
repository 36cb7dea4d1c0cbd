// Package optionalbasics shows and hides a counter held in optional state.
package optionalbasics

import (
	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type State struct {
	// OptionalCounter is nil while the counter is hidden.
	OptionalCounter *counter.State
}

type Action interface{ isOptionalBasicsAction() }

type (
	OptionalCounter           struct{ Action counter.Action }
	ToggleCounterButtonTapped struct{}
)

func (OptionalCounter) isOptionalBasicsAction()           {}
func (ToggleCounterButtonTapped) isOptionalBasicsAction() {}

var optionalCounterCase = reducer.CasePath[Action, counter.Action]{
	Name:    "optionalCounter",
	Extract: func(a Action) (counter.Action, bool) { c, ok := a.(OptionalCounter); return c.Action, ok },
	Embed:   func(a counter.Action) Action { return OptionalCounter{Action: a} },
}

func Reducer(deps dependencies.Dependencies) reducer.Reducer[State, Action] {
	base := reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
		if _, ok := a.(ToggleCounterButtonTapped); ok {
			if s.OptionalCounter == nil {
				s.OptionalCounter = &counter.State{}
			} else {
				s.OptionalCounter = nil
			}
		}
		return effects.None[Action]()
	})
	return reducer.IfLet(
		base,
		reducer.Pointer(func(s *State) **counter.State { return &s.OptionalCounter }),
		optionalCounterCase,
		counter.Reducer(deps),
	)
}
