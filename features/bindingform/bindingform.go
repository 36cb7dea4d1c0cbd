// Package bindingform is bindingbasics rewritten around one binding action.
package bindingform

import (
	"github.com/on-the-ground/composable_ive_go/binding"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type State struct {
	SliderValue float64
	StepCount   int
	Text        string
	ToggleIsOn  bool
}

func NewState() State {
	return State{SliderValue: 5, StepCount: 10}
}

var (
	SliderValue = binding.NewField("sliderValue", func(s *State) *float64 { return &s.SliderValue })
	StepCount   = binding.NewField("stepCount", func(s *State) *int { return &s.StepCount })
	Text        = binding.NewField("text", func(s *State) *string { return &s.Text })
	ToggleIsOn  = binding.NewField("toggleIsOn", func(s *State) *bool { return &s.ToggleIsOn })
)

type Action interface{ isBindingFormAction() }

type (
	Binding           struct{ binding.Action[State] }
	ResetButtonTapped struct{}
)

func (Binding) isBindingFormAction()           {}
func (ResetButtonTapped) isBindingFormAction() {}

// Set is the action of a control editing field.
func Set[V any](field binding.Field[State, V], v V) Action {
	return Binding{binding.Set(field, v)}
}

func Reducer() reducer.Reducer[State, Action] {
	return reducer.Combine(
		binding.Reducer[State, Action](func(a Action) (binding.Action[State], bool) {
			b, ok := a.(Binding)
			return b.Action, ok
		}),
		reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
			switch a := a.(type) {
			case Binding:
				if a.Is(StepCount.Name) {
					s.SliderValue = min(s.SliderValue, float64(s.StepCount))
				}
			case ResetButtonTapped:
				*s = NewState()
			}
			return effects.None[Action]()
		}),
	)
}
