// Package focusdemo keeps the focused text field in state. Signing in with an empty
// field moves the focus to the first empty one.
package focusdemo

import (
	"github.com/on-the-ground/composable_ive_go/binding"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

// Field names a focusable control. The zero value means nothing is focused.
type Field string

const (
	FieldUsername Field = "username"
	FieldPassword Field = "password"
)

type State struct {
	FocusedField Field
	Password     string
	Username     string
}

var (
	FocusedField = binding.NewField("focusedField", func(s *State) *Field { return &s.FocusedField })
	Password     = binding.NewField("password", func(s *State) *string { return &s.Password })
	Username     = binding.NewField("username", func(s *State) *string { return &s.Username })
)

type Action interface{ isFocusDemoAction() }

type (
	Binding            struct{ binding.Action[State] }
	SignInButtonTapped struct{}
)

func (Binding) isFocusDemoAction()            {}
func (SignInButtonTapped) isFocusDemoAction() {}

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
			if _, ok := a.(SignInButtonTapped); ok {
				switch {
				case s.Username == "":
					s.FocusedField = FieldUsername
				case s.Password == "":
					s.FocusedField = FieldPassword
				}
			}
			return effects.None[Action]()
		}),
	)
}
