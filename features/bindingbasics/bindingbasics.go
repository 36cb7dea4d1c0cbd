// Package bindingbasics keeps every control's value in state and changes it through one
// action per control.
package bindingbasics

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

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

type Action interface{ isBindingBasicsAction() }

type (
	SliderValueChanged struct{ Value float64 }
	StepCountChanged   struct{ Count int }
	TextChanged        struct{ Text string }
	ToggleChanged      struct{ IsOn bool }
)

func (SliderValueChanged) isBindingBasicsAction() {}
func (StepCountChanged) isBindingBasicsAction()   {}
func (TextChanged) isBindingBasicsAction()        {}
func (ToggleChanged) isBindingBasicsAction()      {}

func Reducer() reducer.Reducer[State, Action] {
	return reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
		switch a := a.(type) {
		case SliderValueChanged:
			s.SliderValue = a.Value
		case StepCountChanged:
			s.SliderValue = min(s.SliderValue, float64(a.Count))
			s.StepCount = a.Count
		case TextChanged:
			s.Text = a.Text
		case ToggleChanged:
			s.ToggleIsOn = a.IsOn
		}
		return effects.None[Action]()
	})
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Alternate upper-cases the characters at even positions and lower-cases the rest.
func Alternate(text string) string {
	var b strings.Builder
	i := 0
	for _, r := range norm.NFC.String(text) {
		if i%2 == 0 {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteString(lower.String(string(r)))
		}
		i++
	}
	return b.String()
}
