// Package alert models alerts and confirmation dialogs as plain state, so a test
// can assert exactly what the user is shown and which button does what.
package alert

import (
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type Style int

const (
	StyleAlert Style = iota
	StyleConfirmationDialog
)

type Role int

const (
	RoleNone Role = iota
	RoleCancel
	RoleDestructive
)

// Button is one choice of an alert. A button without an action only dismisses.
type Button[A any] struct {
	Role      Role
	Label     string
	Action    A
	HasAction bool
}

func ActionButton[A any](label string, action A) Button[A] {
	return Button[A]{Label: label, Action: action, HasAction: true}
}

func DestructiveButton[A any](label string, action A) Button[A] {
	return Button[A]{Role: RoleDestructive, Label: label, Action: action, HasAction: true}
}

func CancelButton[A any](label string) Button[A] {
	return Button[A]{Role: RoleCancel, Label: label}
}

// State is what an alert or confirmation dialog shows. A is the action its buttons send.
type State[A any] struct {
	Style   Style
	Title   string
	Message string
	Buttons []Button[A]
}

func New[A any](title, message string, buttons ...Button[A]) State[A] {
	return State[A]{Style: StyleAlert, Title: title, Message: message, Buttons: buttons}
}

func ConfirmationDialog[A any](title, message string, buttons ...Button[A]) State[A] {
	return State[A]{Style: StyleConfirmationDialog, Title: title, Message: message, Buttons: buttons}
}

// Tap returns the action the rendering layer sends when button i is chosen.
func (s State[A]) Tap(i int) reducer.PresentationAction[A] {
	if i < 0 || i >= len(s.Buttons) || !s.Buttons[i].HasAction {
		return reducer.Dismiss[A]()
	}
	return reducer.Presented(s.Buttons[i].Action)
}

// Presentation presents the alert addressed by state. Alerts go away as soon as any
// button is tapped: state is cleared before base sees the button's action, so base
// may present a new alert in response.
func Presentation[P, PA, A any](
	base reducer.Reducer[P, PA],
	state reducer.Optional[P, State[A]],
	action reducer.CasePath[PA, reducer.PresentationAction[A]],
) reducer.Reducer[P, PA] {
	clearing := reducer.Func[P, PA](func(p *P, a PA) effects.Effect[PA] {
		if pa, ok := action.Extract(a); ok && !pa.IsDismiss() {
			state.Clear(p)
		}
		return base.Reduce(p, a)
	})
	return reducer.IfLetPresentation(clearing, state, action, reducer.Empty[State[A], A]())
}
