// Package alertsdialogs presents an alert and a confirmation dialog whose buttons
// change a count.
package alertsdialogs

import (
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/alert"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type AlertAction int

const AlertIncrementTapped AlertAction = iota

type DialogAction int

const (
	DialogIncrementTapped DialogAction = iota
	DialogDecrementTapped
)

type State struct {
	Alert              *alert.State[AlertAction]
	ConfirmationDialog *alert.State[DialogAction]
	Count              int
}

type Action interface{ isAlertsDialogsAction() }

type (
	Alert struct {
		Action reducer.PresentationAction[AlertAction]
	}
	AlertButtonTapped  struct{}
	ConfirmationDialog struct {
		Action reducer.PresentationAction[DialogAction]
	}
	ConfirmationDialogButtonTapped struct{}
)

func (Alert) isAlertsDialogsAction()                          {}
func (AlertButtonTapped) isAlertsDialogsAction()              {}
func (ConfirmationDialog) isAlertsDialogsAction()             {}
func (ConfirmationDialogButtonTapped) isAlertsDialogsAction() {}

var (
	alertCase = reducer.CasePath[Action, reducer.PresentationAction[AlertAction]]{
		Name: "alert",
		Extract: func(a Action) (reducer.PresentationAction[AlertAction], bool) {
			x, ok := a.(Alert)
			return x.Action, ok
		},
		Embed: func(p reducer.PresentationAction[AlertAction]) Action { return Alert{Action: p} },
	}
	dialogCase = reducer.CasePath[Action, reducer.PresentationAction[DialogAction]]{
		Name: "confirmationDialog",
		Extract: func(a Action) (reducer.PresentationAction[DialogAction], bool) {
			x, ok := a.(ConfirmationDialog)
			return x.Action, ok
		},
		Embed: func(p reducer.PresentationAction[DialogAction]) Action { return ConfirmationDialog{Action: p} },
	}
)

// The alerts shown by this feature.
var (
	IntroAlert = alert.New("Alert!", "This is an alert",
		alert.CancelButton[AlertAction]("Cancel"),
		alert.ActionButton("Increment", AlertIncrementTapped),
	)
	IntroDialog = alert.ConfirmationDialog("Confirmation dialog", "This is a confirmation dialog.",
		alert.CancelButton[DialogAction]("Cancel"),
		alert.ActionButton("Increment", DialogIncrementTapped),
		alert.ActionButton("Decrement", DialogDecrementTapped),
	)
)

func notice(title string) *alert.State[AlertAction] {
	a := alert.New[AlertAction](title, "")
	return &a
}

func Reducer() reducer.Reducer[State, Action] {
	base := reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
		switch a := a.(type) {
		case AlertButtonTapped:
			intro := IntroAlert
			s.Alert = &intro

		case ConfirmationDialogButtonTapped:
			intro := IntroDialog
			s.ConfirmationDialog = &intro

		case Alert:
			if x, ok := a.Action.Action(); ok && x == AlertIncrementTapped {
				s.Alert = notice("Incremented!")
				s.Count++
			}

		case ConfirmationDialog:
			x, ok := a.Action.Action()
			switch {
			case !ok:
			case x == DialogIncrementTapped:
				s.Alert = notice("Incremented!")
				s.Count++
			case x == DialogDecrementTapped:
				s.Alert = notice("Decremented!")
				s.Count--
			}
		}
		return effects.None[Action]()
	})

	withDialog := alert.Presentation(base,
		reducer.Pointer(func(s *State) **alert.State[DialogAction] { return &s.ConfirmationDialog }),
		dialogCase,
	)
	return alert.Presentation(withDialog,
		reducer.Pointer(func(s *State) **alert.State[AlertAction] { return &s.Alert }),
		alertCase,
	)
}
