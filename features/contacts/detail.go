package contacts

import (
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/alert"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

// DetailState shows one contact and can delete it after a confirmation.
type DetailState struct {
	Alert   *alert.State[DetailAlertAction]
	Contact Contact
}

type DetailAlertAction int

const DetailConfirmDeletion DetailAlertAction = iota

type DetailAction interface{ isDetailAction() }

type (
	DetailAlert struct {
		Action reducer.PresentationAction[DetailAlertAction]
	}
	DeleteButtonTapped  struct{}
	DetailDeleteConfirm struct{}
)

func (DetailAlert) isDetailAction()         {}
func (DeleteButtonTapped) isDetailAction()  {}
func (DetailDeleteConfirm) isDetailAction() {}

var ConfirmDeletionAlert = alert.New("Are you sure?", "",
	alert.DestructiveButton("Delete", DetailConfirmDeletion),
)

var detailAlertCase = reducer.CasePath[DetailAction, reducer.PresentationAction[DetailAlertAction]]{
	Name: "alert",
	Extract: func(a DetailAction) (reducer.PresentationAction[DetailAlertAction], bool) {
		x, ok := a.(DetailAlert)
		return x.Action, ok
	},
	Embed: func(p reducer.PresentationAction[DetailAlertAction]) DetailAction { return DetailAlert{Action: p} },
}

func DetailReducer() reducer.Reducer[DetailState, DetailAction] {
	base := reducer.Func[DetailState, DetailAction](func(s *DetailState, a DetailAction) effects.Effect[DetailAction] {
		switch a := a.(type) {
		case DetailAlert:
			if x, ok := a.Action.Action(); ok && x == DetailConfirmDeletion {
				return effects.Merge(
					effects.Send[DetailAction](DetailDeleteConfirm{}),
					effects.Dismiss[DetailAction](),
				)
			}
		case DeleteButtonTapped:
			confirm := ConfirmDeletionAlert
			s.Alert = &confirm
		}
		return effects.None[DetailAction]()
	})
	return alert.Presentation(base,
		reducer.Pointer(func(s *DetailState) **alert.State[DetailAlertAction] { return &s.Alert }),
		detailAlertCase,
	)
}
