// Package syncups is the list of sync-up meetings with a sheet to add one. The form
// edits the meeting's details and its attendees.
package syncups

import (
	"github.com/google/uuid"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/identified"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type ListState struct {
	// AddSyncUp is the add sheet, nil while it is closed.
	AddSyncUp *FormState
	SyncUps   identified.Array[uuid.UUID, SyncUp]
}

type ListAction interface{ isListAction() }

type (
	AddSyncUpButtonTapped struct{}
	AddSyncUp             struct {
		Action reducer.PresentationAction[FormAction]
	}
	ConfirmAddButtonTapped struct{}
	DiscardButtonTapped    struct{}
	OnDelete               struct{ Indices []int }
)

func (AddSyncUpButtonTapped) isListAction()  {}
func (AddSyncUp) isListAction()              {}
func (ConfirmAddButtonTapped) isListAction() {}
func (DiscardButtonTapped) isListAction()    {}
func (OnDelete) isListAction()               {}

// InForm wraps an action of the add sheet's form.
func InForm(a FormAction) ListAction {
	return AddSyncUp{Action: reducer.Presented(a)}
}

var addSyncUpCase = reducer.CasePath[ListAction, reducer.PresentationAction[FormAction]]{
	Name: "addSyncUp",
	Extract: func(a ListAction) (reducer.PresentationAction[FormAction], bool) {
		x, ok := a.(AddSyncUp)
		return x.Action, ok
	},
	Embed: func(p reducer.PresentationAction[FormAction]) ListAction { return AddSyncUp{Action: p} },
}

func ListReducer(deps dependencies.Dependencies) reducer.Reducer[ListState, ListAction] {
	base := reducer.Func[ListState, ListAction](func(s *ListState, a ListAction) effects.Effect[ListAction] {
		switch a := a.(type) {
		case AddSyncUpButtonTapped:
			form := NewFormState(NewSyncUp(deps.UUID.New()))
			s.AddSyncUp = &form

		case ConfirmAddButtonTapped:
			if s.AddSyncUp == nil {
				break
			}
			s.SyncUps.Upsert(trimmed(s.AddSyncUp.SyncUp, deps))
			s.AddSyncUp = nil

		case DiscardButtonTapped:
			s.AddSyncUp = nil

		case OnDelete:
			for i := len(a.Indices) - 1; i >= 0; i-- {
				if idx := a.Indices[i]; idx >= 0 && idx < s.SyncUps.Len() {
					s.SyncUps.RemoveAt(idx)
				}
			}
		}
		return effects.None[ListAction]()
	})
	return reducer.IfLetPresentation(
		base,
		reducer.Pointer(func(s *ListState) **FormState { return &s.AddSyncUp }),
		addSyncUpCase,
		FormReducer(deps),
	)
}
