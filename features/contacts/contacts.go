// Package contacts is a contact list with three destinations: a sheet that adds a
// contact, an alert that confirms a deletion and a detail screen.
package contacts

import (
	"github.com/google/uuid"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/alert"
	"github.com/on-the-ground/composable_ive_go/identified"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type State struct {
	Contacts identified.Array[uuid.UUID, Contact]
	// Destination is nil while nothing is presented.
	Destination Destination
}

// Destination is one of DestinationAddContact, DestinationAlert or DestinationDetail.
type Destination interface{ isDestination() }

type (
	DestinationAddContact struct{ State AddContactState }
	DestinationAlert      struct{ Alert alert.State[AlertAction] }
	DestinationDetail     struct{ State DetailState }
)

func (DestinationAddContact) isDestination() {}
func (DestinationAlert) isDestination()      {}
func (DestinationDetail) isDestination()     {}

// AlertAction is what the list's deletion alert can send.
type AlertAction struct{ ConfirmDeletion uuid.UUID }

type DestinationAction interface{ isDestinationAction() }

type (
	AddContact  struct{ Action AddContactAction }
	AlertButton struct{ Action AlertAction }
	Detail      struct{ Action DetailAction }
)

func (AddContact) isDestinationAction()  {}
func (AlertButton) isDestinationAction() {}
func (Detail) isDestinationAction()      {}

type Action interface{ isContactsAction() }

type (
	AddButtonTapped       struct{}
	ContactTapped         struct{ ID uuid.UUID }
	DeleteContactTapped   struct{ ID uuid.UUID }
	DestinationPresenting struct {
		Action reducer.PresentationAction[DestinationAction]
	}
)

func (AddButtonTapped) isContactsAction()       {}
func (ContactTapped) isContactsAction()         {}
func (DeleteContactTapped) isContactsAction()   {}
func (DestinationPresenting) isContactsAction() {}

// Presented wraps an action of the presented destination.
func Presented(a DestinationAction) Action {
	return DestinationPresenting{Action: reducer.Presented(a)}
}

// Dismissed is the action that closes the destination.
func Dismissed() Action {
	return DestinationPresenting{Action: reducer.Dismiss[DestinationAction]()}
}

// DeleteConfirmation is the alert shown before a contact is deleted.
func DeleteConfirmation(id uuid.UUID) alert.State[AlertAction] {
	return alert.New("Are you sure?", "",
		alert.DestructiveButton("Delete", AlertAction{ConfirmDeletion: id}),
	)
}

var (
	addContactState = reducer.CasePath[Destination, AddContactState]{
		Name:    "addContact",
		Extract: func(d Destination) (AddContactState, bool) { x, ok := d.(DestinationAddContact); return x.State, ok },
		Embed:   func(s AddContactState) Destination { return DestinationAddContact{State: s} },
	}
	addContactAction = reducer.CasePath[DestinationAction, AddContactAction]{
		Name:    "addContact",
		Extract: func(a DestinationAction) (AddContactAction, bool) { x, ok := a.(AddContact); return x.Action, ok },
		Embed:   func(a AddContactAction) DestinationAction { return AddContact{Action: a} },
	}
	detailState = reducer.CasePath[Destination, DetailState]{
		Name:    "detail",
		Extract: func(d Destination) (DetailState, bool) { x, ok := d.(DestinationDetail); return x.State, ok },
		Embed:   func(s DetailState) Destination { return DestinationDetail{State: s} },
	}
	detailAction = reducer.CasePath[DestinationAction, DetailAction]{
		Name:    "detail",
		Extract: func(a DestinationAction) (DetailAction, bool) { x, ok := a.(Detail); return x.Action, ok },
		Embed:   func(a DetailAction) DestinationAction { return Detail{Action: a} },
	}
	destinationCase = reducer.CasePath[Action, reducer.PresentationAction[DestinationAction]]{
		Name: "destination",
		Extract: func(a Action) (reducer.PresentationAction[DestinationAction], bool) {
			x, ok := a.(DestinationPresenting)
			return x.Action, ok
		},
		Embed: func(p reducer.PresentationAction[DestinationAction]) Action {
			return DestinationPresenting{Action: p}
		},
	}
)

// DestinationReducer runs whichever destination is presented. The alert has no
// behavior of its own.
func DestinationReducer() reducer.Reducer[Destination, DestinationAction] {
	var r reducer.Reducer[Destination, DestinationAction] = reducer.Empty[Destination, DestinationAction]()
	r = reducer.IfCaseLet(r, addContactState, addContactAction, AddContactReducer())
	r = reducer.IfCaseLet(r, detailState, detailAction, DetailReducer())
	return r
}

func Reducer(deps dependencies.Dependencies) reducer.Reducer[State, Action] {
	base := reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
		switch a := a.(type) {
		case AddButtonTapped:
			s.Destination = DestinationAddContact{State: AddContactState{
				Contact: Contact{ID: deps.UUID.New()},
			}}

		case ContactTapped:
			if c, ok := s.Contacts.Get(a.ID); ok {
				s.Destination = DestinationDetail{State: DetailState{Contact: c}}
			}

		case DeleteContactTapped:
			s.Destination = DestinationAlert{Alert: DeleteConfirmation(a.ID)}

		case DestinationPresenting:
			presented, ok := a.Action.Action()
			if !ok {
				break
			}
			switch x := presented.(type) {
			case AddContact:
				if save, ok := x.Action.(SaveContact); ok {
					s.Contacts.Upsert(save.Contact)
				}
			case AlertButton:
				s.Contacts.Remove(x.Action.ConfirmDeletion)
				s.Destination = nil
			case Detail:
				if _, ok := x.Action.(DetailDeleteConfirm); ok {
					if d, ok := s.Destination.(DestinationDetail); ok {
						s.Contacts.Remove(d.State.Contact.ID)
					}
				}
			}
		}
		return effects.None[Action]()
	})
	return reducer.IfLetPresentation(
		base,
		reducer.Interface(func(s *State) *Destination { return &s.Destination }),
		destinationCase,
		DestinationReducer(),
	)
}
