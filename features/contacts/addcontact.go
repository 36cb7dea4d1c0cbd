package contacts

import (
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

// AddContactState is the sheet that creates a contact.
type AddContactState struct {
	Contact Contact
}

type AddContactAction interface{ isAddContactAction() }

type (
	CancelButtonTapped struct{}
	SaveButtonTapped   struct{}
	SetName            struct{ Name string }
	// SaveContact tells the parent which contact to add.
	SaveContact struct{ Contact Contact }
)

func (CancelButtonTapped) isAddContactAction() {}
func (SaveButtonTapped) isAddContactAction()   {}
func (SetName) isAddContactAction()            {}
func (SaveContact) isAddContactAction()        {}

func AddContactReducer() reducer.Reducer[AddContactState, AddContactAction] {
	return reducer.Func[AddContactState, AddContactAction](func(s *AddContactState, a AddContactAction) effects.Effect[AddContactAction] {
		switch a := a.(type) {
		case CancelButtonTapped:
			return effects.Dismiss[AddContactAction]()
		case SaveButtonTapped:
			return effects.Merge(
				effects.Send[AddContactAction](SaveContact{Contact: s.Contact}),
				effects.Dismiss[AddContactAction](),
			)
		case SetName:
			s.Contact.Name = a.Name
		}
		return effects.None[AddContactAction]()
	})
}
