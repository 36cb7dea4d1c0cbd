package syncups

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/on-the-ground/composable_ive_go/binding"
	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

// Focus is FocusTitle, FocusAttendee or nil for no focus.
type Focus interface{ isFocus() }

type (
	FocusTitle    struct{}
	FocusAttendee struct{ ID uuid.UUID }
)

func (FocusTitle) isFocus()    {}
func (FocusAttendee) isFocus() {}

type FormState struct {
	Focus  Focus
	SyncUp SyncUp
}

// NewFormState edits syncUp with the title focused.
func NewFormState(syncUp SyncUp) FormState {
	return FormState{Focus: FocusTitle{}, SyncUp: syncUp}
}

var (
	FocusField    = binding.NewField("focus", func(s *FormState) *Focus { return &s.Focus })
	SyncUpField   = binding.NewField("syncUp", func(s *FormState) *SyncUp { return &s.SyncUp })
	TitleField    = binding.NewField("syncUp.title", func(s *FormState) *string { return &s.SyncUp.Title })
	DurationField = binding.NewField("syncUp.duration", func(s *FormState) *time.Duration { return &s.SyncUp.Duration })
	ThemeField    = binding.NewField("syncUp.theme", func(s *FormState) *Theme { return &s.SyncUp.Theme })
)

type FormAction interface{ isFormAction() }

type (
	AddAttendeeButtonTapped struct{}
	FormBinding             struct{ binding.Action[FormState] }
	OnDeleteAttendees       struct{ Indices []int }
	AttendeeAction          struct {
		reducer.ElementAction[uuid.UUID, AttendeeEdit]
	}
)

func (AddAttendeeButtonTapped) isFormAction() {}
func (FormBinding) isFormAction()             {}
func (OnDeleteAttendees) isFormAction()       {}
func (AttendeeAction) isFormAction()          {}

// AttendeeEdit is an edit of one attendee row.
type AttendeeEdit struct{ Name string }

// SetForm is the action of a control editing field.
func SetForm[V any](field binding.Field[FormState, V], v V) FormAction {
	return FormBinding{binding.Set(field, v)}
}

// EditAttendee renames the attendee with id.
func EditAttendee(id uuid.UUID, name string) FormAction {
	return AttendeeAction{reducer.ElementAction[uuid.UUID, AttendeeEdit]{Key: id, Action: AttendeeEdit{Name: name}}}
}

var attendeeCase = reducer.CasePath[FormAction, reducer.ElementAction[uuid.UUID, AttendeeEdit]]{
	Name: "attendees",
	Extract: func(a FormAction) (reducer.ElementAction[uuid.UUID, AttendeeEdit], bool) {
		x, ok := a.(AttendeeAction)
		return x.ElementAction, ok
	},
	Embed: func(e reducer.ElementAction[uuid.UUID, AttendeeEdit]) FormAction { return AttendeeAction{e} },
}

func attendeeReducer() reducer.Reducer[Attendee, AttendeeEdit] {
	return reducer.Func[Attendee, AttendeeEdit](func(a *Attendee, e AttendeeEdit) effects.Effect[AttendeeEdit] {
		a.Name = e.Name
		return effects.None[AttendeeEdit]()
	})
}

func FormReducer(deps dependencies.Dependencies) reducer.Reducer[FormState, FormAction] {
	base := reducer.Func[FormState, FormAction](func(s *FormState, a FormAction) effects.Effect[FormAction] {
		switch a := a.(type) {
		case AddAttendeeButtonTapped:
			attendee := Attendee{ID: deps.UUID.New()}
			s.SyncUp.Attendees.Upsert(attendee)
			s.Focus = FocusAttendee{ID: attendee.ID}

		case OnDeleteAttendees:
			removed := removeAt(&s.SyncUp.Attendees, a.Indices)
			if len(removed) == 0 {
				break
			}
			if s.SyncUp.Attendees.Len() == 0 {
				s.SyncUp.Attendees.Upsert(Attendee{ID: deps.UUID.New()})
			}
			i := min(removed[0], s.SyncUp.Attendees.Len()-1)
			s.Focus = FocusAttendee{ID: s.SyncUp.Attendees.At(i).ID}
		}
		return effects.None[FormAction]()
	})
	return reducer.Combine(
		binding.Reducer[FormState, FormAction](func(a FormAction) (binding.Action[FormState], bool) {
			b, ok := a.(FormBinding)
			return b.Action, ok
		}),
		reducer.ForEach(
			base,
			func(s *FormState) *Attendees { return &s.SyncUp.Attendees },
			attendeeCase,
			attendeeReducer(),
		),
	)
}

// removeAt deletes the elements at indices, highest index first.
// removeAt removes the attendees at indices, ignoring duplicates and indices out of
// range, and returns the indices it removed in ascending order.
func removeAt(attendees *Attendees, indices []int) []int {
	valid := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < attendees.Len() {
			valid = append(valid, i)
		}
	}
	slices.Sort(valid)
	valid = slices.Compact(valid)
	for k := len(valid) - 1; k >= 0; k-- {
		attendees.RemoveAt(valid[k])
	}
	return valid
}

// trimmed drops attendees without a name and keeps at least one.
func trimmed(syncUp SyncUp, deps dependencies.Dependencies) SyncUp {
	syncUp.Attendees.Filter(func(a Attendee) bool { return strings.TrimSpace(a.Name) != "" })
	if syncUp.Attendees.Len() == 0 {
		syncUp.Attendees.Upsert(Attendee{ID: deps.UUID.New()})
	}
	return syncUp
}
