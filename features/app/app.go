// Package app is the root feature: a tab bar over two counters, the contacts list and
// the sync-ups list.
package app

import (
	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/contacts"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/features/syncups"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type Tab string

const (
	TabCounter1 Tab = "counter1"
	TabCounter2 Tab = "counter2"
	TabContacts Tab = "contacts"
	TabSyncUps  Tab = "syncups"
)

type State struct {
	Tab1        counter.State
	Tab2        counter.State
	Contacts    contacts.State
	SyncUps     syncups.ListState
	SelectedTab Tab
}

func NewState() State {
	return State{SelectedTab: TabCounter1}
}

type Action interface{ isAppAction() }

type (
	Tab1      struct{ Action counter.Action }
	Tab2      struct{ Action counter.Action }
	Contacts  struct{ Action contacts.Action }
	SyncUps   struct{ Action syncups.ListAction }
	SelectTab struct{ Tab Tab }
)

func (Tab1) isAppAction()      {}
func (Tab2) isAppAction()      {}
func (Contacts) isAppAction()  {}
func (SyncUps) isAppAction()   {}
func (SelectTab) isAppAction() {}

var (
	tab1Case = reducer.CasePath[Action, counter.Action]{
		Name:    "tab1",
		Extract: func(a Action) (counter.Action, bool) { x, ok := a.(Tab1); return x.Action, ok },
		Embed:   func(a counter.Action) Action { return Tab1{Action: a} },
	}
	tab2Case = reducer.CasePath[Action, counter.Action]{
		Name:    "tab2",
		Extract: func(a Action) (counter.Action, bool) { x, ok := a.(Tab2); return x.Action, ok },
		Embed:   func(a counter.Action) Action { return Tab2{Action: a} },
	}
	contactsCase = reducer.CasePath[Action, contacts.Action]{
		Name:    "contacts",
		Extract: func(a Action) (contacts.Action, bool) { x, ok := a.(Contacts); return x.Action, ok },
		Embed:   func(a contacts.Action) Action { return Contacts{Action: a} },
	}
	syncUpsCase = reducer.CasePath[Action, syncups.ListAction]{
		Name:    "syncUps",
		Extract: func(a Action) (syncups.ListAction, bool) { x, ok := a.(SyncUps); return x.Action, ok },
		Embed:   func(a syncups.ListAction) Action { return SyncUps{Action: a} },
	}
)

func Reducer(deps dependencies.Dependencies) reducer.Reducer[State, Action] {
	return reducer.Combine(
		reducer.IsolatedScope(func(s *State) *counter.State { return &s.Tab1 }, tab1Case, counter.Reducer(deps)),
		reducer.IsolatedScope(func(s *State) *counter.State { return &s.Tab2 }, tab2Case, counter.Reducer(deps)),
		reducer.IsolatedScope(func(s *State) *contacts.State { return &s.Contacts }, contactsCase, contacts.Reducer(deps)),
		reducer.IsolatedScope(func(s *State) *syncups.ListState { return &s.SyncUps }, syncUpsCase, syncups.ListReducer(deps)),
		reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
			if sel, ok := a.(SelectTab); ok {
				s.SelectedTab = sel.Tab
			}
			return effects.None[Action]()
		}),
	)
}
