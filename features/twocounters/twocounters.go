// Package twocounters composes two independent counters through reducer.Scope.
package twocounters

import (
	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type State struct {
	Counter1 counter.State
	Counter2 counter.State
}

type Action interface{ isTwoCountersAction() }

type (
	Counter1 struct{ Action counter.Action }
	Counter2 struct{ Action counter.Action }
)

func (Counter1) isTwoCountersAction() {}
func (Counter2) isTwoCountersAction() {}

var (
	counter1Case = reducer.CasePath[Action, counter.Action]{
		Name:    "counter1",
		Extract: func(a Action) (counter.Action, bool) { c, ok := a.(Counter1); return c.Action, ok },
		Embed:   func(a counter.Action) Action { return Counter1{Action: a} },
	}
	counter2Case = reducer.CasePath[Action, counter.Action]{
		Name:    "counter2",
		Extract: func(a Action) (counter.Action, bool) { c, ok := a.(Counter2); return c.Action, ok },
		Embed:   func(a counter.Action) Action { return Counter2{Action: a} },
	}
)

func Reducer(deps dependencies.Dependencies) reducer.Reducer[State, Action] {
	return reducer.Combine(
		reducer.Scope(func(s *State) *counter.State { return &s.Counter1 }, counter1Case, counter.Reducer(deps)),
		reducer.Scope(func(s *State) *counter.State { return &s.Counter2 }, counter2Case, counter.Reducer(deps)),
	)
}
