package reducer_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type childState struct{ Name string }

type childAction interface{ isChildAction() }

type setName struct{ Name string }
type watchName struct{}
type closeSelf struct{}

func (setName) isChildAction()   {}
func (watchName) isChildAction() {}
func (closeSelf) isChildAction() {}

var child = reducer.Func[childState, childAction](func(s *childState, a childAction) effects.Effect[childAction] {
	switch a := a.(type) {
	case setName:
		s.Name = a.Name
	case watchName:
		return effects.Run(func(ctx context.Context, send effects.Sender[childAction]) error {
			<-ctx.Done()
			return ctx.Err()
		}).Cancellable("watch")
	case closeSelf:
		return effects.Dismiss[childAction]()
	}
	return effects.None[childAction]()
})

type parentState struct {
	AddChild *childState
	Items    []string
}

type parentAction interface{ isParentAction() }

type openChild struct{}
type confirmAdd struct{}
type childMsg struct {
	Action reducer.PresentationAction[childAction]
}

func (openChild) isParentAction()  {}
func (confirmAdd) isParentAction() {}
func (childMsg) isParentAction()   {}

var childPath = reducer.CasePath[parentAction, reducer.PresentationAction[childAction]]{
	Name: "addChild",
	Extract: func(a parentAction) (reducer.PresentationAction[childAction], bool) {
		c, ok := a.(childMsg)
		return c.Action, ok
	},
	Embed: func(p reducer.PresentationAction[childAction]) parentAction { return childMsg{p} },
}

var parentBase = reducer.Func[parentState, parentAction](func(s *parentState, a parentAction) effects.Effect[parentAction] {
	switch a.(type) {
	case openChild:
		s.AddChild = &childState{}
	case confirmAdd:
		if s.AddChild != nil {
			s.Items = append(append([]string(nil), s.Items...), s.AddChild.Name)
			s.AddChild = nil
		}
	}
	return effects.None[parentAction]()
})

func newParent() reducer.Reducer[parentState, parentAction] {
	return reducer.IfLetPresentation(
		reducer.Reducer[parentState, parentAction](parentBase),
		reducer.Pointer(func(s *parentState) **childState { return &s.AddChild }),
		childPath,
		reducer.Reducer[childState, childAction](child),
	)
}

func TestIfLetPresentation_AddChildScenario(t *testing.T) {
	r := newParent()
	s := parentState{}

	r.Reduce(&s, openChild{})
	require.NotNil(t, s.AddChild)
	assert.Equal(t, childState{Name: ""}, *s.AddChild)

	watch := r.Reduce(&s, childMsg{reducer.Presented[childAction](watchName{})})
	require.Equal(t, effects.KindRun, watch.Kind())

	r.Reduce(&s, childMsg{reducer.Presented[childAction](setName{Name: "Ann"})})
	assert.Equal(t, childState{Name: "Ann"}, *s.AddChild)

	eff := r.Reduce(&s, confirmAdd{})
	assert.Nil(t, s.AddChild)
	assert.Equal(t, []string{"Ann"}, s.Items)
	require.Equal(t, effects.KindCancel, eff.Kind())
	assert.Contains(t, watch.IDs(), eff.Target())
}

func TestIfLetPresentation_ReplacingTheChildCancelsItsEffects(t *testing.T) {
	r := newParent()
	s := parentState{}

	r.Reduce(&s, openChild{})
	watch := r.Reduce(&s, childMsg{reducer.Presented[childAction](watchName{})})
	require.Equal(t, effects.KindRun, watch.Kind())

	// child writes do not count as a replacement
	eff := r.Reduce(&s, childMsg{reducer.Presented[childAction](setName{Name: "Ann"})})
	assert.True(t, eff.IsNone())

	eff = r.Reduce(&s, openChild{})
	require.NotNil(t, s.AddChild)
	assert.Equal(t, childState{}, *s.AddChild)
	require.Equal(t, effects.KindCancel, eff.Kind())
	assert.Contains(t, watch.IDs(), eff.Target())
}

func TestIfLetPresentation_DoesNotMutateEarlierSnapshots(t *testing.T) {
	r := newParent()
	s := parentState{}
	r.Reduce(&s, openChild{})
	snapshot := s

	r.Reduce(&s, childMsg{reducer.Presented[childAction](setName{Name: "Ann"})})
	assert.Equal(t, "", snapshot.AddChild.Name)
	assert.Equal(t, "Ann", s.AddChild.Name)
}

func TestIfLetPresentation_DismissCancelsBeforeParentRuns(t *testing.T) {
	var sawChild bool
	base := reducer.Func[parentState, parentAction](func(s *parentState, a parentAction) effects.Effect[parentAction] {
		if _, ok := a.(childMsg); ok {
			sawChild = s.AddChild != nil
			return effects.Send[parentAction](confirmAdd{})
		}
		return parentBase(s, a)
	})
	r := reducer.IfLetPresentation(
		reducer.Reducer[parentState, parentAction](base),
		reducer.Pointer(func(s *parentState) **childState { return &s.AddChild }),
		childPath,
		reducer.Reducer[childState, childAction](child),
	)

	s := parentState{AddChild: &childState{Name: "Bo"}}
	eff := r.Reduce(&s, childMsg{reducer.Dismiss[childAction]()})

	assert.False(t, sawChild, "parent must observe the child already dismissed")
	assert.Nil(t, s.AddChild)
	members := eff.Members()
	require.Len(t, members, 2)
	assert.Equal(t, effects.KindCancel, members[0].Kind())
	assert.Equal(t, effects.KindSend, members[1].Kind())
}

func TestIfLetPresentation_ChildDismissBecomesDismissAction(t *testing.T) {
	r := newParent()
	s := parentState{AddChild: &childState{}}

	eff := r.Reduce(&s, childMsg{reducer.Presented[childAction](closeSelf{})})
	require.Equal(t, effects.KindSend, eff.Kind())
	assert.Equal(t, childMsg{reducer.Dismiss[childAction]()}, eff.Action())

	r.Reduce(&s, eff.Action())
	assert.Nil(t, s.AddChild)
}

func TestIfLetPresentation_ActionForAbsentChildIsReported(t *testing.T) {
	r := newParent()
	s := parentState{}

	eff := r.Reduce(&s, childMsg{reducer.Presented[childAction](setName{Name: "x"})})
	require.Equal(t, effects.KindReport, eff.Kind())
	assert.Contains(t, eff.Message(), "absent")
}

func TestIfLet_CancelsWhenParentClearsChild(t *testing.T) {
	plainPath := reducer.CasePath[parentAction, childAction]{
		Name: "child",
		Extract: func(a parentAction) (childAction, bool) {
			c, ok := a.(childMsg)
			if !ok {
				return nil, false
			}
			return c.Action.Action()
		},
		Embed: func(c childAction) parentAction { return childMsg{reducer.Presented(c)} },
	}
	r := reducer.IfLet(
		reducer.Reducer[parentState, parentAction](parentBase),
		reducer.Pointer(func(s *parentState) **childState { return &s.AddChild }),
		plainPath,
		reducer.Reducer[childState, childAction](child),
	)

	s := parentState{}
	assert.Equal(t, effects.KindReport, r.Reduce(&s, childMsg{reducer.Presented[childAction](watchName{})}).Kind())

	r.Reduce(&s, openChild{})
	watch := r.Reduce(&s, childMsg{reducer.Presented[childAction](watchName{})})
	require.Equal(t, effects.KindRun, watch.Kind())

	eff := r.Reduce(&s, confirmAdd{})
	require.Equal(t, effects.KindCancel, eff.Kind())
	assert.Contains(t, watch.IDs(), eff.Target())

	r.Reduce(&s, openChild{})
	watch = r.Reduce(&s, childMsg{reducer.Presented[childAction](watchName{})})
	eff = r.Reduce(&s, openChild{})
	require.Equal(t, effects.KindCancel, eff.Kind(), "a new instance replaces the old child")
	assert.Contains(t, watch.IDs(), eff.Target())
}

type destination interface{ isDestination() }

type sheetDest struct{ Child childState }
type alertDest struct{ Title string }

func (sheetDest) isDestination() {}
func (alertDest) isDestination() {}

type destinationAction interface{ isDestinationAction() }

type sheetAction struct{ Action childAction }

func (sheetAction) isDestinationAction() {}

type showAlert struct{}

func (showAlert) isDestinationAction() {}

func TestIfCaseLet_DispatchesToActiveCaseAndCancelsOnSwitch(t *testing.T) {
	sheetState := reducer.CasePath[destination, childState]{
		Name: "sheet",
		Extract: func(d destination) (childState, bool) {
			s, ok := d.(sheetDest)
			return s.Child, ok
		},
		Embed: func(c childState) destination { return sheetDest{c} },
	}
	sheetActionPath := reducer.CasePath[destinationAction, childAction]{
		Name: "sheet",
		Extract: func(a destinationAction) (childAction, bool) {
			s, ok := a.(sheetAction)
			return s.Action, ok
		},
		Embed: func(c childAction) destinationAction { return sheetAction{c} },
	}
	base := reducer.Func[destination, destinationAction](func(d *destination, a destinationAction) effects.Effect[destinationAction] {
		if _, ok := a.(showAlert); ok {
			*d = alertDest{Title: "hi"}
		}
		return effects.None[destinationAction]()
	})
	r := reducer.IfCaseLet(
		reducer.Reducer[destination, destinationAction](base),
		sheetState,
		sheetActionPath,
		reducer.Reducer[childState, childAction](child),
	)

	var d destination = sheetDest{}
	r.Reduce(&d, sheetAction{setName{Name: "Ann"}})
	assert.Equal(t, destination(sheetDest{Child: childState{Name: "Ann"}}), d)

	watch := r.Reduce(&d, sheetAction{watchName{}})
	require.Equal(t, effects.KindRun, watch.Kind())

	eff := r.Reduce(&d, showAlert{})
	require.Equal(t, effects.KindCancel, eff.Kind())
	assert.Contains(t, watch.IDs(), eff.Target())

	report := r.Reduce(&d, sheetAction{setName{Name: "late"}})
	assert.Equal(t, effects.KindReport, report.Kind())
	assert.Equal(t, destination(alertDest{Title: "hi"}), d)
}
