// Package sharedstate has two tabs that read and write the same Stats through a
// shared key. Which backend holds the key decides whether the stats live in memory,
// in a key-value store or in a file.
package sharedstate

import (
	"context"
	"fmt"

	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/features/alert"
	"github.com/on-the-ground/composable_ive_go/reducer"
	"github.com/on-the-ground/composable_ive_go/shared"
)

type Tab int

const (
	TabCounter Tab = iota
	TabProfile
)

// PrimeAlertAction has no values: the prime alert only dismisses.
type PrimeAlertAction struct{}

type CounterTabState struct {
	Alert     *alert.State[PrimeAlertAction]
	Stats     shared.Shared[Stats]
	SaveError string
}

type CounterTabAction interface{ isCounterTabAction() }

type (
	CounterAlert struct {
		Action reducer.PresentationAction[PrimeAlertAction]
	}
	DecrementButtonTapped struct{}
	IncrementButtonTapped struct{}
	IsPrimeButtonTapped   struct{}
)

func (CounterAlert) isCounterTabAction()          {}
func (DecrementButtonTapped) isCounterTabAction() {}
func (IncrementButtonTapped) isCounterTabAction() {}
func (IsPrimeButtonTapped) isCounterTabAction()   {}

// StatsSaved and SaveFailed answer a write of the shared stats made by either tab.
type (
	StatsSaved struct{}
	SaveFailed struct{ Message string }
)

func (StatsSaved) isCounterTabAction() {}
func (SaveFailed) isCounterTabAction() {}
func (StatsSaved) isProfileTabAction() {}
func (SaveFailed) isProfileTabAction() {}

// saveStats writes the shared stats off the store loop.
func saveStats[A any](stats shared.Shared[Stats], mutate func(*Stats), saved A, failed func(string) A) effects.Effect[A] {
	return effects.RunCatching(func(ctx context.Context, send effects.Sender[A]) error {
		if err := stats.WithLock(ctx, mutate); err != nil {
			return err
		}
		send(saved)
		return nil
	}, func(err error) A { return failed(err.Error()) })
}

func counterSaveFailed(msg string) CounterTabAction { return SaveFailed{Message: msg} }

// PrimeAlert tells whether n is prime.
func PrimeAlert(n int) *alert.State[PrimeAlertAction] {
	title := fmt.Sprintf("👎 The number %d is not prime :(", n)
	if isPrime(n) {
		title = fmt.Sprintf("👍 The number %d is prime!", n)
	}
	a := alert.New[PrimeAlertAction](title, "")
	return &a
}

var counterAlertCase = reducer.CasePath[CounterTabAction, reducer.PresentationAction[PrimeAlertAction]]{
	Name: "alert",
	Extract: func(a CounterTabAction) (reducer.PresentationAction[PrimeAlertAction], bool) {
		x, ok := a.(CounterAlert)
		return x.Action, ok
	},
	Embed: func(p reducer.PresentationAction[PrimeAlertAction]) CounterTabAction { return CounterAlert{Action: p} },
}

func CounterTabReducer() reducer.Reducer[CounterTabState, CounterTabAction] {
	base := reducer.Func[CounterTabState, CounterTabAction](func(s *CounterTabState, a CounterTabAction) effects.Effect[CounterTabAction] {
		switch a := a.(type) {
		case DecrementButtonTapped:
			return saveStats[CounterTabAction](s.Stats, (*Stats).Decrement, StatsSaved{}, counterSaveFailed)
		case IncrementButtonTapped:
			return saveStats[CounterTabAction](s.Stats, (*Stats).Increment, StatsSaved{}, counterSaveFailed)
		case StatsSaved:
			s.SaveError = ""
		case SaveFailed:
			s.SaveError = a.Message
		case IsPrimeButtonTapped:
			s.Alert = PrimeAlert(s.Stats.Load().Count)
		}
		return effects.None[CounterTabAction]()
	})
	return alert.Presentation(base,
		reducer.Pointer(func(s *CounterTabState) **alert.State[PrimeAlertAction] { return &s.Alert }),
		counterAlertCase,
	)
}

type ProfileTabState struct {
	Stats     shared.Shared[Stats]
	SaveError string
}

type ProfileTabAction interface{ isProfileTabAction() }

type ResetStatsButtonTapped struct{}

func (ResetStatsButtonTapped) isProfileTabAction() {}

func ProfileTabReducer() reducer.Reducer[ProfileTabState, ProfileTabAction] {
	return reducer.Func[ProfileTabState, ProfileTabAction](func(s *ProfileTabState, a ProfileTabAction) effects.Effect[ProfileTabAction] {
		switch a := a.(type) {
		case ResetStatsButtonTapped:
			return saveStats[ProfileTabAction](s.Stats, func(st *Stats) { *st = Stats{} }, StatsSaved{},
				func(msg string) ProfileTabAction { return SaveFailed{Message: msg} })
		case StatsSaved:
			s.SaveError = ""
		case SaveFailed:
			s.SaveError = a.Message
		}
		return effects.None[ProfileTabAction]()
	})
}

type State struct {
	CurrentTab Tab
	Counter    CounterTabState
	Profile    ProfileTabState
}

// NewState points both tabs at key.
func NewState(key shared.Key[Stats]) State {
	return State{
		Counter: CounterTabState{Stats: shared.New(key, Stats{})},
		Profile: ProfileTabState{Stats: shared.New(key, Stats{})},
	}
}

type Action interface{ isSharedStateAction() }

type (
	Counter       struct{ Action CounterTabAction }
	Profile       struct{ Action ProfileTabAction }
	SelectTab     struct{ Tab Tab }
	Observe       struct{}
	StopObserving struct{}
	// StatsChanged reports a change of the shared stats, wherever it came from.
	StatsChanged struct{ Stats Stats }
)

func (Counter) isSharedStateAction()       {}
func (Profile) isSharedStateAction()       {}
func (SelectTab) isSharedStateAction()     {}
func (Observe) isSharedStateAction()       {}
func (StopObserving) isSharedStateAction() {}
func (StatsChanged) isSharedStateAction()  {}

type cancelID string

const observeID cancelID = "observeStats"

var (
	counterCase = reducer.CasePath[Action, CounterTabAction]{
		Name:    "counter",
		Extract: func(a Action) (CounterTabAction, bool) { x, ok := a.(Counter); return x.Action, ok },
		Embed:   func(a CounterTabAction) Action { return Counter{Action: a} },
	}
	profileCase = reducer.CasePath[Action, ProfileTabAction]{
		Name:    "profile",
		Extract: func(a Action) (ProfileTabAction, bool) { x, ok := a.(Profile); return x.Action, ok },
		Embed:   func(a ProfileTabAction) Action { return Profile{Action: a} },
	}
)

func Reducer() reducer.Reducer[State, Action] {
	return reducer.Combine(
		reducer.Scope(func(s *State) *CounterTabState { return &s.Counter }, counterCase, CounterTabReducer()),
		reducer.Scope(func(s *State) *ProfileTabState { return &s.Profile }, profileCase, ProfileTabReducer()),
		reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
			switch a := a.(type) {
			case SelectTab:
				s.CurrentTab = a.Tab
			case Observe:
				return shared.Publisher(s.Counter.Stats, func(v Stats) Action {
					return StatsChanged{Stats: v}
				}).CancelInFlight(observeID)
			case StopObserving:
				return effects.Cancel[Action](observeID)
			}
			return effects.None[Action]()
		}),
	)
}
