// Package counter is the counter of the tutorial: increment and decrement buttons, a
// number fact fetched over the network and a one second timer.
package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

type State struct {
	Count          int    `json:"count"`
	Fact           string `json:"fact,omitempty"`
	FactError      string `json:"factError,omitempty"`
	IsLoading      bool   `json:"isLoading"`
	IsTimerRunning bool   `json:"isTimerRunning"`
}

type Action interface{ isCounterAction() }

type (
	DecrementButtonTapped   struct{}
	IncrementButtonTapped   struct{}
	FactButtonTapped        struct{}
	FactResponse            struct{ Fact string }
	FactFailed              struct{ Message string }
	TimerTick               struct{}
	ToggleTimerButtonTapped struct{}
)

func (DecrementButtonTapped) isCounterAction()   {}
func (IncrementButtonTapped) isCounterAction()   {}
func (FactButtonTapped) isCounterAction()        {}
func (FactResponse) isCounterAction()            {}
func (FactFailed) isCounterAction()              {}
func (TimerTick) isCounterAction()               {}
func (ToggleTimerButtonTapped) isCounterAction() {}

type cancelID string

// TimerID cancels the running timer.
const TimerID cancelID = "timer"

func Reducer(deps dependencies.Dependencies) reducer.Reducer[State, Action] {
	return reducer.Func[State, Action](func(s *State, a Action) effects.Effect[Action] {
		switch a := a.(type) {
		case DecrementButtonTapped:
			s.Count--

		case IncrementButtonTapped:
			s.Count++

		case FactButtonTapped:
			s.Fact = ""
			s.FactError = ""
			s.IsLoading = true
			n := s.Count
			return effects.RunCatching(func(ctx context.Context, send effects.Sender[Action]) error {
				fact, err := deps.Fact.Fetch(ctx, n)
				if err != nil {
					return err
				}
				send(FactResponse{Fact: fact})
				return nil
			}, func(err error) Action {
				return FactFailed{Message: err.Error()}
			})

		case FactResponse:
			s.Fact = a.Fact
			s.IsLoading = false

		case FactFailed:
			s.FactError = a.Message
			s.IsLoading = false

		case TimerTick:
			s.Count++
			s.Fact = ""

		case ToggleTimerButtonTapped:
			s.IsTimerRunning = !s.IsTimerRunning
			if !s.IsTimerRunning {
				return effects.Cancel[Action](TimerID)
			}
			return effects.Run(func(ctx context.Context, send effects.Sender[Action]) error {
				for {
					if err := deps.Clock.Sleep(ctx, time.Second); err != nil {
						return err
					}
					send(TimerTick{})
				}
			}).Cancellable(TimerID)
		}
		return effects.None[Action]()
	})
}

var ErrUnknownAction = errors.New("unknown counter action")

// ParseAction maps the button names used by the CLI and the view server to actions.
func ParseAction(name string) (Action, error) {
	switch name {
	case "increment", "+":
		return IncrementButtonTapped{}, nil
	case "decrement", "-":
		return DecrementButtonTapped{}, nil
	case "fact":
		return FactButtonTapped{}, nil
	case "timer":
		return ToggleTimerButtonTapped{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
