// Package reducer defines the Reducer contract and the operators that compose
// child features into parents: Scope, IfLet, IfLetPresentation, IfCaseLet and ForEach.
//
// Children are addressed through explicit accessors. State fields are reached with
// plain accessor funcs or an Optional, actions with a CasePath.
package reducer

import "github.com/on-the-ground/composable_ive_go/effects"

// Reducer evolves state in place for one action and describes the follow-up work.
// Reduce must be synchronous and must not perform I/O.
type Reducer[S, A any] interface {
	Reduce(state *S, action A) effects.Effect[A]
}

// Func adapts a plain function to Reducer.
type Func[S, A any] func(state *S, action A) effects.Effect[A]

func (f Func[S, A]) Reduce(state *S, action A) effects.Effect[A] {
	return f(state, action)
}

// Combine runs reducers in order, each against the state left by the previous one,
// and merges their effects.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return Func[S, A](func(state *S, action A) effects.Effect[A] {
		effs := make([]effects.Effect[A], 0, len(reducers))
		for _, r := range reducers {
			effs = append(effs, r.Reduce(state, action))
		}
		return effects.Merge(effs...)
	})
}

// Empty ignores every action.
func Empty[S, A any]() Reducer[S, A] {
	return Func[S, A](func(*S, A) effects.Effect[A] { return effects.None[A]() })
}

// namespace identifies one composed operator instance. It is never zero sized so
// every allocation has a distinct address.
type namespace struct {
	operator string
}

func newNamespace(operator string) *namespace {
	return &namespace{operator: operator}
}

type caseScope struct {
	ns   *namespace
	name string
}

type elementScope[K comparable] struct {
	ns  *namespace
	key K
}
