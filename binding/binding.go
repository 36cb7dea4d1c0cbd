// Package binding collapses "field changed" actions into one generic action that
// writes a value straight into a field of state.
package binding

import (
	"fmt"
	"reflect"

	"github.com/on-the-ground/composable_ive_go/effects"
	"github.com/on-the-ground/composable_ive_go/reducer"
)

// Field selects one field of S. Name identifies the field in Action.Is.
type Field[S, V any] struct {
	Name string
	Get  func(*S) *V
}

func NewField[S, V any](name string, get func(*S) *V) Field[S, V] {
	return Field[S, V]{Name: name, Get: get}
}

// Action sets one field of S to a value.
//
// It holds a setter func and therefore is not comparable with ==; use Equal.
type Action[S any] struct {
	name  string
	value any
	apply func(*S)
}

// Set builds the Action that writes v into field.
func Set[S, V any](field Field[S, V], v V) Action[S] {
	get := field.Get
	return Action[S]{
		name:  field.Name,
		value: v,
		apply: func(s *S) { *get(s) = v },
	}
}

func (a Action[S]) Name() string { return a.name }

func (a Action[S]) Value() any { return a.value }

// Is reports whether a targets the field called name.
func (a Action[S]) Is(name string) bool { return a.name == name }

// Apply writes the value into state. The zero Action does nothing.
func (a Action[S]) Apply(state *S) {
	if a.apply != nil {
		a.apply(state)
	}
}

func (a Action[S]) Equal(other Action[S]) bool {
	return a.name == other.name && reflect.DeepEqual(a.value, other.value)
}

func (a Action[S]) String() string {
	return fmt.Sprintf("binding(%s = %#v)", a.name, a.value)
}

// ValueOf returns the value a carries when it targets field.
func ValueOf[S, V any](a Action[S], field Field[S, V]) (V, bool) {
	var zero V
	if !a.Is(field.Name) {
		return zero, false
	}
	v, ok := a.value.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Reducer applies binding actions found by extract. Combine it before the feature's
// own reducer so the feature sees the updated field when it post-processes.
func Reducer[S, A any](extract func(A) (Action[S], bool)) reducer.Reducer[S, A] {
	return reducer.Func[S, A](func(state *S, action A) effects.Effect[A] {
		if b, ok := extract(action); ok {
			b.Apply(state)
		}
		return effects.None[A]()
	})
}
