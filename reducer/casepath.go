package reducer

import (
	"fmt"
	"reflect"
)

// CasePath addresses one case of a tagged union, such as a child action nested in a
// parent action. Name is the stable discriminator of the case.
type CasePath[Root, Value any] struct {
	Name    string
	Extract func(Root) (Value, bool)
	Embed   func(Value) Root
}

// Case is the CasePath of a union member that is itself the case type: V implements Root.
func Case[Root, V any]() CasePath[Root, V] {
	var zero V
	return CasePath[Root, V]{
		Name: fmt.Sprintf("%T", zero),
		Extract: func(r Root) (V, bool) {
			v, ok := any(r).(V)
			return v, ok
		},
		Embed: func(v V) Root {
			return any(v).(Root)
		},
	}
}

// Optional addresses child state that may be absent.
//
// Identity, when set, returns a comparable value naming the child instance held by
// the parent. A parent that swaps in a different instance dismisses the old one.
// Without it only the dynamic type of the child is compared.
type Optional[P, C any] struct {
	Get      func(*P) (C, bool)
	Set      func(*P, C)
	Clear    func(*P)
	Identity func(*P) any
}

func (o Optional[P, C]) identity(p *P) (any, bool) {
	c, ok := o.Get(p)
	if !ok {
		return nil, false
	}
	if o.Identity != nil {
		return o.Identity(p), true
	}
	return caseOf(any(c)), true
}

// replaced reports whether the child present before was dismissed or swapped for
// another instance.
func (o Optional[P, C]) replaced(p *P, before any, wasPresent bool) bool {
	if !wasPresent {
		return false
	}
	after, isPresent := o.identity(p)
	return !isPresent || after != before
}

// Pointer is the Optional of a *C field; nil means absent. The child is copied out and
// written back as a fresh pointer so earlier snapshots of the parent are not mutated.
func Pointer[P, C any](field func(*P) **C) Optional[P, C] {
	return Optional[P, C]{
		Get: func(p *P) (C, bool) {
			ptr := *field(p)
			if ptr == nil {
				var zero C
				return zero, false
			}
			return *ptr, true
		},
		Set: func(p *P, c C) {
			*field(p) = &c
		},
		Clear: func(p *P) {
			*field(p) = nil
		},
		Identity: func(p *P) any {
			return *field(p)
		},
	}
}

// Interface is the Optional of an interface-typed field, typically an enum of
// destinations; a nil interface means absent. A case held by pointer is identified by
// that pointer, any other case by its type.
func Interface[P, D any](field func(*P) *D) Optional[P, D] {
	return Optional[P, D]{
		Get: func(p *P) (D, bool) {
			d := *field(p)
			return d, any(d) != nil
		},
		Set: func(p *P, d D) {
			*field(p) = d
		},
		Clear: func(p *P) {
			var zero D
			*field(p) = zero
		},
		Identity: func(p *P) any {
			d := any(*field(p))
			if reflect.ValueOf(d).Kind() == reflect.Pointer {
				return d
			}
			return caseOf(d)
		},
	}
}

// caseOf distinguishes the members of an interface-typed union.
func caseOf(v any) reflect.Type {
	return reflect.TypeOf(v)
}
