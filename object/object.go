// Package object provides the ordered member table that plugins fold over.
//
// An Object maps member names to values: plain data, funcs, or Property
// accessor pairs. It keeps insertion order so that introspection (Names) is
// deterministic, and it is always handled by pointer: two *Object values are
// "the same instance" exactly when the pointers are equal.
//
// Objects are not safe for concurrent mutation. Plugins mutate them only while
// an instance is being built; afterwards callers treat them as read-mostly.
package object

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/on-the-ground/apifactory/shared/helper"
)

// ErrNoSuchMember is returned when a member name is not present on an Object.
var ErrNoSuchMember = errors.New("no such member")

// ErrReadOnly is returned when assigning to a Property that has no setter.
var ErrReadOnly = errors.New("read-only member")

// Members is an unordered name -> value mapping returned by plugins.
type Members map[string]any

// Names returns the member names in lexicographic order.
func (m Members) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property is an accessor-backed member. Value and Assign route through it
// instead of returning or replacing the Property itself.
type Property struct {
	Get func() any
	Set func(any) error
}

// Object is an insertion-ordered member table.
type Object struct {
	order  []string
	values map[string]any
}

// New returns an empty Object.
func New() *Object {
	return &Object{values: make(map[string]any)}
}

// FromMembers returns a new Object holding m, merged in sorted-name order.
func FromMembers(m Members) *Object {
	o := New()
	o.Merge(m)
	return o
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// Has reports whether name is a member.
func (o *Object) Has(name string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[name]
	return ok
}

// Get returns the raw member value; a Property is returned as-is.
func (o *Object) Get(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[name]
	return v, ok
}

// Set installs or replaces a member. Replacing keeps the original position.
func (o *Object) Set(name string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[name]; !exists {
		o.order = append(o.order, name)
	}
	o.values[name] = value
}

// Delete removes a member and reports whether it was present.
func (o *Object) Delete(name string) bool {
	if o == nil {
		return false
	}
	if _, ok := o.values[name]; !ok {
		return false
	}
	delete(o.values, name)
	if i := slices.Index(o.order, name); i >= 0 {
		o.order = slices.Delete(o.order, i, i+1)
	}
	return true
}

// Merge copies every member of m onto o, overwriting same-named members.
// New names are appended in sorted order so repeated builds are identical.
func (o *Object) Merge(m Members) {
	for _, name := range m.Names() {
		o.Set(name, m[name])
	}
}

// Names returns member names in insertion order.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.order)
}

// Members returns a shallow snapshot of the table.
func (o *Object) Members() Members {
	out := make(Members, o.Len())
	if o == nil {
		return out
	}
	for name, v := range o.values {
		out[name] = v
	}
	return out
}

// Value returns the member value, resolving a Property through its getter.
func (o *Object) Value(name string) (any, error) {
	v, ok := o.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchMember, name)
	}
	if p, isProp := v.(Property); isProp {
		if p.Get == nil {
			return nil, nil
		}
		return p.Get(), nil
	}
	return v, nil
}

// Assign writes value to name. A Property member receives the value through
// its setter; any other member is replaced.
func (o *Object) Assign(name string, value any) error {
	if v, ok := o.Get(name); ok {
		if p, isProp := v.(Property); isProp {
			if p.Set == nil {
				return fmt.Errorf("%w: %q", ErrReadOnly, name)
			}
			return p.Set(value)
		}
	}
	o.Set(name, value)
	return nil
}

// String lists the member names, e.g. "[add x y]".
func (o *Object) String() string {
	return fmt.Sprintf("%v", o.Names())
}

// Get returns the member name of o as a T, resolving properties.
func Get[T any](o *Object, name string) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return o.Value(name)
	})
}

// MustGet is the panic-on-failure variant of Get.
func MustGet[T any](o *Object, name string) T {
	return helper.MustGetTypedValue[T](func() (any, error) {
		return o.Value(name)
	})
}

// Lookup is the comma-ok variant of Get. Properties are not resolved.
func Lookup[T any](o *Object, name string) (T, bool) {
	return helper.GetTypedValueOf2[T](func() (any, bool) {
		return o.Get(name)
	})
}
