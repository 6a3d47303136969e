package factory

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/on-the-ground/apifactory/keys"
	"github.com/on-the-ground/apifactory/object"
)

// Core is the identity resolver of a factory. Core plugins fold over it in
// order and may replace any slot, typically after capturing the previous
// value to delegate to it.
//
// After New returns, Core() exposes the same record; reassigning a slot
// changes how later Create calls resolve state. Instances already cached are
// unaffected.
type Core[S any, K comparable] struct {
	// ParseState derives the state from Create's arguments.
	ParseState func(args ...any) (S, error)
	// IsState gates every build; false yields ErrInvalidState.
	IsState func(state S) bool
	// StateKey reduces a state to its cache key.
	StateKey func(state S) (K, error)
	// OnCreate runs once per newly built instance, after it is cached.
	OnCreate func(instance *object.Object) error

	// StateOf returns the state an instance was built from.
	StateOf func(instance *object.Object) (S, bool)
	// InstanceOf returns the cached instance for a state's key.
	InstanceOf func(state S) (*object.Object, bool)

	// RegisterProperty installs an accessor member on target and records its
	// name.
	RegisterProperty func(target *object.Object, name string, p object.Property)
	// PropertyNames lists registered property names in registration order.
	PropertyNames func() []string
}

func (c *Core[S, K]) validate() error {
	missing := make([]string, 0)
	if c.ParseState == nil {
		missing = append(missing, "ParseState")
	}
	if c.IsState == nil {
		missing = append(missing, "IsState")
	}
	if c.StateKey == nil {
		missing = append(missing, "StateKey")
	}
	if c.OnCreate == nil {
		missing = append(missing, "OnCreate")
	}
	if c.StateOf == nil {
		missing = append(missing, "StateOf")
	}
	if c.InstanceOf == nil {
		missing = append(missing, "InstanceOf")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: core capabilities unset: %v", ErrInvalidOptionType, missing)
	}
	return nil
}

func defaultCore[S any, K comparable](core *Core[S, K]) error {
	core.ParseState = FirstArgument[S]
	core.IsState = func(S) bool { return true }
	core.StateKey = keys.Identity[S, K]
	core.OnCreate = func(*object.Object) error { return nil }
	return nil
}

func propertiesCore[S any, K comparable](core *Core[S, K]) error {
	var names []string
	core.RegisterProperty = func(target *object.Object, name string, p object.Property) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
		target.Set(name, p)
	}
	core.PropertyNames = func() []string {
		return slices.Clone(names)
	}
	return nil
}

// FirstArgument is the default ParseState: no arguments yield the zero
// state, otherwise the first argument must be an S.
func FirstArgument[S any](args ...any) (S, error) {
	var zero S
	if len(args) == 0 {
		return zero, nil
	}
	if args[0] == nil && reflect.TypeFor[S]().Kind() == reflect.Interface {
		return zero, nil
	}
	state, ok := args[0].(S)
	if !ok {
		return zero, fmt.Errorf("%w: argument of type %T is not a %v", ErrInvalidState, args[0], reflect.TypeFor[S]())
	}
	return state, nil
}

// ParseWith adapts a parser that cannot fail.
func ParseWith[S any](parse func(args ...any) S) func(args ...any) (S, error) {
	return func(args ...any) (S, error) {
		return parse(args...), nil
	}
}
