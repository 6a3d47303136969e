package factory

import (
	"reflect"
	"slices"
)

// IsPluginList reports whether x is a slice or array whose every element is
// a non-nil func. An empty list qualifies.
func IsPluginList(x any) bool {
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !isFunc(rv.Index(i)) {
			return false
		}
	}
	return true
}

// IsPluginSet reports whether x has the shape of a plugin set: a Phases or
// map[string]any value whose keys are all phase names and whose values are
// plugin lists, or a Set of any state and key type.
func IsPluginSet(x any) bool {
	switch m := x.(type) {
	case Phases:
		for phase, v := range m {
			if !isPhase(phase) || (v != nil && !IsPluginList(v)) {
				return false
			}
		}
		return true
	case map[string]any:
		for phase, v := range m {
			if !isPhase(Phase(phase)) || (v != nil && !IsPluginList(v)) {
				return false
			}
		}
		return true
	}
	return isSetStruct(reflect.ValueOf(x))
}

func isPhase(p Phase) bool {
	return slices.Contains(allPhases, p)
}

var setFields = []string{"Core", "Private", "Public", "Static"}

func isSetStruct(rv reflect.Value) bool {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.NumField() != len(setFields) {
		return false
	}
	for _, name := range setFields {
		f := rv.FieldByName(name)
		if !f.IsValid() || f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Func {
			return false
		}
		if !IsPluginList(f.Interface()) {
			return false
		}
	}
	return true
}

func isFunc(rv reflect.Value) bool {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

func isNilFunc(x any) bool {
	return !isFunc(reflect.ValueOf(x))
}
