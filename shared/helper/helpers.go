package helper

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnexpectedType is returned when a looked-up value does not have the requested type.
var ErrUnexpectedType = errors.New("unexpected type")

// GetTypedValueOf safely asserts the result of a getter function to the expected type T.
// Returns an error if the getter fails or the type assertion fails.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}

	// A nil interface satisfies T only when T itself is an interface type.
	if res == nil && reflect.TypeFor[T]().Kind() == reflect.Interface {
		return zero, nil
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T, want %v", ErrUnexpectedType, res, reflect.TypeFor[T]())
	}

	return val, nil
}

// GetTypedValueOf2 safely asserts the result of a comma-ok getter to the expected type T.
// ok is false when the getter misses or the type does not match.
func GetTypedValueOf2[T any](getFn func() (any, bool)) (res T, ok bool) {
	var raw any
	if raw, ok = getFn(); ok {
		res, ok = raw.(T)
	}
	return
}

// MustGetTypedValue is the panic-on-failure variant of GetTypedValueOf.
// Use when failure should be fatal (e.g., when the member is guaranteed to exist).
func MustGetTypedValue[T any](getFn func() (any, error)) T {
	res, err := GetTypedValueOf[T](getFn)
	if err != nil {
		panic(err)
	}
	return res
}
