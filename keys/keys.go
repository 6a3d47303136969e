// Package keys derives comparable cache keys from state values.
//
// A factory memoizes instances by key, so a key must be comparable and two
// states that should share an instance must produce equal keys. The helpers
// here cover the common shapes: states that already are keys (Identity),
// non-comparable states with a textual form (Of), tuple-like states
// (Join), and wide states that are cheaper to key by a 64-bit digest (Hash).
package keys

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrUnkeyable is returned when a state cannot be used as a key.
var ErrUnkeyable = errors.New("state cannot be used as a key")

// Separator joins parts in Join and delimits parts in Hash.
const Separator = ","

// Identity uses the state itself as the key. It fails when the state is not
// a K or holds a value that is not comparable, at any depth (e.g. a slice
// behind an any, or inside an interface-typed struct field).
func Identity[S any, K comparable](state S) (K, error) {
	var zero K
	v := any(state)
	if v == nil {
		// Only an interface K can represent a nil state.
		if reflect.TypeFor[K]().Kind() == reflect.Interface {
			return zero, nil
		}
		return zero, fmt.Errorf("%w: nil state", ErrUnkeyable)
	}
	if !Comparable(v) {
		return zero, fmt.Errorf("%w: %T is not comparable", ErrUnkeyable, v)
	}
	k, ok := v.(K)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not a %v", ErrUnkeyable, v, reflect.TypeFor[K]())
	}
	return k, nil
}

// Of returns a comparable form of v: its String() when v is a fmt.Stringer,
// v itself when comparable, or an error.
func Of(v any) (any, error) {
	if stringer, ok := v.(fmt.Stringer); ok {
		return stringer.String(), nil
	}
	if Comparable(v) {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %T is neither comparable nor a fmt.Stringer", ErrUnkeyable, v)
}

// Comparable reports whether v can be compared with == without panicking.
// Unlike reflect.Type.Comparable it looks through interface values held in
// struct fields and array elements.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	return comparableValue(reflect.ValueOf(v))
}

func comparableValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return comparableValue(rv.Elem())
	case reflect.Struct:
		if !rv.Type().Comparable() {
			return false
		}
		for i := range rv.NumField() {
			if !comparableValue(rv.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		if !rv.Type().Comparable() {
			return false
		}
		for i := range rv.Len() {
			if !comparableValue(rv.Index(i)) {
				return false
			}
		}
		return true
	default:
		return rv.Type().Comparable()
	}
}

// Join renders parts as one string key, e.g. Join(5, 2) == "5,2".
// A single slice or array argument is spread into its elements.
func Join(parts ...any) string {
	parts = spread(parts)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = fmt.Sprint(p)
	}
	return strings.Join(out, Separator)
}

// Hash digests parts into a 64-bit key with xxhash. Parts are rendered the
// same way as Join, so Hash(a...) == Hash(b...) whenever Join agrees.
func Hash(parts ...any) uint64 {
	parts = spread(parts)
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.WriteString(Separator)
		}
		_, _ = d.WriteString(fmt.Sprint(p))
	}
	return d.Sum64()
}

// HashString digests a single string key.
func HashString(key string) uint64 {
	return xxhash.Sum64String(key)
}

func spread(parts []any) []any {
	if len(parts) != 1 || parts[0] == nil {
		return parts
	}
	rv := reflect.ValueOf(parts[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return parts
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return parts
	}
}
