package factory_test

import (
	"errors"
	"fmt"
	"math"

	"github.com/on-the-ground/apifactory/factory"
	"github.com/on-the-ground/apifactory/keys"
	"github.com/on-the-ground/apifactory/object"
)

type vec = [2]float64

type (
	build      = factory.Build[vec, string]
	points     = factory.Factory[vec, string]
	pointSet   = factory.Set[vec, string]
	publicFn   = factory.PublicPlugin[vec, string]
	addFunc    = func(other *object.Object) (*object.Object, error)
	createFunc = func(args ...any) (*object.Object, error)
)

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func parsePoint(args ...any) (vec, error) {
	if len(args) == 1 {
		if v, ok := args[0].(vec); ok {
			return v, nil
		}
	}
	if len(args) != 2 {
		return vec{}, fmt.Errorf("want x and y, got %d arguments", len(args))
	}
	x, okX := toFloat(args[0])
	y, okY := toFloat(args[1])
	if !okX || !okY {
		return vec{}, fmt.Errorf("coordinates must be numbers, got %T and %T", args[0], args[1])
	}
	return vec{x, y}, nil
}

func pointCore(core *factory.Core[vec, string]) error {
	core.ParseState = parsePoint
	core.IsState = func(v vec) bool { return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) }
	core.StateKey = func(v vec) (string, error) { return keys.Join(v), nil }
	return nil
}

func pointMembers(b *build) (factory.Contribution, error) {
	create := object.MustGet[createFunc](b.Statics, factory.StaticCreate)
	state, core := b.State, b.Core
	return factory.Public(object.Members{
		"x": state[0],
		"y": state[1],
		"add": func(other *object.Object) (*object.Object, error) {
			o, ok := core.StateOf(other)
			if !ok {
				return nil, errors.New("not a point")
			}
			return create(state[0]+o[0], state[1]+o[1])
		},
	}), nil
}

func pointPlugins() pointSet {
	return pointSet{
		Core:   []factory.CorePlugin[vec, string]{pointCore},
		Public: []publicFn{pointMembers},
	}
}

func newPoints(args ...any) *points {
	f, err := factory.New[vec, string](append([]any{pointPlugins()}, args...)...)
	if err != nil {
		panic(err)
	}
	return f
}
