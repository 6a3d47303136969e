// Package factory builds memoizing API factories from layered plugins.
//
// A factory turns a piece of state into an API object without copying the
// state. Asking again for a state with the same key returns the very same
// *object.Object, so instances can be compared with ==.
//
// # Phases
//
// Plugins are grouped in four phases, each folded in argument order:
//   - core: edits the identity resolver (ParseState, IsState, StateKey,
//     OnCreate), once, in New
//   - static: contributes factory-level members, once, in New
//   - private: contributes members visible only while an instance is built
//   - public: contributes the instance's members, tagged by visibility
//
// A later plugin sees everything earlier plugins produced and may capture a
// member before replacing it, which is how decorators are written.
//
// # Visibility
//
// Public and static plugins return a Contribution. Private members are usable
// by later plugins and stripped from the result. Static members come only
// from static plugins, so the static table is fixed once New returns and
// every instance sees the same statics. Both removals can be turned off.
//
// Example:
//
//	points, _ := factory.New[[2]float64, string](
//	    factory.WithStateKeyFunc(func(p [2]float64) string { return keys.Join(p) }),
//	    func(b *factory.Build[[2]float64, string]) (factory.Contribution, error) {
//	        return factory.Public(object.Members{"x": b.State[0], "y": b.State[1]}), nil
//	    },
//	)
//	a, _ := points.Create([2]float64{5, 2})
//	b, _ := points.Create([2]float64{5, 2})
//	// a == b
package factory
