package factory

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/on-the-ground/apifactory/object"
)

// Normalize converts one plugin argument into a Set.
//
// Accepted shapes: a public plugin, a list of public plugins, a Set or *Set,
// and Phases (or map[string]any) mapping each phase to a plugin or a list of
// plugins of that phase. Anything else yields ErrInvalidPluginShape.
func Normalize[S any, K comparable](arg any) (Set[S, K], error) {
	switch v := arg.(type) {
	case Set[S, K]:
		return v.clone(), nil
	case *Set[S, K]:
		if v == nil {
			return Set[S, K]{}, fmt.Errorf("%w: nil %T", ErrInvalidPluginShape, arg)
		}
		return v.clone(), nil
	case Phases:
		return normalizePhases[S, K](v)
	case map[string]any:
		phases := make(Phases, len(v))
		for name, plugins := range v {
			phases[Phase(name)] = plugins
		}
		return normalizePhases[S, K](phases)
	}
	if public, ok := publicPlugins[S, K](arg); ok {
		return Set[S, K]{Public: public}, nil
	}
	return Set[S, K]{}, fmt.Errorf("%w: %T", ErrInvalidPluginShape, arg)
}

// NormalizeAll normalizes every argument, reporting all failures together.
func NormalizeAll[S any, K comparable](args ...any) ([]Set[S, K], error) {
	sets := make([]Set[S, K], 0, len(args))
	var errs error
	for i, arg := range args {
		set, err := Normalize[S, K](arg)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("argument %d: %w", i, err))
			continue
		}
		sets = append(sets, set)
	}
	if errs != nil {
		return nil, errs
	}
	return sets, nil
}

func normalizePhases[S any, K comparable](phases Phases) (Set[S, K], error) {
	var (
		set  Set[S, K]
		errs error
		ok   bool
	)
	for _, phase := range allPhases {
		v, present := phases[phase]
		if !present || v == nil {
			continue
		}
		switch phase {
		case PhaseCore:
			set.Core, ok = corePlugins[S, K](v)
		case PhasePrivate:
			set.Private, ok = privatePlugins[S, K](v)
		case PhasePublic:
			set.Public, ok = publicPlugins[S, K](v)
		case PhaseStatic:
			set.Static, ok = staticPlugins[S, K](v)
		}
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s phase: %T", ErrInvalidPluginShape, phase, v))
		}
	}
	var unknown []string
	for phase := range phases {
		if !isPhase(phase) {
			unknown = append(unknown, string(phase))
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = multierr.Append(errs, fmt.Errorf("%w: unknown phase %q", ErrInvalidPluginShape, name))
	}
	if errs != nil {
		return Set[S, K]{}, errs
	}
	return set, nil
}

func corePlugins[S any, K comparable](v any) ([]CorePlugin[S, K], bool) {
	return pluginsOf[CorePlugin[S, K]](v, func(fn func(*Core[S, K]) error) CorePlugin[S, K] {
		return fn
	})
}

func staticPlugins[S any, K comparable](v any) ([]StaticPlugin[S, K], bool) {
	return pluginsOf[StaticPlugin[S, K]](v, func(fn func(*StaticBuild[S, K]) (Contribution, error)) StaticPlugin[S, K] {
		return fn
	})
}

func privatePlugins[S any, K comparable](v any) ([]PrivatePlugin[S, K], bool) {
	return pluginsOf[PrivatePlugin[S, K]](v, func(fn func(*Build[S, K]) (object.Members, error)) PrivatePlugin[S, K] {
		return fn
	})
}

func publicPlugins[S any, K comparable](v any) ([]PublicPlugin[S, K], bool) {
	return pluginsOf[PublicPlugin[S, K]](v, func(fn func(*Build[S, K]) (Contribution, error)) PublicPlugin[S, K] {
		return fn
	})
}

// pluginsOf accepts a single plugin or a list of plugins, either of the named
// plugin type P or of its underlying func type F.
func pluginsOf[P any, F any](v any, convert func(F) P) ([]P, bool) {
	var out []P
	add := func(e any) bool {
		if isNilFunc(e) {
			return false
		}
		switch fn := e.(type) {
		case P:
			out = append(out, fn)
		case F:
			out = append(out, convert(fn))
		default:
			return false
		}
		return true
	}
	switch list := v.(type) {
	case []P:
		out = make([]P, 0, len(list))
		for _, p := range list {
			if !add(p) {
				return nil, false
			}
		}
	case []F:
		out = make([]P, 0, len(list))
		for _, f := range list {
			if !add(f) {
				return nil, false
			}
		}
	case []any:
		out = make([]P, 0, len(list))
		for _, e := range list {
			if !add(e) {
				return nil, false
			}
		}
	default:
		if !add(v) {
			return nil, false
		}
	}
	return out, true
}
