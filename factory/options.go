package factory

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/apifactory/object"
	"github.com/on-the-ground/apifactory/rules"
)

// StateMember is the member name under which WithExposeState attaches the
// state to each instance.
const StateMember = "state"

// Option configures a factory. Options are applied after core plugins, so a
// capability set by an option wins over the same capability set by a plugin.
type Option func(*config) error

type config struct {
	// typed against S and K when the factory is built
	parseState   any
	stateParsers []any
	isState      any
	stateKey     any

	onCreate      func(*object.Object) error
	exposeState   bool
	removePrivate bool
	removeStatic  bool
	synchronized  bool
	engine        rules.Engine
	logger        *zap.Logger
}

func defaultConfig() config {
	return config{
		removePrivate: true,
		removeStatic:  true,
		engine:        rules.DefaultEngine,
		logger:        zap.NewNop(),
	}
}

// WithParseState replaces the derivation of state from Create's arguments.
func WithParseState[S any](fn func(args ...any) (S, error)) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: %s is nil", ErrInvalidOptionType, SettingParseState)
		}
		c.parseState = fn
		return nil
	}
}

// WithStateParsers installs parsers tried in order before the current
// ParseState. The first one to succeed wins.
func WithStateParsers[S any](fns ...func(args ...any) (S, error)) Option {
	return func(c *config) error {
		for i, fn := range fns {
			if fn == nil {
				return fmt.Errorf("%w: %s[%d] is nil", ErrInvalidOptionType, SettingStateParsers, i)
			}
			c.stateParsers = append(c.stateParsers, fn)
		}
		return nil
	}
}

// WithIsState replaces the state predicate.
func WithIsState[S any](fn func(state S) bool) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: %s is nil", ErrInvalidOptionType, SettingIsState)
		}
		c.isState = fn
		return nil
	}
}

// WithIsStateRule replaces the state predicate with a compiled expression.
// See package rules for the syntax per engine.
func WithIsStateRule(expression string) Option {
	return func(c *config) error {
		c.isState = expression
		return nil
	}
}

// WithStateKey replaces the key derivation.
func WithStateKey[S any, K comparable](fn func(state S) (K, error)) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: %s is nil", ErrInvalidOptionType, SettingGetStateKey)
		}
		c.stateKey = fn
		return nil
	}
}

// WithStateKeyFunc is WithStateKey for derivations that cannot fail.
func WithStateKeyFunc[S any, K comparable](fn func(state S) K) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: %s is nil", ErrInvalidOptionType, SettingGetStateKey)
		}
		c.stateKey = fn
		return nil
	}
}

// WithStateKeyRule derives keys from an expression. The factory's key type
// must accept strings.
func WithStateKeyRule(expression string) Option {
	return func(c *config) error {
		c.stateKey = expression
		return nil
	}
}

// WithOnCreate sets the hook run once per newly built instance.
func WithOnCreate(fn func(instance *object.Object) error) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: %s is nil", ErrInvalidOptionType, SettingOnCreate)
		}
		c.onCreate = fn
		return nil
	}
}

// WithExposeState attaches the state to every instance under StateMember.
// Off by default.
func WithExposeState(expose bool) Option {
	return func(c *config) error {
		c.exposeState = expose
		return nil
	}
}

// WithRemovePrivate controls whether private members are stripped from
// instances. On by default.
func WithRemovePrivate(remove bool) Option {
	return func(c *config) error {
		c.removePrivate = remove
		return nil
	}
}

// WithRemoveStatic controls whether static-tagged members of the static
// table stay off instances. On by default; when off they are copied onto
// every instance that does not define the same name.
func WithRemoveStatic(remove bool) Option {
	return func(c *config) error {
		c.removeStatic = remove
		return nil
	}
}

// WithSynchronized serializes state resolution and construction, making
// Create safe for concurrent callers. Off by default.
func WithSynchronized(synchronized bool) Option {
	return func(c *config) error {
		c.synchronized = synchronized
		return nil
	}
}

// WithEngine selects the expression engine for rule options.
func WithEngine(engine rules.Engine) Option {
	return func(c *config) error {
		e, err := rules.ParseEngine(string(engine))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptionType, err)
		}
		c.engine = e
		return nil
	}
}

// WithLogger sets the logger. Factories log at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("%w: logger is nil", ErrInvalidOptionType)
		}
		c.logger = logger
		return nil
	}
}

// overrides types the configured capabilities against S and K and returns
// the core plugin that installs them.
func overrides[S any, K comparable](c *config) (CorePlugin[S, K], error) {
	var errs error

	var parse func(args ...any) (S, error)
	if c.parseState != nil {
		fn, ok := c.parseState.(func(...any) (S, error))
		if !ok {
			errs = multierr.Append(errs, wrongType[func(...any) (S, error)](SettingParseState, c.parseState))
		}
		parse = fn
	}

	parsers := make([]func(...any) (S, error), 0, len(c.stateParsers))
	for i, raw := range c.stateParsers {
		fn, ok := raw.(func(...any) (S, error))
		if !ok {
			errs = multierr.Append(errs, wrongType[func(...any) (S, error)](fmt.Sprintf("%s[%d]", SettingStateParsers, i), raw))
			continue
		}
		parsers = append(parsers, fn)
	}

	var isState func(S) bool
	switch v := c.isState.(type) {
	case nil:
	case func(S) bool:
		isState = v
	case string:
		fn, err := rules.Predicate[S](c.engine, v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidOptionType, SettingIsState, err))
		}
		isState = fn
	default:
		errs = multierr.Append(errs, wrongType[func(S) bool](SettingIsState, v))
	}

	var stateKey func(S) (K, error)
	switch v := c.stateKey.(type) {
	case nil:
	case func(S) (K, error):
		stateKey = v
	case func(S) K:
		stateKey = func(state S) (K, error) { return v(state), nil }
	case string:
		fn, err := ruleKey[S, K](c.engine, v)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		stateKey = fn
	default:
		errs = multierr.Append(errs, wrongType[func(S) (K, error)](SettingGetStateKey, v))
	}

	if errs != nil {
		return nil, errs
	}

	onCreate := c.onCreate
	return func(core *Core[S, K]) error {
		if parse != nil {
			core.ParseState = parse
		}
		if len(parsers) > 0 {
			core.ParseState = firstParsed(parsers, core.ParseState)
		}
		if isState != nil {
			core.IsState = isState
		}
		if stateKey != nil {
			core.StateKey = stateKey
		}
		if onCreate != nil {
			core.OnCreate = onCreate
		}
		return nil
	}, nil
}

func ruleKey[S any, K comparable](engine rules.Engine, expression string) (func(S) (K, error), error) {
	if _, ok := any("").(K); !ok {
		return nil, fmt.Errorf("%w: %s expression needs a string key type, have %v",
			ErrInvalidOptionType, SettingGetStateKey, reflect.TypeFor[K]())
	}
	key, err := rules.Key[S](engine, expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOptionType, SettingGetStateKey, err)
	}
	return func(state S) (K, error) {
		s, err := key(state)
		if err != nil {
			var zero K
			return zero, err
		}
		return any(s).(K), nil
	}, nil
}

func firstParsed[S any](parsers []func(...any) (S, error), fallback func(...any) (S, error)) func(...any) (S, error) {
	return func(args ...any) (S, error) {
		var errs error
		for _, parse := range parsers {
			state, err := parse(args...)
			if err == nil {
				return state, nil
			}
			errs = multierr.Append(errs, err)
		}
		state, err := fallback(args...)
		if err != nil {
			return state, multierr.Append(errs, err)
		}
		return state, nil
	}
}

func wrongType[Want any](name string, got any) error {
	return fmt.Errorf("%w: %s: got %T, want %v", ErrInvalidOptionType, name, got, reflect.TypeFor[Want]())
}
