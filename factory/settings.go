package factory

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/on-the-ground/apifactory/object"
	"github.com/on-the-ground/apifactory/rules"
)

// Setting names accepted in Settings.
const (
	SettingParseState    = "parseState"
	SettingStateParsers  = "stateParsers"
	SettingIsState       = "isState"
	SettingGetStateKey   = "getStateKey"
	SettingStateKey      = "stateKey"
	SettingOnCreate      = "onCreate"
	SettingExposeState   = "exposeState"
	SettingRemovePrivate = "removePrivate"
	SettingRemoveStatic  = "removeStatic"
	SettingSynchronized  = "synchronized"
	SettingEngine        = "engine"
)

// Settings configures a factory by name. Values are Go funcs of the factory's
// types, booleans, or, for isState and getStateKey, expression strings.
//
// Settings can be passed to New directly, alongside plugins and options.
type Settings map[string]any

// LoadSettings decodes a YAML document into Settings and checks every entry.
//
//	exposeState: true
//	engine: cel
//	isState: size(state) == 2
//	getStateKey: string(state[0]) + "," + string(state[1])
func LoadSettings(data []byte) (Settings, error) {
	settings := Settings{}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptionType, err)
	}
	scratch := defaultConfig()
	if err := settings.apply(&scratch); err != nil {
		return nil, err
	}
	return settings, nil
}

// Option returns the settings as a single Option.
func (s Settings) Option() Option {
	return s.apply
}

func (s Settings) apply(c *config) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		errs = multierr.Append(errs, applySetting(c, name, s[name]))
	}
	return errs
}

func applySetting(c *config, name string, v any) error {
	switch name {
	case SettingParseState:
		if !isFunc(reflect.ValueOf(v)) {
			return wrongKind(name, v, "a func")
		}
		c.parseState = v
	case SettingStateParsers:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice || !IsPluginList(v) {
			return wrongKind(name, v, "a list of funcs")
		}
		for i := 0; i < rv.Len(); i++ {
			c.stateParsers = append(c.stateParsers, rv.Index(i).Interface())
		}
	case SettingIsState:
		if !isRule(v) {
			return wrongKind(name, v, "a func or an expression")
		}
		c.isState = v
	case SettingGetStateKey, SettingStateKey:
		if !isRule(v) {
			return wrongKind(name, v, "a func or an expression")
		}
		c.stateKey = v
	case SettingOnCreate:
		switch fn := v.(type) {
		case func(*object.Object) error:
			if fn == nil {
				return wrongKind(name, v, "a non-nil func")
			}
			c.onCreate = fn
		case func(*object.Object):
			if fn == nil {
				return wrongKind(name, v, "a non-nil func")
			}
			c.onCreate = func(instance *object.Object) error {
				fn(instance)
				return nil
			}
		default:
			return wrongKind(name, v, "func(*object.Object) error")
		}
	case SettingExposeState:
		return setBool(&c.exposeState, name, v)
	case SettingRemovePrivate:
		return setBool(&c.removePrivate, name, v)
	case SettingRemoveStatic:
		return setBool(&c.removeStatic, name, v)
	case SettingSynchronized:
		return setBool(&c.synchronized, name, v)
	case SettingEngine:
		s, ok := v.(string)
		if !ok {
			return wrongKind(name, v, "a string")
		}
		engine, err := rules.ParseEngine(s)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidOptionType, name, err)
		}
		c.engine = engine
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidOptionType, name)
	}
	return nil
}

func isRule(v any) bool {
	if s, ok := v.(string); ok {
		return s != ""
	}
	return isFunc(reflect.ValueOf(v))
}

func setBool(dst *bool, name string, v any) error {
	b, ok := v.(bool)
	if !ok {
		return wrongKind(name, v, "a bool")
	}
	*dst = b
	return nil
}

func wrongKind(name string, got any, want string) error {
	return fmt.Errorf("%w: %s: got %T, want %s", ErrInvalidOptionType, name, got, want)
}
