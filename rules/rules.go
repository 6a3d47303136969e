// Package rules compiles small expressions into state predicates and key
// functions, so a factory's identity rules can live in configuration instead
// of Go code.
//
// Every engine binds the state under the name "state":
//
//	expr: len(state) == 2 && state[0] >= 0
//	cel:  size(state) == 2 && state[0] >= 0
//	js:   Array.isArray(state) && state.length === 2
//
// Expressions are compiled once; each evaluation only binds the state.
package rules

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/on-the-ground/apifactory/keys"
)

// Engine names an expression language.
type Engine string

const (
	// EngineExpr evaluates github.com/expr-lang/expr expressions.
	EngineExpr Engine = "expr"
	// EngineCEL evaluates Common Expression Language expressions via cel-go.
	EngineCEL Engine = "cel"
	// EngineJS evaluates JavaScript expressions via goja.
	EngineJS Engine = "js"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineExpr

// StateVar is the variable name the state is bound to.
const StateVar = "state"

var (
	ErrUnknownEngine   = errors.New("rules: unknown engine")
	ErrEmptyExpression = errors.New("rules: expression must not be empty")
	ErrResultType      = errors.New("rules: unexpected result type")
)

// Program is a compiled expression.
type Program interface {
	// Eval runs the program with state bound to StateVar.
	Eval(state any) (any, error)
}

// ParseEngine converts a configured engine name, defaulting to DefaultEngine
// for the empty string.
func ParseEngine(name string) (Engine, error) {
	switch Engine(name) {
	case "":
		return DefaultEngine, nil
	case EngineExpr, EngineCEL, EngineJS:
		return Engine(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Compile compiles expression for engine.
func Compile(engine Engine, expression string) (Program, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	switch engine {
	case "", EngineExpr:
		return compileExpr(expression)
	case EngineCEL:
		return compileCEL(expression)
	case EngineJS:
		return compileJS(expression)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Predicate compiles a boolean expression into a state predicate. An
// evaluation error or a non-boolean result counts as false.
func Predicate[S any](engine Engine, expression string) (func(S) bool, error) {
	program, err := Compile(engine, expression)
	if err != nil {
		return nil, err
	}
	return func(state S) bool {
		out, err := program.Eval(state)
		if err != nil {
			return false
		}
		ok, isBool := out.(bool)
		return isBool && ok
	}, nil
}

// Key compiles an expression into a string key function. Scalars are
// rendered with fmt, lists are joined with keys.Join.
func Key[S any](engine Engine, expression string) (func(S) (string, error), error) {
	program, err := Compile(engine, expression)
	if err != nil {
		return nil, err
	}
	return func(state S) (string, error) {
		out, err := program.Eval(state)
		if err != nil {
			return "", err
		}
		return render(out)
	}, nil
}

func render(out any) (string, error) {
	switch v := out.(type) {
	case nil:
		return "", fmt.Errorf("%w: nil", ErrResultType)
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	switch reflect.ValueOf(out).Kind() {
	case reflect.Slice, reflect.Array:
		return keys.Join(out), nil
	case reflect.Map, reflect.Struct, reflect.Func, reflect.Chan, reflect.Pointer:
		return "", fmt.Errorf("%w: %T", ErrResultType, out)
	default:
		return fmt.Sprint(out), nil
	}
}
