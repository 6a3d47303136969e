package rules

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

type celProgram struct {
	program    celgo.Program
	expression string
}

func compileCEL(expression string) (Program, error) {
	env, err := celgo.NewEnv(celgo.Variable(StateVar, celgo.DynType))
	if err != nil {
		return nil, fmt.Errorf("rules: cel env: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rules: cel compile %q: %w", expression, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rules: cel program %q: %w", expression, err)
	}
	return &celProgram{program: prg, expression: expression}, nil
}

func (p *celProgram) Eval(state any) (any, error) {
	out, _, err := p.program.Eval(map[string]any{StateVar: state})
	if err != nil {
		return nil, fmt.Errorf("rules: cel eval %q: %w", p.expression, err)
	}
	return out.Value(), nil
}
