package rules

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprProgram struct {
	program    *exprvm.Program
	expression string
}

func compileExpr(expression string) (Program, error) {
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("rules: expr compile %q: %w", expression, err)
	}
	return &exprProgram{program: program, expression: expression}, nil
}

func (p *exprProgram) Eval(state any) (any, error) {
	out, err := exprlang.Run(p.program, map[string]any{StateVar: state})
	if err != nil {
		return nil, fmt.Errorf("rules: expr eval %q: %w", p.expression, err)
	}
	return out, nil
}
