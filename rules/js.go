package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsProgram struct {
	program    *goja.Program
	expression string
}

func compileJS(expression string) (Program, error) {
	program, err := goja.Compile("", wrapExpression(expression), false)
	if err != nil {
		return nil, fmt.Errorf("rules: js compile %q: %w", expression, err)
	}
	return &jsProgram{program: program, expression: expression}, nil
}

// Eval runs on a fresh runtime; a goja.Runtime must not be shared.
func (p *jsProgram) Eval(state any) (any, error) {
	vm := goja.New()
	if err := vm.Set(StateVar, state); err != nil {
		return nil, fmt.Errorf("rules: js bind state: %w", err)
	}
	value, err := vm.RunProgram(p.program)
	if err != nil {
		return nil, fmt.Errorf("rules: js eval %q: %w", p.expression, err)
	}
	return value.Export(), nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}
