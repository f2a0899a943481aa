package attrs

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rule is a compiled validity predicate over the string a user would type
// into a field. The harness does not enforce rules against the editor — the
// editor's own verdict is authoritative — but scenario scripts use rules to
// decide which verdict to expect, and descriptor sanity checks use them to
// keep the catalogue honest.
type Rule struct {
	Name   string
	Source string
	prog   *vm.Program
}

// ruleEnv is the expression environment: the candidate value plus numeric
// helpers. num returns 0 for unparseable input; guard with isNum.
func ruleEnv(value string) map[string]any {
	return map[string]any{
		"value": value,
		"num": func(s string) float64 {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0
			}
			return f
		},
		"isNum": func(s string) bool {
			_, err := strconv.ParseFloat(s, 64)
			return err == nil
		},
		"isInt": func(s string) bool {
			_, err := strconv.Atoi(s)
			return err == nil
		},
	}
}

// CompileRule compiles a named predicate expression.
func CompileRule(name, source string) (*Rule, error) {
	prog, err := expr.Compile(source, expr.Env(ruleEnv("")), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %q (%s): %w", name, source, err)
	}
	return &Rule{Name: name, Source: source, prog: prog}, nil
}

// MustCompileRule is CompileRule for static catalogue construction.
func MustCompileRule(name, source string) *Rule {
	r, err := CompileRule(name, source)
	if err != nil {
		panic(err)
	}
	return r
}

// Eval reports whether value satisfies the predicate.
func (r *Rule) Eval(value string) (bool, error) {
	out, err := expr.Run(r.prog, ruleEnv(value))
	if err != nil {
		return false, fmt.Errorf("evaluate rule %q on %q: %w", r.Name, value, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("rule %q returned %T, want bool", r.Name, out)
	}
	return ok, nil
}
