package interp

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

func (in *Interpreter) evalMacro(scope *Scope, e *ast.MacroExpr) (Value, error) {
	switch e.Name {
	case "println", "eprintln":
		msg, err := in.formatArgs(scope, e.Args)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(in.out, msg)
		return UnitValue{}, nil
	case "print", "eprint":
		msg, err := in.formatArgs(scope, e.Args)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(in.out, msg)
		return UnitValue{}, nil
	case "format":
		msg, err := in.formatArgs(scope, e.Args)
		if err != nil {
			return nil, err
		}
		return StringValue(msg), nil
	case "panic":
		msg, err := in.formatArgs(scope, e.Args)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("panic: %s", msg)
	case "vec", "smallvec":
		elems := make([]Value, len(e.Args))
		for i, arg := range e.Args {
			v, err := in.evalExpr(scope, arg)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ListValue{Elems: elems}, nil
	case "assert":
		if len(e.Args) == 0 {
			return nil, fmt.Errorf("assert! needs a condition")
		}
		cond, err := in.evalExpr(scope, e.Args[0])
		if err != nil {
			return nil, err
		}
		ok, err := truthy(cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("assertion failed")
		}
		return UnitValue{}, nil
	case "assert_eq", "assert_ne":
		if len(e.Args) < 2 {
			return nil, fmt.Errorf("%s! needs two values", e.Name)
		}
		left, err := in.evalExpr(scope, e.Args[0])
		if err != nil {
			return nil, err
		}
		right, err := in.evalExpr(scope, e.Args[1])
		if err != nil {
			return nil, err
		}
		equal := valueEquals(left, right)
		if e.Name == "assert_eq" && !equal {
			return nil, fmt.Errorf("assertion failed: %s != %s", left.Display(), right.Display())
		}
		if e.Name == "assert_ne" && equal {
			return nil, fmt.Errorf("assertion failed: both sides are %s", left.Display())
		}
		return UnitValue{}, nil
	}
	return nil, fmt.Errorf("unsupported macro `%s!`", e.Name)
}

// formatArgs renders a format-macro invocation: the first argument is
// the template, the rest fill positional {} placeholders. Named
// placeholders resolve against the caller's scope.
func (in *Interpreter) formatArgs(scope *Scope, args []ast.Expression) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	var template string
	if lit, ok := args[0].(*ast.StringLit); ok {
		template = lit.Value
	} else {
		v, err := in.evalExpr(scope, args[0])
		if err != nil {
			return "", err
		}
		s, ok := v.(StringValue)
		if !ok {
			return "", fmt.Errorf("format template must be a string")
		}
		template = string(s)
	}
	rest := make([]Value, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := in.evalExpr(scope, arg)
		if err != nil {
			return "", err
		}
		rest = append(rest, v)
	}
	return in.renderTemplate(scope, template, rest)
}

// renderTemplate substitutes {} with the next positional value and
// {ident} with a scope or self-field lookup. {{ and }} escape literal
// braces; a :spec suffix inside a placeholder is accepted and ignored.
func (in *Interpreter) renderTemplate(scope *Scope, template string, args []Value) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c == '}' {
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
			continue
		}
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			b.WriteByte('{')
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			b.WriteByte(c)
			continue
		}
		end += i
		inner := template[i+1 : end]
		if colon := strings.IndexByte(inner, ':'); colon >= 0 {
			inner = inner[:colon]
		}
		switch {
		case inner == "":
			if next >= len(args) {
				return "", fmt.Errorf("format string has more placeholders than arguments")
			}
			b.WriteString(args[next].Display())
			next++
		case isIdentName(inner):
			v, err := in.lookup(scope, inner)
			if err != nil {
				return "", err
			}
			b.WriteString(v.Display())
		default:
			// not an interpolation, keep the braces verbatim
			b.WriteString(template[i : end+1])
		}
		i = end
	}
	return b.String(), nil
}

func isIdentName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
