package interp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

func (in *Interpreter) evalExpr(scope *Scope, expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return IntValue(e.Value), nil
	case *ast.FloatLit:
		return FloatValue(e.Value), nil
	case *ast.BoolLit:
		return BoolValue(e.Value), nil
	case *ast.StringLit:
		rendered, err := in.renderTemplate(scope, e.Value, nil)
		if err != nil {
			return nil, err
		}
		return StringValue(rendered), nil
	case *ast.Identifier:
		return in.lookup(scope, e.Name)
	case *ast.BinaryExpr:
		return in.evalBinary(scope, e)
	case *ast.UnaryExpr:
		return in.evalUnary(scope, e)
	case *ast.TernaryExpr:
		cond, err := in.evalExpr(scope, e.Condition)
		if err != nil {
			return nil, err
		}
		ok, err := truthy(cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return in.evalExpr(scope, e.Then)
		}
		return in.evalExpr(scope, e.Else)
	case *ast.CallExpr:
		return in.evalCall(scope, e)
	case *ast.MethodCallExpr:
		return in.evalMethodCall(scope, e)
	case *ast.FieldAccessExpr:
		return in.evalFieldAccess(scope, e)
	case *ast.StructLitExpr:
		return in.evalStructLit(scope, e)
	case *ast.RangeExpr:
		start, err := in.evalExpr(scope, e.Start)
		if err != nil {
			return nil, err
		}
		end, err := in.evalExpr(scope, e.End)
		if err != nil {
			return nil, err
		}
		s, sok := start.(IntValue)
		n, nok := end.(IntValue)
		if !sok || !nok {
			return nil, fmt.Errorf("range bounds must be integers")
		}
		return RangeValue{Start: int64(s), End: int64(n), Inclusive: e.Inclusive}, nil
	case *ast.ClosureExpr:
		return &ClosureValue{Params: e.Params, Body: e.Body, Env: scope}, nil
	case *ast.IndexExpr:
		return in.evalIndex(scope, e)
	case *ast.TupleExpr:
		elems := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := in.evalExpr(scope, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &TupleValue{Elems: elems}, nil
	case *ast.MacroExpr:
		return in.evalMacro(scope, e)
	case *ast.TryExpr:
		return in.evalTry(scope, e)
	case *ast.AwaitExpr:
		// single-threaded evaluation: awaited expressions resolve inline
		return in.evalExpr(scope, e.Expr)
	case *ast.ChannelSendExpr, *ast.ChannelRecvExpr:
		return nil, fmt.Errorf("channels require the compiled target")
	case *ast.BlockExpr:
		fl, last, err := in.execBlock(NewScope(scope), e.Block)
		if err != nil {
			return nil, err
		}
		switch fl.sig {
		case sigReturn:
			return nil, returnUnwind{value: fl.value}
		case sigBreak, sigLoopContinue:
			return nil, fmt.Errorf("break or continue outside of a loop")
		}
		if last == nil {
			return UnitValue{}, nil
		}
		return last, nil
	case *ast.CastExpr:
		return in.evalCast(scope, e)
	case *ast.MatchExpr:
		return in.evalMatch(scope, e)
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

// lookup resolves an identifier: lexical scope first, then an implicit
// field of self, then the payload-free Option constant.
func (in *Interpreter) lookup(scope *Scope, name string) (Value, error) {
	if v, ok := scope.Get(name); ok {
		return v, nil
	}
	if self, ok := scope.Get("self"); ok {
		if sv, isStruct := self.(*StructValue); isStruct {
			if v, present := sv.Fields[name]; present {
				return v, nil
			}
		}
	}
	if name == "None" {
		return &EnumValue{Enum: "Option", Variant: "None"}, nil
	}
	return nil, fmt.Errorf("undefined binding `%s`", name)
}

func (in *Interpreter) evalBinary(scope *Scope, e *ast.BinaryExpr) (Value, error) {
	// && and || short-circuit
	if e.Op == ast.And || e.Op == ast.Or {
		left, err := in.evalExpr(scope, e.Left)
		if err != nil {
			return nil, err
		}
		l, err := truthy(left)
		if err != nil {
			return nil, err
		}
		if e.Op == ast.And && !l {
			return BoolValue(false), nil
		}
		if e.Op == ast.Or && l {
			return BoolValue(true), nil
		}
		right, err := in.evalExpr(scope, e.Right)
		if err != nil {
			return nil, err
		}
		r, err := truthy(right)
		if err != nil {
			return nil, err
		}
		return BoolValue(r), nil
	}
	left, err := in.evalExpr(scope, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(scope, e.Right)
	if err != nil {
		return nil, err
	}
	return binaryOp(e.Op, left, right)
}

func binaryOp(op ast.BinaryOp, left, right Value) (Value, error) {
	if l, ok := left.(IntValue); ok {
		if r, ok := right.(IntValue); ok {
			return intBinary(op, int64(l), int64(r))
		}
	}
	if l, ok := left.(FloatValue); ok {
		if r, ok := right.(FloatValue); ok {
			return floatBinary(op, float64(l), float64(r))
		}
	}
	if l, ok := left.(StringValue); ok {
		if r, ok := right.(StringValue); ok {
			return stringBinary(op, string(l), string(r))
		}
	}
	switch op {
	case ast.Eq:
		return BoolValue(valueEquals(left, right)), nil
	case ast.Ne:
		return BoolValue(!valueEquals(left, right)), nil
	}
	return nil, fmt.Errorf("operator %s is not defined for %s and %s", op, left.Display(), right.Display())
}

func intBinary(op ast.BinaryOp, l, r int64) (Value, error) {
	switch op {
	case ast.Add:
		return IntValue(l + r), nil
	case ast.Sub:
		return IntValue(l - r), nil
	case ast.Mul:
		return IntValue(l * r), nil
	case ast.Div:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return IntValue(l / r), nil
	case ast.Mod:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return IntValue(l % r), nil
	case ast.BitAnd:
		return IntValue(l & r), nil
	case ast.BitOr:
		return IntValue(l | r), nil
	case ast.BitXor:
		return IntValue(l ^ r), nil
	case ast.Shl:
		return IntValue(l << uint64(r)), nil
	case ast.Shr:
		return IntValue(l >> uint64(r)), nil
	case ast.Eq:
		return BoolValue(l == r), nil
	case ast.Ne:
		return BoolValue(l != r), nil
	case ast.Lt:
		return BoolValue(l < r), nil
	case ast.Le:
		return BoolValue(l <= r), nil
	case ast.Gt:
		return BoolValue(l > r), nil
	case ast.Ge:
		return BoolValue(l >= r), nil
	}
	return nil, fmt.Errorf("operator %s is not defined for integers", op)
}

func floatBinary(op ast.BinaryOp, l, r float64) (Value, error) {
	switch op {
	case ast.Add:
		return FloatValue(l + r), nil
	case ast.Sub:
		return FloatValue(l - r), nil
	case ast.Mul:
		return FloatValue(l * r), nil
	case ast.Div:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return FloatValue(l / r), nil
	case ast.Eq:
		return BoolValue(l == r), nil
	case ast.Ne:
		return BoolValue(l != r), nil
	case ast.Lt:
		return BoolValue(l < r), nil
	case ast.Le:
		return BoolValue(l <= r), nil
	case ast.Gt:
		return BoolValue(l > r), nil
	case ast.Ge:
		return BoolValue(l >= r), nil
	}
	return nil, fmt.Errorf("operator %s is not defined for floats", op)
}

func stringBinary(op ast.BinaryOp, l, r string) (Value, error) {
	switch op {
	case ast.Add:
		return StringValue(l + r), nil
	case ast.Eq:
		return BoolValue(l == r), nil
	case ast.Ne:
		return BoolValue(l != r), nil
	case ast.Lt:
		return BoolValue(l < r), nil
	case ast.Le:
		return BoolValue(l <= r), nil
	case ast.Gt:
		return BoolValue(l > r), nil
	case ast.Ge:
		return BoolValue(l >= r), nil
	}
	return nil, fmt.Errorf("operator %s is not defined for strings", op)
}

func (in *Interpreter) evalUnary(scope *Scope, e *ast.UnaryExpr) (Value, error) {
	operand, err := in.evalExpr(scope, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.Neg:
		switch v := operand.(type) {
		case IntValue:
			return IntValue(-v), nil
		case FloatValue:
			return FloatValue(-v), nil
		}
		return nil, fmt.Errorf("cannot negate %s", operand.Display())
	case ast.Not:
		b, err := truthy(operand)
		if err != nil {
			return nil, err
		}
		return BoolValue(!b), nil
	case ast.Ref, ast.MutRef, ast.Deref:
		// references are a compile-time concern; values pass through
		return operand, nil
	}
	return nil, fmt.Errorf("unsupported unary operator")
}

func (in *Interpreter) evalCall(scope *Scope, e *ast.CallExpr) (Value, error) {
	args, err := in.evalArgs(scope, e.Args)
	if err != nil {
		return nil, err
	}
	switch e.Function {
	case "Some":
		if len(args) != 1 {
			return nil, fmt.Errorf("Some takes one value")
		}
		return &EnumValue{Enum: "Option", Variant: "Some", Payload: args}, nil
	case "Ok":
		return &EnumValue{Enum: "Result", Variant: "Ok", Payload: args}, nil
	case "Err":
		return &EnumValue{Enum: "Result", Variant: "Err", Payload: args}, nil
	}
	// a closure binding shadows any function of the same name
	if v, ok := scope.Get(e.Function); ok {
		if cl, isClosure := v.(*ClosureValue); isClosure {
			return in.callClosure(cl, args)
		}
	}
	if fn, ok := in.funcs[e.Function]; ok {
		return in.callFunction(fn, args, nil)
	}
	return nil, fmt.Errorf("undefined function `%s`", e.Function)
}

func (in *Interpreter) callClosure(cl *ClosureValue, args []Value) (Value, error) {
	if len(args) != len(cl.Params) {
		return nil, fmt.Errorf("closure expects %d arguments, got %d", len(cl.Params), len(args))
	}
	scope := NewScope(cl.Env)
	for i, p := range cl.Params {
		scope.Define(p, args[i])
	}
	v, err := in.evalExpr(scope, cl.Body)
	if err != nil {
		var unwind returnUnwind
		if errors.As(err, &unwind) {
			return unwind.value, nil
		}
		return nil, err
	}
	return v, nil
}

func (in *Interpreter) evalMethodCall(scope *Scope, e *ast.MethodCallExpr) (Value, error) {
	// bare turbofish: f::<T>(args)
	if e.Method == "" {
		if id, ok := e.Object.(*ast.Identifier); ok {
			return in.evalCall(scope, &ast.CallExpr{Function: id.Name, Args: e.Args, Line: e.Line, Column: e.Column})
		}
		return nil, fmt.Errorf("unsupported turbofish call")
	}

	if id, ok := e.Object.(*ast.Identifier); ok {
		// enum variant construction
		if variants, isEnum := in.enums[id.Name]; isEnum {
			if !variants[e.Method] {
				return nil, fmt.Errorf("enum %s has no variant %s", id.Name, e.Method)
			}
			payload, err := in.evalArgs(scope, e.Args)
			if err != nil {
				return nil, err
			}
			return &EnumValue{Enum: id.Name, Variant: e.Method, Payload: payload}, nil
		}
		if _, bound := scope.Get(id.Name); !bound && isTypeName(id.Name) {
			// a user type's associated function, then the builtin ones
			if methods := in.methods[id.Name]; methods != nil {
				if fn, present := methods[e.Method]; present && fn.SelfParam() == nil {
					args, err := in.evalArgs(scope, e.Args)
					if err != nil {
						return nil, err
					}
					return in.callFunction(fn, args, nil)
				}
			}
			return in.associatedCall(scope, id.Name, e.Method, e.Args)
		}
	}

	recv, err := in.evalExpr(scope, e.Object)
	if err != nil {
		return nil, err
	}
	args, err := in.evalArgs(scope, e.Args)
	if err != nil {
		return nil, err
	}

	if sv, ok := recv.(*StructValue); ok {
		if methods := in.methods[sv.Name]; methods != nil {
			if fn, present := methods[e.Method]; present {
				return in.callFunction(fn, args, sv)
			}
		}
	}
	if ev, ok := recv.(*EnumValue); ok {
		if methods := in.methods[ev.Enum]; methods != nil {
			if fn, present := methods[e.Method]; present {
				return in.callFunction(fn, args, ev)
			}
		}
	}

	result, updated, err := in.builtinMethod(recv, e.Method, e.TypeArgs, args)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		if storeErr := in.storeInto(scope, e.Object, updated); storeErr != nil {
			return nil, storeErr
		}
	}
	return result, nil
}

func isTypeName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func (in *Interpreter) associatedCall(scope *Scope, typeName, method string, argExprs []*ast.Argument) (Value, error) {
	args, err := in.evalArgs(scope, argExprs)
	if err != nil {
		return nil, err
	}
	switch typeName {
	case "Vec":
		switch method {
		case "new":
			return &ListValue{}, nil
		case "with_capacity":
			return &ListValue{}, nil
		}
	case "String":
		switch method {
		case "new":
			return StringValue(""), nil
		case "from":
			if len(args) == 1 {
				return StringValue(args[0].Display()), nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported associated function %s.%s", typeName, method)
}

// builtinMethod handles the methods the compiled target gets from the
// Rust standard library. The second return is a replacement receiver for
// value types that mutate, nil when the receiver is unchanged.
func (in *Interpreter) builtinMethod(recv Value, method string, typeArgs []*ast.Type, args []Value) (Value, Value, error) {
	switch method {
	case "clone":
		return cloneValue(recv), nil, nil
	case "to_string":
		return StringValue(recv.Display()), nil, nil
	}

	switch v := recv.(type) {
	case *ListValue:
		return in.listMethod(v, method, args)
	case StringValue:
		return in.stringMethod(v, method, typeArgs, args)
	case IntValue:
		switch method {
		case "abs":
			if v < 0 {
				return -v, nil, nil
			}
			return v, nil, nil
		case "pow":
			if n, ok := firstInt(args); ok {
				result := IntValue(1)
				for i := int64(0); i < n; i++ {
					result *= v
				}
				return result, nil, nil
			}
		}
	case FloatValue:
		switch method {
		case "abs":
			if v < 0 {
				return -v, nil, nil
			}
			return v, nil, nil
		case "floor":
			return FloatValue(math.Floor(float64(v))), nil, nil
		case "sqrt":
			return FloatValue(math.Sqrt(float64(v))), nil, nil
		}
	case *EnumValue:
		switch method {
		case "unwrap", "expect":
			switch v.Variant {
			case "Some", "Ok":
				return payloadOrUnit(v), nil, nil
			case "None":
				return nil, nil, fmt.Errorf("called unwrap on None")
			case "Err":
				return nil, nil, fmt.Errorf("called unwrap on Err(%s)", payloadOrUnit(v).Display())
			}
		case "is_some":
			return BoolValue(v.Variant == "Some"), nil, nil
		case "is_none":
			return BoolValue(v.Variant == "None"), nil, nil
		case "is_ok":
			return BoolValue(v.Variant == "Ok"), nil, nil
		case "is_err":
			return BoolValue(v.Variant == "Err"), nil, nil
		case "unwrap_or":
			if v.Variant == "Some" || v.Variant == "Ok" {
				return payloadOrUnit(v), nil, nil
			}
			if len(args) == 1 {
				return args[0], nil, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("unsupported method `%s` on %s", method, recv.Display())
}

func payloadOrUnit(v *EnumValue) Value {
	if len(v.Payload) > 0 {
		return v.Payload[0]
	}
	return UnitValue{}
}

func firstInt(args []Value) (int64, bool) {
	if len(args) == 1 {
		if n, ok := args[0].(IntValue); ok {
			return int64(n), true
		}
	}
	return 0, false
}

func (in *Interpreter) listMethod(list *ListValue, method string, args []Value) (Value, Value, error) {
	switch method {
	case "len":
		return IntValue(len(list.Elems)), nil, nil
	case "is_empty":
		return BoolValue(len(list.Elems) == 0), nil, nil
	case "push":
		list.Elems = append(list.Elems, args...)
		return UnitValue{}, nil, nil
	case "pop":
		if len(list.Elems) == 0 {
			return &EnumValue{Enum: "Option", Variant: "None"}, nil, nil
		}
		last := list.Elems[len(list.Elems)-1]
		list.Elems = list.Elems[:len(list.Elems)-1]
		return &EnumValue{Enum: "Option", Variant: "Some", Payload: []Value{last}}, nil, nil
	case "clear":
		list.Elems = nil
		return UnitValue{}, nil, nil
	case "insert":
		if len(args) == 2 {
			if i, ok := args[0].(IntValue); ok && int(i) >= 0 && int(i) <= len(list.Elems) {
				list.Elems = append(list.Elems, nil)
				copy(list.Elems[i+1:], list.Elems[i:])
				list.Elems[i] = args[1]
				return UnitValue{}, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("insert index out of bounds")
	case "remove":
		if i, ok := firstInt(args); ok && i >= 0 && int(i) < len(list.Elems) {
			removed := list.Elems[i]
			list.Elems = append(list.Elems[:i], list.Elems[i+1:]...)
			return removed, nil, nil
		}
		return nil, nil, fmt.Errorf("remove index out of bounds")
	case "contains":
		if len(args) == 1 {
			for _, e := range list.Elems {
				if valueEquals(e, args[0]) {
					return BoolValue(true), nil, nil
				}
			}
			return BoolValue(false), nil, nil
		}
	case "join":
		if len(args) == 1 {
			if sep, ok := args[0].(StringValue); ok {
				parts := make([]string, len(list.Elems))
				for i, e := range list.Elems {
					parts[i] = e.Display()
				}
				return StringValue(strings.Join(parts, string(sep))), nil, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("unsupported method `%s` on a list", method)
}

func (in *Interpreter) stringMethod(s StringValue, method string, typeArgs []*ast.Type, args []Value) (Value, Value, error) {
	str := string(s)
	switch method {
	case "len":
		return IntValue(len(str)), nil, nil
	case "is_empty":
		return BoolValue(str == ""), nil, nil
	case "trim":
		return StringValue(strings.TrimSpace(str)), nil, nil
	case "to_uppercase":
		return StringValue(strings.ToUpper(str)), nil, nil
	case "to_lowercase":
		return StringValue(strings.ToLower(str)), nil, nil
	case "contains":
		if sub, ok := firstString(args); ok {
			return BoolValue(strings.Contains(str, sub)), nil, nil
		}
	case "starts_with":
		if sub, ok := firstString(args); ok {
			return BoolValue(strings.HasPrefix(str, sub)), nil, nil
		}
	case "ends_with":
		if sub, ok := firstString(args); ok {
			return BoolValue(strings.HasSuffix(str, sub)), nil, nil
		}
	case "replace":
		if len(args) == 2 {
			from, fok := args[0].(StringValue)
			to, tok := args[1].(StringValue)
			if fok && tok {
				return StringValue(strings.ReplaceAll(str, string(from), string(to))), nil, nil
			}
		}
	case "split":
		if sep, ok := firstString(args); ok {
			parts := strings.Split(str, sep)
			elems := make([]Value, len(parts))
			for i, p := range parts {
				elems[i] = StringValue(p)
			}
			return &ListValue{Elems: elems}, nil, nil
		}
	case "chars":
		var elems []Value
		for _, r := range str {
			elems = append(elems, StringValue(string(r)))
		}
		return &ListValue{Elems: elems}, nil, nil
	case "push_str":
		if add, ok := firstString(args); ok {
			updated := StringValue(str + add)
			return UnitValue{}, updated, nil
		}
	case "parse":
		if len(typeArgs) == 1 && typeArgs[0].Kind == ast.TypeFloat {
			f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("cannot parse %q as a float", str)
			}
			return FloatValue(f), nil, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot parse %q as an integer", str)
		}
		return IntValue(n), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported method `%s` on a string", method)
}

func firstString(args []Value) (string, bool) {
	if len(args) == 1 {
		if s, ok := args[0].(StringValue); ok {
			return string(s), true
		}
	}
	return "", false
}

func (in *Interpreter) evalFieldAccess(scope *Scope, e *ast.FieldAccessExpr) (Value, error) {
	if id, ok := e.Object.(*ast.Identifier); ok {
		if variants, isEnum := in.enums[id.Name]; isEnum {
			if !variants[e.Field] {
				return nil, fmt.Errorf("enum %s has no variant %s", id.Name, e.Field)
			}
			return &EnumValue{Enum: id.Name, Variant: e.Field}, nil
		}
	}
	obj, err := in.evalExpr(scope, e.Object)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case *StructValue:
		if f, present := v.Fields[e.Field]; present {
			return f, nil
		}
		return nil, fmt.Errorf("%s has no field `%s`", v.Name, e.Field)
	case *TupleValue:
		if i, err := strconv.Atoi(e.Field); err == nil && i >= 0 && i < len(v.Elems) {
			return v.Elems[i], nil
		}
		return nil, fmt.Errorf("tuple index `%s` out of bounds", e.Field)
	}
	return nil, fmt.Errorf("cannot access field `%s` on %s", e.Field, obj.Display())
}

func (in *Interpreter) evalStructLit(scope *Scope, e *ast.StructLitExpr) (Value, error) {
	fields := make(map[string]Value)
	if e.Spread != nil {
		base, err := in.evalExpr(scope, e.Spread)
		if err != nil {
			return nil, err
		}
		sv, ok := base.(*StructValue)
		if !ok {
			return nil, fmt.Errorf("struct spread source must be a struct")
		}
		for name, v := range sv.Fields {
			fields[name] = cloneValue(v)
		}
	}
	for _, init := range e.Fields {
		var v Value
		var err error
		if init.Value != nil {
			v, err = in.evalExpr(scope, init.Value)
		} else {
			v, err = in.lookup(scope, init.Name)
		}
		if err != nil {
			return nil, err
		}
		fields[init.Name] = v
	}
	return &StructValue{Name: e.Name, Fields: fields}, nil
}

func (in *Interpreter) evalIndex(scope *Scope, e *ast.IndexExpr) (Value, error) {
	obj, err := in.evalExpr(scope, e.Object)
	if err != nil {
		return nil, err
	}
	idx, err := in.evalExpr(scope, e.Index)
	if err != nil {
		return nil, err
	}
	i, ok := idx.(IntValue)
	if !ok {
		return nil, fmt.Errorf("index must be an integer, got %s", idx.Display())
	}
	switch v := obj.(type) {
	case *ListValue:
		if int(i) < 0 || int(i) >= len(v.Elems) {
			return nil, fmt.Errorf("index %d out of bounds for length %d", i, len(v.Elems))
		}
		return v.Elems[i], nil
	case StringValue:
		if int(i) < 0 || int(i) >= len(v) {
			return nil, fmt.Errorf("index %d out of bounds for length %d", i, len(v))
		}
		return StringValue(v[i : i+1]), nil
	}
	return nil, fmt.Errorf("cannot index into %s", obj.Display())
}

func (in *Interpreter) evalCast(scope *Scope, e *ast.CastExpr) (Value, error) {
	v, err := in.evalExpr(scope, e.Expr)
	if err != nil {
		return nil, err
	}
	if e.Type == nil {
		return v, nil
	}
	switch e.Type.Kind {
	case ast.TypeFloat:
		if n, ok := v.(IntValue); ok {
			return FloatValue(float64(n)), nil
		}
	case ast.TypeInt, ast.TypeInt32, ast.TypeUint:
		if f, ok := v.(FloatValue); ok {
			return IntValue(int64(f)), nil
		}
	case ast.TypeString:
		return StringValue(v.Display()), nil
	}
	return v, nil
}

func (in *Interpreter) evalMatch(scope *Scope, e *ast.MatchExpr) (Value, error) {
	scrutinee, err := in.evalExpr(scope, e.Scrutinee)
	if err != nil {
		return nil, err
	}
	for _, arm := range e.Arms {
		armScope := NewScope(scope)
		matched, err := in.matchPattern(armScope, arm.Pattern, scrutinee)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		if arm.Guard != nil {
			g, err := in.evalExpr(armScope, arm.Guard)
			if err != nil {
				return nil, err
			}
			pass, err := truthy(g)
			if err != nil {
				return nil, err
			}
			if !pass {
				continue
			}
		}
		return in.evalExpr(armScope, arm.Body)
	}
	return nil, fmt.Errorf("no match arm covered %s", scrutinee.Display())
}

func (in *Interpreter) matchPattern(scope *Scope, p *ast.Pattern, v Value) (bool, error) {
	switch p.Kind {
	case ast.WildcardPattern:
		return true, nil
	case ast.IdentPattern:
		scope.Define(p.Name, v)
		return true, nil
	case ast.LiteralPattern:
		lit, err := in.evalExpr(scope, p.Literal)
		if err != nil {
			return false, err
		}
		return valueEquals(lit, v), nil
	case ast.VariantPattern:
		ev, ok := v.(*EnumValue)
		if !ok {
			return false, nil
		}
		enum, variant := splitVariantPath(p.Name)
		if enum != "" && enum != ev.Enum {
			return false, nil
		}
		if variant != ev.Variant {
			return false, nil
		}
		if p.Binding != "" {
			scope.Define(p.Binding, payloadOrUnit(ev))
		}
		for i, elem := range p.Elements {
			if i >= len(ev.Payload) {
				return false, nil
			}
			matched, err := in.matchPattern(scope, elem, ev.Payload[i])
			if err != nil || !matched {
				return matched, err
			}
		}
		return true, nil
	case ast.TuplePattern:
		tv, ok := v.(*TupleValue)
		if !ok || len(tv.Elems) != len(p.Elements) {
			return false, nil
		}
		for i, elem := range p.Elements {
			matched, err := in.matchPattern(scope, elem, tv.Elems[i])
			if err != nil || !matched {
				return matched, err
			}
		}
		return true, nil
	case ast.OrPattern:
		for _, alt := range p.Elements {
			matched, err := in.matchPattern(scope, alt, v)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("unsupported pattern")
}

// splitVariantPath splits "Shape.Circle" into enum and variant; a bare
// name like "Some" has no enum qualifier.
func splitVariantPath(name string) (enum, variant string) {
	name = strings.ReplaceAll(name, "::", ".")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (in *Interpreter) evalTry(scope *Scope, e *ast.TryExpr) (Value, error) {
	v, err := in.evalExpr(scope, e.Expr)
	if err != nil {
		return nil, err
	}
	if ev, ok := v.(*EnumValue); ok {
		switch ev.Variant {
		case "Some", "Ok":
			return payloadOrUnit(ev), nil
		case "None", "Err":
			return nil, returnUnwind{value: ev}
		}
	}
	return v, nil
}

func (in *Interpreter) evalArgs(scope *Scope, args []*ast.Argument) ([]Value, error) {
	out := make([]Value, len(args))
	for i, a := range args {
		v, err := in.evalExpr(scope, a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
