// Package interp is a tree-walking evaluator over the AST, sharing the
// parser with the compiler. Its semantics are the normative reference
// when the generated code would differ. Control flow is modeled as a
// signal returned from each statement; self-mutation in methods reaches
// the caller through shared struct identity.
package interp

import (
	"errors"
	"fmt"
	"io"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// signal tells the enclosing construct how a statement finished.
type signal int

const (
	sigNext signal = iota // fall through to the next statement
	sigReturn
	sigBreak
	sigLoopContinue
)

// flow pairs a signal with the value a return carries.
type flow struct {
	sig   signal
	value Value
}

var flowNext = flow{sig: sigNext}

// returnUnwind lets the ? operator unwind out of expression position.
type returnUnwind struct {
	value Value
}

func (returnUnwind) Error() string { return "early return" }

// Interpreter evaluates a parsed program.
type Interpreter struct {
	funcs   map[string]*ast.FunctionDecl
	methods map[string]map[string]*ast.FunctionDecl
	enums   map[string]map[string]bool
	globals *Scope
	out     io.Writer

	globalsReady bool
	globalItems  []ast.Item
	defers       [][]deferredCall
}

type deferredCall struct {
	expr  ast.Expression
	scope *Scope
}

// New indexes the program's items. Output from println! and friends goes
// to out.
func New(prog *ast.Program, out io.Writer) *Interpreter {
	in := &Interpreter{
		funcs:   make(map[string]*ast.FunctionDecl),
		methods: make(map[string]map[string]*ast.FunctionDecl),
		enums:   make(map[string]map[string]bool),
		globals: NewScope(nil),
		out:     out,
	}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			in.funcs[it.Name] = it
		case *ast.ImplBlock:
			if in.methods[it.TypeName] == nil {
				in.methods[it.TypeName] = make(map[string]*ast.FunctionDecl)
			}
			for _, m := range it.Methods {
				in.methods[it.TypeName][m.Name] = m
			}
		case *ast.EnumDecl:
			variants := make(map[string]bool, len(it.Variants))
			for _, v := range it.Variants {
				variants[v.Name] = true
			}
			in.enums[it.Name] = variants
		case *ast.ConstDecl, *ast.StaticDecl:
			in.globalItems = append(in.globalItems, it)
		}
	}
	return in
}

// Run executes main.
func (in *Interpreter) Run() (Value, error) {
	return in.Call("main", nil)
}

// Call invokes a top-level function by name.
func (in *Interpreter) Call(name string, args []Value) (Value, error) {
	if err := in.initGlobals(); err != nil {
		return nil, err
	}
	fn, ok := in.funcs[name]
	if !ok {
		return nil, fmt.Errorf("undefined function `%s`", name)
	}
	return in.callFunction(fn, args, nil)
}

func (in *Interpreter) initGlobals() error {
	if in.globalsReady {
		return nil
	}
	in.globalsReady = true
	for _, item := range in.globalItems {
		switch it := item.(type) {
		case *ast.ConstDecl:
			v, err := in.evalExpr(in.globals, it.Value)
			if err != nil {
				return err
			}
			in.globals.Define(it.Name, v)
		case *ast.StaticDecl:
			v, err := in.evalExpr(in.globals, it.Value)
			if err != nil {
				return err
			}
			in.globals.Define(it.Name, v)
		}
	}
	return nil
}

// callFunction pushes a scope, binds parameters and runs the body. The
// body's trailing expression is the return value when no return fires.
// Deferred expressions run afterwards in reverse order.
func (in *Interpreter) callFunction(fn *ast.FunctionDecl, args []Value, self Value) (Value, error) {
	scope := NewScope(in.globals)
	if self != nil {
		scope.Define("self", self)
	}
	params := fn.Params
	if len(params) > 0 && params[0].Name == "self" {
		params = params[1:]
	}
	if len(args) != len(params) {
		return nil, fmt.Errorf("`%s` expects %d arguments, got %d", fn.Name, len(params), len(args))
	}
	for i, p := range params {
		scope.Define(p.Name, args[i])
	}

	in.defers = append(in.defers, nil)
	defer in.runDeferred()

	if fn.Body == nil {
		return UnitValue{}, nil
	}
	fl, last, err := in.execBlock(scope, fn.Body)
	if err != nil {
		var unwind returnUnwind
		if errors.As(err, &unwind) {
			return unwind.value, nil
		}
		return nil, err
	}
	if fl.sig == sigReturn {
		return fl.value, nil
	}
	if last == nil {
		return UnitValue{}, nil
	}
	return last, nil
}

func (in *Interpreter) runDeferred() {
	frame := in.defers[len(in.defers)-1]
	in.defers = in.defers[:len(in.defers)-1]
	for i := len(frame) - 1; i >= 0; i-- {
		in.evalExpr(frame[i].scope, frame[i].expr)
	}
}

// execBlock runs the statements of a block and reports the control-flow
// signal plus the value of a trailing expression statement.
func (in *Interpreter) execBlock(scope *Scope, block *ast.Block) (flow, Value, error) {
	var last Value
	for i, stmt := range block.Statements {
		fl, v, err := in.execStmt(scope, stmt)
		if err != nil {
			return flowNext, nil, err
		}
		if fl.sig != sigNext {
			return fl, nil, nil
		}
		if i == len(block.Statements)-1 {
			last = v
		}
	}
	return flowNext, last, nil
}

func (in *Interpreter) execStmt(scope *Scope, stmt ast.Statement) (flow, Value, error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v, err := in.evalExpr(scope, s.Value)
		if err != nil {
			return flowNext, nil, err
		}
		scope.Define(s.Name, v)
		return flowNext, nil, nil
	case *ast.ConstStmt:
		v, err := in.evalExpr(scope, s.Value)
		if err != nil {
			return flowNext, nil, err
		}
		scope.Define(s.Name, v)
		return flowNext, nil, nil
	case *ast.StaticStmt:
		v, err := in.evalExpr(scope, s.Value)
		if err != nil {
			return flowNext, nil, err
		}
		scope.Define(s.Name, v)
		return flowNext, nil, nil
	case *ast.AssignStmt:
		return flowNext, nil, in.execAssign(scope, s)
	case *ast.ReturnStmt:
		if s.Value == nil {
			return flow{sig: sigReturn, value: UnitValue{}}, nil, nil
		}
		v, err := in.evalExpr(scope, s.Value)
		if err != nil {
			return flowNext, nil, err
		}
		return flow{sig: sigReturn, value: v}, nil, nil
	case *ast.ExprStmt:
		v, err := in.evalExpr(scope, s.Expr)
		return flowNext, v, err
	case *ast.IfStmt:
		return in.execIf(scope, s)
	case *ast.ForStmt:
		return in.execFor(scope, s)
	case *ast.WhileStmt:
		for {
			cond, err := in.evalExpr(scope, s.Condition)
			if err != nil {
				return flowNext, nil, err
			}
			ok, err := truthy(cond)
			if err != nil {
				return flowNext, nil, err
			}
			if !ok {
				return flowNext, nil, nil
			}
			fl, _, err := in.execBlock(NewScope(scope), s.Body)
			if err != nil {
				return flowNext, nil, err
			}
			if fl.sig == sigBreak {
				return flowNext, nil, nil
			}
			if fl.sig == sigReturn {
				return fl, nil, nil
			}
		}
	case *ast.LoopStmt:
		for {
			fl, _, err := in.execBlock(NewScope(scope), s.Body)
			if err != nil {
				return flowNext, nil, err
			}
			if fl.sig == sigBreak {
				return flowNext, nil, nil
			}
			if fl.sig == sigReturn {
				return fl, nil, nil
			}
		}
	case *ast.GoStmt:
		// the interpreter is single-threaded; spawned blocks run inline
		// so output stays deterministic
		fl, _, err := in.execBlock(NewScope(scope), s.Body)
		if err != nil {
			return flowNext, nil, err
		}
		if fl.sig == sigReturn {
			return fl, nil, nil
		}
		return flowNext, nil, nil
	case *ast.DeferStmt:
		top := len(in.defers) - 1
		in.defers[top] = append(in.defers[top], deferredCall{expr: s.Expr, scope: scope})
		return flowNext, nil, nil
	case *ast.BreakStmt:
		return flow{sig: sigBreak}, nil, nil
	case *ast.ContinueStmt:
		return flow{sig: sigLoopContinue}, nil, nil
	case *ast.Block:
		fl, v, err := in.execBlock(NewScope(scope), s)
		return fl, v, err
	default:
		return flowNext, nil, fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (in *Interpreter) execIf(scope *Scope, s *ast.IfStmt) (flow, Value, error) {
	cond, err := in.evalExpr(scope, s.Condition)
	if err != nil {
		return flowNext, nil, err
	}
	ok, err := truthy(cond)
	if err != nil {
		return flowNext, nil, err
	}
	if ok {
		return in.execBlock(NewScope(scope), s.Then)
	}
	if s.Else != nil {
		return in.execStmt(scope, s.Else)
	}
	return flowNext, nil, nil
}

func (in *Interpreter) execFor(scope *Scope, s *ast.ForStmt) (flow, Value, error) {
	iterable, err := in.evalExpr(scope, s.Iterable)
	if err != nil {
		return flowNext, nil, err
	}
	var items []Value
	switch it := iterable.(type) {
	case RangeValue:
		end := it.End
		if it.Inclusive {
			end++
		}
		for i := it.Start; i < end; i++ {
			items = append(items, IntValue(i))
		}
	case *ListValue:
		items = it.Elems
	case StringValue:
		for _, r := range string(it) {
			items = append(items, StringValue(string(r)))
		}
	default:
		return flowNext, nil, fmt.Errorf("cannot iterate over %s", iterable.Display())
	}
	for _, item := range items {
		body := NewScope(scope)
		body.Define(s.Variable, item)
		fl, _, err := in.execBlock(body, s.Body)
		if err != nil {
			return flowNext, nil, err
		}
		if fl.sig == sigBreak {
			return flowNext, nil, nil
		}
		if fl.sig == sigReturn {
			return fl, nil, nil
		}
	}
	return flowNext, nil, nil
}

func (in *Interpreter) execAssign(scope *Scope, s *ast.AssignStmt) error {
	value, err := in.evalExpr(scope, s.Value)
	if err != nil {
		return err
	}
	if s.Op != ast.Assign {
		current, err := in.evalExpr(scope, s.Target)
		if err != nil {
			return err
		}
		value, err = binaryOp(compoundBinary(s.Op), current, value)
		if err != nil {
			return err
		}
	}
	return in.storeInto(scope, s.Target, value)
}

func compoundBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.SubAssign:
		return ast.Sub
	case ast.MulAssign:
		return ast.Mul
	case ast.DivAssign:
		return ast.Div
	case ast.ModAssign:
		return ast.Mod
	default:
		return ast.Add
	}
}

// storeInto writes a value through an assignable expression: a binding,
// a struct field (bare or via self) or a list index.
func (in *Interpreter) storeInto(scope *Scope, target ast.Expression, value Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if scope.Assign(t.Name, value) {
			return nil
		}
		// a bare field write inside a method
		if self, ok := scope.Get("self"); ok {
			if sv, isStruct := self.(*StructValue); isStruct {
				if _, present := sv.Fields[t.Name]; present {
					sv.Fields[t.Name] = value
					return nil
				}
			}
		}
		return fmt.Errorf("assignment to undefined binding `%s`", t.Name)
	case *ast.FieldAccessExpr:
		obj, err := in.evalExpr(scope, t.Object)
		if err != nil {
			return err
		}
		sv, ok := obj.(*StructValue)
		if !ok {
			return fmt.Errorf("cannot assign field `%s` on %s", t.Field, obj.Display())
		}
		sv.Fields[t.Field] = value
		return nil
	case *ast.IndexExpr:
		obj, err := in.evalExpr(scope, t.Object)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(scope, t.Index)
		if err != nil {
			return err
		}
		list, ok := obj.(*ListValue)
		if !ok {
			return fmt.Errorf("cannot index into %s", obj.Display())
		}
		i, ok := idx.(IntValue)
		if !ok || int(i) < 0 || int(i) >= len(list.Elems) {
			return fmt.Errorf("index %s out of bounds", idx.Display())
		}
		list.Elems[i] = value
		return nil
	case *ast.UnaryExpr:
		if t.Op == ast.Deref {
			return in.storeInto(scope, t.Operand, value)
		}
	}
	return fmt.Errorf("unsupported assignment target %T", target)
}
