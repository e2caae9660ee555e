package analyzer

import (
	"sort"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// MapStrategy is the emission strategy for a struct literal that copies
// fields from another value
type MapStrategy int

const (
	FieldByField MapStrategy = iota
	Spread
	FromImpl
)

// String returns a string representation of the strategy
func (s MapStrategy) String() string {
	switch s {
	case Spread:
		return "spread"
	case FromImpl:
		return "from"
	default:
		return "field-by-field"
	}
}

// FunctionHints is the additive hint set for one function. Hints never
// change program meaning, only its emitted form; codegen is free to
// ignore any of them. Tables are keyed by the AST node they apply to
// (node identity is stable: the tree is never mutated in place) or by
// variable name.
type FunctionHints struct {
	CloneElim      map[string]bool                  // var.clone() collapses to var
	MapStrategy    map[string]MapStrategy           // target struct name -> strategy
	StringCapacity map[*ast.MacroExpr]int           // format! call -> capacity bytes
	CompoundAssign map[*ast.AssignStmt]ast.AssignOp // v = v op e  ->  v op= e
	DeferDrop      []string                         // locals dropped on a background thread
	SmallVec       map[string]int                   // var -> inline capacity
	Cow            map[string]bool                  // params for Cow wrapping
}

// ProduceHints runs after ownership, mutability and bounds are known and
// builds every hint table for one function.
func ProduceHints(fn *ast.FunctionDecl, ownership OwnershipResult) *FunctionHints {
	h := &FunctionHints{
		CloneElim:      make(map[string]bool),
		MapStrategy:    make(map[string]MapStrategy),
		StringCapacity: make(map[*ast.MacroExpr]int),
		CompoundAssign: make(map[*ast.AssignStmt]ast.AssignOp),
		SmallVec:       make(map[string]int),
		Cow:            make(map[string]bool),
	}
	if fn.Body == nil {
		return h
	}

	locals := collectLocals(fn.Body)
	h.findCloneElims(fn, ownership, locals)
	h.findMapStrategies(fn.Body)
	h.findStringCapacities(fn)
	h.findCompoundAssigns(fn.Body)
	h.findDeferDrops(fn.Body, locals)
	h.findSmallVecs(fn.Body, locals)
	h.findCows(fn, ownership)
	sort.Strings(h.DeferDrop)
	return h
}

func collectLocals(body *ast.Block) map[string]*ast.LetStmt {
	locals := make(map[string]*ast.LetStmt)
	ast.Inspect(body, func(node ast.Node) bool {
		if let, ok := node.(*ast.LetStmt); ok {
			locals[let.Name] = let
		}
		return true
	})
	return locals
}

// findCloneElims marks variables whose .clone() call is their last use.
// Only caller-owned values qualify: owned parameters and local bindings.
func (h *FunctionHints) findCloneElims(fn *ast.FunctionDecl, ownership OwnershipResult, locals map[string]*ast.LetStmt) {
	owned := make(map[string]bool, len(locals))
	for name := range locals {
		owned[name] = true
	}
	for _, param := range fn.Params {
		if ownership[param.Name] == Owned {
			owned[param.Name] = true
		}
	}

	// depth-first order approximates source order closely enough for
	// last-use detection
	seq := 0
	lastUse := make(map[string]int)
	cloneUse := make(map[string]int)
	ast.Inspect(fn.Body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Identifier:
			seq++
			lastUse[n.Name] = seq
		case *ast.MethodCallExpr:
			if n.Method == "clone" {
				if id, ok := n.Object.(*ast.Identifier); ok {
					// record before the identifier itself is numbered
					cloneUse[id.Name] = seq + 1
				}
			}
		}
		return true
	})

	for name, cloneSeq := range cloneUse {
		if owned[name] && lastUse[name] == cloneSeq {
			h.CloneElim[name] = true
		}
	}
}

// findMapStrategies classifies every struct literal that copies fields
// from a source binding. A literal with an explicit spread keeps Spread;
// one whose every field comes verbatim from a single source upgrades to a
// From-impl call site; more than half upgrades to Spread; anything else
// stays field-by-field.
func (h *FunctionHints) findMapStrategies(body *ast.Block) {
	ast.Inspect(body, func(node ast.Node) bool {
		lit, ok := node.(*ast.StructLitExpr)
		if !ok {
			return true
		}
		if lit.Spread != nil {
			h.MapStrategy[lit.Name] = Spread
			return true
		}
		source := ""
		verbatim := 0
		for _, field := range lit.Fields {
			access, ok := field.Value.(*ast.FieldAccessExpr)
			if !ok || access.Field != field.Name {
				continue
			}
			base, ok := access.Object.(*ast.Identifier)
			if !ok {
				continue
			}
			if source == "" {
				source = base.Name
			}
			if base.Name == source {
				verbatim++
			}
		}
		switch {
		case len(lit.Fields) > 0 && verbatim == len(lit.Fields):
			h.MapStrategy[lit.Name] = FromImpl
		case verbatim*2 > len(lit.Fields):
			h.MapStrategy[lit.Name] = Spread
		default:
			h.MapStrategy[lit.Name] = FieldByField
		}
		return true
	})
}

// findStringCapacities estimates a with_capacity size for format! calls
// whose arguments all render with bounded length.
func (h *FunctionHints) findStringCapacities(fn *ast.FunctionDecl) {
	intParams := make(map[string]bool)
	for _, param := range fn.Params {
		if param.Type == nil {
			continue
		}
		switch param.Type.Kind {
		case ast.TypeInt, ast.TypeInt32, ast.TypeUint, ast.TypeBool:
			intParams[param.Name] = true
		}
	}

	ast.Inspect(fn.Body, func(node ast.Node) bool {
		macro, ok := node.(*ast.MacroExpr)
		if !ok || macro.Name != "format" || len(macro.Args) == 0 {
			return true
		}
		format, ok := macro.Args[0].(*ast.StringLit)
		if !ok {
			return true
		}
		for _, arg := range macro.Args[1:] {
			if !rendersBounded(arg, intParams) {
				return true
			}
		}
		h.StringCapacity[macro] = literalBytes(format.Value)
		return true
	})
}

func rendersBounded(arg ast.Expression, intParams map[string]bool) bool {
	switch a := arg.(type) {
	case *ast.IntLit, *ast.BoolLit:
		return true
	case *ast.Identifier:
		return intParams[a.Name]
	default:
		return false
	}
}

// literalBytes counts the non-placeholder bytes of a format string
func literalBytes(format string) int {
	total := 0
	depth := 0
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				total++
				i++
				continue
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				continue
			}
			if i+1 < len(format) && format[i+1] == '}' {
				i++
			}
			total++
		default:
			if depth == 0 {
				total++
			}
		}
	}
	return total
}

// findCompoundAssigns records `v = v op expr` statements for rewriting
// to `v op= expr`.
func (h *FunctionHints) findCompoundAssigns(body *ast.Block) {
	ast.Inspect(body, func(node ast.Node) bool {
		assign, ok := node.(*ast.AssignStmt)
		if !ok || assign.Op != ast.Assign {
			return true
		}
		target, ok := assign.Target.(*ast.Identifier)
		if !ok {
			return true
		}
		bin, ok := assign.Value.(*ast.BinaryExpr)
		if !ok {
			return true
		}
		left, ok := bin.Left.(*ast.Identifier)
		if !ok || left.Name != target.Name {
			return true
		}
		if op, ok := compoundOp(bin.Op); ok {
			h.CompoundAssign[assign] = op
		}
		return true
	})
}

func compoundOp(op ast.BinaryOp) (ast.AssignOp, bool) {
	switch op {
	case ast.Add:
		return ast.AddAssign, true
	case ast.Sub:
		return ast.SubAssign, true
	case ast.Mul:
		return ast.MulAssign, true
	case ast.Div:
		return ast.DivAssign, true
	case ast.Mod:
		return ast.ModAssign, true
	}
	return ast.Assign, false
}

// collectionTypeNames are declared types whose drop is expensive enough
// to move off-thread when the value grows inside a loop.
var collectionTypeNames = map[string]bool{
	"HashMap": true, "HashSet": true, "BTreeMap": true, "BTreeSet": true,
}

// findDeferDrops marks collection locals that are grown inside a loop
// and whose last use falls strictly before the function's final
// statement. Dropping them on a background thread keeps the return fast.
func (h *FunctionHints) findDeferDrops(body *ast.Block, locals map[string]*ast.LetStmt) {
	if len(body.Statements) < 2 {
		return
	}

	grown := make(map[string]bool)
	for _, stmt := range body.Statements {
		var loopBody *ast.Block
		switch s := stmt.(type) {
		case *ast.ForStmt:
			loopBody = s.Body
		case *ast.WhileStmt:
			loopBody = s.Body
		case *ast.LoopStmt:
			loopBody = s.Body
		default:
			continue
		}
		ast.Inspect(loopBody, func(node ast.Node) bool {
			if call, ok := node.(*ast.MethodCallExpr); ok && IsMutatingMethod(call.Method) {
				if id, ok := call.Object.(*ast.Identifier); ok {
					grown[id.Name] = true
				}
			}
			return true
		})
	}

	final := body.Statements[len(body.Statements)-1]
	for name, let := range locals {
		if !grown[name] || !isExpensiveDropType(let.Type, let.Value) {
			continue
		}
		usedInFinal := false
		ast.Inspect(final, func(node ast.Node) bool {
			if id, ok := node.(*ast.Identifier); ok && id.Name == name {
				usedInFinal = true
			}
			return true
		})
		if !usedInFinal {
			h.DeferDrop = append(h.DeferDrop, name)
		}
	}
}

func isExpensiveDropType(ty *ast.Type, init ast.Expression) bool {
	if ty != nil {
		switch ty.Kind {
		case ast.TypeVec, ast.TypeString:
			return true
		case ast.TypeParameterized:
			return collectionTypeNames[ty.Name]
		}
		return false
	}
	// untyped let: judge by the initializer
	switch e := init.(type) {
	case *ast.MacroExpr:
		return e.Name == "vec"
	case *ast.MethodCallExpr:
		if id, ok := e.Object.(*ast.Identifier); ok && e.Method == "new" {
			return id.Name == "Vec" || id.Name == "String" || collectionTypeNames[id.Name]
		}
	}
	return false
}

// findSmallVecs marks small vec! literals that never escape the function
// for inline-capacity emission. Capacity rounds up to a power of two.
// Literals the escape pass already rewrote keep their hint so re-analysis
// of an optimized tree reproduces it.
func (h *FunctionHints) findSmallVecs(body *ast.Block, locals map[string]*ast.LetStmt) {
	escaped := EscapingLocals(body)
	for name, let := range locals {
		macro, ok := let.Value.(*ast.MacroExpr)
		if !ok || (macro.Name != "vec" && macro.Name != "smallvec") {
			continue
		}
		if len(macro.Args) >= 8 || len(macro.Args) == 0 {
			continue
		}
		if escaped[name] {
			continue
		}
		h.SmallVec[name] = nextPowerOfTwo(len(macro.Args))
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// EscapingLocals computes the set of local names that escape a function
// body: returned, stored into a struct or tuple, captured by a closure,
// sent on a channel, spread into another value, or passed as a call
// argument. The last case is about representation rather than lifetime:
// the callee's signature keeps its declared types, so the value must
// stay a plain Vec at the boundary.
func EscapingLocals(body *ast.Block) map[string]bool {
	escaped := make(map[string]bool)
	mark := func(expr ast.Expression) {
		if id, ok := expr.(*ast.Identifier); ok {
			escaped[id.Name] = true
		}
	}
	markArg := func(expr ast.Expression) {
		if u, ok := expr.(*ast.UnaryExpr); ok && (u.Op == ast.Ref || u.Op == ast.MutRef) {
			expr = u.Operand
		}
		mark(expr)
	}
	ast.Inspect(body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.ReturnStmt:
			if n.Value != nil {
				ast.Inspect(n.Value, func(inner ast.Node) bool {
					if id, ok := inner.(*ast.Identifier); ok {
						escaped[id.Name] = true
					}
					return true
				})
			}
		case *ast.StructLitExpr:
			for _, field := range n.Fields {
				mark(field.Value)
			}
			mark(n.Spread)
		case *ast.TupleExpr:
			for _, elem := range n.Elements {
				mark(elem)
			}
		case *ast.ClosureExpr:
			ast.Inspect(n.Body, func(inner ast.Node) bool {
				if id, ok := inner.(*ast.Identifier); ok {
					escaped[id.Name] = true
				}
				return true
			})
		case *ast.ChannelSendExpr:
			mark(n.Value)
		case *ast.CallExpr:
			for _, arg := range n.Args {
				markArg(arg.Value)
			}
		case *ast.MethodCallExpr:
			for _, arg := range n.Args {
				markArg(arg.Value)
			}
		}
		return true
	})
	// a trailing expression escapes as the implicit return value
	if len(body.Statements) > 0 {
		if last, ok := body.Statements[len(body.Statements)-1].(*ast.ExprStmt); ok {
			mark(last.Expr)
		}
	}
	return escaped
}

// findCows marks parameters that are mostly read but only conditionally
// modified: every write sits inside an if or match branch while reads
// occur unconditionally.
func (h *FunctionHints) findCows(fn *ast.FunctionDecl, ownership OwnershipResult) {
	for _, param := range fn.Params {
		if param.Name == "self" || ownership[param.Name] != MutBorrowed {
			continue
		}
		if param.Ownership == ast.HintMut {
			continue // explicit &mut is the author's choice
		}
		writes, condWrites := countWrites(fn.Body, param.Name, false)
		if writes > 0 && writes == condWrites {
			h.Cow[param.Name] = true
		}
	}
}

// countWrites returns the total number of writes to name and how many of
// them occur under a conditional.
func countWrites(block *ast.Block, name string, conditional bool) (total, cond int) {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			if targetsBinding(s.Target, name) {
				total++
				if conditional {
					cond++
				}
			}
		case *ast.ExprStmt:
			t, c := countExprWrites(s.Expr, name, conditional)
			total += t
			cond += c
		case *ast.IfStmt:
			t, c := countWrites(s.Then, name, true)
			total += t
			cond += c
			if elseBlock, ok := s.Else.(*ast.Block); ok {
				t, c = countWrites(elseBlock, name, true)
				total += t
				cond += c
			} else if elseIf, ok := s.Else.(*ast.IfStmt); ok {
				t, c = countWrites(&ast.Block{Statements: []ast.Statement{elseIf}}, name, true)
				total += t
				cond += c
			}
		case *ast.ForStmt:
			t, c := countWrites(s.Body, name, conditional)
			total += t
			cond += c
		case *ast.WhileStmt:
			t, c := countWrites(s.Body, name, conditional)
			total += t
			cond += c
		case *ast.LoopStmt:
			t, c := countWrites(s.Body, name, conditional)
			total += t
			cond += c
		case *ast.Block:
			t, c := countWrites(s, name, conditional)
			total += t
			cond += c
		}
	}
	return total, cond
}

func countExprWrites(expr ast.Expression, name string, conditional bool) (total, cond int) {
	ast.Inspect(expr, func(node ast.Node) bool {
		if call, ok := node.(*ast.MethodCallExpr); ok && IsMutatingMethod(call.Method) {
			if id, ok := call.Object.(*ast.Identifier); ok && id.Name == name {
				total++
				if conditional {
					cond++
				}
			}
		}
		if m, ok := node.(*ast.MatchExpr); ok {
			for _, arm := range m.Arms {
				t, c := countExprWrites(arm.Body, name, true)
				total += t
				// arm bodies are conditional regardless of context
				cond += t
				_ = c
			}
			// scrutinee stays at the current conditionality
			t, c := countExprWrites(m.Scrutinee, name, conditional)
			total += t
			cond += c
			return false
		}
		return true
	})
	return total, cond
}
