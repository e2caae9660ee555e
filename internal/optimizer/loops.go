package optimizer

import "github.com/windjammer-lang/windjammer/internal/ast"

// OptimizeLoops applies two loop transforms. Literal-range for loops with
// at most maxUnroll iterations unroll into straight-line copies of the
// body with the loop variable substituted. Loop-invariant let bindings
// with pure initializers hoist in front of the loop.
func OptimizeLoops(prog *ast.Program, maxUnroll int, stats *Stats) *ast.Program {
	out := &ast.Program{Items: make([]ast.Item, 0, len(prog.Items))}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			out.Items = append(out.Items, loopOptFunction(it, maxUnroll, stats))
		case *ast.ImplBlock:
			opt := *it
			opt.Methods = make([]*ast.FunctionDecl, len(it.Methods))
			for i, m := range it.Methods {
				opt.Methods[i] = loopOptFunction(m, maxUnroll, stats)
			}
			out.Items = append(out.Items, &opt)
		default:
			out.Items = append(out.Items, item)
		}
	}
	return out
}

func loopOptFunction(fn *ast.FunctionDecl, maxUnroll int, stats *Stats) *ast.FunctionDecl {
	if fn.Body == nil {
		return fn
	}
	opt := *fn
	opt.Body = loopOptBlock(fn.Body, maxUnroll, stats)
	return &opt
}

func loopOptBlock(block *ast.Block, maxUnroll int, stats *Stats) *ast.Block {
	out := &ast.Block{Line: block.Line, Column: block.Column}
	for i, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.ForStmt:
			body := loopOptBlock(s.Body, maxUnroll, stats)
			if unrolled, ok := tryUnroll(s, body, maxUnroll); ok {
				stats.UnrolledLoops++
				out.Statements = append(out.Statements, unrolled...)
				continue
			}
			hoisted, rest := hoistInvariants(body, s.Variable, block.Statements[i+1:], stats)
			out.Statements = append(out.Statements, hoisted...)
			loop := *s
			loop.Body = rest
			out.Statements = append(out.Statements, &loop)
		case *ast.WhileStmt:
			body := loopOptBlock(s.Body, maxUnroll, stats)
			hoisted, rest := hoistInvariants(body, "", block.Statements[i+1:], stats)
			out.Statements = append(out.Statements, hoisted...)
			loop := *s
			loop.Body = rest
			out.Statements = append(out.Statements, &loop)
		case *ast.LoopStmt:
			body := loopOptBlock(s.Body, maxUnroll, stats)
			hoisted, rest := hoistInvariants(body, "", block.Statements[i+1:], stats)
			out.Statements = append(out.Statements, hoisted...)
			loop := *s
			loop.Body = rest
			out.Statements = append(out.Statements, &loop)
		case *ast.IfStmt:
			opt := *s
			opt.Then = loopOptBlock(s.Then, maxUnroll, stats)
			if s.Else != nil {
				switch e := s.Else.(type) {
				case *ast.Block:
					opt.Else = loopOptBlock(e, maxUnroll, stats)
				case *ast.IfStmt:
					inner := loopOptBlock(&ast.Block{Statements: []ast.Statement{e}}, maxUnroll, stats)
					if len(inner.Statements) == 1 {
						opt.Else = inner.Statements[0]
					} else {
						opt.Else = inner
					}
				default:
					opt.Else = s.Else
				}
			}
			out.Statements = append(out.Statements, &opt)
		case *ast.GoStmt:
			opt := *s
			opt.Body = loopOptBlock(s.Body, maxUnroll, stats)
			out.Statements = append(out.Statements, &opt)
		case *ast.Block:
			out.Statements = append(out.Statements, loopOptBlock(s, maxUnroll, stats))
		default:
			out.Statements = append(out.Statements, stmt)
		}
	}
	return out
}

// tryUnroll expands a for loop over a literal range into iteration copies.
// Bodies with break/continue or a binding that shadows the loop variable
// are left alone.
func tryUnroll(loop *ast.ForStmt, body *ast.Block, maxUnroll int) ([]ast.Statement, bool) {
	rng, ok := loop.Iterable.(*ast.RangeExpr)
	if !ok {
		return nil, false
	}
	start, ok := rng.Start.(*ast.IntLit)
	if !ok {
		return nil, false
	}
	end, ok := rng.End.(*ast.IntLit)
	if !ok {
		return nil, false
	}
	count := end.Value - start.Value
	if rng.Inclusive {
		count++
	}
	if count < 0 || count > int64(maxUnroll) {
		return nil, false
	}
	if hasControlTransfer(body) || shadowsVariable(body, loop.Variable) {
		return nil, false
	}
	var out []ast.Statement
	for i := int64(0); i < count; i++ {
		value := &ast.IntLit{Value: start.Value + i, Line: loop.Line, Column: loop.Column}
		for _, stmt := range body.Statements {
			out = append(out, substStmt(stmt, loop.Variable, value))
		}
	}
	return out, true
}

func hasControlTransfer(body *ast.Block) bool {
	found := false
	ast.Inspect(body, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.BreakStmt, *ast.ContinueStmt:
			found = true
			return false
		}
		return true
	})
	return found
}

func shadowsVariable(body *ast.Block, name string) bool {
	found := false
	ast.Inspect(body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.LetStmt:
			if n.Name == name {
				found = true
			}
		case *ast.ForStmt:
			if n.Variable == name {
				found = true
			}
		case *ast.ClosureExpr:
			for _, p := range n.Params {
				if p == name {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

// hoistInvariants pulls immutable let bindings whose initializer is pure
// and references nothing bound inside the loop out in front of it. A
// binding whose name is visible after the loop stays put so hoisting
// cannot shadow it.
func hoistInvariants(body *ast.Block, loopVar string, after []ast.Statement, stats *Stats) ([]ast.Statement, *ast.Block) {
	bound := make(map[string]bool)
	if loopVar != "" {
		bound[loopVar] = true
	}
	ast.Inspect(body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.LetStmt:
			bound[n.Name] = true
		case *ast.ForStmt:
			bound[n.Variable] = true
		case *ast.ClosureExpr:
			for _, p := range n.Params {
				bound[p] = true
			}
		}
		return true
	})

	usedAfter := make(map[string]bool)
	for _, stmt := range after {
		ast.Inspect(stmt, func(node ast.Node) bool {
			if id, ok := node.(*ast.Identifier); ok {
				usedAfter[id.Name] = true
			}
			return true
		})
	}

	var hoisted []ast.Statement
	rest := &ast.Block{Line: body.Line, Column: body.Column}
	hoistedNames := make(map[string]bool)
	for _, stmt := range body.Statements {
		let, ok := stmt.(*ast.LetStmt)
		if ok && !let.Mutable && !usedAfter[let.Name] &&
			isPureExpr(let.Value) && !referencesAny(let.Value, bound) &&
			!assignedIn(body, let.Name) {
			hoisted = append(hoisted, let)
			hoistedNames[let.Name] = true
			stats.HoistedBindings++
			continue
		}
		rest.Statements = append(rest.Statements, stmt)
	}
	// a second let of a hoisted name inside the loop would shadow the
	// hoisted copy, so give the whole hoist up in that case
	for _, stmt := range rest.Statements {
		if let, ok := stmt.(*ast.LetStmt); ok && hoistedNames[let.Name] {
			stats.HoistedBindings -= len(hoisted)
			return nil, body
		}
	}
	return hoisted, rest
}

// isPureExpr reports whether evaluating the expression is free of calls
// and side effects, so repeating or reordering it is safe.
func isPureExpr(expr ast.Expression) bool {
	if expr == nil {
		return false
	}
	pure := true
	ast.Inspect(expr, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.CallExpr, *ast.MethodCallExpr, *ast.MacroExpr,
			*ast.ChannelSendExpr, *ast.ChannelRecvExpr, *ast.AwaitExpr,
			*ast.TryExpr, *ast.BlockExpr, *ast.StructLitExpr:
			pure = false
			return false
		}
		return true
	})
	return pure
}

func referencesAny(expr ast.Expression, names map[string]bool) bool {
	found := false
	ast.Inspect(expr, func(node ast.Node) bool {
		if id, ok := node.(*ast.Identifier); ok && names[id.Name] {
			found = true
			return false
		}
		return true
	})
	return found
}

func assignedIn(body *ast.Block, name string) bool {
	found := false
	ast.Inspect(body, func(node ast.Node) bool {
		if assign, ok := node.(*ast.AssignStmt); ok {
			if id, ok := assign.Target.(*ast.Identifier); ok && id.Name == name {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
