package optimizer

import "github.com/windjammer-lang/windjammer/internal/ast"

// FoldProgram evaluates pure literal expressions throughout the program.
// Division and modulo by a literal zero are left untouched so the host
// program keeps its runtime behavior. If statements and ternaries with a
// literal condition collapse to the taken branch.
func FoldProgram(prog *ast.Program, stats *Stats) *ast.Program {
	out := &ast.Program{Items: make([]ast.Item, 0, len(prog.Items))}
	for _, item := range prog.Items {
		out.Items = append(out.Items, foldItem(item, stats))
	}
	return out
}

func foldItem(item ast.Item, stats *Stats) ast.Item {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		return foldFunction(it, stats)
	case *ast.ImplBlock:
		folded := *it
		folded.Methods = make([]*ast.FunctionDecl, len(it.Methods))
		for i, method := range it.Methods {
			folded.Methods[i] = foldFunction(method, stats)
		}
		return &folded
	case *ast.ConstDecl:
		folded := *it
		folded.Value = foldExpr(it.Value, stats)
		return &folded
	case *ast.StaticDecl:
		folded := *it
		folded.Value = foldExpr(it.Value, stats)
		return &folded
	default:
		return item
	}
}

func foldFunction(fn *ast.FunctionDecl, stats *Stats) *ast.FunctionDecl {
	if fn.Body == nil {
		return fn
	}
	folded := *fn
	folded.Body = foldBlock(fn.Body, stats)
	return &folded
}

func foldBlock(block *ast.Block, stats *Stats) *ast.Block {
	out := &ast.Block{Line: block.Line, Column: block.Column}
	for _, stmt := range block.Statements {
		for _, folded := range foldStmt(stmt, stats) {
			out.Statements = append(out.Statements, folded)
		}
	}
	return out
}

// foldStmt folds one statement; an if with a literal condition expands
// to the statements of the taken branch (possibly none).
func foldStmt(stmt ast.Statement, stats *Stats) []ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		folded := *s
		folded.Value = foldExpr(s.Value, stats)
		return []ast.Statement{&folded}
	case *ast.ConstStmt:
		folded := *s
		folded.Value = foldExpr(s.Value, stats)
		return []ast.Statement{&folded}
	case *ast.StaticStmt:
		folded := *s
		folded.Value = foldExpr(s.Value, stats)
		return []ast.Statement{&folded}
	case *ast.AssignStmt:
		folded := *s
		folded.Value = foldExpr(s.Value, stats)
		return []ast.Statement{&folded}
	case *ast.ReturnStmt:
		folded := *s
		if s.Value != nil {
			folded.Value = foldExpr(s.Value, stats)
		}
		return []ast.Statement{&folded}
	case *ast.ExprStmt:
		folded := *s
		folded.Expr = foldExpr(s.Expr, stats)
		return []ast.Statement{&folded}
	case *ast.IfStmt:
		cond := foldExpr(s.Condition, stats)
		if lit, ok := cond.(*ast.BoolLit); ok {
			stats.CollapsedBranches++
			if lit.Value {
				return foldBlock(s.Then, stats).Statements
			}
			if s.Else == nil {
				return nil
			}
			return foldStmt(s.Else, stats)
		}
		folded := *s
		folded.Condition = cond
		folded.Then = foldBlock(s.Then, stats)
		if s.Else != nil {
			elseStmts := foldStmt(s.Else, stats)
			if len(elseStmts) == 1 {
				folded.Else = elseStmts[0]
			} else {
				folded.Else = &ast.Block{Statements: elseStmts}
			}
		}
		return []ast.Statement{&folded}
	case *ast.ForStmt:
		folded := *s
		folded.Iterable = foldExpr(s.Iterable, stats)
		folded.Body = foldBlock(s.Body, stats)
		return []ast.Statement{&folded}
	case *ast.WhileStmt:
		folded := *s
		folded.Condition = foldExpr(s.Condition, stats)
		folded.Body = foldBlock(s.Body, stats)
		return []ast.Statement{&folded}
	case *ast.LoopStmt:
		folded := *s
		folded.Body = foldBlock(s.Body, stats)
		return []ast.Statement{&folded}
	case *ast.GoStmt:
		folded := *s
		folded.Body = foldBlock(s.Body, stats)
		return []ast.Statement{&folded}
	case *ast.DeferStmt:
		folded := *s
		folded.Expr = foldExpr(s.Expr, stats)
		return []ast.Statement{&folded}
	case *ast.Block:
		return []ast.Statement{foldBlock(s, stats)}
	default:
		return []ast.Statement{stmt}
	}
}

// foldExpr folds an expression bottom-up, returning a new node when
// anything changed beneath it.
func foldExpr(expr ast.Expression, stats *Stats) ast.Expression {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		left := foldExpr(e.Left, stats)
		right := foldExpr(e.Right, stats)
		if folded, ok := foldBinary(e.Op, left, right, e.Line, e.Column); ok {
			stats.FoldedExpressions++
			return folded
		}
		return &ast.BinaryExpr{Left: left, Op: e.Op, Right: right, Line: e.Line, Column: e.Column}
	case *ast.UnaryExpr:
		operand := foldExpr(e.Operand, stats)
		if folded, ok := foldUnary(e.Op, operand, e.Line, e.Column); ok {
			stats.FoldedExpressions++
			return folded
		}
		return &ast.UnaryExpr{Op: e.Op, Operand: operand, Line: e.Line, Column: e.Column}
	case *ast.TernaryExpr:
		cond := foldExpr(e.Condition, stats)
		then := foldExpr(e.Then, stats)
		els := foldExpr(e.Else, stats)
		if lit, ok := cond.(*ast.BoolLit); ok {
			stats.CollapsedBranches++
			if lit.Value {
				return then
			}
			return els
		}
		return &ast.TernaryExpr{Condition: cond, Then: then, Else: els, Line: e.Line, Column: e.Column}
	case *ast.CallExpr:
		out := *e
		out.Args = foldArgs(e.Args, stats)
		return &out
	case *ast.MethodCallExpr:
		out := *e
		out.Object = foldExpr(e.Object, stats)
		out.Args = foldArgs(e.Args, stats)
		return &out
	case *ast.FieldAccessExpr:
		out := *e
		out.Object = foldExpr(e.Object, stats)
		return &out
	case *ast.StructLitExpr:
		out := *e
		out.Fields = make([]*ast.FieldInit, len(e.Fields))
		for i, field := range e.Fields {
			out.Fields[i] = &ast.FieldInit{
				Name:      field.Name,
				Value:     foldExpr(field.Value, stats),
				Shorthand: field.Shorthand,
			}
		}
		if e.Spread != nil {
			out.Spread = foldExpr(e.Spread, stats)
		}
		return &out
	case *ast.RangeExpr:
		out := *e
		out.Start = foldExpr(e.Start, stats)
		out.End = foldExpr(e.End, stats)
		return &out
	case *ast.ClosureExpr:
		out := *e
		out.Body = foldExpr(e.Body, stats)
		return &out
	case *ast.IndexExpr:
		out := *e
		out.Object = foldExpr(e.Object, stats)
		out.Index = foldExpr(e.Index, stats)
		return &out
	case *ast.TupleExpr:
		out := *e
		out.Elements = make([]ast.Expression, len(e.Elements))
		for i, elem := range e.Elements {
			out.Elements[i] = foldExpr(elem, stats)
		}
		return &out
	case *ast.MacroExpr:
		out := *e
		out.Args = make([]ast.Expression, len(e.Args))
		for i, arg := range e.Args {
			out.Args[i] = foldExpr(arg, stats)
		}
		return &out
	case *ast.TryExpr:
		out := *e
		out.Expr = foldExpr(e.Expr, stats)
		return &out
	case *ast.AwaitExpr:
		out := *e
		out.Expr = foldExpr(e.Expr, stats)
		return &out
	case *ast.ChannelSendExpr:
		out := *e
		out.Channel = foldExpr(e.Channel, stats)
		out.Value = foldExpr(e.Value, stats)
		return &out
	case *ast.ChannelRecvExpr:
		out := *e
		out.Channel = foldExpr(e.Channel, stats)
		return &out
	case *ast.BlockExpr:
		out := *e
		out.Block = foldBlock(e.Block, stats)
		return &out
	case *ast.CastExpr:
		out := *e
		out.Expr = foldExpr(e.Expr, stats)
		return &out
	case *ast.MatchExpr:
		out := *e
		out.Scrutinee = foldExpr(e.Scrutinee, stats)
		out.Arms = make([]*ast.MatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			newArm := *arm
			if arm.Guard != nil {
				newArm.Guard = foldExpr(arm.Guard, stats)
			}
			newArm.Body = foldExpr(arm.Body, stats)
			out.Arms[i] = &newArm
		}
		return &out
	default:
		return expr
	}
}

func foldArgs(args []*ast.Argument, stats *Stats) []*ast.Argument {
	out := make([]*ast.Argument, len(args))
	for i, arg := range args {
		out[i] = &ast.Argument{Label: arg.Label, Value: foldExpr(arg.Value, stats)}
	}
	return out
}

func foldBinary(op ast.BinaryOp, left, right ast.Expression, line, col int) (ast.Expression, bool) {
	if li, ok := left.(*ast.IntLit); ok {
		if ri, ok := right.(*ast.IntLit); ok {
			return foldIntBinary(op, li.Value, ri.Value, line, col)
		}
	}
	if lf, ok := left.(*ast.FloatLit); ok {
		if rf, ok := right.(*ast.FloatLit); ok {
			return foldFloatBinary(op, lf.Value, rf.Value, line, col)
		}
	}
	if lb, ok := left.(*ast.BoolLit); ok {
		if rb, ok := right.(*ast.BoolLit); ok {
			return foldBoolBinary(op, lb.Value, rb.Value, line, col)
		}
	}
	if ls, ok := left.(*ast.StringLit); ok {
		if rs, ok := right.(*ast.StringLit); ok && op == ast.Add {
			return &ast.StringLit{Value: ls.Value + rs.Value, Line: line, Column: col}, true
		}
	}
	return nil, false
}

func foldIntBinary(op ast.BinaryOp, a, b int64, line, col int) (ast.Expression, bool) {
	switch op {
	case ast.Add:
		return &ast.IntLit{Value: a + b, Line: line, Column: col}, true
	case ast.Sub:
		return &ast.IntLit{Value: a - b, Line: line, Column: col}, true
	case ast.Mul:
		return &ast.IntLit{Value: a * b, Line: line, Column: col}, true
	case ast.Div:
		if b == 0 {
			return nil, false
		}
		return &ast.IntLit{Value: a / b, Line: line, Column: col}, true
	case ast.Mod:
		if b == 0 {
			return nil, false
		}
		return &ast.IntLit{Value: a % b, Line: line, Column: col}, true
	case ast.Shl:
		return &ast.IntLit{Value: a << uint(b), Line: line, Column: col}, true
	case ast.Shr:
		return &ast.IntLit{Value: a >> uint(b), Line: line, Column: col}, true
	case ast.BitAnd:
		return &ast.IntLit{Value: a & b, Line: line, Column: col}, true
	case ast.BitOr:
		return &ast.IntLit{Value: a | b, Line: line, Column: col}, true
	case ast.BitXor:
		return &ast.IntLit{Value: a ^ b, Line: line, Column: col}, true
	case ast.Eq:
		return &ast.BoolLit{Value: a == b, Line: line, Column: col}, true
	case ast.Ne:
		return &ast.BoolLit{Value: a != b, Line: line, Column: col}, true
	case ast.Lt:
		return &ast.BoolLit{Value: a < b, Line: line, Column: col}, true
	case ast.Le:
		return &ast.BoolLit{Value: a <= b, Line: line, Column: col}, true
	case ast.Gt:
		return &ast.BoolLit{Value: a > b, Line: line, Column: col}, true
	case ast.Ge:
		return &ast.BoolLit{Value: a >= b, Line: line, Column: col}, true
	}
	return nil, false
}

func foldFloatBinary(op ast.BinaryOp, a, b float64, line, col int) (ast.Expression, bool) {
	switch op {
	case ast.Add:
		return &ast.FloatLit{Value: a + b, Line: line, Column: col}, true
	case ast.Sub:
		return &ast.FloatLit{Value: a - b, Line: line, Column: col}, true
	case ast.Mul:
		return &ast.FloatLit{Value: a * b, Line: line, Column: col}, true
	case ast.Div:
		if b == 0 {
			return nil, false
		}
		return &ast.FloatLit{Value: a / b, Line: line, Column: col}, true
	case ast.Eq:
		return &ast.BoolLit{Value: a == b, Line: line, Column: col}, true
	case ast.Ne:
		return &ast.BoolLit{Value: a != b, Line: line, Column: col}, true
	case ast.Lt:
		return &ast.BoolLit{Value: a < b, Line: line, Column: col}, true
	case ast.Le:
		return &ast.BoolLit{Value: a <= b, Line: line, Column: col}, true
	case ast.Gt:
		return &ast.BoolLit{Value: a > b, Line: line, Column: col}, true
	case ast.Ge:
		return &ast.BoolLit{Value: a >= b, Line: line, Column: col}, true
	}
	return nil, false
}

func foldBoolBinary(op ast.BinaryOp, a, b bool, line, col int) (ast.Expression, bool) {
	switch op {
	case ast.And:
		return &ast.BoolLit{Value: a && b, Line: line, Column: col}, true
	case ast.Or:
		return &ast.BoolLit{Value: a || b, Line: line, Column: col}, true
	case ast.Eq:
		return &ast.BoolLit{Value: a == b, Line: line, Column: col}, true
	case ast.Ne:
		return &ast.BoolLit{Value: a != b, Line: line, Column: col}, true
	}
	return nil, false
}

func foldUnary(op ast.UnaryOp, operand ast.Expression, line, col int) (ast.Expression, bool) {
	switch op {
	case ast.Neg:
		if lit, ok := operand.(*ast.IntLit); ok {
			return &ast.IntLit{Value: -lit.Value, Line: line, Column: col}, true
		}
		if lit, ok := operand.(*ast.FloatLit); ok {
			return &ast.FloatLit{Value: -lit.Value, Line: line, Column: col}, true
		}
	case ast.Not:
		if lit, ok := operand.(*ast.BoolLit); ok {
			return &ast.BoolLit{Value: !lit.Value, Line: line, Column: col}, true
		}
	}
	return nil, false
}
