package optimizer

import "github.com/windjammer-lang/windjammer/internal/ast"

// substStmt deep-copies a statement, replacing every reference to the
// named variable with the replacement expression. Callers guarantee the
// name is not rebound anywhere inside.
func substStmt(stmt ast.Statement, name string, value ast.Expression) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		out := *s
		out.Value = substExpr(s.Value, name, value)
		return &out
	case *ast.ConstStmt:
		out := *s
		out.Value = substExpr(s.Value, name, value)
		return &out
	case *ast.StaticStmt:
		out := *s
		out.Value = substExpr(s.Value, name, value)
		return &out
	case *ast.AssignStmt:
		out := *s
		out.Target = substExpr(s.Target, name, value)
		out.Value = substExpr(s.Value, name, value)
		return &out
	case *ast.ReturnStmt:
		out := *s
		if s.Value != nil {
			out.Value = substExpr(s.Value, name, value)
		}
		return &out
	case *ast.ExprStmt:
		out := *s
		out.Expr = substExpr(s.Expr, name, value)
		return &out
	case *ast.IfStmt:
		out := *s
		out.Condition = substExpr(s.Condition, name, value)
		out.Then = substBlock(s.Then, name, value)
		if s.Else != nil {
			out.Else = substStmt(s.Else, name, value)
		}
		return &out
	case *ast.ForStmt:
		out := *s
		out.Iterable = substExpr(s.Iterable, name, value)
		out.Body = substBlock(s.Body, name, value)
		return &out
	case *ast.WhileStmt:
		out := *s
		out.Condition = substExpr(s.Condition, name, value)
		out.Body = substBlock(s.Body, name, value)
		return &out
	case *ast.LoopStmt:
		out := *s
		out.Body = substBlock(s.Body, name, value)
		return &out
	case *ast.GoStmt:
		out := *s
		out.Body = substBlock(s.Body, name, value)
		return &out
	case *ast.DeferStmt:
		out := *s
		out.Expr = substExpr(s.Expr, name, value)
		return &out
	case *ast.Block:
		return substBlock(s, name, value)
	default:
		return stmt
	}
}

func substBlock(block *ast.Block, name string, value ast.Expression) *ast.Block {
	out := &ast.Block{Line: block.Line, Column: block.Column}
	for _, stmt := range block.Statements {
		out.Statements = append(out.Statements, substStmt(stmt, name, value))
	}
	return out
}

func substExpr(expr ast.Expression, name string, value ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Identifier:
		if e.Name == name {
			return value
		}
		return e
	case *ast.BinaryExpr:
		out := *e
		out.Left = substExpr(e.Left, name, value)
		out.Right = substExpr(e.Right, name, value)
		return &out
	case *ast.UnaryExpr:
		out := *e
		out.Operand = substExpr(e.Operand, name, value)
		return &out
	case *ast.TernaryExpr:
		out := *e
		out.Condition = substExpr(e.Condition, name, value)
		out.Then = substExpr(e.Then, name, value)
		out.Else = substExpr(e.Else, name, value)
		return &out
	case *ast.CallExpr:
		out := *e
		out.Args = substArgs(e.Args, name, value)
		return &out
	case *ast.MethodCallExpr:
		out := *e
		out.Object = substExpr(e.Object, name, value)
		out.Args = substArgs(e.Args, name, value)
		return &out
	case *ast.FieldAccessExpr:
		out := *e
		out.Object = substExpr(e.Object, name, value)
		return &out
	case *ast.StructLitExpr:
		out := *e
		out.Fields = make([]*ast.FieldInit, len(e.Fields))
		for i, field := range e.Fields {
			out.Fields[i] = &ast.FieldInit{
				Name:      field.Name,
				Value:     substExpr(field.Value, name, value),
				Shorthand: field.Shorthand,
			}
		}
		if e.Spread != nil {
			out.Spread = substExpr(e.Spread, name, value)
		}
		return &out
	case *ast.RangeExpr:
		out := *e
		out.Start = substExpr(e.Start, name, value)
		out.End = substExpr(e.End, name, value)
		return &out
	case *ast.ClosureExpr:
		out := *e
		out.Body = substExpr(e.Body, name, value)
		return &out
	case *ast.IndexExpr:
		out := *e
		out.Object = substExpr(e.Object, name, value)
		out.Index = substExpr(e.Index, name, value)
		return &out
	case *ast.TupleExpr:
		out := *e
		out.Elements = make([]ast.Expression, len(e.Elements))
		for i, elem := range e.Elements {
			out.Elements[i] = substExpr(elem, name, value)
		}
		return &out
	case *ast.MacroExpr:
		out := *e
		out.Args = make([]ast.Expression, len(e.Args))
		for i, arg := range e.Args {
			out.Args[i] = substExpr(arg, name, value)
		}
		return &out
	case *ast.TryExpr:
		out := *e
		out.Expr = substExpr(e.Expr, name, value)
		return &out
	case *ast.AwaitExpr:
		out := *e
		out.Expr = substExpr(e.Expr, name, value)
		return &out
	case *ast.ChannelSendExpr:
		out := *e
		out.Channel = substExpr(e.Channel, name, value)
		out.Value = substExpr(e.Value, name, value)
		return &out
	case *ast.ChannelRecvExpr:
		out := *e
		out.Channel = substExpr(e.Channel, name, value)
		return &out
	case *ast.BlockExpr:
		out := *e
		out.Block = substBlock(e.Block, name, value)
		return &out
	case *ast.CastExpr:
		out := *e
		out.Expr = substExpr(e.Expr, name, value)
		return &out
	case *ast.MatchExpr:
		out := *e
		out.Scrutinee = substExpr(e.Scrutinee, name, value)
		out.Arms = make([]*ast.MatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			newArm := *arm
			if arm.Guard != nil {
				newArm.Guard = substExpr(arm.Guard, name, value)
			}
			newArm.Body = substExpr(arm.Body, name, value)
			out.Arms[i] = &newArm
		}
		return &out
	default:
		return expr
	}
}

func substArgs(args []*ast.Argument, name string, value ast.Expression) []*ast.Argument {
	out := make([]*ast.Argument, len(args))
	for i, arg := range args {
		out[i] = &ast.Argument{Label: arg.Label, Value: substExpr(arg.Value, name, value)}
	}
	return out
}
