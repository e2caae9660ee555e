package ast

// Inspect traverses the subtree rooted at node in depth-first order. For
// each node it calls f; if f returns false the node's children are
// skipped. Nil nodes are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, item := range n.Items {
			Inspect(item, f)
		}
	case *FunctionDecl:
		for _, dec := range n.Decorators {
			Inspect(dec, f)
		}
		for _, param := range n.Params {
			Inspect(param, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *StructDecl:
		for _, dec := range n.Decorators {
			Inspect(dec, f)
		}
		for _, field := range n.Fields {
			Inspect(field, f)
		}
	case *EnumDecl:
		for _, dec := range n.Decorators {
			Inspect(dec, f)
		}
		for _, variant := range n.Variants {
			Inspect(variant, f)
		}
	case *TraitDecl:
		for _, method := range n.Methods {
			Inspect(method, f)
		}
	case *ImplBlock:
		for _, method := range n.Methods {
			Inspect(method, f)
		}
	case *ConstDecl:
		Inspect(n.Value, f)
	case *StaticDecl:
		Inspect(n.Value, f)
	case *Decorator:
		for _, arg := range n.Args {
			Inspect(arg.Value, f)
		}
	case *Block:
		for _, stmt := range n.Statements {
			Inspect(stmt, f)
		}
	case *LetStmt:
		Inspect(n.Value, f)
	case *ConstStmt:
		Inspect(n.Value, f)
	case *StaticStmt:
		Inspect(n.Value, f)
	case *AssignStmt:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *ReturnStmt:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *ExprStmt:
		Inspect(n.Expr, f)
	case *IfStmt:
		Inspect(n.Condition, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *ForStmt:
		Inspect(n.Iterable, f)
		Inspect(n.Body, f)
	case *LoopStmt:
		Inspect(n.Body, f)
	case *WhileStmt:
		Inspect(n.Condition, f)
		Inspect(n.Body, f)
	case *GoStmt:
		Inspect(n.Body, f)
	case *DeferStmt:
		Inspect(n.Expr, f)
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpr:
		Inspect(n.Operand, f)
	case *TernaryExpr:
		Inspect(n.Condition, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *CallExpr:
		for _, arg := range n.Args {
			Inspect(arg.Value, f)
		}
	case *MethodCallExpr:
		Inspect(n.Object, f)
		for _, arg := range n.Args {
			Inspect(arg.Value, f)
		}
	case *FieldAccessExpr:
		Inspect(n.Object, f)
	case *StructLitExpr:
		for _, field := range n.Fields {
			Inspect(field.Value, f)
		}
		if n.Spread != nil {
			Inspect(n.Spread, f)
		}
	case *RangeExpr:
		Inspect(n.Start, f)
		Inspect(n.End, f)
	case *ClosureExpr:
		Inspect(n.Body, f)
	case *IndexExpr:
		Inspect(n.Object, f)
		Inspect(n.Index, f)
	case *TupleExpr:
		for _, elem := range n.Elements {
			Inspect(elem, f)
		}
	case *MacroExpr:
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *TryExpr:
		Inspect(n.Expr, f)
	case *AwaitExpr:
		Inspect(n.Expr, f)
	case *ChannelSendExpr:
		Inspect(n.Channel, f)
		Inspect(n.Value, f)
	case *ChannelRecvExpr:
		Inspect(n.Channel, f)
	case *BlockExpr:
		Inspect(n.Block, f)
	case *CastExpr:
		Inspect(n.Expr, f)
	case *MatchExpr:
		Inspect(n.Scrutinee, f)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				Inspect(arm.Guard, f)
			}
			Inspect(arm.Body, f)
		}
	}
}
