package optimizer

import (
	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// RewriteEscapes rewrites small vec! literals bound to locals that never
// leave the function into smallvec! invocations so the code generator can
// emit inline storage. max is the largest literal that profits from
// inline storage; larger ones spill to the heap anyway.
func RewriteEscapes(prog *ast.Program, max int, stats *Stats) *ast.Program {
	out := &ast.Program{Items: make([]ast.Item, 0, len(prog.Items))}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			out.Items = append(out.Items, escapeFunction(it, max, stats))
		case *ast.ImplBlock:
			rewritten := *it
			rewritten.Methods = make([]*ast.FunctionDecl, len(it.Methods))
			for i, m := range it.Methods {
				rewritten.Methods[i] = escapeFunction(m, max, stats)
			}
			out.Items = append(out.Items, &rewritten)
		default:
			out.Items = append(out.Items, item)
		}
	}
	return out
}

func escapeFunction(fn *ast.FunctionDecl, max int, stats *Stats) *ast.FunctionDecl {
	if fn.Body == nil {
		return fn
	}
	escaping := analyzer.EscapingLocals(fn.Body)
	rewritten := *fn
	rewritten.Body = escapeBlock(fn.Body, escaping, max, stats)
	return &rewritten
}

func escapeBlock(block *ast.Block, escaping map[string]bool, max int, stats *Stats) *ast.Block {
	out := &ast.Block{Line: block.Line, Column: block.Column}
	for _, stmt := range block.Statements {
		out.Statements = append(out.Statements, escapeStmt(stmt, escaping, max, stats))
	}
	return out
}

func escapeStmt(stmt ast.Statement, escaping map[string]bool, max int, stats *Stats) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		macro, ok := s.Value.(*ast.MacroExpr)
		if ok && macro.Name == "vec" && len(macro.Args) > 0 &&
			len(macro.Args) < max && !escaping[s.Name] {
			stats.SmallVecRewrites++
			rewritten := *s
			inline := *macro
			inline.Name = "smallvec"
			rewritten.Value = &inline
			return &rewritten
		}
		return s
	case *ast.IfStmt:
		rewritten := *s
		rewritten.Then = escapeBlock(s.Then, escaping, max, stats)
		if s.Else != nil {
			rewritten.Else = escapeStmt(s.Else, escaping, max, stats)
		}
		return &rewritten
	case *ast.ForStmt:
		rewritten := *s
		rewritten.Body = escapeBlock(s.Body, escaping, max, stats)
		return &rewritten
	case *ast.WhileStmt:
		rewritten := *s
		rewritten.Body = escapeBlock(s.Body, escaping, max, stats)
		return &rewritten
	case *ast.LoopStmt:
		rewritten := *s
		rewritten.Body = escapeBlock(s.Body, escaping, max, stats)
		return &rewritten
	case *ast.Block:
		return escapeBlock(s, escaping, max, stats)
	default:
		return stmt
	}
}
