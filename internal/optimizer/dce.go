package optimizer

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// EliminateDeadCode removes top-level items that are unreachable from the
// program roots and statements that follow an unconditional return, break
// or continue inside a block.
//
// Roots are main, every decorated item (decorators carry intent the
// compiler cannot see through, tests and exports in particular), and use
// declarations. Trait impls stay alive as long as their target type does.
// A file without main compiles as a library and keeps every top-level
// item.
func EliminateDeadCode(prog *ast.Program, stats *Stats) *ast.Program {
	reachable := reachableNames(prog)

	out := &ast.Program{}
	for _, item := range prog.Items {
		if !itemReachable(item, reachable) {
			stats.RemovedItems++
			continue
		}
		out.Items = append(out.Items, pruneItem(item, stats))
	}
	return out
}

func reachableNames(prog *ast.Program) map[string]bool {
	// Index every named item with its outbound references.
	refs := make(map[string][]string)
	var roots []string
	var all []string
	hasMain := false

	addItem := func(name string, isRoot bool, out []string) {
		refs[name] = append(refs[name], out...)
		all = append(all, name)
		if isRoot {
			roots = append(roots, name)
		}
	}

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			if it.Name == "main" {
				hasMain = true
			}
			addItem(it.Name, it.Name == "main" || len(it.Decorators) > 0, functionRefs(it))
		case *ast.StructDecl:
			var out []string
			for _, f := range it.Fields {
				out = append(out, typeRefs(f.Type)...)
			}
			addItem(it.Name, len(it.Decorators) > 0, out)
		case *ast.EnumDecl:
			var out []string
			for _, v := range it.Variants {
				for _, t := range v.Types {
					out = append(out, typeRefs(t)...)
				}
				for _, f := range v.Fields {
					out = append(out, typeRefs(f.Type)...)
				}
			}
			addItem(it.Name, len(it.Decorators) > 0, out)
		case *ast.TraitDecl:
			var out []string
			out = append(out, it.Supertraits...)
			for _, m := range it.Methods {
				out = append(out, functionRefs(m)...)
			}
			addItem(it.Name, false, out)
		case *ast.ImplBlock:
			// An impl travels with its type; its methods pull in
			// whatever they reference once the type is reachable.
			var out []string
			if it.TraitName != "" {
				out = append(out, it.TraitName)
			}
			for _, m := range it.Methods {
				out = append(out, functionRefs(m)...)
			}
			refs[it.TypeName] = append(refs[it.TypeName], out...)
		case *ast.ConstDecl:
			addItem(it.Name, false, append(typeRefs(it.Type), exprRefs(it.Value)...))
		case *ast.StaticDecl:
			addItem(it.Name, false, append(typeRefs(it.Type), exprRefs(it.Value)...))
		case *ast.BoundAlias:
			addItem(it.Name, false, it.Traits)
		}
	}

	// without an entry point this is a library: every top-level item is
	// part of its surface and stays
	if !hasMain {
		roots = all
	}

	reachable := make(map[string]bool)
	work := roots
	for len(work) > 0 {
		name := work[len(work)-1]
		work = work[:len(work)-1]
		if reachable[name] {
			continue
		}
		reachable[name] = true
		work = append(work, refs[name]...)
	}
	return reachable
}

func itemReachable(item ast.Item, reachable map[string]bool) bool {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		return reachable[it.Name]
	case *ast.StructDecl:
		return reachable[it.Name]
	case *ast.EnumDecl:
		return reachable[it.Name]
	case *ast.TraitDecl:
		return reachable[it.Name]
	case *ast.ImplBlock:
		return reachable[it.TypeName]
	case *ast.ConstDecl:
		return reachable[it.Name]
	case *ast.StaticDecl:
		return reachable[it.Name]
	case *ast.BoundAlias:
		return reachable[it.Name]
	default:
		// use declarations and anything unrecognized are kept
		return true
	}
}

// functionRefs collects every top-level name a function might touch:
// called functions, identifiers, type names in its signature and body.
func functionRefs(fn *ast.FunctionDecl) []string {
	var out []string
	for _, p := range fn.Params {
		out = append(out, typeRefs(p.Type)...)
	}
	out = append(out, typeRefs(fn.ReturnType)...)
	for _, tp := range fn.TypeParams {
		out = append(out, tp.Bounds...)
	}
	for _, w := range fn.Where {
		out = append(out, w.Bounds...)
	}
	if fn.Body == nil {
		return out
	}
	ast.Inspect(fn.Body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.CallExpr:
			out = append(out, n.Function)
		case *ast.Identifier:
			out = append(out, n.Name)
		case *ast.StructLitExpr:
			out = append(out, n.Name)
		case *ast.MethodCallExpr:
			if id, ok := n.Object.(*ast.Identifier); ok {
				out = append(out, id.Name)
			}
			for _, t := range n.TypeArgs {
				out = append(out, typeRefs(t)...)
			}
		case *ast.FieldAccessExpr:
			if id, ok := n.Object.(*ast.Identifier); ok {
				out = append(out, id.Name)
			}
		case *ast.LetStmt:
			out = append(out, typeRefs(n.Type)...)
		case *ast.CastExpr:
			out = append(out, typeRefs(n.Type)...)
		case *ast.MatchExpr:
			for _, arm := range n.Arms {
				out = append(out, patternRefs(arm.Pattern)...)
			}
		}
		return true
	})
	return out
}

func exprRefs(expr ast.Expression) []string {
	var out []string
	if expr == nil {
		return out
	}
	ast.Inspect(expr, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.CallExpr:
			out = append(out, n.Function)
		case *ast.Identifier:
			out = append(out, n.Name)
		case *ast.StructLitExpr:
			out = append(out, n.Name)
		}
		return true
	})
	return out
}

func typeRefs(t *ast.Type) []string {
	if t == nil {
		return nil
	}
	var out []string
	if t.Name != "" {
		head := t.Name
		if i := strings.Index(head, "."); i >= 0 {
			head = head[:i]
		}
		if i := strings.Index(head, "::"); i >= 0 {
			head = head[:i]
		}
		out = append(out, head)
	}
	for _, arg := range t.Args {
		out = append(out, typeRefs(arg)...)
	}
	return out
}

func patternRefs(p *ast.Pattern) []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.Kind == ast.VariantPattern {
		head := p.Name
		if i := strings.Index(head, "."); i >= 0 {
			head = head[:i]
		}
		out = append(out, head)
	}
	for _, elem := range p.Elements {
		out = append(out, patternRefs(elem)...)
	}
	return out
}

func pruneItem(item ast.Item, stats *Stats) ast.Item {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		return pruneFunction(it, stats)
	case *ast.ImplBlock:
		pruned := *it
		pruned.Methods = make([]*ast.FunctionDecl, len(it.Methods))
		for i, m := range it.Methods {
			pruned.Methods[i] = pruneFunction(m, stats)
		}
		return &pruned
	default:
		return item
	}
}

func pruneFunction(fn *ast.FunctionDecl, stats *Stats) *ast.FunctionDecl {
	if fn.Body == nil {
		return fn
	}
	pruned := *fn
	pruned.Body = pruneBlock(fn.Body, stats)
	return &pruned
}

// pruneBlock drops statements after the first unconditional control
// transfer in a block.
func pruneBlock(block *ast.Block, stats *Stats) *ast.Block {
	out := &ast.Block{Line: block.Line, Column: block.Column}
	for i, stmt := range block.Statements {
		out.Statements = append(out.Statements, pruneStmt(stmt, stats))
		if terminates(stmt) && i < len(block.Statements)-1 {
			stats.RemovedStatements += len(block.Statements) - i - 1
			break
		}
	}
	return out
}

func pruneStmt(stmt ast.Statement, stats *Stats) ast.Statement {
	switch s := stmt.(type) {
	case *ast.IfStmt:
		pruned := *s
		pruned.Then = pruneBlock(s.Then, stats)
		if s.Else != nil {
			pruned.Else = pruneStmt(s.Else, stats)
		}
		return &pruned
	case *ast.ForStmt:
		pruned := *s
		pruned.Body = pruneBlock(s.Body, stats)
		return &pruned
	case *ast.WhileStmt:
		pruned := *s
		pruned.Body = pruneBlock(s.Body, stats)
		return &pruned
	case *ast.LoopStmt:
		pruned := *s
		pruned.Body = pruneBlock(s.Body, stats)
		return &pruned
	case *ast.GoStmt:
		pruned := *s
		pruned.Body = pruneBlock(s.Body, stats)
		return &pruned
	case *ast.Block:
		return pruneBlock(s, stats)
	default:
		return stmt
	}
}

func terminates(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	case *ast.IfStmt:
		// both branches must end the path
		if s.Else == nil {
			return false
		}
		thenDone := len(s.Then.Statements) > 0 && terminates(s.Then.Statements[len(s.Then.Statements)-1])
		var elseDone bool
		switch e := s.Else.(type) {
		case *ast.Block:
			elseDone = len(e.Statements) > 0 && terminates(e.Statements[len(e.Statements)-1])
		case *ast.IfStmt:
			elseDone = terminates(e)
		}
		return thenDone && elseDone
	}
	return false
}
