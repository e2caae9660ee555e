// Package component lifts functions tagged @component into a dependency
// record describing their reactive state. Bindings initialized by the
// sentinel signal(...) call become reactive variables, bindings
// initialized by memo(|| ...) become derived values, and the view tree
// (a view! macro or the trailing expression) is walked for its read set.
// Emission of egui or virtual-DOM output happens elsewhere; this package
// stops at the DependencyInfo interface.
package component

import (
	"sort"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// DependencyInfo describes the reactive shape of one component function.
type DependencyInfo struct {
	Name           string
	ReactiveVars   []string            // signal bindings, declaration order
	ComputedDeps   map[string][]string // memo name -> sorted reactive read set
	FunctionReads  []string            // reactive vars the view tree reads
	FunctionWrites []string            // reactive vars any handler writes
}

// IsComponent reports whether the function carries the @component decorator.
func IsComponent(fn *ast.FunctionDecl) bool {
	return fn.Decorator("component") != nil
}

// ExtractAll collects dependency records for every component function in
// the program, in declaration order.
func ExtractAll(prog *ast.Program) []*DependencyInfo {
	var out []*DependencyInfo
	for _, item := range prog.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok && IsComponent(fn) {
			out = append(out, Extract(fn))
		}
	}
	return out
}

// Extract analyzes one component function. The view tree is rooted at the
// function's trailing expression (or a view! macro); children cannot
// reference ancestors, so a single bottom-up read-set walk suffices.
func Extract(fn *ast.FunctionDecl) *DependencyInfo {
	info := &DependencyInfo{
		Name:         fn.Name,
		ComputedDeps: make(map[string][]string),
	}
	if fn.Body == nil {
		return info
	}

	reactive := make(map[string]bool)
	computed := make(map[string]bool)
	var viewStmts []ast.Statement

	for _, stmt := range fn.Body.Statements {
		let, ok := stmt.(*ast.LetStmt)
		if !ok {
			viewStmts = append(viewStmts, stmt)
			continue
		}
		switch kind, body := classifyBinding(let); kind {
		case signalBinding:
			reactive[let.Name] = true
			info.ReactiveVars = append(info.ReactiveVars, let.Name)
		case memoBinding:
			computed[let.Name] = true
			info.ComputedDeps[let.Name] = readSet(body, reactive, computed)
		default:
			viewStmts = append(viewStmts, stmt)
		}
	}

	tracked := make(map[string]bool, len(reactive)+len(computed))
	for name := range reactive {
		tracked[name] = true
	}
	for name := range computed {
		tracked[name] = true
	}
	reads := make(map[string]bool)
	writes := make(map[string]bool)
	for _, stmt := range viewStmts {
		collectAccesses(stmt, tracked, reads, writes)
	}
	info.FunctionReads = sortedKeys(reads)
	info.FunctionWrites = sortedKeys(writes)
	return info
}

type bindingKind int

const (
	plainBinding bindingKind = iota
	signalBinding
	memoBinding
)

// classifyBinding recognizes the two sentinel initializers. For memos the
// returned expression is the closure body to take the read set from.
func classifyBinding(let *ast.LetStmt) (bindingKind, ast.Expression) {
	call, ok := let.Value.(*ast.CallExpr)
	if !ok {
		return plainBinding, nil
	}
	switch call.Function {
	case "signal":
		return signalBinding, nil
	case "memo":
		if len(call.Args) == 1 {
			if closure, ok := call.Args[0].Value.(*ast.ClosureExpr); ok {
				return memoBinding, closure.Body
			}
		}
	}
	return plainBinding, nil
}

// readSet collects the reactive and computed names an expression reads,
// sorted for deterministic emission.
func readSet(expr ast.Expression, reactive, computed map[string]bool) []string {
	seen := make(map[string]bool)
	ast.Inspect(expr, func(node ast.Node) bool {
		if id, ok := node.(*ast.Identifier); ok && (reactive[id.Name] || computed[id.Name]) {
			seen[id.Name] = true
		}
		return true
	})
	return sortedKeys(seen)
}

// collectAccesses splits tracked-name uses in the view tree into reads
// and writes. Assignments and mutating method calls are writes,
// everything else is a read. Tracked names cover both signals and memos.
func collectAccesses(stmt ast.Statement, tracked, reads, writes map[string]bool) {
	ast.Inspect(stmt, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.AssignStmt:
			if id, ok := n.Target.(*ast.Identifier); ok && tracked[id.Name] {
				writes[id.Name] = true
				collectReads(n.Value, tracked, reads)
				return false
			}
		case *ast.MethodCallExpr:
			if id, ok := n.Object.(*ast.Identifier); ok && tracked[id.Name] {
				if n.Method == "set" || n.Method == "update" || analyzer.IsMutatingMethod(n.Method) {
					writes[id.Name] = true
					for _, arg := range n.Args {
						collectReads(arg.Value, tracked, reads)
					}
					return false
				}
			}
		case *ast.Identifier:
			if tracked[n.Name] {
				reads[n.Name] = true
			}
		}
		return true
	})
}

func collectReads(expr ast.Expression, tracked, reads map[string]bool) {
	ast.Inspect(expr, func(node ast.Node) bool {
		if id, ok := node.(*ast.Identifier); ok && tracked[id.Name] {
			reads[id.Name] = true
		}
		return true
	})
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
