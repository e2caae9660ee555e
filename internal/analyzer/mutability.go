package analyzer

import (
	"fmt"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
)

// MutabilityResult records, per function, which immutable locals were
// silently upgraded to mutable. Codegen emits these bindings with `mut`.
type MutabilityResult struct {
	Upgraded map[string]bool
}

// CheckMutability verifies that local let bindings are declared mut iff
// they are mutated. Direct reassignment, compound assignment, a mutable
// borrow, and mutating method calls on an immutable binding are errors.
// Field and index mutation on an immutable binding is not an error: the
// binding is upgraded to mutable instead.
func CheckMutability(fn *ast.FunctionDecl, diags *diagnostic.Diagnostics) *MutabilityResult {
	result := &MutabilityResult{Upgraded: make(map[string]bool)}
	if fn.Body == nil {
		return result
	}

	declared := make(map[string]bool) // name -> declared mut
	for _, param := range fn.Params {
		// parameters are the ownership analyzer's job, not ours; mark
		// them so writes through params do not report local errors
		declared[param.Name] = true
	}

	checkBlock(fn.Body, declared, result, diags)
	return result
}

func checkBlock(block *ast.Block, declared map[string]bool, result *MutabilityResult, diags *diagnostic.Diagnostics) {
	for _, stmt := range block.Statements {
		checkStmt(stmt, declared, result, diags)
	}
}

func checkStmt(stmt ast.Statement, declared map[string]bool, result *MutabilityResult, diags *diagnostic.Diagnostics) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		checkExpr(s.Value, declared, result, diags)
		declared[s.Name] = s.Mutable
	case *ast.ConstStmt:
		checkExpr(s.Value, declared, result, diags)
		declared[s.Name] = false
	case *ast.StaticStmt:
		checkExpr(s.Value, declared, result, diags)
		declared[s.Name] = s.Mutable
	case *ast.AssignStmt:
		checkAssign(s, declared, result, diags)
		checkExpr(s.Value, declared, result, diags)
	case *ast.ReturnStmt:
		if s.Value != nil {
			checkExpr(s.Value, declared, result, diags)
		}
	case *ast.ExprStmt:
		checkExpr(s.Expr, declared, result, diags)
	case *ast.IfStmt:
		checkExpr(s.Condition, declared, result, diags)
		checkBlock(s.Then, declared, result, diags)
		if s.Else != nil {
			checkStmt(s.Else, declared, result, diags)
		}
	case *ast.ForStmt:
		checkExpr(s.Iterable, declared, result, diags)
		loopScope := copyScope(declared)
		loopScope[s.Variable] = false
		checkBlock(s.Body, loopScope, result, diags)
	case *ast.LoopStmt:
		checkBlock(s.Body, declared, result, diags)
	case *ast.WhileStmt:
		checkExpr(s.Condition, declared, result, diags)
		checkBlock(s.Body, declared, result, diags)
	case *ast.GoStmt:
		checkBlock(s.Body, copyScope(declared), result, diags)
	case *ast.DeferStmt:
		checkExpr(s.Expr, declared, result, diags)
	case *ast.Block:
		checkBlock(s, copyScope(declared), result, diags)
	}
}

func copyScope(scope map[string]bool) map[string]bool {
	out := make(map[string]bool, len(scope))
	for k, v := range scope {
		out[k] = v
	}
	return out
}

func checkAssign(s *ast.AssignStmt, declared map[string]bool, result *MutabilityResult, diags *diagnostic.Diagnostics) {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		isMut, isLocal := declared[target.Name]
		if !isLocal || isMut || result.Upgraded[target.Name] {
			return
		}
		kind := diagnostic.MutabilityReassignment
		verb := "reassigned"
		if s.Op != ast.Assign {
			kind = diagnostic.MutabilityCompoundAssignment
			verb = "modified with " + s.Op.String()
		}
		line, col := s.Pos()
		diags.ErrorWithHint(kind, line, col,
			fmt.Sprintf("immutable binding `%s` is %s", target.Name, verb),
			fmt.Sprintf("make this binding mutable: `mut %s`", target.Name))
	case *ast.FieldAccessExpr:
		// point.x = 10 on an immutable local upgrades the binding
		if name, ok := rootIdentifier(target.Object); ok {
			upgradeIfImmutable(name, declared, result)
		}
	case *ast.IndexExpr:
		if name, ok := rootIdentifier(target.Object); ok {
			upgradeIfImmutable(name, declared, result)
		}
	}
}

func rootIdentifier(expr ast.Expression) (string, bool) {
	for {
		switch e := expr.(type) {
		case *ast.Identifier:
			return e.Name, true
		case *ast.FieldAccessExpr:
			expr = e.Object
		case *ast.IndexExpr:
			expr = e.Object
		default:
			return "", false
		}
	}
}

func upgradeIfImmutable(name string, declared map[string]bool, result *MutabilityResult) {
	if isMut, isLocal := declared[name]; isLocal && !isMut {
		result.Upgraded[name] = true
	}
}

// checkExpr flags mutating method calls and mutable borrows of immutable
// locals inside an expression.
func checkExpr(expr ast.Expression, declared map[string]bool, result *MutabilityResult, diags *diagnostic.Diagnostics) {
	ast.Inspect(expr, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.MethodCallExpr:
			obj, ok := n.Object.(*ast.Identifier)
			if !ok || !IsMutatingMethod(n.Method) {
				return true
			}
			isMut, isLocal := declared[obj.Name]
			if isLocal && !isMut && !result.Upgraded[obj.Name] {
				line, col := n.Pos()
				diags.ErrorWithHint(diagnostic.MutabilityMutatingMethodCall, line, col,
					fmt.Sprintf("cannot call mutating method `%s` on immutable binding `%s`", n.Method, obj.Name),
					fmt.Sprintf("make this binding mutable: `mut %s`", obj.Name))
			}
		case *ast.UnaryExpr:
			if n.Op != ast.MutRef {
				return true
			}
			id, ok := n.Operand.(*ast.Identifier)
			if !ok {
				return true
			}
			isMut, isLocal := declared[id.Name]
			if isLocal && !isMut && !result.Upgraded[id.Name] {
				line, col := n.Pos()
				diags.ErrorWithHint(diagnostic.MutabilityReassignment, line, col,
					fmt.Sprintf("cannot take a mutable reference to immutable binding `%s`", id.Name),
					fmt.Sprintf("make this binding mutable: `mut %s`", id.Name))
			}
		}
		return true
	})
}
