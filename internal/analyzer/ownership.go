package analyzer

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// mutatingMethods is the closed set of method names that mutate their
// receiver. Any method ending in "_mut" also counts.
var mutatingMethods = map[string]bool{
	"push": true, "push_str": true, "push_front": true, "push_back": true,
	"pop": true, "pop_front": true, "pop_back": true,
	"insert": true, "remove": true, "clear": true,
	"append": true, "extend": true,
	"sort": true, "sort_by": true, "sort_unstable": true,
	"reverse": true, "swap": true, "retain": true, "dedup": true,
	"truncate": true, "resize": true, "fill": true,
	"take": true, "replace": true,
}

// IsMutatingMethod reports whether a method name mutates its receiver
func IsMutatingMethod(name string) bool {
	return mutatingMethods[name] || strings.HasSuffix(name, "_mut")
}

// copyNominals are nominal type names treated as Copy when they appear as
// Custom types (host-language numerics written through).
var copyNominals = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"usize": true, "isize": true, "f32": true, "f64": true,
	"bool": true, "char": true,
}

// IsCopyType reports whether values of the type pass by value for free:
// primitives, shared references, tuples of Copy, and known numeric
// nominals. String is not Copy.
func IsCopyType(ty *ast.Type) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case ast.TypeInt, ast.TypeInt32, ast.TypeUint, ast.TypeFloat, ast.TypeBool:
		return true
	case ast.TypeReference:
		return true
	case ast.TypeTuple:
		for _, elem := range ty.Args {
			if !IsCopyType(elem) {
				return false
			}
		}
		return true
	case ast.TypeCustom:
		return copyNominals[ty.Name]
	default:
		return false
	}
}

// OwnershipResult maps parameter names to their inferred ownership mode
type OwnershipResult map[string]OwnershipMode

// InferOwnership classifies every parameter of a function as Owned,
// Borrowed or MutBorrowed. The classification never fails: an
// unclassifiable parameter lands on Borrowed, which is at worst
// over-restrictive.
func InferOwnership(fn *ast.FunctionDecl, registry *SignatureRegistry) OwnershipResult {
	result := make(OwnershipResult, len(fn.Params))
	for _, param := range fn.Params {
		result[param.Name] = classifyParam(fn, param, registry)
	}
	return result
}

func classifyParam(fn *ast.FunctionDecl, param *ast.Param, registry *SignatureRegistry) OwnershipMode {
	// Surface hints are honored as written. A method that returns Self
	// and takes bare self consumes it (builder pattern), which the
	// parser's Owned hint already covers.
	switch param.Ownership {
	case ast.HintOwned:
		return Owned
	case ast.HintRef:
		return Borrowed
	case ast.HintMut:
		return MutBorrowed
	}

	if fn.Body == nil {
		if IsCopyType(param.Type) {
			return Owned
		}
		return Borrowed
	}

	if isMutatedInBody(fn.Body, param.Name, registry) {
		return MutBorrowed
	}
	if IsCopyType(param.Type) {
		return Owned
	}
	if isConsumedInBody(fn.Body, param.Name, registry) {
		return Owned
	}
	return Borrowed
}

// isMutatedInBody reports whether the named binding is written to:
// reassigned, compound-assigned, mutated through a field, mutably
// borrowed, passed to a mutating method, or passed to a callee slot that
// requires MutBorrowed.
func isMutatedInBody(body *ast.Block, name string, registry *SignatureRegistry) bool {
	mutated := false
	ast.Inspect(body, func(node ast.Node) bool {
		if mutated {
			return false
		}
		switch n := node.(type) {
		case *ast.AssignStmt:
			if targetsBinding(n.Target, name) {
				mutated = true
			}
		case *ast.MethodCallExpr:
			if obj, ok := n.Object.(*ast.Identifier); ok && obj.Name == name && IsMutatingMethod(n.Method) {
				mutated = true
			}
		case *ast.UnaryExpr:
			if n.Op == ast.MutRef {
				if id, ok := n.Operand.(*ast.Identifier); ok && id.Name == name {
					mutated = true
				}
			}
		case *ast.CallExpr:
			for i, arg := range n.Args {
				id, ok := arg.Value.(*ast.Identifier)
				if !ok || id.Name != name {
					continue
				}
				if mode, known := registry.Mode(n.Function, i); known && mode == MutBorrowed {
					mutated = true
				}
			}
		}
		return true
	})
	return mutated
}

// targetsBinding reports whether an assignment target writes through the
// named binding, directly or via a field/index path.
func targetsBinding(target ast.Expression, name string) bool {
	switch t := target.(type) {
	case *ast.Identifier:
		return t.Name == name
	case *ast.FieldAccessExpr:
		return targetsBinding(t.Object, name)
	case *ast.IndexExpr:
		return targetsBinding(t.Object, name)
	case *ast.UnaryExpr:
		if t.Op == ast.Deref {
			return targetsBinding(t.Operand, name)
		}
	}
	return false
}

// isConsumedInBody reports whether the named binding is moved: returned,
// stored into a struct literal or tuple, passed to an owned callee slot,
// or used as the receiver of a consuming (into_*) method.
func isConsumedInBody(body *ast.Block, name string, registry *SignatureRegistry) bool {
	consumed := false
	ast.Inspect(body, func(node ast.Node) bool {
		if consumed {
			return false
		}
		switch n := node.(type) {
		case *ast.ReturnStmt:
			if id, ok := n.Value.(*ast.Identifier); ok && id.Name == name {
				consumed = true
			}
		case *ast.StructLitExpr:
			for _, field := range n.Fields {
				if id, ok := field.Value.(*ast.Identifier); ok && id.Name == name {
					consumed = true
				}
			}
		case *ast.TupleExpr:
			for _, elem := range n.Elements {
				if id, ok := elem.(*ast.Identifier); ok && id.Name == name {
					consumed = true
				}
			}
		case *ast.MethodCallExpr:
			if obj, ok := n.Object.(*ast.Identifier); ok && obj.Name == name && strings.HasPrefix(n.Method, "into_") {
				consumed = true
			}
		case *ast.CallExpr:
			for i, arg := range n.Args {
				id, ok := arg.Value.(*ast.Identifier)
				if !ok || id.Name != name {
					continue
				}
				if mode, known := registry.Mode(n.Function, i); known && mode == Owned {
					consumed = true
				}
			}
		}
		return true
	})
	if consumed {
		return true
	}
	// a trailing expression that is the bare binding is an implicit return
	if len(body.Statements) > 0 {
		if last, ok := body.Statements[len(body.Statements)-1].(*ast.ExprStmt); ok {
			if id, ok := last.Expr.(*ast.Identifier); ok && id.Name == name {
				return true
			}
		}
	}
	return false
}
