package analyzer

import (
	"sort"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// BoundsResult maps each type parameter name to its full trait-bound
// list, inferred bounds merged with explicit ones, sorted for
// deterministic emission.
type BoundsResult map[string][]string

// InferBounds walks a generic function's body and collects the traits
// each type parameter must satisfy. When a constraint's operand cannot be
// attributed to a known variable, it is applied to every type parameter:
// over-constraining is safe, under-constraining is not.
func InferBounds(fn *ast.FunctionDecl) BoundsResult {
	if len(fn.TypeParams) == 0 {
		return BoundsResult{}
	}

	inf := &boundsInference{
		varToParam: make(map[string]string),
		collected:  make(map[string]map[string]bool),
	}
	for _, tp := range fn.TypeParams {
		inf.collected[tp.Name] = make(map[string]bool)
	}
	for _, param := range fn.Params {
		if tp, ok := genericName(param.Type); ok {
			inf.varToParam[param.Name] = tp
		}
	}

	if fn.Body != nil {
		inf.walkBlock(fn.Body)
	}

	result := make(BoundsResult, len(fn.TypeParams))
	for _, tp := range fn.TypeParams {
		merged := inf.collected[tp.Name]
		for _, explicit := range tp.Bounds {
			merged[explicit] = true
		}
		for _, pred := range fn.Where {
			if pred.TypeName == tp.Name {
				for _, b := range pred.Bounds {
					merged[b] = true
				}
			}
		}
		bounds := make([]string, 0, len(merged))
		for b := range merged {
			bounds = append(bounds, b)
		}
		sort.Strings(bounds)
		result[tp.Name] = bounds
	}
	return result
}

// genericName unwraps references and reports the type parameter a type
// resolves to, if any.
func genericName(ty *ast.Type) (string, bool) {
	for ty != nil && (ty.Kind == ast.TypeReference || ty.Kind == ast.TypeMutRef) {
		ty = ty.Args[0]
	}
	if ty != nil && ty.Kind == ast.TypeGeneric {
		return ty.Name, true
	}
	return "", false
}

type boundsInference struct {
	varToParam map[string]string
	collected  map[string]map[string]bool
}

// require attaches a trait to the type parameter of the given operand, or
// to every type parameter when the operand is not a tracked variable.
func (inf *boundsInference) require(operand ast.Expression, trait string) {
	if id, ok := operand.(*ast.Identifier); ok {
		if tp, tracked := inf.varToParam[id.Name]; tracked {
			inf.collected[tp][trait] = true
			return
		}
	}
	for tp := range inf.collected {
		inf.collected[tp][trait] = true
	}
}

// requireEither attaches a trait to whichever operands are tracked
// variables; when neither is, every type parameter is constrained.
func (inf *boundsInference) requireEither(left, right ast.Expression, trait string) {
	attributed := false
	for _, operand := range []ast.Expression{left, right} {
		if id, ok := operand.(*ast.Identifier); ok {
			if tp, tracked := inf.varToParam[id.Name]; tracked {
				inf.collected[tp][trait] = true
				attributed = true
			}
		}
	}
	if !attributed {
		for tp := range inf.collected {
			inf.collected[tp][trait] = true
		}
	}
}

func (inf *boundsInference) walkBlock(block *ast.Block) {
	for _, stmt := range block.Statements {
		inf.walkStmt(stmt)
	}
}

func (inf *boundsInference) walkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		inf.walkExpr(s.Value)
		// a binding initialized from a tracked variable tracks the same
		// type parameter
		if tp, ok := genericName(s.Type); ok {
			inf.varToParam[s.Name] = tp
		} else if id, ok := s.Value.(*ast.Identifier); ok {
			if tp, tracked := inf.varToParam[id.Name]; tracked {
				inf.varToParam[s.Name] = tp
			}
		} else if call, ok := s.Value.(*ast.MethodCallExpr); ok && call.Method == "clone" {
			if id, ok := call.Object.(*ast.Identifier); ok {
				if tp, tracked := inf.varToParam[id.Name]; tracked {
					inf.varToParam[s.Name] = tp
				}
			}
		}
	case *ast.AssignStmt:
		inf.walkExpr(s.Target)
		inf.walkExpr(s.Value)
		if s.Op != ast.Assign {
			inf.require(s.Target, compoundTrait(s.Op))
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			inf.walkExpr(s.Value)
		}
	case *ast.ExprStmt:
		inf.walkExpr(s.Expr)
	case *ast.IfStmt:
		inf.walkExpr(s.Condition)
		inf.walkBlock(s.Then)
		if s.Else != nil {
			inf.walkStmt(s.Else)
		}
	case *ast.ForStmt:
		inf.require(s.Iterable, "IntoIterator")
		inf.walkExpr(s.Iterable)
		inf.walkBlock(s.Body)
	case *ast.LoopStmt:
		inf.walkBlock(s.Body)
	case *ast.WhileStmt:
		inf.walkExpr(s.Condition)
		inf.walkBlock(s.Body)
	case *ast.GoStmt:
		inf.walkBlock(s.Body)
	case *ast.DeferStmt:
		inf.walkExpr(s.Expr)
	case *ast.Block:
		inf.walkBlock(s)
	}
}

func compoundTrait(op ast.AssignOp) string {
	switch op {
	case ast.AddAssign:
		return "AddAssign"
	case ast.SubAssign:
		return "SubAssign"
	case ast.MulAssign:
		return "MulAssign"
	case ast.DivAssign:
		return "DivAssign"
	case ast.ModAssign:
		return "RemAssign"
	}
	return ""
}

func (inf *boundsInference) walkExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		inf.walkExpr(e.Left)
		inf.walkExpr(e.Right)
		if trait := operatorTrait(e.Op); trait != "" {
			inf.requireEither(e.Left, e.Right, trait)
		}
	case *ast.UnaryExpr:
		inf.walkExpr(e.Operand)
		if e.Op == ast.Neg {
			inf.require(e.Operand, "Neg")
		}
	case *ast.TernaryExpr:
		inf.walkExpr(e.Condition)
		inf.walkExpr(e.Then)
		inf.walkExpr(e.Else)
	case *ast.MethodCallExpr:
		inf.walkExpr(e.Object)
		for _, arg := range e.Args {
			inf.walkExpr(arg.Value)
		}
		switch e.Method {
		case "clone":
			inf.require(e.Object, "Clone")
		case "to_string":
			inf.require(e.Object, "ToString")
		}
	case *ast.CallExpr:
		for _, arg := range e.Args {
			inf.walkExpr(arg.Value)
		}
	case *ast.MacroExpr:
		inf.walkMacro(e)
	case *ast.FieldAccessExpr:
		inf.walkExpr(e.Object)
	case *ast.StructLitExpr:
		for _, field := range e.Fields {
			inf.walkExpr(field.Value)
		}
		if e.Spread != nil {
			inf.walkExpr(e.Spread)
		}
	case *ast.RangeExpr:
		inf.walkExpr(e.Start)
		inf.walkExpr(e.End)
	case *ast.ClosureExpr:
		inf.walkExpr(e.Body)
	case *ast.IndexExpr:
		inf.walkExpr(e.Object)
		inf.walkExpr(e.Index)
	case *ast.TupleExpr:
		for _, elem := range e.Elements {
			inf.walkExpr(elem)
		}
	case *ast.TryExpr:
		inf.walkExpr(e.Expr)
	case *ast.AwaitExpr:
		inf.walkExpr(e.Expr)
	case *ast.ChannelSendExpr:
		inf.walkExpr(e.Channel)
		inf.walkExpr(e.Value)
	case *ast.ChannelRecvExpr:
		inf.walkExpr(e.Channel)
	case *ast.BlockExpr:
		inf.walkBlock(e.Block)
	case *ast.CastExpr:
		inf.walkExpr(e.Expr)
	case *ast.MatchExpr:
		inf.walkExpr(e.Scrutinee)
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				inf.walkExpr(arm.Guard)
			}
			inf.walkExpr(arm.Body)
		}
	}
}

func operatorTrait(op ast.BinaryOp) string {
	switch op {
	case ast.Add:
		return "Add"
	case ast.Sub:
		return "Sub"
	case ast.Mul:
		return "Mul"
	case ast.Div:
		return "Div"
	case ast.Mod:
		return "Rem"
	case ast.Eq, ast.Ne:
		return "PartialEq"
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return "PartialOrd"
	}
	return ""
}

// walkMacro infers Display/Debug from the placeholders of a format-style
// macro. The Nth positional placeholder constrains the Nth argument;
// {:?} and {:#?} demand Debug instead of Display. Named placeholders
// ({x}) constrain the variable directly.
func (inf *boundsInference) walkMacro(macro *ast.MacroExpr) {
	for _, arg := range macro.Args {
		inf.walkExpr(arg)
	}

	if len(macro.Args) == 0 {
		return
	}
	format, ok := macro.Args[0].(*ast.StringLit)
	if !ok {
		return
	}

	positional := 0
	for _, ph := range scanPlaceholders(format.Value) {
		trait := "Display"
		if strings.Contains(ph.spec, "?") {
			trait = "Debug"
		}
		if ph.name != "" {
			if tp, tracked := inf.varToParam[ph.name]; tracked {
				inf.collected[tp][trait] = true
			}
			continue
		}
		argIndex := 1 + positional
		positional++
		if argIndex < len(macro.Args) {
			inf.require(macro.Args[argIndex], trait)
		}
	}
}

// placeholder is one {..} occurrence in a format string: an optional
// identifier and the format spec after ':'.
type placeholder struct {
	name string
	spec string
}

// scanPlaceholders extracts the placeholders of a format string.
// {{ and }} escape literal braces.
func scanPlaceholders(s string) []placeholder {
	var out []placeholder
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			break
		}
		body := s[i+1 : i+end]
		ph := placeholder{}
		if colon := strings.IndexByte(body, ':'); colon >= 0 {
			ph.name = body[:colon]
			ph.spec = body[colon+1:]
		} else {
			ph.name = body
		}
		out = append(out, ph)
		i += end
	}
	return out
}
