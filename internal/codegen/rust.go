// Package codegen emits Rust source from the AST and the analyzer's
// annotation tables. The generator never produces diagnostics: constructs
// it cannot express become /* TODO: ... */ comments and the host compiler
// surfaces the location. Emission is deterministic; every inferred set is
// sorted before it is written.
package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// crateRoots are the well-known first path segments that join with ::
// instead of a method-call dot.
var crateRoots = map[string]bool{
	"std": true, "core": true, "alloc": true, "tokio": true,
	"serde": true, "serde_json": true, "http": true, "fs": true,
	"time": true, "math": true, "strings": true, "json": true,
	"log": true, "db": true, "regex": true, "cli": true,
}

// traitImports maps inferred bounds to the use path they require. Traits
// in the prelude (Clone, PartialEq, Default, ...) need none.
var traitImports = map[string]string{
	"Display":   "std::fmt::Display",
	"Debug":     "std::fmt::Debug",
	"Hash":      "std::hash::Hash",
	"Add":       "std::ops::Add",
	"Sub":       "std::ops::Sub",
	"Mul":       "std::ops::Mul",
	"Div":       "std::ops::Div",
	"Rem":       "std::ops::Rem",
	"Neg":       "std::ops::Neg",
	"AddAssign": "std::ops::AddAssign",
	"SubAssign": "std::ops::SubAssign",
	"MulAssign": "std::ops::MulAssign",
	"DivAssign": "std::ops::DivAssign",
	"RemAssign": "std::ops::RemAssign",
}

// formatMacros take a format string as their first argument and accept
// {ident} interpolation.
var formatMacros = map[string]bool{
	"println": true, "print": true, "eprintln": true, "eprint": true,
	"format": true, "panic": true, "write": true, "writeln": true,
}

type generator struct {
	analysis *analyzer.Analysis
	target   Target
	buf      strings.Builder
	indent   int

	implType string          // enclosing impl target, "" outside impls
	fields   map[string]bool // field set of implType
	fa       *analyzer.FunctionAnalysis
	locals   map[string]bool // names that shadow fields
}

// Emit renders the whole program as Rust source.
func Emit(prog *ast.Program, analysis *analyzer.Analysis, target Target) string {
	g := &generator{analysis: analysis, target: target}

	g.emitUses(prog)
	g.emitTraitImports(prog)
	g.emitSmallVecImport(prog)

	for i, item := range prog.Items {
		if _, ok := item.(*ast.UseDecl); ok {
			continue
		}
		if _, ok := item.(*ast.BoundAlias); ok {
			continue
		}
		if i > 0 {
			g.buf.WriteString("\n")
		}
		g.emitItem(item)
	}
	return g.buf.String()
}

func (g *generator) emitUses(prog *ast.Program) {
	wrote := false
	for _, item := range prog.Items {
		use, ok := item.(*ast.UseDecl)
		if !ok {
			continue
		}
		path := strings.ReplaceAll(use.Path, ".", "::")
		if use.Alias != "" {
			g.line("use " + path + " as " + use.Alias + ";")
		} else {
			g.line("use " + path + ";")
		}
		wrote = true
	}
	if wrote {
		g.buf.WriteString("\n")
	}
}

// emitTraitImports inserts the use lines the inferred bounds demand.
func (g *generator) emitTraitImports(prog *ast.Program) {
	needed := make(map[string]bool)
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			g.collectTraitImports(it.Name, needed)
		case *ast.ImplBlock:
			for _, m := range it.Methods {
				g.collectTraitImports(it.TypeName+"."+m.Name, needed)
			}
		}
	}
	if len(needed) == 0 {
		return
	}
	paths := make([]string, 0, len(needed))
	for p := range needed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		g.line("use " + p + ";")
	}
	g.buf.WriteString("\n")
}

// emitSmallVecImport adds the smallvec use line when the escape pass
// rewrote any vec! literal, so the emitted macro resolves.
func (g *generator) emitSmallVecImport(prog *ast.Program) {
	found := false
	ast.Inspect(prog, func(node ast.Node) bool {
		if m, ok := node.(*ast.MacroExpr); ok && m.Name == "smallvec" {
			found = true
		}
		return !found
	})
	if found {
		g.line("use smallvec::{smallvec, SmallVec};")
		g.buf.WriteString("\n")
	}
}

func (g *generator) collectTraitImports(key string, needed map[string]bool) {
	fa, ok := g.analysis.Functions[key]
	if !ok {
		return
	}
	for _, bounds := range fa.Bounds {
		for _, trait := range g.analysis.ExpandBounds(bounds) {
			if path, ok := traitImports[trait]; ok {
				needed[path] = true
			}
		}
	}
}

func (g *generator) emitItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		g.emitFunction(it, "")
	case *ast.StructDecl:
		g.emitStruct(it)
	case *ast.EnumDecl:
		g.emitEnum(it)
	case *ast.TraitDecl:
		g.emitTrait(it)
	case *ast.ImplBlock:
		g.emitImpl(it)
	case *ast.ConstDecl:
		g.line("const " + it.Name + ": " + g.rustType(it.Type) + " = " + g.expr(it.Value) + ";")
	case *ast.StaticDecl:
		kw := "static "
		if it.Mutable {
			kw = "static mut "
		}
		g.line(kw + it.Name + ": " + g.rustType(it.Type) + " = " + g.expr(it.Value) + ";")
	default:
		g.line("/* TODO: unsupported item */")
	}
}

// --- items -----------------------------------------------------------

func (g *generator) emitStruct(s *ast.StructDecl) {
	g.emitDerives(s.Name)
	g.emitItemDecorators(s.Decorators)
	pub := ""
	if s.Decorator("export") != nil {
		pub = "pub "
	}
	g.line(pub + "struct " + s.Name + g.typeParamClause(s.TypeParams) + " {")
	g.indent++
	for _, f := range s.Fields {
		g.line(f.Name + ": " + g.rustType(f.Type) + ",")
	}
	g.indent--
	g.line("}")
}

func (g *generator) emitEnum(e *ast.EnumDecl) {
	g.emitDerives(e.Name)
	g.emitItemDecorators(e.Decorators)
	pub := ""
	if e.Decorator("export") != nil {
		pub = "pub "
	}
	g.line(pub + "enum " + e.Name + g.typeParamClause(e.TypeParams) + " {")
	g.indent++
	for _, v := range e.Variants {
		switch v.Kind {
		case ast.VariantTuple:
			parts := make([]string, len(v.Types))
			for i, t := range v.Types {
				parts[i] = g.rustType(t)
			}
			g.line(v.Name + "(" + strings.Join(parts, ", ") + "),")
		case ast.VariantRecord:
			g.line(v.Name + " {")
			g.indent++
			for _, f := range v.Fields {
				g.line(f.Name + ": " + g.rustType(f.Type) + ",")
			}
			g.indent--
			g.line("},")
		default:
			g.line(v.Name + ",")
		}
	}
	g.indent--
	g.line("}")
}

func (g *generator) emitDerives(name string) {
	derives := g.analysis.Derives[name]
	if len(derives) == 0 {
		return
	}
	g.line("#[derive(" + strings.Join(derives, ", ") + ")]")
}

// emitItemDecorators passes unknown decorators through as attributes.
// The first-class ones (@derive, @auto, @export, @component) are consumed
// by other parts of emission.
func (g *generator) emitItemDecorators(decorators []*ast.Decorator) {
	for _, d := range decorators {
		switch d.Name {
		case "derive", "auto", "export", "component", "test", "async":
			continue
		}
		g.line(g.attribute(d))
	}
}

func (g *generator) attribute(d *ast.Decorator) string {
	if len(d.Args) == 0 {
		return "#[" + d.Name + "]"
	}
	parts := make([]string, len(d.Args))
	for i, arg := range d.Args {
		if arg.Key != "" {
			parts[i] = arg.Key + " = " + g.expr(arg.Value)
		} else {
			parts[i] = g.expr(arg.Value)
		}
	}
	return "#[" + d.Name + "(" + strings.Join(parts, ", ") + ")]"
}

func (g *generator) emitTrait(t *ast.TraitDecl) {
	header := "trait " + t.Name
	if len(t.Supertraits) > 0 {
		header += ": " + strings.Join(t.Supertraits, " + ")
	}
	g.line(header + " {")
	g.indent++
	for _, at := range t.AssocTypes {
		g.line("type " + at.Name + ";")
	}
	for _, m := range t.Methods {
		if m.Body == nil {
			g.line(g.signature(m, t.Name) + ";")
		} else {
			g.emitFunction(m, t.Name)
		}
	}
	g.indent--
	g.line("}")
}

func (g *generator) emitImpl(impl *ast.ImplBlock) {
	header := "impl" + g.typeParamClause(impl.TypeParams) + " "
	if impl.TraitName != "" {
		header += impl.TraitName + " for "
	}
	g.line(header + impl.TypeName + " {")
	g.indent++
	for _, at := range impl.AssocTypes {
		g.line("type " + at.Name + " = " + g.rustType(at.Concrete) + ";")
	}
	prevType, prevFields := g.implType, g.fields
	g.implType = impl.TypeName
	g.fields = g.analysis.Fields[impl.TypeName]
	for i, m := range impl.Methods {
		if i > 0 {
			g.buf.WriteString("\n")
		}
		g.emitFunction(m, impl.TypeName)
	}
	g.implType, g.fields = prevType, prevFields
	g.indent--
	g.line("}")
}

// --- functions -------------------------------------------------------

func (g *generator) emitFunction(fn *ast.FunctionDecl, owner string) {
	fa := g.analysis.Lookup(owner, fn.Name)
	prevFA := g.fa
	g.fa = fa

	for _, d := range fn.Decorators {
		switch d.Name {
		case "test":
			g.line("#[test]")
		case "async", "export", "derive", "auto", "component":
			// async becomes a keyword; export becomes pub and a
			// target attribute; the rest are consumed elsewhere
		default:
			g.line(g.attribute(d))
		}
	}
	if fn.Decorator("export") != nil {
		if attr := g.target.exportAttribute(); attr != "" {
			g.line(attr)
		}
	}

	g.line(g.signature(fn, owner) + " {")
	g.indent++

	prevLocals := g.locals
	g.locals = make(map[string]bool)
	for _, p := range fn.Params {
		g.locals[p.Name] = true
	}
	if fn.Body != nil {
		g.emitBody(fn.Body, fn.ReturnType != nil)
	}
	g.locals = prevLocals

	g.indent--
	g.line("}")
	g.fa = prevFA
}

func (g *generator) signature(fn *ast.FunctionDecl, owner string) string {
	fa := g.analysis.Lookup(owner, fn.Name)

	var sb strings.Builder
	if fn.Decorator("export") != nil && g.target == TargetRust {
		sb.WriteString("pub ")
	}
	if fn.Decorator("async") != nil {
		sb.WriteString("async ")
	}
	sb.WriteString("fn " + fn.Name)
	sb.WriteString(g.boundedTypeParams(fn, fa))
	sb.WriteString("(")

	var parts []string
	if recv := g.receiver(fn, owner, fa); recv != "" {
		parts = append(parts, recv)
	}
	for _, p := range fn.Params {
		if p.Name == "self" {
			continue
		}
		parts = append(parts, p.Name+": "+g.paramType(p, fa))
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(")")
	if fn.ReturnType != nil {
		sb.WriteString(" -> " + g.rustType(fn.ReturnType))
	}
	return sb.String()
}

// receiver renders the self parameter a method needs, whether or not the
// source declared one.
func (g *generator) receiver(fn *ast.FunctionDecl, owner string, fa *analyzer.FunctionAnalysis) string {
	if owner == "" {
		return ""
	}
	if fa != nil && fa.SelfUsage != nil {
		switch fa.SelfUsage.Receiver {
		case analyzer.MutReceiver:
			return "&mut self"
		case analyzer.RefReceiver:
			return "&self"
		default:
			return ""
		}
	}
	if self := fn.SelfParam(); self != nil {
		switch self.Ownership {
		case ast.HintMut:
			return "&mut self"
		case ast.HintOwned:
			return "self"
		default:
			return "&self"
		}
	}
	return ""
}

// paramType applies the inferred ownership mode unless the declared type
// is already a reference.
func (g *generator) paramType(p *ast.Param, fa *analyzer.FunctionAnalysis) string {
	t := g.rustType(p.Type)
	if p.Type != nil && (p.Type.Kind == ast.TypeReference || p.Type.Kind == ast.TypeMutRef) {
		return t
	}
	if fa == nil {
		return t
	}
	switch fa.Ownership[p.Name] {
	case analyzer.Borrowed:
		return "&" + t
	case analyzer.MutBorrowed:
		return "&mut " + t
	}
	return t
}

// boundedTypeParams renders the generic parameter list with the merged
// explicit-plus-inferred bounds, alias-expanded and sorted.
func (g *generator) boundedTypeParams(fn *ast.FunctionDecl, fa *analyzer.FunctionAnalysis) string {
	if len(fn.TypeParams) == 0 {
		return ""
	}
	parts := make([]string, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		var bounds []string
		if fa != nil {
			bounds = g.analysis.ExpandBounds(fa.Bounds[tp.Name])
		} else {
			bounds = g.analysis.ExpandBounds(tp.Bounds)
		}
		sort.Strings(bounds)
		if len(bounds) == 0 {
			parts[i] = tp.Name
		} else {
			parts[i] = tp.Name + ": " + strings.Join(bounds, " + ")
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (g *generator) typeParamClause(params []*ast.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, tp := range params {
		bounds := g.analysis.ExpandBounds(tp.Bounds)
		sort.Strings(bounds)
		if len(bounds) == 0 {
			parts[i] = tp.Name
		} else {
			parts[i] = tp.Name + ": " + strings.Join(bounds, " + ")
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// emitBody writes a function body, inserting defer-drop spawns right
// before the final statement. When the function returns a value, a
// trailing expression statement is the implicit return and keeps no
// semicolon.
func (g *generator) emitBody(body *ast.Block, implicitReturn bool) {
	names := []string(nil)
	if g.fa != nil && g.fa.Hints != nil {
		names = append(names, g.fa.Hints.DeferDrop...)
		sort.Strings(names)
	}
	for i, stmt := range body.Statements {
		if i == len(body.Statements)-1 {
			for _, name := range names {
				g.line("std::thread::spawn(move || drop(" + name + "));")
			}
			if implicitReturn {
				if es, ok := stmt.(*ast.ExprStmt); ok {
					g.line(g.expr(es.Expr))
					continue
				}
			}
		}
		g.emitStmt(stmt)
	}
}

// --- statements ------------------------------------------------------

func (g *generator) emitStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		g.emitLet(s)
	case *ast.ConstStmt:
		g.line("const " + s.Name + ": " + g.rustType(s.Type) + " = " + g.expr(s.Value) + ";")
		g.locals[s.Name] = true
	case *ast.StaticStmt:
		kw := "static "
		if s.Mutable {
			kw = "static mut "
		}
		g.line(kw + s.Name + ": " + g.rustType(s.Type) + " = " + g.expr(s.Value) + ";")
		g.locals[s.Name] = true
	case *ast.AssignStmt:
		g.emitAssign(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			g.line("return " + g.expr(s.Value) + ";")
		} else {
			g.line("return;")
		}
	case *ast.ExprStmt:
		g.line(g.expr(s.Expr) + ";")
	case *ast.IfStmt:
		g.emitIf(s, "if ")
	case *ast.ForStmt:
		g.line("for " + s.Variable + " in " + g.expr(s.Iterable) + " {")
		g.indent++
		shadowed := g.locals[s.Variable]
		g.locals[s.Variable] = true
		g.emitBlockBody(s.Body)
		g.locals[s.Variable] = shadowed
		g.indent--
		g.line("}")
	case *ast.WhileStmt:
		g.line("while " + g.expr(s.Condition) + " {")
		g.indent++
		g.emitBlockBody(s.Body)
		g.indent--
		g.line("}")
	case *ast.LoopStmt:
		g.line("loop {")
		g.indent++
		g.emitBlockBody(s.Body)
		g.indent--
		g.line("}")
	case *ast.GoStmt:
		g.line("std::thread::spawn(move || {")
		g.indent++
		g.emitBlockBody(s.Body)
		g.indent--
		g.line("});")
	case *ast.DeferStmt:
		g.line("/* TODO: defer " + g.expr(s.Expr) + " */")
	case *ast.BreakStmt:
		g.line("break;")
	case *ast.ContinueStmt:
		g.line("continue;")
	case *ast.Block:
		g.line("{")
		g.indent++
		g.emitBlockBody(s)
		g.indent--
		g.line("}")
	default:
		g.line("/* TODO: unsupported statement */")
	}
}

func (g *generator) emitBlockBody(block *ast.Block) {
	for _, stmt := range block.Statements {
		g.emitStmt(stmt)
	}
}

func (g *generator) emitLet(s *ast.LetStmt) {
	mut := ""
	if s.Mutable || (g.fa != nil && g.fa.Mutability != nil && g.fa.Mutability.Upgraded[s.Name]) {
		mut = "mut "
	}
	decl := "let " + mut + s.Name
	if s.Type != nil {
		decl += ": " + g.rustType(s.Type)
	} else if m, ok := s.Value.(*ast.MacroExpr); ok && m.Name == "smallvec" {
		// smallvec! cannot infer its inline capacity from the elements
		decl += ": SmallVec<[_; " + strconv.Itoa(g.inlineCapacity(s.Name, len(m.Args))) + "]>"
	}
	if s.Value != nil {
		decl += " = " + g.expr(s.Value)
	}
	g.line(decl + ";")
	g.locals[s.Name] = true
}

// inlineCapacity picks the SmallVec array size for a rewritten literal:
// the analyzer's hint when one exists, otherwise the element count
// rounded up to a power of two.
func (g *generator) inlineCapacity(name string, elems int) int {
	if g.fa != nil && g.fa.Hints != nil {
		if c := g.fa.Hints.SmallVec[name]; c > 0 {
			return c
		}
	}
	c := 1
	for c < elems {
		c *= 2
	}
	return c
}

func (g *generator) emitAssign(s *ast.AssignStmt) {
	target := g.expr(s.Target)
	if g.fa != nil && g.fa.Hints != nil {
		if op, ok := g.fa.Hints.CompoundAssign[s]; ok {
			if bin, isBin := s.Value.(*ast.BinaryExpr); isBin {
				g.line(target + " " + op.String() + " " + g.expr(bin.Right) + ";")
				return
			}
		}
	}
	g.line(target + " " + s.Op.String() + " " + g.expr(s.Value) + ";")
}

func (g *generator) emitIf(s *ast.IfStmt, prefix string) {
	g.line(prefix + g.expr(s.Condition) + " {")
	g.indent++
	g.emitBlockBody(s.Then)
	g.indent--
	switch e := s.Else.(type) {
	case nil:
		g.line("}")
	case *ast.IfStmt:
		g.emitIf(e, "} else if ")
	case *ast.Block:
		g.line("} else {")
		g.indent++
		g.emitBlockBody(e)
		g.indent--
		g.line("}")
	default:
		g.line("} else {")
		g.indent++
		g.emitStmt(s.Else)
		g.indent--
		g.line("}")
	}
}

// --- expressions -----------------------------------------------------

func (g *generator) expr(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(e.Value, 10)
	case *ast.FloatLit:
		return floatLiteral(e)
	case *ast.BoolLit:
		return strconv.FormatBool(e.Value)
	case *ast.StringLit:
		return g.stringLiteral(e)
	case *ast.Identifier:
		return g.identifier(e.Name)
	case *ast.BinaryExpr:
		return g.binary(e)
	case *ast.UnaryExpr:
		return g.unary(e)
	case *ast.TernaryExpr:
		return "if " + g.expr(e.Condition) + " { " + g.expr(e.Then) + " } else { " + g.expr(e.Else) + " }"
	case *ast.CallExpr:
		return g.call(e)
	case *ast.MethodCallExpr:
		return g.methodCall(e)
	case *ast.FieldAccessExpr:
		return g.fieldAccess(e)
	case *ast.StructLitExpr:
		return g.structLit(e)
	case *ast.RangeExpr:
		if e.Inclusive {
			return g.expr(e.Start) + "..=" + g.expr(e.End)
		}
		return g.expr(e.Start) + ".." + g.expr(e.End)
	case *ast.ClosureExpr:
		return "|" + strings.Join(e.Params, ", ") + "| " + g.closureBody(e)
	case *ast.IndexExpr:
		idx := g.expr(e.Index)
		if _, lit := e.Index.(*ast.IntLit); !lit {
			if _, bin := e.Index.(*ast.BinaryExpr); bin {
				idx = "(" + idx + ")"
			}
			idx += " as usize"
		}
		return g.expr(e.Object) + "[" + idx + "]"
	case *ast.TupleExpr:
		parts := make([]string, len(e.Elements))
		for i, elem := range e.Elements {
			parts[i] = g.expr(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.MacroExpr:
		return g.macro(e)
	case *ast.TryExpr:
		return g.expr(e.Expr) + "?"
	case *ast.AwaitExpr:
		return g.expr(e.Expr) + ".await"
	case *ast.ChannelSendExpr:
		return g.expr(e.Channel) + ".send(" + g.expr(e.Value) + ").unwrap()"
	case *ast.ChannelRecvExpr:
		return g.expr(e.Channel) + ".recv().unwrap()"
	case *ast.CastExpr:
		return g.expr(e.Expr) + " as " + g.rustType(e.Type)
	case *ast.BlockExpr:
		return g.blockExpr(e.Block)
	case *ast.MatchExpr:
		return g.matchExpr(e)
	default:
		return "/* TODO: unsupported expression */"
	}
}

// identifier lifts bare field names to self.<name> inside impl blocks.
func (g *generator) identifier(name string) string {
	if name == "self" {
		return "self"
	}
	if g.implType != "" && g.fields[name] && !g.locals[name] {
		return "self." + name
	}
	return name
}

// closureBody keeps closure parameters from being lifted to self fields.
func (g *generator) closureBody(e *ast.ClosureExpr) string {
	saved := make(map[string]bool, len(e.Params))
	for _, p := range e.Params {
		saved[p] = g.locals[p]
		g.locals[p] = true
	}
	out := g.expr(e.Body)
	for _, p := range e.Params {
		g.locals[p] = saved[p]
	}
	return out
}

func precedence(op ast.BinaryOp) int {
	switch op {
	case ast.Or:
		return 1
	case ast.And:
		return 2
	case ast.BitOr:
		return 3
	case ast.BitXor:
		return 4
	case ast.BitAnd:
		return 5
	case ast.Eq, ast.Ne:
		return 6
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return 7
	case ast.Shl, ast.Shr:
		return 8
	case ast.Add, ast.Sub:
		return 9
	default:
		return 10
	}
}

func (g *generator) binary(e *ast.BinaryExpr) string {
	left := g.operand(e.Left, precedence(e.Op), false)
	right := g.operand(e.Right, precedence(e.Op), true)
	return left + " " + e.Op.String() + " " + right
}

func (g *generator) operand(expr ast.Expression, parent int, rightSide bool) string {
	out := g.expr(expr)
	switch child := expr.(type) {
	case *ast.BinaryExpr:
		cp := precedence(child.Op)
		if cp < parent || (cp == parent && rightSide) {
			return "(" + out + ")"
		}
	case *ast.TernaryExpr, *ast.RangeExpr, *ast.ClosureExpr:
		return "(" + out + ")"
	}
	return out
}

func (g *generator) unary(e *ast.UnaryExpr) string {
	operand := g.expr(e.Operand)
	if _, ok := e.Operand.(*ast.BinaryExpr); ok {
		operand = "(" + operand + ")"
	}
	switch e.Op {
	case ast.Neg:
		return "-" + operand
	case ast.Not:
		return "!" + operand
	case ast.Ref:
		return "&" + operand
	case ast.MutRef:
		return "&mut " + operand
	case ast.Deref:
		return "*" + operand
	}
	return operand
}

// call renders a plain function call with call-site ownership adjustment:
// arguments to borrowed slots get &, arguments to mutably borrowed slots
// get &mut, unless the source already passes a reference.
func (g *generator) call(e *ast.CallExpr) string {
	return g.identifier(e.Function) + g.adjustedArgs(e.Function, e.Args)
}

// adjustedArgs renders an argument list with the same call-site ownership
// adjustment as call, using the named callee's registered modes. An empty
// or unknown callee leaves every argument as written.
func (g *generator) adjustedArgs(callee string, args []*ast.Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		rendered := g.expr(arg.Value)
		if mode, ok := g.analysis.Registry.Mode(callee, i); ok && !isReference(arg.Value) {
			switch mode {
			case analyzer.Borrowed:
				rendered = "&" + rendered
			case analyzer.MutBorrowed:
				rendered = "&mut " + rendered
			}
		}
		parts[i] = rendered
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func isReference(expr ast.Expression) bool {
	u, ok := expr.(*ast.UnaryExpr)
	return ok && (u.Op == ast.Ref || u.Op == ast.MutRef)
}

func (g *generator) methodCall(e *ast.MethodCallExpr) string {
	// bare turbofish: f::<T>(args)
	if e.Method == "" {
		callee := ""
		if id, ok := e.Object.(*ast.Identifier); ok {
			callee = id.Name
		}
		return g.expr(e.Object) + g.turbofish(e.TypeArgs) + g.adjustedArgs(callee, e.Args)
	}
	// clone elision
	if e.Method == "clone" && len(e.Args) == 0 && g.fa != nil && g.fa.Hints != nil {
		if id, ok := e.Object.(*ast.Identifier); ok && g.fa.Hints.CloneElim[id.Name] {
			return g.identifier(id.Name)
		}
	}
	recv, sep := g.receiverPath(e.Object)
	return recv + sep + e.Method + g.turbofish(e.TypeArgs) + g.adjustedArgs(g.methodKey(e), e.Args)
}

// methodKey resolves the registry name for a method call site: the full
// path for associated calls, the enclosing impl type for self calls, and
// the bare method name for every other value receiver.
func (g *generator) methodKey(e *ast.MethodCallExpr) string {
	if path, ok := dottedPath(e.Object); ok {
		first := path[0]
		switch {
		case isUpper(first) || crateRoots[first]:
			return strings.Join(append(path, e.Method), ".")
		case first == "self" && len(path) == 1 && g.implType != "":
			return g.implType + "." + e.Method
		}
	}
	return e.Method
}

// receiverPath picks :: for type and module receivers and . for values.
func (g *generator) receiverPath(obj ast.Expression) (string, string) {
	if path, ok := dottedPath(obj); ok {
		first := path[0]
		if isUpper(first) || crateRoots[first] {
			return strings.Join(path, "::"), "::"
		}
	}
	return g.expr(obj), "."
}

func dottedPath(expr ast.Expression) ([]string, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return []string{e.Name}, true
	case *ast.FieldAccessExpr:
		if head, ok := dottedPath(e.Object); ok {
			return append(head, e.Field), true
		}
	}
	return nil, false
}

func isUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

func (g *generator) turbofish(args []*ast.Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, t := range args {
		parts[i] = g.rustType(t)
	}
	return "::<" + strings.Join(parts, ", ") + ">"
}

func (g *generator) fieldAccess(e *ast.FieldAccessExpr) string {
	if path, ok := dottedPath(e); ok {
		first := path[0]
		if isUpper(first) || crateRoots[first] {
			return strings.Join(path, "::")
		}
	}
	return g.expr(e.Object) + "." + e.Field
}

func (g *generator) structLit(e *ast.StructLitExpr) string {
	var parts []string
	for _, f := range e.Fields {
		value := g.expr(f.Value)
		if f.Shorthand && value == f.Name {
			parts = append(parts, f.Name)
		} else {
			parts = append(parts, f.Name+": "+value)
		}
	}
	if e.Spread != nil {
		parts = append(parts, ".."+g.expr(e.Spread))
	}
	if len(parts) == 0 {
		return e.Name + " {}"
	}
	return e.Name + " { " + strings.Join(parts, ", ") + " }"
}

func (g *generator) macro(e *ast.MacroExpr) string {
	openDelim, closeDelim := "(", ")"
	switch e.Delim {
	case ast.BracketDelim:
		openDelim, closeDelim = "[", "]"
	case ast.BraceDelim:
		openDelim, closeDelim = "{", "}"
	}
	args := make([]string, 0, len(e.Args))
	if formatMacros[e.Name] && len(e.Args) > 0 {
		if lit, ok := e.Args[0].(*ast.StringLit); ok {
			format, extracted := g.lowerInterpolation(lit.Value)
			args = append(args, quoteString(format))
			args = append(args, extracted...)
			for _, rest := range e.Args[1:] {
				args = append(args, g.expr(rest))
			}
			return e.Name + "!" + openDelim + strings.Join(args, ", ") + closeDelim
		}
	}
	for _, arg := range e.Args {
		args = append(args, g.expr(arg))
	}
	return e.Name + "!" + openDelim + strings.Join(args, ", ") + closeDelim
}

// stringLiteral lowers interpolated literals to a format! call; plain
// literals emit as-is.
func (g *generator) stringLiteral(e *ast.StringLit) string {
	format, args := g.lowerInterpolation(e.Value)
	if len(args) == 0 {
		return quoteString(e.Value)
	}
	return "format!(" + quoteString(format) + ", " + strings.Join(args, ", ") + ")"
}

// lowerInterpolation replaces {ident} placeholders with {} and collects
// the identifiers as rendered arguments. {} and {:spec} placeholders pass
// through untouched; {{ escapes.
func (g *generator) lowerInterpolation(s string) (string, []string) {
	var out strings.Builder
	var args []string
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '{' {
			out.WriteByte(c)
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			out.WriteString("{{")
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			out.WriteByte(c)
			continue
		}
		inner := s[i+1 : i+end]
		if isIdent(inner) {
			args = append(args, g.identifier(inner))
			out.WriteString("{}")
		} else {
			out.WriteString(s[i : i+end+1])
		}
		i += end
	}
	return out.String(), args
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func quoteString(s string) string {
	return strconv.Quote(s)
}

func (g *generator) blockExpr(block *ast.Block) string {
	sub := &generator{
		analysis: g.analysis,
		target:   g.target,
		implType: g.implType,
		fields:   g.fields,
		fa:       g.fa,
		locals:   g.locals,
		indent:   g.indent + 1,
	}
	sub.emitBlockBody(block)
	body := sub.buf.String()
	// the trailing expression statement is the block's value, so its
	// semicolon comes off
	body = strings.TrimRight(body, "\n")
	if strings.HasSuffix(body, ";") {
		body = body[:len(body)-1]
	}
	return "{\n" + body + "\n" + strings.Repeat("    ", g.indent) + "}"
}

func (g *generator) matchExpr(e *ast.MatchExpr) string {
	var sb strings.Builder
	sb.WriteString("match " + g.expr(e.Scrutinee) + " {\n")
	inner := strings.Repeat("    ", g.indent+1)
	for _, arm := range e.Arms {
		sb.WriteString(inner + g.pattern(arm.Pattern))
		if arm.Guard != nil {
			sb.WriteString(" if " + g.expr(arm.Guard))
		}
		saved := g.bindPattern(arm.Pattern)
		sb.WriteString(" => " + g.expr(arm.Body) + ",\n")
		g.unbindPattern(saved)
	}
	sb.WriteString(strings.Repeat("    ", g.indent) + "}")
	return sb.String()
}

// bindPattern marks pattern bindings as locals for the arm body so they
// are not lifted to self fields; unbindPattern restores the previous
// state.
func (g *generator) bindPattern(p *ast.Pattern) map[string]bool {
	saved := make(map[string]bool)
	var walk func(*ast.Pattern)
	walk = func(p *ast.Pattern) {
		if p == nil {
			return
		}
		if p.Kind == ast.IdentPattern && p.Name != "_" {
			saved[p.Name] = g.locals[p.Name]
			g.locals[p.Name] = true
		}
		if p.Binding != "" {
			saved[p.Binding] = g.locals[p.Binding]
			g.locals[p.Binding] = true
		}
		for _, elem := range p.Elements {
			walk(elem)
		}
	}
	walk(p)
	return saved
}

func (g *generator) unbindPattern(saved map[string]bool) {
	for name, was := range saved {
		g.locals[name] = was
	}
}

func (g *generator) pattern(p *ast.Pattern) string {
	switch p.Kind {
	case ast.WildcardPattern:
		return "_"
	case ast.IdentPattern:
		return p.Name
	case ast.VariantPattern:
		name := strings.ReplaceAll(p.Name, ".", "::")
		if p.Binding != "" {
			return name + "(" + p.Binding + ")"
		}
		return name
	case ast.LiteralPattern:
		return g.expr(p.Literal)
	case ast.TuplePattern:
		parts := make([]string, len(p.Elements))
		for i, elem := range p.Elements {
			parts[i] = g.pattern(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ast.OrPattern:
		parts := make([]string, len(p.Elements))
		for i, elem := range p.Elements {
			parts[i] = g.pattern(elem)
		}
		return strings.Join(parts, " | ")
	}
	return "_"
}

// --- types -----------------------------------------------------------

func (g *generator) rustType(t *ast.Type) string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case ast.TypeInt:
		return "i64"
	case ast.TypeInt32:
		return "i32"
	case ast.TypeUint:
		return "u64"
	case ast.TypeFloat:
		return "f64"
	case ast.TypeBool:
		return "bool"
	case ast.TypeString:
		return "String"
	case ast.TypeCustom, ast.TypeGeneric:
		return strings.ReplaceAll(t.Name, ".", "::")
	case ast.TypeAssociated:
		return t.Name + "::" + t.Assoc
	case ast.TypeTraitObject:
		return "Box<dyn " + t.Name + ">"
	case ast.TypeParameterized:
		return strings.ReplaceAll(t.Name, ".", "::") + "<" + g.typeList(t.Args) + ">"
	case ast.TypeOption:
		return "Option<" + g.rustType(t.Args[0]) + ">"
	case ast.TypeResult:
		return "Result<" + g.typeList(t.Args) + ">"
	case ast.TypeVec:
		return "Vec<" + g.rustType(t.Args[0]) + ">"
	case ast.TypeReference:
		// a reference to a trait object is already indirect, no re-boxing
		if elem := t.Args[0]; elem != nil && elem.Kind == ast.TypeTraitObject {
			return "&dyn " + elem.Name
		}
		return "&" + g.rustType(t.Args[0])
	case ast.TypeMutRef:
		if elem := t.Args[0]; elem != nil && elem.Kind == ast.TypeTraitObject {
			return "&mut dyn " + elem.Name
		}
		return "&mut " + g.rustType(t.Args[0])
	case ast.TypeTuple:
		return "(" + g.typeList(t.Args) + ")"
	}
	return "/* TODO: unsupported type */ ()"
}

func (g *generator) typeList(ts []*ast.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = g.rustType(t)
	}
	return strings.Join(parts, ", ")
}

func floatLiteral(e *ast.FloatLit) string {
	if e.Raw != "" {
		return e.Raw
	}
	s := strconv.FormatFloat(e.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// --- writer ----------------------------------------------------------

func (g *generator) line(s string) {
	g.buf.WriteString(strings.Repeat("    ", g.indent))
	g.buf.WriteString(s)
	g.buf.WriteString("\n")
}
