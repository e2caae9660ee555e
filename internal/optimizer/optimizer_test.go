package optimizer

import (
	"testing"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse failed: %s", p.Diagnostics().Format("test.wj"))
	}
	return prog
}

func firstFunction(t *testing.T, prog *ast.Program) *ast.FunctionDecl {
	t.Helper()
	for _, item := range prog.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok {
			return fn
		}
	}
	t.Fatal("no function in program")
	return nil
}

func TestFold_ArithmeticChain(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Int {
    let x = 2 * 3 + 4
    return x
}`)
	stats := &Stats{}
	folded := FoldProgram(prog, stats)

	fn := firstFunction(t, folded)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.IntLit)
	if !ok {
		t.Fatalf("expected a folded literal, got %T", let.Value)
	}
	if lit.Value != 10 {
		t.Errorf("expected 10, got %d", lit.Value)
	}
	if stats.FoldedExpressions != 2 {
		t.Errorf("expected 2 folded expressions, got %d", stats.FoldedExpressions)
	}
}

func TestFold_DivisionByZeroUntouched(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Int {
    return 10 / 0
}`)
	stats := &Stats{}
	folded := FoldProgram(prog, stats)

	fn := firstFunction(t, folded)
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Fatalf("division by a literal zero must not fold, got %T", ret.Value)
	}
	if stats.FoldedExpressions != 0 {
		t.Errorf("expected 0 folded expressions, got %d", stats.FoldedExpressions)
	}
}

func TestFold_LiteralIfCollapses(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Int {
    if true {
        return 1
    } else {
        return 2
    }
}`)
	stats := &Stats{}
	folded := FoldProgram(prog, stats)

	fn := firstFunction(t, folded)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected the taken branch only, got %d statements", len(fn.Body.Statements))
	}
	ret, ok := fn.Body.Statements[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected return, got %T", fn.Body.Statements[0])
	}
	if lit := ret.Value.(*ast.IntLit); lit.Value != 1 {
		t.Errorf("expected the true branch, got %d", lit.Value)
	}
	if stats.CollapsedBranches != 1 {
		t.Errorf("expected 1 collapsed branch, got %d", stats.CollapsedBranches)
	}
}

func TestFold_FalseIfWithoutElseDisappears(t *testing.T) {
	prog := parseSource(t, `
fn f() {
    if 1 > 2 {
        work()
    }
    done()
}`)
	stats := &Stats{}
	folded := FoldProgram(prog, stats)

	fn := firstFunction(t, folded)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected only done(), got %d statements", len(fn.Body.Statements))
	}
}

func TestFold_TernaryCollapses(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Int {
    let x = false ? 1 : 2
    return x
}`)
	stats := &Stats{}
	folded := FoldProgram(prog, stats)

	fn := firstFunction(t, folded)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	if lit := let.Value.(*ast.IntLit); lit.Value != 2 {
		t.Errorf("expected the else arm, got %d", lit.Value)
	}
}

func TestFold_StringConcat(t *testing.T) {
	prog := parseSource(t, `
fn f() -> String {
    return "ab" + "cd"
}`)
	folded := FoldProgram(prog, &Stats{})

	fn := firstFunction(t, folded)
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	lit, ok := ret.Value.(*ast.StringLit)
	if !ok || lit.Value != "abcd" {
		t.Errorf("expected folded string, got %#v", ret.Value)
	}
}

func TestDCE_RemovesUnreferencedFunction(t *testing.T) {
	prog := parseSource(t, `
fn helper() -> Int {
    return 1
}

fn orphan() -> Int {
    return 2
}

fn main() {
    let x = helper()
}`)
	stats := &Stats{}
	out := EliminateDeadCode(prog, stats)

	if len(out.Items) != 2 {
		t.Fatalf("expected helper and main to survive, got %d items", len(out.Items))
	}
	if stats.RemovedItems != 1 {
		t.Errorf("expected 1 removed item, got %d", stats.RemovedItems)
	}
	for _, item := range out.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok && fn.Name == "orphan" {
			t.Error("orphan should be removed")
		}
	}
}

func TestDCE_DecoratedItemsAreRoots(t *testing.T) {
	prog := parseSource(t, `
@test
fn check_math() {
    assert_eq!(1, 1)
}

fn main() {}`)
	stats := &Stats{}
	out := EliminateDeadCode(prog, stats)

	if len(out.Items) != 2 {
		t.Fatalf("decorated functions must survive, got %d items", len(out.Items))
	}
}

func TestDCE_KeepsImplOfLiveType(t *testing.T) {
	prog := parseSource(t, `
struct Counter {
    n: Int,
}

impl Counter {
    fn bump(&mut self) {
        self.n += 1
    }
}

fn main() {
    let c = Counter { n: 0 }
}`)
	stats := &Stats{}
	out := EliminateDeadCode(prog, stats)

	if len(out.Items) != 3 {
		t.Fatalf("the struct and its impl must survive, got %d items", len(out.Items))
	}
}

func TestDCE_DropsStatementsAfterReturn(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let x = 1
    return
    let y = 2
    let z = 3
}`)
	stats := &Stats{}
	out := EliminateDeadCode(prog, stats)

	fn := firstFunction(t, out)
	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected 2 live statements, got %d", len(fn.Body.Statements))
	}
	if stats.RemovedStatements != 2 {
		t.Errorf("expected 2 removed statements, got %d", stats.RemovedStatements)
	}
}

func TestUnroll_LiteralRange(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    for i in 0..3 {
        emit(i)
    }
}`)
	stats := &Stats{}
	out := OptimizeLoops(prog, 8, stats)

	fn := firstFunction(t, out)
	if len(fn.Body.Statements) != 3 {
		t.Fatalf("expected 3 unrolled copies, got %d", len(fn.Body.Statements))
	}
	for i, stmt := range fn.Body.Statements {
		call := stmt.(*ast.ExprStmt).Expr.(*ast.CallExpr)
		lit, ok := call.Args[0].Value.(*ast.IntLit)
		if !ok || lit.Value != int64(i) {
			t.Errorf("copy %d - expected literal %d, got %#v", i, i, call.Args[0].Value)
		}
	}
	if stats.UnrolledLoops != 1 {
		t.Errorf("expected 1 unrolled loop, got %d", stats.UnrolledLoops)
	}
}

func TestUnroll_InclusiveRangeCountsEnd(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    for i in 1..=3 {
        emit(i)
    }
}`)
	out := OptimizeLoops(prog, 8, &Stats{})

	fn := firstFunction(t, out)
	if len(fn.Body.Statements) != 3 {
		t.Fatalf("expected 3 copies for 1..=3, got %d", len(fn.Body.Statements))
	}
}

func TestUnroll_RespectsCeiling(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    for i in 0..100 {
        emit(i)
    }
}`)
	stats := &Stats{}
	out := OptimizeLoops(prog, 8, stats)

	fn := firstFunction(t, out)
	if _, ok := fn.Body.Statements[0].(*ast.ForStmt); !ok {
		t.Fatal("a 100-iteration loop must stay a loop")
	}
	if stats.UnrolledLoops != 0 {
		t.Errorf("expected 0 unrolled loops, got %d", stats.UnrolledLoops)
	}
}

func TestUnroll_SkipsBreak(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    for i in 0..3 {
        if ready() {
            break
        }
        emit(i)
    }
}`)
	out := OptimizeLoops(prog, 8, &Stats{})

	fn := firstFunction(t, out)
	if _, ok := fn.Body.Statements[0].(*ast.ForStmt); !ok {
		t.Fatal("a loop containing break must not unroll")
	}
}

func TestLICM_HoistsInvariantBinding(t *testing.T) {
	prog := parseSource(t, `
fn f(n: Int, scale: Int) {
    for i in 0..n {
        let factor = scale * 2
        emit(i * factor)
    }
}`)
	stats := &Stats{}
	out := OptimizeLoops(prog, 8, stats)

	fn := firstFunction(t, out)
	let, ok := fn.Body.Statements[0].(*ast.LetStmt)
	if !ok || let.Name != "factor" {
		t.Fatalf("expected factor hoisted before the loop, got %T", fn.Body.Statements[0])
	}
	loop := fn.Body.Statements[1].(*ast.ForStmt)
	if len(loop.Body.Statements) != 1 {
		t.Errorf("expected 1 statement left in the loop, got %d", len(loop.Body.Statements))
	}
	if stats.HoistedBindings != 1 {
		t.Errorf("expected 1 hoisted binding, got %d", stats.HoistedBindings)
	}
}

func TestLICM_LoopVariableBlocksHoist(t *testing.T) {
	prog := parseSource(t, `
fn f(n: Int) {
    for i in 0..n {
        let doubled = i * 2
        emit(doubled)
    }
}`)
	stats := &Stats{}
	out := OptimizeLoops(prog, 8, stats)

	fn := firstFunction(t, out)
	if _, ok := fn.Body.Statements[0].(*ast.ForStmt); !ok {
		t.Fatal("a binding that reads the loop variable must stay inside")
	}
	if stats.HoistedBindings != 0 {
		t.Errorf("expected 0 hoisted bindings, got %d", stats.HoistedBindings)
	}
}

func TestEscape_RewritesLocalVec(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Int {
    let v = vec![1, 2, 3]
    let total = v.len()
    return total
}`)
	stats := &Stats{}
	out := RewriteEscapes(prog, 8, stats)

	fn := firstFunction(t, out)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	macro := let.Value.(*ast.MacroExpr)
	if macro.Name != "smallvec" {
		t.Errorf("expected smallvec rewrite, got %q", macro.Name)
	}
	if stats.SmallVecRewrites != 1 {
		t.Errorf("expected 1 rewrite, got %d", stats.SmallVecRewrites)
	}
}

func TestEscape_ReturnedVecStaysHeap(t *testing.T) {
	prog := parseSource(t, `
fn f() -> Vec<Int> {
    let v = vec![1, 2, 3]
    return v
}`)
	stats := &Stats{}
	out := RewriteEscapes(prog, 8, stats)

	fn := firstFunction(t, out)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	if macro := let.Value.(*ast.MacroExpr); macro.Name != "vec" {
		t.Errorf("an escaping vec must stay vec!, got %q", macro.Name)
	}
}

func TestEscape_CallArgumentBlocksRewrite(t *testing.T) {
	prog := parseSource(t, `
fn f() {
    let list = vec![1]
    add(list, 3)
}

fn add(v: Vec<Int>, n: Int) {
    v.push(n)
}`)
	stats := &Stats{}
	out := RewriteEscapes(prog, 8, stats)

	fn := firstFunction(t, out)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	if macro := let.Value.(*ast.MacroExpr); macro.Name != "vec" {
		t.Errorf("a vec passed to a callee must stay vec!, got %q", macro.Name)
	}
	if stats.SmallVecRewrites != 0 {
		t.Errorf("expected 0 rewrites, got %d", stats.SmallVecRewrites)
	}
}

func TestOptimize_PipelineStats(t *testing.T) {
	prog := parseSource(t, `
fn orphan() {}

fn main() {
    let x = 2 + 3
    for i in 0..2 {
        emit(i)
    }
    println!("done")
    println!("done")
}`)
	out, stats := Optimize(prog, DefaultOptions())

	if stats.FoldedExpressions != 1 {
		t.Errorf("expected 1 folded expression, got %d", stats.FoldedExpressions)
	}
	if stats.RemovedItems != 1 {
		t.Errorf("expected orphan removed, got %d", stats.RemovedItems)
	}
	if stats.UnrolledLoops != 1 {
		t.Errorf("expected 1 unrolled loop, got %d", stats.UnrolledLoops)
	}
	if stats.InterningCandidates != 1 {
		t.Errorf("expected the repeated literal counted, got %d", stats.InterningCandidates)
	}
	if len(out.Items) != 1 {
		t.Errorf("expected only main to survive, got %d items", len(out.Items))
	}
}

func TestOptimize_DisabledPassesDoNothing(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let x = 2 + 3
}`)
	opts := Options{}
	out, stats := Optimize(prog, opts)

	fn := firstFunction(t, out)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	if _, ok := let.Value.(*ast.BinaryExpr); !ok {
		t.Error("folding is disabled, the expression must survive")
	}
	if stats.FoldedExpressions != 0 {
		t.Errorf("expected 0 folded expressions, got %d", stats.FoldedExpressions)
	}
}
