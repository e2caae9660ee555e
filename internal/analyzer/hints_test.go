package analyzer

import (
	"testing"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

func produceFor(t *testing.T, src string) (*ast.FunctionDecl, *FunctionHints) {
	t.Helper()
	prog := parseSource(t, src)
	fn := firstFunction(t, prog)
	ownership := InferOwnership(fn, NewRegistry())
	return fn, ProduceHints(fn, ownership)
}

func TestHints_CloneElimOnLastUse(t *testing.T) {
	_, hints := produceFor(t, `
fn f() {
    let s = build()
    let t = s.clone()
    consume(t)
}`)
	if !hints.CloneElim["s"] {
		t.Error("s.clone() is the last use of s and should be elided")
	}
}

func TestHints_CloneKeptWhenUsedLater(t *testing.T) {
	_, hints := produceFor(t, `
fn f() {
    let s = build()
    let t = s.clone()
    consume(t)
    consume(s)
}`)
	if hints.CloneElim["s"] {
		t.Error("s is used after the clone, elision is unsound")
	}
}

func TestHints_CloneKeptForBorrowedParam(t *testing.T) {
	_, hints := produceFor(t, `
fn f(s: String) {
    let t = s.clone()
    consume(t)
}`)
	if hints.CloneElim["s"] {
		t.Error("a borrowed parameter cannot donate its value")
	}
}

func TestHints_CompoundAssignRewrite(t *testing.T) {
	fn, hints := produceFor(t, `
fn f() {
    let mut total = 0
    total = total + 5
}`)
	if len(hints.CompoundAssign) != 1 {
		t.Fatalf("expected 1 compound-assign hint, got %d", len(hints.CompoundAssign))
	}
	assign := fn.Body.Statements[1].(*ast.AssignStmt)
	if op, ok := hints.CompoundAssign[assign]; !ok || op != ast.AddAssign {
		t.Errorf("expected += rewrite, got %v", op)
	}
}

func TestHints_CompoundAssignNotForOtherVar(t *testing.T) {
	_, hints := produceFor(t, `
fn f() {
    let mut a = 0
    let b = 1
    a = b + 5
}`)
	if len(hints.CompoundAssign) != 0 {
		t.Error("a = b + 5 must not rewrite to a compound assignment")
	}
}

func TestHints_SmallVecForNonEscaping(t *testing.T) {
	_, hints := produceFor(t, `
fn f() -> Int {
    let v = vec![1, 2, 3]
    return 0
}`)
	if cap, ok := hints.SmallVec["v"]; !ok || cap != 4 {
		t.Errorf("expected inline capacity 4 (3 rounded up), got %d", cap)
	}
}

func TestHints_SmallVecSkipsEscaping(t *testing.T) {
	_, hints := produceFor(t, `
fn f() -> Vec<Int> {
    let v = vec![1, 2, 3]
    return v
}`)
	if _, ok := hints.SmallVec["v"]; ok {
		t.Error("a returned vec escapes and must not become SmallVec")
	}
}

func TestHints_SmallVecSkipsCallArgument(t *testing.T) {
	_, hints := produceFor(t, `
fn f() {
    let v = vec![1, 2, 3]
    add(v, 3)
}`)
	if _, ok := hints.SmallVec["v"]; ok {
		t.Error("a vec passed to a callee crosses a typed boundary and must stay Vec")
	}
}

func TestHints_MapStrategies(t *testing.T) {
	_, hints := produceFor(t, `
fn f(src: Profile) {
    let a = Profile { name: src.name, age: src.age }
    let b = Summary { name: src.name, age: src.age, tag: fresh() }
    let c = Record { id: make_id(), tag: fresh() }
}`)
	if hints.MapStrategy["Profile"] != FromImpl {
		t.Errorf("all fields verbatim - expected from, got %v", hints.MapStrategy["Profile"])
	}
	if hints.MapStrategy["Summary"] != Spread {
		t.Errorf("majority verbatim - expected spread, got %v", hints.MapStrategy["Summary"])
	}
	if hints.MapStrategy["Record"] != FieldByField {
		t.Errorf("no verbatim fields - expected field-by-field, got %v", hints.MapStrategy["Record"])
	}
}

func TestHints_StringCapacity(t *testing.T) {
	fn, hints := produceFor(t, `
fn f(n: Int) {
    let s = format!("count is {}", n)
}`)
	var macro *ast.MacroExpr
	ast.Inspect(fn.Body, func(node ast.Node) bool {
		if m, ok := node.(*ast.MacroExpr); ok {
			macro = m
		}
		return true
	})
	cap, ok := hints.StringCapacity[macro]
	if !ok {
		t.Fatal("expected a capacity hint for a bounded format call")
	}
	if cap != len("count is ") {
		t.Errorf("expected %d literal bytes, got %d", len("count is "), cap)
	}
}

func TestHints_StringCapacitySkipsUnbounded(t *testing.T) {
	_, hints := produceFor(t, `
fn f(name: String) {
    let s = format!("hello {}", name)
}`)
	if len(hints.StringCapacity) != 0 {
		t.Error("String arguments render unbounded, no capacity hint")
	}
}

func TestHints_DeferDropForLoopGrownCollection(t *testing.T) {
	_, hints := produceFor(t, `
fn f(n: Int) -> Int {
    let mut v: Vec<Int> = vec![]
    for i in 0..n {
        v.push(i)
    }
    let total = v.len()
    return total
}`)
	if len(hints.DeferDrop) != 1 || hints.DeferDrop[0] != "v" {
		t.Errorf("expected defer-drop for v, got %v", hints.DeferDrop)
	}
}

func TestHints_DeferDropSkipsValueUsedAtEnd(t *testing.T) {
	_, hints := produceFor(t, `
fn f(n: Int) -> Vec<Int> {
    let mut v: Vec<Int> = vec![]
    for i in 0..n {
        v.push(i)
    }
    return v
}`)
	if len(hints.DeferDrop) != 0 {
		t.Errorf("v is used in the final statement, got %v", hints.DeferDrop)
	}
}

func TestHints_CowForConditionalWrites(t *testing.T) {
	_, hints := produceFor(t, `
fn normalize(text: String, strict: Bool) {
    let length = text.len()
    if strict {
        text.push_str("!")
    }
}`)
	if !hints.Cow["text"] {
		t.Error("a conditionally modified parameter should get a Cow hint")
	}
}

func TestHints_NoCowForUnconditionalWrites(t *testing.T) {
	_, hints := produceFor(t, `
fn stamp(text: String) {
    text.push_str("!")
}`)
	if hints.Cow["text"] {
		t.Error("an always-modified parameter must not get a Cow hint")
	}
}
