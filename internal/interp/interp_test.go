package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/parser"
)

func parseProgram(t *testing.T, src string) *Interpreter {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse failed: %s", p.Diagnostics().Format("test.wj"))
	}
	return New(prog, &bytes.Buffer{})
}

func runSource(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse failed: %s", p.Diagnostics().Format("test.wj"))
	}
	var out bytes.Buffer
	if _, err := New(prog, &out).Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out.String()
}

func runError(t *testing.T, src string) error {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse failed: %s", p.Diagnostics().Format("test.wj"))
	}
	_, err := New(prog, &bytes.Buffer{}).Run()
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	return err
}

func wantOutput(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("output mismatch\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRun_Arithmetic(t *testing.T) {
	out := runSource(t, `
fn main() {
    let x = 2 + 3 * 4
    println!("{}", x)
}`)
	wantOutput(t, out, "14\n")
}

func TestRun_StringInterpolation(t *testing.T) {
	out := runSource(t, `
fn main() {
    let name = "world"
    println!("hello {name}")
}`)
	wantOutput(t, out, "hello world\n")
}

func TestRun_FunctionReturn(t *testing.T) {
	out := runSource(t, `
fn add(a: Int, b: Int) -> Int {
    return a + b
}

fn main() {
    println!("{}", add(2, 3))
}`)
	wantOutput(t, out, "5\n")
}

func TestRun_TrailingExpressionIsValue(t *testing.T) {
	out := runSource(t, `
fn double(n: Int) -> Int {
    n * 2
}

fn main() {
    println!("{}", double(21))
}`)
	wantOutput(t, out, "42\n")
}

func TestRun_Recursion(t *testing.T) {
	out := runSource(t, `
fn fib(n: Int) -> Int {
    if n < 2 {
        return n
    }
    return fib(n - 1) + fib(n - 2)
}

fn main() {
    println!("{}", fib(10))
}`)
	wantOutput(t, out, "55\n")
}

func TestRun_ForLoopAndRange(t *testing.T) {
	out := runSource(t, `
fn main() {
    let mut total = 0
    for i in 1..=4 {
        total += i
    }
    println!("{}", total)
}`)
	wantOutput(t, out, "10\n")
}

func TestRun_BreakAndContinue(t *testing.T) {
	out := runSource(t, `
fn main() {
    let mut total = 0
    for i in 0..10 {
        if i == 3 {
            continue
        }
        if i == 5 {
            break
        }
        total += i
    }
    println!("{}", total)
}`)
	// 0 + 1 + 2 + 4
	wantOutput(t, out, "7\n")
}

func TestRun_WhileLoop(t *testing.T) {
	out := runSource(t, `
fn main() {
    let mut n = 1
    while n < 100 {
        n = n * 2
    }
    println!("{}", n)
}`)
	wantOutput(t, out, "128\n")
}

func TestRun_VecOperations(t *testing.T) {
	out := runSource(t, `
fn main() {
    let mut v = vec![1, 2, 3]
    v.push(4)
    println!("{}", v.len())
    println!("{}", v[2])
}`)
	wantOutput(t, out, "4\n3\n")
}

func TestRun_MethodMutatesReceiver(t *testing.T) {
	out := runSource(t, `
struct Counter {
    n: Int,
}

impl Counter {
    fn bump() {
        n += 1
    }

    fn value() -> Int {
        return n
    }
}

fn main() {
    let mut c = Counter { n: 0 }
    c.bump()
    c.bump()
    println!("{}", c.value())
}`)
	wantOutput(t, out, "2\n")
}

func TestRun_MutatingArgumentVisibleInCaller(t *testing.T) {
	out := runSource(t, `
fn fill(v: Vec<Int>) {
    v.push(7)
}

fn main() {
    let mut list = vec![]
    fill(list)
    println!("{}", list.len())
}`)
	wantOutput(t, out, "1\n")
}

func TestRun_EnumMatch(t *testing.T) {
	out := runSource(t, `
enum Shape {
    Point,
    Circle(Float),
}

fn area(s: Shape) -> Float {
    return match s {
        Shape.Point => 0.0,
        Shape.Circle(r) => r * r,
    }
}

fn main() {
    println!("{}", area(Shape.Circle(2.0)))
    println!("{}", area(Shape.Point))
}`)
	wantOutput(t, out, "4.0\n0.0\n")
}

func TestRun_MatchGuard(t *testing.T) {
	out := runSource(t, `
fn classify(n: Int) -> String {
    return match n {
        0 => "zero",
        x if x < 0 => "negative",
        _ => "positive",
    }
}

fn main() {
    println!("{}", classify(0))
    println!("{}", classify(-3))
    println!("{}", classify(9))
}`)
	wantOutput(t, out, "zero\nnegative\npositive\n")
}

func TestRun_Closure(t *testing.T) {
	out := runSource(t, `
fn main() {
    let offset = 10
    let shift = |x| x + offset
    println!("{}", shift(5))
}`)
	wantOutput(t, out, "15\n")
}

func TestRun_OptionAndTry(t *testing.T) {
	out := runSource(t, `
fn last(v: Vec<Int>) -> Int {
    let x = v.pop()?
    return x
}

fn main() {
    let mut v = vec![7]
    println!("{}", last(v))
}`)
	wantOutput(t, out, "7\n")
}

func TestRun_TryPropagatesNone(t *testing.T) {
	src := `
fn last(v: Vec<Int>) -> Int {
    let x = v.pop()?
    return x
}`
	in := parseProgram(t, src)
	v, err := in.Call("last", []Value{&ListValue{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	ev, ok := v.(*EnumValue)
	if !ok || ev.Variant != "None" {
		t.Errorf("expected None, got %s", v.Display())
	}
}

func TestRun_GlobalConst(t *testing.T) {
	out := runSource(t, `
const LIMIT: Int = 10

fn main() {
    println!("{}", LIMIT * 2)
}`)
	wantOutput(t, out, "20\n")
}

func TestRun_StringMethods(t *testing.T) {
	out := runSource(t, `
fn main() {
    let raw = "  windjammer  "
    let name = raw.trim()
    println!("{}", name.len())
    println!("{}", name.to_uppercase())
    println!("{}", name.contains("jam"))
}`)
	wantOutput(t, out, "10\nWINDJAMMER\ntrue\n")
}

func TestRun_ParseWithTurbofish(t *testing.T) {
	out := runSource(t, `
fn main() {
    let n = "42".parse::<Int>()
    println!("{}", n + 1)
}`)
	wantOutput(t, out, "43\n")
}

func TestRun_DeferRunsAtExitInReverse(t *testing.T) {
	out := runSource(t, `
fn work() {
    defer println!("first deferred")
    defer println!("second deferred")
    println!("body")
}

fn main() {
    work()
    println!("after")
}`)
	wantOutput(t, out, "body\nsecond deferred\nfirst deferred\nafter\n")
}

func TestRun_GoBlockRunsInline(t *testing.T) {
	out := runSource(t, `
fn main() {
    go {
        println!("spawned")
    }
    println!("done")
}`)
	wantOutput(t, out, "spawned\ndone\n")
}

func TestRun_StructSpreadAndFieldAccess(t *testing.T) {
	out := runSource(t, `
struct Point {
    x: Int,
    y: Int,
}

fn main() {
    let base = Point { x: 1, y: 2 }
    let moved = Point { x: 5, ..base }
    println!("{}", moved.x)
    println!("{}", moved.y)
    println!("{}", base.x)
}`)
	wantOutput(t, out, "5\n2\n1\n")
}

func TestRun_CloneBreaksSharing(t *testing.T) {
	out := runSource(t, `
fn main() {
    let mut a = vec![1]
    let b = a.clone()
    a.push(2)
    println!("{}", a.len())
    println!("{}", b.len())
}`)
	wantOutput(t, out, "2\n1\n")
}

func TestRun_AssertMacros(t *testing.T) {
	out := runSource(t, `
fn main() {
    assert!(1 < 2)
    assert_eq!(2 + 2, 4)
    assert_ne!(1, 2)
    println!("ok")
}`)
	wantOutput(t, out, "ok\n")
}

func TestRun_AssertFailureIsError(t *testing.T) {
	err := runError(t, `
fn main() {
    assert_eq!(1, 2)
}`)
	if !strings.Contains(err.Error(), "assertion failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_DivisionByZeroIsError(t *testing.T) {
	err := runError(t, `
fn main() {
    let mut d = 0
    let x = 10 / d
    println!("{}", x)
}`)
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_PanicMacroIsError(t *testing.T) {
	err := runError(t, `
fn main() {
    panic!("boom {}", 3)
}`)
	if !strings.Contains(err.Error(), "boom 3") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_UndefinedFunctionIsError(t *testing.T) {
	err := runError(t, `
fn main() {
    missing()
}`)
	if !strings.Contains(err.Error(), "undefined function") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCall_DirectEntry(t *testing.T) {
	in := parseProgram(t, `
fn add(a: Int, b: Int) -> Int {
    return a + b
}`)
	v, err := in.Call("add", []Value{IntValue(2), IntValue(40)})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if n, ok := v.(IntValue); !ok || n != 42 {
		t.Errorf("expected 42, got %s", v.Display())
	}
}

func TestRun_AssociatedConstructor(t *testing.T) {
	out := runSource(t, `
struct Counter {
    n: Int,
}

impl Counter {
    fn new() -> Counter {
        return Counter { n: 0 }
    }

    fn bump() {
        n += 1
    }
}

fn main() {
    let mut c = Counter.new()
    c.bump()
    println!("{}", c.n)
}`)
	wantOutput(t, out, "1\n")
}

func TestRun_MatchOnOptionVariants(t *testing.T) {
	out := runSource(t, `
fn describe(v: Vec<Int>) -> String {
    return match v.pop() {
        Some(n) => format!("got {}", n),
        None => "empty",
    }
}

fn main() {
    let mut full = vec![9]
    let mut empty: Vec<Int> = vec![]
    println!("{}", describe(full))
    println!("{}", describe(empty))
}`)
	wantOutput(t, out, "got 9\nempty\n")
}
