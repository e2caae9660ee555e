package component

import (
	"reflect"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

func parseComponent(t *testing.T, src string) *ast.FunctionDecl {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse failed: %s", p.Diagnostics().Format("test.wj"))
	}
	for _, item := range prog.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok {
			return fn
		}
	}
	t.Fatal("no function in program")
	return nil
}

func TestExtract_SignalsAndMemos(t *testing.T) {
	fn := parseComponent(t, `
@component
fn counter() {
    let count = signal(0)
    let label = signal("clicks")
    let doubled = memo(|| count * 2)
    view!(count, doubled, label)
}`)
	info := Extract(fn)

	if !reflect.DeepEqual(info.ReactiveVars, []string{"count", "label"}) {
		t.Errorf("reactive vars - expected [count label], got %v", info.ReactiveVars)
	}
	if !reflect.DeepEqual(info.ComputedDeps["doubled"], []string{"count"}) {
		t.Errorf("doubled deps - expected [count], got %v", info.ComputedDeps["doubled"])
	}
	if !reflect.DeepEqual(info.FunctionReads, []string{"count", "doubled", "label"}) {
		t.Errorf("view reads - got %v", info.FunctionReads)
	}
}

func TestExtract_WritesFromHandlers(t *testing.T) {
	fn := parseComponent(t, `
@component
fn stepper() {
    let count = signal(0)
    count = count + 1
    view!(count)
}`)
	info := Extract(fn)

	if !reflect.DeepEqual(info.FunctionWrites, []string{"count"}) {
		t.Errorf("expected count written, got %v", info.FunctionWrites)
	}
	if !reflect.DeepEqual(info.FunctionReads, []string{"count"}) {
		t.Errorf("the assignment's right side reads count, got %v", info.FunctionReads)
	}
}

func TestExtract_SetMethodIsWrite(t *testing.T) {
	fn := parseComponent(t, `
@component
fn form() {
    let name = signal("")
    name.set(fetch_default())
    view!(name)
}`)
	info := Extract(fn)

	if !reflect.DeepEqual(info.FunctionWrites, []string{"name"}) {
		t.Errorf("set() must count as a write, got %v", info.FunctionWrites)
	}
}

func TestExtract_MemoChains(t *testing.T) {
	fn := parseComponent(t, `
@component
fn report() {
    let total = signal(0)
    let half = memo(|| total / 2)
    let quarter = memo(|| half / 2)
    view!(quarter)
}`)
	info := Extract(fn)

	if !reflect.DeepEqual(info.ComputedDeps["quarter"], []string{"half"}) {
		t.Errorf("a memo may depend on an earlier memo, got %v", info.ComputedDeps["quarter"])
	}
}

func TestExtract_PlainBindingsIgnored(t *testing.T) {
	fn := parseComponent(t, `
@component
fn page() {
    let title = build_title()
    let count = signal(0)
    view!(title, count)
}`)
	info := Extract(fn)

	if !reflect.DeepEqual(info.ReactiveVars, []string{"count"}) {
		t.Errorf("only signal bindings are reactive, got %v", info.ReactiveVars)
	}
	if !reflect.DeepEqual(info.FunctionReads, []string{"count"}) {
		t.Errorf("title is not reactive and must not appear, got %v", info.FunctionReads)
	}
}

func TestExtractAll_FindsOnlyComponents(t *testing.T) {
	p := parser.New(`
@component
fn widget() {
    let n = signal(0)
    view!(n)
}

fn helper() {}`)
	prog := p.Parse()
	infos := ExtractAll(prog)

	if len(infos) != 1 || infos[0].Name != "widget" {
		t.Fatalf("expected the single component, got %d records", len(infos))
	}
}
