package analyzer

import (
	"testing"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

// parseSource parses test input and fails on any syntax error
func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

// firstFunction returns the first top-level function of the program
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

func TestAnalyzeRegistersMethods(t *testing.T) {
	prog := parseSource(t, `
struct Counter {
    count: Int,
}

impl Counter {
    fn bump(&mut self) {
        self.count += 1
    }
}

fn main() {
    let c = Counter { count: 0 }
}`)
	a := Analyze(prog)

	if _, ok := a.Functions["Counter.bump"]; !ok {
		t.Error("expected Counter.bump in the analysis table")
	}
	if _, ok := a.Functions["main"]; !ok {
		t.Error("expected main in the analysis table")
	}
	if !a.Fields["Counter"]["count"] {
		t.Error("expected Counter field set to contain count")
	}
}

func TestExpandBounds(t *testing.T) {
	prog := parseSource(t, `bound Printable = Display + Debug
fn main() {}`)
	a := Analyze(prog)

	expanded := a.ExpandBounds([]string{"Clone", "Printable"})
	want := []string{"Clone", "Display", "Debug"}
	if len(expanded) != len(want) {
		t.Fatalf("expected %d bounds, got %v", len(want), expanded)
	}
	for i, b := range want {
		if expanded[i] != b {
			t.Errorf("bound[%d] - expected %q, got %q", i, b, expanded[i])
		}
	}
}
