package analyzer

import (
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/diagnostic"
)

func TestCheckMutability_ReassignmentErrors(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let n = 0
    n = 1
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	CheckMutability(fn, diags)

	if !diags.HasErrors() {
		t.Fatal("expected a mutability error")
	}
	err := diags.Errors()[0]
	if err.Kind != diagnostic.MutabilityReassignment {
		t.Errorf("expected reassignment kind, got %v", err.Kind)
	}
	if err.Hint != "make this binding mutable: `mut n`" {
		t.Errorf("unexpected hint: %q", err.Hint)
	}
}

func TestCheckMutability_CompoundAssignmentErrors(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let n = 0
    n += 1
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	CheckMutability(fn, diags)

	if !diags.HasErrors() {
		t.Fatal("expected a mutability error")
	}
	if diags.Errors()[0].Kind != diagnostic.MutabilityCompoundAssignment {
		t.Errorf("expected compound-assignment kind, got %v", diags.Errors()[0].Kind)
	}
}

func TestCheckMutability_MutatingMethodErrors(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let v = vec![1, 2]
    v.push(3)
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	CheckMutability(fn, diags)

	if !diags.HasErrors() {
		t.Fatal("expected a mutability error")
	}
	err := diags.Errors()[0]
	if err.Kind != diagnostic.MutabilityMutatingMethodCall {
		t.Errorf("expected mutating-method kind, got %v", err.Kind)
	}
	if !strings.Contains(err.Message, "push") {
		t.Errorf("message should name the method, got %q", err.Message)
	}
}

func TestCheckMutability_FieldMutationAutoUpgrades(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let p = Point { x: 1, y: 2 }
    p.x = 10
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	result := CheckMutability(fn, diags)

	if diags.HasErrors() {
		t.Fatalf("field mutation must not error: %s", diags.Format("test"))
	}
	if !result.Upgraded["p"] {
		t.Error("expected p to be auto-upgraded to mutable")
	}
}

func TestCheckMutability_DeclaredMutIsClean(t *testing.T) {
	prog := parseSource(t, `
fn main() {
    let mut n = 0
    n = 1
    n += 2
    let mut v = vec![1]
    v.push(2)
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	CheckMutability(fn, diags)

	if diags.HasErrors() {
		t.Errorf("mut bindings must not error: %s", diags.Format("test"))
	}
}

func TestCheckMutability_ParamsAreExempt(t *testing.T) {
	prog := parseSource(t, `
fn f(v: Vec<Int>) {
    v.push(1)
    v = vec![]
}`)
	fn := firstFunction(t, prog)
	diags := diagnostic.New()
	CheckMutability(fn, diags)

	if diags.HasErrors() {
		t.Errorf("parameter writes are the ownership analyzer's concern: %s", diags.Format("test"))
	}
}
