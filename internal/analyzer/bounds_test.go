package analyzer

import (
	"reflect"
	"testing"
)

func TestInferBounds_CloneAndDisplay(t *testing.T) {
	prog := parseSource(t, `
fn f<T>(x: T) {
    println!("{}", x)
    let y = x.clone()
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	want := []string{"Clone", "Display"}
	if !reflect.DeepEqual(bounds["T"], want) {
		t.Errorf("T - expected %v, got %v", want, bounds["T"])
	}
}

func TestInferBounds_DebugPlaceholder(t *testing.T) {
	prog := parseSource(t, `
fn dump<T>(x: T) {
    println!("{:?}", x)
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	want := []string{"Debug"}
	if !reflect.DeepEqual(bounds["T"], want) {
		t.Errorf("T - expected %v, got %v", want, bounds["T"])
	}
}

func TestInferBounds_Operators(t *testing.T) {
	prog := parseSource(t, `
fn cmp<T>(a: T, b: T) -> Bool {
    if a == b {
        return true
    }
    return a < b
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	want := []string{"PartialEq", "PartialOrd"}
	if !reflect.DeepEqual(bounds["T"], want) {
		t.Errorf("T - expected %v, got %v", want, bounds["T"])
	}
}

func TestInferBounds_ForLoopIterator(t *testing.T) {
	prog := parseSource(t, `
fn each<T>(items: T) {
    for item in items {
        work(item)
    }
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	want := []string{"IntoIterator"}
	if !reflect.DeepEqual(bounds["T"], want) {
		t.Errorf("T - expected %v, got %v", want, bounds["T"])
	}
}

func TestInferBounds_ConservativeFallback(t *testing.T) {
	prog := parseSource(t, `
fn f<T, U>(a: T, b: U) {
    let total = compute() + 1
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	// the operand is not attributable, so every type parameter is
	// constrained
	for _, tp := range []string{"T", "U"} {
		found := false
		for _, b := range bounds[tp] {
			if b == "Add" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s - expected conservative Add bound, got %v", tp, bounds[tp])
		}
	}
}

func TestInferBounds_MergesExplicit(t *testing.T) {
	prog := parseSource(t, `
fn f<T: Send>(x: T) where T: Sync {
    let y = x.clone()
}`)
	fn := firstFunction(t, prog)
	bounds := InferBounds(fn)

	want := []string{"Clone", "Send", "Sync"}
	if !reflect.DeepEqual(bounds["T"], want) {
		t.Errorf("T - expected %v, got %v", want, bounds["T"])
	}
}

func TestScanPlaceholders(t *testing.T) {
	phs := scanPlaceholders("a {} b {:?} c {name} d {{escaped}}")
	if len(phs) != 3 {
		t.Fatalf("expected 3 placeholders, got %d", len(phs))
	}
	if phs[0].name != "" || phs[0].spec != "" {
		t.Errorf("placeholder 0 - expected positional display")
	}
	if phs[1].spec != "?" {
		t.Errorf("placeholder 1 - expected debug spec, got %q", phs[1].spec)
	}
	if phs[2].name != "name" {
		t.Errorf("placeholder 2 - expected named, got %q", phs[2].name)
	}
}
