package analyzer

import "testing"

func TestInferOwnership_MutationForcesMutBorrow(t *testing.T) {
	prog := parseSource(t, `
fn add(v: Vec<Int>, n: Int) {
    v.push(n)
}`)
	fn := firstFunction(t, prog)
	result := InferOwnership(fn, NewRegistry())

	if result["v"] != MutBorrowed {
		t.Errorf("v - expected mut-borrowed, got %v", result["v"])
	}
	// Copy-typed parameter passes by value
	if result["n"] != Owned {
		t.Errorf("n - expected owned, got %v", result["n"])
	}
}

func TestInferOwnership_ExplicitHintsHonored(t *testing.T) {
	prog := parseSource(t, `
fn f(a: &String, b: &mut String, c: String) {
    b.push_str(a)
}`)
	fn := firstFunction(t, prog)
	result := InferOwnership(fn, NewRegistry())

	if result["a"] != Borrowed {
		t.Errorf("a - expected borrowed, got %v", result["a"])
	}
	if result["b"] != MutBorrowed {
		t.Errorf("b - expected mut-borrowed, got %v", result["b"])
	}
	if result["c"] != Borrowed {
		t.Errorf("c - unused String should default to borrowed, got %v", result["c"])
	}
}

func TestInferOwnership_MoveClassifiesOwned(t *testing.T) {
	prog := parseSource(t, `
fn wrap(name: String) -> Wrapper {
    return Wrapper { name: name }
}

fn pass(s: String) -> String {
    return s
}`)
	a := Analyze(prog)

	if a.Functions["wrap"].Ownership["name"] != Owned {
		t.Errorf("name stored into a struct literal - expected owned, got %v",
			a.Functions["wrap"].Ownership["name"])
	}
	if a.Functions["pass"].Ownership["s"] != Owned {
		t.Errorf("s returned directly - expected owned, got %v",
			a.Functions["pass"].Ownership["s"])
	}
}

func TestInferOwnership_CalleeModePropagates(t *testing.T) {
	prog := parseSource(t, `
fn grow(v: Vec<Int>) {
    v.push(1)
}

fn caller(list: Vec<Int>) {
    grow(list)
}`)
	a := Analyze(prog)

	// grow mutates v, so caller's list is mut-borrowed through the call
	if a.Functions["grow"].Ownership["v"] != MutBorrowed {
		t.Fatalf("grow.v - expected mut-borrowed, got %v", a.Functions["grow"].Ownership["v"])
	}
	if a.Functions["caller"].Ownership["list"] != MutBorrowed {
		t.Errorf("caller.list - expected mut-borrowed via registry, got %v",
			a.Functions["caller"].Ownership["list"])
	}
}

func TestInferOwnership_SelfSeeding(t *testing.T) {
	prog := parseSource(t, `
impl Point {
    fn read(&self) -> Int {
        return 1
    }
    fn write(&mut self) {
        self.x = 2
    }
    fn consume(self) -> Self {
        return self
    }
}`)
	a := Analyze(prog)

	if a.Functions["Point.read"].Ownership["self"] != Borrowed {
		t.Errorf("&self - expected borrowed")
	}
	if a.Functions["Point.write"].Ownership["self"] != MutBorrowed {
		t.Errorf("&mut self - expected mut-borrowed")
	}
	if a.Functions["Point.consume"].Ownership["self"] != Owned {
		t.Errorf("self - expected owned")
	}
}

func TestIsMutatingMethod(t *testing.T) {
	for _, name := range []string{"push", "pop_front", "sort_unstable", "get_mut", "as_mut"} {
		if !IsMutatingMethod(name) {
			t.Errorf("%s should be mutating", name)
		}
	}
	for _, name := range []string{"len", "iter", "contains", "get"} {
		if IsMutatingMethod(name) {
			t.Errorf("%s should not be mutating", name)
		}
	}
}

func TestRegistryModeQuery(t *testing.T) {
	r := NewRegistry()
	r.Register("f", []OwnershipMode{Owned, MutBorrowed})

	if mode, ok := r.Mode("f", 1); !ok || mode != MutBorrowed {
		t.Errorf("f slot 1 - expected mut-borrowed")
	}
	if _, ok := r.Mode("f", 5); ok {
		t.Error("out-of-range slot should report no entry")
	}
	if _, ok := r.Mode("unknown", 0); ok {
		t.Error("unknown name should report no entry")
	}
}
