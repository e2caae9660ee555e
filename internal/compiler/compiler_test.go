package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/codegen"
)

func TestCompile_EndToEnd(t *testing.T) {
	res := Compile(`
fn main() {
    let greeting = "hello"
    println!("{greeting}")
}`, Default())
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format("test.wj"))
	}
	if !strings.Contains(res.RustSource, "fn main()") {
		t.Errorf("emitted source missing main:\n%s", res.RustSource)
	}
	if !strings.Contains(res.RustSource, `println!("{}", greeting);`) {
		t.Errorf("interpolation not lowered:\n%s", res.RustSource)
	}
}

func TestCompile_MutabilityDiagnostic(t *testing.T) {
	res := Compile(`
fn main() {
    let x = 1
    x = 2
}`, Default())
	if !res.Diagnostics.HasErrors() {
		t.Fatal("expected a mutability error")
	}
	rendered := res.Diagnostics.Format("test.wj")
	if !strings.Contains(rendered, "immutable binding `x`") {
		t.Errorf("unexpected rendering:\n%s", rendered)
	}
	if !strings.Contains(rendered, "make this binding mutable: `mut x`") {
		t.Errorf("missing hint:\n%s", rendered)
	}
	if res.RustSource != "" {
		t.Error("no output must be produced when analysis fails")
	}
}

func TestCompile_ParseErrorAbortsEarly(t *testing.T) {
	res := Compile(`fn main( {`, Default())
	if !res.Diagnostics.HasErrors() {
		t.Fatal("expected parse diagnostics")
	}
	if res.RustSource != "" {
		t.Error("no output must be produced for unparseable source")
	}
}

func TestCompile_OptimizerRunsByDefault(t *testing.T) {
	res := Compile(`
fn main() {
    let x = 2 * 3 + 4
    println!("{}", x)
}`, Default())
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format("test.wj"))
	}
	if res.Stats == nil {
		t.Fatal("expected optimizer stats")
	}
	if res.Stats.FoldedExpressions == 0 {
		t.Error("constant folding did not run")
	}
	if !strings.Contains(res.RustSource, "let x = 10;") {
		t.Errorf("folded value not emitted:\n%s", res.RustSource)
	}
}

func TestCompile_OptimizerDisabled(t *testing.T) {
	cfg := Default()
	cfg.Optimize = false
	res := Compile(`
fn main() {
    let x = 2 * 3 + 4
    println!("{}", x)
}`, cfg)
	if res.Stats != nil {
		t.Error("stats must be nil when the optimizer is off")
	}
	if !strings.Contains(res.RustSource, "2 * 3 + 4") {
		t.Errorf("source expression must survive unoptimized:\n%s", res.RustSource)
	}
}

func TestCompile_ExtractsComponents(t *testing.T) {
	res := Compile(`
@component
fn counter() {
    let count = signal(0)
    view(count)
}

fn view(n: Int) {}
fn signal(n: Int) -> Int { return n }

fn main() {}`, Default())
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format("test.wj"))
	}
	if len(res.Components) != 1 {
		t.Fatalf("expected one component, got %d", len(res.Components))
	}
	if res.Components[0].Name != "counter" {
		t.Errorf("unexpected component name %q", res.Components[0].Name)
	}
}

func TestCheck_CleanSource(t *testing.T) {
	diags := Check(`
fn main() {
    let mut n = 0
    n += 1
}`)
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics:\n%s", diags.Format("test.wj"))
	}
}

func TestBuildFile_WritesRustBesideEntry(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "app.wj")
	src := `
fn main() {
    println!("hi")
}`
	if err := os.WriteFile(entry, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	res, outPath, err := BuildFile(entry, Default())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format(entry))
	}
	if outPath != filepath.Join(dir, "app.rs") {
		t.Errorf("unexpected output path %s", outPath)
	}
	emitted, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(string(emitted), "fn main()") {
		t.Errorf("unexpected output:\n%s", emitted)
	}
}

func TestBuildFile_MissingEntryIsInternalError(t *testing.T) {
	_, _, err := BuildFile(filepath.Join(t.TempDir(), "absent.wj"), Default())
	if err == nil {
		t.Fatal("expected an error for a missing entry file")
	}
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("WJ_TARGET", "wasm")
	t.Setenv("WJ_OPT", "0")
	t.Setenv("WJ_MAX_UNROLL", "4")
	t.Setenv("WJ_SMALLVEC_MAX", "16")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Target != codegen.TargetWasm {
		t.Errorf("target = %v, want wasm", cfg.Target)
	}
	if cfg.Optimize {
		t.Error("WJ_OPT=0 must disable optimization")
	}
	if cfg.MaxUnroll != 4 || cfg.SmallVecMax != 16 {
		t.Errorf("limits = %d/%d, want 4/16", cfg.MaxUnroll, cfg.SmallVecMax)
	}
}

func TestConfig_FromEnvReadsFreshValues(t *testing.T) {
	t.Setenv("WJ_TARGET", "wasm")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	t.Setenv("WJ_TARGET", "node")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Target != codegen.TargetNode {
		t.Errorf("target = %v, want node; the environment cache went stale", cfg.Target)
	}
}

func TestConfig_FromEnvRejectsUnknownTarget(t *testing.T) {
	t.Setenv("WJ_TARGET", "cobol")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}
