// Package compiler is the pipeline facade: parse -> analyze -> optimize
// -> emit, with file-level helpers for the CLI.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/component"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
	"github.com/windjammer-lang/windjammer/internal/optimizer"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

// Result holds the output of a compilation
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	RustSource  string
	Stats       *optimizer.Stats
	Components  []*component.DependencyInfo
}

// Compile runs the full pipeline on a single source file. Parse errors
// abort before analysis; analysis errors abort before emission. The
// optimizer builds a new tree, so emission re-analyzes its output (the
// hint tables key on AST nodes).
func Compile(source string, cfg Config) *Result {
	res := &Result{Diagnostics: diagnostic.New()}

	p := parser.New(source)
	prog := p.Parse()
	res.Diagnostics.Merge(p.Diagnostics())
	if p.Diagnostics().HasErrors() {
		return res
	}

	analysis := analyzer.Analyze(prog)
	res.Diagnostics.Merge(analysis.Diagnostics)
	if res.Diagnostics.HasErrors() {
		return res
	}

	res.Components = component.ExtractAll(prog)

	emitProg := prog
	emitAnalysis := analysis
	if cfg.Optimize {
		optimized, stats := optimizer.Optimize(prog, cfg.OptimizerOptions())
		res.Stats = stats
		emitProg = optimized
		emitAnalysis = analyzer.Analyze(optimized)
	}

	res.RustSource = codegen.Emit(emitProg, emitAnalysis, cfg.Target)
	return res
}

// Check runs parse + analysis only (no codegen).
func Check(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}
	diags := diagnostic.New()
	diags.Merge(p.Diagnostics())
	diags.Merge(analyzer.Analyze(prog).Diagnostics)
	return diags
}

// OutputPath maps an entry file to its emitted Rust file.
func OutputPath(entry string) string {
	return strings.TrimSuffix(entry, filepath.Ext(entry)) + ".rs"
}

// BuildFile compiles the file at path and writes the emitted Rust next
// to it. A nil error with failing Diagnostics means a user-facing
// problem; a non-nil error means the build itself broke (I/O and the
// like).
func BuildFile(path string, cfg Config) (*Result, string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	res := Compile(string(source), cfg)
	if res.Diagnostics.HasErrors() {
		return res, "", nil
	}

	outPath := OutputPath(path)
	if err := os.WriteFile(outPath, []byte(res.RustSource), 0644); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return res, outPath, nil
}

// CheckFile runs analysis on the file at path without emitting output.
func CheckFile(path string) (*diagnostic.Diagnostics, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Check(string(source)), nil
}
