// Package optimizer implements the standalone AST-to-AST passes:
// constant folding, dead-code elimination, loop optimization and escape
// analysis. Passes never mutate their input; each returns a new tree and
// records statistics. They either apply or decline, never fail.
package optimizer

import "github.com/windjammer-lang/windjammer/internal/ast"

// Options gates the individual passes
type Options struct {
	Fold        bool
	DCE         bool
	Loops       bool
	Escape      bool
	MaxUnroll   int // iteration ceiling for loop unrolling
	SmallVecMax int // largest vec! literal rewritten to inline storage
}

// DefaultOptions enables every pass with the default unroll ceiling
func DefaultOptions() Options {
	return Options{Fold: true, DCE: true, Loops: true, Escape: true, MaxUnroll: 8, SmallVecMax: 8}
}

// Stats counts what each pass did
type Stats struct {
	FoldedExpressions   int
	CollapsedBranches   int
	RemovedItems        int
	RemovedStatements   int
	HoistedBindings     int
	UnrolledLoops       int
	SmallVecRewrites    int
	InterningCandidates int
	SimdCandidates      int
}

// Optimize runs the enabled passes in order: folding first so later
// passes see literal conditions and bounds, then DCE, loop transforms,
// and escape analysis last so short-lived unrolled temporaries benefit.
func Optimize(prog *ast.Program, opts Options) (*ast.Program, *Stats) {
	stats := &Stats{}
	out := prog
	if opts.Fold {
		out = FoldProgram(out, stats)
	}
	if opts.DCE {
		out = EliminateDeadCode(out, stats)
	}
	if opts.Loops {
		out = OptimizeLoops(out, opts.MaxUnroll, stats)
	}
	if opts.Escape {
		out = RewriteEscapes(out, opts.SmallVecMax, stats)
	}
	countCandidates(out, stats)
	return out, stats
}

// countCandidates records string-interning and SIMD opportunities.
// These passes contribute statistics only; no rewrites are emitted.
func countCandidates(prog *ast.Program, stats *Stats) {
	literals := make(map[string]int)
	ast.Inspect(prog, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.StringLit:
			literals[n.Value]++
		case *ast.ForStmt:
			arithmetic := false
			ast.Inspect(n.Body, func(inner ast.Node) bool {
				if bin, ok := inner.(*ast.BinaryExpr); ok {
					switch bin.Op {
					case ast.Add, ast.Sub, ast.Mul, ast.Div:
						arithmetic = true
					}
				}
				return true
			})
			if arithmetic {
				stats.SimdCandidates++
			}
		}
		return true
	})
	for _, count := range literals {
		if count >= 2 {
			stats.InterningCandidates++
		}
	}
}
