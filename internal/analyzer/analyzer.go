// Package analyzer implements the inference passes that run between
// parsing and code generation: parameter ownership, local mutability,
// trait bounds, receiver and field usage, automatic derives, and the
// optimizer hint tables. The AST is never mutated; every pass produces
// annotation tables keyed by function name or AST node.
package analyzer

import (
	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
)

// FunctionAnalysis bundles every per-function table
type FunctionAnalysis struct {
	Decl       *ast.FunctionDecl
	Ownership  OwnershipResult
	Bounds     BoundsResult
	Mutability *MutabilityResult
	Hints      *FunctionHints
	SelfUsage  *SelfUsage // nil for free functions
}

// Analysis is the full result of analyzing one program. Codegen is pure
// over (AST, Analysis).
type Analysis struct {
	Registry     *SignatureRegistry
	Functions    map[string]*FunctionAnalysis // "name" or "Type.method"
	Derives      DeriveResult
	Fields       map[string]map[string]bool // struct name -> field set
	BoundAliases map[string][]string        // alias -> constituent traits
	Diagnostics  *diagnostic.Diagnostics
}

// Analyze runs the full analysis pipeline: signature registry pre-pass,
// then per-function ownership, mutability, bounds, self/field and hint
// production, then program-wide derive inference.
func Analyze(prog *ast.Program) *Analysis {
	a := &Analysis{
		Registry:     NewRegistry(),
		Functions:    make(map[string]*FunctionAnalysis),
		Fields:       make(map[string]map[string]bool),
		BoundAliases: make(map[string][]string),
		Diagnostics:  diagnostic.New(),
	}

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.StructDecl:
			fields := make(map[string]bool, len(it.Fields))
			for _, f := range it.Fields {
				fields[f.Name] = true
			}
			a.Fields[it.Name] = fields
		case *ast.BoundAlias:
			a.BoundAliases[it.Name] = it.Traits
		}
	}

	a.Registry.Populate(prog)

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			a.Functions[it.Name] = a.analyzeFunction(it, nil)
		case *ast.ImplBlock:
			fields := a.Fields[it.TypeName]
			for _, method := range it.Methods {
				a.Functions[it.TypeName+"."+method.Name] = a.analyzeFunction(method, fields)
			}
		case *ast.TraitDecl:
			for _, method := range it.Methods {
				if method.Body != nil {
					a.Functions[it.Name+"."+method.Name] = a.analyzeFunction(method, nil)
				}
			}
		}
	}

	a.Derives = InferDerives(prog)
	return a
}

func (a *Analysis) analyzeFunction(fn *ast.FunctionDecl, fields map[string]bool) *FunctionAnalysis {
	fa := &FunctionAnalysis{
		Decl:      fn,
		Ownership: InferOwnership(fn, a.Registry),
		Bounds:    InferBounds(fn),
	}
	fa.Mutability = CheckMutability(fn, a.Diagnostics)
	fa.Hints = ProduceHints(fn, fa.Ownership)
	if fields != nil {
		fa.SelfUsage = AnalyzeSelfUsage(fn, fields)
	}
	return fa
}

// Lookup returns the analysis for a function or method, trying the
// qualified name first.
func (a *Analysis) Lookup(typeName, fnName string) *FunctionAnalysis {
	if typeName != "" {
		if fa, ok := a.Functions[typeName+"."+fnName]; ok {
			return fa
		}
	}
	return a.Functions[fnName]
}

// ExpandBounds replaces bound-alias names with their constituent traits.
// Aliases expand at every use site; they never become host entities.
func (a *Analysis) ExpandBounds(bounds []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, b := range bounds {
		traits, isAlias := a.BoundAliases[b]
		if !isAlias {
			traits = []string{b}
		}
		for _, t := range traits {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
