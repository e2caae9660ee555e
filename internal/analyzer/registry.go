package analyzer

import "github.com/windjammer-lang/windjammer/internal/ast"

// OwnershipMode is the inferred calling convention for one parameter
type OwnershipMode int

const (
	Owned OwnershipMode = iota
	Borrowed
	MutBorrowed
)

// String returns a string representation of the ownership mode
func (m OwnershipMode) String() string {
	switch m {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case MutBorrowed:
		return "mut-borrowed"
	default:
		return "unknown"
	}
}

// SignatureRegistry maps function names to the ordered ownership modes of
// their parameters. It is populated in a pre-pass and treated as
// read-only afterwards, so call sites can be rewritten with the correct
// reference insertion regardless of declaration order.
type SignatureRegistry struct {
	sigs map[string][]OwnershipMode
}

// NewRegistry creates an empty signature registry
func NewRegistry() *SignatureRegistry {
	return &SignatureRegistry{sigs: make(map[string][]OwnershipMode)}
}

// Register records the ownership modes for a function's parameters.
// Methods are registered under "Type.method" as well as the bare name.
// Modes cover the non-self parameters in declaration order, so slot
// indices line up with call-site arguments.
func (r *SignatureRegistry) Register(name string, modes []OwnershipMode) {
	r.sigs[name] = modes
}

// Lookup returns the full signature for a function name
func (r *SignatureRegistry) Lookup(name string) ([]OwnershipMode, bool) {
	modes, ok := r.sigs[name]
	return modes, ok
}

// Mode answers the registry's single query: the ownership mode required
// at one argument slot of a named callee. Unknown names and out-of-range
// slots report no entry, in which case the caller emits the argument as
// written.
func (r *SignatureRegistry) Mode(name string, index int) (OwnershipMode, bool) {
	modes, ok := r.sigs[name]
	if !ok || index < 0 || index >= len(modes) {
		return Owned, false
	}
	return modes[index], true
}

// Populate registers every function and method in the program. Ownership
// inference consults the registry for callees, so functions registered
// earlier sharpen the classification of later ones; the ordering is the
// program's declaration order, keeping output deterministic.
func (r *SignatureRegistry) Populate(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			r.Register(it.Name, inferModes(it, r))
		case *ast.ImplBlock:
			for _, method := range it.Methods {
				modes := inferModes(method, r)
				r.Register(it.TypeName+"."+method.Name, modes)
				if _, taken := r.sigs[method.Name]; !taken {
					r.Register(method.Name, modes)
				}
			}
		}
	}
}

func inferModes(fn *ast.FunctionDecl, r *SignatureRegistry) []OwnershipMode {
	result := InferOwnership(fn, r)
	modes := make([]OwnershipMode, 0, len(fn.Params))
	for _, param := range fn.Params {
		if param.Name == "self" {
			continue
		}
		modes = append(modes, result[param.Name])
	}
	return modes
}
