package analyzer

import (
	"sort"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// DeriveResult maps each aggregate name to its derive list, sorted
// lexicographically for deterministic emission.
type DeriveResult map[string][]string

// deriveAnalysis holds the program-wide aggregate tables needed to
// propagate field properties (PartialEq, Copy, Default, float content)
// through nominal types.
type deriveAnalysis struct {
	structs  map[string]*ast.StructDecl
	enums    map[string]*ast.EnumDecl
	explicit map[string]map[string]bool // explicit @derive lists
}

// InferDerives decides, for every struct and enum, which of
// Debug/Clone/Copy/PartialEq/Eq/Hash/Default can be auto-derived. An
// explicit @derive list overrides inference entirely; @auto with
// arguments behaves like @derive, bare @auto opts into inference (the
// default policy anyway).
func InferDerives(prog *ast.Program) DeriveResult {
	da := &deriveAnalysis{
		structs:  make(map[string]*ast.StructDecl),
		enums:    make(map[string]*ast.EnumDecl),
		explicit: make(map[string]map[string]bool),
	}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.StructDecl:
			da.structs[it.Name] = it
			da.recordExplicit(it.Name, it.Decorator("derive"), it.Decorator("auto"))
		case *ast.EnumDecl:
			da.enums[it.Name] = it
			da.recordExplicit(it.Name, it.Decorator("derive"), it.Decorator("auto"))
		}
	}

	result := make(DeriveResult, len(da.structs)+len(da.enums))
	for name, s := range da.structs {
		if explicit, ok := da.explicit[name]; ok {
			result[name] = sortedTraits(explicit)
			continue
		}
		result[name] = da.inferStruct(s)
	}
	for name, e := range da.enums {
		if explicit, ok := da.explicit[name]; ok {
			result[name] = sortedTraits(explicit)
			continue
		}
		result[name] = da.inferEnum(e)
	}
	return result
}

func (da *deriveAnalysis) recordExplicit(name string, derive, auto *ast.Decorator) {
	dec := derive
	if dec == nil {
		dec = auto
	}
	if dec == nil || len(dec.Args) == 0 {
		return // bare @auto means infer
	}
	set := make(map[string]bool, len(dec.Args))
	for _, arg := range dec.Args {
		if id, ok := arg.Value.(*ast.Identifier); ok {
			set[id.Name] = true
		}
	}
	da.explicit[name] = set
}

func sortedTraits(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (da *deriveAnalysis) inferStruct(s *ast.StructDecl) []string {
	types := make([]*ast.Type, len(s.Fields))
	for i, f := range s.Fields {
		types[i] = f.Type
	}
	return da.inferFrom(types)
}

func (da *deriveAnalysis) inferEnum(e *ast.EnumDecl) []string {
	var types []*ast.Type
	for _, v := range e.Variants {
		types = append(types, v.Types...)
		for _, f := range v.Fields {
			types = append(types, f.Type)
		}
	}
	derives := da.inferFrom(types)
	// Default needs a designated variant; enums never auto-derive it
	return removeTrait(derives, "Default")
}

// inferFrom applies the derive rules over the payload types of one
// aggregate. Debug and Clone are unconditional compiler policy.
func (da *deriveAnalysis) inferFrom(types []*ast.Type) []string {
	set := map[string]bool{"Debug": true, "Clone": true}

	copyOK, eqOK, defaultOK := true, true, true
	float, mutRef := false, false
	for _, ty := range types {
		if !da.isCopy(ty, nil) {
			copyOK = false
		}
		if !da.supportsPartialEq(ty, nil) {
			eqOK = false
		}
		if !da.hasDefault(ty, nil) {
			defaultOK = false
		}
		if da.hasFloat(ty, nil) {
			float = true
		}
		if hasMutRef(ty) {
			mutRef = true
		}
	}

	if copyOK {
		set["Copy"] = true
	}
	if eqOK {
		set["PartialEq"] = true
		if !float {
			set["Eq"] = true
			if !mutRef {
				set["Hash"] = true
			}
		}
	}
	if defaultOK {
		set["Default"] = true
	}
	return sortedTraits(set)
}

func removeTrait(traits []string, name string) []string {
	out := traits[:0]
	for _, t := range traits {
		if t != name {
			out = append(out, t)
		}
	}
	return out
}

// aggregate property recursion; the seen set breaks type cycles, which
// resolve conservatively to false

func (da *deriveAnalysis) eachPayload(name string, seen map[string]bool, pred func(*ast.Type, map[string]bool) bool) (bool, bool) {
	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[name] {
		return false, true
	}
	seen[name] = true
	defer delete(seen, name)

	if s, ok := da.structs[name]; ok {
		for _, f := range s.Fields {
			if !pred(f.Type, seen) {
				return false, true
			}
		}
		return true, true
	}
	if e, ok := da.enums[name]; ok {
		for _, v := range e.Variants {
			for _, ty := range v.Types {
				if !pred(ty, seen) {
					return false, true
				}
			}
			for _, f := range v.Fields {
				if !pred(f.Type, seen) {
					return false, true
				}
			}
		}
		return true, true
	}
	return false, false
}

func (da *deriveAnalysis) supportsPartialEq(ty *ast.Type, seen map[string]bool) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case ast.TypeInt, ast.TypeInt32, ast.TypeUint, ast.TypeFloat, ast.TypeBool, ast.TypeString:
		return true
	case ast.TypeVec, ast.TypeOption, ast.TypeResult, ast.TypeTuple, ast.TypeReference, ast.TypeMutRef:
		for _, arg := range ty.Args {
			if !da.supportsPartialEq(arg, seen) {
				return false
			}
		}
		return true
	case ast.TypeParameterized:
		switch ty.Name {
		case "Box", "Rc", "Arc":
			for _, arg := range ty.Args {
				if !da.supportsPartialEq(arg, seen) {
					return false
				}
			}
			return true
		}
		return false
	case ast.TypeCustom:
		if copyNominals[ty.Name] {
			return true
		}
		if explicit, ok := da.explicit[ty.Name]; ok {
			return explicit["PartialEq"]
		}
		ok, known := da.eachPayload(ty.Name, seen, da.supportsPartialEq)
		return known && ok
	default:
		return false
	}
}

func (da *deriveAnalysis) isCopy(ty *ast.Type, seen map[string]bool) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case ast.TypeInt, ast.TypeInt32, ast.TypeUint, ast.TypeFloat, ast.TypeBool:
		return true
	case ast.TypeReference:
		return true
	case ast.TypeTuple:
		for _, arg := range ty.Args {
			if !da.isCopy(arg, seen) {
				return false
			}
		}
		return true
	case ast.TypeCustom:
		if copyNominals[ty.Name] {
			return true
		}
		if explicit, ok := da.explicit[ty.Name]; ok {
			return explicit["Copy"]
		}
		if e, ok := da.enums[ty.Name]; ok && isFieldless(e) {
			return true
		}
		ok, known := da.eachPayload(ty.Name, seen, da.isCopy)
		return known && ok
	default:
		return false
	}
}

func isFieldless(e *ast.EnumDecl) bool {
	for _, v := range e.Variants {
		if v.Kind != ast.VariantUnit {
			return false
		}
	}
	return true
}

func (da *deriveAnalysis) hasFloat(ty *ast.Type, seen map[string]bool) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case ast.TypeFloat:
		return true
	case ast.TypeCustom:
		if ty.Name == "f32" || ty.Name == "f64" {
			return true
		}
		noFloat := func(t *ast.Type, s map[string]bool) bool { return !da.hasFloat(t, s) }
		allClean, known := da.eachPayload(ty.Name, seen, noFloat)
		return known && !allClean
	default:
		for _, arg := range ty.Args {
			if da.hasFloat(arg, seen) {
				return true
			}
		}
		return false
	}
}

func hasMutRef(ty *ast.Type) bool {
	if ty == nil {
		return false
	}
	if ty.Kind == ast.TypeMutRef {
		return true
	}
	for _, arg := range ty.Args {
		if hasMutRef(arg) {
			return true
		}
	}
	return false
}

func (da *deriveAnalysis) hasDefault(ty *ast.Type, seen map[string]bool) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case ast.TypeInt, ast.TypeInt32, ast.TypeUint, ast.TypeFloat, ast.TypeBool, ast.TypeString:
		return true
	case ast.TypeVec, ast.TypeOption:
		return true
	case ast.TypeTuple:
		for _, arg := range ty.Args {
			if !da.hasDefault(arg, seen) {
				return false
			}
		}
		return true
	case ast.TypeParameterized:
		if ty.Name == "Box" && len(ty.Args) == 1 {
			return da.hasDefault(ty.Args[0], seen)
		}
		return false
	case ast.TypeCustom:
		if copyNominals[ty.Name] {
			return ty.Name != "char" // char has no Default
		}
		if explicit, ok := da.explicit[ty.Name]; ok {
			return explicit["Default"]
		}
		if _, ok := da.enums[ty.Name]; ok {
			return false
		}
		ok, known := da.eachPayload(ty.Name, seen, da.hasDefault)
		return known && ok
	default:
		return false
	}
}
