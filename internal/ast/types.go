package ast

import "strings"

// TypeKind identifies which variant of the closed type set a Type is.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeInt32
	TypeUint
	TypeFloat
	TypeBool
	TypeString
	TypeCustom        // nominal type, possibly a dotted path (http.Request)
	TypeGeneric       // a type parameter (T)
	TypeAssociated    // base::assoc (Self::Item)
	TypeTraitObject   // dyn Trait, boxed by default on emission
	TypeParameterized // base<args...>
	TypeOption        // Option<Args[0]>
	TypeResult        // Result<Args[0], Args[1]>
	TypeVec           // Vec<Args[0]>
	TypeReference     // &Args[0]
	TypeMutRef        // &mut Args[0]
	TypeTuple         // (Args...)
)

// Type is one member of the closed type set. Which fields are meaningful
// depends on Kind: Name for nominal/generic/trait-object/parameterized/
// associated types, Assoc for associated types, Args for element types.
type Type struct {
	Kind  TypeKind
	Name  string
	Assoc string
	Args  []*Type
}

// Prim returns a primitive type of the given kind.
func Prim(kind TypeKind) *Type { return &Type{Kind: kind} }

// Custom returns a nominal type reference.
func Custom(name string) *Type { return &Type{Kind: TypeCustom, Name: name} }

// Generic returns a type-parameter reference.
func Generic(name string) *Type { return &Type{Kind: TypeGeneric, Name: name} }

// IsPrimitive reports whether t is one of the built-in scalar or string types.
func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case TypeInt, TypeInt32, TypeUint, TypeFloat, TypeBool, TypeString:
		return true
	}
	return false
}

// IsFloat reports whether t is (or transitively contains) a floating-point
// component at the top level of containers. Used by derive inference to gate
// Eq and Hash.
func (t *Type) IsFloat() bool {
	switch t.Kind {
	case TypeFloat:
		return true
	case TypeCustom:
		return t.Name == "f32" || t.Name == "f64"
	case TypeOption, TypeVec, TypeReference, TypeMutRef:
		return len(t.Args) > 0 && t.Args[0].IsFloat()
	case TypeResult, TypeTuple, TypeParameterized:
		for _, a := range t.Args {
			if a.IsFloat() {
				return true
			}
		}
	}
	return false
}

// String renders the type in surface syntax. Used for diagnostics and tests,
// not for emission (the code generator has its own Rust rendering).
func (t *Type) String() string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case TypeInt:
		return "Int"
	case TypeInt32:
		return "Int32"
	case TypeUint:
		return "Uint"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeString:
		return "String"
	case TypeCustom, TypeGeneric:
		return t.Name
	case TypeAssociated:
		return t.Name + "::" + t.Assoc
	case TypeTraitObject:
		return "dyn " + t.Name
	case TypeParameterized:
		return t.Name + "<" + joinTypes(t.Args) + ">"
	case TypeOption:
		return "Option<" + t.Args[0].String() + ">"
	case TypeResult:
		return "Result<" + joinTypes(t.Args) + ">"
	case TypeVec:
		return "Vec<" + t.Args[0].String() + ">"
	case TypeReference:
		return "&" + t.Args[0].String()
	case TypeMutRef:
		return "&mut " + t.Args[0].String()
	case TypeTuple:
		return "(" + joinTypes(t.Args) + ")"
	}
	return "?"
}

func joinTypes(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
