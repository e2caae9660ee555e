package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// Value is a runtime value. The interpreter models the surface language's
// value set directly; numeric types collapse to i64 and f64 like the
// emitted code's defaults.
type Value interface {
	Display() string
}

type UnitValue struct{}

func (UnitValue) Display() string { return "()" }

type IntValue int64

func (v IntValue) Display() string { return strconv.FormatInt(int64(v), 10) }

type FloatValue float64

func (v FloatValue) Display() string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type BoolValue bool

func (v BoolValue) Display() string { return strconv.FormatBool(bool(v)) }

type StringValue string

func (v StringValue) Display() string { return string(v) }

// ListValue backs both vec! literals and ranges collected into lists.
// Lists share identity: mutation through one binding is visible through
// every alias, mirroring the reference semantics of the emitted code's
// &mut parameters.
type ListValue struct {
	Elems []Value
}

func (v *ListValue) Display() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.Display()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StructValue shares identity so that method receivers mutate the
// caller's binding.
type StructValue struct {
	Name   string
	Fields map[string]Value
}

func (v *StructValue) Display() string {
	parts := make([]string, 0, len(v.Fields))
	for name, val := range v.Fields {
		parts = append(parts, name+": "+val.Display())
	}
	return v.Name + " { " + strings.Join(parts, ", ") + " }"
}

type EnumValue struct {
	Enum    string
	Variant string
	Payload []Value
}

func (v *EnumValue) Display() string {
	if len(v.Payload) == 0 {
		return v.Enum + "::" + v.Variant
	}
	parts := make([]string, len(v.Payload))
	for i, p := range v.Payload {
		parts[i] = p.Display()
	}
	return v.Enum + "::" + v.Variant + "(" + strings.Join(parts, ", ") + ")"
}

type TupleValue struct {
	Elems []Value
}

func (v *TupleValue) Display() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.Display()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type RangeValue struct {
	Start, End int64
	Inclusive  bool
}

func (v RangeValue) Display() string {
	op := ".."
	if v.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("%d%s%d", v.Start, op, v.End)
}

// ClosureValue captures its defining scope.
type ClosureValue struct {
	Params []string
	Body   ast.Expression
	Env    *Scope
}

func (v *ClosureValue) Display() string { return "<closure>" }

// cloneValue deep-copies lists and structs, matching what .clone() does
// in the emitted code.
func cloneValue(v Value) Value {
	switch val := v.(type) {
	case *ListValue:
		elems := make([]Value, len(val.Elems))
		for i, e := range val.Elems {
			elems[i] = cloneValue(e)
		}
		return &ListValue{Elems: elems}
	case *StructValue:
		fields := make(map[string]Value, len(val.Fields))
		for name, f := range val.Fields {
			fields[name] = cloneValue(f)
		}
		return &StructValue{Name: val.Name, Fields: fields}
	case *TupleValue:
		elems := make([]Value, len(val.Elems))
		for i, e := range val.Elems {
			elems[i] = cloneValue(e)
		}
		return &TupleValue{Elems: elems}
	default:
		return v
	}
}

// valueEquals compares values structurally.
func valueEquals(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av == bv
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av == bv
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av == bv
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valueEquals(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valueEquals(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *EnumValue:
		bv, ok := b.(*EnumValue)
		if !ok || av.Enum != bv.Enum || av.Variant != bv.Variant || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if !valueEquals(av.Payload[i], bv.Payload[i]) {
				return false
			}
		}
		return true
	case *StructValue:
		bv, ok := b.(*StructValue)
		if !ok || av.Name != bv.Name || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, f := range av.Fields {
			other, present := bv.Fields[name]
			if !present || !valueEquals(f, other) {
				return false
			}
		}
		return true
	}
	return false
}

func truthy(v Value) (bool, error) {
	if b, ok := v.(BoolValue); ok {
		return bool(b), nil
	}
	return false, fmt.Errorf("expected a boolean condition, got %s", v.Display())
}

// Scope is one frame of the lexical environment chain.
type Scope struct {
	vars   map[string]Value
	parent *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

// Define introduces a binding in this frame, shadowing outer ones.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Get walks the chain outward.
func (s *Scope) Get(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates the nearest existing binding; it reports whether one
// was found.
func (s *Scope) Assign(name string, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}
