package analyzer

import "github.com/windjammer-lang/windjammer/internal/ast"

// ReceiverKind classifies what receiver a method needs
type ReceiverKind int

const (
	NoReceiver ReceiverKind = iota
	RefReceiver
	MutReceiver
)

// String returns a string representation of the receiver kind
func (k ReceiverKind) String() string {
	switch k {
	case RefReceiver:
		return "&self"
	case MutReceiver:
		return "&mut self"
	default:
		return "none"
	}
}

// SelfUsage is the self/field analysis of one method: the receiver it
// needs and the bare identifiers that must be lifted to self.<field>.
type SelfUsage struct {
	Receiver   ReceiverKind
	FieldReads map[string]bool // bare field names referenced in the body
}

// AnalyzeSelfUsage determines whether a method needs no receiver, &self
// or &mut self, given the field names of the impl target. A bare
// identifier matching a field name counts as a field reference; writing
// such a field (directly or through self) demands a mutable receiver.
// Methods that reference no field need no receiver at all.
func AnalyzeSelfUsage(method *ast.FunctionDecl, fields map[string]bool) *SelfUsage {
	usage := &SelfUsage{Receiver: NoReceiver, FieldReads: make(map[string]bool)}
	if method.Body == nil {
		if self := method.SelfParam(); self != nil {
			usage.Receiver = receiverFromHint(self.Ownership)
		}
		return usage
	}

	// locals shadow fields
	shadowed := make(map[string]bool)
	for _, param := range method.Params {
		shadowed[param.Name] = true
	}
	ast.Inspect(method.Body, func(node ast.Node) bool {
		if let, ok := node.(*ast.LetStmt); ok {
			shadowed[let.Name] = true
		}
		return true
	})

	ast.Inspect(method.Body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Identifier:
			if fields[n.Name] && !shadowed[n.Name] {
				usage.FieldReads[n.Name] = true
				usage.demand(RefReceiver)
			}
		case *ast.FieldAccessExpr:
			if obj, ok := n.Object.(*ast.Identifier); ok && obj.Name == "self" {
				usage.demand(RefReceiver)
			}
		case *ast.AssignStmt:
			if name, ok := rootIdentifier(n.Target); ok {
				if name == "self" || (fields[name] && !shadowed[name]) {
					usage.demand(MutReceiver)
				}
			}
		case *ast.MethodCallExpr:
			if !IsMutatingMethod(n.Method) {
				return true
			}
			if name, ok := rootIdentifier(n.Object); ok {
				if name == "self" || (fields[name] && !shadowed[name]) {
					usage.demand(MutReceiver)
				}
			}
		case *ast.StringLit:
			// interpolation placeholders read fields too
			for _, ph := range scanPlaceholders(n.Value) {
				if ph.name != "" && fields[ph.name] && !shadowed[ph.name] {
					usage.FieldReads[ph.name] = true
					usage.demand(RefReceiver)
				}
			}
		}
		return true
	})

	// an explicit receiver is never weakened below its surface form
	if self := method.SelfParam(); self != nil {
		usage.demand(receiverFromHint(self.Ownership))
	}
	return usage
}

func (u *SelfUsage) demand(kind ReceiverKind) {
	if kind > u.Receiver {
		u.Receiver = kind
	}
}

func receiverFromHint(hint ast.OwnershipHint) ReceiverKind {
	switch hint {
	case ast.HintMut:
		return MutReceiver
	default:
		return RefReceiver
	}
}
