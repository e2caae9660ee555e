package ast

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Item nodes appear at the top level of a program
type Item interface {
	Node
	itemNode()
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Program represents an entire Windjammer source file as an ordered
// sequence of top-level items. The tree is produced once by the parser and
// never mutated in place; analysis passes produce annotation tables and
// optimizer passes produce new trees.
type Program struct {
	Items []Item
}

func (p *Program) Pos() (int, int) {
	if len(p.Items) > 0 {
		return p.Items[0].Pos()
	}
	return 0, 0
}

// OwnershipHint is the surface-level ownership annotation on a parameter.
// The analyzer resolves every hint to one of Owned/Borrowed/MutBorrowed.
type OwnershipHint int

const (
	HintInferred OwnershipHint = iota // plain type, let the analyzer decide
	HintOwned                         // self / by-value
	HintRef                           // &T / &self
	HintMut                           // &mut T / &mut self
)

// Decorator represents @name or @name(key: expr, ...) on an item.
type Decorator struct {
	Name   string
	Args   []*DecoratorArg
	Line   int
	Column int
}

func (d *Decorator) Pos() (int, int) { return d.Line, d.Column }

// DecoratorArg is one (key, expression) pair in a decorator's argument list.
// Key is empty for positional arguments.
type DecoratorArg struct {
	Key   string
	Value Expression
}

// TypeParam represents a generic type parameter with its explicit bounds.
type TypeParam struct {
	Name   string
	Bounds []string
}

// WherePred represents one predicate of a where-clause.
type WherePred struct {
	TypeName string
	Bounds   []string
}

// Param represents a function parameter
type Param struct {
	Name      string
	Type      *Type
	Ownership OwnershipHint
	Line      int
	Column    int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// FunctionDecl represents a function declaration (top-level or method)
type FunctionDecl struct {
	Name       string
	Decorators []*Decorator
	TypeParams []*TypeParam
	Params     []*Param
	ReturnType *Type
	Where      []*WherePred
	Body       *Block // nil for trait method signatures without defaults
	Line       int
	Column     int
}

func (f *FunctionDecl) Pos() (int, int) { return f.Line, f.Column }
func (f *FunctionDecl) itemNode()       {}

// Decorator returns the first decorator with the given name, or nil.
func (f *FunctionDecl) Decorator(name string) *Decorator {
	for _, d := range f.Decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// SelfParam returns the receiver parameter if the function declares one.
func (f *FunctionDecl) SelfParam() *Param {
	if len(f.Params) > 0 && f.Params[0].Name == "self" {
		return f.Params[0]
	}
	return nil
}

// FieldDecl represents a struct field
type FieldDecl struct {
	Name   string
	Type   *Type
	Line   int
	Column int
}

func (f *FieldDecl) Pos() (int, int) { return f.Line, f.Column }

// StructDecl represents a struct declaration
type StructDecl struct {
	Name       string
	Decorators []*Decorator
	TypeParams []*TypeParam
	Where      []*WherePred
	Fields     []*FieldDecl
	Line       int
	Column     int
}

func (s *StructDecl) Pos() (int, int) { return s.Line, s.Column }
func (s *StructDecl) itemNode()       {}

// Decorator returns the first decorator with the given name, or nil.
func (s *StructDecl) Decorator(name string) *Decorator {
	for _, d := range s.Decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// VariantKind distinguishes the three enum variant shapes
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantRecord
)

// EnumVariant represents one variant of an enum
type EnumVariant struct {
	Name   string
	Kind   VariantKind
	Types  []*Type      // payload types for tuple variants
	Fields []*FieldDecl // named fields for record variants
	Line   int
	Column int
}

func (v *EnumVariant) Pos() (int, int) { return v.Line, v.Column }

// EnumDecl represents an enum declaration
type EnumDecl struct {
	Name       string
	Decorators []*Decorator
	TypeParams []*TypeParam
	Variants   []*EnumVariant
	Line       int
	Column     int
}

func (e *EnumDecl) Pos() (int, int) { return e.Line, e.Column }
func (e *EnumDecl) itemNode()       {}

// Decorator returns the first decorator with the given name, or nil.
func (e *EnumDecl) Decorator(name string) *Decorator {
	for _, d := range e.Decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// AssociatedType represents an associated type declaration inside a trait
// (Concrete nil) or its binding inside an impl block (Concrete set).
type AssociatedType struct {
	Name     string
	Concrete *Type
	Line     int
	Column   int
}

func (a *AssociatedType) Pos() (int, int) { return a.Line, a.Column }

// TraitDecl represents a trait declaration
type TraitDecl struct {
	Name        string
	Supertraits []string
	AssocTypes  []*AssociatedType
	Methods     []*FunctionDecl // Body nil means signature-only
	Line        int
	Column      int
}

func (t *TraitDecl) Pos() (int, int) { return t.Line, t.Column }
func (t *TraitDecl) itemNode()       {}

// ImplBlock represents an inherent impl (TraitName empty) or a
// trait-for-type impl.
type ImplBlock struct {
	TraitName  string
	TypeName   string
	TypeParams []*TypeParam
	AssocTypes []*AssociatedType
	Methods    []*FunctionDecl
	Line       int
	Column     int
}

func (i *ImplBlock) Pos() (int, int) { return i.Line, i.Column }
func (i *ImplBlock) itemNode()       {}

// ConstDecl represents a top-level constant
type ConstDecl struct {
	Name   string
	Type   *Type
	Value  Expression
	Line   int
	Column int
}

func (c *ConstDecl) Pos() (int, int) { return c.Line, c.Column }
func (c *ConstDecl) itemNode()       {}

// StaticDecl represents a top-level static, optionally mutable
type StaticDecl struct {
	Name    string
	Mutable bool
	Type    *Type
	Value   Expression
	Line    int
	Column  int
}

func (s *StaticDecl) Pos() (int, int) { return s.Line, s.Column }
func (s *StaticDecl) itemNode()       {}

// BoundAlias represents: bound Name = Trait + Trait
// Aliases expand to their constituent traits at emission.
type BoundAlias struct {
	Name   string
	Traits []string
	Line   int
	Column int
}

func (b *BoundAlias) Pos() (int, int) { return b.Line, b.Column }
func (b *BoundAlias) itemNode()       {}

// UseDecl represents a use declaration with a dotted path
type UseDecl struct {
	Path   string
	Alias  string
	Line   int
	Column int
}

func (u *UseDecl) Pos() (int, int) { return u.Line, u.Column }
func (u *UseDecl) itemNode()       {}

// Block represents a brace-delimited list of statements. A trailing
// expression statement is the block's value.
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (b *Block) Pos() (int, int) { return b.Line, b.Column }
func (b *Block) stmtNode()       {}

// LetStmt represents a let binding
type LetStmt struct {
	Name    string
	Mutable bool
	Type    *Type
	Value   Expression
	Line    int
	Column  int
}

func (l *LetStmt) Pos() (int, int) { return l.Line, l.Column }
func (l *LetStmt) stmtNode()       {}

// ConstStmt represents a function-local constant
type ConstStmt struct {
	Name   string
	Type   *Type
	Value  Expression
	Line   int
	Column int
}

func (c *ConstStmt) Pos() (int, int) { return c.Line, c.Column }
func (c *ConstStmt) stmtNode()       {}

// StaticStmt represents a function-local static, optionally mutable
type StaticStmt struct {
	Name    string
	Mutable bool
	Type    *Type
	Value   Expression
	Line    int
	Column  int
}

func (s *StaticStmt) Pos() (int, int) { return s.Line, s.Column }
func (s *StaticStmt) stmtNode()       {}

// AssignOp is the operator of an assignment statement
type AssignOp int

const (
	Assign AssignOp = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
)

// String returns the surface form of the operator.
func (op AssignOp) String() string {
	switch op {
	case AddAssign:
		return "+="
	case SubAssign:
		return "-="
	case MulAssign:
		return "*="
	case DivAssign:
		return "/="
	case ModAssign:
		return "%="
	}
	return "="
}

// AssignStmt represents an assignment or compound assignment
type AssignStmt struct {
	Target Expression
	Op     AssignOp
	Value  Expression
	Line   int
	Column int
}

func (a *AssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignStmt) stmtNode()       {}

// ReturnStmt represents a return statement; Value may be nil
type ReturnStmt struct {
	Value  Expression
	Line   int
	Column int
}

func (r *ReturnStmt) Pos() (int, int) { return r.Line, r.Column }
func (r *ReturnStmt) stmtNode()       {}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (e *ExprStmt) Pos() (int, int) { return e.Line, e.Column }
func (e *ExprStmt) stmtNode()       {}

// IfStmt represents an if statement; Else is a *Block or another *IfStmt
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      Statement
	Line      int
	Column    int
}

func (i *IfStmt) Pos() (int, int) { return i.Line, i.Column }
func (i *IfStmt) stmtNode()       {}

// ForStmt represents: for <variable> in <iterable> { ... }
type ForStmt struct {
	Variable string
	Iterable Expression
	Body     *Block
	Line     int
	Column   int
}

func (f *ForStmt) Pos() (int, int) { return f.Line, f.Column }
func (f *ForStmt) stmtNode()       {}

// LoopStmt represents an unconditional loop
type LoopStmt struct {
	Body   *Block
	Line   int
	Column int
}

func (l *LoopStmt) Pos() (int, int) { return l.Line, l.Column }
func (l *LoopStmt) stmtNode()       {}

// WhileStmt represents a while loop
type WhileStmt struct {
	Condition Expression
	Body      *Block
	Line      int
	Column    int
}

func (w *WhileStmt) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileStmt) stmtNode()       {}

// GoStmt represents a goroutine-style spawn: go { ... }
type GoStmt struct {
	Body   *Block
	Line   int
	Column int
}

func (g *GoStmt) Pos() (int, int) { return g.Line, g.Column }
func (g *GoStmt) stmtNode()       {}

// DeferStmt represents: defer <expr>
type DeferStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (d *DeferStmt) Pos() (int, int) { return d.Line, d.Column }
func (d *DeferStmt) stmtNode()       {}

// BreakStmt represents a break statement
type BreakStmt struct {
	Line   int
	Column int
}

func (b *BreakStmt) Pos() (int, int) { return b.Line, b.Column }
func (b *BreakStmt) stmtNode()       {}

// ContinueStmt represents a continue statement
type ContinueStmt struct {
	Line   int
	Column int
}

func (c *ContinueStmt) Pos() (int, int) { return c.Line, c.Column }
func (c *ContinueStmt) stmtNode()       {}

// BinaryOp is the operator of a binary expression
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
)

// String returns the surface form of the operator.
func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case And:
		return "&&"
	case Or:
		return "||"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	}
	return "?"
}

// UnaryOp is the operator of a unary expression
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
	Ref    // &x
	MutRef // &mut x
	Deref  // *x
)

// IntLit represents an integer literal
type IntLit struct {
	Value  int64
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()       {}

// FloatLit represents a float literal
type FloatLit struct {
	Value  float64
	Raw    string
	Line   int
	Column int
}

func (f *FloatLit) Pos() (int, int) { return f.Line, f.Column }
func (f *FloatLit) exprNode()       {}

// StringLit represents a string literal. Interpolation placeholders
// ({ident}) are scanned at emission time, not parse time.
type StringLit struct {
	Value  string
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()       {}

// BoolLit represents a boolean literal
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}

// Identifier represents an identifier reference
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	Left   Expression
	Op     BinaryOp
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// UnaryExpr represents a unary expression
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expression
	Line    int
	Column  int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()       {}

// TernaryExpr represents: cond ? then : else
type TernaryExpr struct {
	Condition Expression
	Then      Expression
	Else      Expression
	Line      int
	Column    int
}

func (t *TernaryExpr) Pos() (int, int) { return t.Line, t.Column }
func (t *TernaryExpr) exprNode()       {}

// Argument is one label+expression pair in a call's argument list.
// Label is empty for positional arguments.
type Argument struct {
	Label string
	Value Expression
}

// CallExpr represents a plain function call
type CallExpr struct {
	Function string
	Args     []*Argument
	Line     int
	Column   int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()       {}

// MethodCallExpr represents a method call with optional turbofish type
// arguments. An empty Method with TypeArgs set represents a bare function
// call with turbofish (f::<T>()), where Object is the function identifier.
type MethodCallExpr struct {
	Object   Expression
	Method   string
	TypeArgs []*Type
	Args     []*Argument
	Line     int
	Column   int
}

func (m *MethodCallExpr) Pos() (int, int) { return m.Line, m.Column }
func (m *MethodCallExpr) exprNode()       {}

// FieldAccessExpr represents a field access
type FieldAccessExpr struct {
	Object Expression
	Field  string
	Line   int
	Column int
}

func (f *FieldAccessExpr) Pos() (int, int) { return f.Line, f.Column }
func (f *FieldAccessExpr) exprNode()       {}

// FieldInit is one field in a struct literal. Shorthand means the source
// wrote a bare field name (field: field).
type FieldInit struct {
	Name      string
	Value     Expression
	Shorthand bool
}

// StructLitExpr represents a struct literal, optionally with a spread
// source (..base).
type StructLitExpr struct {
	Name   string
	Fields []*FieldInit
	Spread Expression // nil unless ..base present
	Line   int
	Column int
}

func (s *StructLitExpr) Pos() (int, int) { return s.Line, s.Column }
func (s *StructLitExpr) exprNode()       {}

// RangeExpr represents start..end (half-open) or start..=end (inclusive)
type RangeExpr struct {
	Start     Expression
	End       Expression
	Inclusive bool
	Line      int
	Column    int
}

func (r *RangeExpr) Pos() (int, int) { return r.Line, r.Column }
func (r *RangeExpr) exprNode()       {}

// ClosureExpr represents |params| body
type ClosureExpr struct {
	Params []string
	Body   Expression
	Line   int
	Column int
}

func (c *ClosureExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *ClosureExpr) exprNode()       {}

// IndexExpr represents obj[index]
type IndexExpr struct {
	Object Expression
	Index  Expression
	Line   int
	Column int
}

func (i *IndexExpr) Pos() (int, int) { return i.Line, i.Column }
func (i *IndexExpr) exprNode()       {}

// TupleExpr represents a tuple literal
type TupleExpr struct {
	Elements []Expression
	Line     int
	Column   int
}

func (t *TupleExpr) Pos() (int, int) { return t.Line, t.Column }
func (t *TupleExpr) exprNode()       {}

// MacroDelim is the delimiter kind of a macro invocation
type MacroDelim int

const (
	ParenDelim   MacroDelim = iota // name!(...)
	BracketDelim                   // name![...]
	BraceDelim                     // name!{...}
)

// MacroExpr represents a macro invocation
type MacroExpr struct {
	Name   string
	Args   []Expression
	Delim  MacroDelim
	Line   int
	Column int
}

func (m *MacroExpr) Pos() (int, int) { return m.Line, m.Column }
func (m *MacroExpr) exprNode()       {}

// TryExpr represents the ? suffix
type TryExpr struct {
	Expr   Expression
	Line   int
	Column int
}

func (t *TryExpr) Pos() (int, int) { return t.Line, t.Column }
func (t *TryExpr) exprNode()       {}

// AwaitExpr represents the .await suffix
type AwaitExpr struct {
	Expr   Expression
	Line   int
	Column int
}

func (a *AwaitExpr) Pos() (int, int) { return a.Line, a.Column }
func (a *AwaitExpr) exprNode()       {}

// ChannelSendExpr represents: ch <- value
type ChannelSendExpr struct {
	Channel Expression
	Value   Expression
	Line    int
	Column  int
}

func (c *ChannelSendExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *ChannelSendExpr) exprNode()       {}

// ChannelRecvExpr represents: <-ch
type ChannelRecvExpr struct {
	Channel Expression
	Line    int
	Column  int
}

func (c *ChannelRecvExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *ChannelRecvExpr) exprNode()       {}

// BlockExpr represents a block used in expression position; its value is
// the block's trailing expression.
type BlockExpr struct {
	Block  *Block
	Line   int
	Column int
}

func (b *BlockExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BlockExpr) exprNode()       {}

// CastExpr represents: expr as Type
type CastExpr struct {
	Expr   Expression
	Type   *Type
	Line   int
	Column int
}

func (c *CastExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CastExpr) exprNode()       {}

// MatchExpr represents a match; usable in both statement and expression
// position.
type MatchExpr struct {
	Scrutinee Expression
	Arms      []*MatchArm
	Line      int
	Column    int
}

func (m *MatchExpr) Pos() (int, int) { return m.Line, m.Column }
func (m *MatchExpr) exprNode()       {}

// MatchArm represents one arm of a match
type MatchArm struct {
	Pattern *Pattern
	Guard   Expression // nil if absent
	Body    Expression
	Line    int
	Column  int
}

func (m *MatchArm) Pos() (int, int) { return m.Line, m.Column }

// PatternKind distinguishes the pattern shapes
type PatternKind int

const (
	WildcardPattern PatternKind = iota
	IdentPattern
	VariantPattern
	LiteralPattern
	TuplePattern
	OrPattern
)

// Pattern represents a match pattern. Which fields are meaningful depends
// on Kind: Name for identifier and variant patterns (variant names may be
// dotted paths), Binding for a variant's single bound identifier, Literal
// for literal patterns, Elements for tuple and or-patterns.
type Pattern struct {
	Kind     PatternKind
	Name     string
	Binding  string
	Literal  Expression
	Elements []*Pattern
	Line     int
	Column   int
}

func (p *Pattern) Pos() (int, int) { return p.Line, p.Column }
