package parser

import (
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
	"github.com/windjammer-lang/windjammer/internal/lexer"
)

// Parser consumes the token stream and produces a Program AST.
// Parse errors are collected as diagnostics; the parser synchronizes at
// item boundaries so that one error does not cascade.
type Parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics

	// type parameter names in scope, so type references can be
	// classified as Generic rather than Custom
	typeParams map[string]bool

	// struct literals are not parsed in condition/iterable position
	noStructLit bool
}

// New creates a new parser for the given source
func New(source string) *Parser {
	l := lexer.New(source)
	return &Parser{
		tokens:     l.Tokenize(),
		diags:      diagnostic.New(),
		typeParams: make(map[string]bool),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// match consumes the current token if it has the given type
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type or records a parse error
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if p.check(tt) {
		return p.advance()
	}
	tok := p.current()
	p.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Kind:     diagnostic.ParserUnexpected,
		Message:  "expected '" + tt.String() + "', found '" + tok.Literal + "'",
		Line:     tok.Line,
		Column:   tok.Column,
	})
	return tok
}

// synchronize skips tokens until a likely item boundary
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.FN, lexer.STRUCT, lexer.ENUM, lexer.TRAIT, lexer.IMPL,
			lexer.CONST, lexer.STATIC, lexer.BOUND, lexer.USE, lexer.AT:
			return
		}
		p.advance()
	}
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.check(lexer.EOF) {
		start := p.pos
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
		if p.pos == start {
			p.advance() // ensure forward progress
			p.synchronize()
		}
	}
	return prog
}

// parseItem parses one top-level item, including any leading decorators
func (p *Parser) parseItem() ast.Item {
	decorators := p.parseDecorators()

	switch p.current().Type {
	case lexer.FN:
		return p.parseFunctionDecl(decorators)
	case lexer.STRUCT:
		return p.parseStructDecl(decorators)
	case lexer.ENUM:
		return p.parseEnumDecl(decorators)
	case lexer.TRAIT:
		return p.parseTraitDecl()
	case lexer.IMPL:
		return p.parseImplBlock()
	case lexer.CONST:
		c := p.parseConst()
		return &ast.ConstDecl{Name: c.Name, Type: c.Type, Value: c.Value, Line: c.Line, Column: c.Column}
	case lexer.STATIC:
		s := p.parseStatic()
		return &ast.StaticDecl{Name: s.Name, Mutable: s.Mutable, Type: s.Type, Value: s.Value, Line: s.Line, Column: s.Column}
	case lexer.BOUND:
		return p.parseBoundAlias()
	case lexer.USE:
		return p.parseUseDecl()
	default:
		tok := p.current()
		p.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Kind:     diagnostic.ParserUnexpected,
			Message:  "unexpected token '" + tok.Literal + "' at top level",
			Line:     tok.Line,
			Column:   tok.Column,
		})
		p.synchronize()
		return nil
	}
}

// parseDecorators parses zero or more @name(args) decorators
func (p *Parser) parseDecorators() []*ast.Decorator {
	var decorators []*ast.Decorator
	for p.check(lexer.AT) {
		tok := p.advance()
		name := p.expect(lexer.IDENT)
		dec := &ast.Decorator{Name: name.Literal, Line: tok.Line, Column: tok.Column}
		if p.match(lexer.LPAREN) {
			for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
				arg := &ast.DecoratorArg{}
				if p.check(lexer.IDENT) && p.peek().Type == lexer.COLON {
					arg.Key = p.advance().Literal
					p.advance() // ':'
				}
				arg.Value = p.parseExpression()
				dec.Args = append(dec.Args, arg)
				if !p.match(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN)
		}
		decorators = append(decorators, dec)
	}
	return decorators
}

// parseTypeParams parses <T, U: Bound + Bound, ...> and registers the
// parameter names so later type references classify as Generic.
func (p *Parser) parseTypeParams() []*ast.TypeParam {
	if !p.match(lexer.LT) {
		return nil
	}
	var params []*ast.TypeParam
	for !p.check(lexer.GT) && !p.check(lexer.EOF) {
		name := p.expect(lexer.IDENT)
		tp := &ast.TypeParam{Name: name.Literal}
		p.typeParams[name.Literal] = true
		if p.match(lexer.COLON) {
			tp.Bounds = append(tp.Bounds, p.expect(lexer.IDENT).Literal)
			for p.match(lexer.PLUS) {
				tp.Bounds = append(tp.Bounds, p.expect(lexer.IDENT).Literal)
			}
		}
		params = append(params, tp)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT)
	return params
}

// parseWhere parses: where T: Bound + Bound, U: Bound
func (p *Parser) parseWhere() []*ast.WherePred {
	if !p.match(lexer.WHERE) {
		return nil
	}
	var preds []*ast.WherePred
	for p.check(lexer.IDENT) {
		pred := &ast.WherePred{TypeName: p.advance().Literal}
		p.expect(lexer.COLON)
		pred.Bounds = append(pred.Bounds, p.expect(lexer.IDENT).Literal)
		for p.match(lexer.PLUS) {
			pred.Bounds = append(pred.Bounds, p.expect(lexer.IDENT).Literal)
		}
		preds = append(preds, pred)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return preds
}

// parseFunctionDecl parses: fn name<T>(params) -> Type [where ...] { ... }
func (p *Parser) parseFunctionDecl(decorators []*ast.Decorator) *ast.FunctionDecl {
	tok := p.expect(lexer.FN)
	name := p.expect(lexer.IDENT)

	saved := p.saveTypeParams()
	fn := &ast.FunctionDecl{
		Name:       name.Literal,
		Decorators: decorators,
		Line:       tok.Line,
		Column:     tok.Column,
	}
	fn.TypeParams = p.parseTypeParams()

	p.expect(lexer.LPAREN)
	fn.Params = p.parseParamList()
	p.expect(lexer.RPAREN)

	if p.match(lexer.ARROW) {
		fn.ReturnType = p.parseType()
	}
	fn.Where = p.parseWhere()

	if p.check(lexer.LBRACE) {
		fn.Body = p.parseBlock()
	}
	p.restoreTypeParams(saved)
	return fn
}

func (p *Parser) saveTypeParams() map[string]bool {
	saved := p.typeParams
	p.typeParams = make(map[string]bool, len(saved))
	for k := range saved {
		p.typeParams[k] = true
	}
	return saved
}

func (p *Parser) restoreTypeParams(saved map[string]bool) {
	p.typeParams = saved
}

// parseParamList parses function parameters, including the self forms:
// self, mut self, &self, &mut self.
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		tok := p.current()
		switch {
		case p.check(lexer.AMP):
			p.advance()
			hint := ast.HintRef
			if p.match(lexer.MUT) {
				hint = ast.HintMut
			}
			if p.check(lexer.SELF) {
				p.advance()
				params = append(params, &ast.Param{
					Name:      "self",
					Type:      ast.Custom("Self"),
					Ownership: hint,
					Line:      tok.Line,
					Column:    tok.Column,
				})
			} else {
				// regular parameter written backwards is a parse error
				p.expect(lexer.SELF)
			}
		case p.check(lexer.SELF):
			p.advance()
			params = append(params, &ast.Param{
				Name:      "self",
				Type:      ast.Custom("Self"),
				Ownership: ast.HintOwned,
				Line:      tok.Line,
				Column:    tok.Column,
			})
		case p.check(lexer.MUT) && p.peek().Type == lexer.SELF:
			p.advance()
			p.advance()
			params = append(params, &ast.Param{
				Name:      "self",
				Type:      ast.Custom("Self"),
				Ownership: ast.HintOwned,
				Line:      tok.Line,
				Column:    tok.Column,
			})
		default:
			name := p.expect(lexer.IDENT)
			p.expect(lexer.COLON)
			ty := p.parseType()
			params = append(params, &ast.Param{
				Name:      name.Literal,
				Type:      ty,
				Ownership: hintFromType(ty),
				Line:      name.Line,
				Column:    name.Column,
			})
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return params
}

// hintFromType derives the surface ownership hint from the written type:
// &T means Ref, &mut T means Mut, anything else is left to the analyzer.
func hintFromType(ty *ast.Type) ast.OwnershipHint {
	switch ty.Kind {
	case ast.TypeReference:
		return ast.HintRef
	case ast.TypeMutRef:
		return ast.HintMut
	default:
		return ast.HintInferred
	}
}

// parseType parses a type reference
func (p *Parser) parseType() *ast.Type {
	switch p.current().Type {
	case lexer.AMP:
		p.advance()
		if p.match(lexer.MUT) {
			return &ast.Type{Kind: ast.TypeMutRef, Args: []*ast.Type{p.parseType()}}
		}
		return &ast.Type{Kind: ast.TypeReference, Args: []*ast.Type{p.parseType()}}
	case lexer.DYN:
		p.advance()
		name := p.expect(lexer.IDENT)
		return &ast.Type{Kind: ast.TypeTraitObject, Name: name.Literal}
	case lexer.LPAREN:
		p.advance()
		var elems []*ast.Type
		for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
			elems = append(elems, p.parseType())
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.Type{Kind: ast.TypeTuple, Args: elems}
	case lexer.SELF_TYPE:
		p.advance()
		if p.match(lexer.COLONCOLON) {
			assoc := p.expect(lexer.IDENT)
			return &ast.Type{Kind: ast.TypeAssociated, Name: "Self", Assoc: assoc.Literal}
		}
		return ast.Custom("Self")
	case lexer.IDENT:
		return p.parseNamedType()
	default:
		tok := p.current()
		p.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Kind:     diagnostic.ParserUnexpected,
			Message:  "expected type, found '" + tok.Literal + "'",
			Line:     tok.Line,
			Column:   tok.Column,
		})
		p.advance()
		return ast.Custom("error")
	}
}

// parseNamedType parses a nominal type: primitives, dotted paths,
// associated types, and parameterized forms.
func (p *Parser) parseNamedType() *ast.Type {
	name := p.expect(lexer.IDENT).Literal

	// Dotted module path: http.Request
	for p.check(lexer.DOT) && p.peek().Type == lexer.IDENT {
		p.advance()
		name = name + "." + p.advance().Literal
	}

	// Associated type: T::Item
	if p.check(lexer.COLONCOLON) && p.peek().Type == lexer.IDENT {
		p.advance()
		assoc := p.advance().Literal
		return &ast.Type{Kind: ast.TypeAssociated, Name: name, Assoc: assoc}
	}

	// Parameterized: Name<Args>
	if p.check(lexer.LT) {
		p.advance()
		var args []*ast.Type
		for !p.check(lexer.GT) && !p.check(lexer.EOF) {
			args = append(args, p.parseType())
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.GT)
		switch name {
		case "Option":
			return &ast.Type{Kind: ast.TypeOption, Args: args}
		case "Result":
			return &ast.Type{Kind: ast.TypeResult, Args: args}
		case "Vec":
			return &ast.Type{Kind: ast.TypeVec, Args: args}
		default:
			return &ast.Type{Kind: ast.TypeParameterized, Name: name, Args: args}
		}
	}

	switch name {
	case "Int":
		return ast.Prim(ast.TypeInt)
	case "Int32":
		return ast.Prim(ast.TypeInt32)
	case "Uint":
		return ast.Prim(ast.TypeUint)
	case "Float":
		return ast.Prim(ast.TypeFloat)
	case "Bool":
		return ast.Prim(ast.TypeBool)
	case "String":
		return ast.Prim(ast.TypeString)
	}

	if p.typeParams[name] {
		return ast.Generic(name)
	}
	return ast.Custom(name)
}

// parseStructDecl parses a struct declaration
func (p *Parser) parseStructDecl(decorators []*ast.Decorator) *ast.StructDecl {
	tok := p.expect(lexer.STRUCT)
	name := p.expect(lexer.IDENT)

	saved := p.saveTypeParams()
	decl := &ast.StructDecl{
		Name:       name.Literal,
		Decorators: decorators,
		Line:       tok.Line,
		Column:     tok.Column,
	}
	decl.TypeParams = p.parseTypeParams()
	decl.Where = p.parseWhere()

	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		fname := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		ftype := p.parseType()
		decl.Fields = append(decl.Fields, &ast.FieldDecl{
			Name:   fname.Literal,
			Type:   ftype,
			Line:   fname.Line,
			Column: fname.Column,
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	p.restoreTypeParams(saved)
	return decl
}

// parseEnumDecl parses an enum declaration with unit, tuple and record
// variants.
func (p *Parser) parseEnumDecl(decorators []*ast.Decorator) *ast.EnumDecl {
	tok := p.expect(lexer.ENUM)
	name := p.expect(lexer.IDENT)

	saved := p.saveTypeParams()
	decl := &ast.EnumDecl{
		Name:       name.Literal,
		Decorators: decorators,
		Line:       tok.Line,
		Column:     tok.Column,
	}
	decl.TypeParams = p.parseTypeParams()

	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		vname := p.expect(lexer.IDENT)
		variant := &ast.EnumVariant{
			Name:   vname.Literal,
			Kind:   ast.VariantUnit,
			Line:   vname.Line,
			Column: vname.Column,
		}
		if p.match(lexer.LPAREN) {
			variant.Kind = ast.VariantTuple
			for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
				variant.Types = append(variant.Types, p.parseType())
				if !p.match(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN)
		} else if p.match(lexer.LBRACE) {
			variant.Kind = ast.VariantRecord
			for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
				fname := p.expect(lexer.IDENT)
				p.expect(lexer.COLON)
				variant.Fields = append(variant.Fields, &ast.FieldDecl{
					Name:   fname.Literal,
					Type:   p.parseType(),
					Line:   fname.Line,
					Column: fname.Column,
				})
				if !p.match(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RBRACE)
		}
		decl.Variants = append(decl.Variants, variant)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	p.restoreTypeParams(saved)
	return decl
}

// parseTraitDecl parses a trait declaration with supertraits, associated
// types, and methods with optional default bodies.
func (p *Parser) parseTraitDecl() *ast.TraitDecl {
	tok := p.expect(lexer.TRAIT)
	name := p.expect(lexer.IDENT)
	decl := &ast.TraitDecl{
		Name:   name.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}

	if p.match(lexer.COLON) {
		decl.Supertraits = append(decl.Supertraits, p.expect(lexer.IDENT).Literal)
		for p.match(lexer.PLUS) {
			decl.Supertraits = append(decl.Supertraits, p.expect(lexer.IDENT).Literal)
		}
	}

	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.TYPE:
			atok := p.advance()
			aname := p.expect(lexer.IDENT)
			assoc := &ast.AssociatedType{Name: aname.Literal, Line: atok.Line, Column: atok.Column}
			if p.match(lexer.ASSIGN) {
				assoc.Concrete = p.parseType()
			}
			p.match(lexer.SEMICOLON)
			decl.AssocTypes = append(decl.AssocTypes, assoc)
		case lexer.FN, lexer.AT:
			decorators := p.parseDecorators()
			method := p.parseFunctionDecl(decorators)
			p.match(lexer.SEMICOLON)
			decl.Methods = append(decl.Methods, method)
		default:
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return decl
}

// parseImplBlock parses an inherent or trait-for-type impl block
func (p *Parser) parseImplBlock() *ast.ImplBlock {
	tok := p.expect(lexer.IMPL)

	saved := p.saveTypeParams()
	block := &ast.ImplBlock{Line: tok.Line, Column: tok.Column}
	block.TypeParams = p.parseTypeParams()

	first := p.expect(lexer.IDENT).Literal
	p.skipTypeArgs()

	if p.match(lexer.FOR) {
		block.TraitName = first
		block.TypeName = p.expect(lexer.IDENT).Literal
		p.skipTypeArgs()
	} else {
		block.TypeName = first
	}

	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.TYPE:
			atok := p.advance()
			aname := p.expect(lexer.IDENT)
			p.expect(lexer.ASSIGN)
			assoc := &ast.AssociatedType{
				Name:     aname.Literal,
				Concrete: p.parseType(),
				Line:     atok.Line,
				Column:   atok.Column,
			}
			p.match(lexer.SEMICOLON)
			block.AssocTypes = append(block.AssocTypes, assoc)
		case lexer.FN, lexer.AT:
			decorators := p.parseDecorators()
			block.Methods = append(block.Methods, p.parseFunctionDecl(decorators))
		default:
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	p.restoreTypeParams(saved)
	return block
}

// skipTypeArgs consumes a balanced <...> if present. Generic arguments on
// impl target names are erased; the impl's own type parameter list carries
// the information codegen needs.
func (p *Parser) skipTypeArgs() {
	if !p.check(lexer.LT) {
		return
	}
	depth := 0
	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.LT:
			depth++
		case lexer.GT:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

type constLike struct {
	Name    string
	Mutable bool
	Type    *ast.Type
	Value   ast.Expression
	Line    int
	Column  int
}

// parseConst parses: const NAME: Type = expr
func (p *Parser) parseConst() constLike {
	tok := p.expect(lexer.CONST)
	name := p.expect(lexer.IDENT)
	var ty *ast.Type
	if p.match(lexer.COLON) {
		ty = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpression()
	p.match(lexer.SEMICOLON)
	return constLike{Name: name.Literal, Type: ty, Value: value, Line: tok.Line, Column: tok.Column}
}

// parseStatic parses: static [mut] NAME: Type = expr
func (p *Parser) parseStatic() constLike {
	tok := p.expect(lexer.STATIC)
	mutable := p.match(lexer.MUT)
	name := p.expect(lexer.IDENT)
	var ty *ast.Type
	if p.match(lexer.COLON) {
		ty = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpression()
	p.match(lexer.SEMICOLON)
	return constLike{Name: name.Literal, Mutable: mutable, Type: ty, Value: value, Line: tok.Line, Column: tok.Column}
}

// parseBoundAlias parses: bound Name = Trait + Trait
func (p *Parser) parseBoundAlias() *ast.BoundAlias {
	tok := p.expect(lexer.BOUND)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.ASSIGN)
	alias := &ast.BoundAlias{Name: name.Literal, Line: tok.Line, Column: tok.Column}
	alias.Traits = append(alias.Traits, p.expect(lexer.IDENT).Literal)
	for p.match(lexer.PLUS) {
		alias.Traits = append(alias.Traits, p.expect(lexer.IDENT).Literal)
	}
	p.match(lexer.SEMICOLON)
	return alias
}

// parseUseDecl parses: use a.b.c [as name]
func (p *Parser) parseUseDecl() *ast.UseDecl {
	tok := p.expect(lexer.USE)
	var parts []string
	parts = append(parts, p.expect(lexer.IDENT).Literal)
	for p.match(lexer.DOT) {
		if p.check(lexer.STAR) {
			p.advance()
			parts = append(parts, "*")
			break
		}
		parts = append(parts, p.expect(lexer.IDENT).Literal)
	}
	decl := &ast.UseDecl{Path: strings.Join(parts, "."), Line: tok.Line, Column: tok.Column}
	if p.match(lexer.AS) {
		decl.Alias = p.expect(lexer.IDENT).Literal
	}
	p.match(lexer.SEMICOLON)
	return decl
}

// parseBlock parses a brace-delimited statement list
func (p *Parser) parseBlock() *ast.Block {
	tok := p.expect(lexer.LBRACE)
	block := &ast.Block{Line: tok.Line, Column: tok.Column}
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		start := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.pos == start {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

// parseStatement parses one statement; trailing semicolons are optional
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.CONST:
		c := p.parseConst()
		return &ast.ConstStmt{Name: c.Name, Type: c.Type, Value: c.Value, Line: c.Line, Column: c.Column}
	case lexer.STATIC:
		s := p.parseStatic()
		return &ast.StaticStmt{Name: s.Name, Mutable: s.Mutable, Type: s.Type, Value: s.Value, Line: s.Line, Column: s.Column}
	case lexer.RETURN:
		tok := p.advance()
		stmt := &ast.ReturnStmt{Line: tok.Line, Column: tok.Column}
		// the value must start on the same line, a newline ends the return
		if !p.check(lexer.RBRACE) && !p.check(lexer.SEMICOLON) && !p.check(lexer.EOF) &&
			p.current().Line == tok.Line {
			stmt.Value = p.parseExpression()
		}
		p.match(lexer.SEMICOLON)
		return stmt
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.LOOP:
		tok := p.advance()
		return &ast.LoopStmt{Body: p.parseBlock(), Line: tok.Line, Column: tok.Column}
	case lexer.WHILE:
		tok := p.advance()
		cond := p.parseCondition()
		return &ast.WhileStmt{Condition: cond, Body: p.parseBlock(), Line: tok.Line, Column: tok.Column}
	case lexer.GO:
		tok := p.advance()
		return &ast.GoStmt{Body: p.parseBlock(), Line: tok.Line, Column: tok.Column}
	case lexer.DEFER:
		tok := p.advance()
		stmt := &ast.DeferStmt{Expr: p.parseExpression(), Line: tok.Line, Column: tok.Column}
		p.match(lexer.SEMICOLON)
		return stmt
	case lexer.BREAK:
		tok := p.advance()
		p.match(lexer.SEMICOLON)
		return &ast.BreakStmt{Line: tok.Line, Column: tok.Column}
	case lexer.CONTINUE:
		tok := p.advance()
		p.match(lexer.SEMICOLON)
		return &ast.ContinueStmt{Line: tok.Line, Column: tok.Column}
	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseLetStmt parses: let [mut] name [: Type] = expr
func (p *Parser) parseLetStmt() ast.Statement {
	tok := p.expect(lexer.LET)
	mutable := p.match(lexer.MUT)
	name := p.expect(lexer.IDENT)
	stmt := &ast.LetStmt{
		Name:    name.Literal,
		Mutable: mutable,
		Line:    tok.Line,
		Column:  tok.Column,
	}
	if p.match(lexer.COLON) {
		stmt.Type = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	stmt.Value = p.parseExpression()
	p.match(lexer.SEMICOLON)
	return stmt
}

// parseIfStmt parses an if statement with optional else-if chain
func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.expect(lexer.IF)
	cond := p.parseCondition()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Condition: cond, Then: then, Line: tok.Line, Column: tok.Column}
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

// parseForStmt parses: for x in iterable { ... }
func (p *Parser) parseForStmt() ast.Statement {
	tok := p.expect(lexer.FOR)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	iterable := p.parseCondition()
	return &ast.ForStmt{
		Variable: name.Literal,
		Iterable: iterable,
		Body:     p.parseBlock(),
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseCondition parses an expression with struct literals disabled, for
// if/while conditions and for-loop iterables.
func (p *Parser) parseCondition() ast.Expression {
	saved := p.noStructLit
	p.noStructLit = true
	expr := p.parseExpression()
	p.noStructLit = saved
	return expr
}

// parseExprOrAssignStmt parses an expression statement or an assignment
func (p *Parser) parseExprOrAssignStmt() ast.Statement {
	line, col := p.current().Line, p.current().Column
	expr := p.parseExpression()

	var op ast.AssignOp
	isAssign := true
	switch p.current().Type {
	case lexer.ASSIGN:
		op = ast.Assign
	case lexer.PLUS_ASSIGN:
		op = ast.AddAssign
	case lexer.MINUS_ASSIGN:
		op = ast.SubAssign
	case lexer.STAR_ASSIGN:
		op = ast.MulAssign
	case lexer.SLASH_ASSIGN:
		op = ast.DivAssign
	case lexer.PERCENT_ASSIGN:
		op = ast.ModAssign
	default:
		isAssign = false
	}

	if isAssign {
		p.advance()
		value := p.parseExpression()
		p.match(lexer.SEMICOLON)
		return &ast.AssignStmt{Target: expr, Op: op, Value: value, Line: line, Column: col}
	}

	p.match(lexer.SEMICOLON)
	return &ast.ExprStmt{Expr: expr, Line: line, Column: col}
}

// parseExpression parses a full expression, including channel sends
func (p *Parser) parseExpression() ast.Expression {
	expr := p.parseTernary()
	if p.check(lexer.LARROW) {
		tok := p.advance()
		value := p.parseTernary()
		return &ast.ChannelSendExpr{Channel: expr, Value: value, Line: tok.Line, Column: tok.Column}
	}
	return expr
}

// parseTernary parses: cond ? then : else
func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseRange()
	if p.check(lexer.QUESTION) {
		tok := p.advance()
		then := p.parseTernary()
		p.expect(lexer.COLON)
		els := p.parseTernary()
		return &ast.TernaryExpr{Condition: cond, Then: then, Else: els, Line: tok.Line, Column: tok.Column}
	}
	return cond
}

// ternaryFollows reports whether the current '?' begins a ternary rather
// than a try operator: the next token must start an expression on the
// same line. A '?' left unconsumed here is picked up by parseTernary once
// the precedence chain unwinds.
func (p *Parser) ternaryFollows() bool {
	q := p.current()
	next := p.peek()
	if next.Line != q.Line {
		return false
	}
	switch next.Type {
	case lexer.IDENT, lexer.INT_LIT, lexer.FLOAT_LIT, lexer.STRING_LIT,
		lexer.TRUE, lexer.FALSE, lexer.SELF, lexer.SELF_TYPE,
		lexer.LPAREN, lexer.PIPE, lexer.OROR, lexer.MATCH, lexer.BANG,
		lexer.LBRACE:
		return true
	}
	return false
}

// parseRange parses: a..b and a..=b
func (p *Parser) parseRange() ast.Expression {
	start := p.parseOr()
	if p.check(lexer.DOTDOT) || p.check(lexer.DOTDOTEQ) {
		inclusive := p.current().Type == lexer.DOTDOTEQ
		tok := p.advance()
		end := p.parseOr()
		return &ast.RangeExpr{
			Start:     start,
			End:       end,
			Inclusive: inclusive,
			Line:      tok.Line,
			Column:    tok.Column,
		}
	}
	return start
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.check(lexer.OROR) {
		tok := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Left: left, Op: ast.Or, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseBitOr()
	for p.check(lexer.ANDAND) {
		tok := p.advance()
		right := p.parseBitOr()
		left = &ast.BinaryExpr{Left: left, Op: ast.And, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expression {
	left := p.parseBitXor()
	for p.check(lexer.PIPE) {
		tok := p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpr{Left: left, Op: ast.BitOr, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	left := p.parseBitAnd()
	for p.check(lexer.CARET) {
		tok := p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpr{Left: left, Op: ast.BitXor, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	left := p.parseEquality()
	for p.check(lexer.AMP) && p.peek().Type != lexer.MUT {
		tok := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Left: left, Op: ast.BitAnd, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.check(lexer.EQ) || p.check(lexer.NEQ) {
		op := ast.Eq
		if p.current().Type == lexer.NEQ {
			op = ast.Ne
		}
		tok := p.advance()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseShift()
	for {
		var op ast.BinaryOp
		switch p.current().Type {
		case lexer.LT:
			op = ast.Lt
		case lexer.LEQ:
			op = ast.Le
		case lexer.GT:
			// adjacent '>' '>' is shift-right, handled below us
			if p.isShiftRight() {
				return left
			}
			op = ast.Gt
		case lexer.GEQ:
			op = ast.Ge
		default:
			return left
		}
		tok := p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Line: tok.Line, Column: tok.Column}
	}
}

// isShiftRight reports whether the current GT token begins a '>>' pair
func (p *Parser) isShiftRight() bool {
	cur, next := p.current(), p.peek()
	return cur.Type == lexer.GT && next.Type == lexer.GT &&
		next.Line == cur.Line && next.Column == cur.Column+1
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAdditive()
	for {
		if p.check(lexer.SHL) {
			tok := p.advance()
			right := p.parseAdditive()
			left = &ast.BinaryExpr{Left: left, Op: ast.Shl, Right: right, Line: tok.Line, Column: tok.Column}
			continue
		}
		if p.isShiftRight() {
			tok := p.advance()
			p.advance()
			right := p.parseAdditive()
			left = &ast.BinaryExpr{Left: left, Op: ast.Shr, Right: right, Line: tok.Line, Column: tok.Column}
			continue
		}
		return left
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(lexer.PLUS) || p.check(lexer.MINUS) {
		op := ast.Add
		if p.current().Type == lexer.MINUS {
			op = ast.Sub
		}
		tok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseCast()
	for p.check(lexer.STAR) || p.check(lexer.SLASH) || p.check(lexer.PERCENT) {
		var op ast.BinaryOp
		switch p.current().Type {
		case lexer.STAR:
			op = ast.Mul
		case lexer.SLASH:
			op = ast.Div
		default:
			op = ast.Mod
		}
		tok := p.advance()
		right := p.parseCast()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

// parseCast parses: expr as Type
func (p *Parser) parseCast() ast.Expression {
	expr := p.parseUnary()
	for p.check(lexer.AS) {
		tok := p.advance()
		ty := p.parseType()
		expr = &ast.CastExpr{Expr: expr, Type: ty, Line: tok.Line, Column: tok.Column}
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.current()
	switch tok.Type {
	case lexer.MINUS:
		p.advance()
		return &ast.UnaryExpr{Op: ast.Neg, Operand: p.parseUnary(), Line: tok.Line, Column: tok.Column}
	case lexer.BANG:
		p.advance()
		return &ast.UnaryExpr{Op: ast.Not, Operand: p.parseUnary(), Line: tok.Line, Column: tok.Column}
	case lexer.STAR:
		p.advance()
		return &ast.UnaryExpr{Op: ast.Deref, Operand: p.parseUnary(), Line: tok.Line, Column: tok.Column}
	case lexer.AMP:
		p.advance()
		op := ast.Ref
		if p.match(lexer.MUT) {
			op = ast.MutRef
		}
		return &ast.UnaryExpr{Op: op, Operand: p.parseUnary(), Line: tok.Line, Column: tok.Column}
	case lexer.LARROW:
		p.advance()
		return &ast.ChannelRecvExpr{Channel: p.parseUnary(), Line: tok.Line, Column: tok.Column}
	}
	return p.parsePostfix()
}

// parsePostfix parses call, method call, field access, index, try, await
// and path suffixes.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.current().Type {
		case lexer.DOT:
			p.advance()
			name := p.expect(lexer.IDENT)
			if name.Literal == "await" {
				expr = &ast.AwaitExpr{Expr: expr, Line: name.Line, Column: name.Column}
				continue
			}
			expr = p.parseCallSuffix(expr, name)
		case lexer.COLONCOLON:
			p.advance()
			if p.check(lexer.LT) {
				// bare function turbofish: f::<T>(...)
				typeArgs := p.parseTurbofishArgs()
				call := &ast.MethodCallExpr{
					Object:   expr,
					Method:   "",
					TypeArgs: typeArgs,
					Line:     p.current().Line,
					Column:   p.current().Column,
				}
				p.expect(lexer.LPAREN)
				call.Args = p.parseArgs()
				p.expect(lexer.RPAREN)
				expr = call
				continue
			}
			name := p.expect(lexer.IDENT)
			expr = p.parseCallSuffix(expr, name)
		case lexer.LBRACKET:
			tok := p.advance()
			index := p.parseExpression()
			p.expect(lexer.RBRACKET)
			expr = &ast.IndexExpr{Object: expr, Index: index, Line: tok.Line, Column: tok.Column}
		case lexer.QUESTION:
			if p.ternaryFollows() {
				return expr
			}
			tok := p.advance()
			expr = &ast.TryExpr{Expr: expr, Line: tok.Line, Column: tok.Column}
		default:
			return expr
		}
	}
}

// parseCallSuffix turns obj.name / obj::name into a method call when an
// argument list (optionally preceded by turbofish) follows, or a field
// access otherwise.
func (p *Parser) parseCallSuffix(obj ast.Expression, name lexer.Token) ast.Expression {
	var typeArgs []*ast.Type
	if p.check(lexer.COLONCOLON) && p.peek().Type == lexer.LT {
		p.advance()
		typeArgs = p.parseTurbofishArgs()
	}
	if p.check(lexer.LPAREN) {
		p.advance()
		call := &ast.MethodCallExpr{
			Object:   obj,
			Method:   name.Literal,
			TypeArgs: typeArgs,
			Args:     p.parseArgs(),
			Line:     name.Line,
			Column:   name.Column,
		}
		p.expect(lexer.RPAREN)
		return call
	}
	return &ast.FieldAccessExpr{Object: obj, Field: name.Literal, Line: name.Line, Column: name.Column}
}

// parseTurbofishArgs parses ::<T1, T2> type arguments (the '::' has been
// consumed by the caller).
func (p *Parser) parseTurbofishArgs() []*ast.Type {
	p.expect(lexer.LT)
	var args []*ast.Type
	for !p.check(lexer.GT) && !p.check(lexer.EOF) {
		args = append(args, p.parseType())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT)
	return args
}

// parseArgs parses a call argument list up to (but not including) the
// closing paren. Arguments may carry labels: f(width: 10).
func (p *Parser) parseArgs() []*ast.Argument {
	var args []*ast.Argument
	saved := p.noStructLit
	p.noStructLit = false
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		arg := &ast.Argument{}
		if p.check(lexer.IDENT) && p.peek().Type == lexer.COLON && p.peekAt(2).Type != lexer.COLON {
			arg.Label = p.advance().Literal
			p.advance() // ':'
		}
		arg.Value = p.parseExpression()
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.noStructLit = saved
	return args
}

// parsePrimary parses literals, identifiers, grouping, struct literals,
// closures, macros, match expressions and blocks.
func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		value := parseIntLiteral(tok.Literal)
		return &ast.IntLit{Value: value, Line: tok.Line, Column: tok.Column}
	case lexer.FLOAT_LIT:
		p.advance()
		f, _ := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
		return &ast.FloatLit{Value: f, Raw: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.SELF:
		p.advance()
		return &ast.Identifier{Name: "self", Line: tok.Line, Column: tok.Column}
	case lexer.SELF_TYPE:
		p.advance()
		return &ast.Identifier{Name: "Self", Line: tok.Line, Column: tok.Column}
	case lexer.MATCH:
		return p.parseMatchExpr()
	case lexer.PIPE, lexer.OROR:
		return p.parseClosure()
	case lexer.LBRACE:
		block := p.parseBlock()
		return &ast.BlockExpr{Block: block, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		saved := p.noStructLit
		p.noStructLit = false
		first := p.parseExpression()
		if p.check(lexer.COMMA) {
			elems := []ast.Expression{first}
			for p.match(lexer.COMMA) {
				if p.check(lexer.RPAREN) {
					break
				}
				elems = append(elems, p.parseExpression())
			}
			p.expect(lexer.RPAREN)
			p.noStructLit = saved
			return &ast.TupleExpr{Elements: elems, Line: tok.Line, Column: tok.Column}
		}
		p.expect(lexer.RPAREN)
		p.noStructLit = saved
		return first
	case lexer.IDENT:
		return p.parseIdentExpr()
	default:
		p.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Kind:     diagnostic.ParserUnexpected,
			Message:  "unexpected token '" + tok.Literal + "' in expression",
			Line:     tok.Line,
			Column:   tok.Column,
		})
		p.advance()
		return &ast.Identifier{Name: "error", Line: tok.Line, Column: tok.Column}
	}
}

func parseIntLiteral(lit string) int64 {
	s := strings.ReplaceAll(lit, "_", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, _ := strconv.ParseInt(s[2:], 16, 64)
		return v
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// parseIdentExpr parses an identifier and any macro, call or struct
// literal that begins with it.
func (p *Parser) parseIdentExpr() ast.Expression {
	tok := p.advance()

	// Macro invocation: name!(...), name![...], name!{...}
	if p.check(lexer.BANG) {
		switch p.peek().Type {
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			return p.parseMacro(tok)
		}
	}

	// Plain call: name(...)
	if p.check(lexer.LPAREN) {
		p.advance()
		call := &ast.CallExpr{
			Function: tok.Literal,
			Args:     p.parseArgs(),
			Line:     tok.Line,
			Column:   tok.Column,
		}
		p.expect(lexer.RPAREN)
		return call
	}

	// Struct literal: Name { field: expr, .. }
	if p.check(lexer.LBRACE) && !p.noStructLit && isTypeName(tok.Literal) {
		return p.parseStructLit(tok)
	}

	return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
}

// isTypeName reports whether an identifier looks like a type (uppercase
// first letter), gating struct literal parsing.
func isTypeName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

// parseMacro parses a macro invocation; the name token has been consumed
func (p *Parser) parseMacro(name lexer.Token) ast.Expression {
	p.expect(lexer.BANG)
	var open, close lexer.TokenType
	var delim ast.MacroDelim
	switch p.current().Type {
	case lexer.LBRACKET:
		open, close, delim = lexer.LBRACKET, lexer.RBRACKET, ast.BracketDelim
	case lexer.LBRACE:
		open, close, delim = lexer.LBRACE, lexer.RBRACE, ast.BraceDelim
	default:
		open, close, delim = lexer.LPAREN, lexer.RPAREN, ast.ParenDelim
	}
	p.expect(open)
	macro := &ast.MacroExpr{
		Name:   name.Literal,
		Delim:  delim,
		Line:   name.Line,
		Column: name.Column,
	}
	saved := p.noStructLit
	p.noStructLit = false
	for !p.check(close) && !p.check(lexer.EOF) {
		macro.Args = append(macro.Args, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.noStructLit = saved
	p.expect(close)
	return macro
}

// parseStructLit parses a struct literal; the name token has been consumed
func (p *Parser) parseStructLit(name lexer.Token) ast.Expression {
	p.expect(lexer.LBRACE)
	lit := &ast.StructLitExpr{Name: name.Literal, Line: name.Line, Column: name.Column}
	saved := p.noStructLit
	p.noStructLit = false
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if p.check(lexer.DOTDOT) {
			p.advance()
			lit.Spread = p.parseExpression()
			break
		}
		fname := p.expect(lexer.IDENT)
		init := &ast.FieldInit{Name: fname.Literal}
		if p.match(lexer.COLON) {
			init.Value = p.parseExpression()
		} else {
			// shorthand: bare field name means field: field
			init.Shorthand = true
			init.Value = &ast.Identifier{Name: fname.Literal, Line: fname.Line, Column: fname.Column}
		}
		lit.Fields = append(lit.Fields, init)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.noStructLit = saved
	p.expect(lexer.RBRACE)
	return lit
}

// parseClosure parses: |a, b| expr  or  || expr
func (p *Parser) parseClosure() ast.Expression {
	tok := p.current()
	closure := &ast.ClosureExpr{Line: tok.Line, Column: tok.Column}
	if p.match(lexer.OROR) {
		// empty parameter list
	} else {
		p.expect(lexer.PIPE)
		for !p.check(lexer.PIPE) && !p.check(lexer.EOF) {
			closure.Params = append(closure.Params, p.expect(lexer.IDENT).Literal)
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.PIPE)
	}
	closure.Body = p.parseExpression()
	return closure
}

// parseMatchExpr parses a match with arms, optional guards and or-patterns
func (p *Parser) parseMatchExpr() ast.Expression {
	tok := p.expect(lexer.MATCH)
	scrutinee := p.parseCondition()
	expr := &ast.MatchExpr{Scrutinee: scrutinee, Line: tok.Line, Column: tok.Column}
	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		arm := &ast.MatchArm{Line: p.current().Line, Column: p.current().Column}
		arm.Pattern = p.parsePattern()
		if p.match(lexer.IF) {
			arm.Guard = p.parseCondition()
		}
		p.expect(lexer.FATARROW)
		if p.check(lexer.LBRACE) {
			block := p.parseBlock()
			arm.Body = &ast.BlockExpr{Block: block, Line: block.Line, Column: block.Column}
		} else {
			arm.Body = p.parseExpression()
		}
		expr.Arms = append(expr.Arms, arm)
		p.match(lexer.COMMA)
	}
	p.expect(lexer.RBRACE)
	return expr
}

// parsePattern parses a match pattern, including or-patterns
func (p *Parser) parsePattern() *ast.Pattern {
	first := p.parseSinglePattern()
	if !p.check(lexer.PIPE) {
		return first
	}
	or := &ast.Pattern{
		Kind:     ast.OrPattern,
		Elements: []*ast.Pattern{first},
		Line:     first.Line,
		Column:   first.Column,
	}
	for p.match(lexer.PIPE) {
		or.Elements = append(or.Elements, p.parseSinglePattern())
	}
	return or
}

func (p *Parser) parseSinglePattern() *ast.Pattern {
	tok := p.current()
	switch tok.Type {
	case lexer.IDENT:
		if tok.Literal == "_" {
			p.advance()
			return &ast.Pattern{Kind: ast.WildcardPattern, Line: tok.Line, Column: tok.Column}
		}
		p.advance()
		name := tok.Literal
		for (p.check(lexer.DOT) || p.check(lexer.COLONCOLON)) && p.peek().Type == lexer.IDENT {
			p.advance()
			name = name + "." + p.advance().Literal
		}
		pat := &ast.Pattern{Line: tok.Line, Column: tok.Column, Name: name}
		if strings.Contains(name, ".") || isTypeName(name) {
			pat.Kind = ast.VariantPattern
			if p.match(lexer.LPAREN) {
				pat.Binding = p.expect(lexer.IDENT).Literal
				p.expect(lexer.RPAREN)
			}
		} else {
			pat.Kind = ast.IdentPattern
		}
		return pat
	case lexer.INT_LIT, lexer.FLOAT_LIT, lexer.STRING_LIT, lexer.TRUE, lexer.FALSE, lexer.MINUS:
		lit := p.parseUnary()
		return &ast.Pattern{Kind: ast.LiteralPattern, Literal: lit, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		pat := &ast.Pattern{Kind: ast.TuplePattern, Line: tok.Line, Column: tok.Column}
		for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
			pat.Elements = append(pat.Elements, p.parsePattern())
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		return pat
	default:
		p.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Kind:     diagnostic.ParserUnexpected,
			Message:  "expected pattern, found '" + tok.Literal + "'",
			Line:     tok.Line,
			Column:   tok.Column,
		})
		p.advance()
		return &ast.Pattern{Kind: ast.WildcardPattern, Line: tok.Line, Column: tok.Column}
	}
}
