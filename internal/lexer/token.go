package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, y, push
	INT_LIT    // 123, 0xff
	FLOAT_LIT  // 123.45
	STRING_LIT // "hello {name}"

	// Keywords
	FN
	STRUCT
	ENUM
	TRAIT
	IMPL
	CONST
	STATIC
	BOUND
	USE
	LET
	MUT
	IF
	ELSE
	MATCH
	FOR
	IN
	LOOP
	WHILE
	GO
	DEFER
	BREAK
	CONTINUE
	RETURN
	SELF
	SELF_TYPE
	AS
	TRUE
	FALSE
	WHERE
	DYN
	TYPE

	// Operators
	PLUS           // +
	MINUS          // -
	STAR           // *
	SLASH          // /
	PERCENT        // %
	EQ             // ==
	NEQ            // !=
	LT             // <
	GT             // >
	LEQ            // <=
	GEQ            // >=
	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	ANDAND         // &&
	OROR           // ||
	BANG           // !
	AMP            // &
	PIPE           // |
	CARET          // ^
	SHL            // <<
	LARROW         // <-
	ARROW          // ->
	FATARROW       // =>
	QUESTION       // ?
	AT             // @

	// Delimiters
	LPAREN     // (
	RPAREN     // )
	LBRACE     // {
	RBRACE     // }
	LBRACKET   // [
	RBRACKET   // ]
	COMMA      // ,
	COLON      // :
	COLONCOLON // ::
	SEMICOLON  // ;
	DOT        // .
	DOTDOT     // ..
	DOTDOTEQ   // ..=
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT_LIT: "INT_LIT", FLOAT_LIT: "FLOAT_LIT", STRING_LIT: "STRING_LIT",
	FN: "fn", STRUCT: "struct", ENUM: "enum", TRAIT: "trait", IMPL: "impl",
	CONST: "const", STATIC: "static", BOUND: "bound", USE: "use",
	LET: "let", MUT: "mut", IF: "if", ELSE: "else", MATCH: "match",
	FOR: "for", IN: "in", LOOP: "loop", WHILE: "while", GO: "go",
	DEFER: "defer", BREAK: "break", CONTINUE: "continue", RETURN: "return",
	SELF: "self", SELF_TYPE: "Self", AS: "as", TRUE: "true", FALSE: "false",
	WHERE: "where", DYN: "dyn", TYPE: "type",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LEQ: "<=", GEQ: ">=",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=",
	ANDAND: "&&", OROR: "||", BANG: "!", AMP: "&", PIPE: "|", CARET: "^",
	SHL: "<<", LARROW: "<-", ARROW: "->", FATARROW: "=>",
	QUESTION: "?", AT: "@",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", COLON: ":",
	COLONCOLON: "::", SEMICOLON: ";", DOT: ".", DOTDOT: "..", DOTDOTEQ: "..=",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"fn": FN, "struct": STRUCT, "enum": ENUM, "trait": TRAIT, "impl": IMPL,
	"const": CONST, "static": STATIC, "bound": BOUND, "use": USE,
	"let": LET, "mut": MUT, "if": IF, "else": ELSE, "match": MATCH,
	"for": FOR, "in": IN, "loop": LOOP, "while": WHILE, "go": GO,
	"defer": DEFER, "break": BREAK, "continue": CONTINUE, "return": RETURN,
	"self": SELF, "Self": SELF_TYPE, "as": AS, "true": TRUE, "false": FALSE,
	"where": WHERE, "dyn": DYN, "type": TYPE,
}

// LookupIdent returns the keyword token type for an identifier, or IDENT
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}
