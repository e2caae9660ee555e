package lexer

import (
	"testing"
)

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "arithmetic operators",
			input:    "+ - * / %",
			expected: []TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, EOF},
		},
		{
			name:     "comparison operators",
			input:    "== != < > <= >=",
			expected: []TokenType{EQ, NEQ, LT, GT, LEQ, GEQ, EOF},
		},
		{
			name:     "compound assignment operators",
			input:    "= += -= *= /= %=",
			expected: []TokenType{ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN, EOF},
		},
		{
			name:     "logical and bitwise operators",
			input:    "&& || ! & | ^ <<",
			expected: []TokenType{ANDAND, OROR, BANG, AMP, PIPE, CARET, SHL, EOF},
		},
		{
			name:     "arrows and punctuation",
			input:    "-> => <- ? @ :: .. ..=",
			expected: []TokenType{ARROW, FATARROW, LARROW, QUESTION, AT, COLONCOLON, DOTDOT, DOTDOTEQ, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for i, expectedType := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedType {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
						i, expectedType, tok.Type)
				}
			}
		})
	}
}

func TestNextToken_Delimiters(t *testing.T) {
	input := "( ) { } [ ] , : ; ."
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		COMMA, COLON, SEMICOLON, DOT, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"fn", FN},
		{"struct", STRUCT},
		{"enum", ENUM},
		{"trait", TRAIT},
		{"impl", IMPL},
		{"const", CONST},
		{"static", STATIC},
		{"bound", BOUND},
		{"use", USE},
		{"let", LET},
		{"mut", MUT},
		{"if", IF},
		{"else", ELSE},
		{"match", MATCH},
		{"for", FOR},
		{"in", IN},
		{"loop", LOOP},
		{"while", WHILE},
		{"go", GO},
		{"defer", DEFER},
		{"break", BREAK},
		{"continue", CONTINUE},
		{"return", RETURN},
		{"self", SELF},
		{"Self", SELF_TYPE},
		{"as", AS},
		{"true", TRUE},
		{"false", FALSE},
		{"where", WHERE},
		{"dyn", DYN},
		{"type", TYPE},
	}

	for _, tt := range tests {
		l := New(tt.keyword)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("keyword %q - wrong type. expected=%q, got=%q",
				tt.keyword, tt.expected, tok.Type)
		}
	}
}

func TestNextToken_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
		literal  string
	}{
		{"123", INT_LIT, "123"},
		{"1_000_000", INT_LIT, "1_000_000"},
		{"0xff", INT_LIT, "0xff"},
		{"0xDEAD_BEEF", INT_LIT, "0xDEAD_BEEF"},
		{"3.25", FLOAT_LIT, "3.25"},
		{"1_0.5", FLOAT_LIT, "1_0.5"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("input %q - wrong type. expected=%q, got=%q",
				tt.input, tt.expected, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %q - wrong literal. expected=%q, got=%q",
				tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestNextToken_RangeAfterInt(t *testing.T) {
	// the '.' of '0..10' must not be swallowed by the integer
	input := "0..10"
	expected := []struct {
		typ     TokenType
		literal string
	}{
		{INT_LIT, "0"},
		{DOTDOT, ".."},
		{INT_LIT, "10"},
		{EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, exp.typ, tok.Type)
		}
		if tok.Literal != exp.literal {
			t.Errorf("token[%d] - wrong literal. expected=%q, got=%q", i, exp.literal, tok.Literal)
		}
	}
}

func TestNextToken_NoShiftRightToken(t *testing.T) {
	// nested generics close with two GT tokens, never a single '>>'
	input := "Vec<Vec<Int>>"
	expected := []TokenType{IDENT, LT, IDENT, LT, IDENT, GT, GT, EOF}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_ChannelArrow(t *testing.T) {
	// '<-' always lexes as the channel arrow, even between expressions
	input := "ch <- x <-ch"
	expected := []TokenType{IDENT, LARROW, IDENT, LARROW, IDENT, EOF}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Strings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"tab\there"`, "tab\there"},
		{`"quote: \""`, `quote: "`},
		{`"backslash: \\"`, `backslash: \`},
		{`"hello {name}"`, "hello {name}"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING_LIT {
			t.Errorf("input %s - wrong type. expected=STRING_LIT, got=%q", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %s - wrong literal. expected=%q, got=%q",
				tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := `// line comment
fn /* inline */ main
/* multi
   line */ ()`
	expected := []TokenType{FN, IDENT, LPAREN, RPAREN, EOF}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Positions(t *testing.T) {
	input := "fn main\nlet x"
	l := New(input)

	fn := l.NextToken()
	if fn.Line != 1 || fn.Column != 1 {
		t.Errorf("fn position - expected 1:1, got %d:%d", fn.Line, fn.Column)
	}
	main := l.NextToken()
	if main.Line != 1 || main.Column != 4 {
		t.Errorf("main position - expected 1:4, got %d:%d", main.Line, main.Column)
	}
	let := l.NextToken()
	if let.Line != 2 || let.Column != 1 {
		t.Errorf("let position - expected 2:1, got %d:%d", let.Line, let.Column)
	}
}

func TestTokenize_TerminatesWithEOF(t *testing.T) {
	l := New("let x = 1")
	tokens := l.Tokenize()
	if len(tokens) == 0 {
		t.Fatal("expected tokens")
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("expected trailing EOF, got %q", tokens[len(tokens)-1].Type)
	}
}
