package lexer

// Lexer scans Windjammer source code and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize scans the entire input and returns the token stream,
// terminated by an EOF token.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharAt returns the character n positions ahead without advancing
func (l *Lexer) peekCharAt(n int) byte {
	if l.readPosition+n-1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+n-1]
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// skipSingleLineComment skips a // comment
func (l *Lexer) skipSingleLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipMultiLineComment skips a /* */ comment, tracking newlines
func (l *Lexer) skipMultiLineComment() {
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
}

// NextToken scans and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	for l.ch == '/' && (l.peekChar() == '/' || l.peekChar() == '*') {
		if l.peekChar() == '/' {
			l.skipSingleLineComment()
		} else {
			l.readChar()
			l.readChar()
			l.skipMultiLineComment()
		}
		l.skipWhitespace()
	}

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = EOF
		return tok
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = PLUS_ASSIGN, "+="
		} else {
			tok.Type, tok.Literal = PLUS, "+"
		}
	case '-':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = MINUS_ASSIGN, "-="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = ARROW, "->"
		default:
			tok.Type, tok.Literal = MINUS, "-"
		}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = STAR_ASSIGN, "*="
		} else {
			tok.Type, tok.Literal = STAR, "*"
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = SLASH_ASSIGN, "/="
		} else {
			tok.Type, tok.Literal = SLASH, "/"
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = PERCENT_ASSIGN, "%="
		} else {
			tok.Type, tok.Literal = PERCENT, "%"
		}
	case '=':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = EQ, "=="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = FATARROW, "=>"
		default:
			tok.Type, tok.Literal = ASSIGN, "="
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = NEQ, "!="
		} else {
			tok.Type, tok.Literal = BANG, "!"
		}
	case '<':
		// '<-' always lexes as a channel arrow; write `a < (-b)` for the
		// comparison.
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = LEQ, "<="
		case '-':
			l.readChar()
			tok.Type, tok.Literal = LARROW, "<-"
		case '<':
			l.readChar()
			tok.Type, tok.Literal = SHL, "<<"
		default:
			tok.Type, tok.Literal = LT, "<"
		}
	case '>':
		// '>>' is never lexed as one token so that Vec<Vec<Int>> closes
		// cleanly; the parser recognizes adjacent '>' '>' as shift-right.
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = GEQ, ">="
		} else {
			tok.Type, tok.Literal = GT, ">"
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok.Type, tok.Literal = ANDAND, "&&"
		} else {
			tok.Type, tok.Literal = AMP, "&"
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type, tok.Literal = OROR, "||"
		} else {
			tok.Type, tok.Literal = PIPE, "|"
		}
	case '^':
		tok.Type, tok.Literal = CARET, "^"
	case '?':
		tok.Type, tok.Literal = QUESTION, "?"
	case '@':
		tok.Type, tok.Literal = AT, "@"
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '{':
		tok.Type, tok.Literal = LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = RBRACE, "}"
	case '[':
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = RBRACKET, "]"
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case ';':
		tok.Type, tok.Literal = SEMICOLON, ";"
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok.Type, tok.Literal = COLONCOLON, "::"
		} else {
			tok.Type, tok.Literal = COLON, ":"
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok.Type, tok.Literal = DOTDOTEQ, "..="
			} else {
				tok.Type, tok.Literal = DOTDOT, ".."
			}
		} else {
			tok.Type, tok.Literal = DOT, "."
		}
	case '"':
		tok.Type = STRING_LIT
		tok.Literal = l.readString()
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal. A '.' followed by another
// '.' terminates the integer so that range expressions (0..10) lex cleanly.
func (l *Lexer) readNumber() Token {
	tok := Token{Line: l.line, Column: l.column}
	start := l.position

	// Hex literal
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		tok.Type = INT_LIT
		tok.Literal = l.input[start:l.position]
		return tok
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		tok.Type = FLOAT_LIT
	} else {
		tok.Type = INT_LIT
	}

	tok.Literal = l.input[start:l.position]
	return tok
}

// readString reads a string literal, handling escape sequences. The
// returned literal excludes the surrounding quotes; interpolation
// placeholders ({ident}) pass through untouched.
func (l *Lexer) readString() string {
	var out []byte
	l.readChar() // consume opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			case '0':
				out = append(out, 0)
			default:
				out = append(out, '\\', l.ch)
			}
		} else {
			if l.ch == '\n' {
				l.line++
				l.column = 0
			}
			out = append(out, l.ch)
		}
		l.readChar()
	}
	l.readChar() // consume closing quote
	return string(out)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
