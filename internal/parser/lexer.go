package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"martianoff/lyra/lyraerr"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL
	NEWLINE

	// Punctuation
	LPAREN // "("
	RPAREN // ")"
	LBRACE // "{"
	RBRACE // "}"
	COLON  // ":"
	COMMA  // ","
	DOT    // "."
	QUEST  // "?" marks optional parameters in type annotations

	// Operators
	ASSIGN // "="
	ARROW  // "=>"
	PLUS
	MINUS
	STAR
	SLASH
	EQ  // "=="
	NEQ // "!="
	LT
	LTE
	GT
	GTE

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRING

	// Keywords
	PACKAGE
	IMPORT
	BUILTIN
	RETURN
	TRUE
	FALSE
)

var keywords = map[string]TokenType{
	"package": PACKAGE,
	"import":  IMPORT,
	"builtin": BUILTIN,
	"return":  RETURN,
	"true":    TRUE,
	"false":   FALSE,
}

var tokenNames = map[TokenType]string{
	EOF:     "end of file",
	ILLEGAL: "illegal token",
	NEWLINE: "newline",
	LPAREN:  "(",
	RPAREN:  ")",
	LBRACE:  "{",
	RBRACE:  "}",
	COLON:   ":",
	COMMA:   ",",
	DOT:     ".",
	QUEST:   "?",
	ASSIGN:  "=",
	ARROW:   "=>",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	EQ:      "==",
	NEQ:     "!=",
	LT:      "<",
	LTE:     "<=",
	GT:      ">",
	GTE:     ">=",
	IDENT:   "identifier",
	INT:     "integer literal",
	FLOAT:   "float literal",
	STRING:  "string literal",
	PACKAGE: "package",
	IMPORT:  "import",
	BUILTIN: "builtin",
	RETURN:  "return",
	TRUE:    "true",
	FALSE:   "false",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is one lexeme with its source position.
type Token struct {
	Type TokenType
	Lit  string
	Pos  lyraerr.Position
}

// lexer scans Lyra source into tokens. Newlines terminate statements at
// nesting depth zero and are suppressed inside parentheses and braces.
type lexer struct {
	src    string
	offset int
	line   int
	column int
	depth  int // ( and { nesting
	tokens []Token
	errs   []error
}

// lex scans the whole input. Scan errors are collected, not fatal; an
// ILLEGAL token marks each offending position.
func lex(src string) ([]Token, []error) {
	l := &lexer{src: src, line: 1, column: 1}
	l.run()
	return l.tokens, l.errs
}

func (l *lexer) run() {
	for {
		tok := l.next()
		if tok.Type == NEWLINE {
			// Collapse newline runs and drop them entirely inside nesting
			// or at the start of input.
			if l.depth > 0 {
				continue
			}
			if n := len(l.tokens); n == 0 || l.tokens[n-1].Type == NEWLINE {
				continue
			}
		}
		switch tok.Type {
		case LPAREN, LBRACE:
			l.depth++
		case RPAREN, RBRACE:
			if l.depth > 0 {
				l.depth--
			}
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == EOF {
			return
		}
	}
}

func (l *lexer) peekRune() (rune, int) {
	if l.offset >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.offset:])
}

func (l *lexer) advance() rune {
	r, w := l.peekRune()
	l.offset += w
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) pos() lyraerr.Position {
	return lyraerr.Position{Line: l.line, Column: l.column}
}

func (l *lexer) next() Token {
	for {
		r, _ := l.peekRune()
		switch {
		case r == 0:
			return Token{Type: EOF, Pos: l.pos()}
		case r == '\n':
			pos := l.pos()
			l.advance()
			return Token{Type: NEWLINE, Pos: pos}
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
			continue
		case r == '/' && strings.HasPrefix(l.src[l.offset:], "//"):
			for {
				c, _ := l.peekRune()
				if c == 0 || c == '\n' {
					break
				}
				l.advance()
			}
			continue
		}

		pos := l.pos()
		switch {
		case unicode.IsLetter(r) || r == '_':
			return l.scanIdent(pos)
		case unicode.IsDigit(r):
			return l.scanNumber(pos)
		case r == '"':
			return l.scanString(pos)
		}

		l.advance()
		switch r {
		case '(':
			return Token{Type: LPAREN, Lit: "(", Pos: pos}
		case ')':
			return Token{Type: RPAREN, Lit: ")", Pos: pos}
		case '{':
			return Token{Type: LBRACE, Lit: "{", Pos: pos}
		case '}':
			return Token{Type: RBRACE, Lit: "}", Pos: pos}
		case ':':
			return Token{Type: COLON, Lit: ":", Pos: pos}
		case ',':
			return Token{Type: COMMA, Lit: ",", Pos: pos}
		case '.':
			return Token{Type: DOT, Lit: ".", Pos: pos}
		case '?':
			return Token{Type: QUEST, Lit: "?", Pos: pos}
		case '+':
			return Token{Type: PLUS, Lit: "+", Pos: pos}
		case '-':
			return Token{Type: MINUS, Lit: "-", Pos: pos}
		case '*':
			return Token{Type: STAR, Lit: "*", Pos: pos}
		case '/':
			return Token{Type: SLASH, Lit: "/", Pos: pos}
		case '=':
			if c, _ := l.peekRune(); c == '=' {
				l.advance()
				return Token{Type: EQ, Lit: "==", Pos: pos}
			} else if c == '>' {
				l.advance()
				return Token{Type: ARROW, Lit: "=>", Pos: pos}
			}
			return Token{Type: ASSIGN, Lit: "=", Pos: pos}
		case '!':
			if c, _ := l.peekRune(); c == '=' {
				l.advance()
				return Token{Type: NEQ, Lit: "!=", Pos: pos}
			}
		case '<':
			if c, _ := l.peekRune(); c == '=' {
				l.advance()
				return Token{Type: LTE, Lit: "<=", Pos: pos}
			}
			return Token{Type: LT, Lit: "<", Pos: pos}
		case '>':
			if c, _ := l.peekRune(); c == '=' {
				l.advance()
				return Token{Type: GTE, Lit: ">=", Pos: pos}
			}
			return Token{Type: GT, Lit: ">", Pos: pos}
		}
		l.errs = append(l.errs, lyraerr.NewSyntaxError(pos.Line, pos.Column, fmt.Sprintf("unexpected character %q", r)))
		return Token{Type: ILLEGAL, Lit: string(r), Pos: pos}
	}
}

func (l *lexer) scanIdent(pos lyraerr.Position) Token {
	start := l.offset
	for {
		r, _ := l.peekRune()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lit := l.src[start:l.offset]
	if kw, ok := keywords[lit]; ok {
		return Token{Type: kw, Lit: lit, Pos: pos}
	}
	return Token{Type: IDENT, Lit: lit, Pos: pos}
}

func (l *lexer) scanNumber(pos lyraerr.Position) Token {
	start := l.offset
	typ := INT
	for {
		r, _ := l.peekRune()
		if unicode.IsDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && typ == INT {
			// Only a digit after the dot makes this a float; `1.x` would
			// be a member access on an integer and is invalid anyway.
			rest := l.src[l.offset+1:]
			if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
				typ = FLOAT
				l.advance()
				continue
			}
		}
		break
	}
	return Token{Type: typ, Lit: l.src[start:l.offset], Pos: pos}
}

func (l *lexer) scanString(pos lyraerr.Position) Token {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		r, _ := l.peekRune()
		if r == 0 || r == '\n' {
			l.errs = append(l.errs, lyraerr.NewSyntaxError(pos.Line, pos.Column, "unterminated string literal"))
			return Token{Type: ILLEGAL, Lit: sb.String(), Pos: pos}
		}
		l.advance()
		if r == '"' {
			return Token{Type: STRING, Lit: sb.String(), Pos: pos}
		}
		if r == '\\' {
			e, _ := l.peekRune()
			l.advance()
			switch e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				l.errs = append(l.errs, lyraerr.NewSyntaxError(pos.Line, pos.Column, fmt.Sprintf("unknown escape sequence \\%c", e)))
			}
			continue
		}
		sb.WriteRune(r)
	}
}
