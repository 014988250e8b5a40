// Package parser turns Lyra source text into the syntax tree consumed by
// semantic analysis. Statements are newline-terminated at nesting depth
// zero; see lexer.go.
package parser

import (
	"fmt"
	"strconv"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/lyraerr"
)

// ParseFile parses one source file. All syntax errors are collected and
// returned as a MultiError; the returned file is nil on error.
func ParseFile(name, src string) (*ast.File, error) {
	tokens, errs := lex(src)
	p := &parser{name: name, tokens: tokens, errs: errs}
	file := p.parseFile()
	if len(p.errs) > 0 {
		return nil, &lyraerr.MultiError{Errors: p.errs}
	}
	return file, nil
}

type parser struct {
	name   string
	tokens []Token
	pos    int
	errs   []error
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(tt TokenType) Token {
	tok := p.peek()
	if tok.Type != tt {
		p.errorf(tok, "expected %s, found %s", tt, describe(tok))
		return tok
	}
	return p.next()
}

func (p *parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.next()
	}
}

func (p *parser) errorf(tok Token, format string, args ...any) {
	p.errs = append(p.errs, lyraerr.NewSyntaxError(tok.Pos.Line, tok.Pos.Column, fmt.Sprintf(format, args...)))
}

func describe(tok Token) string {
	switch tok.Type {
	case IDENT, INT, FLOAT:
		return fmt.Sprintf("%q", tok.Lit)
	case STRING:
		return fmt.Sprintf("%q", tok.Lit)
	default:
		return tok.Type.String()
	}
}

func (p *parser) parseFile() *ast.File {
	file := &ast.File{Name: p.name}

	p.skipNewlines()
	if p.peek().Type == PACKAGE {
		tok := p.next()
		file.PkgPos = tok.Pos
		file.Package = p.expect(IDENT).Lit
		p.skipNewlines()
	}
	for p.peek().Type == IMPORT {
		tok := p.next()
		path := p.expect(STRING)
		file.Imports = append(file.Imports, &ast.ImportDecl{P: tok.Pos, Path: path.Lit})
		p.skipNewlines()
	}
	for p.peek().Type != EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			file.Body = append(file.Body, stmt)
		}
		if p.peek().Type != EOF && !p.accept(NEWLINE) {
			// Error recovery: skip to the next statement boundary.
			p.errorf(p.peek(), "expected newline, found %s", describe(p.peek()))
			for p.peek().Type != NEWLINE && p.peek().Type != EOF {
				p.next()
			}
		}
		p.skipNewlines()
	}
	return file
}

func (p *parser) parseStatement() ast.Statement {
	tok := p.peek()
	switch tok.Type {
	case BUILTIN:
		p.next()
		name := p.expect(IDENT)
		p.expect(COLON)
		ty := p.parseTypeExpr()
		return &ast.BuiltinStmt{P: tok.Pos, Name: name.Lit, Ty: ty}
	case RETURN:
		p.next()
		return &ast.ReturnStmt{P: tok.Pos, Argument: p.parseExpression(0)}
	case IDENT:
		if p.peekAt(1).Type == ASSIGN {
			p.next()
			p.next()
			return &ast.VariableAssignment{P: tok.Pos, Name: tok.Lit, Init: p.parseExpression(0)}
		}
	}
	expr := p.parseExpression(0)
	if expr == nil {
		p.next() // make progress past the bad token
		return nil
	}
	return &ast.ExpressionStmt{P: expr.Pos(), Expr: expr}
}

// Binding powers for the Pratt expression parser.
func precedence(tt TokenType) int {
	switch tt {
	case EQ, NEQ, LT, LTE, GT, GTE:
		return 1
	case PLUS, MINUS:
		return 2
	case STAR, SLASH:
		return 3
	case DOT, LPAREN:
		return 4
	}
	return 0
}

func (p *parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		tok := p.peek()
		prec := precedence(tok.Type)
		if prec == 0 || prec < minPrec {
			return left
		}
		switch tok.Type {
		case DOT:
			p.next()
			prop := p.expect(IDENT)
			left = &ast.MemberExpr{P: tok.Pos, Object: left, Property: prop.Lit}
		case LPAREN:
			p.next()
			args := p.parseProperties(RPAREN)
			p.expect(RPAREN)
			left = &ast.CallExpr{P: tok.Pos, Callee: left, Args: args}
		default:
			p.next()
			right := p.parseExpression(prec + 1)
			if right == nil {
				return left
			}
			left = &ast.BinaryExpr{P: tok.Pos, Op: tok.Lit, Left: left, Right: right}
		}
	}
}

func (p *parser) parseUnary() ast.Expression {
	if tok := p.peek(); tok.Type == MINUS {
		p.next()
		expr := p.parseUnary()
		if expr == nil {
			return nil
		}
		return &ast.UnaryExpr{P: tok.Pos, Op: "-", Expr: expr}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Type {
	case IDENT:
		p.next()
		return &ast.Identifier{P: tok.Pos, Name: tok.Lit}
	case INT:
		p.next()
		v, err := strconv.ParseInt(tok.Lit, 10, 64)
		if err != nil {
			p.errorf(tok, "invalid integer literal %q", tok.Lit)
		}
		return &ast.IntegerLit{P: tok.Pos, Value: v}
	case FLOAT:
		p.next()
		v, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			p.errorf(tok, "invalid float literal %q", tok.Lit)
		}
		return &ast.FloatLit{P: tok.Pos, Value: v}
	case STRING:
		p.next()
		return &ast.StringLit{P: tok.Pos, Value: tok.Lit}
	case TRUE, FALSE:
		p.next()
		return &ast.BooleanLit{P: tok.Pos, Value: tok.Type == TRUE}
	case LBRACE:
		p.next()
		props := p.parseProperties(RBRACE)
		p.expect(RBRACE)
		return &ast.ObjectExpr{P: tok.Pos, Properties: props}
	case LPAREN:
		if fn := p.tryParseFunction(); fn != nil {
			return fn
		}
		p.next()
		expr := p.parseExpression(0)
		p.expect(RPAREN)
		return &ast.ParenExpr{P: tok.Pos, Expr: expr}
	}
	p.errorf(tok, "expected expression, found %s", describe(tok))
	return nil
}

// tryParseFunction attempts `(params) => body` at the current position
// and restores the parser on failure so the `(` can be reparsed as a
// parenthesized expression.
func (p *parser) tryParseFunction() ast.Expression {
	start := p.pos
	nerrs := len(p.errs)
	fn := p.parseFunction()
	if fn == nil || len(p.errs) > nerrs {
		p.pos = start
		p.errs = p.errs[:nerrs]
		return nil
	}
	return fn
}

func (p *parser) parseFunction() ast.Expression {
	open := p.peek()
	if open.Type != LPAREN {
		return nil
	}
	p.next()
	var params []*ast.Param
	for p.peek().Type != RPAREN {
		name := p.peek()
		if name.Type != IDENT {
			return nil
		}
		p.next()
		param := &ast.Param{P: name.Pos, Name: name.Lit}
		if p.accept(ASSIGN) {
			param.Default = p.parseExpression(0)
			if param.Default == nil {
				return nil
			}
		}
		params = append(params, param)
		if !p.accept(COMMA) {
			break
		}
	}
	if p.peek().Type != RPAREN || p.peekAt(1).Type != ARROW {
		return nil
	}
	p.next() // )
	p.next() // =>

	var body []ast.Statement
	if p.peek().Type == LBRACE {
		p.next()
		for p.peek().Type != RBRACE && p.peek().Type != EOF {
			stmt := p.parseStatement()
			if stmt == nil {
				return nil
			}
			body = append(body, stmt)
		}
		p.expect(RBRACE)
	} else {
		expr := p.parseExpression(0)
		if expr == nil {
			return nil
		}
		body = []ast.Statement{&ast.ReturnStmt{P: expr.Pos(), Argument: expr}}
	}
	return &ast.FunctionExpr{P: open.Pos, Params: params, Body: body}
}

// parseProperties parses `key: value` pairs up to the closing token.
// A bare `key` is shorthand for `key: key`.
func (p *parser) parseProperties(closing TokenType) []*ast.Property {
	var props []*ast.Property
	for p.peek().Type != closing && p.peek().Type != EOF {
		key := p.expect(IDENT)
		prop := &ast.Property{P: key.Pos, Key: key.Lit}
		if p.accept(COLON) {
			prop.Value = p.parseExpression(0)
		} else {
			prop.Value = &ast.Identifier{P: key.Pos, Name: key.Lit}
		}
		props = append(props, prop)
		if !p.accept(COMMA) {
			break
		}
	}
	return props
}

func (p *parser) parseTypeExpr() ast.TypeExpr {
	tok := p.peek()
	switch tok.Type {
	case IDENT:
		p.next()
		if len(tok.Lit) == 1 && tok.Lit[0] >= 'A' && tok.Lit[0] <= 'Z' {
			return &ast.TypeVarExpr{P: tok.Pos, Name: tok.Lit}
		}
		return &ast.NamedType{P: tok.Pos, Name: tok.Lit}
	case LPAREN:
		p.next()
		var params []*ast.ParamType
		for p.peek().Type != RPAREN && p.peek().Type != EOF {
			optional := p.accept(QUEST)
			name := p.expect(IDENT)
			p.expect(COLON)
			ty := p.parseTypeExpr()
			params = append(params, &ast.ParamType{P: name.Pos, Name: name.Lit, Ty: ty, Optional: optional})
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
		p.expect(ARROW)
		ret := p.parseTypeExpr()
		return &ast.FuncTypeExpr{P: tok.Pos, Params: params, Return: ret}
	case LBRACE:
		p.next()
		var fields []*ast.FieldType
		for p.peek().Type != RBRACE && p.peek().Type != EOF {
			name := p.expect(IDENT)
			p.expect(COLON)
			ty := p.parseTypeExpr()
			fields = append(fields, &ast.FieldType{P: name.Pos, Name: name.Lit, Ty: ty})
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		return &ast.RecordTypeExpr{P: tok.Pos, Fields: fields}
	}
	p.errorf(tok, "expected type, found %s", describe(tok))
	p.next()
	return &ast.NamedType{P: tok.Pos, Name: "invalid"}
}
