package dsl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a syntax error with the offending token and its
// byte position in the source expression.
type ParseError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d near %q: %s", e.Pos, e.Token, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokBool
	tokLParen
	tokRParen
	tokNot     // !
	tokAnd     // &&
	tokOr      // ||
	tokImplies // =>
	tokCompare // == != > >= < <=
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) errf(pos int, tok, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Token: tok, Msg: fmt.Sprintf(format, args...)}
}

// next returns the next token, skipping whitespace.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '\'':
		return l.lexString()
	case c >= '0' && c <= '9':
		return l.lexNumber()
	case c == '_' || unicode.IsLetter(rune(c)):
		return l.lexIdent()
	}

	// Operators, longest match first.
	rest := l.input[l.pos:]
	for _, op := range []struct {
		text string
		kind tokenKind
	}{
		{"==", tokCompare}, {"!=", tokCompare}, {">=", tokCompare},
		{"<=", tokCompare}, {"=>", tokImplies}, {"&&", tokAnd},
		{"||", tokOr}, {">", tokCompare}, {"<", tokCompare}, {"!", tokNot},
	} {
		if strings.HasPrefix(rest, op.text) {
			l.pos += len(op.text)
			return token{kind: op.kind, text: op.text, pos: start}, nil
		}
	}

	// Single & | = are the common typos for their doubled forms.
	return token{}, l.errf(start, string(c), "unknown operator")
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		if l.input[l.pos] == '\'' {
			text := l.input[start+1 : l.pos]
			l.pos++
			return token{kind: tokString, text: text, pos: start}, nil
		}
		l.pos++
	}
	return token{}, l.errf(start, l.input[start:], "unterminated string literal")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && (l.input[l.pos] >= '0' && l.input[l.pos] <= '9' || l.input[l.pos] == '.') {
		l.pos++
	}
	text := l.input[start:l.pos]
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return token{}, l.errf(start, text, "invalid number literal")
	}
	return token{kind: tokNumber, text: text, pos: start}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := rune(l.input[l.pos])
		if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			l.pos++
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	if text == "true" || text == "false" {
		return token{kind: tokBool, text: text, pos: start}, nil
	}
	return token{kind: tokIdent, text: text, pos: start}, nil
}

type parser struct {
	lex  *lexer
	tok  token // one-token lookahead
	prev token
}

// Parse converts a DSL expression string into an immutable Node tree.
// Parsing is pure: the same input always yields a structurally equal tree
// or the same *ParseError.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &ParseError{Pos: p.tok.pos, Token: p.tok.text, Msg: "unexpected trailing input"}
	}
	return node, nil
}

func (p *parser) advance() error {
	p.prev = p.tok
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// parseImplies handles =>, the lowest-precedence, right-associative operator.
func (p *parser) parseImplies() (Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokImplies {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return &Implies{Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.tok.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	return p.parseComparison()
}

// parseComparison handles the non-associative comparison tier. Operands
// are restricted to identifiers and literals; chained comparisons like
// a < b < c are rejected.
func (p *parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokCompare {
		return left, nil
	}
	op := CompareOp(p.tok.text)
	opPos := p.tok.pos
	if !isOperand(left) {
		return nil, &ParseError{Pos: opPos, Token: string(op), Msg: "left comparison operand must be a parameter or literal"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !isOperand(right) {
		return nil, &ParseError{Pos: opPos, Token: string(op), Msg: "right comparison operand must be a parameter or literal"}
	}
	if p.tok.kind == tokCompare {
		return nil, &ParseError{Pos: p.tok.pos, Token: p.tok.text, Msg: "comparisons are non-associative; use parentheses and boolean connectives"}
	}
	return &Compare{Op: op, Left: left, Right: right}, nil
}

func isOperand(n Node) bool {
	switch n.(type) {
	case *Ident, *Literal:
		return true
	}
	return false
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokLParen:
		openPos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, &ParseError{Pos: openPos, Token: "(", Msg: "unbalanced parenthesis"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		node := &Ident{Name: p.tok.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case tokNumber:
		f, _ := strconv.ParseFloat(p.tok.text, 64)
		node := &Literal{Value: NumberValue(f)}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case tokString:
		node := &Literal{Value: StringValue(p.tok.text)}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case tokBool:
		node := &Literal{Value: BoolValue(p.tok.text == "true")}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case tokEOF:
		return nil, &ParseError{Pos: p.tok.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &ParseError{Pos: p.tok.pos, Token: p.tok.text, Msg: "expected parameter, literal or '('"}
	}
}
