package expr

import (
	"fmt"
	"strconv"
)

// Node は式木のノード
type Node interface {
	String() string
}

// Number は数値リテラル
type Number struct {
	Value float64
}

// Property はスプライトのプロパティ参照（Cat.x, Cat#2.direction）
type Property struct {
	Sprite string
	Name   string
}

// Variable はグローバルスカラー変数の参照
type Variable struct {
	Name string
}

// Index はグローバル配列の要素参照（arr[i+1]）
type Index struct {
	Name  string
	Index Node
}

// Unary は単項演算（+x, -x）
type Unary struct {
	Op TokenType
	X  Node
}

// Binary は二項演算
type Binary struct {
	Op          TokenType
	Left, Right Node
}

func (n *Number) String() string   { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *Property) String() string { return n.Sprite + "." + n.Name }
func (n *Variable) String() string { return n.Name }
func (n *Index) String() string    { return n.Name + "[" + n.Index.String() + "]" }
func (n *Unary) String() string    { return "(" + n.Op.String() + n.X.String() + ")" }
func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

// spriteProperties は式から参照できるスプライトのプロパティ
var spriteProperties = map[string]bool{
	"x":         true,
	"y":         true,
	"direction": true,
}

// Parser は再帰下降パーサー
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "//" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "**" unary ]
//	primary = NUMBER | IDENT "." IDENT | IDENT "[" expr "]" | IDENT | "(" expr ")"
type Parser struct {
	tokens []Token
	pos    int
}

// Parse は式をパースして式木を返す
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return nil, ErrEmpty
	}

	p := &Parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != EOF {
		return nil, p.unexpected()
	}
	return node, nil
}

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) expect(t TokenType) error {
	if p.cur().Type != t {
		return fmt.Errorf("%w: expected %s, got %q at %d", ErrSyntax, t, p.cur().Literal, p.cur().Pos)
	}
	p.next()
	return nil
}

func (p *Parser) unexpected() error {
	tok := p.cur()
	if tok.Type == EOF {
		return fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.Literal, tok.Pos)
}

func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == PLUS || p.cur().Type == MINUS {
		op := p.cur().Type
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur().Type
		if op != STAR && op != SLASH && op != FLOORDIV && op != PERCENT {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	if op := p.cur().Type; op == PLUS || op == MINUS {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, X: x}, nil
	}
	return p.parsePower()
}

// parsePower は右結合の累乗（-2**2 は -(2**2)、2**-1 は 0.5）
func (p *Parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != POW {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: POW, Left: base, Right: exp}, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur()
	switch tok.Type {
	case NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, tok.Literal)
		}
		p.next()
		return &Number{Value: v}, nil

	case LPAREN:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case IDENT:
		return p.parseReference()
	}
	return nil, p.unexpected()
}

func (p *Parser) parseReference() (Node, error) {
	name := p.cur().Literal
	p.next()

	switch p.cur().Type {
	case DOT:
		p.next()
		prop := p.cur()
		if prop.Type != IDENT {
			return nil, p.unexpected()
		}
		if !spriteProperties[prop.Literal] {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, name, prop.Literal)
		}
		p.next()
		return &Property{Sprite: name, Name: prop.Literal}, nil

	case LBRACKET:
		if !IsIdentifier(name) {
			return nil, fmt.Errorf("%w: %q cannot be indexed", ErrSyntax, name)
		}
		p.next()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return &Index{Name: name, Index: idx}, nil
	}

	// クローン名（Cat#1）はプロパティ参照でしか使えない
	if !IsIdentifier(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return &Variable{Name: name}, nil
}
