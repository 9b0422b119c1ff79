// Package expr evaluates the arithmetic micro-language used by stage scripts.
//
// 式は閉じた文法（数値、識別子、四則演算、剰余、累乗、括弧）だけを受け付ける。
// 識別子は Resolver を通してのみ値に解決され、動的なコード実行は行わない。
package expr

import (
	"fmt"
	"strings"
)

// TokenType はトークンの種類を表す
type TokenType int

const (
	EOF TokenType = iota
	NUMBER
	IDENT
	PLUS
	MINUS
	STAR
	POW // **
	SLASH
	FLOORDIV // //
	PERCENT
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	DOT
)

var tokenNames = map[TokenType]string{
	EOF:      "EOF",
	NUMBER:   "NUMBER",
	IDENT:    "IDENT",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	POW:      "**",
	SLASH:    "/",
	FLOORDIV: "//",
	PERCENT:  "%",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	DOT:      ".",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token は字句解析の結果
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // 入力中のバイト位置
}

// Lexer は式の字句解析器
type Lexer struct {
	input string
	pos   int
}

// NewLexer Lexerを作成
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize は入力全体をトークン列に変換する
// 文法外の文字が1つでもあれば ErrDisallowedCharacter を返す
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// NextToken は次のトークンを返す
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: start}, nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '+':
		l.pos++
		return Token{Type: PLUS, Literal: "+", Pos: start}, nil
	case ch == '-':
		l.pos++
		return Token{Type: MINUS, Literal: "-", Pos: start}, nil
	case ch == '*':
		if l.peek(1) == '*' {
			l.pos += 2
			return Token{Type: POW, Literal: "**", Pos: start}, nil
		}
		l.pos++
		return Token{Type: STAR, Literal: "*", Pos: start}, nil
	case ch == '/':
		if l.peek(1) == '/' {
			l.pos += 2
			return Token{Type: FLOORDIV, Literal: "//", Pos: start}, nil
		}
		l.pos++
		return Token{Type: SLASH, Literal: "/", Pos: start}, nil
	case ch == '%':
		l.pos++
		return Token{Type: PERCENT, Literal: "%", Pos: start}, nil
	case ch == '(':
		l.pos++
		return Token{Type: LPAREN, Literal: "(", Pos: start}, nil
	case ch == ')':
		l.pos++
		return Token{Type: RPAREN, Literal: ")", Pos: start}, nil
	case ch == '[':
		l.pos++
		return Token{Type: LBRACKET, Literal: "[", Pos: start}, nil
	case ch == ']':
		l.pos++
		return Token{Type: RBRACKET, Literal: "]", Pos: start}, nil
	case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
		return l.readNumber()
	case ch == '.':
		l.pos++
		return Token{Type: DOT, Literal: ".", Pos: start}, nil
	case isLetter(ch):
		return l.readIdentifier()
	}

	return Token{}, fmt.Errorf("%w: %q at %d", ErrDisallowedCharacter, l.runeAt(start), start)
}

// readNumber は 12, 1.5, .5, 5., 1e-3 の形式の数値を読む
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			l.pos = save
			return Token{}, fmt.Errorf("%w: bad exponent at %d", ErrSyntax, save)
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	// 1.2.3 や 3x のような連続は構文エラー
	if l.pos < len(l.input) && (l.input[l.pos] == '.' || isLetter(l.input[l.pos])) {
		return Token{}, fmt.Errorf("%w: unexpected %q after number at %d", ErrSyntax, l.input[l.pos], l.pos)
	}
	return Token{Type: NUMBER, Literal: l.input[start:l.pos], Pos: start}, nil
}

// readIdentifier は識別子を読む（クローン名の #N 接尾辞を含む）
func (l *Lexer) readIdentifier() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '#' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return Token{Type: IDENT, Literal: l.input[start:l.pos], Pos: start}, nil
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) runeAt(pos int) rune {
	for _, r := range l.input[pos:] {
		return r
	}
	return 0
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// IsIdentifier は s が識別子として有効かを返す
func IsIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r < 0x80 && (isLetter(byte(r)) || isDigit(byte(r))))
	}) < 0
}
