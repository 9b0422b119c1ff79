package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Resolver は式中の名前を値に解決する
// 式評価器が外部の状態に触れる唯一の経路
type Resolver interface {
	// SpriteProperty はスプライトのプロパティ値を返す
	// 未知のスプライトは 0 として扱われる（エラーにしない）
	SpriteProperty(sprite, prop string) float64

	// Scalar は数値のグローバル変数を返す
	Scalar(name string) (float64, bool)

	// Element は配列要素を返す
	// 範囲外や数値でない要素は 0、配列でない名前は ErrNotList
	Element(name string, index int) (float64, error)
}

// Evaluate は式をパースして評価する
func Evaluate(input string, r Resolver) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrEmpty
	}

	// 数値リテラルそのものなら即値
	if v, ok := numberLiteral(s); ok {
		return v, nil
	}

	node, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return Eval(node, r)
}

// Eval は式木を評価する
func Eval(node Node, r Resolver) (float64, error) {
	e := &evaluator{resolver: r, allowIndex: true}
	v, err := e.eval(node)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	return v, nil
}

type evaluator struct {
	resolver   Resolver
	allowIndex bool
}

func (e *evaluator) eval(node Node) (float64, error) {
	switch n := node.(type) {
	case *Number:
		return n.Value, nil

	case *Property:
		if e.resolver == nil {
			return 0, nil
		}
		return e.resolver.SpriteProperty(n.Sprite, n.Name), nil

	case *Variable:
		if e.resolver != nil {
			if v, ok := e.resolver.Scalar(n.Name); ok {
				return v, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownName, n.Name)

	case *Index:
		return e.evalIndex(n)

	case *Unary:
		x, err := e.eval(n.X)
		if err != nil {
			return 0, err
		}
		if n.Op == MINUS {
			return -x, nil
		}
		return x, nil

	case *Binary:
		left, err := e.eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := e.eval(n.Right)
		if err != nil {
			return 0, err
		}
		return apply(n.Op, left, right)
	}
	return 0, fmt.Errorf("%w: unsupported node %T", ErrSyntax, node)
}

// evalIndex は添字式を配列参照なしで評価し、要素を解決する
func (e *evaluator) evalIndex(n *Index) (float64, error) {
	if !e.allowIndex {
		return 0, fmt.Errorf("%w: %s", ErrNestedIndex, n.String())
	}
	if e.resolver == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotList, n.Name)
	}

	inner := &evaluator{resolver: e.resolver, allowIndex: false}
	iv, err := inner.eval(n.Index)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(iv) || math.IsInf(iv, 0) {
		return 0, fmt.Errorf("%w: index %v", ErrNotNumeric, iv)
	}
	return e.resolver.Element(n.Name, int(math.Trunc(iv)))
}

// apply は二項演算を行う（剰余と切り捨て除算は床関数基準）
func apply(op TokenType, a, b float64) (float64, error) {
	switch op {
	case PLUS:
		return a + b, nil
	case MINUS:
		return a - b, nil
	case STAR:
		return a * b, nil
	case SLASH:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case FLOORDIV:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Floor(a / b), nil
	case PERCENT:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return floorMod(a, b), nil
	case POW:
		if a == 0 && b < 0 {
			return 0, ErrDivisionByZero
		}
		v := math.Pow(a, b)
		if math.IsNaN(v) && !math.IsNaN(a) && !math.IsNaN(b) {
			// 負数の非整数乗は実数にならない
			return 0, fmt.Errorf("%w: %v ** %v", ErrNotNumeric, a, b)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %s", ErrSyntax, op)
}

// floorMod は除数と同じ符号を持つ剰余を返す
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// numberLiteral は s が数値リテラルそのものかを判定する
func numberLiteral(s string) (float64, bool) {
	if strings.ContainsFunc(s, func(r rune) bool {
		return r > 0x7f || (r != 'e' && r != 'E' && ('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z')) || r == '_'
	}) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
