package stage

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/clage/pkg/expr"
)

// ValueKind はグローバル変数の値の種類
type ValueKind int

const (
	NumberValue ValueKind = iota
	StringValue
	ListValue
)

// Value はグローバル変数の値（数値・文字列・リスト）
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	List []Value
}

// Number は数値の Value を作る
func Number(v float64) Value { return Value{Kind: NumberValue, Num: v} }

// String は文字列の Value を作る
func String(s string) Value { return Value{Kind: StringValue, Str: s} }

// List はリストの Value を作る
func List(items ...Value) Value { return Value{Kind: ListValue, List: items} }

func (v Value) String() string {
	switch v.Kind {
	case NumberValue:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ListValue:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			if item.Kind == StringValue {
				parts[i] = strconv.Quote(item.Str)
			} else {
				parts[i] = item.String()
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.Str
}

// Globals はセッション中のグローバル変数
// 代入で作成・上書きされ、明示的には削除されない
type Globals struct {
	vars map[string]Value
}

// NewGlobals は空の Globals を作成する
func NewGlobals() *Globals {
	return &Globals{vars: make(map[string]Value)}
}

// Reset はすべての変数を破棄する
func (g *Globals) Reset() {
	g.vars = make(map[string]Value)
}

// Set は変数に値を設定する
func (g *Globals) Set(name string, v Value) {
	g.vars[name] = v
}

// Get は変数の値を返す
func (g *Globals) Get(name string) (Value, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Len は変数の数を返す
func (g *Globals) Len() int {
	return len(g.vars)
}

// Names は変数名をソートして返す
func (g *Globals) Names() []string {
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scalar は数値の変数を返す
func (g *Globals) Scalar(name string) (float64, bool) {
	v, ok := g.vars[name]
	if !ok || v.Kind != NumberValue {
		return 0, false
	}
	return v.Num, true
}

// Element はリスト変数の要素を返す
// 範囲外・数値でない要素は 0
func (g *Globals) Element(name string, index int) (float64, error) {
	v, ok := g.vars[name]
	if !ok || v.Kind != ListValue {
		return 0, fmt.Errorf("%w: %s", expr.ErrNotList, name)
	}
	if index < 0 || index >= len(v.List) {
		return 0, nil
	}
	item := v.List[index]
	if item.Kind != NumberValue {
		return 0, nil
	}
	return item.Num, nil
}

// Assign は右辺を解釈して変数に代入する
// 数式として評価できれば数値、文字列・リストのリテラルならその値、
// それ以外は右辺の文字列そのものを保存する
func (g *Globals) Assign(name, rhs string, r expr.Resolver) Value {
	rhs = strings.TrimSpace(rhs)

	var v Value
	if num, err := expr.Evaluate(rhs, r); err == nil {
		v = Number(num)
	} else if lit, ok := parseLiteral(rhs); ok {
		v = lit
	} else {
		v = String(rhs)
	}
	g.vars[name] = v
	return v
}

// parseLiteral は文字列リテラルとリストリテラルを解釈する
// (1, 2) のような括弧のリストもリストとして扱う
func parseLiteral(s string) (Value, bool) {
	if str, ok := unquote(s); ok {
		return String(str), true
	}
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return parseList(s)
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		inner := strings.TrimSpace(s[1 : len(s)-1])
		v, ok := parseList("[" + inner + "]")
		if ok && len(v.List) == 1 && !strings.HasSuffix(inner, ",") {
			// 要素1つでカンマがなければ括弧で囲んだだけの値
			return parseLiteral(inner)
		}
		return v, ok
	}
	return Value{}, false
}

// parseList は YAML のフローシーケンスとして読み、
// 要素がすべて数値・引用符付き文字列・True/False・入れ子のリストの場合だけ受け付ける
func parseList(s string) (Value, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return Value{}, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return Value{}, false
	}
	node := doc.Content[0]
	if node.Kind != yaml.SequenceNode || node.Style&yaml.FlowStyle == 0 {
		return Value{}, false
	}
	return fromNode(node)
}

func fromNode(node *yaml.Node) (Value, bool) {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			v, ok := fromNode(child)
			if !ok {
				return Value{}, false
			}
			items[i] = v
		}
		return List(items...), true
	case yaml.ScalarNode:
		if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return String(node.Value), true
		}
		if node.Style != 0 {
			return Value{}, false
		}
		switch node.Value {
		case "True":
			return Number(1), true
		case "False":
			return Number(0), true
		}
		if node.Tag != "!!int" && node.Tag != "!!float" {
			return Value{}, false
		}
		var f float64
		if err := node.Decode(&f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, false
		}
		return Number(f), true
	}
	return Value{}, false
}

// unquote は "..." または '...' で囲まれた文字列の中身を返す
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != s[len(s)-1] || (s[0] != '"' && s[0] != '\'') {
		return "", false
	}
	if s[0] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return "", false
		}
		return u, true
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsRune(inner, '\'') {
		return "", false
	}
	return inner, true
}

// toStringLiteral は "..." で囲まれた文字列の中身を返す
func toStringLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}
