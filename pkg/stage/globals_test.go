package stage

import (
	"errors"
	"testing"

	"github.com/zurustar/clage/pkg/expr"
)

type noSprites struct{ g *Globals }

func (n noSprites) SpriteProperty(string, string) float64 {
	return 0
}

func (n noSprites) Scalar(name string) (float64, bool) {
	return n.g.Scalar(name)
}

func (n noSprites) Element(name string, i int) (float64, error) {
	return n.g.Element(name, i)
}

func TestGlobals_Assign(t *testing.T) {
	g := NewGlobals()
	r := noSprites{g: g}

	tests := []struct {
		name, rhs string
		want      Value
	}{
		{"a", "1 + 2", Number(3)},
		{"b", "a * 10", Number(30)},
		{"s", `"hi there"`, String("hi there")},
		{"q", `'single'`, String("single")},
		{"l", `[1, 2.5, "x"]`, List(Number(1), Number(2.5), String("x"))},
		{"raw", "a +", String("a +")},
		{"bad", `"unterminated`, String(`"unterminated`)},
		{"bare", `[a, b]`, String(`[a, b]`)},
		{"mixed", `[1, x]`, String(`[1, x]`)},
		{"nested", `[[1, 2], 'y', True]`, List(List(Number(1), Number(2)), String("y"), Number(1))},
		{"empty", `[]`, List()},
		{"tuple", `(1, 2)`, List(Number(1), Number(2))},
		{"single tuple", `("z",)`, List(String("z"))},
		{"paren string", `("z")`, String("z")},
	}
	for _, tt := range tests {
		got := g.Assign(tt.name, tt.rhs, r)
		if got.String() != tt.want.String() || got.Kind != tt.want.Kind {
			t.Errorf("Assign(%s = %s) = %v, want %v", tt.name, tt.rhs, got, tt.want)
		}
	}

	if v, ok := g.Scalar("b"); !ok || v != 30 {
		t.Errorf("Scalar(b) = %v, %v", v, ok)
	}
	if _, ok := g.Scalar("s"); ok {
		t.Errorf("string should not be a scalar")
	}
}

func TestGlobals_BareWordListIsNotIndexable(t *testing.T) {
	g := NewGlobals()
	r := noSprites{g: g}

	g.Assign("arr", "[a, b]", r)
	if _, err := expr.Evaluate("arr[0]", r); !errors.Is(err, expr.ErrNotList) {
		t.Errorf("arr[0]: expected ErrNotList, got %v", err)
	}

	g.Assign("tp", "(1, 2)", r)
	if v, err := expr.Evaluate("tp[1] + 1", r); err != nil || v != 3 {
		t.Errorf("tp[1] + 1 = %v, %v, want 3", v, err)
	}
}

func TestGlobals_Element(t *testing.T) {
	g := NewGlobals()
	g.Set("l", List(Number(5), String("x")))
	g.Set("n", Number(1))

	if v, err := g.Element("l", 0); err != nil || v != 5 {
		t.Errorf("l[0] = %v, %v", v, err)
	}
	for _, i := range []int{1, 2, -1} {
		if v, err := g.Element("l", i); err != nil || v != 0 {
			t.Errorf("l[%d] = %v, %v, want 0", i, v, err)
		}
	}
	if _, err := g.Element("n", 0); !errors.Is(err, expr.ErrNotList) {
		t.Errorf("expected ErrNotList, got %v", err)
	}
}

func TestValue_String(t *testing.T) {
	v := List(Number(1), String("a"), List(Number(2.5)))
	if got := v.String(); got != `[1, "a", [2.5]]` {
		t.Errorf("String() = %s", got)
	}
}
