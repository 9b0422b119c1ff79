package stage

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{`Stage(){`, StageOpen{}},
		{`  Stage ( ) {  `, StageOpen{}},
		{`Sprite("Cat"){`, SpriteOpen{Name: "Cat"}},
		{`start{`, StartOpen{}},
		{`clone {`, CloneOpen{}},
		{`forever {`, Braces{Line: `forever {`}},
		{`}`, Braces{Line: `}`}},
		{`fps.set(30)`, FPSSet{Arg: "30"}},
		{`width.set(-100, 100)`, BoundsSet{Axis: "width", Min: "-100", Max: "100"}},
		{`height.set(-50,50)`, BoundsSet{Axis: "height", Min: "-50", Max: "50"}},
		{`run()`, Run{}},
		{`stop()`, Stop{}},
		{`stop.all()`, Stop{}},
		{`Cat.x = 10 + 2`, PropertySet{Sprite: "Cat", Prop: "x", Expr: "10 + 2"}},
		{`Cat#3 . direction = 0`, PropertySet{Sprite: "Cat#3", Prop: "direction", Expr: "0"}},
		{`Cat.costume = "cat.png"`, PropertySet{Sprite: "Cat", Prop: "costume", Expr: `"cat.png"`}},
		{`clone(Cat)`, CloneSpawn{Source: "Cat"}},
		{`clone("Cat")`, CloneSpawn{Source: "Cat"}},
		{`Cat.move(5 * 2)`, Move{Sprite: "Cat", Expr: "5 * 2"}},
		{`__clage_clone_delete__("Cat#1")`, CloneDelete{Name: "Cat#1"}},
		{`__clage_sprite_ctx_open__("Cat#1")`, ContextOpen{Name: "Cat#1"}},
		{`__clage_sprite_ctx_close__()`, ContextClose{}},
		{`Cat.show()`, Visibility{Sprite: "Cat", Visible: true}},
		{`Cat#2.hide()`, Visibility{Sprite: "Cat#2", Visible: false}},
		{`var n = 1`, Assignment{Name: "n", Expr: "1", Line: `var n = 1`}},
		{`n = n + 1`, Assignment{Name: "n", Expr: "n + 1", Line: `n = n + 1`}},
		{`say("hi")`, Statement{Line: `say("hi")`}},
		{`Cat.size = 3`, Statement{Line: `Cat.size = 3`}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Classify(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsPassThrough(t *testing.T) {
	for _, line := range []string{"", "  ", "// note", "  // indented", "import foo"} {
		if !isPassThrough(line) {
			t.Errorf("isPassThrough(%q) = false", line)
		}
	}
	for _, line := range []string{"important = 1", "x = 1 // c", "}"} {
		if isPassThrough(line) {
			t.Errorf("isPassThrough(%q) = true", line)
		}
	}
}
