package stage

import (
	"regexp"
	"strings"
)

// Command は分類された1行
// 具体的な型ごとに Session.dispatch で処理する
type Command interface {
	command()
}

type (
	// StageOpen は Stage(){
	StageOpen struct{}
	// SpriteOpen は Sprite("name"){
	SpriteOpen struct{ Name string }
	// StartOpen は start{
	StartOpen struct{}
	// CloneOpen は clone{
	CloneOpen struct{}
	// Braces はホスト側の波括弧を含む行
	Braces struct{ Line string }
	// FPSSet は fps.set(n)
	FPSSet struct{ Arg string }
	// BoundsSet は width.set(min, max) / height.set(min, max)
	BoundsSet struct {
		Axis     string // "width" または "height"
		Min, Max string
	}
	// Run は run()
	Run struct{}
	// Stop は stop() / stop.all()
	Stop struct{}
	// PropertySet は name.x = expr など
	PropertySet struct{ Sprite, Prop, Expr string }
	// CloneSpawn は clone(name)
	CloneSpawn struct{ Source string }
	// Move は name.move(expr)
	Move struct{ Sprite, Expr string }
	// CloneDelete は内部ディレクティブ __clage_clone_delete__("name")
	CloneDelete struct{ Name string }
	// ContextOpen は内部ディレクティブ __clage_sprite_ctx_open__("name")
	ContextOpen struct{ Name string }
	// ContextClose は内部ディレクティブ __clage_sprite_ctx_close__()
	ContextClose struct{}
	// Visibility は name.show() / name.hide()
	Visibility struct {
		Sprite  string
		Visible bool
	}
	// Assignment は var name = expr / name = expr
	Assignment struct {
		Name, Expr, Line string
	}
	// Statement はどれにも当てはまらない行
	Statement struct{ Line string }
)

func (StageOpen) command()    {}
func (SpriteOpen) command()   {}
func (StartOpen) command()    {}
func (CloneOpen) command()    {}
func (Braces) command()       {}
func (FPSSet) command()       {}
func (BoundsSet) command()    {}
func (Run) command()          {}
func (Stop) command()         {}
func (PropertySet) command()  {}
func (CloneSpawn) command()   {}
func (Move) command()         {}
func (CloneDelete) command()  {}
func (ContextOpen) command()  {}
func (ContextClose) command() {}
func (Visibility) command()   {}
func (Assignment) command()   {}
func (Statement) command()    {}

var (
	reStageOpen  = regexp.MustCompile(`^\s*Stage\s*\(\s*\)\s*\{\s*$`)
	reSpriteOpen = regexp.MustCompile(`^\s*Sprite\s*\(\s*"([^"]+)"\s*\)\s*\{\s*$`)
	reStartOpen  = regexp.MustCompile(`^\s*start\s*\{\s*$`)
	reCloneOpen  = regexp.MustCompile(`^\s*clone\s*\{\s*$`)

	reFPSSet    = regexp.MustCompile(`^\s*fps\.set\s*\(\s*([^)]+)\s*\)\s*$`)
	reWidthSet  = regexp.MustCompile(`^\s*width\.set\s*\(\s*([^,]+)\s*,\s*([^)]+)\s*\)\s*$`)
	reHeightSet = regexp.MustCompile(`^\s*height\.set\s*\(\s*([^,]+)\s*,\s*([^)]+)\s*\)\s*$`)
	reRun       = regexp.MustCompile(`^\s*run\s*\(\s*\)\s*$`)
	reStopAll   = regexp.MustCompile(`^\s*stop\.all\s*\(\s*\)\s*$`)
	reStop      = regexp.MustCompile(`^\s*stop\s*\(\s*\)\s*$`)

	rePropSet    = regexp.MustCompile(`^\s*` + namePattern + `\s*\.\s*(x|y|direction|costume)\s*=\s*(.+?)\s*$`)
	reCloneSpawn = regexp.MustCompile(`^\s*clone\s*\(\s*"?([A-Za-z_]\w*)"?\s*\)\s*$`)
	reMove       = regexp.MustCompile(`^\s*` + namePattern + `\.move\s*\(\s*([^)]+)\s*\)\s*$`)
	reShow       = regexp.MustCompile(`^\s*` + namePattern + `\.show\s*\(\s*\)\s*$`)
	reHide       = regexp.MustCompile(`^\s*` + namePattern + `\.hide\s*\(\s*\)\s*$`)

	reCloneDeleteDirective  = regexp.MustCompile(`^\s*` + directiveCloneDelete + `\s*\(\s*"([^"]+)"\s*\)\s*$`)
	reContextOpenDirective  = regexp.MustCompile(`^\s*` + directiveContextOpen + `\s*\(\s*"([^"]+)"\s*\)\s*$`)
	reContextCloseDirective = regexp.MustCompile(`^\s*` + directiveContextClose + `\s*\(\s*\)\s*$`)

	reVarDecl = regexp.MustCompile(`^\s*var\s+([A-Za-z_]\w*)\s*=\s*(.+?)\s*$`)
	reAssign  = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*=\s*(.+?)\s*$`)
)

// matcher は1つの行の形を認識する
type matcher func(line string) (Command, bool)

func match(re *regexp.Regexp, build func(m []string) Command) matcher {
	return func(line string) (Command, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return nil, false
		}
		return build(m), true
	}
}

// matchers は最初に一致したものが採用される
var matchers = []matcher{
	match(reStageOpen, func([]string) Command { return StageOpen{} }),
	match(reSpriteOpen, func(m []string) Command { return SpriteOpen{Name: m[1]} }),
	match(reStartOpen, func([]string) Command { return StartOpen{} }),
	match(reCloneOpen, func([]string) Command { return CloneOpen{} }),

	func(line string) (Command, bool) {
		if hasBraces(line) {
			return Braces{Line: line}, true
		}
		return nil, false
	},

	match(reFPSSet, func(m []string) Command { return FPSSet{Arg: m[1]} }),
	match(reWidthSet, func(m []string) Command { return BoundsSet{Axis: "width", Min: m[1], Max: m[2]} }),
	match(reHeightSet, func(m []string) Command { return BoundsSet{Axis: "height", Min: m[1], Max: m[2]} }),
	match(reRun, func([]string) Command { return Run{} }),
	match(reStopAll, func([]string) Command { return Stop{} }),
	match(reStop, func([]string) Command { return Stop{} }),

	match(rePropSet, func(m []string) Command { return PropertySet{Sprite: m[1], Prop: m[2], Expr: strings.TrimSpace(m[3])} }),
	match(reCloneSpawn, func(m []string) Command { return CloneSpawn{Source: m[1]} }),
	match(reMove, func(m []string) Command { return Move{Sprite: m[1], Expr: m[2]} }),
	match(reCloneDeleteDirective, func(m []string) Command { return CloneDelete{Name: m[1]} }),
	match(reContextOpenDirective, func(m []string) Command { return ContextOpen{Name: m[1]} }),
	match(reContextCloseDirective, func([]string) Command { return ContextClose{} }),
	match(reShow, func(m []string) Command { return Visibility{Sprite: m[1], Visible: true} }),
	match(reHide, func(m []string) Command { return Visibility{Sprite: m[1], Visible: false} }),
}

// Classify は行を Command に分類する
func Classify(line string) Command {
	for _, m := range matchers {
		if cmd, ok := m(line); ok {
			return cmd
		}
	}
	if m := reVarDecl.FindStringSubmatch(line); m != nil {
		return Assignment{Name: m[1], Expr: m[2], Line: line}
	}
	if m := reAssign.FindStringSubmatch(line); m != nil {
		return Assignment{Name: m[1], Expr: m[2], Line: line}
	}
	return Statement{Line: line}
}

// isPassThrough は空行・コメント・import 行なら true
func isPassThrough(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "import ")
}
