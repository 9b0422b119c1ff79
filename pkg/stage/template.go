package stage

import (
	"fmt"
	"regexp"
	"strings"
)

// クローン展開で使う内部ディレクティブ
const (
	directiveContextOpen  = "__clage_sprite_ctx_open__"
	directiveContextClose = "__clage_sprite_ctx_close__"
	directiveCloneDelete  = "__clage_clone_delete__"
)

var (
	reCloneDelete = regexp.MustCompile(`\bclone\s*\.\s*delete\s*\(\s*\)`)
	reCloneWord   = regexp.MustCompile(`\bclone\b`)
)

// capture は clone{ ... } ブロックの取り込み中の状態
type capture struct {
	owner string
	depth int
	lines []string
}

// Templates はスプライトごとの clone{} ブロックの行を保持する
type Templates struct {
	scripts map[string][]string
	current *capture
}

// NewTemplates は空の Templates を作成する
func NewTemplates() *Templates {
	return &Templates{scripts: make(map[string][]string)}
}

// Reset はすべてのテンプレートと取り込み状態を破棄する
func (t *Templates) Reset() {
	t.scripts = make(map[string][]string)
	t.current = nil
}

// BeginCapture は owner の clone{ ブロックの取り込みを開始する
func (t *Templates) BeginCapture(owner string) {
	t.current = &capture{owner: owner, depth: 1}
}

// Capturing は取り込み中なら true
func (t *Templates) Capturing() bool {
	return t.current != nil
}

// Feed は取り込み中の1行を受け取る
// 対応する閉じ括弧に達したらテンプレートを確定して true を返す
// 内側のブロックは解釈せずそのまま取り込む
func (t *Templates) Feed(line string) bool {
	c := t.current
	if c == nil {
		return false
	}

	if strings.TrimSpace(line) == "}" {
		c.depth--
		if c.depth <= 0 {
			t.finish()
			return true
		}
		c.lines = append(c.lines, line)
		return false
	}

	c.lines = append(c.lines, line)
	c.depth += strings.Count(line, "{") - strings.Count(line, "}")
	if c.depth <= 0 {
		t.finish()
		return true
	}
	return false
}

func (t *Templates) finish() {
	t.scripts[t.current.owner] = t.current.lines
	t.current = nil
}

// Get は owner のテンプレートを返す
func (t *Templates) Get(owner string) ([]string, bool) {
	lines, ok := t.scripts[owner]
	return lines, ok && len(lines) > 0
}

// Expand はクローン cloneName 用にテンプレートを展開する
// 先頭にコンテキスト開始、末尾にコンテキスト終了のディレクティブが付く
func Expand(cloneName string, template []string) []string {
	out := make([]string, 0, len(template)+2)
	out = append(out, fmt.Sprintf(`%s("%s")`, directiveContextOpen, cloneName))
	for _, line := range template {
		out = append(out, rewriteSelf(line, cloneName))
	}
	out = append(out, directiveContextClose+"()")
	return out
}

// rewriteSelf はテンプレート行の clone 自己参照をクローン名に書き換える
// clone.delete() は削除ディレクティブに、clone(...) と clone{ はそのまま残す
func rewriteSelf(line, cloneName string) string {
	line = reCloneDelete.ReplaceAllString(line, fmt.Sprintf(`%s("%s")`, directiveCloneDelete, cloneName))

	matches := reCloneWord.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		rest := strings.TrimLeft(line[m[1]:], " \t")
		if strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "{") {
			continue
		}
		sb.WriteString(line[last:m[0]])
		sb.WriteString(cloneName)
		last = m[1]
	}
	sb.WriteString(line[last:])
	return sb.String()
}
