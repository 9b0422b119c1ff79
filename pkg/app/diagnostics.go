package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/zurustar/clage/pkg/stage"
)

// typeLabels はエラーの分類ごとの表示名
var typeLabels = map[stage.ErrorType]string{
	stage.ErrorStructural: "構造エラー",
	stage.ErrorReference:  "参照エラー",
	stage.ErrorExpression: "式エラー",
	stage.ErrorResource:   "画像エラー",
}

// diagnosticPrinter はスクリプトエラーを利用者向けに表示する
// 端末なら色付き、パイプやファイルなら装飾なしで書き出す
type diagnosticPrinter struct {
	w     io.Writer
	label lipgloss.Style
	line  lipgloss.Style
	count int
	mu    sync.Mutex
}

func newDiagnosticPrinter(w io.Writer) *diagnosticPrinter {
	r := lipgloss.NewRenderer(w)
	return &diagnosticPrinter{
		w:     w,
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		line:  r.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(2),
	}
}

// Print は診断を1件表示する
func (p *diagnosticPrinter) Print(err *stage.ScriptError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	label, ok := typeLabels[err.Type]
	if !ok {
		label = string(err.Type)
	}
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("["+label+"]"), err.Message)
	if err.Line != "" {
		fmt.Fprintln(p.w, p.line.Render("> "+err.Line))
	}
}

// Count は表示した診断の数を返す
func (p *diagnosticPrinter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
