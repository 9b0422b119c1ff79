// Package graphics provides costume loading, rotation and the recorded
// drawing surface used by both the window and headless displays.
package graphics

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zurustar/clage/pkg/stage"
)

// HeadlessDisplay はウィンドウを持たない Display
// 描画面は Canvas で、描画内容はフレームとして記録されるだけ
type HeadlessDisplay struct {
	canvas *Canvas
	opens  int
	quit   atomic.Bool
	log    *slog.Logger
	mu     sync.Mutex
}

// NewHeadlessDisplay は新しい HeadlessDisplay を作成する
func NewHeadlessDisplay() *HeadlessDisplay {
	return &HeadlessDisplay{log: slog.Default()}
}

// SetLogger はロガーを設定する
func (d *HeadlessDisplay) SetLogger(log *slog.Logger) {
	d.log = log
}

// OpenSurface は指定サイズの Canvas を作成する
func (d *HeadlessDisplay) OpenSurface(width, height int) (stage.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.canvas = NewCanvas(width, height)
	d.opens++
	d.log.Debug("Headless surface opened", "width", width, "height", height, "opens", d.opens)
	return d.canvas, nil
}

// QuitRequested は RequestQuit が呼ばれていれば true を返す
func (d *HeadlessDisplay) QuitRequested() bool {
	return d.quit.Load()
}

// RequestQuit は終了を要求する（タイムアウトやシグナルから呼ばれる）
func (d *HeadlessDisplay) RequestQuit() {
	d.quit.Store(true)
}

// Canvas は現在の描画面を返す
func (d *HeadlessDisplay) Canvas() *Canvas {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas
}

// Opens は描画面を開いた回数を返す
func (d *HeadlessDisplay) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}
