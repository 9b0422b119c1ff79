package window

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zurustar/clage/pkg/graphics"
	"github.com/zurustar/clage/pkg/logger"
	"github.com/zurustar/clage/pkg/stage"
)

// ウィンドウのタイトル
const windowTitle = "clage"

// StepFunc は1フレーム分の処理（保留行・入力行・描画）を行う
// done が true ならゲームループを終了する
type StepFunc func() (done bool, err error)

// keyMap はスクリプトのキーと Ebitengine のキーの対応
var keyMap = map[stage.Key]ebiten.Key{
	stage.KeyRight: ebiten.KeyArrowRight,
	stage.KeyLeft:  ebiten.KeyArrowLeft,
	stage.KeyUp:    ebiten.KeyArrowUp,
	stage.KeyDown:  ebiten.KeyArrowDown,
	stage.KeySpace: ebiten.KeySpace,
	stage.KeyEnter: ebiten.KeyEnter,
	stage.KeyShift: ebiten.KeyShiftLeft,
	stage.KeyA:     ebiten.KeyA,
	stage.KeyS:     ebiten.KeyS,
	stage.KeyD:     ebiten.KeyD,
	stage.KeyW:     ebiten.KeyW,
}

// Game はEbitengineのゲームインターフェースを実装する
// stage.Display と stage.Input も兼ね、セッションが描いた Canvas の
// 最新フレームを毎フレーム画面に再生する
type Game struct {
	canvas     *graphics.Canvas
	width      int
	height     int
	sizeDirty  bool // ウィンドウサイズを次の Update で反映する
	step       StepFunc
	fps        func() int
	currentTPS int

	timeout   time.Duration
	startTime time.Time
	quit      bool

	// 画像ごとの GPU 側の画像。フレームで使われなかったものは解放する
	images map[image.Image]*ebiten.Image
	used   map[image.Image]bool

	log *slog.Logger
	mu  sync.RWMutex
}

// NewGame Gameを作成
func NewGame(timeout time.Duration) *Game {
	return &Game{
		timeout:   timeout,
		startTime: time.Now(),
		images:    make(map[image.Image]*ebiten.Image),
		used:      make(map[image.Image]bool),
		log:       logger.GetLogger(),
	}
}

// SetStepFunc は毎フレーム呼ばれる処理を設定する
func (g *Game) SetStepFunc(step StepFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.step = step
}

// SetFPSSource は現在のフレームレートを返す関数を設定する
// fps.set で変わった値を次のフレームから TPS に反映する
func (g *Game) SetFPSSource(fps func() int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fps = fps
}

// OpenSurface は描画面を作り直し、ウィンドウサイズの変更を予約する
func (g *Game) OpenSurface(width, height int) (stage.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.canvas = graphics.NewCanvas(width, height)
	g.width, g.height = width, height
	g.sizeDirty = true
	g.log.Debug("Window surface opened", "width", width, "height", height)
	return g.canvas, nil
}

// QuitRequested はウィンドウが閉じられたか ESC かタイムアウトで true を返す
func (g *Game) QuitRequested() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.quit
}

// RequestQuit は終了を要求する
func (g *Game) RequestQuit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quit = true
}

// IsKeyPressed はキーが押されているかを返す
func (g *Game) IsKeyPressed(k stage.Key) bool {
	key, ok := keyMap[k]
	if !ok {
		return false
	}
	return ebiten.IsKeyPressed(key)
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	if g.timeout > 0 && time.Since(g.startTime) >= g.timeout {
		g.log.Info("Timeout reached", "timeout", g.timeout)
		g.RequestQuit()
	}
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.RequestQuit()
	}

	g.applyWindowSize()
	g.applyTPS()

	g.mu.RLock()
	step := g.step
	g.mu.RUnlock()
	if step == nil {
		if g.QuitRequested() {
			return ebiten.Termination
		}
		return nil
	}

	done, err := step()
	if err != nil {
		return err
	}
	if done {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) applyWindowSize() {
	g.mu.Lock()
	dirty, w, h := g.sizeDirty, g.width, g.height
	g.sizeDirty = false
	g.mu.Unlock()

	if dirty {
		ebiten.SetWindowSize(w, h)
	}
}

func (g *Game) applyTPS() {
	g.mu.RLock()
	fps := g.fps
	g.mu.RUnlock()
	if fps == nil {
		return
	}
	if tps := max(fps(), 1); tps != g.currentTPS {
		g.currentTPS = tps
		ebiten.SetTPS(tps)
	}
}

// Draw 最新のフレームを画面に再生する
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.RLock()
	canvas := g.canvas
	g.mu.RUnlock()
	if canvas == nil {
		return
	}

	clear(g.used)
	for _, cmd := range canvas.Frame() {
		switch cmd.Type {
		case graphics.CmdFill:
			screen.Fill(cmd.Color)
		case graphics.CmdFillRect:
			r := cmd.Rect.Intersect(screen.Bounds())
			if r.Empty() {
				continue
			}
			screen.SubImage(r).(*ebiten.Image).Fill(cmd.Color)
		case graphics.CmdBlit:
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(cmd.At.X), float64(cmd.At.Y))
			screen.DrawImage(g.ebitenImage(cmd.Image), op)
		}
	}
	g.releaseUnused()
}

// ebitenImage は画像に対応する GPU 側の画像を返す
func (g *Game) ebitenImage(img image.Image) *ebiten.Image {
	g.used[img] = true
	if e, ok := g.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	g.images[img] = e
	return e
}

// releaseUnused はこのフレームで使われなかった画像を解放する
func (g *Game) releaseUnused() {
	for img, e := range g.images {
		if !g.used[img] {
			e.Deallocate()
			delete(g.images, img)
		}
	}
}

// Layout は描画面の大きさを論理画面の大きさとして返す
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.width == 0 || g.height == 0 {
		return 960, 720
	}
	return g.width, g.height
}

// Run はゲームループを開始する（メインゴルーチンから呼ぶ）
func Run(g *Game) error {
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.mu.RLock()
	w, h := g.width, g.height
	g.mu.RUnlock()
	if w > 0 && h > 0 {
		ebiten.SetWindowSize(w, h)
	}

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("game loop failed: %w", err)
	}
	return nil
}
