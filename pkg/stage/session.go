package stage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/zurustar/clage/pkg/expr"
)

// ブロック開始行の出力。ホスト側では本体を1回だけ実行する if 文になる
const blockOpenMarker = "if ((true)) {"

// DefaultFPS は fps.set がないときのフレームレート
const DefaultFPS = 30

var (
	backgroundColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	placeholderColor = color.RGBA{R: 180, G: 180, B: 180, A: 255}
)

// sessionState はセッションの状態
type sessionState int

const (
	stateIdle    sessionState = iota // OnSessionStart 前（行の変換だけできる）
	stateRunning                     // 描画面あり
	stateStopped                     // stop 後。すべての操作は何もしない
)

// DiagnosticHandler はスクリプトエラーを受け取る
type DiagnosticHandler func(err *ScriptError)

// Options はセッションの設定と外部コンポーネント
// nil のコンポーネントは使われない（描画なし・画像なし・入力なし）
type Options struct {
	PPU      int // 論理座標1単位あたりのピクセル数（既定 2）
	MaxDrain int // 1サイクルで取り出す保留行の上限（既定 64）
	FPS      int // 既定のフレームレート（既定 30）

	Display Display
	Loader  ImageLoader
	Input   Input
	Rotate  RotateFunc

	Logger       *slog.Logger
	OnDiagnostic DiagnosticHandler
}

// Session はステージとスプライトの状態をすべて所有する
// 1行ずつ同期的に処理するのでロックは持たない
type Session struct {
	id  string
	log *slog.Logger

	opts Options

	registry  *Registry
	globals   *Globals
	scope     *ScopeStack
	templates *Templates
	queue     *PendingQueue
	viewport  Viewport
	fps       int

	state   sessionState
	running bool
	surface Surface

	display Display
	loader  ImageLoader
	input   Input
	rotate  RotateFunc
}

// New は新しいセッションを作成する
func New(opts Options) *Session {
	if opts.PPU <= 0 {
		opts.PPU = DefaultPPU
	}
	if opts.MaxDrain <= 0 {
		opts.MaxDrain = DefaultMaxDrain
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Rotate == nil {
		opts.Rotate = func(src image.Image, _ float64) image.Image { return src }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.NewString()
	s := &Session{
		id:        id,
		log:       opts.Logger.With("session", id),
		opts:      opts,
		registry:  NewRegistry(),
		globals:   NewGlobals(),
		scope:     NewScopeStack(),
		templates: NewTemplates(),
		queue:     NewPendingQueue(opts.MaxDrain),
		viewport:  NewViewport(opts.PPU),
		fps:       opts.FPS,
		display:   opts.Display,
		loader:    opts.Loader,
		input:     opts.Input,
		rotate:    opts.Rotate,
	}
	return s
}

// ID はセッションの識別子を返す
func (s *Session) ID() string { return s.id }

// Running は描画面を持って実行中なら true
func (s *Session) Running() bool { return s.running }

// Stopped は stop されていれば true
func (s *Session) Stopped() bool { return s.state == stateStopped }

// FPS は現在のフレームレートを返す
func (s *Session) FPS() int { return s.fps }

// Viewport は現在の論理座標系を返す
func (s *Session) Viewport() Viewport { return s.viewport }

// Registry はスプライトの登録簿を返す
func (s *Session) Registry() *Registry { return s.registry }

// Globals はグローバル変数を返す
func (s *Session) Globals() *Globals { return s.globals }

// Scope はブロックのスタックを返す
func (s *Session) Scope() *ScopeStack { return s.scope }

// Pending は取り出されていない保留行の数を返す
func (s *Session) Pending() int { return s.queue.Len() }

// Sprite は名前でスプライトを取得する
func (s *Session) Sprite(name string) (*Sprite, bool) { return s.registry.Get(name) }

// OnSessionStart はすべての状態を初期化し、描画面を開く
func (s *Session) OnSessionStart() error {
	s.registry.Reset()
	s.globals.Reset()
	s.scope.Reset()
	s.templates.Reset()
	s.queue.Reset()
	s.viewport = NewViewport(s.opts.PPU)
	s.fps = s.opts.FPS
	s.surface = nil
	s.state = stateRunning
	s.running = true

	if s.display == nil {
		s.log.Debug("Session started without display")
		return nil
	}
	surface, err := s.display.OpenSurface(s.viewport.Width, s.viewport.Height)
	if err != nil {
		s.running = false
		s.state = stateStopped
		return fmt.Errorf("failed to open surface: %w", err)
	}
	s.surface = surface
	s.log.Info("Session started", "width", s.viewport.Width, "height", s.viewport.Height)
	return nil
}

// Stop はセッションを終了する
// 以降のすべての操作は何もしない
func (s *Session) Stop() {
	if s.state == stateStopped {
		return
	}
	s.state = stateStopped
	s.running = false
	s.surface = nil
	s.log.Info("Session stopped")
}

// DrainPending はクローン展開で生成された行を最大 MaxDrain 行取り出す
func (s *Session) DrainPending() []string {
	if s.state == stateStopped {
		return nil
	}
	return s.queue.Drain()
}

// OnCycle は終了要求を確認してからフレームを描画する
func (s *Session) OnCycle() {
	if s.surface == nil || !s.running {
		return
	}
	if s.display != nil && s.display.QuitRequested() {
		s.log.Info("Quit requested")
		s.Stop()
		return
	}
	s.drawFrame()
}

// drawFrame は表示中のスプライトを登録順に描画する
func (s *Session) drawFrame() {
	s.surface.Fill(backgroundColor)
	for _, sp := range s.registry.Sprites() {
		if !sp.Visible {
			continue
		}
		sx, sy := s.viewport.ToScreen(sp.X, sp.Y)
		img := sp.RenderImage(s.rotate)
		if img == nil {
			s.surface.FillRect(centeredRect(sx, sy, placeholderSize, placeholderSize), placeholderColor)
			continue
		}
		b := img.Bounds()
		r := centeredRect(sx, sy, b.Dx(), b.Dy())
		s.surface.Blit(img, r.Min.X, r.Min.Y)
	}
	s.surface.Present()
}

// ProcessLine は1行を変換してホストが実行する行を返す
// DSL の行は消費されて空文字列か if ((true)) { になる
// エラーは診断として通知し、空文字列を返す
func (s *Session) ProcessLine(line string) string {
	if s.state == stateStopped {
		return ""
	}

	if isPassThrough(line) {
		return line
	}

	if s.templates.Capturing() {
		if s.templates.Feed(line) {
			s.log.Debug("Clone template captured")
		}
		return ""
	}

	line = s.resolveQueries(line)

	out, err := s.dispatch(Classify(line))
	if err != nil {
		s.report(err, line)
		return ""
	}
	return out
}

// report は診断を記録して通知する
func (s *Session) report(err error, line string) {
	var se *ScriptError
	if !errors.As(err, &se) {
		se = &ScriptError{Type: ErrorStructural, Message: err.Error(), Err: err}
	}
	se.Line = strings.TrimSpace(line)

	s.log.Warn("Script error", "type", se.Type, "message", se.Message, "line", se.Line)
	if s.opts.OnDiagnostic != nil {
		s.opts.OnDiagnostic(se)
	}
}

// dispatch は分類済みの行を処理する
func (s *Session) dispatch(cmd Command) (string, error) {
	switch c := cmd.(type) {
	case StageOpen:
		if s.scope.StageDefined() {
			return "", structuralError(ErrDuplicateStage, "Stageエラー: Stage()は 1つだけ 宣言できます")
		}
		s.scope.Push(Tag{Kind: TagStage})
		return blockOpenMarker, nil

	case SpriteOpen:
		if _, err := s.registry.Declare(c.Name); err != nil {
			return "", structuralError(err, `Sprite名エラー: "%s"は もう 使用されています`, c.Name)
		}
		s.scope.Push(Tag{Kind: TagSprite, Name: c.Name})
		s.log.Debug("Sprite declared", "sprite", c.Name)
		return blockOpenMarker, nil

	case StartOpen:
		if s.scope.Empty() {
			return "", structuralError(ErrWrongContext, "startエラー: Stageか Spriteの 中だけで 使えます")
		}
		s.scope.Push(Tag{Kind: TagStart})
		return blockOpenMarker, nil

	case CloneOpen:
		owner, ok := s.scope.InnermostSprite()
		if !ok {
			return "", structuralError(ErrWrongContext, "cloneエラー: cloneブロックは Spriteの 中だけで 使えます")
		}
		s.templates.BeginCapture(owner)
		return "", nil

	case Braces:
		s.scope.Balance(c.Line)
		return c.Line, nil

	case FPSSet:
		return "", s.setFPS(c.Arg)

	case BoundsSet:
		return "", s.setBounds(c)

	case Run:
		return "", nil

	case Stop:
		s.Stop()
		return "", nil

	case PropertySet:
		return "", s.setProperty(c)

	case CloneSpawn:
		return "", s.spawn(c.Source)

	case Move:
		return "", s.move(c)

	case CloneDelete:
		return "", s.deleteClone(c.Name)

	case ContextOpen:
		if !s.registry.Has(c.Name) {
			return "", &ScriptError{
				Type:    ErrorReference,
				Message: fmt.Sprintf(`内部エラー: Sprite "%s"が ありません`, c.Name),
				Err:     fmt.Errorf("%w: %s", ErrUnknownSprite, c.Name),
			}
		}
		s.scope.Push(Tag{Kind: TagSprite, Name: c.Name})
		return blockOpenMarker, nil

	case ContextClose:
		s.scope.PopSprite()
		return "}", nil

	case Visibility:
		sp, ok := s.registry.Get(c.Sprite)
		if !ok {
			return "", referenceError(c.Sprite)
		}
		sp.Visible = c.Visible
		return "", nil

	case Assignment:
		v := s.globals.Assign(c.Name, c.Expr, s.resolver())
		s.log.Debug("Global assigned", "name", c.Name, "value", v.String())
		return c.Line, nil

	case Statement:
		if s.scope.Empty() {
			return "", structuralError(ErrOutsideBlock, "エラー: コードは Stage()か Sprite()の 中だけに 書けます")
		}
		return c.Line, nil
	}
	return "", fmt.Errorf("unhandled command %T", cmd)
}

func (s *Session) setFPS(arg string) error {
	if !s.scope.InStage() {
		return structuralError(ErrWrongContext, "fpsは Stageの 中だけで 使えます")
	}
	v, ok := intLiteral(arg)
	if !ok {
		return structuralError(ErrInvalidArgument, "fps: 整数を 指定してください")
	}
	s.fps = max(v, 1)
	return nil
}

func (s *Session) setBounds(c BoundsSet) error {
	if !s.scope.InStage() {
		return structuralError(ErrWrongContext, "%sは Stageの 中だけで 使えます", c.Axis)
	}
	lo, ok1 := intLiteral(c.Min)
	hi, ok2 := intLiteral(c.Max)
	if !ok1 || !ok2 || lo >= hi {
		return structuralError(ErrInvalidArgument, "%s: min<maxの 整数を 使ってください", c.Axis)
	}
	if c.Axis == "width" {
		s.viewport.XMin, s.viewport.XMax = lo, hi
	} else {
		s.viewport.YMin, s.viewport.YMax = lo, hi
	}
	return s.applyViewport()
}

// applyViewport は描画面のサイズを計算し直し、変わっていれば描画面を作り直す
func (s *Session) applyViewport() error {
	if !s.viewport.Resize() || s.surface == nil || s.display == nil {
		return nil
	}
	surface, err := s.display.OpenSurface(s.viewport.Width, s.viewport.Height)
	if err != nil {
		return resourceError(err, "描画面を 作り直せません")
	}
	s.surface = surface
	s.log.Debug("Surface recreated", "width", s.viewport.Width, "height", s.viewport.Height)
	return nil
}

func (s *Session) setProperty(c PropertySet) error {
	sp, ok := s.registry.Get(c.Sprite)
	if !ok {
		return referenceError(c.Sprite)
	}

	if c.Prop == "costume" {
		return s.setCostume(sp, c.Expr)
	}

	v, err := expr.Evaluate(c.Expr, s.resolver())
	if err != nil {
		return expressionError(err, "%s.%s: 数値式を 指定してください", c.Sprite, c.Prop)
	}
	switch c.Prop {
	case "x":
		sp.X = v
	case "y":
		sp.Y = v
	case "direction":
		sp.Direction = v
	}
	return nil
}

func (s *Session) setCostume(sp *Sprite, rhs string) error {
	path, ok := toStringLiteral(rhs)
	if !ok {
		return structuralError(ErrInvalidArgument, `%s: "画像ファイル名"で 指定してください`, sp.Name)
	}
	sp.Costume = path

	if s.loader == nil {
		sp.SetImage(nil)
		return resourceError(ErrImageLoad, `costumeエラー: "%s"を 読み込めません`, path)
	}
	img, err := s.loader.Load(path)
	if err != nil || img == nil {
		sp.SetImage(nil)
		if err == nil {
			err = ErrImageLoad
		}
		return resourceError(fmt.Errorf("%w: %w", ErrImageLoad, err), `costumeエラー: "%s"を 読み込めません`, path)
	}
	sp.SetImage(img)
	return nil
}

func (s *Session) spawn(source string) error {
	clone, err := s.registry.Spawn(source)
	if err != nil {
		return &ScriptError{
			Type:    ErrorReference,
			Message: fmt.Sprintf(`クローンエラー: "%s"は 宣言されていません`, source),
			Err:     err,
		}
	}

	if tmpl, ok := s.templates.Get(source); ok {
		s.queue.Push(Expand(clone.Name, tmpl)...)
	}
	s.log.Debug("Clone spawned", "sprite", clone.Name, "pending", s.queue.Len())
	return nil
}

func (s *Session) move(c Move) error {
	sp, ok := s.registry.Get(c.Sprite)
	if !ok {
		return referenceError(c.Sprite)
	}
	if !s.scope.InSprite() {
		return structuralError(ErrWrongContext, "%s.moveは Spriteの ブロックの中 だけで 使えます", c.Sprite)
	}
	d, err := expr.Evaluate(c.Expr, s.resolver())
	if err != nil {
		return expressionError(err, "%s.move: 数値を 指定してください", c.Sprite)
	}
	sp.Move(d)
	return nil
}

func (s *Session) deleteClone(name string) error {
	err := s.registry.Delete(name)
	switch {
	case err == nil:
		s.log.Debug("Clone deleted", "sprite", name)
		return nil
	case errors.Is(err, ErrUnknownSprite):
		// 削除済み
		return nil
	default:
		return structuralError(err, `クローンエラー: "%s"は クローンではないので 削除できません`, name)
	}
}

// resolver は式評価器に渡す名前解決を返す
func (s *Session) resolver() expr.Resolver {
	return sessionResolver{s: s}
}

type sessionResolver struct {
	s *Session
}

func (r sessionResolver) SpriteProperty(sprite, prop string) float64 {
	sp, ok := r.s.registry.Get(sprite)
	if !ok {
		return 0
	}
	switch prop {
	case "x":
		return sp.X
	case "y":
		return sp.Y
	case "direction":
		return sp.Direction
	}
	return 0
}

func (r sessionResolver) Scalar(name string) (float64, bool) {
	return r.s.globals.Scalar(name)
}

func (r sessionResolver) Element(name string, index int) (float64, error) {
	return r.s.globals.Element(name, index)
}

// intLiteral は整数リテラルを解釈する
func intLiteral(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}
