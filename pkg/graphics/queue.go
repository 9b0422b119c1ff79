package graphics

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// CommandType は描画コマンドの種類を表す
type CommandType int

const (
	CmdFill CommandType = iota
	CmdFillRect
	CmdBlit
)

func (t CommandType) String() string {
	switch t {
	case CmdFill:
		return "Fill"
	case CmdFillRect:
		return "FillRect"
	case CmdBlit:
		return "Blit"
	}
	return "Unknown"
}

// Command は描画コマンドを表す
type Command struct {
	Type  CommandType
	Rect  image.Rectangle // CmdFillRect の矩形
	Color color.Color     // CmdFill / CmdFillRect の色
	Image image.Image     // CmdBlit の画像
	At    image.Point     // CmdBlit の左上
}

// Canvas は描画コマンドを記録する描画面
// Present までに積まれたコマンドが1フレームになり、
// 表示側（ウィンドウやスナップショット）は最後に確定したフレームを再生する
type Canvas struct {
	width, height int

	pending []Command
	frame   []Command
	frames  int
	mu      sync.Mutex
}

// NewCanvas は新しい Canvas を作成する
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:   width,
		height:  height,
		pending: make([]Command, 0, 16),
	}
}

// Size は描画面の大きさを返す
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Fill は全面を塗りつぶす
func (c *Canvas) Fill(col color.Color) {
	c.push(Command{Type: CmdFill, Color: col})
}

// FillRect は矩形を塗りつぶす
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	c.push(Command{Type: CmdFillRect, Rect: r, Color: col})
}

// Blit は画像の左上を (x, y) に合わせて描画する
func (c *Canvas) Blit(img image.Image, x, y int) {
	if img == nil {
		return
	}
	c.push(Command{Type: CmdBlit, Image: img, At: image.Pt(x, y)})
}

func (c *Canvas) push(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, cmd)
}

// Present は積まれたコマンドをフレームとして確定する
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame = c.pending
	c.pending = make([]Command, 0, len(c.frame))
	c.frames++
}

// Frame は最後に確定したフレームのコマンドを返す
func (c *Canvas) Frame() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.frame) == 0 {
		return nil
	}
	result := make([]Command, len(c.frame))
	copy(result, c.frame)
	return result
}

// Frames は確定したフレームの数を返す
func (c *Canvas) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Render は最後に確定したフレームを画像に描画する
func (c *Canvas) Render() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for _, cmd := range c.Frame() {
		switch cmd.Type {
		case CmdFill:
			draw.Draw(dst, dst.Bounds(), image.NewUniform(cmd.Color), image.Point{}, draw.Src)
		case CmdFillRect:
			draw.Draw(dst, cmd.Rect.Intersect(dst.Bounds()), image.NewUniform(cmd.Color), image.Point{}, draw.Src)
		case CmdBlit:
			b := cmd.Image.Bounds()
			r := image.Rectangle{Min: cmd.At, Max: cmd.At.Add(b.Size())}
			draw.Draw(dst, r, cmd.Image, b.Min, draw.Over)
		}
	}
	return dst
}
