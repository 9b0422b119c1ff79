package stage

import "image"

// 論理座標の既定範囲と 1 単位あたりのピクセル数
const (
	defaultXMin = -240
	defaultXMax = 240
	defaultYMin = -180
	defaultYMax = 180
	DefaultPPU  = 2
)

// Viewport は論理座標系と描画面のサイズ
type Viewport struct {
	XMin, XMax int
	YMin, YMax int
	PPU        int
	Width      int // 描画面の幅（ピクセル）
	Height     int // 描画面の高さ（ピクセル）
}

// NewViewport は既定の論理範囲で Viewport を作成する
func NewViewport(ppu int) Viewport {
	v := Viewport{
		XMin: defaultXMin, XMax: defaultXMax,
		YMin: defaultYMin, YMax: defaultYMax,
		PPU: ppu,
	}
	v.Resize()
	return v
}

// Resize は論理範囲から描画面のサイズを計算し直す
// サイズが変わったら true を返す
func (v *Viewport) Resize() bool {
	ppu := v.PPU
	if ppu < 1 {
		ppu = 1
	}
	lw := v.XMax - v.XMin
	if lw < 1 {
		lw = 1
	}
	lh := v.YMax - v.YMin
	if lh < 1 {
		lh = 1
	}
	w, h := lw*ppu, lh*ppu
	changed := w != v.Width || h != v.Height
	v.Width, v.Height = w, h
	return changed
}

// ToScreen は論理座標を描画面の座標に変換する（y 軸は上向き → 下向き）
func (v Viewport) ToScreen(x, y float64) (int, int) {
	lw := float64(v.XMax - v.XMin)
	if lw == 0 {
		lw = 1
	}
	lh := float64(v.YMax - v.YMin)
	if lh == 0 {
		lh = 1
	}
	w, h := float64(v.Width), float64(v.Height)
	sx := (x - float64(v.XMin)) * (w / lw)
	sy := h - (y-float64(v.YMin))*(h/lh)
	return int(sx), int(sy)
}

// Bounds は描画面全体の矩形を返す
func (v Viewport) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// centeredRect は (cx, cy) を中心とする w×h の矩形を返す
func centeredRect(cx, cy, w, h int) image.Rectangle {
	left := cx - w/2
	top := cy - h/2
	return image.Rect(left, top, left+w, top+h)
}

// touchesEdge は矩形が描画面の端に達しているかを返す
func touchesEdge(r image.Rectangle, width, height int) bool {
	return r.Min.X <= 0 || r.Max.X >= width || r.Min.Y <= 0 || r.Max.Y >= height
}
