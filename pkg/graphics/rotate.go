package graphics

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotate は画像を中心で時計回りに degrees 度回転した画像を返す
// 出力は回転後の画像全体が収まる大きさで、余白は透明になる
func Rotate(src image.Image, degrees float64) image.Image {
	if src == nil {
		return nil
	}
	deg := math.Mod(degrees, 360)
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 0:
		return src
	case 90, 180, 270:
		return rotateRight(src, int(deg)/90)
	}

	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	sb := src.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())
	dw := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin)))
	dh := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos)))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	// src の中心を dst の中心に合わせて回転する（y 軸は下向きなので時計回り）
	scx := float64(sb.Min.X) + w/2
	scy := float64(sb.Min.Y) + h/2
	dcx, dcy := float64(dw)/2, float64(dh)/2
	s2d := f64.Aff3{
		cos, -sin, dcx - (cos*scx - sin*scy),
		sin, cos, dcy - (sin*scx + cos*scy),
	}
	draw.BiLinear.Transform(dst, s2d, src, sb, draw.Over, nil)
	return dst
}

// rotateRight は 90 度単位で時計回りに quarter 回だけ回転する（補間なし）
func rotateRight(src image.Image, quarter int) image.Image {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()

	var dst *image.NRGBA
	if quarter%2 == 1 {
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(sb.Min.X+x, sb.Min.Y+y)
			switch quarter {
			case 1:
				dst.Set(h-1-y, x, c)
			case 2:
				dst.Set(w-1-x, h-1-y, c)
			case 3:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
