package stage

import (
	"image"
	"math"
)

// 新しいスプライトの向き（右向き）
const defaultDirection = 90.0

// 画像のないスプライトの当たり判定・描画サイズ
const placeholderSize = 50

// Sprite はステージ上の名前付きエンティティ
type Sprite struct {
	Name      string
	X, Y      float64
	Direction float64 // 0 が上、90 が右
	Costume   string  // 読み込みに失敗しても記録は残る
	Image     image.Image
	Visible   bool
	IsClone   bool

	cache renderCache
}

// renderCache は回転済み画像のキャッシュ
// 元画像が変わるか、丸めた角度が変わると作り直す
type renderCache struct {
	img   image.Image
	src   image.Image
	angle int
	valid bool
}

// RotateFunc は画像を時計回りに degrees 度回転した画像を返す
type RotateFunc func(src image.Image, degrees float64) image.Image

func newSprite(name string) *Sprite {
	return &Sprite{
		Name:      name,
		Direction: defaultDirection,
		Visible:   true,
	}
}

// SetImage はコスチューム画像を差し替え、キャッシュを破棄する
func (s *Sprite) SetImage(img image.Image) {
	s.Image = img
	s.InvalidateRenderCache()
}

// InvalidateRenderCache は回転済み画像のキャッシュを破棄する
func (s *Sprite) InvalidateRenderCache() {
	s.cache = renderCache{}
}

// cloneAs はポーズをコピーしたクローンを作る
func (s *Sprite) cloneAs(name string) *Sprite {
	c := *s
	c.Name = name
	c.IsClone = true
	c.cache = renderCache{}
	return &c
}

// snappedAngle は向きを整数に丸める（偶数丸め）
func (s *Sprite) snappedAngle() int {
	return int(math.RoundToEven(s.Direction))
}

// RenderImage は現在の向きに回転した画像を返す
// 画像がなければ nil
func (s *Sprite) RenderImage(rotate RotateFunc) image.Image {
	if s.Image == nil {
		s.cache = renderCache{}
		return nil
	}

	snapped := s.snappedAngle()
	if !s.cache.valid || s.cache.angle != snapped || s.cache.src != s.Image {
		// 画像は右向き（90度）で描かれている前提
		s.cache = renderCache{
			img:   rotate(s.Image, float64(snapped)-defaultDirection),
			src:   s.Image,
			angle: snapped,
			valid: true,
		}
	}
	return s.cache.img
}

// Move は向いている方向に dist だけ進む（向き 0 で +y）
func (s *Sprite) Move(dist float64) {
	rad := s.Direction * math.Pi / 180
	s.X += dist * math.Sin(rad)
	s.Y += dist * math.Cos(rad)
}
