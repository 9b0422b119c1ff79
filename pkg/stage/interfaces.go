package stage

import (
	"image"
	"image/color"
	"strings"
)

// ImageLoader はコスチューム画像を読み込む
// 探索パスの解決とデコード、パス単位のキャッシュは実装側が行う
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// Surface は描画先
type Surface interface {
	// Fill は全面を塗りつぶす
	Fill(c color.Color)
	// FillRect は矩形を塗りつぶす
	FillRect(r image.Rectangle, c color.Color)
	// Blit は画像の左上を (x, y) に合わせて描画する
	Blit(img image.Image, x, y int)
	// Present は描画したフレームを確定する
	Present()
}

// Display は描画面の生成と終了要求の取得を行う
type Display interface {
	// OpenSurface は指定サイズの描画面を（再）生成する
	OpenSurface(width, height int) (Surface, error)
	// QuitRequested はウィンドウが閉じられたなど終了要求があれば true を返す
	QuitRequested() bool
}

// Input はキー入力の状態を返す
type Input interface {
	IsKeyPressed(k Key) bool
}

// Key は pressed(...) で使える記号的なキー
type Key int

const (
	KeyRight Key = iota + 1
	KeyLeft
	KeyUp
	KeyDown
	KeySpace
	KeyEnter
	KeyShift
	KeyA
	KeyS
	KeyD
	KeyW
)

// keyNames はスクリプト上のキー名とキーの対応表
var keyNames = map[string]Key{
	"right arrow": KeyRight,
	"left arrow":  KeyLeft,
	"up arrow":    KeyUp,
	"down arrow":  KeyDown,
	"space":       KeySpace,
	"enter":       KeyEnter,
	"shift":       KeyShift,
	"a":           KeyA,
	"s":           KeyS,
	"d":           KeyD,
	"w":           KeyW,
}

// LookupKey はキー名（大文字小文字、前後の空白は無視）からキーを返す
func LookupKey(name string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Keys は対応表に含まれるすべてのキーを返す
func Keys() []Key {
	return []Key{KeyRight, KeyLeft, KeyUp, KeyDown, KeySpace, KeyEnter, KeyShift, KeyA, KeyS, KeyD, KeyW}
}

func (k Key) String() string {
	for name, key := range keyNames {
		if key == k {
			return name
		}
	}
	return "unknown"
}
