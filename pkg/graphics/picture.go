package graphics

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF デコーダを登録
	_ "image/jpeg" // JPEG デコーダを登録
	_ "image/png"  // PNG デコーダを登録
	"log/slog"
	"os"
	"sync"

	_ "golang.org/x/image/bmp" // BMP デコーダを登録
	"golang.org/x/image/draw"

	"github.com/zurustar/clage/pkg/fileutil"
)

// Loader はコスチューム画像を読み込む
// パスは探索ディレクトリを順に調べて解決し、デコードした画像をパス単位でキャッシュする
type Loader struct {
	dirs  []string
	cache map[string]image.Image
	log   *slog.Logger
	mu    sync.Mutex
}

// NewLoader は新しい Loader を作成する
// dirs は探索順（作業ディレクトリ、スクリプトのディレクトリ、設定の画像パスなど）
func NewLoader(dirs ...string) *Loader {
	return &Loader{
		dirs:  dirs,
		cache: make(map[string]image.Image),
		log:   slog.Default(),
	}
}

// SetLogger はロガーを設定する
func (l *Loader) SetLogger(log *slog.Logger) {
	l.log = log
}

// Dirs は探索ディレクトリを返す
func (l *Loader) Dirs() []string {
	dirs := make([]string, len(l.dirs))
	copy(dirs, l.dirs)
	return dirs
}

// Load は画像を読み込んで NRGBA に変換して返す
func (l *Loader) Load(path string) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img, ok := l.cache[path]; ok {
		return img, nil
	}

	fullPath, err := fileutil.Resolve(path, l.dirs...)
	if err != nil {
		l.log.Error("Load: file not found", "filename", path, "dirs", l.dirs)
		return nil, fmt.Errorf("file not found: %w", err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		l.log.Error("Load: failed to open file", "filename", path, "path", fullPath, "error", err)
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	src, format, err := image.Decode(file)
	if err != nil {
		l.log.Error("Load: failed to decode image", "filename", path, "error", err)
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := toNRGBA(src)
	l.cache[path] = img

	l.log.Info("Load: loaded image",
		"filename", path,
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	return img, nil
}

// Cached はキャッシュされている画像の数を返す
func (l *Loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// toNRGBA は原点 (0,0) のアルファ付き画像に変換する
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
