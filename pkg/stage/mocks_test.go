package stage

import (
	"errors"
	"image"
	"image/color"
)

// mockSurface は描画呼び出しを記録する
type mockSurface struct {
	width, height int
	fills         int
	rects         []image.Rectangle
	blits         []image.Point
	presents      int
}

func (m *mockSurface) Fill(c color.Color) { m.fills++ }

func (m *mockSurface) FillRect(r image.Rectangle, c color.Color) {
	m.rects = append(m.rects, r)
}

func (m *mockSurface) Blit(img image.Image, x, y int) {
	m.blits = append(m.blits, image.Pt(x, y))
}

func (m *mockSurface) Present() { m.presents++ }

// mockDisplay は OpenSurface の呼び出し回数を数える
type mockDisplay struct {
	opened  []*mockSurface
	quit    bool
	openErr error
}

func (m *mockDisplay) OpenSurface(width, height int) (Surface, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	s := &mockSurface{width: width, height: height}
	m.opened = append(m.opened, s)
	return s, nil
}

func (m *mockDisplay) QuitRequested() bool { return m.quit }

func (m *mockDisplay) current() *mockSurface {
	if len(m.opened) == 0 {
		return nil
	}
	return m.opened[len(m.opened)-1]
}

// mockLoader は登録されたパスだけ画像を返す
type mockLoader struct {
	images map[string]image.Image
	calls  int
}

func (m *mockLoader) Load(path string) (image.Image, error) {
	m.calls++
	if img, ok := m.images[path]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

// mockInput は押されているキーの集合
type mockInput map[Key]bool

func (m mockInput) IsKeyPressed(k Key) bool { return m[k] }

// diagnostics はセッションの診断を集める
type diagnostics struct {
	errs []*ScriptError
}

func (d *diagnostics) handle(err *ScriptError) { d.errs = append(d.errs, err) }

func (d *diagnostics) last() *ScriptError {
	if len(d.errs) == 0 {
		return nil
	}
	return d.errs[len(d.errs)-1]
}

// newTestSession は mock を繋いだ開始済みのセッションを作る
func newTestSession(opts Options) (*Session, *mockDisplay, *diagnostics) {
	display := &mockDisplay{}
	diag := &diagnostics{}
	if opts.Display == nil {
		opts.Display = display
	}
	opts.OnDiagnostic = diag.handle
	s := New(opts)
	if err := s.OnSessionStart(); err != nil {
		panic(err)
	}
	return s, display, diag
}

// feed は行を順に処理して出力を返す
func feed(s *Session, lines ...string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, s.ProcessLine(line))
	}
	return out
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}
