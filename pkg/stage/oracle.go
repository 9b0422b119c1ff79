package stage

import (
	"image"
	"regexp"
	"strings"
)

const namePattern = `([A-Za-z_]\w*(?:#\d+)?)`

var (
	reTouchingCall = regexp.MustCompile(`\b` + namePattern + `\s*\.\s*touching\s*\(\s*([^)]+?)\s*\)`)
	rePressedCall  = regexp.MustCompile(`\bpressed\s*\(\s*([^)]+)\s*\)`)
)

// resolveQueries は touching(...) と pressed(...) を true / false に置き換える
// 行の分類より前に行うので、ホストの if 文の条件としてそのまま使える
func (s *Session) resolveQueries(line string) string {
	if strings.Contains(line, "touching") {
		line = reTouchingCall.ReplaceAllStringFunc(line, func(m string) string {
			sub := reTouchingCall.FindStringSubmatch(m)
			return boolLiteral(s.IsTouching(sub[1], sanitizeToken(sub[2])))
		})
	}
	if strings.Contains(line, "pressed") {
		line = rePressedCall.ReplaceAllStringFunc(line, func(m string) string {
			sub := rePressedCall.FindStringSubmatch(m)
			return boolLiteral(s.IsPressed(sanitizeToken(sub[1])))
		})
	}
	return line
}

// IsTouching は self が target（"edge"、スプライト名、またはそのクローン）に
// 触れているかを返す
func (s *Session) IsTouching(self, target string) bool {
	if s.surface == nil || !s.running {
		return false
	}
	sp, ok := s.registry.Get(self)
	if !ok || !sp.Visible {
		return false
	}
	r1 := s.spriteRect(sp)

	if strings.ToLower(target) == "edge" {
		return touchesEdge(r1, s.viewport.Width, s.viewport.Height)
	}

	for _, other := range s.registry.Family(target) {
		if !other.Visible {
			continue
		}
		if r1.Overlaps(s.spriteRect(other)) {
			return true
		}
	}
	return false
}

// IsPressed はキー名のキーが押されているかを返す
func (s *Session) IsPressed(keyName string) bool {
	if !s.running || s.input == nil {
		return false
	}
	k, ok := LookupKey(keyName)
	if !ok {
		return false
	}
	return s.input.IsKeyPressed(k)
}

// spriteRect はスプライトの描画面上の矩形を返す
// 画像があれば回転後の画像、なければ既定サイズの正方形
func (s *Session) spriteRect(sp *Sprite) image.Rectangle {
	sx, sy := s.viewport.ToScreen(sp.X, sp.Y)
	img := sp.RenderImage(s.rotate)
	if img == nil {
		return centeredRect(sx, sy, placeholderSize, placeholderSize)
	}
	b := img.Bounds()
	return centeredRect(sx, sy, b.Dx(), b.Dy())
}

// sanitizeToken は前後の空白と引用符を取り除く
func sanitizeToken(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		s = s[1 : len(s)-1]
	}
	return s
}

func boolLiteral(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
