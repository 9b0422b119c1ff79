package stage

import "strings"

// TagKind はスコープタグの種類
type TagKind int

const (
	TagStage TagKind = iota
	TagSprite
	TagStart
)

// Tag は開いているブロックを表す
type Tag struct {
	Kind TagKind
	Name string // TagSprite のときのスプライト名
}

func (t Tag) String() string {
	switch t.Kind {
	case TagStage:
		return "Stage"
	case TagSprite:
		return "Sprite:" + t.Name
	case TagStart:
		return "Start"
	}
	return "?"
}

// ScopeStack は開いているブロックのスタック
// foreign はホスト側の構文（if, forever など）で開かれた波括弧の深さ
type ScopeStack struct {
	tags         []Tag
	foreign      int
	stageDefined bool
}

// NewScopeStack は空の ScopeStack を作成する
func NewScopeStack() *ScopeStack {
	return &ScopeStack{tags: make([]Tag, 0, 8)}
}

// Reset はスタックを空にする
func (s *ScopeStack) Reset() {
	s.tags = s.tags[:0]
	s.foreign = 0
	s.stageDefined = false
}

// Push はタグを積む
func (s *ScopeStack) Push(t Tag) {
	if t.Kind == TagStage {
		s.stageDefined = true
	}
	s.tags = append(s.tags, t)
}

// Pop は最も内側のタグを取り除く
func (s *ScopeStack) Pop() (Tag, bool) {
	if len(s.tags) == 0 {
		return Tag{}, false
	}
	t := s.tags[len(s.tags)-1]
	s.tags = s.tags[:len(s.tags)-1]
	return t, true
}

// PopSprite は最も内側の Sprite タグを取り除く
func (s *ScopeStack) PopSprite() (Tag, bool) {
	for i := len(s.tags) - 1; i >= 0; i-- {
		if s.tags[i].Kind == TagSprite {
			t := s.tags[i]
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return t, true
		}
	}
	return Tag{}, false
}

// Empty はどのブロックも開いていなければ true
func (s *ScopeStack) Empty() bool {
	return len(s.tags) == 0
}

// Depth は開いているブロックの数を返す
func (s *ScopeStack) Depth() int {
	return len(s.tags)
}

// Foreign はホスト側の波括弧の深さを返す
func (s *ScopeStack) Foreign() int {
	return s.foreign
}

// StageDefined は Stage が一度でも開かれたかを返す
func (s *ScopeStack) StageDefined() bool {
	return s.stageDefined
}

// InStage は Stage ブロックの中にいれば true
func (s *ScopeStack) InStage() bool {
	for _, t := range s.tags {
		if t.Kind == TagStage {
			return true
		}
	}
	return false
}

// InSprite は Sprite ブロックの中にいれば true
func (s *ScopeStack) InSprite() bool {
	_, ok := s.InnermostSprite()
	return ok
}

// InnermostSprite は最も内側の Sprite ブロックのスプライト名を返す
func (s *ScopeStack) InnermostSprite() (string, bool) {
	for i := len(s.tags) - 1; i >= 0; i-- {
		if s.tags[i].Kind == TagSprite {
			return s.tags[i].Name, true
		}
	}
	return "", false
}

// Tags はスタックの内容を外側から順に返す
func (s *ScopeStack) Tags() []Tag {
	tags := make([]Tag, len(s.tags))
	copy(tags, s.tags)
	return tags
}

// Balance は行の波括弧を数えてスタックに反映する
// 開き括弧はホスト側の深さを増やし、閉じ括弧はまずホスト側の深さを、
// それが 0 なら最も内側のタグを閉じる
func (s *ScopeStack) Balance(line string) {
	opens := strings.Count(line, "{")
	closes := strings.Count(line, "}")
	s.foreign += opens
	for i := 0; i < closes; i++ {
		if s.foreign > 0 {
			s.foreign--
		} else if len(s.tags) > 0 {
			s.tags = s.tags[:len(s.tags)-1]
		}
	}
}

// hasBraces は行に波括弧が含まれるかを返す
func hasBraces(line string) bool {
	return strings.ContainsAny(line, "{}")
}
