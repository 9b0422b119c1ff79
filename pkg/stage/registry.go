package stage

import (
	"fmt"
	"strings"
)

// Registry はスプライトを登録順に管理する
// 登録順はそのまま描画順になる
type Registry struct {
	sprites      map[string]*Sprite
	order        []string
	cloneCounter map[string]int
}

// NewRegistry は空の Registry を作成する
func NewRegistry() *Registry {
	return &Registry{
		sprites:      make(map[string]*Sprite),
		order:        make([]string, 0),
		cloneCounter: make(map[string]int),
	}
}

// Reset はすべてのスプライトとクローン番号を破棄する
func (r *Registry) Reset() {
	r.sprites = make(map[string]*Sprite)
	r.order = r.order[:0]
	r.cloneCounter = make(map[string]int)
}

// Declare は新しいスプライトを既定のポーズで登録する
func (r *Registry) Declare(name string) (*Sprite, error) {
	if _, exists := r.sprites[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSprite, name)
	}
	s := newSprite(name)
	r.add(s)
	return s, nil
}

func (r *Registry) add(s *Sprite) {
	r.sprites[s.Name] = s
	r.order = append(r.order, s.Name)
}

// Get は名前でスプライトを取得する
func (r *Registry) Get(name string) (*Sprite, bool) {
	s, ok := r.sprites[name]
	return s, ok
}

// Has は名前が使用済みかを返す
func (r *Registry) Has(name string) bool {
	_, ok := r.sprites[name]
	return ok
}

// Len は登録されているスプライト数を返す
func (r *Registry) Len() int {
	return len(r.sprites)
}

// Sprites は登録順のスプライト一覧を返す
func (r *Registry) Sprites() []*Sprite {
	result := make([]*Sprite, 0, len(r.order))
	for _, name := range r.order {
		if s, ok := r.sprites[name]; ok {
			result = append(result, s)
		}
	}
	return result
}

// Names は登録順の名前一覧を返す
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Spawn は source のクローン "source#N" を作る
// N は source ごとに単調増加するので名前は衝突しない
func (r *Registry) Spawn(source string) (*Sprite, error) {
	base, ok := r.sprites[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSprite, source)
	}

	num := r.cloneCounter[source] + 1
	r.cloneCounter[source] = num

	clone := base.cloneAs(fmt.Sprintf("%s#%d", source, num))
	r.add(clone)
	return clone, nil
}

// Delete はクローンを登録と描画順から取り除く
// クローンでないスプライトは削除できない
func (r *Registry) Delete(name string) error {
	s, ok := r.sprites[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSprite, name)
	}
	if !s.IsClone {
		return fmt.Errorf("%w: %s", ErrNotClone, name)
	}

	delete(r.sprites, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Family は target という名前のスプライトと target#* のクローンを返す
func (r *Registry) Family(target string) []*Sprite {
	var result []*Sprite
	if s, ok := r.sprites[target]; ok {
		result = append(result, s)
	}
	prefix := target + "#"
	for _, name := range r.order {
		if strings.HasPrefix(name, prefix) {
			result = append(result, r.sprites[name])
		}
	}
	return result
}
