package window

import (
	"testing"
	"time"

	"github.com/zurustar/clage/pkg/graphics"
	"github.com/zurustar/clage/pkg/stage"
)

func TestNewGame(t *testing.T) {
	game := NewGame(10 * time.Second)

	if game == nil {
		t.Fatal("NewGame returned nil")
	}
	if game.timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", game.timeout)
	}
	if game.QuitRequested() {
		t.Error("quit requested initially")
	}
}

func TestLayout(t *testing.T) {
	game := NewGame(0)

	// 描画面を開く前は既定の大きさ
	if w, h := game.Layout(0, 0); w != 960 || h != 720 {
		t.Errorf("expected 960x720, got %dx%d", w, h)
	}

	if _, err := game.OpenSurface(400, 200); err != nil {
		t.Fatal(err)
	}
	if w, h := game.Layout(1920, 1080); w != 400 || h != 200 {
		t.Errorf("expected 400x200, got %dx%d", w, h)
	}
	if !game.sizeDirty {
		t.Error("window resize should be scheduled")
	}
}

func TestOpenSurface(t *testing.T) {
	game := NewGame(0)

	s, err := game.OpenSurface(100, 50)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := s.(*graphics.Canvas)
	if !ok {
		t.Fatalf("surface is %T, want *graphics.Canvas", s)
	}
	if w, h := c.Size(); w != 100 || h != 50 {
		t.Errorf("canvas %dx%d", w, h)
	}

	if _, err := game.OpenSurface(-1, 50); err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestRequestQuit(t *testing.T) {
	game := NewGame(0)
	game.RequestQuit()
	if !game.QuitRequested() {
		t.Error("RequestQuit not observed")
	}
}

func TestKeyMap_CoversAllKeys(t *testing.T) {
	for _, k := range stage.Keys() {
		if _, ok := keyMap[k]; !ok {
			t.Errorf("key %s has no mapping", k)
		}
	}
	game := NewGame(0)
	if game.IsKeyPressed(stage.Key(999)) {
		t.Error("unknown key reported as pressed")
	}
}

func TestGame_ImplementsCollaborators(t *testing.T) {
	var _ stage.Display = NewGame(0)
	var _ stage.Input = NewGame(0)
}
