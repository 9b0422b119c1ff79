package stage

import "testing"

func TestScopeStack_Balance(t *testing.T) {
	s := NewScopeStack()
	s.Push(Tag{Kind: TagStage})
	s.Push(Tag{Kind: TagSprite, Name: "Cat"})

	s.Balance("forever {")
	s.Balance("if (x) { y() }")
	if s.Foreign() != 1 || s.Depth() != 2 {
		t.Fatalf("foreign=%d depth=%d, want 1/2", s.Foreign(), s.Depth())
	}

	s.Balance("}")
	if s.Foreign() != 0 || s.Depth() != 2 {
		t.Fatalf("foreign=%d depth=%d, want 0/2", s.Foreign(), s.Depth())
	}

	s.Balance("}")
	if name, ok := s.InnermostSprite(); ok {
		t.Errorf("Sprite tag still open: %s", name)
	}
	if !s.InStage() {
		t.Errorf("Stage tag should still be open")
	}

	// 余分な閉じ括弧は無視される
	s.Balance("} } }")
	if !s.Empty() || s.Foreign() != 0 {
		t.Errorf("stack should be empty, got %v", s.Tags())
	}
}

func TestScopeStack_PopSprite(t *testing.T) {
	s := NewScopeStack()
	s.Push(Tag{Kind: TagSprite, Name: "Cat"})
	s.Push(Tag{Kind: TagSprite, Name: "Cat#1"})
	s.Push(Tag{Kind: TagStart})

	tag, ok := s.PopSprite()
	if !ok || tag.Name != "Cat#1" {
		t.Fatalf("PopSprite = %v, %v", tag, ok)
	}
	tags := s.Tags()
	if len(tags) != 2 || tags[0].Name != "Cat" || tags[1].Kind != TagStart {
		t.Errorf("remaining tags = %v", tags)
	}
	if name, _ := s.InnermostSprite(); name != "Cat" {
		t.Errorf("InnermostSprite = %q", name)
	}
}

func TestScopeStack_StageDefined(t *testing.T) {
	s := NewScopeStack()
	if s.StageDefined() {
		t.Fatal("new stack has Stage")
	}
	s.Push(Tag{Kind: TagStage})
	s.Balance("}")
	if !s.StageDefined() || s.InStage() {
		t.Errorf("StageDefined=%v InStage=%v, want true/false", s.StageDefined(), s.InStage())
	}
	s.Reset()
	if s.StageDefined() {
		t.Errorf("Reset should forget Stage")
	}
}

func TestTag_String(t *testing.T) {
	tests := map[Tag]string{
		{Kind: TagStage}:               "Stage",
		{Kind: TagSprite, Name: "Cat"}: "Sprite:Cat",
		{Kind: TagStart}:               "Start",
	}
	for tag, want := range tests {
		if got := tag.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
