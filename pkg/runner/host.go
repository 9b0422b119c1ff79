package runner

import (
	"fmt"
	"io"
	"sync"
)

// TranscriptHost は受け取った行を io.Writer に書き出すだけのホスト
type TranscriptHost struct {
	w     io.Writer
	lines []string
	mu    sync.Mutex
}

// NewTranscriptHost は新しい TranscriptHost を作成する
// w が nil なら記録だけする
func NewTranscriptHost(w io.Writer) *TranscriptHost {
	return &TranscriptHost{w: w}
}

// Exec は行を記録して書き出す
func (h *TranscriptHost) Exec(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines = append(h.lines, line)
	if h.w == nil {
		return nil
	}
	if _, err := fmt.Fprintln(h.w, line); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// Lines は記録した行を返す
func (h *TranscriptHost) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]string, len(h.lines))
	copy(result, h.lines)
	return result
}
