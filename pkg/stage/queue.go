package stage

// DefaultMaxDrain は1サイクルで取り出す行数の既定値
const DefaultMaxDrain = 64

// PendingQueue はクローン展開で生成された行を次のサイクル以降に渡すキュー
// 1回の Drain で取り出すのは最大 max 行で、全部取り出したらバッファを空にする
type PendingQueue struct {
	lines  []string
	cursor int
	max    int
}

// NewPendingQueue は PendingQueue を作成する
func NewPendingQueue(limit int) *PendingQueue {
	if limit <= 0 {
		limit = DefaultMaxDrain
	}
	return &PendingQueue{max: limit}
}

// Push は行を末尾に追加する
func (q *PendingQueue) Push(lines ...string) {
	q.lines = append(q.lines, lines...)
}

// Drain は古い順に最大 max 行を取り出す
func (q *PendingQueue) Drain() []string {
	if len(q.lines) == 0 {
		q.cursor = 0
		return nil
	}

	end := q.cursor + q.max
	if end > len(q.lines) {
		end = len(q.lines)
	}
	chunk := make([]string, end-q.cursor)
	copy(chunk, q.lines[q.cursor:end])

	q.cursor = end
	if q.cursor >= len(q.lines) {
		q.lines = nil
		q.cursor = 0
	}
	return chunk
}

// Len は未取り出しの行数を返す
func (q *PendingQueue) Len() int {
	return len(q.lines) - q.cursor
}

// Cursor は取り出し済みの位置を返す
func (q *PendingQueue) Cursor() int {
	return q.cursor
}

// Max は1回の Drain で取り出す上限を返す
func (q *PendingQueue) Max() int {
	return q.max
}

// Reset はキューを空にする
func (q *PendingQueue) Reset() {
	q.lines = nil
	q.cursor = 0
}
