// Package runner はスクリプトの行をセッションに流し込み、
// 変換後の行をホストに渡すサイクルを回す
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zurustar/clage/pkg/keyword"
	"github.com/zurustar/clage/pkg/stage"
)

// Host は変換後の行を受け取って実行する側
type Host interface {
	Exec(line string) error
}

// Flush で保留行を排出するサイクル数の上限
const maxFlushRounds = 1000

// Options は Runner の設定
type Options struct {
	Filter        *keyword.Filter // 予約語の前処理（nil なら英語のまま）
	LinesPerCycle int             // 1サイクルで処理する直接行の数（0 なら残りすべて）
	Logger        *slog.Logger
}

// Runner はセッションとホストをつなぐ
// 1サイクルは 保留行の排出 → 新しい直接行の処理 → OnCycle の順
type Runner struct {
	session *stage.Session
	host    Host
	filter  *keyword.Filter
	batch   int
	log     *slog.Logger

	lines  []string
	next   int
	cycles int
}

// New は新しい Runner を作成する
func New(session *stage.Session, host Host, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		session: session,
		host:    host,
		filter:  opts.Filter,
		batch:   opts.LinesPerCycle,
		log:     opts.Logger.With("session", session.ID()),
	}
}

// Load は処理する行を追加する
func (r *Runner) Load(lines []string) {
	r.lines = append(r.lines, lines...)
}

// Remaining はまだ処理していない直接行の数を返す
func (r *Runner) Remaining() int {
	return len(r.lines) - r.next
}

// Cycles は実行したサイクル数を返す
func (r *Runner) Cycles() int {
	return r.cycles
}

// Start はセッションを開始する
func (r *Runner) Start() error {
	if err := r.session.OnSessionStart(); err != nil {
		return err
	}
	r.log.Info("Session started", "lines", len(r.lines), "lang", r.filter.Name())
	return nil
}

// Feed は1行を変換してホストに渡す。ホストに渡した行を返す
func (r *Runner) Feed(line string) (string, error) {
	return r.exec(r.filter.Apply(line))
}

// exec はセッションが変換した行をホストに渡す
// 保留行はセッションが生成したものなので予約語の前処理はしない
func (r *Runner) exec(line string) (string, error) {
	out := r.session.ProcessLine(line)
	if out == "" {
		return "", nil
	}
	if err := r.host.Exec(out); err != nil {
		return "", fmt.Errorf("host failed: %w", err)
	}
	return out, nil
}

// drain は1サイクル分の保留行を処理してホストに渡す
func (r *Runner) drain() (int, error) {
	lines := r.session.DrainPending()
	for _, line := range lines {
		if _, err := r.exec(line); err != nil {
			return 0, err
		}
	}
	return len(lines), nil
}

// Flush は保留行がなくなるまで排出する（最大 maxFlushRounds サイクル）
func (r *Runner) Flush() (int, error) {
	total := 0
	for range maxFlushRounds {
		n, err := r.drain()
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
	r.log.Warn("Pending lines left after flush", "pending", r.session.Pending(), "rounds", maxFlushRounds)
	return total, nil
}

// Step は1サイクルを実行する。セッションが停止していれば done を返す
func (r *Runner) Step() (done bool, err error) {
	if r.session.Stopped() {
		return true, nil
	}
	r.cycles++

	// 前のサイクルで溜まった保留行（1サイクルの上限まで）
	if _, err := r.drain(); err != nil {
		return true, err
	}

	end := len(r.lines)
	if r.batch > 0 {
		end = min(r.next+r.batch, end)
	}
	for ; r.next < end && !r.session.Stopped(); r.next++ {
		if _, err := r.Feed(r.lines[r.next]); err != nil {
			return true, err
		}
	}

	r.session.OnCycle()
	if r.session.Stopped() {
		r.log.Info("Session stopped", "cycles", r.cycles)
		return true, nil
	}
	return false, nil
}

// Translate はセッションを開始せずに全行を1回で変換し、最後に保留行を排出する
func (r *Runner) Translate() error {
	for ; r.next < len(r.lines) && !r.session.Stopped(); r.next++ {
		if _, err := r.Feed(r.lines[r.next]); err != nil {
			return err
		}
	}
	n, err := r.Flush()
	if err != nil {
		return err
	}
	r.log.Debug("Translated", "lines", len(r.lines), "pending", n)
	return nil
}

// Run はウィンドウなしでサイクルを回す
// セッションの fps に合わせて待ち、停止するか ctx が終わるまで続ける
func (r *Runner) Run(ctx context.Context) error {
	fps := r.session.FPS()
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	for {
		done, err := r.Step()
		if err != nil || done {
			return err
		}
		if f := r.session.FPS(); f != fps {
			fps = f
			ticker.Reset(frameInterval(fps))
		}

		select {
		case <-ctx.Done():
			r.log.Info("Run cancelled", "reason", ctx.Err(), "cycles", r.cycles)
			r.session.Stop()
			return nil
		case <-ticker.C:
		}
	}
}

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(max(fps, 1))
}
