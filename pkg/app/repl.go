package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/zurustar/clage/pkg/runner"
	"github.com/zurustar/clage/pkg/stage"
)

const replPrompt = "clage> "

// lineReader は1行ずつ入力を返す（*readline.Instance が満たす）
type lineReader interface {
	Readline() (string, error)
}

func (app *Application) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "1行ずつ変換結果を確認する対話モード",
		Long: `1行ずつ変換結果を確認する対話モード

  :state   スプライトと変数の状態を表示
  :quit    終了（Ctrl-D でも終了）`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin, ok := app.stdin.(io.ReadCloser)
			if !ok {
				stdin = io.NopCloser(app.stdin)
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          replPrompt,
				Stdin:           stdin,
				Stdout:          app.stdout,
				Stderr:          app.stderr,
				InterruptPrompt: "^C",
				EOFPrompt:       ":quit",
			})
			if err != nil {
				return fmt.Errorf("failed to start line editor: %w", err)
			}
			defer rl.Close()
			return app.repl(rl)
		},
	}
}

// repl は入力された行を変換し、ホストに渡る行と保留行をすぐに表示する
func (app *Application) repl(in lineReader) error {
	session, _ := app.newSession(nil, nil, "")
	r, err := app.newRunner(session, runner.NewTranscriptHost(app.stdout))
	if err != nil {
		return err
	}

	for {
		line, err := in.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		switch strings.TrimSpace(line) {
		case ":quit", ":q":
			return nil
		case ":state":
			app.printState(session)
			continue
		}

		if _, err := r.Feed(line); err != nil {
			return err
		}
		if _, err := r.Flush(); err != nil {
			return err
		}
		if session.Stopped() {
			fmt.Fprintln(app.stdout, "(stopped)")
			return nil
		}
	}
}

// printState はスプライトとグローバル変数を表示する
func (app *Application) printState(session *stage.Session) {
	for _, sp := range session.Registry().Sprites() {
		fmt.Fprintf(app.stdout, "%s x=%g y=%g direction=%g visible=%t",
			sp.Name, sp.X, sp.Y, sp.Direction, sp.Visible)
		if sp.Costume != "" {
			fmt.Fprintf(app.stdout, " costume=%q", sp.Costume)
		}
		fmt.Fprintln(app.stdout)
	}
	globals := session.Globals()
	for _, name := range globals.Names() {
		v, _ := globals.Get(name)
		fmt.Fprintf(app.stdout, "%s = %s\n", name, v.String())
	}
	fmt.Fprintf(app.stdout, "(depth=%d pending=%d)\n", session.Scope().Depth(), session.Pending())
}
