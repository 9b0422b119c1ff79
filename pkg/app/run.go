package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/zurustar/clage/pkg/graphics"
	"github.com/zurustar/clage/pkg/runner"
	"github.com/zurustar/clage/pkg/script"
	"github.com/zurustar/clage/pkg/window"
)

func (app *Application) runCommand() *cobra.Command {
	var transcript bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "スクリプトを実行する（ウィンドウ、または --headless）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runScript(cmd.Context(), args[0], transcript)
		},
	}
	cmd.Flags().BoolVar(&transcript, "transcript", false, "ホストに渡した行を標準出力に書き出す")
	return cmd
}

func (app *Application) runScript(ctx context.Context, path string, transcript bool) error {
	s, err := app.loadScript(path)
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if transcript {
		out = app.stdout
	}
	host := runner.NewTranscriptHost(out)

	if app.config.Headless {
		return app.runHeadless(ctx, s, host)
	}
	return app.runWindow(s, host)
}

// runHeadless はウィンドウなしで実行する
// タイムアウトか割り込み、または stop() で終了する
func (app *Application) runHeadless(ctx context.Context, s *script.Script, host runner.Host) error {
	app.log.Info("Headless mode: running without window")

	display := graphics.NewHeadlessDisplay()
	display.SetLogger(app.log)
	session, printer := app.newSession(display, nil, s.Dir())

	r, err := app.newRunner(session, host)
	if err != nil {
		return err
	}
	r.Load(s.Lines)
	if err := r.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	frames := 0
	if c := display.Canvas(); c != nil {
		frames = c.Frames()
	}
	app.log.Info("Application terminated normally",
		"cycles", r.Cycles(), "frames", frames, "diagnostics", printer.Count())
	return nil
}

// runWindow はウィンドウを開いて実行する（メインゴルーチンから呼ぶ）
func (app *Application) runWindow(s *script.Script, host runner.Host) error {
	game := window.NewGame(app.config.Timeout)
	session, printer := app.newSession(game, game, s.Dir())

	r, err := app.newRunner(session, host)
	if err != nil {
		return err
	}
	r.Load(s.Lines)
	game.SetStepFunc(r.Step)
	game.SetFPSSource(session.FPS)

	if err := r.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if err := window.Run(game); err != nil {
		return err
	}
	app.log.Info("Application terminated normally", "cycles", r.Cycles(), "diagnostics", printer.Count())
	return nil
}
