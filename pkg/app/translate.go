package app

import (
	"github.com/spf13/cobra"

	"github.com/zurustar/clage/pkg/runner"
)

func (app *Application) translateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <script|->",
		Short: "スクリプトを1回で変換してホスト側の行を標準出力に書き出す",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.translate(args[0])
		},
	}
}

// translate はセッションを開始せずに変換だけを行う
// 描画面がないので touching(...) はすべて false になる
func (app *Application) translate(path string) error {
	s, err := app.loadScript(path)
	if err != nil {
		return err
	}

	session, printer := app.newSession(nil, nil, s.Dir())
	r, err := app.newRunner(session, runner.NewTranscriptHost(app.stdout))
	if err != nil {
		return err
	}
	r.Load(s.Lines)
	if err := r.Translate(); err != nil {
		return err
	}

	app.log.Info("Translated", "name", s.FileName, "sprites", session.Registry().Len(), "diagnostics", printer.Count())
	return nil
}
