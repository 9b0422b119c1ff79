package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zurustar/clage/pkg/cli"
	"github.com/zurustar/clage/pkg/graphics"
	"github.com/zurustar/clage/pkg/keyword"
	"github.com/zurustar/clage/pkg/logger"
	"github.com/zurustar/clage/pkg/runner"
	"github.com/zurustar/clage/pkg/script"
	"github.com/zurustar/clage/pkg/stage"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	flags  cli.Flags
	config *cli.Config
	log    *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// New Applicationを作成
func New() *Application {
	return &Application{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}
}

// SetIO は標準入出力を差し替える
func (app *Application) SetIO(stdin io.Reader, stdout, stderr io.Writer) {
	app.stdin = stdin
	app.stdout = stdout
	app.stderr = stderr
}

// SetEnv は環境変数の取得関数を差し替える
func (app *Application) SetEnv(getenv func(string) string) {
	app.getenv = getenv
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	root := app.rootCommand()
	root.SetArgs(args)
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	return root.Execute()
}

func (app *Application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "clage",
		Short: "Stage/Sprite スクリプトの変換・実行",
		Long: `clage - Stage/Sprite スクリプトの変換・実行

Stage() / Sprite() ブロックで書かれたスクリプトを1行ずつ処理し、
スプライトの状態を管理しながらホスト側で実行する行に変換します。

Environment Variables:
  HEADLESS=1           ヘッドレスモードを有効化
  TIMEOUT=<seconds>    タイムアウト時間（秒）
  LOG_LEVEL=<level>    ログレベル
  CLAGE_LANG=<lang>    キーワードの言語（en, jp, kata）
  CLAGE_PPU=<n>        論理座標1単位あたりのピクセル数`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}
	cli.BindFlags(root, &app.flags)
	root.AddCommand(app.runCommand(), app.translateCommand(), app.replCommand())
	return root
}

// setup は設定を解決してロガーを初期化する
func (app *Application) setup(cmd *cobra.Command) error {
	config, err := cli.Resolve(cmd, &app.flags, app.getenv)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if err := logger.InitLoggerWithWriter(config.LogLevel, app.stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.log.Debug("Configuration resolved",
		"command", cmd.Name(),
		"config_file", config.ConfigFile,
		"headless", config.Headless,
		"lang", config.Lang,
		"ppu", config.PPU,
		"max_drain", config.MaxDrain)
	return nil
}

// loadScript はスクリプトを読み込む。"-" なら標準入力から読む
func (app *Application) loadScript(path string) (*script.Script, error) {
	var (
		s   *script.Script
		err error
	)
	if path == "-" {
		s, err = script.Read(app.stdin, "stdin")
	} else {
		s, err = script.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	app.log.Info("Script loaded", "name", s.FileName, "encoding", s.Encoding, "lines", len(s.Lines))
	return s, nil
}

// newSession はセッションを作成する
// 画像は 作業ディレクトリ、スクリプトのディレクトリ、設定の画像パス の順に探す
func (app *Application) newSession(display stage.Display, input stage.Input, scriptDir string) (*stage.Session, *diagnosticPrinter) {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if scriptDir != "" {
		dirs = append(dirs, scriptDir)
	}
	dirs = append(dirs, app.config.ImagePaths...)

	loader := graphics.NewLoader(dirs...)
	loader.SetLogger(app.log)

	printer := newDiagnosticPrinter(app.stderr)
	session := stage.New(stage.Options{
		PPU:          app.config.PPU,
		MaxDrain:     app.config.MaxDrain,
		Display:      display,
		Loader:       loader,
		Input:        input,
		Rotate:       graphics.Rotate,
		Logger:       app.log,
		OnDiagnostic: printer.Print,
	})
	return session, printer
}

// newRunner は設定の言語の前処理を付けた Runner を作成する
func (app *Application) newRunner(session *stage.Session, host runner.Host) (*runner.Runner, error) {
	filter, err := keyword.ForLang(app.config.Lang)
	if err != nil {
		return nil, err
	}
	return runner.New(session, host, runner.Options{Filter: filter, Logger: app.log}), nil
}
