package app

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/clage/pkg/cli"
	"github.com/zurustar/clage/pkg/stage"
)

const open = "if ((true)) {"

// newTestApp は標準入出力と環境変数を差し替えた Application を返す
func newTestApp(stdin string, env map[string]string) (*Application, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := New()
	app.SetIO(strings.NewReader(stdin), &stdout, &stderr)
	app.SetEnv(func(k string) string { return env[k] })
	return app, &stdout, &stderr
}

func writeScript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.clage")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestTranslate(t *testing.T) {
	path := writeScript(t,
		`Stage(){`,
		`  fps.set(30)`,
		`}`,
		`Sprite("Cat"){`,
		`  start{`,
		`    Cat.move(10)`,
		`  }`,
		`}`,
	)
	app, stdout, stderr := newTestApp("", nil)

	if err := app.Run([]string{"translate", path}); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	want := strings.Join([]string{open, "}", open, open, "  }", "}"}, "\n") + "\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestTranslate_Stdin(t *testing.T) {
	app, stdout, stderr := newTestApp("Stage(){\n}\n", nil)

	if err := app.Run([]string{"translate", "-"}); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	if got, want := stdout.String(), open+"\n}\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestTranslate_JapaneseKeywords(t *testing.T) {
	path := writeScript(t, `ステージ(){`, `}`)
	app, stdout, stderr := newTestApp("", map[string]string{"CLAGE_LANG": "jp"})

	if err := app.Run([]string{"translate", path}); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	if got, want := stdout.String(), open+"\n}\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestTranslate_Diagnostics(t *testing.T) {
	path := writeScript(t, `Stage(){`, `}`, `Stage(){`, `ghost.x = 1`)
	app, _, stderr := newTestApp("", nil)

	if err := app.Run([]string{"--log-level", "error", "translate", path}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := stderr.String()
	for _, want := range []string{
		"[構造エラー] Stageエラー: Stage()は 1つだけ 宣言できます",
		"> Stage(){",
		"[参照エラー]",
		"> ghost.x = 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stderr does not contain %q:\n%s", want, out)
		}
	}
}

func TestRun_HeadlessStops(t *testing.T) {
	path := writeScript(t, `Stage(){`, `  stop()`, `}`)
	app, stdout, stderr := newTestApp("", nil)

	if err := app.Run([]string{"run", "--headless", "--transcript", path}); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	if got, want := stdout.String(), open+"\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_HeadlessFromEnv(t *testing.T) {
	path := writeScript(t, `Stage(){`, `  stop.all()`, `}`)
	app, stdout, stderr := newTestApp("", map[string]string{"HEADLESS": "1"})

	if err := app.Run([]string{"run", path}); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	// --transcript なしでは何も書き出さない
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"スクリプトなし", []string{"run"}, nil},
		{"存在しないスクリプト", []string{"run", "--headless", "/nonexistent/game.clage"}, nil},
		{"不正な言語", []string{"translate", "--lang", "fr", "-"}, nil},
		{"不正なログレベル", []string{"translate", "-"}, map[string]string{"LOG_LEVEL": "loud"}},
		{"未知のコマンド", []string{"play"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp("", tt.env)
			if err := app.Run(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// fakeReader は決まった行を返してから io.EOF を返す
type fakeReader struct {
	lines []string
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func newReplApp() (*Application, *bytes.Buffer) {
	app, stdout, _ := newTestApp("", nil)
	app.config = cli.Default()
	app.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return app, stdout
}

func TestRepl(t *testing.T) {
	app, stdout := newReplApp()
	in := &fakeReader{lines: []string{
		`Sprite("Cat"){`,
		`  Cat.x = 5`,
		`  score = 3`,
		`}`,
		`:state`,
	}}

	if err := app.repl(in); err != nil {
		t.Fatalf("repl: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{
		open + "\n",
		"  score = 3\n",
		"Cat x=5 y=0 direction=90 visible=true\n",
		"score = 3\n",
		"(depth=0 pending=0)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRepl_QuitAndStop(t *testing.T) {
	app, stdout := newReplApp()
	if err := app.repl(&fakeReader{lines: []string{":quit", `Stage(){`}}); err != nil {
		t.Fatalf("repl: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should run after :quit, got %q", stdout.String())
	}

	app, stdout = newReplApp()
	if err := app.repl(&fakeReader{lines: []string{"stop()", `Stage(){`}}); err != nil {
		t.Fatalf("repl: %v", err)
	}
	if got := stdout.String(); got != "(stopped)\n" {
		t.Errorf("output = %q, want (stopped)", got)
	}
}

type errReader struct{}

func (errReader) Readline() (string, error) { return "", errors.New("tty gone") }

func TestRepl_ReadError(t *testing.T) {
	app, _ := newReplApp()
	if err := app.repl(errReader{}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestDiagnosticPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newDiagnosticPrinter(&buf)

	p.Print(&stage.ScriptError{Type: stage.ErrorResource, Message: "画像を 読み込めません", Line: `Cat.costume = "cat.png"`})
	p.Print(&stage.ScriptError{Type: "OTHER", Message: "不明"})

	out := buf.String()
	for _, want := range []string{"[画像エラー] 画像を 読み込めません", `> Cat.costume = "cat.png"`, "[OTHER] 不明"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
	if p.Count() != 2 {
		t.Errorf("Count = %d, want 2", p.Count())
	}
}
