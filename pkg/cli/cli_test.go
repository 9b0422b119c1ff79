package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// envMap は環境変数の差し替え
func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// parse はフラグを解析して設定を解決する
func parse(t *testing.T, args []string, env map[string]string) (*Config, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	var f Flags
	BindFlags(cmd, &f)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return Resolve(cmd, &f, envMap(env))
}

// inTempDir はカレントディレクトリを一時ディレクトリに移す
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestResolve_Defaults(t *testing.T) {
	inTempDir(t)
	c, err := parse(t, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}
}

func TestResolve_Flags(t *testing.T) {
	inTempDir(t)
	tests := []struct {
		name  string
		args  []string
		check func(*Config) bool
	}{
		{"タイムアウト", []string{"--timeout", "10"}, func(c *Config) bool { return c.Timeout == 10*time.Second }},
		{"タイムアウト（短縮形）", []string{"-t", "5"}, func(c *Config) bool { return c.Timeout == 5*time.Second }},
		{"ログレベル", []string{"--log-level", "DEBUG"}, func(c *Config) bool { return c.LogLevel == "debug" }},
		{"ログレベル（短縮形）", []string{"-l", "warn"}, func(c *Config) bool { return c.LogLevel == "warn" }},
		{"言語", []string{"--lang", "jp"}, func(c *Config) bool { return c.Lang == "jp" }},
		{"ヘッドレス", []string{"--headless"}, func(c *Config) bool { return c.Headless }},
		{"PPU", []string{"--ppu", "3"}, func(c *Config) bool { return c.PPU == 3 }},
		{"保留行の上限", []string{"--max-drain", "8"}, func(c *Config) bool { return c.MaxDrain == 8 }},
		{"画像パス", []string{"--image-path", "a", "--image-path", "b"}, func(c *Config) bool {
			return reflect.DeepEqual(c.ImagePaths, []string{"a", "b"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parse(t, tt.args, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("unexpected config: %+v", c)
			}
		})
	}
}

func TestResolve_InvalidValues(t *testing.T) {
	inTempDir(t)
	tests := []struct {
		name string
		args []string
	}{
		{"負のタイムアウト", []string{"--timeout", "-1"}},
		{"不正なログレベル", []string{"--log-level", "verbose"}},
		{"不正な言語", []string{"--lang", "fr"}},
		{"PPU が0", []string{"--ppu", "0"}},
		{"保留行の上限が負", []string{"--max-drain", "-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse(t, tt.args, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	ApplyEnv(c, envMap(map[string]string{
		"HEADLESS":   "true",
		"TIMEOUT":    "7",
		"LOG_LEVEL":  "ERROR",
		"CLAGE_LANG": "kata",
		"CLAGE_PPU":  "4",
	}))

	if !c.Headless {
		t.Error("Headless should be true")
	}
	if c.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", c.Timeout)
	}
	if c.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", c.LogLevel)
	}
	if c.Lang != "kata" {
		t.Errorf("Lang = %q, want kata", c.Lang)
	}
	if c.PPU != 4 {
		t.Errorf("PPU = %d, want 4", c.PPU)
	}
}

func TestApplyEnv_IgnoresInvalidNumbers(t *testing.T) {
	c := Default()
	ApplyEnv(c, envMap(map[string]string{"TIMEOUT": "abc", "HEADLESS": "0"}))
	if c.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", c.Timeout)
	}
	if c.Headless {
		t.Error("Headless should be false")
	}
}

func TestResolve_Precedence(t *testing.T) {
	dir := inTempDir(t)
	yamlText := "ppu: 3\nmax_drain_per_cycle: 16\nlang: jp\nlog_level: warn\nimage_paths:\n  - assets\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yamlText), 0644); err != nil {
		t.Fatal(err)
	}

	// 設定ファイルは既定値に勝つ
	c, err := parse(t, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ConfigFile != DefaultConfigFile {
		t.Errorf("ConfigFile = %q", c.ConfigFile)
	}
	if c.PPU != 3 || c.MaxDrain != 16 || c.Lang != "jp" || c.LogLevel != "warn" {
		t.Errorf("file values not applied: %+v", c)
	}
	if !reflect.DeepEqual(c.ImagePaths, []string{"assets"}) {
		t.Errorf("ImagePaths = %v", c.ImagePaths)
	}

	// 環境変数は設定ファイルに勝つ
	c, err = parse(t, nil, map[string]string{"CLAGE_LANG": "kata"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lang != "kata" {
		t.Errorf("Lang = %q, want kata", c.Lang)
	}

	// フラグはすべてに勝つ
	c, err = parse(t, []string{"--lang", "en", "--ppu", "5", "--image-path", "more"},
		map[string]string{"CLAGE_LANG": "kata"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lang != "en" || c.PPU != 5 {
		t.Errorf("flags not applied: %+v", c)
	}
	if !reflect.DeepEqual(c.ImagePaths, []string{"assets", "more"}) {
		t.Errorf("ImagePaths = %v", c.ImagePaths)
	}
}

func TestResolve_ExplicitConfigFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("headless: true\ntimeout: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := parse(t, []string{"--config", path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Headless || c.Timeout != 3*time.Second {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestResolve_BadConfigFile(t *testing.T) {
	dir := inTempDir(t)
	missing := filepath.Join(dir, "missing.yaml")
	if _, err := parse(t, []string{"--config", missing}, nil); err == nil {
		t.Error("expected error for missing config file")
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("ppu: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := parse(t, []string{"--config", broken}, nil); err == nil {
		t.Error("expected error for broken config file")
	}
}
