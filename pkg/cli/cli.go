package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile は --config がないときに探す設定ファイル名
const DefaultConfigFile = "clage.yaml"

// 既定値
const (
	DefaultLogLevel = "info"
	DefaultLang     = "en"
	DefaultPPU      = 2
	DefaultMaxDrain = 64
)

var (
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLangs     = map[string]bool{"en": true, "jp": true, "kata": true}
)

// Config はコマンドライン引数・環境変数・設定ファイルから解決された設定を保持する
type Config struct {
	ConfigFile string        // 読み込んだ設定ファイル（なければ空）
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	LogLevel   string        // ログレベル（debug, info, warn, error）
	Lang       string        // キーワードの言語（en, jp, kata）
	Headless   bool          // ヘッドレスモード
	PPU        int           // 論理座標1単位あたりのピクセル数
	MaxDrain   int           // 1サイクルで取り出す保留行の上限
	ImagePaths []string      // コスチューム画像の追加探索ディレクトリ
}

// Default は既定値の Config を返す
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Lang:     DefaultLang,
		PPU:      DefaultPPU,
		MaxDrain: DefaultMaxDrain,
	}
}

// FileConfig は設定ファイル（YAML）の内容
type FileConfig struct {
	PPU        int      `yaml:"ppu"`
	MaxDrain   int      `yaml:"max_drain_per_cycle"`
	ImagePaths []string `yaml:"image_paths"`
	Lang       string   `yaml:"lang"`
	LogLevel   string   `yaml:"log_level"`
	Headless   *bool    `yaml:"headless"`
	Timeout    int      `yaml:"timeout"` // 秒
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply は設定ファイルの値のうち指定されたものを反映する
func (fc *FileConfig) Apply(c *Config) {
	if fc.PPU != 0 {
		c.PPU = fc.PPU
	}
	if fc.MaxDrain != 0 {
		c.MaxDrain = fc.MaxDrain
	}
	if len(fc.ImagePaths) > 0 {
		c.ImagePaths = append(c.ImagePaths, fc.ImagePaths...)
	}
	if fc.Lang != "" {
		c.Lang = strings.ToLower(fc.Lang)
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.Headless != nil {
		c.Headless = *fc.Headless
	}
	if fc.Timeout > 0 {
		c.Timeout = time.Duration(fc.Timeout) * time.Second
	}
}

// ApplyEnv は環境変数の値を反映する
// getenv は os.Getenv を渡す（テストでは差し替える）
func ApplyEnv(c *Config, getenv func(string) string) {
	if v := getenv("HEADLESS"); v != "" {
		c.Headless = v == "1" || strings.EqualFold(v, "true")
	}
	if v := getenv("TIMEOUT"); v != "" {
		if t, err := strconv.Atoi(v); err == nil && t > 0 {
			c.Timeout = time.Duration(t) * time.Second
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv("CLAGE_LANG"); v != "" {
		c.Lang = strings.ToLower(v)
	}
	if v := getenv("CLAGE_PPU"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.PPU = p
		}
	}
}

// Validate は設定値を検証する
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %s", c.Timeout)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if !validLangs[c.Lang] {
		return fmt.Errorf("invalid lang: %s (must be en, jp, or kata)", c.Lang)
	}
	if c.PPU <= 0 {
		return fmt.Errorf("ppu must be positive, got %d", c.PPU)
	}
	if c.MaxDrain <= 0 {
		return fmt.Errorf("max drain per cycle must be positive, got %d", c.MaxDrain)
	}
	return nil
}

// Flags はコマンドラインフラグの値
type Flags struct {
	ConfigFile string
	Timeout    int // 秒
	LogLevel   string
	Lang       string
	Headless   bool
	PPU        int
	MaxDrain   int
	ImagePaths []string
}

// BindFlags はすべてのサブコマンドに共通のフラグを登録する
func BindFlags(cmd *cobra.Command, f *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.ConfigFile, "config", "", "設定ファイル（既定: ./"+DefaultConfigFile+" があれば使う）")
	pf.IntVarP(&f.Timeout, "timeout", "t", 0, "タイムアウト時間（秒）")
	pf.StringVarP(&f.LogLevel, "log-level", "l", DefaultLogLevel, "ログレベル（debug, info, warn, error）")
	pf.StringVar(&f.Lang, "lang", DefaultLang, "キーワードの言語（en, jp, kata）")
	pf.BoolVar(&f.Headless, "headless", false, "ヘッドレスモード（ウィンドウなし）")
	pf.IntVar(&f.PPU, "ppu", DefaultPPU, "論理座標1単位あたりのピクセル数")
	pf.IntVar(&f.MaxDrain, "max-drain", DefaultMaxDrain, "1サイクルで取り出す保留行の上限")
	pf.StringArrayVar(&f.ImagePaths, "image-path", nil, "コスチューム画像の探索ディレクトリ（複数指定可）")
}

// Resolve は 既定値 < 設定ファイル < 環境変数 < フラグ の順に設定を解決する
// 指定されたフラグだけが上書きする
func Resolve(cmd *cobra.Command, f *Flags, getenv func(string) string) (*Config, error) {
	c := Default()

	path := f.ConfigFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		fc.Apply(c)
		c.ConfigFile = path
	}

	ApplyEnv(c, getenv)

	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed("timeout") {
		if f.Timeout < 0 {
			return nil, fmt.Errorf("timeout must be non-negative, got %d", f.Timeout)
		}
		c.Timeout = time.Duration(f.Timeout) * time.Second
	}
	if changed("log-level") {
		c.LogLevel = strings.ToLower(f.LogLevel)
	}
	if changed("lang") {
		c.Lang = strings.ToLower(f.Lang)
	}
	if changed("headless") {
		c.Headless = f.Headless
	}
	if changed("ppu") {
		c.PPU = f.PPU
	}
	if changed("max-drain") {
		c.MaxDrain = f.MaxDrain
	}
	c.ImagePaths = append(c.ImagePaths, f.ImagePaths...)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
