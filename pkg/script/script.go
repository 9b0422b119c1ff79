package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Extension はスクリプトファイルの拡張子
const Extension = ".clage"

// Encoding はスクリプトファイルの文字コード
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	ShiftJIS Encoding = "shift_jis"
)

// ErrNoScripts はディレクトリにスクリプトがないときのエラー
var ErrNoScripts = errors.New("no script files found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Script はスクリプトファイルを表す
type Script struct {
	FileName string   // ファイル名
	Path     string   // 読み込んだパス
	Encoding Encoding // 元の文字コード
	Lines    []string // UTF-8 に変換して行に分けた内容（改行なし）
	Size     int64    // ファイルサイズ
}

// Dir はスクリプトのあるディレクトリを返す（画像の探索に使う）
func (s *Script) Dir() string {
	return filepath.Dir(s.Path)
}

// Load はスクリプトファイルを読み込む
// path がディレクトリなら、その中の最初のスクリプトを読み込む
func Load(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		files, err := FindScripts(path)
		if err != nil {
			return nil, err
		}
		path = files[0]
		if info, err = os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, enc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: filepath.Base(path),
		Path:     path,
		Encoding: enc,
		Lines:    SplitLines(content),
		Size:     info.Size(),
	}, nil
}

// Read は r からスクリプトを読み込む（標準入力用）
func Read(r io.Reader, name string) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	content, enc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}
	return &Script{
		FileName: name,
		Path:     name,
		Encoding: enc,
		Lines:    SplitLines(content),
		Size:     int64(len(data)),
	}, nil
}

// FindScripts はディレクトリ内のスクリプトファイルを名前順に返す（拡張子は case-insensitive）
func FindScripts(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScripts, dir)
	}

	sort.Strings(files)
	return files, nil
}

// Decode は BOM を取り除き、UTF-8 でなければ Shift-JIS として UTF-8 に変換する
func Decode(data []byte) (string, Encoding, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), UTF8, nil
	}
	content, err := convertShiftJISToUTF8(data)
	if err != nil {
		return "", "", err
	}
	return content, ShiftJIS, nil
}

// convertShiftJISToUTF8 Shift-JISからUTF-8に変換
func convertShiftJISToUTF8(data []byte) (string, error) {
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}

	return string(utf8Data), nil
}

// SplitLines は CRLF / LF / CR のどれでも行に分ける
// 最後の改行の後ろに空行は作らない
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
