// Package keyword は日本語・カタカナで書かれたスクリプトの予約語を
// 英語に置き換える前処理フィルタ
//
// フィルタは状態を持たず、1行ずつ Apply する。文字列リテラルの中は
// キー名の置き換え以外では変更しない。
package keyword

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// pair は置き換え前と置き換え後の組
type pair struct {
	from, to string
}

// Filter はキーワードの置き換え表
type Filter struct {
	name  string
	words []pair // 文字列リテラルの外で単語として置き換える（順番に適用）
	keys  []pair // キー名（文字列リテラルの中でも置き換える）
}

const cloneWord = "クローン"

var (
	reString    = regexp.MustCompile(`(?s)".*?"|'.*?'`)
	reCloneOpen = regexp.MustCompile(`^\s*` + cloneWord + `\s*\{`)
)

// Japanese は漢字・ひらがなの予約語
var Japanese = &Filter{
	name: "jp",
	words: []pair{
		{"設定", "set"},
		{"横幅", "width"},
		{"縦幅", "height"},
		{"実行", "run"},
		{"ステージ", "Stage"},
		{"スプライト", "Sprite"},
		{"スタート", "start"},
		{"ずっと", "forever"},
		{"動かす", "move"},
		{"向き", "direction"},
		{"コスチューム", "costume"},
		{"触れた", "touching"},
		{"押された", "pressed"},
		{"表示する", "show"},
		{"隠す", "hide"},
		{"削除する", "delete"},
		{"端", "edge"},
		{"停止", "stop"},
		{"すべて", "all"},
	},
	keys: []pair{
		{"右向き矢印キー", "right arrow"},
		{"左向き矢印キー", "left arrow"},
	},
}

// Katakana はカタカナ読みの予約語
var Katakana = &Filter{
	name: "kata",
	words: []pair{
		{"セット", "set"},
		{"ウィドゥス", "width"},
		{"ヘイト", "height"},
		{"ラン", "run"},
		{"ステージ", "Stage"},
		{"スプライト", "Sprite"},
		{"スタート", "start"},
		{"フォーエバー", "forever"},
		{"ムーブ", "move"},
		{"ディレクション", "direction"},
		{"コスチューム", "costume"},
		{"タッチング", "touching"},
		{"プレスド", "pressed"},
		{"ショー", "show"},
		{"ハイド", "hide"},
		{"デリート", "delete"},
		{"エッヂ", "edge"},
		{"エッジ", "edge"},
		{"ストップ", "stop"},
		{"オール", "all"},
	},
	keys: []pair{
		{"ライトアロー", "right arrow"},
		{"レフトアロー", "left arrow"},
	},
}

// ForLang は言語名に対応するフィルタを返す
// "en" と "" は nil（何もしないフィルタ）
func ForLang(lang string) (*Filter, error) {
	switch strings.ToLower(lang) {
	case "", "en":
		return nil, nil
	case "jp", "ja":
		return Japanese, nil
	case "kata":
		return Katakana, nil
	}
	return nil, fmt.Errorf("unknown keyword language: %q", lang)
}

// Name はフィルタの名前を返す
func (f *Filter) Name() string {
	if f == nil {
		return "en"
	}
	return f.name
}

// Apply は1行を変換する。空行とコメント行はそのまま返す
func (f *Filter) Apply(line string) string {
	if f == nil {
		return line
	}
	stripped := strings.TrimSpace(line)
	if stripped == "" || strings.HasPrefix(stripped, "//") {
		return line
	}

	for _, k := range f.keys {
		line = strings.ReplaceAll(line, k.from, k.to)
	}
	line = replaceClone(line)
	return f.replaceOutsideStrings(line)
}

// replaceClone は「クローン {」「クローン.」「クローン(」を clone に置き換える
func replaceClone(line string) string {
	line = reCloneOpen.ReplaceAllString(line, "clone {")

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(line[start:], cloneWord)
		if i < 0 {
			b.WriteString(line[start:])
			break
		}
		i += start
		end := i + len(cloneWord)
		b.WriteString(line[start:i])

		after := line[end:]
		followed := strings.HasPrefix(after, ".") || strings.HasPrefix(strings.TrimLeftFunc(after, unicode.IsSpace), "(")
		if followed && !endsWithWord(line[:i]) {
			b.WriteString("clone")
		} else {
			b.WriteString(cloneWord)
		}
		start = end
	}
	return b.String()
}

// replaceOutsideStrings は文字列リテラルの外だけを全角→半角に揃え、予約語を置き換える
func (f *Filter) replaceOutsideStrings(line string) string {
	var b strings.Builder
	last := 0
	for _, loc := range reString.FindAllStringIndex(line, -1) {
		b.WriteString(f.replaceWords(line[last:loc[0]]))
		b.WriteString(line[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(f.replaceWords(line[last:]))
	return b.String()
}

func (f *Filter) replaceWords(seg string) string {
	seg = foldPunct(seg)
	for _, w := range f.words {
		seg = replaceWord(seg, w.from, w.to)
	}
	return seg
}

// foldPunct は全角の英数字・記号を半角にする（かなはそのまま）
func foldPunct(s string) string {
	return strings.Map(func(r rune) rune {
		p := width.LookupRune(r)
		if p.Kind() != width.EastAsianFullwidth {
			return r
		}
		if n := p.Narrow(); n != 0 {
			return n
		}
		return r
	}, s)
}

// replaceWord は前後が単語文字でない word だけを to に置き換える
func replaceWord(s, word, to string) string {
	if !strings.Contains(s, word) {
		return s
	}
	var b strings.Builder
	start := 0
	for {
		i := strings.Index(s[start:], word)
		if i < 0 {
			b.WriteString(s[start:])
			break
		}
		i += start
		end := i + len(word)
		b.WriteString(s[start:i])
		if !endsWithWord(s[:i]) && !startsWithWord(s[end:]) {
			b.WriteString(to)
		} else {
			b.WriteString(word)
		}
		start = end
	}
	return b.String()
}

// isWordRune は正規表現の \w（Unicode）に相当する文字か
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

func endsWithWord(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && isWordRune(r)
}

func startsWithWord(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && isWordRune(r)
}
