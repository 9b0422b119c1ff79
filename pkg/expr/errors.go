package expr

import "errors"

// 式評価のエラー定義
var (
	// ErrEmpty は空の式が渡された場合のエラー
	ErrEmpty = errors.New("empty expression")

	// ErrDisallowedCharacter は文法外の文字が含まれている場合のエラー
	// 評価は一切行われない
	ErrDisallowedCharacter = errors.New("disallowed character in expression")

	// ErrSyntax は式の構文が不正な場合のエラー
	ErrSyntax = errors.New("malformed expression")

	// ErrUnknownName は未定義のグローバル変数を参照した場合のエラー
	ErrUnknownName = errors.New("unknown name in expression")

	// ErrUnknownProperty は x, y, direction 以外のプロパティを参照した場合のエラー
	ErrUnknownProperty = errors.New("unknown sprite property")

	// ErrNotList は配列でない値に添字を付けた場合のエラー
	ErrNotList = errors.New("indexed value is not a list")

	// ErrNestedIndex は添字式の中で配列を参照した場合のエラー
	ErrNestedIndex = errors.New("array access inside index expression")

	// ErrDivisionByZero はゼロ除算のエラー
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotNumeric は評価結果が有限の実数にならない場合のエラー
	ErrNotNumeric = errors.New("expression result is not numeric")
)
