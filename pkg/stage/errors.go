// Package stage implements the stage/sprite line transducer.
package stage

import (
	"errors"
	"fmt"
)

// ErrorType はスクリプトエラーの分類
type ErrorType string

const (
	// ErrorStructural は宣言の重複やブロック外の文など構造上のエラー
	ErrorStructural ErrorType = "STRUCTURAL"
	// ErrorReference は未宣言のスプライト参照
	ErrorReference ErrorType = "REFERENCE"
	// ErrorExpression は数式の評価失敗
	ErrorExpression ErrorType = "EXPRESSION"
	// ErrorResource は画像の読み込み失敗
	ErrorResource ErrorType = "RESOURCE"
)

// スクリプトエラーの原因
var (
	ErrDuplicateStage  = errors.New("stage already declared")
	ErrDuplicateSprite = errors.New("sprite name already used")
	ErrOutsideBlock    = errors.New("statement outside any block")
	ErrWrongContext    = errors.New("block or command used outside its required context")
	ErrUnknownSprite   = errors.New("sprite not declared")
	ErrNotClone        = errors.New("only clones can be deleted")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrImageLoad       = errors.New("image could not be loaded")
)

// ScriptError はスクリプト1行の処理で発生したエラー
// Message は利用者向けのメッセージ（日本語）
type ScriptError struct {
	Type    ErrorType
	Message string
	Line    string
	Err     error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap は原因のエラーを返す
func (e *ScriptError) Unwrap() error {
	return e.Err
}

func structuralError(cause error, format string, args ...any) *ScriptError {
	return &ScriptError{Type: ErrorStructural, Message: fmt.Sprintf(format, args...), Err: cause}
}

func referenceError(name string) *ScriptError {
	return &ScriptError{
		Type:    ErrorReference,
		Message: fmt.Sprintf(`Sprite参照エラー: "%s"は 宣言されていません`, name),
		Err:     fmt.Errorf("%w: %s", ErrUnknownSprite, name),
	}
}

func expressionError(cause error, format string, args ...any) *ScriptError {
	return &ScriptError{Type: ErrorExpression, Message: fmt.Sprintf(format, args...), Err: cause}
}

func resourceError(cause error, format string, args ...any) *ScriptError {
	return &ScriptError{Type: ErrorResource, Message: fmt.Sprintf(format, args...), Err: cause}
}
