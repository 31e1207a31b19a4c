// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザー・管理者由来のテキスト（イベントタイトル等）を
// 招待メールのHTML本文に埋め込む前にサニタイズし、HTMLインジェクションを防ぐ。
// bluemondayのStrictPolicyによりすべてのタグを除去する。
package security

import "github.com/microcosm-cc/bluemonday"

// TextSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// HTMLメール本文への埋め込み前に使用される。
type TextSanitizerService interface {
	// Sanitize はすべてのHTMLタグを除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（全タグ除去）を使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はすべてのHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
