// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextRenderer は保存済みのプレーンテキストをHTMLとして安全に表示するための変換を行う。
// 保存データそのものは変更しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextRenderer はプレーンテキストを表示用HTMLに変換するインターフェース。
type TextRenderer interface {
	// HTML は文字をすべてエスケープし、改行を<br>に変換したHTMLを返す。
	// 同一入力に対して常に同一出力を返す。
	HTML(text string) string
}

// textRenderer はTextRendererの実装。
// 出力は<br>のみを許可するbluemondayポリシーを通す。
type textRenderer struct {
	policy *bluemonday.Policy
}

// NewTextRenderer はTextRendererの新しいインスタンスを生成する。
func NewTextRenderer() TextRenderer {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("br")
	return &textRenderer{policy: policy}
}

func (r *textRenderer) HTML(text string) string {
	if text == "" {
		return ""
	}
	escaped := html.EscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return r.policy.Sanitize(strings.ReplaceAll(escaped, "\n", "<br>"))
}
