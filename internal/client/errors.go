package client

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectivity は通信失敗またはタイムアウトでサーバーから応答を得られなかったことを示す。
	ErrConnectivity = errors.New("サーバーに接続できませんでした。ネットワーク接続を確認してください。")
	// ErrNotAuthenticated はセッションが保存されていないことを示す。
	ErrNotAuthenticated = errors.New("ログインしていません。")
)

// APIError はサーバーがERRORエンベロープで応答したことを表す。
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d %s] %s", e.StatusCode, e.Code, e.Message)
}

// IsUnauthorized は401応答かどうかを返す。
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsNotFound は404応答かどうかを返す。
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// userMessage はエラーを利用者向けの文言に変換する。
func userMessage(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrConnectivity):
		return ErrConnectivity.Error()
	case errors.Is(err, ErrNotAuthenticated):
		return ErrNotAuthenticated.Error()
	default:
		return fallback
	}
}
