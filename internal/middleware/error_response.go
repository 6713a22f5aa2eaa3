package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// エンベロープのstatus値
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Envelope はすべてのAPIレスポンスの統一フォーマット。
// 成功時はdata、失敗時はcodeを持つ。errorは開発環境でのみ設定される。
type Envelope struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Code     string `json:"code,omitempty"`
	Category string `json:"category,omitempty"`
	Action   string `json:"action,omitempty"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WriteJSON はエンベロープをJSONとして書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteSuccessResponse は成功レスポンスを書き込む。
func WriteSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	WriteJSON(w, statusCode, Envelope{
		Status:  StatusOK,
		Message: message,
		Data:    data,
	})
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	WriteJSON(w, statusCode, errorEnvelope(apiErr))
}

// WriteErrorResponseWithDetail はerrorフィールドに内部エラーの詳細を含めて書き込む。
// 開発環境でのみ使用すること。
func WriteErrorResponseWithDetail(w http.ResponseWriter, statusCode int, apiErr *model.APIError, detail string) {
	body := errorEnvelope(apiErr)
	body.Error = detail
	WriteJSON(w, statusCode, body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

func errorEnvelope(apiErr *model.APIError) Envelope {
	return Envelope{
		Status:   StatusError,
		Message:  apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
}
