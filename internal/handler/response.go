package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// errorResponder はサービス層のエラーを統一エンベロープに変換する。
// exposeDetailがtrueの場合のみ内部エラーの詳細をerrorフィールドに含める。
type errorResponder struct {
	exposeDetail bool
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func (e errorResponder) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	if e.exposeDetail {
		middleware.WriteErrorResponseWithDetail(w, http.StatusInternalServerError, model.NewInternalError(), err.Error())
		return
	}
	middleware.WriteInternalServerError(w)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeOK は成功レスポンスを書き込む。
func writeOK(w http.ResponseWriter, statusCode int, message string, data any) {
	middleware.WriteSuccessResponse(w, statusCode, message, data)
}

// decodeJSON はリクエストボディをdstにデコードする。
// 空ボディや不正なJSONはINVALID_REQUESTとして扱う。
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return model.NewInvalidRequestError()
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError()
	}
	return nil
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials,
		model.ErrCodeUnauthenticated,
		model.ErrCodeInvalidToken,
		model.ErrCodeTokenExpired,
		model.ErrCodeUserNotFound:
		return http.StatusUnauthorized
	case model.ErrCodeTaskNotFound, model.ErrCodeRouteNotFound:
		return http.StatusNotFound
	case model.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
