// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error)
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	GetCurrentUser(ctx context.Context, userID string) (*model.PublicUser, error)
}

// AuthEventRecorder は登録・ログインの結果を記録するインターフェース。
// metrics.Collectorが実装する。
type AuthEventRecorder interface {
	RecordAuthEvent(event, result string)
}

type noopAuthRecorder struct{}

func (noopAuthRecorder) RecordAuthEvent(string, string) {}

// AuthHandler はユーザー登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	errorResponder
	service  AuthServiceInterface
	recorder AuthEventRecorder
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, recorder AuthEventRecorder, exposeErrorDetail bool) *AuthHandler {
	if recorder == nil {
		recorder = noopAuthRecorder{}
	}
	return &AuthHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
		recorder:       recorder,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register はユーザーを登録し、トークンを発行する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		h.recorder.RecordAuthEvent("register", authResultOf(err))
		h.handleServiceError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), req)
	h.recorder.RecordAuthEvent("register", authResultOf(err))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, "ユーザー登録が完了しました。", result)
}

// Login はメールアドレスとパスワードで認証し、トークンを発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.recorder.RecordAuthEvent("login", authResultOf(err))
		h.handleServiceError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	h.recorder.RecordAuthEvent("login", authResultOf(err))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "ログインしました。", result)
}

// Me は認証中のユーザー情報を返す。
// 認証ミドルウェアが解決したユーザーがあればそれを使い、なければIDから検索する。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		writeOK(w, http.StatusOK, "", map[string]any{"user": user})
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "", map[string]any{"user": user})
}

// authResultOf はメトリクス用の結果ラベルを返す。
// 入力起因の失敗はrejected、それ以外の失敗はerrorとする。
func authResultOf(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code != model.ErrCodeInternal {
		return "rejected"
	}
	return "error"
}
