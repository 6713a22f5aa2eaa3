package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// HealthChecker はデータベースの疎通確認に必要なインターフェース。
// *sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Database string `json:"database"`
}

// HealthHandler は死活監視のHTTPハンドラー。
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。dbがnilの場合はDB確認を省略する。
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はサーバーとデータベースの状態を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeOK(w, http.StatusOK, "サーバーは稼働中です。", healthResponse{Database: "skipped"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
			Code:     model.ErrCodeInternal,
			Message:  "データベースに接続できません。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}

	writeOK(w, http.StatusOK, "サーバーは稼働中です。", healthResponse{Database: "ok"})
}
