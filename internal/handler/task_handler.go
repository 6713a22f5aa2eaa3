package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	Create(ctx context.Context, ownerID string, in model.TaskInput) (*model.Task, error)
	List(ctx context.Context, ownerID string) ([]model.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error)
	Toggle(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
	Stats(ctx context.Context, ownerID string) (*model.TaskStats, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	errorResponder
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, exposeErrorDetail bool) *TaskHandler {
	return &TaskHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
	}
}

// taskListResponse はタスク一覧のAPIレスポンス。
type taskListResponse struct {
	Tasks []model.Task `json:"tasks"`
	Count int          `json:"count"`
}

// ListTasks はタスク一覧を作成日時の新しい順に返す。
// GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	writeOK(w, http.StatusOK, "タスク一覧を取得しました。", taskListResponse{
		Tasks: tasks,
		Count: len(tasks),
	})
}

// GetStats はタスクの集計値を返す。
// GET /tasks/stats
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "集計を取得しました。", stats)
}

// GetTask はタスクを1件返す。
// GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "タスクを取得しました。", task)
}

// CreateTask はタスクを作成する。
// POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req model.TaskInput
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, "タスクを作成しました。", task)
}

// UpdateTask はタスクを部分更新する。ボディに含まれないフィールドは変更しない。
// PUT /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req model.TaskPatch
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "タスクを更新しました。", task)
}

// DeleteTask はタスクを削除する。
// DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, "タスクを削除しました。", nil)
}

// ToggleTask はタスクの完了状態を反転する。
// PATCH /tasks/{id}/toggle
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	task, err := h.service.Toggle(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	message := "タスクを未完了に戻しました。"
	if task.Completed {
		message = "タスクを完了にしました。"
	}
	writeOK(w, http.StatusOK, message, task)
}

// requireUser は認証ミドルウェアが注入したユーザーIDを取り出す。
// 取得できない場合は401を書き込んでfalseを返す。
func (h *TaskHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return "", false
	}
	return userID, true
}
