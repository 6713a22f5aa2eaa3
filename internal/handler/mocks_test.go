package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn       func(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*auth.AuthResult, error)
	getCurrentUserFn func(ctx context.Context, userID string) (*model.PublicUser, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*model.PublicUser, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, userID)
	}
	return nil, nil
}

type mockTaskService struct {
	createFn func(ctx context.Context, ownerID string, in model.TaskInput) (*model.Task, error)
	listFn   func(ctx context.Context, ownerID string) ([]model.Task, error)
	getFn    func(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	updateFn func(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error)
	toggleFn func(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	deleteFn func(ctx context.Context, ownerID, taskID string) error
	statsFn  func(ctx context.Context, ownerID string) (*model.TaskStats, error)
}

func (m *mockTaskService) Create(ctx context.Context, ownerID string, in model.TaskInput) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, in)
	}
	return nil, nil
}

func (m *mockTaskService) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTaskService) Get(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, taskID)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, taskID, patch)
	}
	return nil, nil
}

func (m *mockTaskService) Toggle(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, ownerID, taskID)
	}
	return nil, nil
}

func (m *mockTaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, taskID)
	}
	return nil
}

func (m *mockTaskService) Stats(ctx context.Context, ownerID string) (*model.TaskStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, ownerID)
	}
	return nil, nil
}

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*model.PublicUser, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.PublicUser, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return nil, model.NewInvalidTokenError()
}

type mockAuthRecorder struct {
	events []string
}

func (m *mockAuthRecorder) RecordAuthEvent(event, result string) {
	m.events = append(m.events, event+":"+result)
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// compile-time interface checks
var (
	_ AuthServiceInterface     = (*mockAuthService)(nil)
	_ TaskServiceInterface     = (*mockTaskService)(nil)
	_ middleware.Authenticator = (*mockAuthenticator)(nil)
	_ AuthEventRecorder        = (*mockAuthRecorder)(nil)
	_ HealthChecker            = (*mockHealthChecker)(nil)
)

// --- ヘルパー ---

// testEnvelope はテスト用にdataを生のJSONで保持するエンベロープ。
type testEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeTestEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nraw: %s", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v\nraw: %s", err, string(env.Data))
	}
}

// withUser は認証ミドルウェアを通過した状態のリクエストを返す。
func withUser(userID string, req *http.Request) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func sampleTask(id string, completed bool) *model.Task {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := &model.Task{
		ID:        id,
		UserID:    "user-1",
		Title:     "Pay rent",
		Priority:  model.PriorityUrgent,
		Category:  model.CategoryFinance,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.SetCompleted(completed, now)
	return task
}
