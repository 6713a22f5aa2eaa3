// Package client はタスクAPIのHTTPクライアントと、一覧画面の状態を保持するBoardを提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

const (
	// requestTimeout は1リクエストあたりのタイムアウト。再試行はしない。
	requestTimeout = 10 * time.Second
	// maxResponseBytes はレスポンスボディの読み取り上限。
	maxResponseBytes = 4 << 20
)

// RegisterRequest はユーザー登録の送信内容。
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type taskList struct {
	Tasks []model.Task `json:"tasks"`
	Count int          `json:"count"`
}

// Client はタスクAPIのクライアント。
// 保存済みセッションのトークンを各リクエストに付与し、401を受けた場合はセッションを破棄する。
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLには"http://localhost:8080/api"のようにAPIのルートを指定する。
func NewClient(baseURL string, store SessionStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		store:      store,
		logger:     logger,
	}
}

// Register はユーザーを登録し、発行されたセッションを保存する。
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &session); err != nil {
		return nil, err
	}
	if err := c.store.Save(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Login はログインし、発行されたセッションを保存する。
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &session); err != nil {
		return nil, err
	}
	if err := c.store.Save(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout は保存済みセッションを破棄する。サーバー側の状態はない。
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Session は保存済みセッションを返す。未ログインならnil。
func (c *Client) Session() (*Session, error) {
	return c.store.Load()
}

// CurrentUser はトークンを検証し、現在のユーザーを返す。
func (c *Client) CurrentUser(ctx context.Context) (*model.PublicUser, error) {
	var data struct {
		User model.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// ListTasks は自分のタスクを作成日時の新しい順に返す。
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var data taskList
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &data); err != nil {
		return nil, err
	}
	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	return data.Tasks, nil
}

// Stats はサーバーで集計したタスク統計を返す。
func (c *Client) Stats(ctx context.Context) (*model.TaskStats, error) {
	var stats model.TaskStats
	if err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTask はタスクを1件取得する。
func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask はタスクを作成する。
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask はpatchで指定したフィールドのみ更新する。
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask は完了状態を反転する。
func (c *Client) ToggleTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id)+"/toggle", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask はタスクを削除する。
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// do はリクエストを送信し、OKエンベロープのdataをoutにデコードする。
// 通信失敗はErrConnectivity、ERRORエンベロープは*APIErrorとして返す。
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	session, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to load session", slog.String("error", err.Error()))
	}
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("task API request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w (%s %s: %v)", ErrConnectivity, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w (%s %s: %v)", ErrConnectivity, method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear session", slog.String("error", err.Error()))
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{
				StatusCode: resp.StatusCode,
				Code:       model.ErrCodeInternal,
				Message:    http.StatusText(resp.StatusCode),
			}
		}
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if env.Status != "OK" || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("レスポンスデータのパースに失敗しました: %w", err)
	}
	return nil
}
