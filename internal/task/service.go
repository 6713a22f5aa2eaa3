// Package task はタスク管理のドメインロジックを提供する。
// すべての操作は認証済みユーザーIDでスコープされる。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/stats"
)

// MaxTitleLength はタイトルの最大文字数（トリム後）。
const MaxTitleLength = 255

// 操作結果のラベル
const (
	resultSuccess  = "success"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// OperationRecorder はタスク操作の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type OperationRecorder interface {
	RecordTaskOperation(operation, result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordTaskOperation(string, string) {}

// Service はタスク管理のサービス層。
// タイトルと説明は前後の空白のみ除き、入力どおりに保存する。
type Service struct {
	repo     repository.TaskRepository
	recorder OperationRecorder
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。recorderはnilでもよい。
func NewService(repo repository.TaskRepository, recorder OperationRecorder) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// Create はタスクを作成する。completedはfalse、completedAtはnilで始まる。
func (s *Service) Create(ctx context.Context, ownerID string, in model.TaskInput) (*model.Task, error) {
	title, err := s.parseTitle(in.Title)
	if err != nil {
		s.record("create", err)
		return nil, err
	}
	priority, err := model.ParsePriority(in.Priority)
	if err != nil {
		s.record("create", err)
		return nil, err
	}
	category, err := model.ParseCategory(in.Category)
	if err != nil {
		s.record("create", err)
		return nil, err
	}
	var dueDate *model.Date
	if in.DueDate != nil {
		if dueDate, err = parseDueDate(*in.DueDate); err != nil {
			s.record("create", err)
			return nil, err
		}
	}

	now := s.now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: s.cleanDescription(in.Description),
		Priority:    priority,
		Category:    category,
		Tags:        model.NormalizeTags(in.Tags),
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.record("create", err)
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	slog.Info("task created",
		slog.String("user_id", ownerID),
		slog.String("task_id", task.ID),
	)
	s.record("create", nil)
	return task, nil
}

// List はユーザーのタスクを作成日時の新しい順に返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		s.record("list", err)
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	s.record("list", nil)
	return tasks, nil
}

// Get はユーザーが所有するタスクを返す。
// 存在しない場合と他ユーザーの所有である場合はどちらもNOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	task, err := s.find(ctx, ownerID, taskID)
	s.record("get", err)
	return task, err
}

// Update は指定されたフィールドのみを更新する。
// completedが変化した場合のみcompletedAtをサーバー側で設定・解除する。
func (s *Service) Update(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.find(ctx, ownerID, taskID)
	if err != nil {
		s.record("update", err)
		return nil, err
	}

	if err := s.applyPatch(task, patch); err != nil {
		s.record("update", err)
		return nil, err
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		s.record("update", err)
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	if updated == nil {
		// 取得後に削除された
		err := model.NewTaskNotFoundError(taskID)
		s.record("update", err)
		return nil, err
	}

	s.record("update", nil)
	return updated, nil
}

// Toggle は完了状態を反転する。
func (s *Service) Toggle(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if !isTaskID(taskID) {
		err := model.NewTaskNotFoundError(taskID)
		s.record("toggle", err)
		return nil, err
	}

	task, err := s.repo.ToggleCompleted(ctx, taskID, ownerID)
	if err != nil {
		s.record("toggle", err)
		return nil, fmt.Errorf("タスクの完了状態の切り替えに失敗しました: %w", err)
	}
	if task == nil {
		err := model.NewTaskNotFoundError(taskID)
		s.record("toggle", err)
		return nil, err
	}

	s.record("toggle", nil)
	return task, nil
}

// Delete はタスクを削除する。2回目の削除はNOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if !isTaskID(taskID) {
		err := model.NewTaskNotFoundError(taskID)
		s.record("delete", err)
		return err
	}

	deleted, err := s.repo.DeleteByIDAndUser(ctx, taskID, ownerID)
	if err != nil {
		s.record("delete", err)
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if !deleted {
		err := model.NewTaskNotFoundError(taskID)
		s.record("delete", err)
		return err
	}

	slog.Info("task deleted",
		slog.String("user_id", ownerID),
		slog.String("task_id", taskID),
	)
	s.record("delete", nil)
	return nil
}

// Stats はユーザーのタスク一覧から集計値を計算する。
// 集計専用の保存領域は持たず、常にListと同じデータから導出する。
func (s *Service) Stats(ctx context.Context, ownerID string) (*model.TaskStats, error) {
	tasks, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		s.record("stats", err)
		return nil, fmt.Errorf("タスク集計の取得に失敗しました: %w", err)
	}

	result := stats.Compute(tasks)
	s.record("stats", nil)
	return &result, nil
}

func (s *Service) find(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if !isTaskID(taskID) {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	task, err := s.repo.FindByIDAndUser(ctx, taskID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	return task, nil
}

// applyPatch は検証済みの値のみをtaskに反映する。検証に失敗した場合taskは変更しない。
func (s *Service) applyPatch(task *model.Task, patch model.TaskPatch) error {
	next := *task

	if patch.Title != nil {
		title, err := s.parseTitle(*patch.Title)
		if err != nil {
			return err
		}
		next.Title = title
	}
	if patch.Description != nil {
		next.Description = s.cleanDescription(patch.Description)
	}
	if patch.Priority != nil {
		p, err := model.ParsePriority(*patch.Priority)
		if err != nil {
			return err
		}
		next.Priority = p
	}
	if patch.Category != nil {
		c, err := model.ParseCategory(*patch.Category)
		if err != nil {
			return err
		}
		next.Category = c
	}
	if patch.Tags != nil {
		next.Tags = model.NormalizeTags(*patch.Tags)
	}
	if patch.DueDate != nil {
		d, err := parseDueDate(*patch.DueDate)
		if err != nil {
			return err
		}
		next.DueDate = d
	}
	if patch.Completed != nil {
		next.SetCompleted(*patch.Completed, s.now())
	}

	*task = next
	return nil
}

func (s *Service) parseTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", model.NewValidationError("タイトルは必須です。")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", model.NewValidationError(fmt.Sprintf("タイトルは%d文字以内で入力してください。", MaxTitleLength))
	}
	return title, nil
}

// cleanDescription は空の説明をnilとして扱う。
func (s *Service) cleanDescription(raw *string) *string {
	if raw == nil {
		return nil
	}
	desc := strings.TrimSpace(*raw)
	if desc == "" {
		return nil
	}
	return &desc
}

func (s *Service) record(operation string, err error) {
	s.recorder.RecordTaskOperation(operation, resultOf(err))
}

// parseDueDate は空文字列を期日なしとして扱う。
func parseDueDate(raw string) (*model.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// isTaskID はUUID形式でないIDを問い合わせ前に弾く。
func isTaskID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case model.IsCode(err, model.ErrCodeTaskNotFound):
		return resultNotFound
	case model.IsCode(err, model.ErrCodeValidation):
		return resultInvalid
	default:
		return resultError
	}
}
