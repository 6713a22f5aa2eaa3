// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータ（認証情報を含む）の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。大文字小文字は区別しない。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。PasswordHashは呼び出し側でハッシュ化済みであること。
	// メールアドレスが重複した場合はDUPLICATE_EMAILのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作は所有者IDでスコープされ、他ユーザーのタスクは存在しないものとして扱う。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// ListByUser はユーザーのタスクを作成日時の降順で返す。
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)

	// FindByIDAndUser は指定ユーザーが所有するタスクを取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error)

	// Update はタスクの可変フィールドを更新し、更新後のタスクを返す。
	// 対象が見つからない場合はnilを返す。
	Update(ctx context.Context, task *model.Task) (*model.Task, error)

	// ToggleCompleted は完了状態を反転し、completed_atを同一文で設定・解除する。
	// 対象が見つからない場合はnilを返す。
	ToggleCompleted(ctx context.Context, id, userID string) (*model.Task, error)

	// DeleteByIDAndUser は指定ユーザーが所有するタスクを削除する。
	// 削除した場合はtrue、対象が見つからない場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}
