package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/lib/pq"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// すべてのクエリはuser_idで絞り込む。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, description, priority, category, tags,
	due_date, completed, completed_at, created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, priority, category, tags,
		                    due_date, completed, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.UserID, task.Title, task.Description,
		string(task.Priority), string(task.Category), pq.Array(task.Tags),
		dueDateValue(task.DueDate), task.Completed, task.CompletedAt,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// ListByUser はユーザーのタスクを作成日時の降順で返す。
func (r *PostgresTaskRepo) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// FindByIDAndUser は指定ユーザーが所有するタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// Update はタスクの可変フィールドを更新し、更新後のタスクを返す。
// user_idは変更しない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	updated, err := scanTask(r.db.QueryRowContext(ctx,
		`UPDATE tasks
		 SET title = $3, description = $4, priority = $5, category = $6, tags = $7,
		     due_date = $8, completed = $9, completed_at = $10, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		task.ID, task.UserID, task.Title, task.Description,
		string(task.Priority), string(task.Category), pq.Array(task.Tags),
		dueDateValue(task.DueDate), task.Completed, task.CompletedAt,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// ToggleCompleted は完了状態を反転する。
// completedとcompleted_atを1つのUPDATE文で変更するため、両者が食い違うことはない。
func (r *PostgresTaskRepo) ToggleCompleted(ctx context.Context, id, userID string) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`UPDATE tasks
		 SET completed = NOT completed,
		     completed_at = CASE WHEN completed THEN NULL ELSE now() END,
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	return task, nil
}

// DeleteByIDAndUser は指定ユーザーが所有するタスクを削除する。
func (r *PostgresTaskRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanTask は1行をTaskに読み込む。
func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task        model.Task
		description sql.NullString
		priority    string
		category    string
		tags        []string
		dueDate     sql.NullTime
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &description, &priority, &category,
		pq.Array(&tags), &dueDate, &task.Completed, &completedAt,
		&task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	// 値はCHECK制約で保証されているためそのまま変換する
	task.Priority = model.Priority(priority)
	task.Category = model.Category(category)
	if tags == nil {
		tags = []string{}
	}
	task.Tags = tags
	if dueDate.Valid {
		d := model.DateOf(dueDate.Time)
		task.DueDate = &d
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	return &task, nil
}

// dueDateValue は期日をドライバに渡せる値に変換する。
func dueDateValue(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
