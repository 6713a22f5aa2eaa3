package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/stats"
	"github.com/hitoshi/taskman/internal/view"
)

// TaskAPI はBoardが利用するタスクAPI。*Clientが実装する。
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	Stats(ctx context.Context) (*model.TaskStats, error)
	CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	ToggleTask(ctx context.Context, id string) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// 操作失敗時の既定の通知文言
const (
	noticeLoadFailed   = "タスクの読み込みに失敗しました。"
	noticeCreateFailed = "タスクの作成に失敗しました。"
	noticeUpdateFailed = "タスクの更新に失敗しました。"
	noticeToggleFailed = "タスクの状態の変更に失敗しました。"
	noticeDeleteFailed = "タスクの削除に失敗しました。"
)

// Board はタスク一覧画面の状態を保持する。
// tasks・query・filterのいずれかが変わるたびにロック下で表示用の一覧を導出し直す。
// 完了切り替えと削除は先にローカルへ反映し、失敗したら元に戻す。
type Board struct {
	api TaskAPI
	now func() time.Time

	mu          sync.Mutex
	tasks       []model.Task
	serverStats *model.TaskStats
	query       string
	filter      view.StatusFilter
	visible     []model.Task
	notice      string
}

// NewBoard は空のBoardを生成する。
func NewBoard(api TaskAPI) *Board {
	return &Board{
		api:     api,
		now:     time.Now,
		filter:  view.FilterAll,
		visible: []model.Task{},
	}
}

// Load はタスク一覧と統計を取得し直す。
// 統計の取得に失敗した場合はローカルの一覧から集計するため通知しない。
func (b *Board) Load(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		b.fail(err, noticeLoadFailed)
		return err
	}

	b.mu.Lock()
	b.tasks = slices.Clone(tasks)
	b.notice = ""
	b.deriveLocked()
	b.mu.Unlock()

	b.refreshStats(ctx)
	return nil
}

// Add はタスクを作成し、一覧の先頭に加える。
func (b *Board) Add(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	created, err := b.api.CreateTask(ctx, in)
	if err != nil {
		b.fail(err, noticeCreateFailed)
		return nil, err
	}

	b.mu.Lock()
	b.tasks = slices.Insert(b.tasks, 0, *created)
	b.deriveLocked()
	b.mu.Unlock()

	b.refreshStats(ctx)
	return created, nil
}

// Update はタスクを更新し、サーバーの応答で置き換える。
func (b *Board) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	updated, err := b.api.UpdateTask(ctx, id, patch)
	if err != nil {
		b.fail(err, noticeUpdateFailed)
		return nil, err
	}

	b.mu.Lock()
	b.replaceLocked(*updated)
	b.deriveLocked()
	b.mu.Unlock()

	b.refreshStats(ctx)
	return updated, nil
}

// Toggle は完了状態をローカルで先に反転してからサーバーへ送る。
// 失敗した場合はそのタスクを反転前の状態に戻す。
func (b *Board) Toggle(ctx context.Context, id string) (*model.Task, error) {
	b.mu.Lock()
	i := b.indexLocked(id)
	if i < 0 {
		b.mu.Unlock()
		toggled, err := b.api.ToggleTask(ctx, id)
		if err != nil {
			b.fail(err, noticeToggleFailed)
			return nil, err
		}
		return toggled, nil
	}
	before := b.tasks[i]
	b.tasks[i].SetCompleted(!before.Completed, b.now())
	b.deriveLocked()
	b.mu.Unlock()

	toggled, err := b.api.ToggleTask(ctx, id)

	b.mu.Lock()
	if err != nil {
		b.replaceLocked(before)
		b.notice = userMessage(err, noticeToggleFailed)
	} else {
		b.replaceLocked(*toggled)
	}
	b.deriveLocked()
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	b.refreshStats(ctx)
	return toggled, nil
}

// Delete はタスクをローカルから先に取り除いてからサーバーへ送る。
// 失敗した場合は元の位置に戻す。
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	i := b.indexLocked(id)
	var removed model.Task
	if i >= 0 {
		removed = b.tasks[i]
		b.tasks = slices.Delete(b.tasks, i, i+1)
		b.deriveLocked()
	}
	b.mu.Unlock()

	err := b.api.DeleteTask(ctx, id)
	if err != nil {
		b.mu.Lock()
		if i >= 0 && b.indexLocked(id) < 0 {
			b.tasks = slices.Insert(b.tasks, min(i, len(b.tasks)), removed)
		}
		b.notice = userMessage(err, noticeDeleteFailed)
		b.deriveLocked()
		b.mu.Unlock()
		return err
	}

	b.refreshStats(ctx)
	return nil
}

// SetQuery は検索文字列を変更する。
func (b *Board) SetQuery(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = query
	b.deriveLocked()
}

// SetFilter は状態フィルタを変更する。
func (b *Board) SetFilter(filter view.StatusFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = filter
	b.deriveLocked()
}

// Visible は検索・フィルタ・並び替えを適用した一覧のコピーを返す。
func (b *Board) Visible() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.visible)
}

// Tasks はサーバーから取得した順の一覧のコピーを返す。
func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tasks)
}

// Overdue は期日を過ぎた未完了タスクを返す。
func (b *Board) Overdue() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var out []model.Task
	for i := range b.tasks {
		if b.tasks[i].IsOverdue(now) {
			out = append(out, b.tasks[i])
		}
	}
	return out
}

// Stats は表示用の統計を返す。
// サーバーの統計がない場合、またはローカルにタスクがあるのにtotalが0の場合はローカルで集計する。
func (b *Board) Stats() model.TaskStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.serverStats == nil || (b.serverStats.Total == 0 && len(b.tasks) > 0) {
		return stats.Compute(b.tasks)
	}
	return *b.serverStats
}

// Notice は直近の失敗の通知文言を返す。通知がなければ空文字列。
func (b *Board) Notice() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

// DismissNotice は通知を消す。
func (b *Board) DismissNotice() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = ""
}

// refreshStats はサーバーの統計を取り直す。失敗時は保持している値を捨てる。
func (b *Board) refreshStats(ctx context.Context) {
	s, err := b.api.Stats(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.serverStats = nil
		return
	}
	b.serverStats = s
}

func (b *Board) fail(err error, fallback string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = userMessage(err, fallback)
}

func (b *Board) deriveLocked() {
	b.visible = view.Derive(b.tasks, b.query, b.filter)
}

func (b *Board) indexLocked(id string) int {
	return slices.IndexFunc(b.tasks, func(t model.Task) bool { return t.ID == id })
}

func (b *Board) replaceLocked(task model.Task) {
	if i := b.indexLocked(task.ID); i >= 0 {
		b.tasks[i] = task
	}
}

var _ TaskAPI = (*Client)(nil)
