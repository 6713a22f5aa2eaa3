// Package stats はタスク一覧から集計値を導出する。
// サーバーの集計APIとクライアントのフォールバック集計は同じComputeを使う。
package stats

import "github.com/hitoshi/taskman/internal/model"

// Compute はタスク一覧から集計値を計算する。
//   - Completed は完了済みタスク数、Active は Total - Completed
//   - Tags は重複を除いたタグ文字列の数（大文字小文字を区別する）
//   - Priorities は未完了タスクの優先度別件数（4つの優先度すべてのキーを持つ）
func Compute(tasks []model.Task) model.TaskStats {
	s := model.TaskStats{
		Total:      len(tasks),
		Priorities: make(map[model.Priority]int, 4),
	}
	for _, p := range model.Priorities() {
		s.Priorities[p] = 0
	}

	tags := make(map[string]struct{})
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		} else {
			s.Priorities[t.Priority]++
		}
		for _, tag := range t.Tags {
			tags[tag] = struct{}{}
		}
	}

	s.Active = s.Total - s.Completed
	s.Tags = len(tags)
	return s
}
