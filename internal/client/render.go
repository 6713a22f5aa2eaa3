package client

import (
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/security"
)

var renderer = security.NewTextRenderer()

// TaskHTML はタスクのタイトルと説明をHTMLに埋め込める形にしたもの。
type TaskHTML struct {
	ID          string
	Title       string
	Description string
}

// RenderTask はタスクの表示用HTML断片を返す。タスク自体は変更しない。
func RenderTask(task model.Task) TaskHTML {
	out := TaskHTML{
		ID:    task.ID,
		Title: renderer.HTML(task.Title),
	}
	if task.Description != nil {
		out.Description = renderer.HTML(*task.Description)
	}
	return out
}

// VisibleHTML は表示中の一覧を表示用HTML断片に変換して返す。
func (b *Board) VisibleHTML() []TaskHTML {
	visible := b.Visible()
	out := make([]TaskHTML, 0, len(visible))
	for _, task := range visible {
		out = append(out, RenderTask(task))
	}
	return out
}
