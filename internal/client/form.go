package client

import (
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// TaskForm は入力フォームの値。タグはカンマ区切りの1つの文字列で受け取る。
type TaskForm struct {
	Title       string
	Description string
	Priority    string
	Category    string
	Tags        string
	DueDate     string
}

// FormFromTask は編集フォームの初期値をタスクから作る。
func FormFromTask(task *model.Task) TaskForm {
	form := TaskForm{
		Title:    task.Title,
		Priority: string(task.Priority),
		Category: string(task.Category),
		Tags:     strings.Join(task.Tags, ", "),
	}
	if task.Description != nil {
		form.Description = *task.Description
	}
	if task.DueDate != nil {
		form.DueDate = task.DueDate.String()
	}
	return form
}

// Input は作成リクエストに変換する。空の説明と期日は送らない。
func (f TaskForm) Input() model.TaskInput {
	in := model.TaskInput{
		Title:    f.Title,
		Priority: f.Priority,
		Category: f.Category,
		Tags:     model.ParseTagList(f.Tags),
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		in.Description = &d
	}
	if d := strings.TrimSpace(f.DueDate); d != "" {
		in.DueDate = &d
	}
	return in
}

// Patch は編集フォームの全項目を更新リクエストに変換する。
// 空の説明と期日は空文字列として送り、サーバー側で値をクリアさせる。
func (f TaskForm) Patch() model.TaskPatch {
	title := f.Title
	desc := strings.TrimSpace(f.Description)
	priority := f.Priority
	category := f.Category
	tags := model.ParseTagList(f.Tags)
	due := strings.TrimSpace(f.DueDate)
	return model.TaskPatch{
		Title:       &title,
		Description: &desc,
		Priority:    &priority,
		Category:    &category,
		Tags:        &tags,
		DueDate:     &due,
	}
}
