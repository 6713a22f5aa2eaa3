// Package view はタスク一覧から表示用の部分集合を導出する。
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// StatusFilter は完了状態による絞り込み条件を表す。
type StatusFilter string

const (
	FilterAll          StatusFilter = "all"
	FilterActive       StatusFilter = "active"
	FilterCompleted    StatusFilter = "completed"
	FilterUrgentActive StatusFilter = "urgent-active"
)

// ParseStatusFilter は文字列を絞り込み条件に変換する。
// 空文字列はall、"urgent"はurgent-activeの別名として扱う。
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterActive):
		return FilterActive, nil
	case string(FilterCompleted):
		return FilterCompleted, nil
	case string(FilterUrgentActive), "urgent":
		return FilterUrgentActive, nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("無効なフィルタです: %s", s))
	}
}

// Match はタスクが絞り込み条件を満たすかを返す。
func (f StatusFilter) Match(t *model.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterUrgentActive:
		return t.Priority == model.PriorityUrgent && !t.Completed
	default:
		return true
	}
}

// Derive は検索語と絞り込み条件を適用し、優先度順に並べた新しいスライスを返す。
//
//  1. queryが空でなければ、タイトル・説明・タグのいずれかに大文字小文字を区別せず部分一致するものを残す
//  2. filterで完了状態を絞り込む
//  3. 優先度（urgent, high, medium, low）で安定ソートする
//
// 入力は変更しない。同じ入力には常に同じ結果を返す。
func Derive(tasks []model.Task, query string, filter StatusFilter) []model.Task {
	q := strings.ToLower(query)

	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if q != "" && !matchesQuery(t, q) {
			continue
		}
		if !filter.Match(t) {
			continue
		}
		out = append(out, *t)
	}

	slices.SortStableFunc(out, func(a, b model.Task) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return out
}

// matchesQuery はqが小文字化済みであることを前提とする。
func matchesQuery(t *model.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
