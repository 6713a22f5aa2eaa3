package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority はタスクの優先度を表す。ParsePriority経由でのみ生成する。
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities は全優先度を緊急度の高い順に返す。
func Priorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority は文字列を優先度に変換する。
// 空文字列はデフォルトのmediumとして扱う。
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	default:
		return "", NewValidationError(fmt.Sprintf("無効な優先度です: %s", s))
	}
}

// Rank はソート用の順位を返す。urgentが0、lowが3。
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Category はタスクのカテゴリを表す。ParseCategory経由でのみ生成する。
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryFinance  Category = "finance"
	CategoryShopping Category = "shopping"
	CategoryHome     Category = "home"
	CategoryTravel   Category = "travel"
	CategoryHobby    Category = "hobby"
)

var categories = map[Category]struct{}{
	CategoryGeneral: {}, CategoryWork: {}, CategoryStudy: {}, CategoryPersonal: {},
	CategoryHealth: {}, CategoryFinance: {}, CategoryShopping: {}, CategoryHome: {},
	CategoryTravel: {}, CategoryHobby: {},
}

// ParseCategory は文字列をカテゴリに変換する。
// 空文字列はデフォルトのgeneralとして扱う。
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if c == "" {
		return CategoryGeneral, nil
	}
	if _, ok := categories[c]; !ok {
		return "", NewValidationError(fmt.Sprintf("無効なカテゴリです: %s", s))
	}
	return c, nil
}

const dateLayout = "2006-01-02"

// Date は時刻を持たない暦日を表す。JSONでは "YYYY-MM-DD" 形式になる。
type Date struct {
	t time.Time
}

// NewDate は年月日からDateを生成する。
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf はtの暦日部分をDateとして返す。
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate は "YYYY-MM-DD" 形式の文字列をDateに変換する。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, NewValidationError(fmt.Sprintf("無効な期日です（YYYY-MM-DD形式で指定してください）: %s", s))
	}
	return Date{t: t}, nil
}

// Time はUTC 0時のtime.Timeを返す。
func (d Date) Time() time.Time { return d.t }

// Before はdがoより前の日付かどうかを返す。
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// String は "YYYY-MM-DD" 形式の文字列を返す。
func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalJSON はjson.Marshalerを実装する。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task はユーザーが所有するタスクを表す。
// CompletedAtはCompletedがtrueのときのみ値を持つ。
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *Date      `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsOverdue は未完了かつ期日がnowの暦日より前のタスクかどうかを返す。
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// SetCompleted は完了状態を変更し、状態が遷移した場合のみCompletedAtを更新する。
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if t.Completed == completed {
		return
	}
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

// TaskInput はタスク作成時の入力値。
type TaskInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	DueDate     *string  `json:"dueDate"`
}

// TaskPatch はタスク部分更新の入力値。nilのフィールドは変更しない。
// DescriptionとDueDateは空文字列で値をクリアする。
// completedAtはサーバー側で導出するため受け付けない。
type TaskPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	DueDate     *string   `json:"dueDate"`
	Completed   *bool     `json:"completed"`
}

// TaskStats はタスク一覧から導出される集計値。
type TaskStats struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	Completed  int              `json:"completed"`
	Tags       int              `json:"tags"`
	Priorities map[Priority]int `json:"priorities"`
}

// NormalizeTags は各タグをトリムし、空のタグを除いた新しいスライスを返す。
// 戻り値はnilにならない。
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseTagList はカンマ区切りのタグ入力をタグのスライスに変換する。
func ParseTagList(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
