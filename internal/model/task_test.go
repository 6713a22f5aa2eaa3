package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"", PriorityMedium, false},
		{"low", PriorityLow, false},
		{" urgent ", PriorityUrgent, false},
		{"critical", "", true},
		{"HIGH", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !IsCode(err, ErrCodeValidation) {
			t.Errorf("ParsePriority(%q) error code = %v, want VALIDATION_ERROR", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriorityRank_OrdersUrgentFirst(t *testing.T) {
	ps := Priorities()
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Rank() >= ps[i].Rank() {
			t.Errorf("%s(%d) should rank before %s(%d)", ps[i-1], ps[i-1].Rank(), ps[i], ps[i].Rank())
		}
	}
}

func TestParseCategory(t *testing.T) {
	if got, err := ParseCategory(""); err != nil || got != CategoryGeneral {
		t.Errorf("ParseCategory(\"\") = (%q, %v), want general", got, err)
	}
	if got, err := ParseCategory("travel"); err != nil || got != CategoryTravel {
		t.Errorf("ParseCategory(travel) = (%q, %v)", got, err)
	}
	if _, err := ParseCategory("groceries"); !IsCode(err, ErrCodeValidation) {
		t.Errorf("ParseCategory(groceries) error = %v, want VALIDATION_ERROR", err)
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2026, time.March, 1)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"2026-03-01"` {
		t.Errorf("Marshal = %s, want \"2026-03-01\"", b)
	}

	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal = %v, want %v", got, d)
	}

	if err := json.Unmarshal([]byte(`"03/01/2026"`), &got); !IsCode(err, ErrCodeValidation) {
		t.Errorf("不正な形式はVALIDATION_ERRORになるべき: %v", err)
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	yesterday := NewDate(2026, 2, 28)
	today := NewDate(2026, 3, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"期日が昨日の未完了", Task{DueDate: &yesterday}, true},
		{"期日が今日", Task{DueDate: &today}, false},
		{"完了済み", Task{DueDate: &yesterday, Completed: true}, false},
		{"期日なし", Task{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTask_SetCompleted(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	var task Task

	task.SetCompleted(true, t1)
	if !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(t1) {
		t.Fatalf("完了時は completedAt を設定する: %+v", task)
	}

	// 状態が変わらない場合は completedAt を更新しない
	task.SetCompleted(true, t2)
	if !task.CompletedAt.Equal(t1) {
		t.Errorf("completedAt = %v, want %v", task.CompletedAt, t1)
	}

	task.SetCompleted(false, t2)
	if task.Completed || task.CompletedAt != nil {
		t.Errorf("未完了に戻すと completedAt はnil: %+v", task)
	}
}

func TestParseTagList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"home", []string{"home"}},
		{" home , Home ,,monthly ", []string{"home", "Home", "monthly"}},
	}

	for _, tt := range tests {
		if got := ParseTagList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTagList(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestUser_Public_OmitsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Email: "a@example.com", PasswordHash: "secret-hash"}

	b, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for key, v := range m {
		if s, ok := v.(string); ok && s == "secret-hash" {
			t.Errorf("公開ユーザー情報にパスワードハッシュが含まれている (key=%s)", key)
		}
	}
}
