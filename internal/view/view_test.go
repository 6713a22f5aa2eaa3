package view

import (
	"reflect"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

func strPtr(s string) *string { return &s }

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Buy milk", Priority: model.PriorityLow, Tags: []string{"shopping"}},
		{ID: "2", Title: "Pay rent", Priority: model.PriorityUrgent, Tags: []string{"Finance"}},
		{ID: "3", Title: "Write report", Description: strPtr("quarterly RENT analysis"), Priority: model.PriorityHigh},
		{ID: "4", Title: "Call plumber", Priority: model.PriorityUrgent, Completed: true},
		{ID: "5", Title: "Read book", Priority: model.PriorityMedium},
		{ID: "6", Title: "Book flights", Priority: model.PriorityUrgent},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestDerive_SortsByPriorityStable(t *testing.T) {
	got := ids(Derive(sampleTasks(), "", FilterAll))
	// 同じ優先度の中では元の順序を保つ
	want := []string{"2", "4", "6", "3", "5", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Derive() = %v, want %v", got, want)
	}
}

func TestDerive_QueryMatchesTitleDescriptionAndTags(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"rent", []string{"2", "3"}},
		{"FINANCE", []string{"2"}},
		{"book", []string{"6", "5"}},
		{"nothing-matches", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ids(Derive(sampleTasks(), tt.query, FilterAll))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Derive(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDerive_StatusFilters(t *testing.T) {
	tests := []struct {
		filter StatusFilter
		want   []string
	}{
		{FilterActive, []string{"2", "6", "3", "5", "1"}},
		{FilterCompleted, []string{"4"}},
		{FilterUrgentActive, []string{"2", "6"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := ids(Derive(sampleTasks(), "", tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Derive(%q) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestDerive_UrgentActiveIsSubsetOfActive(t *testing.T) {
	tasks := sampleTasks()
	active := map[string]bool{}
	for _, id := range ids(Derive(tasks, "", FilterActive)) {
		active[id] = true
	}
	for _, id := range ids(Derive(tasks, "", FilterUrgentActive)) {
		if !active[id] {
			t.Errorf("urgent-active task %s is not in the active view", id)
		}
	}
}

func TestDerive_IdempotentAndPure(t *testing.T) {
	tasks := sampleTasks()
	original := sampleTasks()

	first := Derive(tasks, "o", FilterActive)
	second := Derive(tasks, "o", FilterActive)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Derive is not deterministic: %v vs %v", ids(first), ids(second))
	}

	again := Derive(first, "o", FilterActive)
	if !reflect.DeepEqual(first, again) {
		t.Errorf("re-applying Derive changed the view: %v vs %v", ids(first), ids(again))
	}

	if !reflect.DeepEqual(tasks, original) {
		t.Error("Derive must not mutate its input")
	}
}

func TestParseStatusFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    StatusFilter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{"completed", FilterCompleted, false},
		{"urgent", FilterUrgentActive, false},
		{"urgent-active", FilterUrgentActive, false},
		{"overdue", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatusFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatusFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatusFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
