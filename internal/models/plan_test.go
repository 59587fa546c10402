package models

import "testing"

func TestRecomputeCompletion(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  bool
	}{
		{"no tasks", nil, true},
		{"all done", []Task{{IsCompleted: true}, {IsCompleted: true}}, true},
		{"one open", []Task{{IsCompleted: true}, {IsCompleted: false}}, false},
		{"all open", []Task{{}, {}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Milestone{Tasks: tc.tasks, IsCompleted: !tc.want}
			m.RecomputeCompletion()
			if m.IsCompleted != tc.want {
				t.Errorf("IsCompleted = %v, want %v", m.IsCompleted, tc.want)
			}
		})
	}
}
