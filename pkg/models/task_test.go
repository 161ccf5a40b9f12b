package models

import "testing"

func TestFilter_Matches(t *testing.T) {
	active := Task{ID: "a", Title: "Buy milk"}
	done := Task{ID: "b", Title: "Walk dog", Completed: true}

	tests := []struct {
		filter     Filter
		wantActive bool
		wantDone   bool
	}{
		{FilterAll, true, true},
		{FilterActive, true, false},
		{FilterCompleted, false, true},
		{Filter("bogus"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			if got := tt.filter.Matches(active); got != tt.wantActive {
				t.Errorf("Matches(active) = %v, want %v", got, tt.wantActive)
			}
			if got := tt.filter.Matches(done); got != tt.wantDone {
				t.Errorf("Matches(completed) = %v, want %v", got, tt.wantDone)
			}
		})
	}
}

func TestFilter_NextCycles(t *testing.T) {
	f := FilterAll
	want := []Filter{FilterActive, FilterCompleted, FilterAll}
	for i, w := range want {
		f = f.Next()
		if f != w {
			t.Fatalf("step %d: Next() = %q, want %q", i+1, f, w)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for _, in := range []string{"all", "ALL", " All "} {
		got, err := ParseFilter(in)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", in, err)
		}
		if got != FilterAll {
			t.Errorf("ParseFilter(%q) = %q, want All", in, got)
		}
	}
	if got, _ := ParseFilter("completed"); got != FilterCompleted {
		t.Errorf("ParseFilter(completed) = %q", got)
	}
	if _, err := ParseFilter("done"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestSnapshot_Visibility(t *testing.T) {
	var empty Snapshot
	if empty.FooterVisible() || empty.FilterMenuVisible() || empty.ClearCompletedVisible() {
		t.Error("empty snapshot should hide footer, filter menu and clear action")
	}

	s := Snapshot{TotalCount: 2, ActiveCount: 2}
	if !s.FooterVisible() || !s.FilterMenuVisible() {
		t.Error("non-empty snapshot should show footer and filter menu")
	}
	if s.ClearCompletedVisible() {
		t.Error("clear action should be hidden with no completed tasks")
	}

	s.ActiveCount, s.CompletedCount = 1, 1
	if !s.ClearCompletedVisible() {
		t.Error("clear action should be visible with a completed task")
	}
}
