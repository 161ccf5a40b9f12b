package models

import (
	"fmt"
	"strings"
)

// Task is a single to-do item. ID is assigned at creation and never changes.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Filter selects which tasks appear in the filtered view.
type Filter string

const (
	FilterAll       Filter = "All"
	FilterActive    Filter = "Active"
	FilterCompleted Filter = "Completed"
)

// Filters returns every valid filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Matches reports whether task belongs in the view selected by f.
func (f Filter) Matches(task Task) bool {
	switch f {
	case FilterAll:
		return true
	case FilterActive:
		return !task.Completed
	case FilterCompleted:
		return task.Completed
	}
	return false
}

// Next returns the filter after f, wrapping around to All.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// ParseFilter converts a case-insensitive filter name into a Filter.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters() {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}
