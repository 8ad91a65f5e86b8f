package model

import (
	"fmt"
	"strings"
	"time"
)

// Filter selects which tasks a view shows
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters returns every filter in display order
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter converts user input into a Filter
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAll, "":
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted, "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Next returns the filter after f, wrapping around
func (f Filter) Next() Filter {
	all := Filters()
	for i, candidate := range all {
		if candidate == f {
			return all[(i+1)%len(all)]
		}
	}
	return FilterAll
}

// Label returns the display name for a filter
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Task represents a todo item
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds

	// Editing is session-only UI state and is never stored
	Editing bool `json:"-"`
}

// Created returns the creation time
func (t *Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Matches reports whether the task passes the filter and search term.
// term must already be lower-cased; an empty term matches everything.
func (t *Task) Matches(f Filter, term string) bool {
	switch f {
	case FilterActive:
		if t.Completed {
			return false
		}
	case FilterCompleted:
		if !t.Completed {
			return false
		}
	}

	if term != "" && !strings.Contains(strings.ToLower(t.Text), term) {
		return false
	}
	return true
}
