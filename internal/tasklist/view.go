package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/dori/ticklist/internal/model"
)

// Item is one visible row. Editing rows are drawn with an input field.
type Item struct {
	ID        int64
	Text      string
	Completed bool
	Editing   bool
	CreatedAt time.Time
}

// View is everything a UI needs to draw the list. Remaining and Total
// count the whole list, not only the visible items.
type View struct {
	Items     []Item
	Empty     bool
	Remaining int
	Total     int
	Filter    model.Filter
	Search    string

	// EditingID is the task whose edit field should hold focus, or 0
	EditingID int64
}

// RemainingLabel returns e.g. "1 item left" or "3 items left"
func (v View) RemainingLabel() string {
	if v.Remaining == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", v.Remaining)
}

// TotalLabel returns e.g. "3 total"
func (v View) TotalLabel() string {
	return fmt.Sprintf("%d total", v.Total)
}

// State is the controller's working set
type State struct {
	Tasks  []model.Task
	Filter model.Filter
	Search string
}

// Visible returns the tasks that pass the filter and search, in list order
func (s State) Visible() []model.Task {
	term := strings.ToLower(s.Search)
	visible := []model.Task{}
	for _, t := range s.Tasks {
		if t.Matches(s.Filter, term) {
			visible = append(visible, t)
		}
	}
	return visible
}

// Project maps state to a View without touching it
func Project(s State) View {
	visible := s.Visible()

	v := View{
		Items:  make([]Item, 0, len(visible)),
		Empty:  len(visible) == 0,
		Total:  len(s.Tasks),
		Filter: s.Filter,
		Search: s.Search,
	}

	for _, t := range visible {
		v.Items = append(v.Items, Item{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Editing:   t.Editing,
			CreatedAt: t.Created(),
		})
	}

	for _, t := range s.Tasks {
		if !t.Completed {
			v.Remaining++
		}
		if t.Editing {
			v.EditingID = t.ID
		}
	}
	return v
}
