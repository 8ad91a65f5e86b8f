// Package tasklist owns the to-do list state: it applies user actions,
// persists the list after each change and projects state into a View.
package tasklist

import (
	"log/slog"
	"strings"

	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/notify"
)

// Store loads and saves the canonical task list
type Store interface {
	Load() []model.Task
	Save(tasks []model.Task) error
}

// Renderer receives a fresh View after every operation that changes what
// is shown
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

// Controller applies user intents to the task list. It is not safe for
// concurrent use; callers serialize operations the way an event loop does.
type Controller struct {
	state    State
	store    Store
	clock    Clock
	notifier notify.Notifier
	renderer Renderer
	logger   *slog.Logger

	lastID int64
}

// Option configures a Controller
type Option func(*Controller)

func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithNotifier(n notify.Notifier) Option {
	return func(ctl *Controller) { ctl.notifier = n }
}

func WithRenderer(r Renderer) Option {
	return func(ctl *Controller) { ctl.renderer = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// WithFilter sets the initial filter
func WithFilter(f model.Filter) Option {
	return func(ctl *Controller) { ctl.state.Filter = f }
}

// New builds a controller and loads the task list from store
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		state:    State{Filter: model.FilterAll},
		store:    store,
		clock:    RealClock{},
		notifier: notify.Nop{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state.Tasks = store.Load()
	for i := range c.state.Tasks {
		c.state.Tasks[i].Editing = false
		if c.state.Tasks[i].ID > c.lastID {
			c.lastID = c.state.Tasks[i].ID
		}
	}
	return c
}

// SetRenderer replaces the renderer. A nil renderer disables push updates.
func (c *Controller) SetRenderer(r Renderer) {
	c.renderer = r
}

// Add trims raw and inserts it as a new task at the front of the list
func (c *Controller) Add(raw string) (model.Task, error) {
	text := strings.TrimSpace(raw)
	if err := validateText("text", text, MsgEmptyAdd); err != nil {
		c.notice(err)
		return model.Task{}, err
	}

	now := c.clock.Now().UnixMilli()
	task := model.Task{
		ID:        c.nextID(now),
		Text:      text,
		CreatedAt: now,
	}
	c.state.Tasks = append([]model.Task{task}, c.state.Tasks...)

	c.logger.Debug("task added", slog.Int64("id", task.ID))
	c.persist()
	c.render()
	return task, nil
}

// Toggle flips the completed flag of the task with id
func (c *Controller) Toggle(id int64) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.state.Tasks[i].Completed = !c.state.Tasks[i].Completed

	c.persist()
	c.render()
}

// Delete removes the task with id
func (c *Controller) Delete(id int64) {
	kept := c.state.Tasks[:0]
	for _, t := range c.state.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.state.Tasks = kept

	c.persist()
	c.render()
}

// BeginEdit puts the task with id into editing mode and takes every other
// task out of it. An unknown id leaves no task editing.
func (c *Controller) BeginEdit(id int64) {
	for i := range c.state.Tasks {
		c.state.Tasks[i].Editing = c.state.Tasks[i].ID == id
	}
	c.render()
}

// CommitEdit replaces the text of the task being edited with the trimmed
// value of its edit field. Tasks that are not in editing mode have no edit
// field, so committing them does nothing.
func (c *Controller) CommitEdit(id int64, value string) error {
	i := c.index(id)
	if i < 0 || !c.state.Tasks[i].Editing {
		return nil
	}

	text := strings.TrimSpace(value)
	if err := validateText("text", text, MsgEmptyEdit); err != nil {
		c.notice(err)
		return err
	}

	c.state.Tasks[i].Text = text
	c.state.Tasks[i].Editing = false

	c.persist()
	c.render()
	return nil
}

// CancelEdit leaves editing mode without changing the text
func (c *Controller) CancelEdit(id int64) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.state.Tasks[i].Editing = false
	c.render()
}

// ClearCompleted removes every completed task and returns how many went
func (c *Controller) ClearCompleted() int {
	before := len(c.state.Tasks)
	kept := c.state.Tasks[:0]
	for _, t := range c.state.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	c.state.Tasks = kept
	removed := before - len(kept)

	c.persist()
	c.render()

	if removed > 0 {
		c.logger.Debug("cleared completed tasks", slog.Int("removed", removed))
	}
	return removed
}

// SetFilter replaces the active filter
func (c *Controller) SetFilter(f model.Filter) {
	c.state.Filter = f
	c.render()
}

// SetSearch replaces the search term
func (c *Controller) SetSearch(term string) {
	c.state.Search = term
	c.render()
}

// VisibleTasks returns the tasks that pass the current filter and search
func (c *Controller) VisibleTasks() []model.Task {
	return c.state.Visible()
}

// Render projects the current state into a View
func (c *Controller) Render() View {
	return Project(c.state)
}

// Tasks returns a copy of the full task list
func (c *Controller) Tasks() []model.Task {
	tasks := make([]model.Task, len(c.state.Tasks))
	copy(tasks, c.state.Tasks)
	return tasks
}

// Task returns the task with id
func (c *Controller) Task(id int64) (model.Task, bool) {
	i := c.index(id)
	if i < 0 {
		return model.Task{}, false
	}
	return c.state.Tasks[i], true
}

// Filter returns the active filter
func (c *Controller) Filter() model.Filter {
	return c.state.Filter
}

// Search returns the active search term
func (c *Controller) Search() string {
	return c.state.Search
}

func (c *Controller) index(id int64) int {
	for i := range c.state.Tasks {
		if c.state.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID returns now unless an id at or after now was already handed out
func (c *Controller) nextID(now int64) int64 {
	id := now
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

func (c *Controller) persist() {
	if err := c.store.Save(c.state.Tasks); err != nil {
		serr := &StorageError{Op: "save", Err: err}
		c.logger.Warn("tasklist: persist failed, continuing in memory",
			slog.String("error", serr.Error()))
	}
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.Render())
	}
}

func (c *Controller) notice(err error) {
	if nerr := c.notifier.Notify("ticklist", err.Error()); nerr != nil {
		c.logger.Debug("notify failed", slog.String("error", nerr.Error()))
	}
}
