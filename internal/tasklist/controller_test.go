package tasklist

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/storage"
)

var epoch = time.UnixMilli(1_700_000_000_000)

type recordingNotifier struct {
	notices []string
}

func (r *recordingNotifier) Notify(_, body string) error {
	r.notices = append(r.notices, body)
	return nil
}

type harness struct {
	ctl      *Controller
	kv       *storage.MemoryKV
	store    *storage.TaskStore
	clock    *FakeClock
	notifier *recordingNotifier
	renders  []View
}

func newHarness(t *testing.T, seed string) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &harness{
		kv:       storage.NewMemoryKV(),
		clock:    NewFakeClock(epoch),
		notifier: &recordingNotifier{},
	}
	if seed != "" {
		require.NoError(t, h.kv.Set(storage.DefaultKey, seed))
	}
	h.store = storage.NewTaskStore(h.kv, "", logger)
	h.ctl = New(h.store,
		WithClock(h.clock),
		WithNotifier(h.notifier),
		WithLogger(logger),
		WithRenderer(RendererFunc(func(v View) { h.renders = append(h.renders, v) })),
	)
	return h
}

func (h *harness) stored(t *testing.T) []model.Task {
	t.Helper()
	raw, ok, err := h.kv.Get(storage.DefaultKey)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	return storage.Decode([]byte(raw), epoch)
}

func editingCount(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Editing {
			n++
		}
	}
	return n
}

func TestAddInsertsAtFront(t *testing.T) {
	h := newHarness(t, "")

	first, err := h.ctl.Add("  first  ")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	second, err := h.ctl.Add("second")
	require.NoError(t, err)

	assert.Equal(t, "first", first.Text)
	assert.False(t, first.Completed)
	assert.False(t, first.Editing)
	assert.Equal(t, epoch.UnixMilli(), first.CreatedAt)

	tasks := h.ctl.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)

	assert.Equal(t, tasks, h.stored(t))
	assert.Len(t, h.renders, 2)
}

func TestAddRejectsEmptyText(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"existing"}]`)

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := h.ctl.Add(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, MsgEmptyAdd, verr.Message)
	}

	assert.Len(t, h.ctl.Tasks(), 1)
	assert.Empty(t, h.renders)
	assert.Equal(t, []string{MsgEmptyAdd, MsgEmptyAdd, MsgEmptyAdd}, h.notifier.notices)
	_, ok, _ := h.kv.Get(storage.DefaultKey)
	assert.True(t, ok, "seed must be left untouched")
}

func TestIDsUniqueWithinSameMillisecond(t *testing.T) {
	h := newHarness(t, "")

	seen := map[int64]bool{}
	var last int64
	for i := 0; i < 50; i++ {
		task, err := h.ctl.Add("same tick")
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "id %d reused", task.ID)
		assert.Greater(t, task.ID, last)
		assert.Equal(t, epoch.UnixMilli(), task.CreatedAt)
		seen[task.ID] = true
		last = task.ID
	}
}

func TestIDsNeverReuseLoadedIDs(t *testing.T) {
	future := epoch.UnixMilli() + 10_000
	h := newHarness(t, `[{"id":`+strconv.FormatInt(future, 10)+`,"text":"from the future"}]`)

	task, err := h.ctl.Add("now")
	require.NoError(t, err)
	assert.Equal(t, future+1, task.ID)
}

func TestToggleCompleted(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"a"}]`)

	h.ctl.Toggle(1)
	task, ok := h.ctl.Task(1)
	require.True(t, ok)
	assert.True(t, task.Completed)
	assert.True(t, h.stored(t)[0].Completed)

	h.ctl.Toggle(1)
	task, _ = h.ctl.Task(1)
	assert.False(t, task.Completed)
	assert.Len(t, h.renders, 2)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"a"}]`)
	before := h.ctl.Tasks()

	h.ctl.Toggle(99)
	h.ctl.CancelEdit(99)
	require.NoError(t, h.ctl.CommitEdit(99, ""))
	h.ctl.Delete(99)

	assert.Equal(t, before, h.ctl.Tasks())
	assert.Empty(t, h.notifier.notices)
}

func TestDelete(t *testing.T) {
	h := newHarness(t, `[{"id":3,"text":"c"},{"id":2,"text":"b"},{"id":1,"text":"a"}]`)

	h.ctl.Delete(2)

	tasks := h.ctl.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(3), tasks[0].ID)
	assert.Equal(t, int64(1), tasks[1].ID)
	assert.Len(t, h.stored(t), 2)
}

func TestBeginEditSingleEditor(t *testing.T) {
	h := newHarness(t, `[{"id":3,"text":"c"},{"id":2,"text":"b"},{"id":1,"text":"a"}]`)

	h.ctl.BeginEdit(3)
	h.ctl.BeginEdit(1)

	tasks := h.ctl.Tasks()
	assert.Equal(t, 1, editingCount(tasks))
	task, _ := h.ctl.Task(1)
	assert.True(t, task.Editing)
	assert.Equal(t, int64(1), h.ctl.Render().EditingID)

	h.ctl.BeginEdit(42)
	assert.Equal(t, 0, editingCount(h.ctl.Tasks()))
	assert.Zero(t, h.ctl.Render().EditingID)
}

func TestBeginEditWithDuplicateStoredIDs(t *testing.T) {
	h := newHarness(t, `[{"id":5,"text":"one"},{"id":5,"text":"two"},{"id":6,"text":"three"}]`)
	require.Len(t, h.ctl.Tasks(), 2)

	h.ctl.BeginEdit(5)
	assert.Equal(t, 1, editingCount(h.ctl.Tasks()))
}

func TestBeginEditIsNotPersisted(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"a"}]`)
	raw, _, _ := h.kv.Get(storage.DefaultKey)

	h.ctl.BeginEdit(1)
	h.ctl.CancelEdit(1)

	after, _, _ := h.kv.Get(storage.DefaultKey)
	assert.Equal(t, raw, after)
	assert.Len(t, h.renders, 2)
}

func TestCommitEdit(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"old","createdAt":5}]`)

	h.ctl.BeginEdit(1)
	require.NoError(t, h.ctl.CommitEdit(1, "  new text "))

	task, _ := h.ctl.Task(1)
	assert.Equal(t, "new text", task.Text)
	assert.False(t, task.Editing)
	assert.Equal(t, int64(5), task.CreatedAt)
	assert.Equal(t, "new text", h.stored(t)[0].Text)
}

func TestCommitEditRejectsEmpty(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"old"}]`)
	h.ctl.BeginEdit(1)
	before := h.ctl.Tasks()

	err := h.ctl.CommitEdit(1, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgEmptyEdit, err.Error())

	assert.Equal(t, before, h.ctl.Tasks())
	task, _ := h.ctl.Task(1)
	assert.True(t, task.Editing)
	assert.Equal(t, []string{MsgEmptyEdit}, h.notifier.notices)
}

func TestCommitEditRequiresEditingMode(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"old"}]`)

	require.NoError(t, h.ctl.CommitEdit(1, "new"))
	task, _ := h.ctl.Task(1)
	assert.Equal(t, "old", task.Text)
}

func TestCancelEditKeepsText(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"old"}]`)

	h.ctl.BeginEdit(1)
	h.ctl.CancelEdit(1)

	task, _ := h.ctl.Task(1)
	assert.Equal(t, "old", task.Text)
	assert.False(t, task.Editing)
}

func TestClearCompletedAlwaysPersists(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, 0, h.ctl.ClearCompleted())
	_, ok, _ := h.kv.Get(storage.DefaultKey)
	assert.True(t, ok, "clear completed writes even when nothing is removed")
	assert.Len(t, h.renders, 1)
}

func TestFilterAndSearchAreViewOnly(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"a"}]`)
	raw, _, _ := h.kv.Get(storage.DefaultKey)

	h.ctl.SetFilter(model.FilterCompleted)
	h.ctl.SetSearch("zzz")

	after, _, _ := h.kv.Get(storage.DefaultKey)
	assert.Equal(t, raw, after)
	assert.Equal(t, model.FilterCompleted, h.ctl.Filter())
	assert.Equal(t, "zzz", h.ctl.Search())
	assert.Len(t, h.renders, 2)
	assert.True(t, h.renders[1].Empty)
}

func TestVisibleTasksCompletedMilkSearch(t *testing.T) {
	h := newHarness(t, `[
		{"id":1,"text":"Buy milk","completed":true},
		{"id":2,"text":"Buy milk","completed":false},
		{"id":3,"text":"Walk dog","completed":true}
	]`)

	h.ctl.SetFilter(model.FilterCompleted)
	h.ctl.SetSearch("milk")

	visible := h.ctl.VisibleTasks()
	require.Len(t, visible, 1)
	assert.Equal(t, int64(1), visible[0].ID)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, `[{"id":1,"text":"Buy MILK"},{"id":2,"text":"Walk dog"}]`)

	h.ctl.SetSearch("mIlK")
	visible := h.ctl.VisibleTasks()
	require.Len(t, visible, 1)
	assert.Equal(t, int64(1), visible[0].ID)

	h.ctl.SetSearch("")
	assert.Len(t, h.ctl.VisibleTasks(), 2)
}

func TestStorageFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, "")
	h.kv.SetErr = errors.New("quota exceeded")

	task, err := h.ctl.Add("still works")
	require.NoError(t, err)
	h.ctl.Toggle(task.ID)

	tasks := h.ctl.Tasks()
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, 1, h.ctl.Render().Total)
}

func TestLoadClearsEditingAndReloads(t *testing.T) {
	h := newHarness(t, "")
	a, _ := h.ctl.Add("a")
	h.clock.Advance(time.Millisecond)
	_, _ = h.ctl.Add("b")
	h.ctl.Toggle(a.ID)
	h.ctl.BeginEdit(a.ID)

	reloaded := New(h.store, WithClock(h.clock))
	want := h.ctl.Tasks()
	for i := range want {
		want[i].Editing = false
	}
	assert.Equal(t, want, reloaded.Tasks())
	assert.Equal(t, 0, editingCount(reloaded.Tasks()))
}

func TestScenarioAddToggleClear(t *testing.T) {
	h := newHarness(t, "")

	task, err := h.ctl.Add("Write report")
	require.NoError(t, err)
	v := h.ctl.Render()
	assert.Len(t, h.ctl.Tasks(), 1)
	assert.Equal(t, 1, v.Remaining)
	assert.Equal(t, 1, v.Total)

	h.ctl.Toggle(task.ID)
	assert.Equal(t, 0, h.ctl.Render().Remaining)

	assert.Equal(t, 1, h.ctl.ClearCompleted())
	assert.Empty(t, h.ctl.Tasks())
	assert.True(t, h.ctl.Render().Empty)
	assert.Empty(t, h.stored(t))
}

// TestRemainingCountsWholeList drives random add/delete/toggle sequences
// under random filters and checks the remaining count against the list.
func TestRemainingCountsWholeList(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := newHarness(t, "")
	words := []string{"milk", "dog", "report", "Milk run", "laundry"}

	for step := 0; step < 500; step++ {
		tasks := h.ctl.Tasks()
		switch op := rng.Intn(5); {
		case op <= 1 || len(tasks) == 0:
			_, err := h.ctl.Add(words[rng.Intn(len(words))])
			require.NoError(t, err)
		case op == 2:
			h.ctl.Delete(tasks[rng.Intn(len(tasks))].ID)
		default:
			h.ctl.Toggle(tasks[rng.Intn(len(tasks))].ID)
		}
		if rng.Intn(4) == 0 {
			h.ctl.SetFilter(model.Filters()[rng.Intn(3)])
			h.ctl.SetSearch(words[rng.Intn(len(words))][:2])
		}
		h.clock.Advance(time.Duration(rng.Intn(2)) * time.Millisecond)

		want := 0
		for _, task := range h.ctl.Tasks() {
			if !task.Completed {
				want++
			}
		}
		v := h.ctl.Render()
		require.Equal(t, want, v.Remaining, "step %d", step)
		require.Equal(t, len(h.ctl.Tasks()), v.Total, "step %d", step)
	}
}
