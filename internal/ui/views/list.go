package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/tasklist"
	"github.com/dori/ticklist/internal/ui/theme"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeSearch
)

// NoticeMsg carries a transient notice for the status line
type NoticeMsg struct {
	Text    string
	IsError bool
}

func notice(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, IsError: isError}
	}
}

// snapshot receives views pushed by the controller. It is shared by every
// copy of ListView that Bubble Tea makes.
type snapshot struct {
	view tasklist.View
}

// ListView displays tasks and forwards key presses to the controller
type ListView struct {
	ctl    *tasklist.Controller
	snap   *snapshot
	width  int
	height int

	cursor       int
	scrollOffset int // First visible item index

	mode  ListMode
	input textinput.Model // add and search
	edit  textinput.Model // inline edit field
}

// NewListView creates a list view bound to ctl
func NewListView(ctl *tasklist.Controller) ListView {
	// Unlimited; textinput truncates SetValue to CharLimit
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 0

	ed := textinput.New()
	ed.Prompt = ""
	ed.CharLimit = 0

	snap := &snapshot{view: ctl.Render()}
	ctl.SetRenderer(tasklist.RendererFunc(func(v tasklist.View) {
		snap.view = v
	}))

	return ListView{
		ctl:   ctl,
		snap:  snap,
		input: ti,
		edit:  ed,
	}
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return nil
}

// Snapshot returns the most recent view pushed by the controller
func (v ListView) Snapshot() tasklist.View {
	return v.snap.view
}

// Mode returns the current input mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Cursor returns the index of the highlighted item
func (v ListView) Cursor() int {
	return v.cursor
}

// IsInputMode returns true when the view is capturing text input
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	v.edit.Width = width - 10
	return v
}

// visibleTaskCount returns how many items fit in the viewport
func (v ListView) visibleTaskCount() int {
	// Reserve lines for the input box
	available := v.height - 4
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible clamps the cursor and adjusts scrollOffset to keep it in view
func (v *ListView) ensureCursorVisible() {
	n := len(v.snap.view.Items)
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	if v.cursor < 0 {
		v.cursor = 0
	}

	visible := v.visibleTaskCount()
	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, n-visible)
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// current returns the highlighted item
func (v ListView) current() (tasklist.Item, bool) {
	items := v.snap.view.Items
	if v.cursor < 0 || v.cursor >= len(items) {
		return tasklist.Item{}, false
	}
	return items[v.cursor], true
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (ListView, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	var cmd tea.Cmd
	switch v.mode {
	case ListModeAdd:
		v, cmd = v.handleAddMode(keyMsg)
	case ListModeEdit:
		v, cmd = v.handleEditMode(keyMsg)
	case ListModeSearch:
		v, cmd = v.handleSearchMode(keyMsg)
	default:
		v, cmd = v.handleNormalMode(keyMsg)
	}
	v.ensureCursorVisible()
	return v, cmd
}

func (v ListView) handleNormalMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.snap.view.Items)-1 {
			v.cursor++
		}
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		v.cursor = len(v.snap.view.Items) - 1

	case "a":
		v.mode = ListModeAdd
		v.input.Prompt = "+ "
		v.input.Placeholder = "What needs to be done?"
		v.input.SetValue("")
		cmd := v.input.Focus()
		return v, cmd

	case "enter", "e":
		item, ok := v.current()
		if !ok {
			return v, nil
		}
		v.ctl.BeginEdit(item.ID)
		return v.startEditing(item.ID)

	case "tab", " ", "x":
		if item, ok := v.current(); ok {
			v.ctl.Toggle(item.ID)
		}

	case "d", "delete":
		if item, ok := v.current(); ok {
			v.ctl.Delete(item.ID)
			return v, notice("Deleted task", false)
		}

	case "/":
		v.mode = ListModeSearch
		v.input.Prompt = "/ "
		v.input.Placeholder = "Search tasks..."
		v.input.SetValue(v.ctl.Search())
		v.input.CursorEnd()
		cmd := v.input.Focus()
		return v, cmd

	case "esc":
		if v.ctl.Search() != "" {
			v.ctl.SetSearch("")
			return v, notice("Search cleared", false)
		}

	case "1":
		v.ctl.SetFilter(model.FilterAll)
	case "2":
		v.ctl.SetFilter(model.FilterActive)
	case "3":
		v.ctl.SetFilter(model.FilterCompleted)
	case "f":
		v.ctl.SetFilter(v.ctl.Filter().Next())

	case "C":
		removed := v.ctl.ClearCompleted()
		if removed == 0 {
			return v, notice("No completed tasks", false)
		}
		return v, notice(fmt.Sprintf("Cleared %d completed %s", removed, plural(removed, "task")), false)
	}

	return v, nil
}

// startEditing focuses the inline edit field with the caret after the text
func (v ListView) startEditing(id int64) (ListView, tea.Cmd) {
	task, ok := v.ctl.Task(id)
	if !ok || !task.Editing {
		return v, nil
	}
	v.mode = ListModeEdit
	v.edit.SetValue(task.Text)
	v.edit.CursorEnd()
	cmd := v.edit.Focus()
	return v, cmd
}

func (v ListView) handleAddMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if _, err := v.ctl.Add(v.input.Value()); err != nil {
			return v, notice(err.Error(), true)
		}
		v.mode = ListModeNormal
		v.input.Blur()
		v.input.SetValue("")
		v.cursor = 0
		return v, nil
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v ListView) handleEditMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	id := v.snap.view.EditingID

	switch msg.String() {
	case "enter":
		if err := v.ctl.CommitEdit(id, v.edit.Value()); err != nil {
			return v, notice(err.Error(), true)
		}
		v.mode = ListModeNormal
		v.edit.Blur()
		return v, nil
	case "esc":
		v.ctl.CancelEdit(id)
		v.mode = ListModeNormal
		v.edit.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.edit, cmd = v.edit.Update(msg)
	return v, cmd
}

func (v ListView) handleSearchMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)

	// Filter as the user types
	v.ctl.SetSearch(strings.TrimSpace(v.input.Value()))
	return v, cmd
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles
	view := v.snap.view

	var b strings.Builder

	if v.mode == ListModeAdd || v.mode == ListModeSearch {
		b.WriteString(styles.Input.Render(v.input.View()))
		b.WriteString("\n")
	}

	if view.Empty {
		msg := "No tasks yet. Press a to add one."
		if view.Total > 0 {
			msg = "No matching tasks."
		}
		b.WriteString(styles.Empty.Render(msg))
		return b.String()
	}

	end := min(len(view.Items), v.scrollOffset+v.visibleTaskCount())
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderItem(view.Items[i], i == v.cursor))
		b.WriteString("\n")
	}

	if v.scrollOffset > 0 || end < len(view.Items) {
		b.WriteString(styles.Footer.Render(fmt.Sprintf("%d-%d of %d", v.scrollOffset+1, end, len(view.Items))))
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderItem draws one row: cursor marker, checkbox, then text or edit field
func (v ListView) renderItem(item tasklist.Item, isCursor bool) string {
	styles := theme.Current.Styles

	marker := "  "
	if isCursor {
		marker = styles.TaskCursor.Render("› ")
	}

	check := styles.Check.Render("[ ]")
	if item.Completed {
		check = styles.CheckDone.Render("[x]")
	}
	prefix := marker + check + " "

	if item.Editing && v.mode == ListModeEdit {
		return prefix + styles.TaskEditing.Render(v.edit.View())
	}

	textStyle := styles.TaskNormal
	switch {
	case item.Editing:
		textStyle = styles.TaskEditing
	case item.Completed:
		textStyle = styles.TaskDone
	case isCursor:
		textStyle = styles.TaskCursor
	}

	// Wrap long titles; continuation lines line up under the text
	const indent = 6
	width := v.width - indent - 1
	if width < 10 {
		return prefix + textStyle.Render(item.Text)
	}
	lines := strings.Split(wrap.String(item.Text, width), "\n")
	for i, line := range lines {
		lines[i] = textStyle.Render(line)
	}
	return prefix + strings.Join(lines, "\n"+strings.Repeat(" ", indent))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
