package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/notify"
	"github.com/dori/ticklist/internal/ui/theme"
	"github.com/dori/ticklist/internal/ui/views"
)

// RootModel is the main application model. It owns global keys, the header
// and the footer; the list view handles everything else.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	listView    views.ListView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:      application,
		keys:     DefaultKeyMap(),
		help:     h,
		listView: views.NewListView(application.Controller),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	if m.app.DB == nil {
		return func() tea.Msg {
			return StatusMsg{Message: "Ephemeral session: tasks are kept in memory only"}
		}
	}
	return m.listView.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (2 lines) and footer (2 lines)
		m.listView = m.listView.SetSize(m.width, m.height-4)
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.listView.IsInputMode()

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		}

		if isInputMode {
			break
		}

		if key.Matches(msg, m.keys.Help) {
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil
		}
		if key.Matches(msg, m.keys.NotifyToggle) {
			return m, m.toggleNotices()
		}
		if m.helpVisible && msg.String() == "esc" {
			m.helpVisible = false
			m.help.ShowAll = false
			return m, nil
		}

	case views.NoticeMsg:
		if msg.IsError {
			m.errorMsg = msg.Text
		} else {
			m.statusMsg = msg.Text
		}
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	var cmd tea.Cmd
	m.listView, cmd = m.listView.Update(msg)
	return m, cmd
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	// Reserve: 2 lines for header + 2 lines for footer
	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.help.View(m.keys)
	} else {
		content = m.listView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the title, the filter tabs and the theme name
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	snap := m.listView.Snapshot()

	title := styles.Header.Render("ticklist")

	tabs := make([]string, 0, len(model.Filters()))
	for _, f := range model.Filters() {
		if f == snap.Filter {
			tabs = append(tabs, styles.TabActive.Render(f.Label()))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(f.Label()))
		}
	}

	dim := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title}, tabs...)...)
	if snap.Search != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Center, leftSide, dim.Render(fmt.Sprintf("search: %q", snap.Search)))
	}
	rightSide := dim.Render(fmt.Sprintf("theme: %s", t.Name))

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	rule := lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", max(0, m.width)))
	return leftSide + strings.Repeat(" ", gap) + rightSide + "\n" + rule
}

// renderFooter renders the status line, the counters and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	snap := m.listView.Snapshot()

	var lines []string

	if m.errorMsg != "" {
		lines = append(lines, styles.Error.Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, styles.Status.Render(m.statusMsg))
	}

	counts := styles.Footer.Render(snap.RemainingLabel() + " · " + snap.TotalLabel())

	var hints string
	if m.listView.IsInputMode() {
		hints = m.help.ShortHelpView(m.keys.InputHelp())
	} else {
		hints = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	lines = append(lines, counts, hints)
	return strings.Join(lines, "\n")
}

// cycleTheme switches to the next theme
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next()
	theme.SetTheme(next)
	return func() tea.Msg {
		return ThemeChangedMsg{ThemeName: next.Name}
	}
}

// toggleNotices switches desktop notices on or off for this session
func (m RootModel) toggleNotices() tea.Cmd {
	desktop, ok := m.app.Notifier.(*notify.Desktop)
	if !ok {
		return func() tea.Msg {
			return StatusMsg{Message: "Desktop notices are not available"}
		}
	}

	desktop.SetEnabled(!desktop.IsEnabled())
	state := "off"
	if desktop.IsEnabled() {
		state = "on"
	}
	return func() tea.Msg {
		return StatusMsg{Message: "Desktop notices: " + state}
	}
}
