package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/config"
	"github.com/dori/ticklist/internal/notify"
	"github.com/dori/ticklist/internal/ui/theme"
	"github.com/dori/ticklist/internal/ui/views"
)

func newTestRoot(t *testing.T) RootModel {
	t.Helper()
	application, err := app.New(config.NewDefault(), app.WithEphemeral(), app.WithNotifier(notify.Nop{}))
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	m, _ := NewRootModel(application).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(RootModel)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNoticeShownUntilNextKey(t *testing.T) {
	m := newTestRoot(t)

	next, _ := m.Update(views.NoticeMsg{Text: "Please enter a task", IsError: true})
	m = next.(RootModel)
	assert.Contains(t, m.View(), "Please enter a task")

	next, _ = m.Update(keyPress("j"))
	m = next.(RootModel)
	assert.NotContains(t, m.View(), "Please enter a task")
}

func TestQuitOnlyOutsideInput(t *testing.T) {
	m := newTestRoot(t)

	next, _ := m.Update(keyPress("a"))
	m = next.(RootModel)
	_, cmd := m.Update(keyPress("q"))
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit)
	}

	m = newTestRoot(t)
	_, cmd = m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestThemeCycle(t *testing.T) {
	m := newTestRoot(t)
	theme.SetTheme(theme.Nord)
	t.Cleanup(func() { theme.SetTheme(theme.Nord) })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, cmd)
	assert.Equal(t, ThemeChangedMsg{ThemeName: "dracula"}, cmd())
	assert.Equal(t, "dracula", theme.Current.Theme.Name)
}

func TestToggleDesktopNotices(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Notify.Desktop = false
	application, err := app.New(cfg, app.WithEphemeral())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	desktop, ok := application.Notifier.(*notify.Desktop)
	require.True(t, ok)
	require.False(t, desktop.IsEnabled())

	m := NewRootModel(application)
	_, cmd := m.Update(keyPress("N"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusMsg{Message: "Desktop notices: on"}, cmd())
	assert.True(t, desktop.IsEnabled())

	_, cmd = m.Update(keyPress("N"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusMsg{Message: "Desktop notices: off"}, cmd())
	assert.False(t, desktop.IsEnabled())
}

func TestToggleNoticesWithoutDesktop(t *testing.T) {
	m := newTestRoot(t)

	_, cmd := m.Update(keyPress("N"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusMsg{Message: "Desktop notices are not available"}, cmd())
}

func TestFooterCounts(t *testing.T) {
	m := newTestRoot(t)
	_, err := m.app.Controller.Add("Buy milk")
	require.NoError(t, err)

	view := m.View()
	assert.Contains(t, view, "1 item left · 1 total")
	assert.Contains(t, view, "Buy milk")
}
