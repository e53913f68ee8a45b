package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mimusdev/mimus/db"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/status"
	"github.com/mimusdev/mimus/util"
)

const consolePageSize = 50

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	handleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type statusesMsg []status.StatusView

type loadFailedMsg struct{ err error }

// Model is the admin console: a read-only feed of the instance's most
// recent statuses, exactly as the API would serve them.
type Model struct {
	cred     domain.Credential
	conf     *util.AppConfig
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	loadErr  error
}

func NewModel(cred domain.Credential, conf *util.AppConfig, width, height int) Model {
	m := Model{
		cred:   cred,
		conf:   conf,
		width:  width,
		height: height,
	}
	m.viewport = viewport.New(width, height-4)
	m.ready = true
	return m
}

func (m Model) Init() tea.Cmd {
	return loadStatuses(m.conf)
}

func loadStatuses(conf *util.AppConfig) tea.Cmd {
	return func() tea.Msg {
		store := db.GetDB()
		window := domain.Window{Limit: consolePageSize}
		err, posts := store.ReadPublicTimeline(window)
		if err != nil {
			return loadFailedMsg{err}
		}
		assembler := &status.Assembler{Conf: conf, Store: store}
		return statusesMsg(assembler.StatusViews(*posts, false))
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loadErr = nil
			return m, loadStatuses(m.conf)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4

	case statusesMsg:
		m.viewport.SetContent(renderStatuses(msg, m.width))
		m.viewport.GotoTop()

	case loadFailedMsg:
		m.loadErr = msg.err
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("%s — console (%s)", util.GetNameAndVersion(), m.cred.Username))
	footer := footerStyle.Render("r reload · ↑/↓ scroll · q quit")

	body := m.viewport.View()
	if m.loadErr != nil {
		body = errorStyle.Render("could not load statuses: " + m.loadErr.Error())
	}

	return header + "\n\n" + body + "\n" + footer
}

func renderStatuses(views []status.StatusView, width int) string {
	if len(views) == 0 {
		return "no statuses yet"
	}

	wrap := lipgloss.NewStyle().Width(width - 2)

	var b strings.Builder
	for _, v := range views {
		handle := "?"
		if v.User != nil {
			handle = v.User.ScreenName
		}
		b.WriteString(handleStyle.Render("@"+handle) + " " + timeStyle.Render(v.CreatedAt) + "\n")
		b.WriteString(wrap.Render(v.Text) + "\n\n")
	}
	return b.String()
}
