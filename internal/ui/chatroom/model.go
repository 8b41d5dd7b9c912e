// Package chatroom is the terminal view of the realtime chatroom.
package chatroom

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zimage/internal/app/api"
	"zimage/internal/app/chat"
	"zimage/internal/pkg/errs"
)

// ChatSession is the part of chat.Session the view drives.
type ChatSession interface {
	ToggleAnonymous() bool
	Send(text string) bool
	Snapshot() chat.State
	Updates() <-chan struct{}
	Disconnect()
}

// Moderator removes messages. Only admins get one.
type Moderator interface {
	DeleteMessage(ctx context.Context, id int64) error
}

// Options configures the view.
type Options struct {
	// Moderator enables /delete and the ctrl+o presence panel. Nil for regular users.
	Moderator Moderator

	// AutoConfirm skips the y/n prompt before a delete.
	AutoConfirm bool
}

type updateMsg struct{}

type deletedMsg struct {
	id  int64
	err error
}

type keyMap struct {
	Send      key.Binding
	Anonymous key.Binding
	Panel     key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Anonymous: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "anonymous")),
		Panel:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "online")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	adminStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	systemStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the bubbletea model of the chatroom.
type Model struct {
	session ChatSession
	opts    Options
	keys    keyMap

	viewport viewport.Model
	input    textinput.Model

	state     chat.State
	showPanel bool
	pending   int64
	notice    string

	width  int
	height int
}

// New builds the view. The session should already be connecting.
func New(session ChatSession, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.CharLimit = chat.MaxContentChars
	ti.Focus()

	m := Model{
		session:  session,
		opts:     opts,
		keys:     defaultKeys(),
		viewport: viewport.New(80, 20),
		input:    ti,
		state:    session.Snapshot(),
	}
	m.refresh()
	return m
}

// Init starts listening for session changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForUpdate(m.session.Updates()))
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return updateMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case updateMsg:
		m.state = m.session.Snapshot()
		m.refresh()
		return m, waitForUpdate(m.session.Updates())

	case deletedMsg:
		if msg.err != nil {
			m.notice = "Delete failed: " + errs.Message(msg.err)
		} else {
			m.notice = fmt.Sprintf("Message %d deleted", msg.id)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending != 0 {
		id := m.pending
		m.pending = 0
		if s := msg.String(); s == "y" || s == "Y" {
			m.notice = ""
			return m, m.deleteCmd(id)
		}
		m.notice = "Delete cancelled"
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Anonymous):
		if m.session.ToggleAnonymous() {
			m.notice = "Reconnecting anonymously"
		} else {
			m.notice = "Reconnecting with your name"
		}
		return m, nil

	case key.Matches(msg, m.keys.Panel):
		if m.opts.Moderator != nil {
			m.showPanel = !m.showPanel
			m.layout()
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if rest, ok := strings.CutPrefix(text, "/delete"); ok && m.opts.Moderator != nil {
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil || id <= 0 {
			m.notice = "Usage: /delete <message id>"
			return m, nil
		}
		m.input.Reset()
		if m.opts.AutoConfirm {
			return m, m.deleteCmd(id)
		}
		m.pending = id
		m.notice = fmt.Sprintf("Delete message %d? (y/N)", id)
		return m, nil
	}

	if err := chat.Validate(text); err != nil {
		m.notice = errs.Message(err)
		return m, nil
	}
	if !m.session.Send(text) {
		m.notice = errs.Message(errs.NewError(errs.ErrChatNotConnected))
		return m, nil
	}

	m.notice = ""
	m.input.Reset()
	return m, nil
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	mod := m.opts.Moderator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return deletedMsg{id: id, err: mod.DeleteMessage(ctx, id)}
	}
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	w := m.width
	if m.showPanel {
		w = max(20, m.width*2/3)
	}
	m.viewport.Width = w
	m.viewport.Height = max(3, m.height-4)
	m.input.Width = max(10, m.width-4)
}

func (m *Model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom || m.viewport.TotalLineCount() <= m.viewport.Height {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMessages() string {
	var b strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderMessage(msg))
	}
	return b.String()
}

func (m Model) renderMessage(msg chat.Message) string {
	stamp := ""
	if t, ok := api.ParseTime(msg.Timestamp); ok {
		stamp = t.Local().Format("15:04") + " "
	}

	if msg.Type == chat.TypeSystem {
		return systemStyle.Render(stamp + msg.Content)
	}

	name := nameStyle.Render(msg.DisplayName)
	if msg.IsAdmin {
		name = adminStyle.Render(msg.DisplayName + " [admin]")
	}
	id := ""
	if m.opts.Moderator != nil && msg.ID != 0 {
		id = fmt.Sprintf("#%d ", msg.ID)
	}
	return fmt.Sprintf("%s%s%s: %s", stamp, id, name, msg.Content)
}

func (m Model) renderHeader() string {
	mode := ""
	if m.state.Anonymous {
		mode = " · anonymous"
	}
	return headerStyle.Render(fmt.Sprintf("zimage chat · %s · %d online%s", m.state.Status, m.state.OnlineCount, mode))
}

func (m Model) renderPanel() string {
	var b strings.Builder
	b.WriteString(nameStyle.Render("Online"))
	for _, u := range m.state.OnlineUsers {
		b.WriteString("\n" + u.DisplayName)
		if u.Username != "" && u.Username != u.DisplayName {
			b.WriteString(" (" + u.Username + ")")
		}
	}

	b.WriteString("\n\n" + nameStyle.Render("Activity"))
	start := max(0, len(m.state.Activity)-10)
	for _, a := range m.state.Activity[start:] {
		b.WriteString(fmt.Sprintf("\n%s %s", a.DisplayName, a.Type))
	}

	return panelStyle.Width(max(24, m.width-m.viewport.Width-4)).Render(b.String())
}

// View implements tea.Model.
func (m Model) View() string {
	body := m.viewport.View()
	if m.showPanel && m.opts.Moderator != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderPanel())
	}

	footer := m.input.View()
	if m.notice != "" {
		footer += "\n" + noticeStyle.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, footer)
}

// Run takes over the terminal until the user quits.
func Run(session ChatSession, opts Options) error {
	_, err := tea.NewProgram(New(session, opts), tea.WithAltScreen()).Run()
	return err
}
