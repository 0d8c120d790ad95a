// Package tui is a terminal chat UI driving the bridge through intents and
// rendering its events.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/omochice/chat-bridge/internal/bridge"
	"github.com/omochice/chat-bridge/pkg/protocol"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	chromeHeight  = 4
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	systemStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
)

// eventMsg carries one bridge event into the update loop.
type eventMsg bridge.Event

// eventsClosedMsg is sent once the event channel is closed.
type eventsClosedMsg struct{}

// Model is the bubbletea model of the chat screen.
type Model struct {
	intents  chan<- bridge.Intent
	events   <-chan bridge.Event
	endpoint string

	identity  protocol.Identity
	connected bool
	status    string
	lines     []string

	viewport viewport.Model
	input    textinput.Model
}

// New creates the chat model. It connects to endpoint on start.
func New(intents chan<- bridge.Intent, events <-chan bridge.Event, endpoint string) Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 500
	input.Focus()

	return Model{
		intents:  intents,
		events:   events,
		endpoint: endpoint,
		status:   "connecting to " + endpoint,
		viewport: viewport.New(defaultWidth, defaultHeight),
		input:    input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.waitForEvent(),
		m.emit(bridge.ConnectSocketIntent(m.endpoint)),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.handleEvent(bridge.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-4, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			cmd := m.submit()
			return m, cmd
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	name := m.identity.Username
	if name == "" {
		name = "…"
	}
	header := headerStyle.Render(colorize(name, m.identity.Color)) + " " + statusStyle.Render(m.status)
	return fmt.Sprintf("%s\n%s\n\n%s", header, m.viewport.View(), m.input.View())
}

func (m *Model) handleEvent(ev bridge.Event) {
	switch ev.Kind {
	case bridge.EventUserData:
		var id protocol.Identity
		if err := id.Decode(ev.Payload); err != nil {
			m.status = "invalid user data"
			return
		}
		m.identity = id
	case bridge.EventConnect:
		m.connected = true
		m.status = "connected to " + m.endpoint
	case bridge.EventMessages:
		batch, err := protocol.DecodeFrame([]byte(ev.Payload))
		if err != nil {
			return
		}
		for _, r := range batch.Records() {
			m.lines = append(m.lines, renderRecord(r))
		}
		m.refresh()
	}
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if !m.connected {
		m.lines = append(m.lines, systemStyle.Render("not connected yet"))
		m.refresh()
		return nil
	}

	payload, err := protocol.Record{
		Username: m.identity.Username,
		Color:    m.identity.Color,
		Content:  text,
	}.Encode()
	if err != nil {
		return nil
	}
	m.input.SetValue("")
	return m.emit(bridge.SendMessageIntent(payload))
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) emit(in bridge.Intent) tea.Cmd {
	intents := m.intents
	return func() tea.Msg {
		intents <- in
		return nil
	}
}

func renderRecord(r protocol.Record) string {
	return colorize(r.Username, r.Color) + ": " + r.Content
}

func colorize(text, color string) string {
	if color == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}
