package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/chat-bridge/internal/bridge"
	"github.com/omochice/chat-bridge/pkg/protocol"
)

func newTestModel() (Model, chan bridge.Intent, chan bridge.Event) {
	intents := make(chan bridge.Intent, 4)
	events := make(chan bridge.Event, 4)
	return New(intents, events, "ws://localhost:3000/"), intents, events
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestModel_HandlesUserData(t *testing.T) {
	m, _, _ := newTestModel()

	m, cmd := update(t, m, eventMsg{Kind: bridge.EventUserData, Payload: `{"username":"Ada","color":"#123456"}`})
	if cmd == nil {
		t.Error("expected command waiting for the next event")
	}
	if m.identity.Username != "Ada" || m.identity.Color != "#123456" {
		t.Errorf("identity = %+v", m.identity)
	}
	if !strings.Contains(m.View(), "Ada") {
		t.Errorf("View() does not show username: %q", m.View())
	}
}

func TestModel_RendersMessages(t *testing.T) {
	m, _, _ := newTestModel()

	m, _ = update(t, m, eventMsg{Kind: bridge.EventMessages, Payload: `[{"username":"Ada","content":"hello"},{"username":"Bob","content":"hi"}]`})
	if len(m.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "hello") || !strings.Contains(m.lines[1], "hi") {
		t.Errorf("lines = %q", m.lines)
	}
}

func TestModel_SubmitRequiresConnection(t *testing.T) {
	m, intents, _ := newTestModel()

	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command while disconnected")
	}
	if len(intents) != 0 {
		t.Errorf("intents queued = %d, want 0", len(intents))
	}
	if len(m.lines) != 1 || !strings.Contains(m.lines[0], "not connected") {
		t.Errorf("lines = %q", m.lines)
	}
}

func TestModel_SubmitSendsRecord(t *testing.T) {
	m, intents, _ := newTestModel()

	m, _ = update(t, m, eventMsg{Kind: bridge.EventUserData, Payload: `{"username":"Ada","color":"#123456"}`})
	m, _ = update(t, m, eventMsg{Kind: bridge.EventConnect, Payload: protocol.StatusOK})
	if !m.connected {
		t.Fatal("expected connected after onConnect")
	}

	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected send command")
	}
	cmd()

	select {
	case in := <-intents:
		if in.Kind != bridge.IntentSendMessage {
			t.Fatalf("intent = %s, want sendMessage", in.Kind)
		}
		if in.Payload != `{"username":"Ada","color":"#123456","content":"hello"}` {
			t.Errorf("payload = %s", in.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for intent")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}
}

func TestModel_WaitForEvent(t *testing.T) {
	m, _, events := newTestModel()

	events <- bridge.Event{Kind: bridge.EventConnect, Payload: protocol.StatusOK}
	msg := m.waitForEvent()()
	ev, ok := msg.(eventMsg)
	if !ok || ev.Kind != bridge.EventConnect {
		t.Errorf("waitForEvent() = %#v", msg)
	}

	close(events)
	if _, ok := m.waitForEvent()().(eventsClosedMsg); !ok {
		t.Error("expected eventsClosedMsg after close")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _, _ := newTestModel()
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m, _, _ := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.viewport.Width != 100 || m.viewport.Height != 30-chromeHeight {
		t.Errorf("viewport = %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel("What is your name?")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" Ada ")})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(promptModel)
	if pm.answer != "Ada" {
		t.Errorf("answer = %q, want Ada", pm.answer)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}

	next, _ = newPromptModel("?").Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(promptModel).dismissed {
		t.Error("expected dismissed after Esc")
	}
}
