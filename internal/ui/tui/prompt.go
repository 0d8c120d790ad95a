package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptDismissed is returned when the user leaves the prompt with Esc
// or Ctrl+C.
var ErrPromptDismissed = errors.New("prompt dismissed")

// promptModel is a single-question modal.
type promptModel struct {
	question  string
	input     textinput.Model
	answer    string
	dismissed bool
}

func newPromptModel(question string) promptModel {
	input := textinput.New()
	input.Placeholder = "Anonymous"
	input.CharLimit = 64
	input.Focus()
	return promptModel{question: question, input: input}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.answer = strings.TrimSpace(m.input.Value())
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.dismissed = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	return headerStyle.Render(m.question) + "\n\n" + m.input.View() + "\n"
}

// Prompt asks question in a modal terminal prompt and blocks until the user
// answers or dismisses it. It matches identity.Prompter.
func Prompt(ctx context.Context, question string) (string, error) {
	final, err := tea.NewProgram(newPromptModel(question), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.dismissed {
		return "", ErrPromptDismissed
	}
	return m.answer, nil
}
