package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/chat-bridge/internal/bridge"
	"github.com/omochice/chat-bridge/internal/ui/tui"
	"go.uber.org/zap"
)

func runTUI(ctx context.Context, opts options) error {
	a, err := newApp(ctx, opts, tui.Prompt, false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Identity is resolved before the chat screen starts so the name prompt
	// can take over the terminal.
	if err := a.controller.LoadUserData(ctx); err != nil {
		return fmt.Errorf("failed to load user data: %w", err)
	}

	intents := make(chan bridge.Intent, 16)
	go func() {
		if err := a.controller.Run(ctx, intents); err != nil && ctx.Err() == nil {
			a.log.Error("bridge stopped", zap.Error(err))
		}
	}()

	model := tui.New(intents, a.events, a.endpoint)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("chat ui failed: %w", err)
	}
	return nil
}
