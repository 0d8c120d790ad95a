package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/omochice/chat-bridge/internal/bridge"
	"github.com/omochice/chat-bridge/internal/identity"
	"github.com/omochice/chat-bridge/pkg/protocol"
	"go.uber.org/zap"
)

func runREPL(ctx context.Context, opts options) error {
	scanner := bufio.NewScanner(os.Stdin)
	a, err := newApp(ctx, opts, identity.LinePrompter(scanner, os.Stdout), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.controller.LoadUserData(ctx); err != nil {
		return fmt.Errorf("failed to load user data: %w", err)
	}
	var me protocol.Identity
	if err := me.Decode((<-a.events).Payload); err != nil {
		return err
	}

	if err := a.controller.ConnectSocket(a.endpoint); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	go printEvents(a.events)

	fmt.Printf("Chatting as %s on %s. Type your messages (or 'quit' to exit):\n", colorize(me.Username, me.Color), a.endpoint)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if text == "quit" || text == "exit" {
			break
		}

		payload, err := protocol.Record{Username: me.Username, Color: me.Color, Content: text}.Encode()
		if err != nil {
			a.log.Error("failed to encode message", zap.Error(err))
			continue
		}
		if err := a.controller.SendMessage(ctx, payload); err != nil {
			a.log.Warn("failed to send message", zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		a.log.Warn("error reading input", zap.Error(err))
	}
	return nil
}

func printEvents(events bridge.Events) {
	for ev := range events {
		switch ev.Kind {
		case bridge.EventConnect:
			fmt.Println("*** connected ***")
		case bridge.EventMessages:
			batch, err := protocol.DecodeFrame([]byte(ev.Payload))
			if err != nil {
				continue
			}
			for _, r := range batch.Records() {
				fmt.Printf("[%s]: %s\n", colorize(r.Username, r.Color), r.Content)
			}
		}
	}
}

func colorize(text, color string) string {
	if color == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}
