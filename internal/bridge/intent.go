package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// IntentKind names an inbound channel.
type IntentKind int

const (
	IntentLoadUserData IntentKind = iota
	IntentConnectSocket
	IntentSendMessage
)

// String returns the channel name.
func (k IntentKind) String() string {
	switch k {
	case IntentLoadUserData:
		return "loadUserData"
	case IntentConnectSocket:
		return "connectSocket"
	case IntentSendMessage:
		return "sendMessage"
	default:
		return "unknown"
	}
}

// Intent is one UI-originated request. Payload is the endpoint for
// connectSocket and the serialized message for sendMessage.
type Intent struct {
	Kind    IntentKind
	Payload string
}

// LoadUserDataIntent asks for the local identity.
func LoadUserDataIntent() Intent { return Intent{Kind: IntentLoadUserData} }

// ConnectSocketIntent asks to (re)connect to endpoint.
func ConnectSocketIntent(endpoint string) Intent {
	return Intent{Kind: IntentConnectSocket, Payload: endpoint}
}

// SendMessageIntent asks to send an already serialized message.
func SendMessageIntent(payload string) Intent {
	return Intent{Kind: IntentSendMessage, Payload: payload}
}

// Dispatch performs one intent.
func (c *Controller) Dispatch(ctx context.Context, in Intent) error {
	switch in.Kind {
	case IntentLoadUserData:
		return c.LoadUserData(ctx)
	case IntentConnectSocket:
		return c.ConnectSocket(in.Payload)
	case IntentSendMessage:
		return c.SendMessage(ctx, in.Payload)
	default:
		return fmt.Errorf("unknown intent %d", in.Kind)
	}
}

// Run dispatches intents one at a time until ctx is done or intents is
// closed. Failed intents are logged and do not stop the loop.
func (c *Controller) Run(ctx context.Context, intents <-chan Intent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-intents:
			if !ok {
				return nil
			}
			if err := c.Dispatch(ctx, in); err != nil {
				c.log.Error("intent failed", zap.Stringer("intent", in.Kind), zap.Error(err))
			}
		}
	}
}
