package bridge

// UI receives the bridge's outbound events, one method per channel.
type UI interface {
	// OnUserData receives the JSON identity payload.
	OnUserData(payload string)

	// OnConnect receives "ok" once the connection is open.
	OnConnect(status string)

	// OnMessages receives the re-serialized records of one inbound frame.
	OnMessages(payload string)
}

// EventKind names an outbound channel.
type EventKind int

const (
	EventUserData EventKind = iota
	EventConnect
	EventMessages
)

// String returns the channel name.
func (k EventKind) String() string {
	switch k {
	case EventUserData:
		return "onUserData"
	case EventConnect:
		return "onConnect"
	case EventMessages:
		return "onMessages"
	default:
		return "unknown"
	}
}

// Event is one outbound notification.
type Event struct {
	Kind    EventKind
	Payload string
}

// Events is a UI that forwards every event into a channel, in emission
// order. Sends block when the buffer is full.
type Events chan Event

// NewEvents creates an Events sink with the given buffer size.
func NewEvents(size int) Events {
	return make(Events, size)
}

// OnUserData implements UI.
func (e Events) OnUserData(payload string) { e <- Event{Kind: EventUserData, Payload: payload} }

// OnConnect implements UI.
func (e Events) OnConnect(status string) { e <- Event{Kind: EventConnect, Payload: status} }

// OnMessages implements UI.
func (e Events) OnMessages(payload string) { e <- Event{Kind: EventMessages, Payload: payload} }
