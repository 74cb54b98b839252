package domain

// EventKind is the kind of inbound chat event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStart
	EventSelect
	EventCancel
	EventText
	EventUnknownCommand
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventSelect:
		return "select"
	case EventCancel:
		return "cancel"
	case EventText:
		return "text"
	case EventUnknownCommand:
		return "unknown_command"
	default:
		return "unknown"
	}
}

// Event is a transport-agnostic inbound chat event.
type Event struct {
	Kind   EventKind
	ChatID int64
	UserID int64

	// MessageID is the message the event refers to. For EventSelect it is the
	// menu message carrying the button.
	MessageID int

	// CallbackID and Data are set for EventSelect.
	CallbackID string
	Data       string

	// Text is set for EventText.
	Text string
}

func (e Event) SessionKey() SessionKey {
	return SessionKey{ChatID: e.ChatID, UserID: e.UserID}
}

// Button is one labeled entry of a selection menu.
type Button struct {
	Label string
	Data  string
}
