package entities

// EventKind is the closed set of inbound event variants the bot reacts to.
type EventKind string

const (
	EventCommand EventKind = "command" // slash command, e.g. /start
	EventText    EventKind = "text"    // free text
	EventAction  EventKind = "action"  // inline button callback
)

// ChatKind mirrors the platform chat type; only private chats are served.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// InboundEvent is a single message or button press, created per update and
// discarded after handling.
type InboundEvent struct {
	Kind       EventKind
	SenderID   int64
	SenderName string // first name, used for greetings
	ChatID     int64
	ChatKind   ChatKind
	Text       string // message text (EventText, EventCommand)
	Command    string // command name without slash (EventCommand)
	ActionTag  string // callback data (EventAction)
	CallbackID string // callback query id to acknowledge (EventAction)
}

// IsPrivate reports whether the event came from a one-to-one chat
func (e InboundEvent) IsPrivate() bool {
	return e.ChatKind == ChatPrivate
}

// Action is an inline button attached to an outbound message
type Action struct {
	Label string
	Tag   string
}

// OutboundMessage is a reply to send back to a chat
type OutboundMessage struct {
	ChatID  int64
	Text    string
	Actions []Action
}
