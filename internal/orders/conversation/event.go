package conversation

// EventKind classifies inbound customer input.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventText
	EventChoice
	EventPhoto
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventText:
		return "text"
	case EventChoice:
		return "choice"
	case EventPhoto:
		return "photo"
	default:
		return "unknown"
	}
}

// Event is one inbound update, already stripped of transport details.
type Event struct {
	Kind       EventKind
	CustomerID int64
	ChatID     int64
	Username   string
	FirstName  string
	ChatType   string
	ChatTitle  string

	// Command is set for EventCommand, without the leading slash. Args holds the rest of the line.
	Command   string
	Args      string
	// Text is set for EventText.
	Text      string
	// Data and MessageID are set for EventChoice; MessageID is the message carrying the choices.
	Data      string
	MessageID int
	// PhotoRef is the transport reference of the largest photo size.
	PhotoRef  string
}
