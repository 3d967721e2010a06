package ports

import "context"

// Choice is one inline option; Data comes back verbatim when chosen.
type Choice struct {
	Label string
	Data  string
}

// Keyboard is a grid of choices, one slice per row.
type Keyboard [][]Choice

// MessageRef points at a delivered message so it can be edited later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Notifier delivers messages to customers and to the admin channel.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendChoices(ctx context.Context, chatID int64, text string, keyboard Keyboard) (MessageRef, error)
	// SendPhoto re-sends an already uploaded photo by its transport reference.
	SendPhoto(ctx context.Context, chatID int64, photoRef, caption string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error
	// EditText replaces the text of a message and drops its choices unless keyboard is given.
	EditText(ctx context.Context, ref MessageRef, text string, keyboard Keyboard) error
}
