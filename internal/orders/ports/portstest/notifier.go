// Package portstest provides recording fakes of the outbound ports for tests.
package portstest

import (
	"context"
	"sync"

	"github.com/dejobratic/orderbot/internal/orders/ports"
)

type Kind string

const (
	KindText     Kind = "text"
	KindChoices  Kind = "choices"
	KindPhoto    Kind = "photo"
	KindDocument Kind = "document"
	KindEdit     Kind = "edit"
)

// Message is one recorded outbound call.
type Message struct {
	Kind     Kind
	ChatID   int64
	Text     string
	Keyboard ports.Keyboard
	Filename string
	Data     []byte
	PhotoRef string
	Ref      ports.MessageRef
}

// ChoiceData lists the callback data of every choice, row by row.
func (m Message) ChoiceData() []string {
	var out []string
	for _, row := range m.Keyboard {
		for _, c := range row {
			out = append(out, c.Data)
		}
	}
	return out
}

// Notifier records every call. Failures can be injected per kind.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
	nextID   int
	Fail     map[Kind]error
}

func NewNotifier() *Notifier {
	return &Notifier{Fail: make(map[Kind]error)}
}

func (n *Notifier) record(m Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.Fail[m.Kind]; err != nil {
		return err
	}
	n.messages = append(n.messages, m)
	return nil
}

func (n *Notifier) SendText(_ context.Context, chatID int64, text string) error {
	return n.record(Message{Kind: KindText, ChatID: chatID, Text: text})
}

func (n *Notifier) SendChoices(_ context.Context, chatID int64, text string, keyboard ports.Keyboard) (ports.MessageRef, error) {
	n.mu.Lock()
	n.nextID++
	ref := ports.MessageRef{ChatID: chatID, MessageID: n.nextID}
	n.mu.Unlock()

	if err := n.record(Message{Kind: KindChoices, ChatID: chatID, Text: text, Keyboard: keyboard, Ref: ref}); err != nil {
		return ports.MessageRef{}, err
	}
	return ref, nil
}

func (n *Notifier) SendPhoto(_ context.Context, chatID int64, photoRef, caption string) error {
	return n.record(Message{Kind: KindPhoto, ChatID: chatID, PhotoRef: photoRef, Text: caption})
}

func (n *Notifier) SendDocument(_ context.Context, chatID int64, filename string, data []byte, caption string) error {
	return n.record(Message{Kind: KindDocument, ChatID: chatID, Filename: filename, Data: data, Text: caption})
}

func (n *Notifier) EditText(_ context.Context, ref ports.MessageRef, text string, keyboard ports.Keyboard) error {
	return n.record(Message{Kind: KindEdit, ChatID: ref.ChatID, Text: text, Keyboard: keyboard, Ref: ref})
}

// Messages returns the calls recorded for chatID, in order.
func (n *Notifier) Messages(chatID int64) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Message
	for _, m := range n.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the most recent call for chatID, or a zero Message.
func (n *Notifier) Last(chatID int64) Message {
	msgs := n.Messages(chatID)
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}

// Reset forgets recorded calls.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = nil
}
