package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dejobratic/orderbot/internal/orders/conversation"
)

// Translate turns an update into an engine event. Updates without a human
// sender or without usable content are skipped.
func Translate(update tgbotapi.Update) (conversation.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.From == nil {
			return conversation.Event{}, false
		}
		ev := conversation.Event{
			Kind:       conversation.EventChoice,
			CustomerID: cq.From.ID,
			ChatID:     cq.From.ID,
			Username:   cq.From.UserName,
			FirstName:  cq.From.FirstName,
			Data:       cq.Data,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				ev.ChatID = cq.Message.Chat.ID
				ev.ChatType = cq.Message.Chat.Type
				ev.ChatTitle = cq.Message.Chat.Title
			}
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return conversation.Event{}, false
	}

	ev := conversation.Event{
		CustomerID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
		ChatType:   msg.Chat.Type,
		ChatTitle:  msg.Chat.Title,
	}

	switch {
	case msg.IsCommand():
		ev.Kind = conversation.EventCommand
		ev.Command = msg.Command()
		ev.Args = msg.CommandArguments()
	case len(msg.Photo) > 0:
		ev.Kind = conversation.EventPhoto
		// Sizes are ordered smallest first.
		ev.PhotoRef = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Text != "":
		ev.Kind = conversation.EventText
		ev.Text = msg.Text
	default:
		return conversation.Event{}, false
	}
	return ev, true
}
