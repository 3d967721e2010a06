// Package telegram connects the conversation engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// BotAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Notifier sends plain-text messages; no parse mode is set so customer input is shown verbatim.
type Notifier struct {
	api BotAPI
}

func NewNotifier(api BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send message to %d: %w", chatID, err)
	}
	return nil
}

func (n *Notifier) SendChoices(ctx context.Context, chatID int64, text string, keyboard ports.Keyboard) (ports.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return ports.MessageRef{}, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}

	sent, err := n.api.Send(msg)
	if err != nil {
		return ports.MessageRef{}, fmt.Errorf("telegram send choices to %d: %w", chatID, err)
	}
	return ports.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (n *Notifier) SendPhoto(ctx context.Context, chatID int64, photoRef, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(photoRef))
	photo.Caption = caption

	if _, err := n.api.Send(photo); err != nil {
		return fmt.Errorf("telegram send photo to %d: %w", chatID, err)
	}
	return nil
}

func (n *Notifier) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption

	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("telegram send document %s to %d: %w", filename, chatID, err)
	}
	return nil
}

func (n *Notifier) EditText(ctx context.Context, ref ports.MessageRef, text string, keyboard ports.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if len(keyboard) > 0 {
		markup := inlineKeyboard(keyboard)
		edit.ReplyMarkup = &markup
	}

	if _, err := n.api.Request(edit); err != nil {
		return fmt.Errorf("telegram edit message %d in %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

func inlineKeyboard(keyboard ports.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, choice := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(choice.Label, choice.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
