package conversation

import (
	"context"

	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/messages"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// decide applies an approve/reject choice from the admin channel and
// replaces the order message so its buttons cannot be used again.
func (e *Engine) decide(ctx context.Context, ev Event, orderID string, action commands.Action) {
	if e.cfg.AdminChannelID == 0 || ev.ChatID != e.cfg.AdminChannelID {
		e.logger.WarnContext(ctx, "order decision outside admin channel",
			"chat_id", ev.ChatID,
			"customer_id", ev.CustomerID,
			"order_id", orderID,
		)
		e.say(ctx, ev.ChatID, messages.NotAdmin)
		return
	}

	order, err := e.orders.Decide(ctx, orderID, action)

	var text string
	switch kind := errorKind(err); {
	case err == nil:
		text = messages.AdminDecided(*order)
	case kind == KindDecided && order != nil:
		text = messages.AdminAlreadyDecided(*order)
	case kind == KindNotFound:
		text = messages.OrderNotFound
	default:
		e.logger.ErrorContext(ctx, "order decision failed",
			"order_id", orderID,
			"action", string(action),
			"error", err,
		)
		e.say(ctx, ev.ChatID, messages.OrderActionFailed)
		return
	}

	if ev.MessageID == 0 {
		e.say(ctx, ev.ChatID, text)
		return
	}
	commands.BestEffort(ctx, e.logger, "edit_admin_order", func(ctx context.Context) error {
		return e.notifier.EditText(ctx, ports.MessageRef{ChatID: ev.ChatID, MessageID: ev.MessageID}, text, nil)
	}, "order_id", orderID)
}
