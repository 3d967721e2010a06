package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dejobratic/orderbot/internal/orders/conversation"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

const (
	retryDelay      = 3 * time.Second
	forgetInterval  = time.Hour
	// updateRetention outlives Telegram's own redelivery window.
	updateRetention = 24 * time.Hour
)

// Dispatcher accepts translated events for asynchronous handling.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev conversation.Event) error
}

// Poller long-polls getUpdates and hands each new update to the dispatcher once.
type Poller struct {
	api        BotAPI
	dispatcher Dispatcher
	updates    ports.UpdateLog
	timeout    int
	logger     *slog.Logger
	now        func() time.Time
}

func NewPoller(api BotAPI, dispatcher Dispatcher, updates ports.UpdateLog, timeoutSeconds int, logger *slog.Logger) *Poller {
	return &Poller{
		api:        api,
		dispatcher: dispatcher,
		updates:    updates,
		timeout:    timeoutSeconds,
		logger:     logger,
		now:        time.Now,
	}
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// Run polls until ctx is cancelled. Transport errors are logged and retried.
func (p *Poller) Run(ctx context.Context) error {
	offset := 0
	lastForget := p.now()

	for {
		updates, err := p.poll(ctx, offset)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger.WarnContext(ctx, "telegram getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.process(ctx, update)
		}

		if p.now().Sub(lastForget) >= forgetInterval {
			lastForget = p.now()
			p.forget(ctx)
		}
	}
}

// poll runs the blocking long-poll in a goroutine so cancellation is not
// held up by the poll timeout.
func (p *Poller) poll(ctx context.Context, offset int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = p.timeout

	results := make(chan pollResult, 1)
	go func() {
		updates, err := p.api.GetUpdates(cfg)
		results <- pollResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		return res.updates, res.err
	}
}

func (p *Poller) process(ctx context.Context, update tgbotapi.Update) {
	key := "update:" + strconv.Itoa(update.UpdateID)
	first, err := p.updates.Claim(ctx, key)
	if err != nil {
		p.logger.WarnContext(ctx, "update dedupe unavailable", "update_id", update.UpdateID, "error", err)
		first = true
	}
	if !first {
		p.logger.DebugContext(ctx, "skipping redelivered update", "update_id", update.UpdateID)
		return
	}

	if cq := update.CallbackQuery; cq != nil {
		if _, err := p.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			p.logger.WarnContext(ctx, "failed to answer callback", "update_id", update.UpdateID, "error", err)
		}
	}

	ev, ok := Translate(update)
	if !ok {
		return
	}

	// Handling continues after shutdown starts; the dispatcher drains its queues.
	detached := context.WithoutCancel(ctx)
	if err := p.dispatcher.Dispatch(detached, ev); err != nil {
		p.logger.ErrorContext(ctx, "failed to dispatch update",
			"update_id", update.UpdateID,
			"customer_id", ev.CustomerID,
			"error", err,
		)
		// Unhandled updates must stay eligible for redelivery after a restart.
		if err := p.updates.Release(detached, key); err != nil {
			p.logger.WarnContext(ctx, "failed to release update claim", "update_id", update.UpdateID, "error", err)
		}
	}
}

func (p *Poller) forget(ctx context.Context) {
	removed, err := p.updates.Forget(ctx, p.now().Add(-updateRetention))
	if err != nil {
		p.logger.WarnContext(ctx, "failed to prune processed updates", "error", err)
		return
	}
	p.logger.DebugContext(ctx, "pruned processed updates", "removed", removed)
}
