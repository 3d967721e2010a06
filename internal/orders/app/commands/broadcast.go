package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dejobratic/orderbot/internal/orders/ports"
)

const defaultBroadcastConcurrency = 8

var ErrEmptyBroadcast = errors.New("broadcast message is empty")

type BroadcastCommand struct {
	Message string
}

func (c BroadcastCommand) Validate() error {
	if strings.TrimSpace(c.Message) == "" {
		return ErrEmptyBroadcast
	}
	return nil
}

// BroadcastResult counts delivery outcomes. Banned customers are not recipients.
type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// BroadcastCommandHandler sends one text to every customer who is not banned.
// A failed delivery is counted and logged; it never stops the others.
type BroadcastCommandHandler struct {
	profiles    ports.ProfileStore
	notifier    ports.Notifier
	logger      *slog.Logger
	concurrency int
}

func NewBroadcastCommandHandler(profiles ports.ProfileStore, notifier ports.Notifier, logger *slog.Logger) *BroadcastCommandHandler {
	return &BroadcastCommandHandler{
		profiles:    profiles,
		notifier:    notifier,
		logger:      logger,
		concurrency: defaultBroadcastConcurrency,
	}
}

func (h *BroadcastCommandHandler) Handle(ctx context.Context, cmd BroadcastCommand) (*BroadcastResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	profiles, err := h.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	text := strings.TrimSpace(cmd.Message)
	result := &BroadcastResult{}
	var sent atomic.Int64

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for _, profile := range profiles {
		if profile.Banned {
			continue
		}
		result.Recipients++
		chatID := profile.CustomerID
		g.Go(func() error {
			if BestEffort(ctx, h.logger, "broadcast", func(ctx context.Context) error {
				return h.notifier.SendText(ctx, chatID, text)
			}, "chat_id", chatID) {
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Sent = int(sent.Load())
	result.Failed = result.Recipients - result.Sent

	h.logger.InfoContext(ctx, "broadcast finished",
		"recipients", result.Recipients,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result, nil
}
