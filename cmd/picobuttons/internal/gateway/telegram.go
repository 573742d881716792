package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	"github.com/tinyland-inc/picobuttons/pkg/channels/telegram"
	"github.com/tinyland-inc/picobuttons/pkg/config"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

func startTelegram(ctx context.Context, g *errgroup.Group, cfg config.TelegramConfig, p *pipeline) error {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return fmt.Errorf("error creating telegram bot: %w", err)
	}
	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting telegram long polling: %w", err)
	}

	ch := telegram.New(bot, cfg.AllowFrom, p.store, p.dispatcher)
	channels.Attach(p.store, ch)

	p.run(ctx, g)
	g.Go(func() error {
		for upd := range updates {
			handleTelegramUpdate(ctx, bot, p, ch, upd)
		}
		return nil
	})
	return nil
}

// TelegramSender posts a new message to a Telegram chat.
type TelegramSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// handleTelegramUpdate routes callback queries to the channel and turns
// buttons commands into a new message with an inline keyboard.
func handleTelegramUpdate(
	ctx context.Context,
	sender TelegramSender,
	p *pipeline,
	ch *telegram.Channel,
	upd telego.Update,
) {
	if q := upd.CallbackQuery; q != nil {
		if err := ch.Handle(ctx, *q); err != nil {
			logger.WarnCF("gateway", "Telegram callback query failed", map[string]any{
				"query_id": q.ID,
				"error":    err.Error(),
			})
		}
		return
	}

	m := upd.Message
	if m == nil || m.From == nil || m.From.IsBot {
		return
	}
	senderID := strconv.FormatInt(m.From.ID, 10)
	if m.From.Username != "" {
		senderID += "|" + m.From.Username
	}
	if !ch.IsAllowed(senderID) {
		return
	}
	labels, ok := parseLabels(m.Text)
	if !ok {
		return
	}

	sent, err := sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: m.Chat.ID},
		Text:   prompt,
	})
	if err != nil {
		logger.ErrorCF("gateway", "Failed to post buttons message", map[string]any{
			"channel": "telegram",
			"chat_id": m.Chat.ID,
			"error":   err.Error(),
		})
		return
	}
	p.postButtons(host.NewMessage(strconv.Itoa(sent.MessageID), strconv.FormatInt(sent.Chat.ID, 10), prompt), labels)
}
