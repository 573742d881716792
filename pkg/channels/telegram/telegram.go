// Package telegram renders client buttons as an inline keyboard and routes
// callback queries to the dispatcher. Host message and channel ids are the
// decimal Telegram message id and chat id.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

// Telegram rejects callback data longer than this many bytes.
const maxCallbackData = 64

// Bot is the subset of *telego.Bot the channel needs.
type Bot interface {
	EditMessageReplyMarkup(ctx context.Context, params *telego.EditMessageReplyMarkupParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
}

type Channel struct {
	*channels.BaseChannel
	bot Bot
}

func New(bot Bot, allowList []string, messages channels.MessageSource, dispatcher *dispatch.Dispatcher) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel("telegram", allowList, messages, dispatcher),
		bot:         bot,
	}
}

// Keyboard renders one keyboard row per action row.
func (c *Channel) Keyboard(msg *host.Message) *telego.InlineKeyboardMarkup {
	kb := &telego.InlineKeyboardMarkup{}
	for _, comp := range msg.Components() {
		row, ok := comp.(*host.ActionRowComponent)
		if !ok {
			continue
		}
		var line []telego.InlineKeyboardButton
		for _, child := range row.Components() {
			b, ok := child.(*host.ButtonComponent)
			if !ok || b.Disabled() {
				continue
			}
			btn := telego.InlineKeyboardButton{Text: c.Label(b)}
			if b.Style() == host.ButtonStyleLink {
				btn.URL = b.URL()
			} else if len(b.CustomID()) <= maxCallbackData {
				btn.CallbackData = b.CustomID()
			} else {
				logger.WarnCF("telegram", "Custom id too long for callback data", map[string]any{
					"custom_id": b.CustomID(),
				})
				continue
			}
			line = append(line, btn)
		}
		if len(line) > 0 {
			kb.InlineKeyboard = append(kb.InlineKeyboard, line)
		}
	}
	return kb
}

// Render replaces the message's inline keyboard.
func (c *Channel) Render(ctx context.Context, msg *host.Message) error {
	chatID, err := strconv.ParseInt(msg.ChannelID(), 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", msg.ChannelID(), err)
	}
	messageID, err := strconv.Atoi(msg.ID())
	if err != nil {
		return fmt.Errorf("telegram message id %q: %w", msg.ID(), err)
	}
	_, err = c.bot.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:      telego.ChatID{ID: chatID},
		MessageID:   messageID,
		ReplyMarkup: c.Keyboard(msg),
	})
	if err != nil {
		return fmt.Errorf("telegram edit %s: %w", msg.ID(), err)
	}
	return nil
}

// Handle dispatches a callback query and answers it if the handler did not.
// Queries for messages that are no longer accessible are answered and dropped.
func (c *Channel) Handle(ctx context.Context, q telego.CallbackQuery) error {
	ui := &callbackUI{ctx: ctx, bot: c.bot, queryID: q.ID}
	if q.Message == nil || !q.Message.IsAccessible() {
		return ui.acknowledge()
	}

	sender := strconv.FormatInt(q.From.ID, 10)
	if q.From.Username != "" {
		sender += "|" + q.From.Username
	}
	messageID := strconv.Itoa(q.Message.GetMessageID())

	res, err := c.HandlePress(ctx, messageID, sender, q.Data, ui)
	if err != nil {
		return err
	}
	logger.DebugCF("telegram", "Button pressed", map[string]any{
		"custom_id":  q.Data,
		"message_id": messageID,
		"result":     string(res),
	})
	return ui.acknowledge()
}

// callbackUI answers the callback query; Telegram accepts one answer per query.
type callbackUI struct {
	ctx      context.Context
	bot      Bot
	queryID  string
	answered bool
}

// Reply shows text as a notification to the presser.
func (u *callbackUI) Reply(text string) error {
	return u.answer(text)
}

func (u *callbackUI) acknowledge() error {
	if u.answered {
		return nil
	}
	return u.answer("")
}

func (u *callbackUI) answer(text string) error {
	if u.answered {
		return fmt.Errorf("callback query %s already answered", u.queryID)
	}
	err := u.bot.AnswerCallbackQuery(u.ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: u.queryID,
		Text:            text,
	})
	if err != nil {
		return err
	}
	u.answered = true
	return nil
}
