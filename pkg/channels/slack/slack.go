// Package slack renders client buttons as Block Kit action blocks and routes
// block_actions interactions to the dispatcher. Host message ids are Slack
// message timestamps.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

const maxLabelLength = 75

// API is the subset of *slack.Client the channel needs.
type API interface {
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
}

type Channel struct {
	*channels.BaseChannel
	api API
}

func New(api API, allowList []string, messages channels.MessageSource, dispatcher *dispatch.Dispatcher) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel("slack", allowList, messages, dispatcher,
			channels.WithMaxLabelLength(maxLabelLength)),
		api: api,
	}
}

// Blocks renders the message text followed by one action block per row.
func (c *Channel) Blocks(msg *host.Message) []slack.Block {
	var blocks []slack.Block
	if msg.Content() != "" {
		text := slack.NewTextBlockObject(slack.MarkdownType, msg.Content(), false, false)
		blocks = append(blocks, slack.NewSectionBlock(text, nil, nil))
	}
	for i, comp := range msg.Components() {
		row, ok := comp.(*host.ActionRowComponent)
		if !ok {
			continue
		}
		var elems []slack.BlockElement
		for _, child := range row.Components() {
			if b, ok := child.(*host.ButtonComponent); ok {
				elems = append(elems, c.button(b))
			}
		}
		if len(elems) > 0 {
			blocks = append(blocks, slack.NewActionBlock(fmt.Sprintf("row-%d", i), elems...))
		}
	}
	return blocks
}

func (c *Channel) button(b *host.ButtonComponent) *slack.ButtonBlockElement {
	text := slack.NewTextBlockObject(slack.PlainTextType, c.Label(b), false, false)
	el := slack.NewButtonBlockElement(b.CustomID(), b.CustomID(), text)
	switch b.Style() {
	case host.ButtonStylePrimary, host.ButtonStyleSuccess:
		el = el.WithStyle(slack.StylePrimary)
	case host.ButtonStyleDanger:
		el = el.WithStyle(slack.StyleDanger)
	case host.ButtonStyleLink:
		el.URL = b.URL()
	}
	return el
}

// Render updates the Slack message with the current blocks.
func (c *Channel) Render(ctx context.Context, msg *host.Message) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, msg.ChannelID(), msg.ID(),
		slack.MsgOptionText(msg.Content(), false),
		slack.MsgOptionBlocks(c.Blocks(msg)...),
	)
	if err != nil {
		return fmt.Errorf("slack update %s: %w", msg.ID(), err)
	}
	return nil
}

// Handle dispatches every block action in a block_actions callback.
func (c *Channel) Handle(ctx context.Context, cb slack.InteractionCallback) error {
	if cb.Type != slack.InteractionTypeBlockActions {
		return nil
	}
	sender := cb.User.ID
	if cb.User.Name != "" {
		sender += "|" + cb.User.Name
	}
	ui := &ephemeralUI{ctx: ctx, api: c.api, channelID: cb.Channel.ID, userID: cb.User.ID}

	for _, action := range cb.ActionCallback.BlockActions {
		res, err := c.HandlePress(ctx, cb.Container.MessageTs, sender, action.ActionID, ui)
		if err != nil {
			return err
		}
		logger.DebugCF("slack", "Button pressed", map[string]any{
			"action_id":  action.ActionID,
			"message_ts": cb.Container.MessageTs,
			"result":     string(res),
		})
	}
	return nil
}

// ephemeralUI replies with a message only the presser can see.
type ephemeralUI struct {
	ctx       context.Context
	api       API
	channelID string
	userID    string
}

func (u *ephemeralUI) Reply(text string) error {
	_, err := u.api.PostEphemeralContext(u.ctx, u.channelID, u.userID, slack.MsgOptionText(text, false))
	return err
}
