package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	slackch "github.com/tinyland-inc/picobuttons/pkg/channels/slack"
	"github.com/tinyland-inc/picobuttons/pkg/config"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

func startSlack(ctx context.Context, g *errgroup.Group, cfg config.SlackConfig, p *pipeline) error {
	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	if _, err := api.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("error authenticating slack bot: %w", err)
	}
	client := socketmode.New(api)

	ch := slackch.New(api, cfg.AllowFrom, p.store, p.dispatcher)
	channels.Attach(p.store, ch)

	p.run(ctx, g)
	g.Go(func() error {
		if err := client.RunContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("slack socket mode: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case evt, ok := <-client.Events:
				if !ok {
					return nil
				}
				handleSlackEvent(ctx, client, api, p, ch, evt)
			}
		}
	})
	return nil
}

// SlackAcker acknowledges a Socket Mode envelope.
type SlackAcker interface {
	Ack(req socketmode.Request, payload ...any)
}

// SlackPoster posts a new message to a Slack channel.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// handleSlackEvent routes button presses to the channel and turns buttons
// commands into a new message with client buttons.
func handleSlackEvent(
	ctx context.Context,
	acker SlackAcker,
	poster SlackPoster,
	p *pipeline,
	ch *slackch.Channel,
	evt socketmode.Event,
) {
	if evt.Request != nil {
		acker.Ack(*evt.Request)
	}

	switch evt.Type {
	case socketmode.EventTypeInteractive:
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		if err := ch.Handle(ctx, cb); err != nil {
			logger.WarnCF("gateway", "Slack interaction failed", map[string]any{
				"user_id": cb.User.ID,
				"error":   err.Error(),
			})
		}

	case socketmode.EventTypeEventsAPI:
		apiEvt, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		me, ok := apiEvt.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return
		}
		if me.SubType == "message_deleted" {
			p.drop(ctx, me.DeletedTimeStamp)
			return
		}
		if me.BotID != "" || me.User == "" || !ch.IsAllowed(me.User) {
			return
		}
		labels, ok := parseLabels(me.Text)
		if !ok {
			return
		}
		channelID, ts, err := poster.PostMessageContext(ctx, me.Channel, slack.MsgOptionText(prompt, false))
		if err != nil {
			logger.ErrorCF("gateway", "Failed to post buttons message", map[string]any{
				"channel":    "slack",
				"channel_id": me.Channel,
				"error":      err.Error(),
			})
			return
		}
		p.postButtons(host.NewMessage(ts, channelID, prompt), labels)

	default:
		logger.DebugCF("gateway", "Slack event ignored", map[string]any{"type": string(evt.Type)})
	}
}
