package gateway

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	"github.com/tinyland-inc/picobuttons/pkg/channels/discord"
	"github.com/tinyland-inc/picobuttons/pkg/config"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

func startDiscord(ctx context.Context, g *errgroup.Group, cfg config.DiscordConfig, p *pipeline) error {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	ch := discord.New(session, session, cfg.AllowFrom, p.store, p.dispatcher)
	channels.Attach(p.store, ch)

	session.AddHandler(ch.HandleInteraction)
	session.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
		handleDiscordCommand(ctx, s, p, ch, mc)
	})
	session.AddHandler(func(_ *discordgo.Session, md *discordgo.MessageDelete) {
		p.drop(ctx, md.ID)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}
	logger.InfoC("gateway", "Discord session open")

	p.run(ctx, g)
	g.Go(func() error {
		<-ctx.Done()
		return session.Close()
	})
	return nil
}

// MessageSender posts a new message to a Discord channel.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func handleDiscordCommand(
	ctx context.Context,
	sender MessageSender,
	p *pipeline,
	ch channels.Channel,
	mc *discordgo.MessageCreate,
) {
	if mc.Author == nil || mc.Author.Bot || !ch.IsAllowed(mc.Author.ID) {
		return
	}
	labels, ok := parseLabels(mc.Content)
	if !ok {
		return
	}

	sent, err := sender.ChannelMessageSend(mc.ChannelID, prompt, discordgo.WithContext(ctx))
	if err != nil {
		logger.ErrorCF("gateway", "Failed to post buttons message", map[string]any{
			"channel":    "discord",
			"channel_id": mc.ChannelID,
			"error":      err.Error(),
		})
		return
	}
	p.postButtons(host.MessageFromDiscord(sent), labels)
}
