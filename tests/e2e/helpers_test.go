package e2e

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/mymmrac/telego"
	"github.com/slack-go/slack"

	"github.com/tinyland-inc/picobuttons/pkg/bus"
	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
	"github.com/tinyland-inc/picobuttons/pkg/metrics"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

// client wires the store, button API and dispatcher the way the gateway does.
type client struct {
	updates    *bus.UpdateBus
	store      *store.Store
	api        *buttons.API
	dispatcher *dispatch.Dispatcher
}

func newClient(t *testing.T, opts buttons.Options, m *metrics.Metrics) *client {
	t.Helper()

	updates := bus.NewUpdateBus()
	st := store.New(updates)
	if opts.Allocator == nil {
		opts.Allocator = ids.NewAllocator()
	}
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	opts.Metrics = m
	api := buttons.New(st, opts)
	st.OnDelete(func(messageID string) { api.Registry().RemoveMessage(messageID) })

	ctx, cancel := context.WithCancel(context.Background())
	go st.Run(ctx)
	t.Cleanup(func() {
		cancel()
		updates.Close()
	})

	return &client{
		updates:    updates,
		store:      st,
		api:        api,
		dispatcher: dispatch.New(api.Registry(), nil, m),
	}
}

type discordFake struct {
	responses []*discordgo.InteractionResponse
}

func (f *discordFake) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *discordFake) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

type slackFake struct {
	ephemerals int
}

func (f *slackFake) UpdateMessageContext(_ context.Context, channelID, ts string, _ ...slack.MsgOption) (string, string, string, error) {
	return channelID, ts, "", nil
}

func (f *slackFake) PostEphemeralContext(context.Context, string, string, ...slack.MsgOption) (string, error) {
	f.ephemerals++
	return "1.0", nil
}

type telegramFake struct {
	answers []string
}

func (f *telegramFake) EditMessageReplyMarkup(_ context.Context, p *telego.EditMessageReplyMarkupParams) (*telego.Message, error) {
	return &telego.Message{MessageID: p.MessageID}, nil
}

func (f *telegramFake) AnswerCallbackQuery(_ context.Context, p *telego.AnswerCallbackQueryParams) error {
	f.answers = append(f.answers, p.Text)
	return nil
}
