package telegram

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/picobuttons/pkg/bus"
	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

type fakeBot struct {
	edits   []*telego.EditMessageReplyMarkupParams
	answers []*telego.AnswerCallbackQueryParams
}

func (f *fakeBot) EditMessageReplyMarkup(_ context.Context, p *telego.EditMessageReplyMarkupParams) (*telego.Message, error) {
	f.edits = append(f.edits, p)
	return &telego.Message{MessageID: p.MessageID}, nil
}

func (f *fakeBot) AnswerCallbackQuery(_ context.Context, p *telego.AnswerCallbackQueryParams) error {
	f.answers = append(f.answers, p)
	return nil
}

func setup(t *testing.T) (*Channel, *fakeBot, *buttons.API, *host.Message) {
	t.Helper()
	s := store.New(bus.NewUpdateBus())
	reg := registry.New()
	bot := &fakeBot{}
	msg := host.NewMessage("42", "-100200300", "Vote")
	s.Put(msg)
	return New(bot, nil, s, dispatch.New(reg, nil, nil)),
		bot,
		buttons.New(s, buttons.Options{Allocator: ids.NewAllocator(), Registry: reg, RowCapacity: 2}),
		msg
}

func TestKeyboard(t *testing.T) {
	ch, _, api, msg := setup(t)
	noop := func(*host.Message, host.UIContainer) {}
	var added []string
	for _, label := range []string{"A", "B", "C"} {
		id, err := api.Add(msg, buttons.ButtonData{Label: label, OnPress: noop})
		require.NoError(t, err)
		added = append(added, id)
	}

	kb := ch.Keyboard(msg)
	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "A", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, added[0], kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, added[2], kb.InlineKeyboard[1][0].CallbackData)
}

func TestRender(t *testing.T) {
	ch, bot, _, msg := setup(t)
	require.NoError(t, ch.Render(context.Background(), msg))
	require.Len(t, bot.edits, 1)
	assert.Equal(t, int64(-100200300), bot.edits[0].ChatID.ID)
	assert.Equal(t, 42, bot.edits[0].MessageID)

	bad := host.NewMessage("not-a-number", "1", "")
	assert.Error(t, ch.Render(context.Background(), bad))
}

func TestHandle_CallbackQuery(t *testing.T) {
	ch, bot, api, msg := setup(t)
	var by string
	id, err := api.Add(msg, buttons.ButtonData{
		Label: "Vote",
		OnPress: func(m *host.Message, ui host.UIContainer) {
			by = m.ID()
			_ = ui.Reply("counted")
		},
	})
	require.NoError(t, err)

	q := telego.CallbackQuery{
		ID:      "q1",
		From:    telego.User{ID: 7, Username: "carol"},
		Message: &telego.Message{MessageID: 42, Chat: telego.Chat{ID: -100200300}},
		Data:    id,
	}
	require.NoError(t, ch.Handle(context.Background(), q))

	assert.Equal(t, "42", by)
	require.Len(t, bot.answers, 1)
	assert.Equal(t, "counted", bot.answers[0].Text)
	assert.Equal(t, "q1", bot.answers[0].CallbackQueryID)
}

func TestHandle_InaccessibleMessage(t *testing.T) {
	ch, bot, _, _ := setup(t)
	require.NoError(t, ch.Handle(context.Background(), telego.CallbackQuery{ID: "q2", Data: "-1--1"}))
	require.Len(t, bot.answers, 1)
	assert.Empty(t, bot.answers[0].Text)
}

func TestHandle_UnhandledPressAnswered(t *testing.T) {
	ch, bot, _, _ := setup(t)
	q := telego.CallbackQuery{
		ID:      "q3",
		From:    telego.User{ID: 7},
		Message: &telego.Message{MessageID: 42, Chat: telego.Chat{ID: -100200300}},
		Data:    "server-side",
	}
	require.NoError(t, ch.Handle(context.Background(), q))
	require.Len(t, bot.answers, 1)
	assert.Equal(t, "q3", bot.answers[0].CallbackQueryID)
	assert.Empty(t, bot.answers[0].Text)
}
