// Package discord renders client buttons as Discord message components and
// routes Discord component interactions to the dispatcher.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/picobuttons/pkg/channels"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

const maxLabelLength = 80

// MessageEditor is the subset of *discordgo.Session used to repaint messages.
type MessageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InteractionResponder is the subset of *discordgo.Session used to answer presses.
type InteractionResponder interface {
	InteractionRespond(
		interaction *discordgo.Interaction,
		resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption,
	) error
}

type Channel struct {
	*channels.BaseChannel
	editor    MessageEditor
	responder InteractionResponder
}

// New creates a Discord channel. A *discordgo.Session satisfies both editor and responder.
func New(
	editor MessageEditor,
	responder InteractionResponder,
	allowList []string,
	messages channels.MessageSource,
	dispatcher *dispatch.Dispatcher,
) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel("discord", allowList, messages, dispatcher,
			channels.WithMaxLabelLength(maxLabelLength)),
		editor:    editor,
		responder: responder,
	}
}

// Components converts the message's rows into Discord components. Component
// kinds the client does not model are left out.
func (c *Channel) Components(msg *host.Message) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(msg.Components()))
	for _, comp := range msg.Components() {
		row, ok := comp.(*host.ActionRowComponent)
		if !ok {
			continue
		}
		ar := discordgo.ActionsRow{}
		for _, child := range row.Components() {
			b, ok := child.(*host.ButtonComponent)
			if !ok {
				continue
			}
			ar.Components = append(ar.Components, c.button(b))
		}
		if len(ar.Components) > 0 {
			out = append(out, ar)
		}
	}
	return out
}

func (c *Channel) button(b *host.ButtonComponent) discordgo.Button {
	btn := discordgo.Button{
		Label:    c.Label(b),
		Style:    discordgo.ButtonStyle(b.Style()),
		Disabled: b.Disabled(),
	}
	if b.Style() == host.ButtonStyleLink {
		btn.URL = b.URL()
	} else {
		btn.CustomID = b.CustomID()
	}
	return btn
}

// Render edits the Discord message so it shows the current components.
func (c *Channel) Render(ctx context.Context, msg *host.Message) error {
	comps := c.Components(msg)
	_, err := c.editor.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         msg.ID(),
		Channel:    msg.ChannelID(),
		Components: &comps,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord edit %s: %w", msg.ID(), err)
	}
	return nil
}

// HandleInteraction is registered with (*discordgo.Session).AddHandler.
func (c *Channel) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := c.Handle(context.Background(), i); err != nil {
		logger.WarnCF("discord", "Button interaction not handled", map[string]any{"error": err.Error()})
	}
}

// Handle dispatches a component interaction and acknowledges it. Presses
// nobody replied to, including server buttons with no local handler, get a
// deferred message update so Discord does not report the interaction as failed.
func (c *Channel) Handle(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return nil
	}
	if i.Message == nil {
		return fmt.Errorf("interaction %s has no message", i.ID)
	}

	customID := i.MessageComponentData().CustomID
	ui := &interactionUI{responder: c.responder, interaction: i.Interaction}

	res, err := c.HandlePress(ctx, i.Message.ID, senderID(i.Interaction), customID, ui)
	if err != nil {
		return err
	}
	logger.DebugCF("discord", "Button pressed", map[string]any{
		"custom_id":  customID,
		"message_id": i.Message.ID,
		"result":     string(res),
	})
	return ui.acknowledge()
}

func senderID(i *discordgo.Interaction) string {
	var u *discordgo.User
	if i.Member != nil && i.Member.User != nil {
		u = i.Member.User
	} else {
		u = i.User
	}
	if u == nil {
		return ""
	}
	if u.Username == "" {
		return u.ID
	}
	return u.ID + "|" + u.Username
}

// interactionUI answers the interaction at most once.
type interactionUI struct {
	responder   InteractionResponder
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

// Reply answers the press with an ephemeral message.
func (u *interactionUI) Reply(text string) error {
	return u.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (u *interactionUI) acknowledge() error {
	u.mu.Lock()
	done := u.responded
	u.mu.Unlock()
	if done {
		return nil
	}
	return u.respond(&discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
}

func (u *interactionUI) respond(resp *discordgo.InteractionResponse) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.responded {
		return fmt.Errorf("interaction %s already answered", u.interaction.ID)
	}
	if err := u.responder.InteractionRespond(u.interaction, resp); err != nil {
		return err
	}
	u.responded = true
	return nil
}
