package host

import "github.com/bwmarrin/discordgo"

// MessageFromDiscord decodes a server message payload into the client model.
// Buttons decoded here carry server-issued custom ids.
func MessageFromDiscord(m *discordgo.Message) *Message {
	msg := &Message{id: m.ID, channelID: m.ChannelID, content: m.Content}
	if len(m.Components) == 0 {
		return msg
	}
	msg.components = make([]Component, 0, len(m.Components))
	for _, c := range m.Components {
		msg.components = append(msg.components, componentFromDiscord(c))
	}
	return msg
}

func componentFromDiscord(c discordgo.MessageComponent) Component {
	switch v := c.(type) {
	case discordgo.ActionsRow:
		return rowFromDiscord(&v)
	case *discordgo.ActionsRow:
		return rowFromDiscord(v)
	case discordgo.Button:
		return buttonFromDiscord(&v)
	case *discordgo.Button:
		return buttonFromDiscord(v)
	default:
		return &UnknownComponent{typ: ComponentType(c.Type())}
	}
}

func rowFromDiscord(r *discordgo.ActionsRow) *ActionRowComponent {
	row := &ActionRowComponent{typ: ComponentTypeActionRow}
	if len(r.Components) > 0 {
		row.components = make([]Component, 0, len(r.Components))
		for _, c := range r.Components {
			row.components = append(row.components, componentFromDiscord(c))
		}
	}
	return row
}

func buttonFromDiscord(b *discordgo.Button) *ButtonComponent {
	return &ButtonComponent{
		typ:      ComponentTypeButton,
		label:    b.Label,
		style:    ButtonStyle(b.Style),
		disabled: b.Disabled,
		customID: b.CustomID,
		url:      b.URL,
	}
}
