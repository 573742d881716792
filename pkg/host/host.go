// Package host models the chat client's message and component types.
//
// These types belong to the host application: their state lives in unexported
// fields and the package offers no constructors for components. Components
// normally arrive from the server (see MessageFromDiscord); extensions that need
// to add their own must go through pkg/reflectutil.
package host

import "fmt"

// ComponentType is the discriminator tag carried by every component.
type ComponentType int

const (
	ComponentTypeActionRow  ComponentType = 1
	ComponentTypeButton     ComponentType = 2
	ComponentTypeSelectMenu ComponentType = 3
)

func (t ComponentType) String() string {
	switch t {
	case ComponentTypeActionRow:
		return "action_row"
	case ComponentTypeButton:
		return "button"
	case ComponentTypeSelectMenu:
		return "select_menu"
	default:
		return fmt.Sprintf("component(%d)", int(t))
	}
}

type ButtonStyle int

const (
	ButtonStylePrimary   ButtonStyle = 1
	ButtonStyleSecondary ButtonStyle = 2
	ButtonStyleSuccess   ButtonStyle = 3
	ButtonStyleDanger    ButtonStyle = 4
	ButtonStyleLink      ButtonStyle = 5
)

func (s ButtonStyle) String() string {
	switch s {
	case ButtonStylePrimary:
		return "primary"
	case ButtonStyleSecondary:
		return "secondary"
	case ButtonStyleSuccess:
		return "success"
	case ButtonStyleDanger:
		return "danger"
	case ButtonStyleLink:
		return "link"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseButtonStyle accepts the lower-case style names returned by String.
func ParseButtonStyle(name string) (ButtonStyle, error) {
	for s := ButtonStylePrimary; s <= ButtonStyleLink; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown button style %q", name)
}

// Component is a node of a message's interactive tree.
type Component interface {
	Type() ComponentType
}

// ActionRowComponent groups buttons into one horizontal row.
type ActionRowComponent struct {
	typ        ComponentType
	components []Component
}

func (r *ActionRowComponent) Type() ComponentType { return r.typ }

// Components returns the row's children. The slice must not be modified.
func (r *ActionRowComponent) Components() []Component { return r.components }

type ButtonComponent struct {
	typ      ComponentType
	label    string
	style    ButtonStyle
	disabled bool
	customID string
	url      string
}

func (b *ButtonComponent) Type() ComponentType { return b.typ }
func (b *ButtonComponent) Label() string       { return b.label }
func (b *ButtonComponent) Style() ButtonStyle  { return b.style }
func (b *ButtonComponent) Disabled() bool      { return b.disabled }
func (b *ButtonComponent) CustomID() string    { return b.customID }
func (b *ButtonComponent) URL() string         { return b.url }

// UnknownComponent stands in for server component variants the client does not model.
type UnknownComponent struct {
	typ ComponentType
}

func (u *UnknownComponent) Type() ComponentType { return u.typ }

// Message is a chat message as held by the client.
type Message struct {
	id         string
	channelID  string
	content    string
	components []Component
}

// NewMessage creates a message without components.
func NewMessage(id, channelID, content string) *Message {
	return &Message{id: id, channelID: channelID, content: content}
}

func (m *Message) ID() string        { return m.id }
func (m *Message) ChannelID() string { return m.channelID }
func (m *Message) Content() string   { return m.content }

// Components returns the top-level components, or nil when the message has none.
func (m *Message) Components() []Component { return m.components }

// Buttons flattens every button of the message in row order.
func (m *Message) Buttons() []*ButtonComponent {
	var out []*ButtonComponent
	for _, c := range m.components {
		row, ok := c.(*ActionRowComponent)
		if !ok {
			continue
		}
		for _, child := range row.components {
			if b, ok := child.(*ButtonComponent); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

// UIContainer is the handle the host passes to button handlers so they can
// show follow-up UI for the interaction that triggered them.
type UIContainer interface {
	Reply(text string) error
}
