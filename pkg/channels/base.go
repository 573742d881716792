package channels

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

// ErrSenderNotAllowed is returned when a press comes from a user outside the allow list.
var ErrSenderNotAllowed = errors.New("sender not allowed")

// Channel repaints messages on one chat platform.
type Channel interface {
	Name() string
	Render(ctx context.Context, msg *host.Message) error
	IsAllowed(senderID string) bool
}

// MessageSource looks up the client copy of a message by id.
type MessageSource interface {
	Get(id string) (*host.Message, error)
}

// BaseChannelOption is a functional option for configuring a BaseChannel.
type BaseChannelOption func(*BaseChannel)

// WithMaxLabelLength caps button labels (in runes) when rendering.
// A value of 0 means no limit.
func WithMaxLabelLength(n int) BaseChannelOption {
	return func(c *BaseChannel) { c.maxLabelLength = n }
}

type BaseChannel struct {
	name           string
	allowList      []string
	maxLabelLength int
	messages       MessageSource
	dispatcher     *dispatch.Dispatcher
}

func NewBaseChannel(
	name string,
	allowList []string,
	messages MessageSource,
	dispatcher *dispatch.Dispatcher,
	opts ...BaseChannelOption,
) *BaseChannel {
	bc := &BaseChannel{
		name:       name,
		allowList:  allowList,
		messages:   messages,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	// Extract parts from compound senderID like "123456|username"
	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}

	for _, allowed := range c.allowList {
		trimmed := strings.TrimPrefix(allowed, "@")
		allowedID := trimmed
		allowedUser := ""
		if idx := strings.Index(trimmed, "|"); idx > 0 {
			allowedID = trimmed[:idx]
			allowedUser = trimmed[idx+1:]
		}

		if senderID == allowed ||
			idPart == trimmed ||
			idPart == allowedID ||
			(allowedUser != "" && senderID == allowedUser) ||
			(userPart != "" && (userPart == trimmed || userPart == allowedUser)) {
			return true
		}
	}

	return false
}

// Label returns the button label, shortened to the channel's limit.
func (c *BaseChannel) Label(b *host.ButtonComponent) string {
	label := b.Label()
	if c.maxLabelLength <= 0 || utf8.RuneCountInString(label) <= c.maxLabelLength {
		return label
	}
	runes := []rune(label)
	if c.maxLabelLength == 1 {
		return string(runes[:1])
	}
	return string(runes[:c.maxLabelLength-1]) + "…"
}

// HandlePress routes a press on messageID to the dispatcher.
func (c *BaseChannel) HandlePress(
	ctx context.Context,
	messageID, senderID, customID string,
	ui host.UIContainer,
) (dispatch.Result, error) {
	if !c.IsAllowed(senderID) {
		return dispatch.ResultUnhandled, ErrSenderNotAllowed
	}
	msg, err := c.messages.Get(messageID)
	if err != nil {
		return dispatch.ResultUnhandled, err
	}
	return c.dispatcher.Dispatch(ctx, msg, customID, ui)
}

// Attach subscribes ch to s so every message change is rendered on ch.
// It returns the subscription handle.
func Attach(s *store.Store, ch Channel) string {
	return s.Subscribe(ch.Render)
}
