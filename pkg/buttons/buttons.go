// Package buttons attaches client-side buttons to host messages.
//
// The host exposes no way to build components, so buttons and rows are
// allocated and filled in through reflectutil bindings, appended to the
// message's last row (or a new one), and registered with a press handler.
// The store is then notified so views repaint the message.
package buttons

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
	"github.com/tinyland-inc/picobuttons/pkg/metrics"
	"github.com/tinyland-inc/picobuttons/pkg/reflectutil"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
)

const (
	DefaultRowCapacity = 5
	DefaultMaxRows     = 5
)

// Binding keys accepted in Options.FieldNames to rename host members.
const (
	BindingMessageComponents = "message.components"
	BindingRowComponents     = "row.components"
	BindingRowType           = "row.type"
	BindingButtonLabel       = "button.label"
	BindingButtonStyle       = "button.style"
	BindingButtonDisabled    = "button.disabled"
	BindingButtonCustomID    = "button.customId"
	BindingButtonType        = "button.type"
)

// ButtonData bundles what an extension supplies for one button.
type ButtonData struct {
	Label   string
	Style   host.ButtonStyle
	OnPress registry.Callback
}

// Notifier is the host store entry point that schedules a repaint.
type Notifier interface {
	NotifyChanged(msg *host.Message) error
}

// Mutator is implemented by notifiers that render on another goroutine. The
// tree change for a button runs inside Mutate so renders never see it half done.
type Mutator interface {
	Mutate(msg *host.Message, fn func() error) error
}

type Options struct {
	Namespace   int64
	RowCapacity int
	MaxRows     int
	// FieldNames overrides host member names by binding key.
	FieldNames map[string]string

	// Nil values fall back to ids.Shared, registry.Default and a fresh cache.
	Allocator *ids.Allocator
	Registry  *registry.Registry
	Cache     *reflectutil.Cache
	Metrics   *metrics.Metrics
}

type bindings struct {
	msgComponents *reflectutil.Field
	rowComponents *reflectutil.Field
	rowType       *reflectutil.Field
	label         *reflectutil.Field
	style         *reflectutil.Field
	disabled      *reflectutil.Field
	customID      *reflectutil.Field
	buttonType    *reflectutil.Field
}

func (b *bindings) all() []*reflectutil.Field {
	return []*reflectutil.Field{
		b.msgComponents, b.rowComponents, b.rowType,
		b.label, b.style, b.disabled, b.customID, b.buttonType,
	}
}

type API struct {
	namespace   int64
	rowCapacity int
	maxRows     int

	notifier Notifier
	alloc    *ids.Allocator
	registry *registry.Registry
	metrics  *metrics.Metrics
	fields   bindings
}

func New(notifier Notifier, opts Options) *API {
	if opts.Namespace == 0 {
		opts.Namespace = ids.DefaultNamespace
	}
	if opts.RowCapacity <= 0 {
		opts.RowCapacity = DefaultRowCapacity
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Allocator == nil {
		opts.Allocator = ids.Shared()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Cache == nil {
		opts.Cache = reflectutil.NewCache()
	}

	member := func(key, def string) string {
		if name := opts.FieldNames[key]; name != "" {
			return name
		}
		return def
	}
	c := opts.Cache
	msgType := reflect.TypeFor[host.Message]()
	rowType := reflect.TypeFor[host.ActionRowComponent]()
	btnType := reflect.TypeFor[host.ButtonComponent]()

	return &API{
		namespace:   opts.Namespace,
		rowCapacity: opts.RowCapacity,
		maxRows:     opts.MaxRows,
		notifier:    notifier,
		alloc:       opts.Allocator,
		registry:    opts.Registry,
		metrics:     opts.Metrics,
		fields: bindings{
			msgComponents: c.Bind(msgType, "msgComponentsField", member(BindingMessageComponents, "components")),
			rowComponents: c.Bind(rowType, "componentsField", member(BindingRowComponents, "")),
			rowType:       c.Bind(rowType, "arTypeField", member(BindingRowType, "typ")),
			label:         c.Bind(btnType, "labelField", member(BindingButtonLabel, "")),
			style:         c.Bind(btnType, "styleField", member(BindingButtonStyle, "")),
			disabled:      c.Bind(btnType, "disabledField", member(BindingButtonDisabled, "")),
			customID:      c.Bind(btnType, "idField", member(BindingButtonCustomID, "customID")),
			buttonType:    c.Bind(btnType, "typeField", member(BindingButtonType, "typ")),
		},
	}
}

func (a *API) Registry() *registry.Registry { return a.registry }

// AddButton adds a button to msg. Failures are logged and never returned.
func (a *API) AddButton(msg *host.Message, label string, style host.ButtonStyle, onPress registry.Callback) {
	a.AddButtonData(msg, ButtonData{Label: label, Style: style, OnPress: onPress})
}

// AddButtonData is AddButton taking the bundled button description.
func (a *API) AddButtonData(msg *host.Message, data ButtonData) {
	fields := map[string]any{"label": data.Label}
	if msg != nil {
		fields["message_id"] = msg.ID()
	}

	defer func() {
		if r := recover(); r != nil {
			fields["panic"] = fmt.Sprint(r)
			logger.ErrorCF("buttons", "Failed to create button component", fields)
			a.metrics.Failed("panic")
		}
	}()

	id, err := a.Add(msg, data)
	if err != nil {
		logger.ErrorCF("buttons", "Failed to create button component", failureFields(err, fields))
		a.metrics.Failed(failureKind(err))
		return
	}
	fields["custom_id"] = id
	logger.DebugCF("buttons", "Button added", fields)
}

// Add attaches a button to msg and returns its custom id.
//
// All host bindings are resolved, the button is built and row capacity is
// checked before msg is touched, so those failures leave it unchanged. A
// failing refresh is reported after the button is attached and registered.
func (a *API) Add(msg *host.Message, data ButtonData) (string, error) {
	if msg == nil {
		return "", errors.New("add button: nil message")
	}
	if data.OnPress == nil {
		return "", errors.New("add button: nil press handler")
	}
	if err := a.resolve(); err != nil {
		return "", err
	}

	id := ids.Format(a.namespace, a.alloc.Next())

	btn, err := a.newButton(data.Label, data.Style, id)
	if err != nil {
		return "", err
	}
	if err := a.mutate(msg, func() error { return a.attach(msg, btn) }); err != nil {
		return "", err
	}

	a.registry.Register(id, msg.ID(), data.OnPress)

	if err := a.notifier.NotifyChanged(msg); err != nil {
		return id, &RefreshError{MessageID: msg.ID(), Err: err}
	}
	a.metrics.Created()
	return id, nil
}

func (a *API) mutate(msg *host.Message, fn func() error) error {
	if m, ok := a.notifier.(Mutator); ok {
		return m.Mutate(msg, fn)
	}
	return fn()
}

func (a *API) resolve() error {
	for _, f := range a.fields.all() {
		if _, err := f.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (a *API) newButton(label string, style host.ButtonStyle, id string) (*host.ButtonComponent, error) {
	btn, err := reflectutil.AllocateFor[host.ButtonComponent]()
	if err != nil {
		return nil, err
	}
	err = reflectutil.Populate(btn,
		reflectutil.FieldValue{Field: a.fields.label, Value: label},
		reflectutil.FieldValue{Field: a.fields.style, Value: style},
		reflectutil.FieldValue{Field: a.fields.disabled, Value: false},
		reflectutil.FieldValue{Field: a.fields.buttonType, Value: host.ComponentTypeButton},
		reflectutil.FieldValue{Field: a.fields.customID, Value: id},
	)
	if err != nil {
		return nil, err
	}
	return btn, nil
}

func (a *API) newRow() (*host.ActionRowComponent, error) {
	row, err := reflectutil.AllocateFor[host.ActionRowComponent]()
	if err != nil {
		return nil, err
	}
	if err := a.fields.rowType.Set(row, host.ComponentTypeActionRow); err != nil {
		return nil, err
	}
	return row, nil
}
