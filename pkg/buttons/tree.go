package buttons

import (
	"fmt"

	"github.com/tinyland-inc/picobuttons/pkg/host"
)

// attach appends btn to the message's active row, or to a new row appended
// after the existing components. A new row is filled before it is attached so
// the message is written once, last.
func (a *API) attach(msg *host.Message, btn *host.ButtonComponent) error {
	comps, err := a.messageComponents(msg)
	if err != nil {
		return err
	}

	row, err := a.activeRow(comps)
	if err != nil {
		return err
	}
	if row != nil {
		items, err := a.rowItems(row)
		if err != nil {
			return err
		}
		return a.fields.rowComponents.Set(row, append(items, btn))
	}

	if len(comps) >= a.maxRows {
		return &CapacityError{Rows: len(comps), MaxRows: a.maxRows}
	}
	if row, err = a.newRow(); err != nil {
		return err
	}
	items := make([]host.Component, 0, a.rowCapacity)
	if err := a.fields.rowComponents.Set(row, append(items, btn)); err != nil {
		return err
	}
	return a.fields.msgComponents.Set(msg, append(comps, host.Component(row)))
}

// activeRow returns the trailing row when it still has room, or nil when a
// new row is needed.
func (a *API) activeRow(comps []host.Component) (*host.ActionRowComponent, error) {
	if len(comps) == 0 {
		return nil, nil
	}
	row, ok := comps[len(comps)-1].(*host.ActionRowComponent)
	if !ok || row.Type() != host.ComponentTypeActionRow {
		return nil, nil
	}
	items, err := a.rowItems(row)
	if err != nil {
		return nil, err
	}
	if len(items) >= a.rowCapacity {
		return nil, nil
	}
	return row, nil
}

func (a *API) messageComponents(msg *host.Message) ([]host.Component, error) {
	v, err := a.fields.msgComponents.Get(msg)
	if err != nil {
		return nil, err
	}
	comps, ok := v.([]host.Component)
	if !ok {
		return nil, fmt.Errorf("message %s: components field holds %T", msg.ID(), v)
	}
	return comps, nil
}

func (a *API) rowItems(row *host.ActionRowComponent) ([]host.Component, error) {
	v, err := a.fields.rowComponents.Get(row)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]host.Component)
	if !ok {
		return nil, fmt.Errorf("action row: components field holds %T", v)
	}
	return items, nil
}
