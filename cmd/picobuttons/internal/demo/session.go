package demo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

const usage = `Commands:
  new <content>                 create a message
  add <msg> <style> <label...>  add a button (styles: primary secondary success danger link)
  press <msg> <custom-id>       press a button
  show [msg]                    print message trees
  delete <msg>                  delete a message and its handlers
  help                          show this text
  quit                          leave the demo`

// session is the in-memory host the REPL drives.
type session struct {
	out        io.Writer
	store      *store.Store
	api        *buttons.API
	dispatcher *dispatch.Dispatcher
	nextID     int
}

func newSession(out io.Writer, st *store.Store, api *buttons.API, d *dispatch.Dispatcher) *session {
	return &session{out: out, store: st, api: api, dispatcher: d}
}

type replyUI struct {
	out io.Writer
}

func (u replyUI) Reply(text string) error {
	_, err := fmt.Fprintf(u.out, "  ↳ %s\n", text)
	return err
}

// exec runs one REPL line and reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, usage)
	case "new":
		err = s.newMessage(args)
	case "add":
		err = s.addButton(args)
	case "press":
		err = s.press(ctx, args)
	case "show":
		err = s.show(args)
	case "delete":
		err = s.delete(ctx, args)
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *session) newMessage(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: new <content>")
	}
	s.nextID++
	msg := host.NewMessage(fmt.Sprintf("m%d", s.nextID), "demo", strings.Join(args, " "))
	s.store.Put(msg)
	fmt.Fprintf(s.out, "Created %s\n", msg.ID())
	return nil
}

func (s *session) addButton(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: add <msg> <style> <label...>")
	}
	msg, err := s.store.Get(args[0])
	if err != nil {
		return err
	}
	style, err := host.ParseButtonStyle(args[1])
	if err != nil {
		return err
	}
	label := strings.Join(args[2:], " ")

	id, err := s.api.Add(msg, buttons.ButtonData{
		Label: label,
		Style: style,
		OnPress: func(m *host.Message, ui host.UIContainer) {
			_ = ui.Reply(fmt.Sprintf("%s pressed on %s", label, m.ID()))
		},
	})
	if id == "" {
		return err
	}
	if err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
	fmt.Fprintf(s.out, "Added %q as %s\n", label, id)
	return nil
}

func (s *session) press(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: press <msg> <custom-id>")
	}
	msg, err := s.store.Get(args[0])
	if err != nil {
		return err
	}
	res, err := s.dispatcher.Dispatch(ctx, msg, args[1], replyUI{out: s.out})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Press %s: %s\n", args[1], res)
	return nil
}

func (s *session) show(args []string) error {
	ids := args
	if len(ids) == 0 {
		ids = s.store.IDs()
	}
	for _, id := range ids {
		msg, err := s.store.Get(id)
		if err != nil {
			return err
		}
		writeTree(s.out, msg)
	}
	return nil
}

func (s *session) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <msg>")
	}
	if err := s.store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted %s\n", args[0])
	return nil
}

func writeTree(w io.Writer, msg *host.Message) {
	fmt.Fprintf(w, "%s: %q\n", msg.ID(), msg.Content())
	for i, comp := range msg.Components() {
		row, ok := comp.(*host.ActionRowComponent)
		if !ok {
			fmt.Fprintf(w, "  [%d] %s\n", i, comp.Type())
			continue
		}
		fmt.Fprintf(w, "  [%d] %s\n", i, row.Type())
		for _, item := range row.Components() {
			if b, ok := item.(*host.ButtonComponent); ok {
				fmt.Fprintf(w, "      %-10s %-9s %s\n", b.Label(), b.Style(), b.CustomID())
				continue
			}
			fmt.Fprintf(w, "      %s\n", item.Type())
		}
	}
}

// fallback stands in for the server round-trip on presses with no local handler.
func fallback(out io.Writer) dispatch.Fallback {
	return dispatch.FallbackFunc(func(_ context.Context, msg *host.Message, customID string) error {
		_, err := fmt.Fprintf(out, "  ↳ sent %s on %s to server\n", customID, msg.ID())
		return err
	})
}
