package demo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal"
	"github.com/tinyland-inc/picobuttons/pkg/bus"
	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

func demoCmd(debug bool) error {
	cfg, err := internal.LoadConfig(debug)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := bus.NewUpdateBus()
	defer updates.Close()

	st := store.New(updates)
	st.Subscribe(func(_ context.Context, msg *host.Message) error {
		logger.InfoCF("demo", "Message re-rendered", map[string]any{
			"message_id": msg.ID(),
			"buttons":    len(msg.Buttons()),
		})
		return nil
	})
	go st.Run(ctx)

	opts := cfg.ButtonOptions()
	opts.Registry = registry.New()
	api := buttons.New(st, opts)
	st.OnDelete(func(messageID string) { api.Registry().RemoveMessage(messageID) })

	fmt.Printf("%s Demo mode (type help, Ctrl+C to exit)\n\n", internal.Logo)
	interactiveMode(ctx, func(out io.Writer) *session {
		return newSession(out, st, api, dispatch.New(api.Registry(), fallback(out), nil))
	})
	return nil
}

func interactiveMode(ctx context.Context, build func(io.Writer) *session) {
	prompt := fmt.Sprintf("%s > ", internal.Logo)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".picobuttons_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(ctx, os.Stdin, build(os.Stdout))
		return
	}
	defer rl.Close()

	logger.SetOutput(rl.Stderr())
	defer logger.SetOutput(nil)

	s := build(rl.Stdout())
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if s.exec(ctx, strings.TrimSpace(line)) {
			fmt.Println("Goodbye!")
			return
		}
	}
}

func simpleInteractiveMode(ctx context.Context, in io.Reader, s *session) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(s.out, "%s > ", internal.Logo)
		line, err := reader.ReadString('\n')
		if s.exec(ctx, strings.TrimSpace(line)) {
			fmt.Fprintln(s.out, "Goodbye!")
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(s.out, "Error reading input: %v\n", err)
			}
			fmt.Fprintln(s.out, "\nGoodbye!")
			return
		}
	}
}
