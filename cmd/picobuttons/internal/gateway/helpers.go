package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal"
	"github.com/tinyland-inc/picobuttons/pkg/bus"
	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/config"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
	"github.com/tinyland-inc/picobuttons/pkg/metrics"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
	"github.com/tinyland-inc/picobuttons/pkg/store"
)

const (
	// buttonsPrefix starts a chat command that posts a message with one button per label.
	buttonsPrefix = "!buttons "
	prompt        = "Choose one:"
)

func gatewayCmd(debug bool) error {
	cfg, err := internal.LoadConfig(debug)
	if err != nil {
		return err
	}
	enabled := cfg.Channels.Enabled()
	if len(enabled) == 0 {
		return errors.New("no channel enabled (set PICOBUTTONS_CHANNELS_<DISCORD|SLACK|TELEGRAM>_ENABLED)")
	}

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(reg)
	}
	opts := cfg.ButtonOptions()
	opts.Metrics = m

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	starters := map[string]func() error{
		"discord":  func() error { return startDiscord(gctx, g, cfg.Channels.Discord, newPipeline(opts, m)) },
		"slack":    func() error { return startSlack(gctx, g, cfg.Channels.Slack, newPipeline(opts, m)) },
		"telegram": func() error { return startTelegram(gctx, g, cfg.Channels.Telegram, newPipeline(opts, m)) },
	}
	for _, name := range enabled {
		if err := starters[name](); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}
	if cfg.Metrics.Enabled {
		startMetricsServer(gctx, g, cfg.Metrics, reg)
	}

	fmt.Printf("%s Gateway connected to %s\n", internal.Logo, strings.Join(enabled, ", "))
	fmt.Println("Press Ctrl+C to stop")

	err = g.Wait()
	fmt.Println("✓ Gateway stopped")
	return err
}

// pipeline is the store, button API and dispatcher serving one platform.
// Platforms never share one, so a renderer only sees messages it can edit.
type pipeline struct {
	updates    *bus.UpdateBus
	store      *store.Store
	api        *buttons.API
	dispatcher *dispatch.Dispatcher
}

func newPipeline(opts buttons.Options, m *metrics.Metrics) *pipeline {
	opts.Registry = registry.New()
	updates := bus.NewUpdateBus()
	st := store.New(updates)
	api := buttons.New(st, opts)
	st.OnDelete(func(messageID string) { api.Registry().RemoveMessage(messageID) })
	return &pipeline{
		updates:    updates,
		store:      st,
		api:        api,
		dispatcher: dispatch.New(api.Registry(), nil, m),
	}
}

// run serves store updates until ctx is done, then closes the bus.
func (p *pipeline) run(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		p.store.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		p.updates.Close()
		return nil
	})
}

// postButtons tracks a freshly posted message and adds one button per label.
func (p *pipeline) postButtons(msg *host.Message, labels []string) {
	p.store.Put(msg)
	for _, label := range labels {
		p.api.AddButton(msg, label, host.ButtonStylePrimary, func(_ *host.Message, ui host.UIContainer) {
			_ = ui.Reply(fmt.Sprintf("You chose %s", label))
		})
	}
}

// drop forgets a message deleted on the platform.
func (p *pipeline) drop(ctx context.Context, messageID string) {
	if err := p.store.Delete(ctx, messageID); err != nil && !errors.Is(err, store.ErrMessageNotFound) {
		logger.WarnCF("gateway", "Failed to drop deleted message", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
	}
}

func startMetricsServer(ctx context.Context, g *errgroup.Group, cfg config.MetricsConfig, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.InfoCF("gateway", "Metrics endpoint listening", map[string]any{"addr": cfg.Listen})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// parseLabels splits the argument of a buttons command on "|".
func parseLabels(content string) ([]string, bool) {
	rest, ok := strings.CutPrefix(content, buttonsPrefix)
	if !ok {
		return nil, false
	}
	var labels []string
	for _, label := range strings.Split(rest, "|") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels, len(labels) > 0
}
